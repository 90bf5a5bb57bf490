package config

import (
	"fmt"
	"strings"
)

// FieldError is a validation failure of one configuration key.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every FieldError found by Validate.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "invalid config: " + e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "invalid config: %d errors", len(e.Errors))
	for _, fe := range e.Errors {
		sb.WriteString("\n  - " + fe.Error())
	}
	return sb.String()
}

func Validate(cfg *Config) error {
	var errs []FieldError
	if cfg.Lexer == "" {
		errs = append(errs, FieldError{"lexer", "is required"})
	}
	if cfg.Tables == "" {
		errs = append(errs, FieldError{"tables", "is required"})
	}
	if cfg.Start == "" {
		errs = append(errs, FieldError{"start", "is required"})
	}
	if _, ok := verbosities[cfg.LogLevel]; !ok {
		errs = append(errs, FieldError{"log_level", fmt.Sprintf("unknown level %q", cfg.LogLevel)})
	}
	for i, name := range cfg.Skip {
		if name == "" {
			errs = append(errs, FieldError{fmt.Sprintf("skip[%d]", i), "is empty"})
		}
	}
	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
