// Package config loads the description of a language: where its lexical
// grammar and parser tables live and how parse trees are shaped.
//
// A configuration file looks like:
//
//	lexer: mini.ebnf
//	tables: mini.tables.yaml
//	start: file_input
//	skip: [WhiteSpace, Comment]
//	end_marker: ENDMARKER
//	wrap: [file_input]
//	log_level: warning
//
// Relative paths are resolved against the directory of the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Lexer is the EBNF file whose uppercase productions are tokens.
	Lexer string `yaml:"lexer"`
	// Tables is the YAML file holding the parser tables.
	Tables string `yaml:"tables"`
	// Start is the rule parsed by default.
	Start string `yaml:"start"`
	// Skip lists productions whose text becomes token prefix.
	Skip []string `yaml:"skip"`
	// EndMarker is the type of the token emitted at end of input.
	EndMarker string `yaml:"end_marker"`
	// Wrap lists rules that keep their node even with a single child.
	Wrap []string `yaml:"wrap"`
	// LogLevel is one of error, warning, notice, info or debug.
	LogLevel string `yaml:"log_level"`
}

// Load reads the file at path, applies defaults and environment overrides,
// and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	cfg.resolve(filepath.Dir(path))

	ApplyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a configuration document and applies defaults. Paths are
// left as written.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

func (c *Config) resolve(dir string) {
	if c.Lexer != "" && !filepath.IsAbs(c.Lexer) {
		c.Lexer = filepath.Join(dir, c.Lexer)
	}
	if c.Tables != "" && !filepath.IsAbs(c.Tables) {
		c.Tables = filepath.Join(dir, c.Tables)
	}
}

// ApplyEnvOverrides lets PGEN_START, PGEN_TABLES and PGEN_LEXER replace
// the file's values.
func ApplyEnvOverrides(cfg *Config) {
	if val := os.Getenv("PGEN_START"); val != "" {
		cfg.Start = val
	}
	if val := os.Getenv("PGEN_TABLES"); val != "" {
		cfg.Tables = val
	}
	if val := os.Getenv("PGEN_LEXER"); val != "" {
		cfg.Lexer = val
	}
}
