package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pgen.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "lexer: lang.ebnf\ntables: /abs/tables.yaml\nwrap: [file_input]\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	dir := filepath.Dir(path)
	if cfg.Lexer != filepath.Join(dir, "lang.ebnf") {
		t.Errorf("Lexer = %s", cfg.Lexer)
	}
	if cfg.Tables != "/abs/tables.yaml" {
		t.Errorf("Tables = %s", cfg.Tables)
	}
	if cfg.Start != "file_input" || cfg.EndMarker != "ENDMARKER" || cfg.LogLevel != "warning" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if !slices.Equal(cfg.Skip, []string{"WhiteSpace", "Comment"}) {
		t.Errorf("Skip = %v", cfg.Skip)
	}
	if !slices.Equal(cfg.Wrap, []string{"file_input"}) {
		t.Errorf("Wrap = %v", cfg.Wrap)
	}
}

func TestExplicitEmptySkip(t *testing.T) {
	cfg, err := Parse([]byte("lexer: a\ntables: b\nskip: []\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Skip == nil || len(cfg.Skip) != 0 {
		t.Errorf("Skip = %#v, want empty", cfg.Skip)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PGEN_START", "expr")
	t.Setenv("PGEN_TABLES", "/other/tables.yaml")
	cfg, err := Load(writeConfig(t, "lexer: lang.ebnf\ntables: tables.yaml\nstart: file_input\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Start != "expr" || cfg.Tables != "/other/tables.yaml" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		fields []string
	}{
		{"valid", Config{Lexer: "a", Tables: "b", Start: "s", LogLevel: "debug"}, nil},
		{"missing files", Config{Start: "s", LogLevel: "info"}, []string{"lexer", "tables"}},
		{"bad level", Config{Lexer: "a", Tables: "b", Start: "s", LogLevel: "loud"}, []string{"log_level"}},
		{"empty skip", Config{Lexer: "a", Tables: "b", Start: "s", LogLevel: "info", Skip: []string{""}}, []string{"skip[0]"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.cfg)
			if tt.fields == nil {
				if err != nil {
					t.Errorf("Validate: %v", err)
				}
				return
			}
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			var got []string
			for _, fe := range verr.Errors {
				got = append(got, fe.Field)
			}
			if !slices.Equal(got, tt.fields) {
				t.Errorf("fields = %v, want %v", got, tt.fields)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
	if _, err := Load(writeConfig(t, "lexer: [\n")); err == nil {
		t.Error("malformed YAML should fail")
	}
	if _, err := Load(writeConfig(t, "start: x\n")); err == nil {
		t.Error("config without files should fail validation")
	}
}

func TestVerbosity(t *testing.T) {
	if v := (&Config{LogLevel: "debug"}).Verbosity(); v != 2 {
		t.Errorf("debug = %d", v)
	}
	if v := (&Config{LogLevel: "error"}).Verbosity(); v != -2 {
		t.Errorf("error = %d", v)
	}
}
