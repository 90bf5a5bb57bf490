package language

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dhamidi/pgen/config"
	"github.com/dhamidi/pgen/parser"
	"github.com/dhamidi/pgen/tree"
)

func openMini(t *testing.T, opts ...parser.Option) *Language {
	t.Helper()
	l, err := Load("testdata/pgen.yaml", opts...)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return l
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		stmts []string
	}{
		{"assignment", "x = 1\n", []string{"expr_stmt"}},
		{"match statement", "match point:\n", []string{"match_stmt"}},
		{"match as name", "match = 2\nmatch(x)\n", []string{"expr_stmt", "expr_stmt"}},
		{"parenthesized subject", "match (x):\n", []string{"match_stmt"}},
		{"blank lines and comments", "\n# header\nx = 1 # one\n\nmatch x:\n", []string{"expr_stmt", "match_stmt"}},
	}

	l := openMini(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := l.Parse("test.mini", []byte(tt.input))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := root.Code(); got != tt.input {
				t.Errorf("Code() = %q, want %q", got, tt.input)
			}
			var stmts []string
			for _, c := range root.(*tree.Node).Children {
				if strings.HasSuffix(c.Type(), "_stmt") {
					stmts = append(stmts, c.Type())
				}
			}
			if strings.Join(stmts, " ") != strings.Join(tt.stmts, " ") {
				t.Errorf("statements = %v, want %v\n%s", stmts, tt.stmts, tree.Dump(root, false))
			}
		})
	}
}

func TestTrailingTriviaOnEndMarker(t *testing.T) {
	l := openMini(t)
	src := "x = 1\n  # done"
	root, err := l.Parse("", []byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	n := root.(*tree.Node)
	end := n.Children[len(n.Children)-1].(*tree.Leaf)
	if end.Kind != "ENDMARKER" || end.Prefix != "  # done" {
		t.Errorf("end marker = %+v", end)
	}
	if root.Code() != src {
		t.Errorf("Code() = %q", root.Code())
	}
}

func TestParseErrors(t *testing.T) {
	l := openMini(t)

	_, err := l.Parse("bad.mini", []byte("x = = 1\n"))
	var syntaxErr *parser.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("err = %v, want SyntaxError", err)
	}
	if syntaxErr.ErrorLeaf.Pos.Filename != "bad.mini" || syntaxErr.ErrorLeaf.Pos.Column != 4 {
		t.Errorf("error at %v", syntaxErr.ErrorLeaf.Pos)
	}

	_, err = l.Parse("", []byte("x = $\n"))
	if !errors.As(err, &syntaxErr) || syntaxErr.ErrorLeaf.Original != "ERRORTOKEN" {
		t.Errorf("err = %v, want SyntaxError on ERRORTOKEN", err)
	}
}

func TestParseRule(t *testing.T) {
	l := openMini(t)
	cfg := *l.Config
	cfg.EndMarker = ""
	noEnd := &Language{Config: &cfg, Lexicon: l.Lexicon, Tables: l.Tables}

	root, err := noEnd.ParseRule("expr", "", []byte("f(1)(2)"))
	if err != nil {
		t.Fatalf("ParseRule: %v", err)
	}
	if root.Type() != "expr" || root.Code() != "f(1)(2)" {
		t.Errorf("root = %s", tree.Dump(root, false))
	}
}

func TestConfigWrap(t *testing.T) {
	cfg, err := config.Load("testdata/pgen.yaml")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Wrap = []string{"stmt"}
	l, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	root, err := l.Parse("", []byte("x\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got := root.(*tree.Node).Children[0].Type(); got != "stmt" {
		t.Errorf("first child = %s, want stmt", got)
	}
}

func TestOpenErrors(t *testing.T) {
	base, err := config.Load("testdata/pgen.yaml")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name   string
		modify func(c *config.Config)
	}{
		{"missing lexer", func(c *config.Config) { c.Lexer = "testdata/none.ebnf" }},
		{"missing tables", func(c *config.Config) { c.Tables = "testdata/none.yaml" }},
		{"unknown start", func(c *config.Config) { c.Start = "program" }},
		{"unknown trivia", func(c *config.Config) { c.Skip = []string{"Blank"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.modify(&cfg)
			if _, err := Open(&cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestConcurrentParses(t *testing.T) {
	l := openMini(t)
	inputs := []string{"a = 1\n", "match b:\n", "match(c)\n", "(d)\n"}

	var wg sync.WaitGroup
	errs := make([]error, len(inputs)*8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			src := inputs[i%len(inputs)]
			root, err := l.Parse("", []byte(src))
			if err == nil && root.Code() != src {
				err = errors.New("round trip mismatch for " + src)
			}
			errs[i] = err
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			t.Error(err)
		}
	}
}
