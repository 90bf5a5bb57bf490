// Package language binds a lexical grammar, parser tables and tree shaping
// options into something that turns source text into a syntax tree.
package language

import (
	"fmt"

	"github.com/dhamidi/pgen/config"
	"github.com/dhamidi/pgen/ebnflex"
	"github.com/dhamidi/pgen/grammar"
	"github.com/dhamidi/pgen/parser"
	"github.com/dhamidi/pgen/token"
	"github.com/dhamidi/pgen/tree"
	"github.com/tliron/commonlog"
	"golang.org/x/exp/ebnf"
)

var log = commonlog.GetLogger("pgen.language")

// Language is immutable after Open and may be shared between goroutines;
// every parse gets its own lexer and parser.
type Language struct {
	Config  *config.Config
	Lexicon ebnf.Grammar
	Tables  *grammar.Grammar

	opts []parser.Option
}

// Load reads the configuration at path and opens the language it describes.
func Load(path string, opts ...parser.Option) (*Language, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return Open(cfg, opts...)
}

// Open loads the files named by cfg. opts are applied to every parser
// after the options derived from cfg.
func Open(cfg *config.Config, opts ...parser.Option) (*Language, error) {
	lexicon, err := ebnflex.LoadGrammar(cfg.Lexer)
	if err != nil {
		return nil, err
	}
	if err := ebnflex.Verify(lexicon, "", cfg.Skip...); err != nil {
		return nil, fmt.Errorf("lexer %q: %w", cfg.Lexer, err)
	}
	tables, err := grammar.Load(cfg.Tables)
	if err != nil {
		return nil, err
	}
	if _, err := tables.Start(cfg.Start); err != nil {
		return nil, fmt.Errorf("tables %q: %w", cfg.Tables, err)
	}

	l := &Language{Config: cfg, Lexicon: lexicon, Tables: tables}
	if len(cfg.Wrap) > 0 {
		l.opts = append(l.opts, parser.WithAlwaysWrap(cfg.Wrap...))
	}
	l.opts = append(l.opts, opts...)
	log.Debugf("opened language: %d token productions, %d rules", len(ebnflex.TokenProductions(lexicon)), len(tables.Rules()))
	return l, nil
}

// Lexer returns a token source over src.
func (l *Language) Lexer(filename string, src []byte) *ebnflex.Lexer {
	return ebnflex.NewLexer(l.Lexicon, src, filename,
		ebnflex.WithTrivia(l.Config.Skip...),
		ebnflex.WithEndMarker(token.Type(l.Config.EndMarker)))
}

// Parser returns a parser over the language's tables. extra options are
// applied last.
func (l *Language) Parser(extra ...parser.Option) *parser.Parser {
	opts := append(append([]parser.Option(nil), l.opts...), extra...)
	return parser.New(l.Tables, opts...)
}

// Parse parses src from the configured start rule.
func (l *Language) Parse(filename string, src []byte) (tree.Element, error) {
	return l.ParseRule(l.Config.Start, filename, src)
}

func (l *Language) ParseRule(rule, filename string, src []byte) (tree.Element, error) {
	return l.Parser().Parse(rule, l.Lexer(filename, src))
}
