// Package ebnflex provides lexical scanning based on EBNF grammars.
//
// Every production whose name starts with an uppercase letter is a token
// production. At each position the lexer tries all of them and keeps the
// longest match; equal lengths go to the production declared first.
// Trivia productions (whitespace, comments) are not emitted: their text
// becomes the prefix of the following token.
package ebnflex

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"unicode/utf8"

	"github.com/dhamidi/pgen/token"
	"golang.org/x/exp/ebnf"
)

const (
	// ErrorToken is the type of a character no production matches.
	ErrorToken token.Type = "ERRORTOKEN"
	// EndMarker is the default type of the token emitted at end of input.
	EndMarker token.Type = "ENDMARKER"
)

// DefaultTrivia are the productions skipped unless WithTrivia says otherwise.
var DefaultTrivia = []string{"WhiteSpace", "Comment"}

// memoKey is used for memoization of match results.
type memoKey struct {
	name   string
	offset int
}

// Lexer tokenizes input based on an EBNF grammar. It implements
// parser.Source.
type Lexer struct {
	grammar   ebnf.Grammar
	tokens    []string
	trivia    map[string]bool
	endMarker token.Type

	input []byte
	pos   token.Position
	done  bool

	memo     map[memoKey]int  // memoization cache: key -> match length (-1 = no match)
	visiting map[memoKey]bool // cycle detection
}

type Option func(*Lexer)

// WithTrivia replaces the set of productions whose text becomes token
// prefix.
func WithTrivia(names ...string) Option {
	return func(l *Lexer) {
		l.trivia = make(map[string]bool, len(names))
		for _, n := range names {
			l.trivia[n] = true
		}
	}
}

// WithEndMarker sets the type of the final token. An empty type disables
// it, and trailing trivia is then dropped.
func WithEndMarker(t token.Type) Option {
	return func(l *Lexer) {
		l.endMarker = t
	}
}

// NewLexer creates a lexer for the given grammar and input.
func NewLexer(grammar ebnf.Grammar, input []byte, filename string, opts ...Option) *Lexer {
	l := &Lexer{
		grammar:   grammar,
		tokens:    TokenProductions(grammar),
		endMarker: EndMarker,
		input:     input,
		pos:       token.Position{Filename: filename, Line: 1},
		memo:      make(map[memoKey]int),
		visiting:  make(map[memoKey]bool),
	}
	WithTrivia(DefaultTrivia...)(l)
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadGrammar loads an EBNF grammar from a file.
func LoadGrammar(filename string) (ebnf.Grammar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()

	grammar, err := ebnf.Parse(filename, f)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}

	return grammar, nil
}

// TokenProductions returns the names of the token productions of g in
// declaration order.
func TokenProductions(g ebnf.Grammar) []string {
	var names []string
	for name, prod := range g {
		if prod.Expr == nil || len(name) == 0 || name[0] < 'A' || name[0] > 'Z' {
			continue
		}
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return g[a].Pos().Offset - g[b].Pos().Offset
	})
	return names
}

// Position returns the current position in the input.
func (l *Lexer) Position() token.Position {
	return l.pos
}

// NextToken returns the next token from the input, then the end marker,
// then io.EOF.
func (l *Lexer) NextToken() (token.Token, error) {
	start := l.pos.Offset
	for {
		if l.pos.Offset >= len(l.input) {
			return l.finish(start)
		}
		kind, n := l.longestMatch(l.pos.Offset)
		if n == 0 {
			_, size := utf8.DecodeRune(l.input[l.pos.Offset:])
			return l.emit(ErrorToken, start, size), nil
		}
		if l.trivia[kind] {
			l.pos = l.pos.Advance(string(l.input[l.pos.Offset : l.pos.Offset+n]))
			continue
		}
		return l.emit(token.Type(kind), start, n), nil
	}
}

// Next implements parser.Source.
func (l *Lexer) Next() (token.Token, error) {
	return l.NextToken()
}

func (l *Lexer) emit(kind token.Type, prefixStart, n int) token.Token {
	tok := token.Token{
		Type:   kind,
		Value:  string(l.input[l.pos.Offset : l.pos.Offset+n]),
		Start:  l.pos,
		Prefix: string(l.input[prefixStart:l.pos.Offset]),
	}
	l.pos = l.pos.Advance(tok.Value)
	return tok
}

func (l *Lexer) finish(prefixStart int) (token.Token, error) {
	if l.done || l.endMarker == "" {
		l.done = true
		return token.Token{Start: l.pos}, io.EOF
	}
	l.done = true
	return token.Token{
		Type:   l.endMarker,
		Start:  l.pos,
		Prefix: string(l.input[prefixStart:l.pos.Offset]),
	}, nil
}

func (l *Lexer) longestMatch(offset int) (string, int) {
	// Clear memoization cache for each new token (positions change)
	l.memo = make(map[memoKey]int)

	var bestKind string
	var bestLen int
	for _, name := range l.tokens {
		l.visiting = make(map[memoKey]bool)
		if n := l.tryMatch(l.grammar[name].Expr, offset); n > bestLen {
			bestLen = n
			bestKind = name
		}
	}
	return bestKind, bestLen
}

// tryMatch attempts to match an expression at the given offset. It returns
// the length of the match, which may be 0 for optional parts, or -1.
func (l *Lexer) tryMatch(expr ebnf.Expression, offset int) int {
	switch e := expr.(type) {
	case *ebnf.Token:
		return l.tryMatchToken(e.String, offset)

	case *ebnf.Range:
		return l.tryMatchRange(e.Begin.String, e.End.String, offset)

	case ebnf.Sequence:
		total := 0
		for _, item := range e {
			n := l.tryMatch(item, offset+total)
			if n < 0 {
				return -1
			}
			total += n
		}
		return total

	case ebnf.Alternative:
		best := -1
		for _, alt := range e {
			if n := l.tryMatch(alt, offset); n > best {
				best = n
			}
		}
		return best

	case *ebnf.Repetition:
		total := 0
		for {
			n := l.tryMatch(e.Body, offset+total)
			if n <= 0 {
				break
			}
			total += n
		}
		return total

	case *ebnf.Option:
		if n := l.tryMatch(e.Body, offset); n > 0 {
			return n
		}
		return 0

	case *ebnf.Group:
		return l.tryMatch(e.Body, offset)

	case *ebnf.Name:
		return l.tryMatchName(e.String, offset)
	}
	return -1
}

// tryMatchName matches a named production with memoization and cycle detection.
func (l *Lexer) tryMatchName(name string, offset int) int {
	key := memoKey{name: name, offset: offset}

	if result, ok := l.memo[key]; ok {
		return result
	}

	// A production already being matched at this offset is left recursion.
	if l.visiting[key] {
		return -1
	}

	prod, ok := l.grammar[name]
	if !ok || prod.Expr == nil {
		l.memo[key] = -1
		return -1
	}

	l.visiting[key] = true
	result := l.tryMatch(prod.Expr, offset)
	delete(l.visiting, key)

	l.memo[key] = result
	return result
}

// tryMatchToken matches a literal string.
func (l *Lexer) tryMatchToken(s string, offset int) int {
	if offset+len(s) > len(l.input) {
		return -1
	}
	if string(l.input[offset:offset+len(s)]) == s {
		return len(s)
	}
	return -1
}

// tryMatchRange matches one character between begin and end inclusive.
func (l *Lexer) tryMatchRange(begin, end string, offset int) int {
	if offset >= len(l.input) {
		return -1
	}
	lo, _ := utf8.DecodeRuneInString(begin)
	hi, _ := utf8.DecodeRuneInString(end)
	ch, size := utf8.DecodeRune(l.input[offset:])
	if ch >= lo && ch <= hi {
		return size
	}
	return -1
}

// Tokenize reads all tokens from input, including the end marker.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var tokens []token.Token
	for {
		tok, err := l.NextToken()
		if errors.Is(err, io.EOF) {
			return tokens, nil
		}
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
	}
}

// Verify checks that every token and trivia production is defined and
// that g is consistent, using start as the root production when given.
func Verify(g ebnf.Grammar, start string, trivia ...string) error {
	var errs []error
	for _, name := range trivia {
		if _, ok := g[name]; !ok {
			errs = append(errs, fmt.Errorf("trivia production %q not defined", name))
		}
	}
	if len(TokenProductions(g)) == 0 {
		errs = append(errs, errors.New("grammar has no token productions"))
	}
	if start != "" {
		if err := ebnf.Verify(g, start); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
