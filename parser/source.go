package parser

import (
	"io"

	"github.com/dhamidi/pgen/token"
)

// Source is a single-pass, pull-based token producer. Next returns io.EOF
// once the input is exhausted.
type Source interface {
	Next() (token.Token, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func() (token.Token, error)

func (f SourceFunc) Next() (token.Token, error) {
	return f()
}

// Tokens returns a Source yielding toks in order.
func Tokens(toks ...token.Token) Source {
	return &sliceSource{tokens: toks}
}

type sliceSource struct {
	tokens []token.Token
	pos    int
}

func (s *sliceSource) Next() (token.Token, error) {
	if s.pos >= len(s.tokens) {
		return token.Token{}, io.EOF
	}
	tok := s.tokens[s.pos]
	s.pos++
	return tok, nil
}
