package parser

import (
	"fmt"

	"github.com/dhamidi/pgen/token"
)

// window is a run of consecutive tokens pulled from the source during a
// speculation, starting at absolute index start.
type window struct {
	start  int
	tokens []token.Token
}

func (w *window) end() int {
	return w.start + len(w.tokens)
}

func (w *window) at(abs int) (token.Token, bool) {
	if abs < w.start || abs >= w.end() {
		return token.Token{}, false
	}
	return w.tokens[abs-w.start], true
}

type scope struct {
	origin  int
	windows []*window
}

func (s *scope) cached(abs int) (token.Token, bool) {
	for i := len(s.windows) - 1; i >= 0; i-- {
		if tok, ok := s.windows[i].at(abs); ok {
			return tok, true
		}
	}
	return token.Token{}, false
}

func (s *scope) store(abs int, tok token.Token) {
	if n := len(s.windows); n > 0 && s.windows[n-1].end() == abs {
		s.windows[n-1].tokens = append(s.windows[n-1].tokens, tok)
		return
	}
	s.windows = append(s.windows, &window{start: abs, tokens: []token.Token{tok}})
}

// Buffer wraps a Source with replayable speculation scopes.
//
// Every token is pulled from the source exactly once. Tokens pulled while a
// scope is open are cached in that scope and replayed, in order, by later
// calls to Next. Scopes nest; only the innermost open scope stores new
// tokens.
type Buffer struct {
	src      Source
	pos      int
	pulled   int
	err      error
	scopes   []*scope
	retained []*window
}

func NewBuffer(src Source) *Buffer {
	return &Buffer{src: src}
}

// Pos returns the number of tokens handed out by Next.
func (b *Buffer) Pos() int {
	return b.pos
}

// Depth returns the number of open speculation scopes.
func (b *Buffer) Depth() int {
	return len(b.scopes)
}

// Err returns the error that ended the source, if any. It is io.EOF after
// normal exhaustion.
func (b *Buffer) Err() error {
	return b.err
}

// Next returns the token at Pos and advances.
func (b *Buffer) Next() (token.Token, error) {
	if tok, ok := b.cached(b.pos); ok {
		b.pos++
		b.prune()
		return tok, nil
	}
	tok, ok := b.pull()
	if !ok {
		return token.Token{}, b.err
	}
	b.pos++
	return tok, nil
}

// Begin opens a scope whose Peek(0) is the token at absolute index origin.
// origin must not be behind Pos.
func (b *Buffer) Begin(origin int) {
	if origin < b.pos {
		panic(fmt.Sprintf("parser: speculation origin %d behind buffer position %d", origin, b.pos))
	}
	b.scopes = append(b.scopes, &scope{origin: origin})
}

// Peek returns the n-th token of the innermost scope. It reports false
// when the source has no more tokens.
func (b *Buffer) Peek(n int) (token.Token, bool) {
	if len(b.scopes) == 0 {
		panic("parser: Peek outside of a speculation scope")
	}
	s := b.scopes[len(b.scopes)-1]
	abs := s.origin + n
	if tok, ok := b.cached(abs); ok {
		return tok, true
	}
	if abs < b.pulled {
		return token.Token{}, false
	}
	for {
		tok, ok := b.pull()
		if !ok {
			return token.Token{}, false
		}
		s.store(b.pulled-1, tok)
		if b.pulled > abs {
			return tok, true
		}
	}
}

// End closes the innermost scope. Its tokens stay available to Next.
func (b *Buffer) End() {
	if len(b.scopes) == 0 {
		panic("parser: End without Begin")
	}
	s := b.scopes[len(b.scopes)-1]
	b.scopes = b.scopes[:len(b.scopes)-1]
	b.retained = append(b.retained, s.windows...)
	b.prune()
}

// cached looks abs up in the open scopes, innermost first, then in the
// windows of closed scopes.
func (b *Buffer) cached(abs int) (token.Token, bool) {
	if abs >= b.pulled {
		return token.Token{}, false
	}
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if tok, ok := b.scopes[i].cached(abs); ok {
			return tok, true
		}
	}
	for _, w := range b.retained {
		if tok, ok := w.at(abs); ok {
			return tok, true
		}
	}
	return token.Token{}, false
}

func (b *Buffer) pull() (token.Token, bool) {
	if b.err != nil {
		return token.Token{}, false
	}
	tok, err := b.src.Next()
	if err != nil {
		b.err = err
		return token.Token{}, false
	}
	b.pulled++
	return tok, true
}

// prune drops retained windows that Next has fully consumed.
func (b *Buffer) prune() {
	kept := b.retained[:0]
	for _, w := range b.retained {
		if w.end() > b.pos {
			kept = append(kept, w)
		}
	}
	for i := len(kept); i < len(b.retained); i++ {
		b.retained[i] = nil
	}
	b.retained = kept
}
