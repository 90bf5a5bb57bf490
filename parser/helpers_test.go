package parser

import (
	"testing"

	"github.com/dhamidi/pgen/grammar"
	"github.com/dhamidi/pgen/token"
)

func newStates(b *grammar.Builder, rule string, n int, finals ...int) []*grammar.DFAState {
	isFinal := make(map[int]bool)
	for _, f := range finals {
		isFinal[f] = true
	}
	out := make([]*grammar.DFAState, n)
	for i := range out {
		out[i] = b.State(rule, isFinal[i])
	}
	return out
}

func with(pre []*grammar.DFAState, s *grammar.DFAState) []*grammar.DFAState {
	out := append([]*grammar.DFAState(nil), pre...)
	return append(out, s)
}

// miniGrammar is a small statement language:
//
//	file_input: stmt* ENDMARKER
//	stmt:       match_stmt | expr_stmt
//	match_stmt: 'match' expr ':' NEWLINE
//	expr_stmt:  expr ['=' expr] NEWLINE
//	expr:       (NAME | NUMBER | '(' expr ')') ('(' [expr] ')')*
//
// 'match' is soft. keywordFirst controls whether its arc is registered
// before the NAME arc in the states where both apply.
func miniGrammar(t *testing.T, keywordFirst bool) *grammar.Grammar {
	t.Helper()
	b := grammar.NewBuilder()
	b.SyntaxTypes("NAME", "OP")
	for _, op := range []string{"(", ")", ":", "="} {
		b.Reserve(op, false)
	}
	b.Reserve("match", true)

	f := newStates(b, "file_input", 2, 1)
	s := newStates(b, "stmt", 2, 1)
	m := newStates(b, "match_stmt", 5, 4)
	e := newStates(b, "expr_stmt", 5, 4)
	x := newStates(b, "expr", 7, 1, 4)

	exprArcs := func(from, next *grammar.DFAState, pre ...*grammar.DFAState) {
		b.Arc(from, grammar.TypeKey("NAME"), next, with(pre, x[1])...)
		b.Arc(from, grammar.TypeKey("NUMBER"), next, with(pre, x[1])...)
		b.Arc(from, grammar.ReservedKey("("), next, with(pre, x[2])...)
	}
	stmtArcs := func(from, next *grammar.DFAState, pre ...*grammar.DFAState) {
		if keywordFirst {
			b.Arc(from, grammar.ReservedKey("match"), next, with(pre, m[1])...)
			exprArcs(from, next, with(pre, e[1])...)
		} else {
			exprArcs(from, next, with(pre, e[1])...)
			b.Arc(from, grammar.ReservedKey("match"), next, with(pre, m[1])...)
		}
	}

	stmtArcs(f[0], f[0], s[1])
	b.Arc(f[0], grammar.TypeKey("ENDMARKER"), f[1])

	stmtArcs(s[0], s[1])

	b.Arc(m[0], grammar.ReservedKey("match"), m[1])
	exprArcs(m[1], m[2])
	b.Arc(m[2], grammar.ReservedKey(":"), m[3])
	b.Arc(m[3], grammar.TypeKey("NEWLINE"), m[4])

	exprArcs(e[0], e[1])
	b.Arc(e[1], grammar.ReservedKey("="), e[2])
	b.Arc(e[1], grammar.TypeKey("NEWLINE"), e[4])
	exprArcs(e[2], e[3])
	b.Arc(e[3], grammar.TypeKey("NEWLINE"), e[4])

	b.Arc(x[0], grammar.TypeKey("NAME"), x[1])
	b.Arc(x[0], grammar.TypeKey("NUMBER"), x[1])
	b.Arc(x[0], grammar.ReservedKey("("), x[2])
	b.Arc(x[1], grammar.ReservedKey("("), x[5])
	exprArcs(x[2], x[3])
	b.Arc(x[3], grammar.ReservedKey(")"), x[4])
	b.Arc(x[4], grammar.ReservedKey("("), x[5])
	exprArcs(x[5], x[6])
	b.Arc(x[5], grammar.ReservedKey(")"), x[1])
	b.Arc(x[6], grammar.ReservedKey(")"), x[1])

	g, err := b.Build()
	if err != nil {
		t.Fatalf("build grammar: %v", err)
	}
	return g
}

// nestedGrammar needs a disambiguation inside a disambiguation:
//
//	top: (a | n) ENDMARKER
//	a:   'k' b
//	b:   'k' '!' | NAME '?'
//	n:   NAME NAME '.'
func nestedGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	b := grammar.NewBuilder()
	b.SyntaxTypes("NAME", "OP")
	b.Reserve("k", true)
	for _, op := range []string{"!", "?", "."} {
		b.Reserve(op, false)
	}

	top := newStates(b, "top", 3, 2)
	a := newStates(b, "a", 3, 2)
	bb := newStates(b, "b", 4, 3)
	n := newStates(b, "n", 4, 3)

	b.Arc(top[0], grammar.ReservedKey("k"), top[1], a[1])
	b.Arc(top[0], grammar.TypeKey("NAME"), top[1], n[1])
	b.Arc(top[1], grammar.TypeKey("ENDMARKER"), top[2])

	b.Arc(a[0], grammar.ReservedKey("k"), a[1])
	b.Arc(a[1], grammar.ReservedKey("k"), a[2], bb[1])
	b.Arc(a[1], grammar.TypeKey("NAME"), a[2], bb[2])

	b.Arc(bb[0], grammar.ReservedKey("k"), bb[1])
	b.Arc(bb[0], grammar.TypeKey("NAME"), bb[2])
	b.Arc(bb[1], grammar.ReservedKey("!"), bb[3])
	b.Arc(bb[2], grammar.ReservedKey("?"), bb[3])

	b.Arc(n[0], grammar.TypeKey("NAME"), n[1])
	b.Arc(n[1], grammar.TypeKey("NAME"), n[2])
	b.Arc(n[2], grammar.ReservedKey("."), n[3])

	g, err := b.Build()
	if err != nil {
		t.Fatalf("build grammar: %v", err)
	}
	return g
}

func isLetter(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// scan tokenizes test input: spaces become prefixes, letters NAME, digits
// NUMBER, '\n' NEWLINE and any other byte OP. An ENDMARKER is appended
// unless noEnd is set.
func scan(src string, noEnd bool) []token.Token {
	var toks []token.Token
	pos := token.Position{Line: 1}
	prefix := ""
	emit := func(typ token.Type, value string) {
		start := pos.Advance(prefix)
		toks = append(toks, token.Token{Type: typ, Value: value, Start: start, Prefix: prefix})
		pos = start.Advance(value)
		prefix = ""
	}
	for i := 0; i < len(src); {
		c := src[i]
		j := i + 1
		switch {
		case c == ' ':
			for j < len(src) && src[j] == ' ' {
				j++
			}
			prefix += src[i:j]
		case c == '\n':
			emit("NEWLINE", "\n")
		case isLetter(c):
			for j < len(src) && (isLetter(src[j]) || isDigit(src[j])) {
				j++
			}
			emit("NAME", src[i:j])
		case isDigit(c):
			for j < len(src) && isDigit(src[j]) {
				j++
			}
			emit("NUMBER", src[i:j])
		default:
			emit("OP", src[i:j])
		}
		i = j
	}
	if !noEnd {
		emit("ENDMARKER", "")
	}
	return toks
}

// countingSource records how many tokens were pulled. onPull, if set,
// runs before each pull with the number of tokens pulled so far.
type countingSource struct {
	src    Source
	pulled int
	onPull func(pulled int)
}

func (c *countingSource) Next() (token.Token, error) {
	if c.onPull != nil {
		c.onPull(c.pulled)
	}
	tok, err := c.src.Next()
	if err == nil {
		c.pulled++
	}
	return tok, err
}

type disambiguation struct {
	candidates, lookahead int
	tie                   bool
}

type recordingObserver struct {
	finished      int
	lastErr       error
	tokens        int
	disambiguated []disambiguation
}

func (r *recordingObserver) ParseFinished(rule string, tokens int, err error) {
	r.finished++
	r.tokens = tokens
	r.lastErr = err
}

func (r *recordingObserver) Disambiguated(candidates, lookahead int, tie bool) {
	r.disambiguated = append(r.disambiguated, disambiguation{candidates, lookahead, tie})
}
