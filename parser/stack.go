package parser

import (
	"github.com/dhamidi/pgen/grammar"
	"github.com/dhamidi/pgen/tree"
)

// Frame is one open rule: a cursor into the rule's automaton and the
// children built so far.
type Frame struct {
	State    *grammar.DFAState
	Children []tree.Element
}

func (f *Frame) Rule() string {
	return f.State.Rule
}

// Stack is the pushdown configuration; the last frame is the active top.
type Stack []*Frame

func (s Stack) top() *Frame {
	return s[len(s)-1]
}

func (s Stack) states() []*grammar.DFAState {
	out := make([]*grammar.DFAState, len(s))
	for i, f := range s {
		out[i] = f.State
	}
	return out
}

// Expected lists the reserved strings and token types allowed next. It
// walks down from the top and stops at the first frame that cannot be
// reduced.
func (s Stack) Expected() []string {
	var out []string
	seen := make(map[string]bool)
	for i := len(s) - 1; i >= 0; i-- {
		state := s[i].State
		for _, arc := range state.Arcs() {
			name := arc.Key.String()
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
		if !state.Final {
			break
		}
	}
	return out
}
