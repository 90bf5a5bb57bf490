// Package grammar holds precompiled parser tables: one deterministic finite
// automaton per grammar rule, plus the reserved strings of the language.
//
// Tables are produced by a grammar generator outside this module and are
// either assembled with a [Builder] or decoded from YAML with [Decode].
package grammar

import (
	"fmt"
	"strconv"

	"github.com/dhamidi/pgen/token"
)

// Key indexes a transition table. It is either a token type or the exact
// text of a reserved string.
type Key struct {
	value    string
	reserved bool
}

func TypeKey(t token.Type) Key {
	return Key{value: string(t)}
}

func ReservedKey(value string) Key {
	return Key{value: value, reserved: true}
}

func (k Key) IsReserved() bool {
	return k.reserved
}

// Type returns the token type of a type key, or "" for a reserved key.
func (k Key) Type() token.Type {
	if k.reserved {
		return ""
	}
	return token.Type(k.value)
}

func (k Key) Value() string {
	return k.value
}

func (k Key) String() string {
	if k.reserved {
		return strconv.Quote(k.value)
	}
	return k.value
}

// Plan is the reaction to a matched key: the next state of the current
// frame and the states of nested rules to push before the token is attached.
type Plan struct {
	Next   *DFAState
	Pushes []*DFAState
}

type Arc struct {
	Key  Key
	Plan *Plan
}

// DFAState is one state of a rule's automaton. Arc order is significant:
// it is the priority used to break disambiguation ties.
type DFAState struct {
	Rule  string
	Index int
	Final bool

	arcs  []Arc
	index map[Key]int
}

func (s *DFAState) Arcs() []Arc {
	return s.arcs
}

func (s *DFAState) Plan(k Key) (*Plan, bool) {
	i, ok := s.index[k]
	if !ok {
		return nil, false
	}
	return s.arcs[i].Plan, true
}

// Order returns the registration index of k, or -1 if s has no arc for it.
func (s *DFAState) Order(k Key) int {
	if i, ok := s.index[k]; ok {
		return i
	}
	return -1
}

func (s *DFAState) String() string {
	return fmt.Sprintf("%s:%d", s.Rule, s.Index)
}

func (s *DFAState) addArc(k Key, plan *Plan) error {
	if _, dup := s.index[k]; dup {
		return fmt.Errorf("state %s: duplicate arc for %s", s, k)
	}
	if s.index == nil {
		s.index = make(map[Key]int)
	}
	s.index[k] = len(s.arcs)
	s.arcs = append(s.arcs, Arc{Key: k, Plan: plan})
	return nil
}

// ReservedString is literal text recognised as a keyword or operator. A
// soft reserved string stays valid as a plain token of its type.
type ReservedString struct {
	Value string
	Soft  bool
}

type Grammar struct {
	rules    map[string][]*DFAState
	order    []string
	reserved map[string]ReservedString
	words    []string
	syntax   map[token.Type]bool
}

// Start returns the initial state of rule.
func (g *Grammar) Start(rule string) (*DFAState, error) {
	states := g.rules[rule]
	if len(states) == 0 {
		return nil, fmt.Errorf("rule %q not found in grammar", rule)
	}
	return states[0], nil
}

func (g *Grammar) States(rule string) []*DFAState {
	return g.rules[rule]
}

// Rules returns the rule names in registration order.
func (g *Grammar) Rules() []string {
	return g.order
}

func (g *Grammar) Reserved(value string) (ReservedString, bool) {
	rs, ok := g.reserved[value]
	return rs, ok
}

func (g *Grammar) ReservedStrings() []ReservedString {
	out := make([]ReservedString, 0, len(g.words))
	for _, w := range g.words {
		out = append(out, g.reserved[w])
	}
	return out
}

// ContainsSyntax reports whether tokens of type t are checked against the
// reserved strings.
func (g *Grammar) ContainsSyntax(t token.Type) bool {
	return g.syntax[t]
}

// SoftConflicts returns the states where a soft reserved string and a
// token type carrying syntax both have arcs, in rule order. These are the
// states where the parser may need more than one token of lookahead.
func (g *Grammar) SoftConflicts() []*DFAState {
	var out []*DFAState
	for _, rule := range g.order {
		for _, s := range g.rules[rule] {
			if g.softConflict(s) {
				out = append(out, s)
			}
		}
	}
	return out
}

func (g *Grammar) softConflict(s *DFAState) bool {
	soft, typed := false, false
	for _, arc := range s.arcs {
		if arc.Key.IsReserved() {
			soft = soft || g.reserved[arc.Key.Value()].Soft
		} else {
			typed = typed || g.syntax[arc.Key.Type()]
		}
	}
	return soft && typed
}
