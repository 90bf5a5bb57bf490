package grammar

import (
	"errors"
	"fmt"

	"github.com/dhamidi/pgen/token"
)

// Builder assembles a Grammar. Errors are collected and reported by Build.
//
//	b := grammar.NewBuilder()
//	b.SyntaxTypes("NAME", "OP")
//	b.Reserve("match", true)
//	s0 := b.State("stmt", false)
//	s1 := b.State("stmt", true)
//	b.Arc(s0, grammar.TypeKey("NAME"), s1)
//	g, err := b.Build()
type Builder struct {
	g    *Grammar
	errs []error
	own  map[*DFAState]bool
}

func NewBuilder() *Builder {
	return &Builder{
		g: &Grammar{
			rules:    make(map[string][]*DFAState),
			reserved: make(map[string]ReservedString),
			syntax:   make(map[token.Type]bool),
		},
		own: make(map[*DFAState]bool),
	}
}

func (b *Builder) SyntaxTypes(types ...token.Type) *Builder {
	for _, t := range types {
		b.g.syntax[t] = true
	}
	return b
}

func (b *Builder) Reserve(value string, soft bool) *Builder {
	if _, dup := b.g.reserved[value]; dup {
		b.errs = append(b.errs, fmt.Errorf("reserved string %q registered twice", value))
		return b
	}
	b.g.reserved[value] = ReservedString{Value: value, Soft: soft}
	b.g.words = append(b.g.words, value)
	return b
}

// State appends a new state to rule's automaton. The first state of a
// rule is its initial state.
func (b *Builder) State(rule string, final bool) *DFAState {
	if _, ok := b.g.rules[rule]; !ok {
		b.g.order = append(b.g.order, rule)
	}
	s := &DFAState{Rule: rule, Index: len(b.g.rules[rule]), Final: final}
	b.g.rules[rule] = append(b.g.rules[rule], s)
	b.own[s] = true
	return s
}

// Lookup returns state index of rule, or nil.
func (b *Builder) Lookup(rule string, index int) *DFAState {
	states := b.g.rules[rule]
	if index < 0 || index >= len(states) {
		return nil
	}
	return states[index]
}

// Arc registers a transition from -> next on key, pushing the given states.
func (b *Builder) Arc(from *DFAState, key Key, next *DFAState, pushes ...*DFAState) *Builder {
	if err := b.checkArc(from, key, next, pushes); err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	plan := &Plan{Next: next, Pushes: append([]*DFAState(nil), pushes...)}
	if err := from.addArc(key, plan); err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

func (b *Builder) checkArc(from *DFAState, key Key, next *DFAState, pushes []*DFAState) error {
	if from == nil || next == nil {
		return fmt.Errorf("arc %s: missing source or target state", key)
	}
	if !b.own[from] || !b.own[next] {
		return fmt.Errorf("arc %s: state from another builder", key)
	}
	if from.Rule != next.Rule {
		return fmt.Errorf("arc %s from %s: next state %s belongs to another rule", key, from, next)
	}
	for i, p := range pushes {
		if p == nil || !b.own[p] {
			return fmt.Errorf("arc %s from %s: invalid push #%d", key, from, i)
		}
	}
	return nil
}

// Build validates the collected tables and returns the grammar.
func (b *Builder) Build() (*Grammar, error) {
	errs := append([]error(nil), b.errs...)
	for _, rule := range b.g.order {
		for _, s := range b.g.rules[rule] {
			for _, arc := range s.arcs {
				if !arc.Key.IsReserved() {
					continue
				}
				if _, ok := b.g.reserved[arc.Key.Value()]; !ok {
					errs = append(errs, fmt.Errorf("state %s: arc on unregistered reserved string %s", s, arc.Key))
				}
			}
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return b.g, nil
}
