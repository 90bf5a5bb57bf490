package parser

import (
	"slices"

	"github.com/dhamidi/pgen/grammar"
	"github.com/dhamidi/pgen/token"
)

// candidateKeys maps a token to the keys it may match. A soft reserved
// string keeps its plain type key as well, which is the only source of
// ambiguity.
func (p *Parser) candidateKeys(tok token.Token) []grammar.Key {
	if p.tables.ContainsSyntax(tok.Type) {
		if rs, ok := p.tables.Reserved(tok.Value); ok {
			if rs.Soft {
				return []grammar.Key{grammar.ReservedKey(rs.Value), grammar.TypeKey(tok.Type)}
			}
			return []grammar.Key{grammar.ReservedKey(rs.Value)}
		}
	}
	return []grammar.Key{grammar.TypeKey(tok.Type)}
}

type candidate struct {
	key   grammar.Key
	order int
	plan  *grammar.Plan

	sim     []*grammar.DFAState
	matched int
	dead    bool
}

// matchPlans collects the arcs of state matching keys, in registration order.
func matchPlans(keys []grammar.Key, state *grammar.DFAState) []candidate {
	var out []candidate
	for _, k := range keys {
		if plan, ok := state.Plan(k); ok {
			out = append(out, candidate{key: k, order: state.Order(k), plan: plan})
		}
	}
	if len(out) > 1 {
		slices.SortFunc(out, func(a, b candidate) int { return a.order - b.order })
	}
	return out
}

// applyPlan returns states[:depth] followed by plan.Next and plan.Pushes,
// without touching states.
func applyPlan(states []*grammar.DFAState, depth int, plan *grammar.Plan) []*grammar.DFAState {
	out := make([]*grammar.DFAState, 0, depth+1+len(plan.Pushes))
	out = append(out, states[:depth]...)
	out = append(out, plan.Next)
	return append(out, plan.Pushes...)
}

// selectPlan resolves keys against the top frame.
func (p *Parser) selectPlan(keys []grammar.Key) *grammar.Plan {
	top := p.stack.top()
	cands := matchPlans(keys, top.State)
	switch len(cands) {
	case 0:
		return nil
	case 1:
		return cands[0].plan
	}
	base := p.stack.states()
	return p.disambiguate(base[:len(base)-1], cands, p.buf.Pos())
}

// disambiguate picks one of several plans matching the same token. Each
// candidate is simulated over the tokens following it, starting at absolute
// buffer index origin, on top of the read-only states in base. Simulation
// stops once at most one candidate is alive or input runs out. The winner
// is the only survivor, else the one that matched the most lookahead, ties
// going to the arc registered first.
func (p *Parser) disambiguate(base []*grammar.DFAState, cands []candidate, origin int) *grammar.Plan {
	p.buf.Begin(origin)
	defer p.buf.End()

	for i := range cands {
		cands[i].sim = applyPlan(base, len(base), cands[i].plan)
	}

	alive := len(cands)
	n := 0
	for alive > 1 {
		tok, ok := p.buf.Peek(n)
		if !ok {
			break
		}
		keys := p.candidateKeys(tok)
		for i := range cands {
			c := &cands[i]
			if c.dead {
				continue
			}
			sim, ok := p.simulate(c.sim, keys, origin+n+1)
			if !ok {
				c.dead = true
				alive--
				continue
			}
			c.sim = sim
			c.matched++
		}
		n++
	}

	winner, tie := pickCandidate(cands)
	p.log.Debugf("disambiguated %d plans over %d lookahead tokens at depth %d: %s wins (tie break: %t)",
		len(cands), n, p.buf.Depth(), winner.key, tie)
	// nested runs only steer a simulation
	if p.buf.Depth() == 1 {
		p.observer.Disambiguated(len(cands), n, tie)
	}
	return winner.plan
}

// simulate feeds one token to a simulated stack the way addToken feeds the
// real one: transition, else pop a final state, else fail.
func (p *Parser) simulate(sim []*grammar.DFAState, keys []grammar.Key, origin int) ([]*grammar.DFAState, bool) {
	for d := len(sim) - 1; d >= 0; d-- {
		cands := matchPlans(keys, sim[d])
		switch len(cands) {
		case 0:
			if sim[d].Final {
				continue
			}
			return nil, false
		case 1:
			return applyPlan(sim, d, cands[0].plan), true
		default:
			return applyPlan(sim, d, p.disambiguate(sim[:d], cands, origin)), true
		}
	}
	return nil, false
}

func pickCandidate(cands []candidate) (candidate, bool) {
	alive := -1
	for i, c := range cands {
		if !c.dead {
			if alive >= 0 {
				alive = -1
				break
			}
			alive = i
		}
	}
	if alive >= 0 {
		return cands[alive], false
	}

	best := 0
	for i := 1; i < len(cands); i++ {
		if cands[i].matched > cands[best].matched {
			best = i
		}
	}
	tie := false
	for i, c := range cands {
		if i != best && c.matched == cands[best].matched {
			tie = true
		}
	}
	return cands[best], tie
}
