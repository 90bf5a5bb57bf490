// Package parser implements a table-driven LL parser over per-rule DFAs.
//
// Most decisions need one token of lookahead. When a soft keyword matches
// both its keyword arc and its plain type arc in the same state, the parser
// speculates over the following tokens, simulating each alternative on a
// copy of the stack, and keeps the one the input supports. Speculated
// tokens are buffered and replayed, so no token is lost or read twice.
//
// Usage:
//
//	p := parser.New(g, parser.WithAlwaysWrap("file_input"))
//	root, err := p.Parse("file_input", lexer)
//	var syntaxErr *parser.SyntaxError
//	if errors.As(err, &syntaxErr) { ... }
//
// A Parser keeps per-parse state and must not run two parses at once.
package parser

import (
	"errors"
	"fmt"
	"io"

	"github.com/dhamidi/pgen/grammar"
	"github.com/dhamidi/pgen/token"
	"github.com/dhamidi/pgen/tree"
	"github.com/tliron/commonlog"
)

// Tables is the view of the grammar the parser needs. *grammar.Grammar
// implements it.
type Tables interface {
	Start(rule string) (*grammar.DFAState, error)
	Reserved(value string) (grammar.ReservedString, bool)
	ContainsSyntax(t token.Type) bool
}

// Recoverer handles a token with no valid transition. Returning nil resumes
// parsing with the next token; any returned error stops the parse.
type Recoverer interface {
	Recover(s *State, tok token.Token) error
}

type RecovererFunc func(s *State, tok token.Token) error

func (f RecovererFunc) Recover(s *State, tok token.Token) error {
	return f(s, tok)
}

// Observer receives parse events. See the metrics package.
type Observer interface {
	// tokens counts every token fed to the engine, including those a
	// Recoverer adds.
	ParseFinished(rule string, tokens int, err error)
	// Disambiguated reports a soft keyword decision on the real stack.
	// Decisions made inside a simulation are not reported.
	Disambiguated(candidates, lookahead int, tieBreak bool)
}

type nopObserver struct{}

func (nopObserver) ParseFinished(string, int, error) {}
func (nopObserver) Disambiguated(int, int, bool)     {}

type Option func(*Parser)

func WithLeafConstructor(kind token.Type, f LeafFunc) Option {
	return func(p *Parser) {
		p.leaves[kind] = f
	}
}

func WithNodeConstructor(rule string, f NodeFunc) Option {
	return func(p *Parser) {
		p.nodes[rule] = f
	}
}

// WithAlwaysWrap keeps a node for rules even when they have a single child.
func WithAlwaysWrap(rules ...string) Option {
	return func(p *Parser) {
		for _, r := range rules {
			p.wrap[r] = true
		}
	}
}

func WithErrorRecovery(r Recoverer) Option {
	return func(p *Parser) {
		p.recoverer = r
	}
}

func WithObserver(o Observer) Option {
	return func(p *Parser) {
		if o != nil {
			p.observer = o
		}
	}
}

func WithLogger(l commonlog.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.log = l
		}
	}
}

type Parser struct {
	tables    Tables
	leaves    map[token.Type]LeafFunc
	nodes     map[string]NodeFunc
	wrap      map[string]bool
	recoverer Recoverer
	observer  Observer
	log       commonlog.Logger

	stack Stack
	buf   *Buffer
	last  token.Token
	count int
}

func New(tables Tables, opts ...Option) *Parser {
	p := &Parser{
		tables:   tables,
		leaves:   make(map[token.Type]LeafFunc),
		nodes:    make(map[string]NodeFunc),
		wrap:     make(map[string]bool),
		observer: nopObserver{},
		log:      commonlog.GetLogger("pgen.parser"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse consumes src and returns the tree for rule start. The result is a
// *tree.Node, or the single element the whole input collapsed to.
func (p *Parser) Parse(start string, src Source) (tree.Element, error) {
	first, err := p.tables.Start(start)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	p.stack = Stack{{State: first}}
	p.buf = NewBuffer(src)
	p.last = token.Token{}
	p.count = 0

	result, err := p.run()
	p.observer.ParseFinished(start, p.count, err)
	return result, err
}

func (p *Parser) run() (tree.Element, error) {
	for {
		tok, err := p.buf.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read token: %w", err)
		}
		p.last = tok
		p.count++
		if err := p.addToken(tok); err != nil {
			return nil, err
		}
	}

	for {
		if len(p.stack) == 0 {
			return nil, newInternalError("empty stack", p.last)
		}
		tos := p.stack.top()
		if !tos.State.Final {
			return nil, newInternalError("incomplete input", p.last)
		}
		if len(p.stack) == 1 {
			return p.convertNode(tos.Rule(), tos.Children), nil
		}
		p.reduce()
	}
}

// addToken is the only place the real stack advances: transition, else
// reduce a final top frame and retry, else error recovery.
func (p *Parser) addToken(tok token.Token) error {
	keys := p.candidateKeys(tok)
	for {
		if len(p.stack) == 0 {
			return newInternalError("empty stack", tok)
		}
		top := p.stack.top()
		if plan := p.selectPlan(keys); plan != nil {
			top.State = plan.Next
			for _, push := range plan.Pushes {
				p.stack = append(p.stack, &Frame{State: push})
			}
			leaf := p.convertLeaf(tok)
			p.stack.top().Children = append(p.stack.top().Children, leaf)
			return nil
		}
		if !top.State.Final {
			return p.errorRecovery(tok)
		}
		if len(p.stack) == 1 {
			return newInternalError("too much input", tok)
		}
		p.reduce()
	}
}

// reduce pops the top frame into its parent.
func (p *Parser) reduce() {
	tos := p.stack.top()
	p.stack = p.stack[:len(p.stack)-1]
	node := p.convertNode(tos.Rule(), tos.Children)
	parent := p.stack.top()
	parent.Children = append(parent.Children, node)
}

func (p *Parser) errorRecovery(tok token.Token) error {
	if p.recoverer != nil {
		return p.recoverer.Recover(&State{p: p}, tok)
	}
	expected := p.stack.Expected()
	p.log.Debugf("syntax error at %s: %s %q, expected %v", tok.Start, tok.Type, tok.Value, expected)
	return &SyntaxError{
		Message:   "SyntaxError: invalid syntax",
		ErrorLeaf: tree.NewErrorLeaf(tok.Type, tok.Value, tok.Start, tok.Prefix),
		Expected:  expected,
	}
}

// State gives a Recoverer access to the parse in progress.
type State struct {
	p *Parser
}

// Stack returns the live stack. Frames may be modified in place.
func (s *State) Stack() Stack {
	return s.p.stack
}

// Push opens a new frame for state.
func (s *State) Push(state *grammar.DFAState) {
	s.p.stack = append(s.p.stack, &Frame{State: state})
}

// Reduce pops the top frame into its parent, whether or not it is final.
func (s *State) Reduce() error {
	if len(s.p.stack) < 2 {
		return errors.New("parser: cannot reduce the last frame")
	}
	s.p.reduce()
	return nil
}

// AddToken feeds tok through the engine, for example to insert a missing
// token before the offending one. It counts toward the token total given
// to the Observer and becomes the position of a later InternalError.
func (s *State) AddToken(tok token.Token) error {
	s.p.last = tok
	s.p.count++
	return s.p.addToken(tok)
}

// Lookahead is the buffer the parse reads from. A Recoverer may discard
// tokens with Next, or look ahead with a Begin(Pos())...End pair around
// Peek. Begin behind Pos, Peek outside a scope and End without Begin
// panic, and a scope left open breaks the parse.
func (s *State) Lookahead() *Buffer {
	return s.p.buf
}
