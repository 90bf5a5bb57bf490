// Package tree provides the concrete syntax tree built by the parser.
//
// Children slices are the only owning references in a tree. Parent links
// are weak pointers set after construction: holding a leaf does not keep
// its ancestors alive.
package tree

import (
	"strings"
	"weak"

	"github.com/dhamidi/pgen/token"
)

// Element is a Node or a Leaf.
type Element interface {
	// Type is the rule name of a node or the token type of a leaf.
	Type() string
	Parent() *Node
	Start() token.Position
	End() token.Position
	// Code reproduces the source text covered by the element, prefixes
	// included.
	Code() string

	setParent(*Node)
	writeCode(*strings.Builder)
	// leaf is nil for nodes; children is nil for leaves. Elements built
	// by embedding a *Leaf or *Node inherit both.
	leaf() *Leaf
	children() []Element
}

type link struct {
	parent weak.Pointer[Node]
}

func (l *link) Parent() *Node {
	return l.parent.Value()
}

func (l *link) setParent(n *Node) {
	if n == nil {
		l.parent = weak.Pointer[Node]{}
		return
	}
	l.parent = weak.Make(n)
}

type Node struct {
	link
	Rule     string
	Children []Element
}

// NewNode returns a node for rule owning children. Parent links of the
// children are left to the caller; see Adopt.
func NewNode(rule string, children []Element) *Node {
	return &Node{Rule: rule, Children: children}
}

// Adopt points the parent link of every child at n.
func (n *Node) Adopt() {
	for _, c := range n.Children {
		c.setParent(n)
	}
}

func (n *Node) leaf() *Leaf {
	return nil
}

func (n *Node) children() []Element {
	return n.Children
}

func (n *Node) Type() string {
	return n.Rule
}

func (n *Node) Start() token.Position {
	if len(n.Children) == 0 {
		return token.Position{}
	}
	return n.Children[0].Start()
}

func (n *Node) End() token.Position {
	if len(n.Children) == 0 {
		return token.Position{}
	}
	return n.Children[len(n.Children)-1].End()
}

func (n *Node) Code() string {
	var sb strings.Builder
	n.writeCode(&sb)
	return sb.String()
}

func (n *Node) writeCode(sb *strings.Builder) {
	for _, c := range n.Children {
		c.writeCode(sb)
	}
}

type Leaf struct {
	link
	Kind   token.Type
	Value  string
	Pos    token.Position
	Prefix string
}

func NewLeaf(kind token.Type, value string, start token.Position, prefix string) *Leaf {
	return &Leaf{Kind: kind, Value: value, Pos: start, Prefix: prefix}
}

func (l *Leaf) leaf() *Leaf {
	return l
}

func (l *Leaf) children() []Element {
	return nil
}

func (l *Leaf) Type() string {
	return string(l.Kind)
}

func (l *Leaf) Start() token.Position {
	return l.Pos
}

func (l *Leaf) End() token.Position {
	return l.Pos.Advance(l.Value)
}

func (l *Leaf) Code() string {
	return l.Prefix + l.Value
}

func (l *Leaf) writeCode(sb *strings.Builder) {
	sb.WriteString(l.Prefix)
	sb.WriteString(l.Value)
}

// ErrorLeafType is the Type of every ErrorLeaf.
const ErrorLeafType = "error_leaf"

// ErrorLeaf is a token that had no valid transition. Original keeps the
// token type the lexer produced.
type ErrorLeaf struct {
	Leaf
	Original token.Type
}

func NewErrorLeaf(original token.Type, value string, start token.Position, prefix string) *ErrorLeaf {
	return &ErrorLeaf{
		Leaf:     Leaf{Kind: ErrorLeafType, Value: value, Pos: start, Prefix: prefix},
		Original: original,
	}
}

func (e *ErrorLeaf) original() token.Type {
	return e.Original
}

// originalType returns the lexer's token type of an error leaf.
func originalType(e Element) (token.Type, bool) {
	if el, ok := e.(interface{ original() token.Type }); ok {
		return el.original(), true
	}
	return "", false
}

// Leaves calls yield for every leaf below e from left to right.
func Leaves(e Element) func(yield func(*Leaf) bool) {
	return func(yield func(*Leaf) bool) {
		walkLeaves(e, yield)
	}
}

func walkLeaves(e Element, yield func(*Leaf) bool) bool {
	if l := e.leaf(); l != nil {
		return yield(l)
	}
	for _, c := range e.children() {
		if !walkLeaves(c, yield) {
			return false
		}
	}
	return true
}

// Root follows parent links up from e.
func Root(e Element) Element {
	for {
		p := e.Parent()
		if p == nil {
			return e
		}
		e = p
	}
}
