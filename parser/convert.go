package parser

import (
	"github.com/dhamidi/pgen/token"
	"github.com/dhamidi/pgen/tree"
)

// LeafFunc builds the leaf for a token of a registered type.
type LeafFunc func(kind token.Type, value string, start token.Position, prefix string) tree.Element

// NodeFunc builds the node for a registered rule.
type NodeFunc func(rule string, children []tree.Element) *tree.Node

func (p *Parser) convertLeaf(tok token.Token) tree.Element {
	if f, ok := p.leaves[tok.Type]; ok {
		return f(tok.Type, tok.Value, tok.Start, tok.Prefix)
	}
	return tree.NewLeaf(tok.Type, tok.Value, tok.Start, tok.Prefix)
}

// convertNode returns the only child of a single-child rule unless the rule
// is always wrapped.
func (p *Parser) convertNode(rule string, children []tree.Element) tree.Element {
	if len(children) == 1 && !p.wrap[rule] {
		return children[0]
	}
	var n *tree.Node
	if f, ok := p.nodes[rule]; ok {
		n = f(rule, children)
	} else {
		n = tree.NewNode(rule, children)
	}
	n.Adopt()
	return n
}
