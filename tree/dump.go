package tree

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/dhamidi/pgen/token"
)

// Dump renders e as an indented outline, one element per line.
func Dump(e Element, showPositions bool) string {
	var sb strings.Builder
	dumpIndent(&sb, e, 0, showPositions)
	return sb.String()
}

func dumpIndent(sb *strings.Builder, e Element, indent int, showPositions bool) {
	for i := 0; i < indent; i++ {
		sb.WriteString("  ")
	}
	sb.WriteString(e.Type())
	if showPositions {
		sb.WriteString(" [" + e.Start().String() + "-" + e.End().String() + "]")
	}
	if l := e.leaf(); l != nil {
		if orig, ok := originalType(e); ok {
			sb.WriteString(" " + string(orig))
		}
		sb.WriteString(" " + strconv.Quote(l.Value))
	}
	sb.WriteString("\n")

	for _, c := range e.children() {
		dumpIndent(sb, c, indent+1, showPositions)
	}
}

func (n *Node) String() string {
	return Dump(n, false)
}

func (l *Leaf) String() string {
	return Dump(l, false)
}

type jsonElement struct {
	Type     string         `json:"type"`
	Span     *jsonSpan      `json:"span,omitempty"`
	Value    *string        `json:"value,omitempty"`
	Prefix   string         `json:"prefix,omitempty"`
	Original string         `json:"original,omitempty"`
	Children []*jsonElement `json:"children,omitempty"`
}

type jsonSpan struct {
	Start jsonPosition `json:"start"`
	End   jsonPosition `json:"end"`
}

type jsonPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(toJSON(n))
}

func (l *Leaf) MarshalJSON() ([]byte, error) {
	return json.Marshal(toJSON(l))
}

func (l *ErrorLeaf) MarshalJSON() ([]byte, error) {
	return json.Marshal(toJSON(l))
}

func toJSON(e Element) *jsonElement {
	je := &jsonElement{Type: e.Type()}

	start, end := e.Start(), e.End()
	if start.Line != 0 || end.Line != 0 {
		je.Span = &jsonSpan{Start: jsonPos(start), End: jsonPos(end)}
	}

	if l := e.leaf(); l != nil {
		je.Value = &l.Value
		je.Prefix = l.Prefix
		if orig, ok := originalType(e); ok {
			je.Original = string(orig)
		}
		return je
	}
	children := e.children()
	je.Children = make([]*jsonElement, len(children))
	for i, c := range children {
		je.Children[i] = toJSON(c)
	}
	return je
}

func jsonPos(p token.Position) jsonPosition {
	return jsonPosition{Line: p.Line, Column: p.Column}
}
