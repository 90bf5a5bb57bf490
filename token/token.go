// Package token defines the lexical tokens consumed by the parser.
package token

import (
	"fmt"
	"strings"
)

// Type tags a token, for example "NAME", "OP" or "NEWLINE".
type Type string

// Position is a location in source text. Lines are 1-based, columns are
// 0-based byte offsets into the line.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Advance returns the position reached after text starting at p.
func (p Position) Advance(text string) Position {
	end := p
	end.Offset += len(text)
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		end.Line += strings.Count(text, "\n")
		end.Column = len(text) - i - 1
	} else {
		end.Column += len(text)
	}
	return end
}

// Token is immutable once produced.
type Token struct {
	Type   Type
	Value  string
	Start  Position
	Prefix string // whitespace and comments preceding the token
}

// End returns the position just past the token's value.
func (t Token) End() Position {
	return t.Start.Advance(t.Value)
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s %q", t.Start, t.Type, t.Value)
}
