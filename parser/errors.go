package parser

import (
	"fmt"
	"strings"

	"github.com/dhamidi/pgen/token"
	"github.com/dhamidi/pgen/tree"
)

// SyntaxError reports input the grammar does not accept. ErrorLeaf is the
// token that had no transition while its frame was not final.
type SyntaxError struct {
	Message   string
	ErrorLeaf *tree.ErrorLeaf
	// Expected lists the reserved strings and token types the stack would
	// have accepted at that point.
	Expected []string
}

func (e *SyntaxError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	if e.ErrorLeaf != nil {
		fmt.Fprintf(&sb, " at %s: unexpected %s %q", e.ErrorLeaf.Pos, e.ErrorLeaf.Original, e.ErrorLeaf.Value)
	}
	if len(e.Expected) > 0 {
		sb.WriteString(" (expected " + strings.Join(e.Expected, ", ") + ")")
	}
	return sb.String()
}

// InternalError signals tables or engine reaching a state a correct grammar
// cannot produce, such as input ending inside an unfinished rule. It is
// never subject to error recovery.
type InternalError struct {
	Msg   string
	Type  token.Type
	Value string
	Start token.Position
}

func newInternalError(msg string, tok token.Token) *InternalError {
	return &InternalError{Msg: msg, Type: tok.Type, Value: tok.Value, Start: tok.Start}
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: type=%s, value=%q, start_pos=%s", e.Msg, e.Type, e.Value, e.Start)
}
