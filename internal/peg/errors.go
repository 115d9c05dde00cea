package peg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ghettovoice/sipabnf/internal/errorutil"
)

// ErrTooDeep is returned when nested named rules exceed the configured depth bound.
const ErrTooDeep errorutil.Error = "rule nesting too deep"

// SyntaxError describes the rightmost failure of a parse call.
type SyntaxError struct {
	// Expected is the sorted set of descriptions expected at Offset.
	Expected []string
	// Found is the character at Offset, empty at the end of input.
	Found string
	// Offset is the rune offset of the failure.
	Offset int
	// Line and Column are 1-based.
	Line, Column int
	// Rule is the innermost named rule active when the failure was first recorded.
	Rule string
}

func (e *SyntaxError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d:%d (%d): ", e.Line, e.Column, e.Offset)
	if e.Rule != "" {
		sb.WriteString("rule ")
		sb.WriteString(e.Rule)
		sb.WriteString(": ")
	}
	sb.WriteString("no match found")
	if len(e.Expected) > 0 {
		sb.WriteString(", expected: ")
		sb.WriteString(joinExpected(e.Expected))
	}
	sb.WriteString(", found ")
	if e.Found == "" {
		sb.WriteString("end of input")
	} else {
		sb.WriteString(strconv.Quote(e.Found))
	}
	return sb.String()
}

func joinExpected(exp []string) string {
	if len(exp) == 1 {
		return exp[0]
	}
	return strings.Join(exp[:len(exp)-1], ", ") + " or " + exp[len(exp)-1]
}

func (*SyntaxError) Grammar() bool { return true }

// SemanticError is raised when an action rejects the value built from a matched text.
type SemanticError struct {
	// Offset is the start of the text the action was attached to.
	Offset int
	Rule   string
	Err    error
}

func (e *SemanticError) Error() string {
	if e.Rule == "" {
		return fmt.Sprintf("offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("offset %d: rule %s: %v", e.Offset, e.Rule, e.Err)
}

func (e *SemanticError) Unwrap() error { return e.Err }
