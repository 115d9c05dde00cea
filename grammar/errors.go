package grammar

import (
	"github.com/ghettovoice/sipabnf/internal/errorutil"
	"github.com/ghettovoice/sipabnf/internal/peg"
)

// SyntaxError describes the rightmost position where no rule could continue.
type SyntaxError = peg.SyntaxError

// SemanticError wraps the error of a value constructor that rejected the matched text.
type SemanticError = peg.SemanticError

const (
	// ErrUnknownRule is returned when the requested start rule does not exist.
	ErrUnknownRule errorutil.Error = "unknown rule"
	// ErrUnexpectedValue is returned by [ParseAs] when the rule produces a value of another type.
	ErrUnexpectedValue errorutil.Error = "unexpected value"
	// ErrTooDeep is returned when nested rules exceed the depth bound.
	ErrTooDeep = peg.ErrTooDeep
)
