package message

import (
	"fmt"

	"github.com/ghettovoice/sipabnf/header"
	"github.com/ghettovoice/sipabnf/internal/errorutil"
)

const (
	// ErrIncomplete is returned when the header section is not terminated by an empty line.
	ErrIncomplete errorutil.Error = "incomplete message"
	// ErrMalformedLine is returned for a header line without a colon or a misplaced continuation line.
	ErrMalformedLine errorutil.Error = "malformed line"
	// ErrStartLine wraps the error of the start line parsing.
	ErrStartLine errorutil.Error = "invalid start line"
	// ErrContentLength is returned when the body does not match the Content-Length field.
	ErrContentLength errorutil.Error = "invalid content length"
)

// FieldError names the header field that failed to parse.
type FieldError struct {
	Name header.Name
	// Value is the raw field value the error positions refer to.
	Value string
	Err   error
}

func (e *FieldError) Error() string { return fmt.Sprintf("header %s: %v", e.Name, e.Err) }

func (e *FieldError) Unwrap() error { return e.Err }
