package errorutil_test

import (
	"errors"
	"io"
	"testing"

	"github.com/ghettovoice/sipabnf/internal/errorutil"
)

func TestNewWrapperError(t *testing.T) {
	t.Parallel()

	const sentinel errorutil.Error = "sentinel"

	cases := []struct {
		name    string
		args    []any
		wantMsg string
		wantIs  []error
	}{
		{"no args", nil, "sentinel", []error{sentinel}},
		{"error arg", []any{io.EOF}, "sentinel: EOF", []error{sentinel, io.EOF}},
		{"wrapped arg", []any{errors.Join(sentinel)}, "sentinel", []error{sentinel}},
		{"string arg", []any{"bad"}, "sentinel: bad", []error{sentinel}},
		{"format args", []any{"bad %d", 5}, "sentinel: bad 5", []error{sentinel}},
		{"unknown arg", []any{5}, "sentinel", []error{sentinel}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			err := errorutil.NewWrapperError(sentinel, c.args...)
			if got := err.Error(); got != c.wantMsg {
				t.Errorf("err.Error() = %q, want %q", got, c.wantMsg)
			}
			for _, want := range c.wantIs {
				if !errors.Is(err, want) {
					t.Errorf("errors.Is(err, %v) = false, want true", want)
				}
			}
		})
	}
}

type grammarErr struct{}

func (grammarErr) Error() string { return "grammar" }
func (grammarErr) Grammar() bool { return true }

func TestIsGrammarErr(t *testing.T) {
	t.Parallel()

	if !errorutil.IsGrammarErr(grammarErr{}) {
		t.Error("errorutil.IsGrammarErr(grammarErr{}) = false, want true")
	}
	if errorutil.IsGrammarErr(io.EOF) {
		t.Error("errorutil.IsGrammarErr(io.EOF) = true, want false")
	}
	if errorutil.IsGrammarErr(nil) {
		t.Error("errorutil.IsGrammarErr(nil) = true, want false")
	}
}
