// Package log provides logging utilities.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/golang-cz/devslog"
	"github.com/phsym/console-slog"
	slogformatter "github.com/samber/slog-formatter"

	"github.com/ghettovoice/sipabnf/internal/constraints"
	"github.com/ghettovoice/sipabnf/internal/peg"
)

var newHandler = slogformatter.NewFormatterHandler(
	slogformatter.ErrorFormatter("error"),
	slogformatter.FormatByType(func(e *peg.SyntaxError) slog.Value {
		return slog.GroupValue(
			slog.Int("offset", e.Offset),
			slog.Int("line", e.Line),
			slog.Int("column", e.Column),
			slog.String("rule", e.Rule),
			slog.Any("expected", e.Expected),
			slog.String("found", e.Found),
		)
	}),
	slogformatter.FormatByType(func(e *peg.SemanticError) slog.Value {
		return slog.GroupValue(
			slog.Int("offset", e.Offset),
			slog.String("rule", e.Rule),
			slog.String("reason", fmt.Sprint(e.Err)),
		)
	}),
)

// Dev is a developer logger.
var Dev = slog.New(newHandler(
	devslog.NewHandler(os.Stderr, &devslog.Options{
		HandlerOptions: &slog.HandlerOptions{
			AddSource: true,
			Level:     slog.LevelDebug,
		},
		SortKeys:   true,
		TimeFormat: time.RFC3339Nano,
	}),
))

// New returns a console logger writing to w with the given minimal level.
func New(w io.Writer, lvl slog.Leveler) *slog.Logger {
	return slog.New(newHandler(
		console.NewHandler(w, &console.HandlerOptions{
			Level:      lvl,
			TimeFormat: time.RFC3339Nano,
		}),
	))
}

type noopHandler struct{}

func (noopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (noopHandler) Handle(context.Context, slog.Record) error { return nil }

func (h noopHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h noopHandler) WithGroup(string) slog.Handler { return h }

// Noop is a noop logger.
var Noop = slog.New(noopHandler{})

// Or returns l, or [Noop] when l is nil.
func Or(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Noop
	}
	return l
}

type fmtValue struct {
	v        any
	goSyntax bool
}

func (v fmtValue) LogValue() slog.Value {
	if v.goSyntax {
		return slog.StringValue(fmt.Sprintf("%#v", v.v))
	}
	return slog.StringValue(fmt.Sprintf("%+v", v.v))
}

// FmtValue returns a value logger that formats values using '%+v' or '%#v' syntax.
func FmtValue(v any, goSyntax bool) slog.LogValuer { return fmtValue{v, goSyntax} }

type stringValue[T constraints.Byteseq] struct {
	v T
}

func (v stringValue[T]) LogValue() slog.Value {
	return slog.StringValue(string(v.v))
}

// StringValue returns a value logger that formats v as string.
func StringValue[T constraints.Byteseq](v T) slog.LogValuer { return stringValue[T]{v} }
