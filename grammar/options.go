package grammar

import (
	"log/slog"

	"github.com/ghettovoice/sipabnf/internal/peg"
)

// Option configures a single [Parse] call.
type Option func(o *options)

type options struct {
	factory  Factory
	logger   *slog.Logger
	maxDepth int
}

// WithFactory sets the value constructors. Nil selects [DefaultFactory].
func WithFactory(f Factory) Option {
	return func(o *options) { o.factory = f }
}

// WithLogger enables debug tracing of rule matches.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMaxDepth bounds the nesting of rules, non-positive values select the default of 512.
func WithMaxDepth(n int) Option {
	return func(o *options) { o.maxDepth = n }
}

func (o *options) pegOptions(rule Rule) []peg.Option {
	f := o.factory
	if f == nil {
		f = DefaultFactory
	}
	return []peg.Option{
		peg.Data(&state{factory: f}),
		peg.Logger(o.logger),
		peg.MaxDepth(o.maxDepth),
		peg.Entry(string(rule)),
	}
}
