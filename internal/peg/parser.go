// Package peg implements an ordered-choice backtracking matcher over a rune input
// with rightmost-failure tracking.
//
// Grammars are built from [Expr] values combined with [Seq], [Choice], [Star] and the other
// combinators of this package. A failed expression always restores the cursor it started with.
// Semantic actions attached with [Action] run only after their own expression matched,
// so a failed alternative never produces a value.
package peg

//go:generate go tool errtrace -w .

import (
	"context"
	"log/slog"
	"slices"
	"unicode/utf8"

	"braces.dev/errtrace"
	"github.com/samber/lo"
)

// DefaultMaxDepth is the default bound of nested named rules.
const DefaultMaxDepth = 512

// Parser holds the state of a single parse call.
// It is created by [Parse] and must not be shared between calls.
type Parser struct {
	src []rune
	pos int

	failPos      int
	failExpected []string
	failRule     string
	onFail       func(off int)

	rules    []string
	entry    string
	maxDepth int
	abort    error

	log  *slog.Logger
	data any
}

// Option configures a [Parser].
type Option func(p *Parser)

// MaxDepth sets the bound of nested named rules. Non-positive values select [DefaultMaxDepth].
func MaxDepth(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxDepth = n
		}
	}
}

// Logger enables rule tracing at debug level.
func Logger(l *slog.Logger) Option {
	return func(p *Parser) { p.log = l }
}

// Data attaches a caller value available to actions through [Current.Data].
func Data(v any) Option {
	return func(p *Parser) { p.data = v }
}

// Entry sets the rule name reported by failures recorded outside any named rule.
func Entry(name string) Option {
	return func(p *Parser) { p.entry = name }
}

// Parse runs the start expression over src and requires it to consume the whole input.
//
// It returns the value produced by start, a [*SyntaxError] if no path matched the whole input
// or src is not valid UTF-8, or the [*SemanticError] raised by an action.
func Parse(start Expr, src string, opts ...Option) (any, error) {
	p := &Parser{
		src:      []rune(src),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(p)
	}

	if off, ok := invalidUTF8(src); ok {
		p.pos = off
		p.fail("valid UTF-8")
		return nil, errtrace.Wrap(p.syntaxError())
	}

	v, ok := start(p)
	if p.abort != nil {
		return nil, errtrace.Wrap(p.abort)
	}
	if ok {
		if p.pos == len(p.src) {
			return v, nil
		}
		p.fail("end of input")
	}
	return nil, errtrace.Wrap(p.syntaxError())
}

// invalidUTF8 returns the rune offset of the first byte of src that does not start a valid UTF-8 sequence.
func invalidUTF8(src string) (int, bool) {
	if utf8.ValidString(src) {
		return 0, false
	}
	var off int
	for i, r := range src {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(src[i:]); size == 1 {
				return off, true
			}
		}
		off++
	}
	return 0, false
}

// Pos returns the current cursor offset.
func (p *Parser) Pos() int { return p.pos }

func (p *Parser) peek() (rune, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *Parser) rule() string {
	if len(p.rules) == 0 {
		return p.entry
	}
	return p.rules[len(p.rules)-1]
}

// fail records an expectation at the current cursor.
// The tracked offset never moves backwards.
func (p *Parser) fail(want string) {
	if p.onFail != nil {
		p.onFail(p.pos)
	}

	if p.pos < p.failPos {
		return
	}
	if p.pos > p.failPos || p.failExpected == nil {
		p.failPos = p.pos
		p.failExpected = p.failExpected[:0]
		p.failRule = p.rule()
	}
	p.failExpected = append(p.failExpected, want)
}

func (p *Parser) syntaxError() *SyntaxError {
	exp := lo.Uniq(p.failExpected)
	slices.Sort(exp)

	e := &SyntaxError{
		Expected: exp,
		Offset:   p.failPos,
		Rule:     p.failRule,
	}
	if p.failPos < len(p.src) {
		e.Found = string(p.src[p.failPos])
	}
	e.Line, e.Column = position(p.src, p.failPos)
	return e
}

// position computes 1-based line and column of the offset.
// LF, CR, CRLF, U+2028 and U+2029 each count as a single line break.
func position(src []rune, off int) (line, col int) {
	line, col = 1, 1
	var seenCR bool
	for _, r := range src[:min(off, len(src))] {
		switch r {
		case '\n':
			if !seenCR {
				line++
			}
			col = 1
			seenCR = false
		case '\r', '\u2028', '\u2029':
			line++
			col = 1
			seenCR = true
		default:
			col++
			seenCR = false
		}
	}
	return line, col
}

func (p *Parser) trace(msg, rule string, start int) {
	if p.log == nil || !p.log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	p.log.LogAttrs(context.Background(), slog.LevelDebug, msg,
		slog.String("rule", rule),
		slog.Int("depth", len(p.rules)),
		slog.Int("offset", start),
		slog.String("text", string(p.src[start:p.pos])),
	)
}
