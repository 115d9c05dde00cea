package peg

import (
	"strconv"

	"braces.dev/errtrace"
)

// Expr is a parsing expression.
// On success it returns the produced value and leaves the cursor after the matched text.
// On failure the cursor is left where it was before the call.
type Expr func(p *Parser) (any, bool)

// Current is passed to actions.
type Current struct {
	// Pos is the offset of the matched text.
	Pos int
	// Text is the matched text.
	Text string
	// Data is the value attached with [Data].
	Data any
}

// Lit matches s case-sensitively and produces s.
func Lit(s string) Expr {
	rs := []rune(s)
	want := strconv.Quote(s)
	return func(p *Parser) (any, bool) {
		if !p.hasPrefix(rs, false) {
			p.fail(want)
			return nil, false
		}
		p.pos += len(rs)
		return s, true
	}
}

// LitI matches s case-insensitively and produces the matched text.
func LitI(s string) Expr {
	rs := []rune(s)
	want := strconv.Quote(s) + "i"
	return func(p *Parser) (any, bool) {
		if !p.hasPrefix(rs, true) {
			p.fail(want)
			return nil, false
		}
		start := p.pos
		p.pos += len(rs)
		return string(p.src[start:p.pos]), true
	}
}

func (p *Parser) hasPrefix(rs []rune, fold bool) bool {
	if len(p.src)-p.pos < len(rs) {
		return false
	}
	for i, r := range rs {
		c := p.src[p.pos+i]
		if c == r {
			continue
		}
		if !fold || lowerASCII(c) != lowerASCII(r) {
			return false
		}
	}
	return true
}

// lowerASCII folds only ASCII letters, case-insensitive literals never match other scripts.
func lowerASCII(r rune) rune {
	if 'A' <= r && r <= 'Z' {
		return r + 'a' - 'A'
	}
	return r
}

// Class matches a single character accepted by fn and produces it as a string.
// The description is recorded as expectation on failure.
func Class(desc string, fn func(r rune) bool) Expr {
	return func(p *Parser) (any, bool) {
		r, ok := p.peek()
		if !ok || !fn(r) {
			p.fail(desc)
			return nil, false
		}
		p.pos++
		return string(r), true
	}
}

// Any matches any single character.
func Any(p *Parser) (any, bool) {
	r, ok := p.peek()
	if !ok {
		p.fail("any character")
		return nil, false
	}
	p.pos++
	return string(r), true
}

// Seq matches all expressions in order and produces the slice of their values.
func Seq(es ...Expr) Expr {
	return func(p *Parser) (any, bool) {
		start := p.pos
		vals := make([]any, len(es))
		for i, e := range es {
			v, ok := e(p)
			if !ok {
				p.pos = start
				return nil, false
			}
			vals[i] = v
		}
		return vals, true
	}
}

// Choice tries expressions in order and commits to the first one that matches.
func Choice(es ...Expr) Expr {
	return func(p *Parser) (any, bool) {
		start := p.pos
		for _, e := range es {
			if v, ok := e(p); ok {
				return v, true
			}
			p.pos = start
			if p.abort != nil {
				return nil, false
			}
		}
		return nil, false
	}
}

// Star matches e zero or more times and produces the slice of its values.
func Star(e Expr) Expr { return Repeat(e, 0, -1) }

// Plus matches e one or more times and produces the slice of its values.
func Plus(e Expr) Expr { return Repeat(e, 1, -1) }

// Repeat matches e at least minN times and at most maxN times, maxN < 0 means unbounded.
// It produces the slice of values.
func Repeat(e Expr, minN, maxN int) Expr {
	return func(p *Parser) (any, bool) {
		start := p.pos
		var vals []any
		for maxN < 0 || len(vals) < maxN {
			at := p.pos
			v, ok := e(p)
			if !ok {
				break
			}
			vals = append(vals, v)
			if p.pos == at {
				// empty match would loop forever
				break
			}
		}
		if p.abort != nil || len(vals) < minN {
			p.pos = start
			return nil, false
		}
		return vals, true
	}
}

// Opt matches e or nothing. Absence produces nil.
func Opt(e Expr) Expr {
	return func(p *Parser) (any, bool) {
		v, ok := e(p)
		if !ok {
			return nil, p.abort == nil
		}
		return v, true
	}
}

// Text matches e and produces the matched text.
func Text(e Expr) Expr {
	return func(p *Parser) (any, bool) {
		start := p.pos
		if _, ok := e(p); !ok {
			return nil, false
		}
		return string(p.src[start:p.pos]), true
	}
}

// Action matches e and replaces its value with the result of fn.
// An error returned by fn aborts the whole parse with a [*SemanticError].
func Action(e Expr, fn func(c *Current, v any) (any, error)) Expr {
	return func(p *Parser) (any, bool) {
		start := p.pos
		v, ok := e(p)
		if !ok {
			return nil, false
		}
		c := &Current{
			Pos:  start,
			Text: string(p.src[start:p.pos]),
			Data: p.data,
		}
		res, err := fn(c, v)
		if err != nil {
			p.pos = start
			p.abort = &SemanticError{Offset: start, Rule: p.rule(), Err: errtrace.Wrap(err)}
			return nil, false
		}
		return res, true
	}
}

// Map matches e and replaces its value with the result of fn.
func Map(e Expr, fn func(v any) any) Expr {
	return func(p *Parser) (any, bool) {
		v, ok := e(p)
		if !ok {
			return nil, false
		}
		return fn(v), true
	}
}

// Val matches e and produces v.
func Val(e Expr, v any) Expr {
	return Map(e, func(any) any { return v })
}

// Rule names e. Named rules are reported in failures and traces,
// and their nesting is bounded by [MaxDepth].
func Rule(name string, e Expr) Expr {
	return func(p *Parser) (any, bool) {
		if p.abort != nil {
			return nil, false
		}
		if len(p.rules) >= p.maxDepth {
			p.abort = errtrace.Wrap(ErrTooDeep)
			return nil, false
		}

		start := p.pos
		p.rules = append(p.rules, name)
		v, ok := e(p)
		p.rules = p.rules[:len(p.rules)-1]
		if ok {
			p.trace("match", name, start)
		} else {
			p.pos = start
			p.trace("fail", name, start)
		}
		return v, ok
	}
}

// Ref refers to an expression assigned later, for mutually recursive rules.
func Ref(e *Expr) Expr {
	return func(p *Parser) (any, bool) { return (*e)(p) }
}

// NotFollowedBy succeeds without consuming input if the next character is not accepted by fn.
// It never records failures.
func NotFollowedBy(fn func(r rune) bool) Expr {
	return func(p *Parser) (any, bool) {
		if r, ok := p.peek(); ok && fn(r) {
			return nil, false
		}
		return nil, true
	}
}

// FollowedBy succeeds without consuming input if the next character is accepted by fn.
// It never records failures.
func FollowedBy(fn func(r rune) bool) Expr {
	return func(p *Parser) (any, bool) {
		if r, ok := p.peek(); ok && fn(r) {
			return nil, true
		}
		return nil, false
	}
}

// Cond matches e and then requires fn to accept its value.
// A rejected value fails the match at the start of e with desc as expectation.
func Cond(e Expr, desc string, fn func(v any) bool) Expr {
	return func(p *Parser) (any, bool) {
		start := p.pos
		v, ok := e(p)
		if !ok {
			return nil, false
		}
		if !fn(v) {
			p.pos = start
			p.fail(desc)
			return nil, false
		}
		return v, true
	}
}
