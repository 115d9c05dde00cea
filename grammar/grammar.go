// Package grammar implements the SIP (RFC 3261) rule set over an ordered-choice backtracking matcher.
//
// Every named rule is a start rule: [Parse] runs the selected rule over the whole input
// and returns its value (a string, a number, a [uri.URI] or a [header] value),
// a [*SyntaxError] with the rightmost failure diagnostic,
// or a [*SemanticError] when a value constructor rejected the matched text.
package grammar

//go:generate go tool errtrace -w .
//go:generate go tool mockgen -destination mock_factory_test.go -package grammar_test . Factory

import (
	"github.com/ghettovoice/sipabnf/internal/peg"
	"github.com/ghettovoice/sipabnf/internal/util"
	"github.com/ghettovoice/sipabnf/uri"
)

// Rule is a name of a start rule.
type Rule string

var table = map[Rule]peg.Expr{}

// def names the expression and registers it as a start rule.
func def(name Rule, e peg.Expr) peg.Expr {
	if _, ok := table[name]; ok {
		panic("grammar: duplicated rule " + string(name))
	}
	e = peg.Rule(string(name), e)
	table[name] = e
	return e
}

// lex registers the expression as a start rule but returns it unnamed,
// so terminals do not shadow the enclosing rule in diagnostics.
func lex(name Rule, e peg.Expr) peg.Expr {
	def(name, e)
	return e
}

type state struct {
	factory Factory
}

func factoryOf(c *peg.Current) Factory {
	if s, ok := c.Data.(*state); ok && s.factory != nil {
		return s.factory
	}
	return DefaultFactory
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func at(v any, i int) any {
	vs, _ := v.([]any)
	if i >= len(vs) {
		return nil
	}
	return vs[i]
}

func text(es ...peg.Expr) peg.Expr {
	if len(es) == 1 {
		return peg.Text(es[0])
	}
	return peg.Text(peg.Seq(es...))
}

func lcase(e peg.Expr) peg.Expr {
	return peg.Map(e, func(v any) any { return util.LCase(str(v)) })
}

func ucase(e peg.Expr) peg.Expr {
	return peg.Map(e, func(v any) any { return util.UCase(str(v)) })
}

// keyword matches word case-insensitively only when it is not followed by a token character.
func keyword(word string) peg.Expr {
	return text(peg.LitI(word), notTokenChar)
}

// param is a single ;name=value pair.
type param struct {
	name, value string
}

// flagOf is a valueless parameter that must end at a token boundary.
func flagOf(name string) peg.Expr {
	return peg.Map(keyword(name), func(v any) any { return param{name: util.LCase(str(v))} })
}

// collectParams builds the map of parameters from the values of *(sep param).
func collectParams(v any) uri.Values {
	var params uri.Values
	vs, _ := v.([]any)
	for _, item := range vs {
		p, ok := at(item, 1).(param)
		if !ok {
			continue
		}
		if params == nil {
			params = make(uri.Values, len(vs))
		}
		params.Append(p.name, p.value)
	}
	return params
}

// listOf matches e *(sep e) and produces the slice of e values.
func listOf(e, sep peg.Expr) peg.Expr {
	return peg.Map(peg.Seq(e, peg.Star(peg.Seq(sep, e))), func(v any) any {
		rest, _ := at(v, 1).([]any)
		vals := make([]any, 0, len(rest)+1)
		vals = append(vals, at(v, 0))
		for _, item := range rest {
			vals = append(vals, at(item, 1))
		}
		return vals
	})
}

func mapList[T any](v any, fn func(any) T) []T {
	vs, _ := v.([]any)
	res := make([]T, 0, len(vs))
	for _, item := range vs {
		res = append(res, fn(item))
	}
	return res
}

func notIn(names ...string) func(any) bool {
	return func(v any) bool {
		p, _ := v.(param)
		for _, n := range names {
			if util.EqFold(p.name, n) {
				return false
			}
		}
		return true
	}
}
