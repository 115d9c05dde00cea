package grammar

import (
	"slices"

	"braces.dev/errtrace"
	"github.com/samber/lo"

	"github.com/ghettovoice/sipabnf/header"
	"github.com/ghettovoice/sipabnf/internal/errorutil"
	"github.com/ghettovoice/sipabnf/internal/peg"
	"github.com/ghettovoice/sipabnf/uri"
)

// DefaultRule is used when the rule name is empty.
const DefaultRule = RuleCRLF

// Parse matches the whole input with the start rule and returns the produced value.
//
// The empty rule name selects [DefaultRule], an unknown one returns [ErrUnknownRule].
// When no alternative consumes the whole input it returns [*SyntaxError].
// When a value constructor rejects the matched text it returns [*SemanticError].
func Parse[T ~string | ~[]byte](s T, rule Rule, opts ...Option) (any, error) {
	if rule == "" {
		rule = DefaultRule
	}
	start, ok := table[rule]
	if !ok {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrUnknownRule, "%q", string(rule)))
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return errtrace.Wrap2(peg.Parse(start, string(s), o.pegOptions(rule)...))
}

// ParseAs is like [Parse] but also asserts the type of the produced value.
func ParseAs[V any, T ~string | ~[]byte](s T, rule Rule, opts ...Option) (V, error) {
	var zero V
	v, err := Parse(s, rule, opts...)
	if err != nil {
		return zero, errtrace.Wrap(err)
	}
	res, ok := v.(V)
	if !ok {
		return zero, errtrace.Wrap(errorutil.NewWrapperError(ErrUnexpectedValue, "rule %q produced %T, want %T", string(rule), v, zero))
	}
	return res, nil
}

// Rules returns the sorted names of all start rules.
func Rules() []Rule {
	rules := lo.Keys(table)
	slices.Sort(rules)
	return rules
}

// IsRule reports whether the rule exists.
func IsRule(rule Rule) bool {
	_, ok := table[rule]
	return ok
}

// ParseSIPURI parses a SIP or SIPS URI.
func ParseSIPURI[T ~string | ~[]byte](s T, opts ...Option) (*uri.SIP, error) {
	return errtrace.Wrap2(ParseAs[*uri.SIP](s, RuleSIPURI, opts...))
}

// ParseRequestURI parses a Request-URI, SIP URIs produce [*uri.SIP] and others [*uri.Any].
func ParseRequestURI[T ~string | ~[]byte](s T, opts ...Option) (uri.URI, error) {
	return errtrace.Wrap2(ParseAs[uri.URI](s, RuleRequestURI, opts...))
}

// ParseNameAddr parses a name-addr with header parameters, as in Name_Addr_Header.
func ParseNameAddr[T ~string | ~[]byte](s T, opts ...Option) (header.NameAddr, error) {
	return errtrace.Wrap2(ParseAs[header.NameAddr](s, RuleNameAddrHeader, opts...))
}

// ParseVia parses the Via header field value.
func ParseVia[T ~string | ~[]byte](s T, opts ...Option) (header.Via, error) {
	return errtrace.Wrap2(ParseAs[header.Via](s, RuleVia, opts...))
}

// ParseContact parses the Contact header field value.
func ParseContact[T ~string | ~[]byte](s T, opts ...Option) (header.Contact, error) {
	return errtrace.Wrap2(ParseAs[header.Contact](s, RuleContact, opts...))
}

// ParseCSeq parses the CSeq header field value.
func ParseCSeq[T ~string | ~[]byte](s T, opts ...Option) (header.CSeq, error) {
	return errtrace.Wrap2(ParseAs[header.CSeq](s, RuleCSeq, opts...))
}

// ParseChallenge parses the WWW-Authenticate or Proxy-Authenticate header field value.
func ParseChallenge[T ~string | ~[]byte](s T, opts ...Option) (header.Challenge, error) {
	return errtrace.Wrap2(ParseAs[header.Challenge](s, RuleChallenge, opts...))
}

// ParseRequestLine parses the request start line without the trailing CRLF.
func ParseRequestLine[T ~string | ~[]byte](s T, opts ...Option) (header.RequestLine, error) {
	return errtrace.Wrap2(ParseAs[header.RequestLine](s, RuleRequestLine, opts...))
}

// ParseStatusLine parses the response start line without the trailing CRLF.
func ParseStatusLine[T ~string | ~[]byte](s T, opts ...Option) (header.StatusLine, error) {
	return errtrace.Wrap2(ParseAs[header.StatusLine](s, RuleStatusLine, opts...))
}
