package grammar

import (
	"github.com/ghettovoice/sipabnf/header"
	"github.com/ghettovoice/sipabnf/internal/peg"
	"github.com/ghettovoice/sipabnf/uri"
)

const (
	RuleRequestResponse Rule = "Request_Response"
	RuleRequestLine     Rule = "Request_Line"
	RuleStatusLine      Rule = "Status_Line"
	RuleRequestURI      Rule = "Request_URI"
	RuleSIPVersion      Rule = "SIP_Version"
	RuleStatusCode      Rule = "Status_Code"
	RuleReasonPhrase    Rule = "Reason_Phrase"
	RuleMethod          Rule = "Method"
)

// coreMethod matches the method name case-sensitively up to a token boundary.
func coreMethod(m header.Method) peg.Expr {
	return text(peg.Lit(string(m)), notTokenChar)
}

var (
	method = def(RuleMethod, peg.Map(peg.Choice(
		coreMethod(header.INVITE),
		coreMethod(header.ACK),
		coreMethod(header.OPTIONS),
		coreMethod(header.BYE),
		coreMethod(header.CANCEL),
		coreMethod(header.REGISTER),
		coreMethod(header.SUBSCRIBE),
		coreMethod(header.NOTIFY),
		coreMethod(header.REFER),
		token,
	), func(v any) any { return header.Method(str(v)) }))

	sipVersion = def(RuleSIPVersion, ucase(text(peg.LitI("SIP"), peg.Lit("/"), peg.Plus(digit), peg.Lit("."), peg.Plus(digit))))

	statusCode   = def(RuleStatusCode, peg.Action(text(digit, digit, digit), atoi))
	reasonPhrase = def(RuleReasonPhrase, text(peg.Star(peg.Choice(reserved, unreserved, escaped, utf8NonASCII, sp, htab))))

	requestURI = def(RuleRequestURI, peg.Choice(sipURI, absoluteURI))

	requestLine = def(RuleRequestLine, peg.Map(
		peg.Seq(method, sp, requestURI, sp, sipVersion),
		func(v any) any {
			m, _ := at(v, 0).(header.Method)
			u, _ := at(v, 2).(uri.URI)
			return header.RequestLine{Method: m, URI: u, Version: str(at(v, 4))}
		},
	))
	statusLine = def(RuleStatusLine, peg.Map(
		peg.Seq(sipVersion, sp, statusCode, sp, reasonPhrase),
		func(v any) any {
			code, _ := at(v, 2).(int)
			return header.StatusLine{Version: str(at(v, 0)), StatusCode: code, ReasonPhrase: str(at(v, 4))}
		},
	))

	requestResponse = def(RuleRequestResponse, peg.Choice(statusLine, requestLine))
)
