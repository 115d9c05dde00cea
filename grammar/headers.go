package grammar

import (
	"math"
	"strconv"
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipabnf/header"
	"github.com/ghettovoice/sipabnf/internal/chars"
	"github.com/ghettovoice/sipabnf/internal/peg"
	"github.com/ghettovoice/sipabnf/internal/util"
	"github.com/ghettovoice/sipabnf/uri"
)

const (
	RuleVia                Rule = "Via"
	RuleFrom               Rule = "From"
	RuleTo                 Rule = "To"
	RuleNameAddrHeader     Rule = "Name_Addr_Header"
	RuleContact            Rule = "Contact"
	RuleRoute              Rule = "Route"
	RuleRecordRoute        Rule = "Record_Route"
	RuleReferTo            Rule = "Refer_To"
	RuleCSeq               Rule = "CSeq"
	RuleCallID             Rule = "Call_ID"
	RuleContentLength      Rule = "Content_Length"
	RuleMaxForwards        Rule = "Max_Forwards"
	RuleExpires            Rule = "Expires"
	RuleMinExpires         Rule = "Min_Expires"
	RuleContentType        Rule = "Content_Type"
	RuleMediaType          Rule = "media_type"
	RuleContentDisposition Rule = "Content_Disposition"
	RuleContentEncoding    Rule = "Content_Encoding"
	RuleEvent              Rule = "Event"
	RuleAllowEvents        Rule = "Allow_Events"
	RuleAllow              Rule = "Allow"
	RuleSupported          Rule = "Supported"
	RuleRequire            Rule = "Require"
	RuleProxyRequire       Rule = "Proxy_Require"
	RuleUnsupported        Rule = "Unsupported"
	RuleSubscriptionState  Rule = "Subscription_State"
	RuleSessionExpires     Rule = "Session_Expires"
	RuleReplaces           Rule = "Replaces"
	RuleReason             Rule = "Reason"
	RuleSubject            Rule = "Subject"
	RuleUserAgent          Rule = "User_Agent"
	RuleServer             Rule = "Server"
	RuleOrganization       Rule = "Organization"
	RuleExtensionHeader    Rule = "extension_header"
	RuleHeaderValue        Rule = "header_value"
	RuleGenericParam       Rule = "generic_param"
	RuleQValue             Rule = "qvalue"
	RuleDeltaSeconds       Rule = "delta_seconds"
)

// namedParam matches name EQUAL value of a recognized header parameter, value must produce a string.
func namedParam(name string, value peg.Expr) peg.Expr {
	return peg.Map(peg.Seq(peg.LitI(name), equal, value), func(v any) any {
		return param{name: name, value: str(at(v, 2))}
	})
}

// genericExcept is a generic parameter whose name is none of the recognized ones,
// so a recognized parameter with a malformed value cannot slip in as a generic one.
func genericExcept(names ...string) peg.Expr {
	return peg.Cond(genericParam, "parameter other than "+strings.Join(names, ", "), notIn(names...))
}

func paramsOf(p peg.Expr) peg.Expr {
	return peg.Map(peg.Star(peg.Seq(semi, p)), func(v any) any { return collectParams(v) })
}

// addrHeader matches an address followed by its header parameters and builds the name-addr.
func addrHeader(addr, p peg.Expr) peg.Expr {
	return peg.Action(peg.Seq(addr, paramsOf(p)), func(c *peg.Current, v any) (any, error) {
		params, _ := at(v, 1).(uri.Values)
		return newNameAddr(c, at(v, 0), params)
	})
}

func nameAddrsOf(v any) []header.NameAddr {
	return mapList(v, func(item any) header.NameAddr {
		addr, _ := item.(header.NameAddr)
		return addr
	})
}

func stringsOf(v any) []string { return mapList(v, str) }

func tokenList(e peg.Expr) peg.Expr {
	return peg.Map(listOf(e, comma), func(v any) any { return stringsOf(v) })
}

var (
	qvalue = def(RuleQValue, peg.Action(
		text(peg.Choice(
			peg.Seq(peg.Lit("0"), peg.Opt(peg.Seq(peg.Lit("."), peg.Repeat(digit, 0, 3)))),
			peg.Seq(peg.Lit("1"), peg.Opt(peg.Seq(peg.Lit("."), peg.Repeat(peg.Lit("0"), 0, 3)))),
		)),
		func(_ *peg.Current, v any) (any, error) {
			return errtrace.Wrap2(strconv.ParseFloat(str(v), 64))
		},
	))
	// delta-seconds above 2**32-1 read as 2**32-1.
	deltaSeconds = def(RuleDeltaSeconds, peg.Map(text(peg.Plus(digit)), func(v any) any {
		n, err := strconv.ParseUint(str(v), 10, 32)
		if err != nil {
			n = math.MaxUint32
		}
		return int(n)
	}))

	genValue     = peg.Rule("gen_value", peg.Choice(token, host, quotedString))
	genericParam = def(RuleGenericParam, peg.Map(peg.Seq(token, peg.Opt(peg.Seq(equal, genValue))), func(v any) any {
		return param{name: util.LCase(str(at(v, 0))), value: str(at(at(v, 1), 1))}
	}))

	addrAny = peg.Choice(addrSpecParts, nameAddrParts)

	fromParam = peg.Choice(namedParam("tag", token), genericExcept("tag"))
	from      = def(RuleFrom, addrHeader(addrAny, fromParam))
	to        = def(RuleTo, addrHeader(addrAny, fromParam))

	nameAddrHeader = def(RuleNameAddrHeader, addrHeader(nameAddrParts, genericParam))

	contactParams = peg.Rule("contact_params", peg.Choice(
		namedParam("q", text(qvalue)),
		namedParam("expires", text(deltaSeconds)),
		genericExcept("q", "expires"),
	))
	contactParam = peg.Rule("contact_param", addrHeader(addrAny, contactParams))
	contact      = def(RuleContact, peg.Choice(
		peg.Val(star, header.Contact{Wildcard: true}),
		peg.Map(listOf(contactParam, comma), func(v any) any {
			return header.Contact{Addrs: nameAddrsOf(v)}
		}),
	))

	routeParam = peg.Rule("route_param", addrHeader(nameAddrParts, genericParam))
	route      = def(RuleRoute, peg.Map(listOf(routeParam, comma), func(v any) any {
		return header.Route(nameAddrsOf(v))
	}))
	recordRoute = def(RuleRecordRoute, peg.Map(listOf(peg.Rule("rec_route", addrHeader(nameAddrParts, genericParam)), comma), func(v any) any {
		return header.RecordRoute(nameAddrsOf(v))
	}))

	referTo = def(RuleReferTo, addrHeader(addrAny, genericParam))
)

var (
	ttl = text(peg.Repeat(digit, 1, 3))

	viaParams = peg.Rule("via_params", peg.Choice(
		namedParam("ttl", ttl),
		namedParam("maddr", host),
		namedParam("received", peg.Choice(ipv4, ipv6ref, ipv6)),
		namedParam("branch", token),
		peg.Map(peg.Seq(keyword("rport"), peg.Opt(peg.Seq(equal, text(peg.Repeat(digit, 1, 5))))), func(v any) any {
			return param{name: "rport", value: str(at(at(v, 1), 1))}
		}),
		genericExcept("ttl", "maddr", "received", "branch", "rport"),
	))

	sentProtocol = peg.Rule("sent_protocol", peg.Seq(ucase(token), slash, token, slash, ucase(token)))
	sentBy       = peg.Rule("sent_by", peg.Map(peg.Seq(host, peg.Opt(peg.Seq(colon, port))), func(v any) any {
		hp := hostPort{host: str(at(v, 0))}
		if p := at(v, 1); p != nil {
			hp.port, _ = at(p, 1).(int)
			hp.hasPort = true
		}
		return hp
	}))

	viaParm = peg.Rule("via_parm", peg.Action(
		peg.Seq(sentProtocol, lws, sentBy, paramsOf(viaParams)),
		func(_ *peg.Current, v any) (any, error) {
			hp, _ := at(v, 2).(hostPort)
			addr, err := hp.addr()
			if err != nil {
				return nil, errtrace.Wrap(err)
			}
			params, _ := at(v, 3).(uri.Values)
			proto := at(v, 0)
			return header.ViaHop{
				Proto:     str(at(proto, 0)),
				Version:   str(at(proto, 2)),
				Transport: str(at(proto, 4)),
				Addr:      addr,
				Params:    params,
			}, nil
		},
	))
	via = def(RuleVia, peg.Map(listOf(viaParm, comma), func(v any) any {
		return header.Via(mapList(v, func(item any) header.ViaHop {
			hop, _ := item.(header.ViaHop)
			return hop
		}))
	}))
)

// number matches 1*DIGIT and fails at its first digit when the value exceeds limit.
func number(limit uint64) peg.Expr {
	digits := text(digit, peg.Star(peg.Seq(peg.FollowedBy(chars.IsDigit), digit)))
	return peg.Map(
		peg.Cond(digits, "number up to "+strconv.FormatUint(limit, 10), func(v any) bool {
			n, err := strconv.ParseUint(str(v), 10, 64)
			return err == nil && n <= limit
		}),
		func(v any) any {
			n, _ := strconv.ParseUint(str(v), 10, 64)
			return n
		},
	)
}

func asInt(v any) any {
	n, _ := v.(uint64)
	return int(n)
}

var (
	cseq = def(RuleCSeq, peg.Map(peg.Seq(number(math.MaxUint32), lws, method), func(v any) any {
		seq, _ := at(v, 0).(uint64)
		m, _ := at(v, 2).(header.Method)
		return header.CSeq{Seq: uint32(seq), Method: m}
	}))

	callID = def(RuleCallID, text(word, peg.Opt(peg.Seq(peg.Lit("@"), word))))

	contentLength = def(RuleContentLength, peg.Map(number(math.MaxInt32), asInt))
	maxForwards   = def(RuleMaxForwards, peg.Map(number(math.MaxInt32), asInt))
	expires       = def(RuleExpires, deltaSeconds)
	minExpires    = def(RuleMinExpires, deltaSeconds)

	mParameter = peg.Rule("m_parameter", peg.Map(peg.Seq(token, equal, peg.Choice(token, quotedString)), func(v any) any {
		return param{name: util.LCase(str(at(v, 0))), value: str(at(v, 2))}
	}))
	mediaType = def(RuleMediaType, peg.Map(
		peg.Seq(lcase(token), slash, lcase(token), paramsOf(mParameter)),
		func(v any) any {
			params, _ := at(v, 3).(uri.Values)
			return header.MediaType{Type: str(at(v, 0)), Subtype: str(at(v, 2)), Params: params}
		},
	))
	contentType = def(RuleContentType, mediaType)

	contentDisposition = def(RuleContentDisposition, peg.Map(
		peg.Seq(lcase(token), paramsOf(peg.Choice(
			namedParam("handling", lcase(token)),
			genericExcept("handling"),
		))),
		func(v any) any {
			params, _ := at(v, 1).(uri.Values)
			return header.ContentDisposition{Type: str(at(v, 0)), Params: params}
		},
	))
	contentEncoding = def(RuleContentEncoding, tokenList(lcase(token)))

	allow = def(RuleAllow, peg.Map(peg.Opt(listOf(method, comma)), func(v any) any {
		return mapList(v, func(item any) header.Method {
			m, _ := item.(header.Method)
			return m
		})
	}))
	supported    = def(RuleSupported, peg.Map(peg.Opt(listOf(token, comma)), func(v any) any { return stringsOf(v) }))
	require      = def(RuleRequire, tokenList(token))
	proxyRequire = def(RuleProxyRequire, tokenList(token))
	unsupported  = def(RuleUnsupported, tokenList(token))

	eventType   = peg.Rule("event_type", text(tokenNoDot, peg.Star(peg.Seq(peg.Lit("."), tokenNoDot))))
	allowEvents = def(RuleAllowEvents, tokenList(eventType))
	event       = def(RuleEvent, peg.Map(peg.Seq(eventType, paramsOf(genericParam)), func(v any) any {
		params, _ := at(v, 1).(uri.Values)
		return header.Event{Type: str(at(v, 0)), Params: params}
	}))

	subscriptionState = def(RuleSubscriptionState, peg.Map(
		peg.Seq(lcase(token), paramsOf(peg.Choice(
			namedParam("reason", lcase(token)),
			namedParam("expires", text(deltaSeconds)),
			namedParam("retry-after", text(deltaSeconds)),
			genericExcept("reason", "expires", "retry-after"),
		))),
		func(v any) any {
			params, _ := at(v, 1).(uri.Values)
			return header.SubscriptionState{State: str(at(v, 0)), Params: params}
		},
	))

	sessionExpires = def(RuleSessionExpires, peg.Map(
		peg.Seq(deltaSeconds, paramsOf(peg.Choice(
			namedParam("refresher", peg.Cond(lcase(token), `"uac" or "uas"`, func(v any) bool {
				return v == "uac" || v == "uas"
			})),
			genericExcept("refresher"),
		))),
		func(v any) any {
			n, _ := at(v, 0).(int)
			params, _ := at(v, 1).(uri.Values)
			return header.SessionExpires{Delta: n, Params: params}
		},
	))

	replaces = def(RuleReplaces, peg.Map(
		peg.Seq(callID, paramsOf(peg.Choice(
			namedParam("to-tag", token),
			namedParam("from-tag", token),
			flagOf("early-only"),
			genericExcept("to-tag", "from-tag", "early-only"),
		))),
		func(v any) any {
			params, _ := at(v, 1).(uri.Values)
			return header.Replaces{CallID: str(at(v, 0)), Params: params}
		},
	))

	reason = def(RuleReason, peg.Map(
		peg.Seq(token, paramsOf(peg.Choice(
			namedParam("cause", text(peg.Plus(digit))),
			namedParam("text", quotedString),
			genericExcept("cause", "text"),
		))),
		func(v any) any {
			params, _ := at(v, 1).(uri.Values)
			return header.Reason{Protocol: str(at(v, 0)), Params: params}
		},
	))

	subject      = def(RuleSubject, peg.Map(peg.Opt(textUTF8Trim), func(v any) any { return str(v) }))
	organization = def(RuleOrganization, peg.Map(peg.Opt(textUTF8Trim), func(v any) any { return str(v) }))

	product   = peg.Rule("product", peg.Seq(token, peg.Opt(peg.Seq(slash, token))))
	serverVal = peg.Rule("server_val", peg.Choice(product, comment))
	userAgent = def(RuleUserAgent, text(serverVal, peg.Star(peg.Seq(lws, serverVal))))
	server    = def(RuleServer, text(serverVal, peg.Star(peg.Seq(lws, serverVal))))

	headerValue     = def(RuleHeaderValue, text(peg.Star(peg.Choice(textUTF8Char, lws))))
	extensionHeader = def(RuleExtensionHeader, peg.Map(peg.Seq(token, hcolon, headerValue), func(v any) any {
		return header.Extension{Name: str(at(v, 0)), Value: str(at(v, 2))}
	}))
)
