package grammar

import (
	"github.com/ghettovoice/sipabnf/header"
	"github.com/ghettovoice/sipabnf/internal/peg"
	"github.com/ghettovoice/sipabnf/internal/util"
	"github.com/ghettovoice/sipabnf/uri"
)

const (
	RuleChallenge         Rule = "challenge"
	RuleWWWAuthenticate   Rule = "WWW_Authenticate"
	RuleProxyAuthenticate Rule = "Proxy_Authenticate"
	RuleAuthParam         Rule = "auth_param"
)

type domainParam []uri.URI

type qopParam []string

var digestParams = []string{"realm", "domain", "nonce", "opaque", "stale", "algorithm", "qop"}

var (
	authParam = def(RuleAuthParam, peg.Map(peg.Seq(token, equal, peg.Choice(token, quotedString)), func(v any) any {
		return param{name: util.LCase(str(at(v, 0))), value: str(at(v, 2))}
	}))

	domainValue = peg.Rule("domain_value", peg.Choice(absoluteURI, absPathURI))

	digestCln = peg.Rule("digest_cln", peg.Choice(
		namedParam("realm", quotedStringClean),
		peg.Map(
			peg.Seq(peg.LitI("domain"), equal, ldquot, listOf(domainValue, peg.Plus(sp)), rdquot),
			func(v any) any {
				return domainParam(mapList(at(v, 3), func(item any) uri.URI {
					u, _ := item.(uri.URI)
					return u
				}))
			},
		),
		namedParam("nonce", quotedStringClean),
		namedParam("opaque", quotedStringClean),
		namedParam("stale", peg.Cond(lcase(token), `"true" or "false"`, func(v any) bool {
			return v == "true" || v == "false"
		})),
		namedParam("algorithm", ucase(token)),
		peg.Map(
			peg.Seq(peg.LitI("qop"), equal, ldquot, listOf(lcase(token), peg.Lit(",")), rdquot),
			func(v any) any { return qopParam(stringsOf(at(v, 3))) },
		),
		peg.Cond(authParam, "auth parameter other than digest ones", notIn(digestParams...)),
	))

	digestChallenge = peg.Map(peg.Seq(peg.LitI("Digest"), lws, listOf(digestCln, comma)), func(v any) any {
		ch := header.Challenge{Scheme: str(at(v, 0))}
		vs, _ := at(v, 2).([]any)
		for _, item := range vs {
			switch p := item.(type) {
			case domainParam:
				ch.Domain = []uri.URI(p)
			case qopParam:
				ch.QOP = []string(p)
			case param:
				switch p.name {
				case "realm":
					ch.Realm = p.value
				case "nonce":
					ch.Nonce = p.value
				case "opaque":
					ch.Opaque = p.value
				case "stale":
					stale := p.value == "true"
					ch.Stale = &stale
				case "algorithm":
					ch.Algorithm = p.value
				default:
					if ch.Params == nil {
						ch.Params = make(header.Values)
					}
					ch.Params.Append(p.name, p.value)
				}
			}
		}
		return ch
	})

	// a Digest challenge that does not match digest_cln is not taken as another scheme.
	authScheme = peg.Cond(token, `auth scheme other than "Digest"`, func(v any) bool {
		return !util.EqFold(str(v), "Digest")
	})

	otherChallenge = peg.Map(peg.Seq(authScheme, lws, listOf(authParam, comma)), func(v any) any {
		ch := header.Challenge{Scheme: str(at(v, 0))}
		vs, _ := at(v, 2).([]any)
		for _, item := range vs {
			p, _ := item.(param)
			if ch.Params == nil {
				ch.Params = make(header.Values, len(vs))
			}
			ch.Params.Append(p.name, p.value)
		}
		return ch
	})

	challenge         = def(RuleChallenge, peg.Choice(digestChallenge, otherChallenge))
	wwwAuthenticate   = def(RuleWWWAuthenticate, challenge)
	proxyAuthenticate = def(RuleProxyAuthenticate, challenge)
)
