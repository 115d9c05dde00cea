package grammar

import (
	"net/url"
	"strconv"
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipabnf/internal/chars"
	"github.com/ghettovoice/sipabnf/internal/errorutil"
	"github.com/ghettovoice/sipabnf/internal/peg"
	"github.com/ghettovoice/sipabnf/uri"
)

const (
	RuleSIPURI         Rule = "SIP_URI"
	RuleSIPURINoParams Rule = "SIP_URI_noparams"
	RuleHost           Rule = "host"
	RuleHostport       Rule = "hostport"
	RuleHostname       Rule = "hostname"
	RuleIPv4Address    Rule = "IPv4address"
	RuleIPv6Address    Rule = "IPv6address"
	RuleIPv6Reference  Rule = "IPv6reference"
	RulePort           Rule = "port"
	RuleURIParameters  Rule = "uri_parameters"
	RuleURIHeaders     Rule = "headers"
	RuleAbsoluteURI    Rule = "absoluteURI"
	RuleAbsPath        Rule = "abs_path"
	RuleNameAddr       Rule = "name_addr"
	RuleAddrSpec       Rule = "addr_spec"
	RuleDisplayName    Rule = "display_name"
)

const maxPort = 65535

type userInfo struct {
	user, passwd string
	hasPasswd    bool
}

type hostPort struct {
	host    string
	port    int
	hasPort bool
}

func (hp hostPort) addr() (uri.Addr, error) {
	if !hp.hasPort {
		return uri.Host(hp.host), nil
	}
	if hp.port > maxPort {
		return uri.Addr{}, errtrace.Wrap(errorutil.NewInvalidArgumentError("port %d out of range", hp.port))
	}
	return uri.HostPort(hp.host, uint16(hp.port)), nil
}

// addrParts is a matched name-addr or addr-spec before construction.
type addrParts struct {
	display string
	uri     uri.URI
}

func atoi(_ *peg.Current, v any) (any, error) {
	n, err := strconv.Atoi(str(v))
	if err != nil {
		return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError(err))
	}
	return n, nil
}

func isParamChar(r rune) bool {
	return chars.IsParamUnreserved(r) || chars.IsUnreserved(r) || r == '%'
}

// endParam requires a recognized URI parameter value to end where the generic one would.
var endParam = peg.NotFollowedBy(isParamChar)

var (
	uriScheme = peg.Rule("uri_scheme", lcase(peg.Choice(peg.LitI("sips"), peg.LitI("sip"))))

	user = def("user", peg.Map(
		text(peg.Plus(peg.Choice(unreserved, escaped, peg.Class("user-unreserved", chars.IsUserUnreserved)))),
		func(v any) any { return chars.Unescape(str(v)) },
	))
	// password is kept as it was matched.
	password = def("password", text(peg.Star(peg.Choice(peg.Class("password character", chars.IsPasswdChar), escaped))))

	userinfo = peg.Rule("userinfo", peg.Map(peg.Seq(user, peg.Opt(peg.Seq(peg.Lit(":"), password)), peg.Lit("@")), func(v any) any {
		ui := userInfo{user: str(at(v, 0))}
		if pw := at(v, 1); pw != nil {
			ui.passwd, ui.hasPasswd = str(at(pw, 1)), true
		}
		return ui
	}))

	domainlabel = text(peg.Plus(peg.Class("domain label character", func(r rune) bool {
		return chars.IsAlphanum(r) || r == '-' || r == '_'
	})))
	toplabel = text(alpha, peg.Star(peg.Class("top label character", func(r rune) bool {
		return chars.IsAlphanum(r) || r == '-'
	})))
	// a label dot is taken only before another label, so the trailing dot stays optional.
	hostname = def(RuleHostname, text(
		peg.Star(peg.Seq(domainlabel, peg.Lit("."), peg.FollowedBy(chars.IsAlphanum))),
		toplabel,
		peg.Opt(peg.Lit(".")),
	))

	decOctet = peg.Rule("dec_octet", peg.Choice(
		text(peg.Lit("25"), peg.Class("%x30-35", func(r rune) bool { return '0' <= r && r <= '5' })),
		text(peg.Lit("2"), peg.Class("%x30-34", func(r rune) bool { return '0' <= r && r <= '4' }), digit),
		text(peg.Lit("1"), digit, digit),
		text(peg.Class("%x31-39", func(r rune) bool { return '1' <= r && r <= '9' }), digit),
		digit,
	))
	ipv4 = def(RuleIPv4Address, text(decOctet, peg.Lit("."), decOctet, peg.Lit("."), decOctet, peg.Lit("."), decOctet))

	h16  = peg.Rule("h16", text(peg.Repeat(hexdig, 1, 4)))
	h16c = peg.Seq(h16, peg.Lit(":"))
	ls32 = peg.Rule("ls32", peg.Choice(ipv4, text(h16, peg.Lit(":"), h16)))
	dcol = peg.Lit("::")
	ipv6 = def(RuleIPv6Address, peg.Choice(
		text(peg.Repeat(h16c, 6, 6), ls32),
		text(dcol, peg.Repeat(h16c, 5, 5), ls32),
		text(h16Prefix(0), dcol, peg.Repeat(h16c, 4, 4), ls32),
		text(h16Prefix(1), dcol, peg.Repeat(h16c, 3, 3), ls32),
		text(h16Prefix(2), dcol, peg.Repeat(h16c, 2, 2), ls32),
		text(h16Prefix(3), dcol, h16c, ls32),
		text(h16Prefix(4), dcol, ls32),
		text(h16Prefix(5), dcol, h16),
		text(h16Prefix(6), dcol),
	))
	ipv6ref = def(RuleIPv6Reference, text(peg.Lit("["), ipv6, peg.Lit("]")))

	// host produces the literal text, IPv6 references keep the brackets.
	host = def(RuleHost, peg.Choice(hostname, ipv4, ipv6ref))
	port = def(RulePort, peg.Action(text(peg.Repeat(digit, 1, 5)), atoi))

	hostportParts = peg.Rule("hostport", peg.Map(peg.Seq(host, peg.Opt(peg.Seq(peg.Lit(":"), port))), func(v any) any {
		hp := hostPort{host: str(at(v, 0))}
		if p := at(v, 1); p != nil {
			hp.port, _ = at(p, 1).(int)
			hp.hasPort = true
		}
		return hp
	}))
	_ = def(RuleHostport, peg.Action(hostportParts, func(_ *peg.Current, v any) (any, error) {
		hp, _ := v.(hostPort)
		return errtrace.Wrap2(hp.addr())
	}))

	paramchar = peg.Choice(peg.Class("param-unreserved", chars.IsParamUnreserved), unreserved, escaped)
	pname     = text(peg.Plus(paramchar))
	pvalue    = text(peg.Plus(paramchar))

	uriParameter = peg.Rule("uri_parameter", peg.Choice(
		uriParam("transport", lcase(token)),
		uriParam("user", lcase(token)),
		uriParam("method", text(method)),
		uriParam("ttl", text(peg.Repeat(digit, 1, 3))),
		uriParam("maddr", host),
		peg.Map(peg.Seq(peg.LitI("lr"), peg.Opt(peg.Seq(peg.Lit("="), token)), endParam), func(v any) any {
			return param{name: "lr", value: str(at(at(v, 1), 1))}
		}),
		peg.Map(peg.Seq(pname, peg.Opt(peg.Seq(peg.Lit("="), pvalue))), func(v any) any {
			return param{name: str(at(v, 0)), value: str(at(at(v, 1), 1))}
		}),
	))
	uriParameters = def(RuleURIParameters, peg.Map(peg.Star(peg.Seq(peg.Lit(";"), uriParameter)), func(v any) any {
		return collectParams(v)
	}))

	hnvchar = peg.Choice(peg.Class("hnv-unreserved", chars.IsHnvUnreserved), unreserved, escaped)
	hname   = text(peg.Plus(hnvchar))
	hvalue  = text(peg.Star(hnvchar))

	uriHeader = peg.Rule("header", peg.Map(peg.Seq(hname, peg.Lit("="), hvalue), func(v any) any {
		return param{name: str(at(v, 0)), value: str(at(v, 2))}
	}))
	uriHeaders = def(RuleURIHeaders, peg.Map(
		peg.Seq(peg.Lit("?"), uriHeader, peg.Star(peg.Seq(peg.Lit("&"), uriHeader))),
		func(v any) any {
			hdrs := make(uri.Values)
			p, _ := at(v, 1).(param)
			hdrs.Append(p.name, p.value)
			for k, vs := range collectParams(at(v, 2)) {
				for _, s := range vs {
					hdrs.Append(k, s)
				}
			}
			return hdrs
		},
	))

	sipURIParts = peg.Seq(uriScheme, peg.Lit(":"), peg.Opt(userinfo), hostportParts)

	sipURI = def(RuleSIPURI, peg.Action(
		peg.Seq(sipURIParts, uriParameters, peg.Opt(uriHeaders)),
		func(c *peg.Current, v any) (any, error) {
			p := uriPartsOf(at(v, 0))
			p.Params, _ = at(v, 1).(uri.Values)
			p.Headers, _ = at(v, 2).(uri.Values)
			return newSIP(c, p)
		},
	))
	sipURINoParams = def(RuleSIPURINoParams, peg.Action(sipURIParts, func(c *peg.Current, v any) (any, error) {
		return newSIP(c, uriPartsOf(v))
	}))
)

var (
	uricNoSlash = peg.Choice(unreserved, escaped, peg.Class("uric-no-slash", func(r rune) bool {
		return r < 0x80 && r != '/' && chars.IsReserved(r)
	}))
	uric  = peg.Choice(reserved, unreserved, escaped)
	pchar = peg.Choice(unreserved, escaped, peg.Class("pchar", func(r rune) bool {
		return r == ':' || r == '@' || r == '&' || r == '=' || r == '+' || r == '$' || r == ','
	}))

	segment      = peg.Seq(peg.Star(pchar), peg.Star(peg.Seq(peg.Lit(";"), peg.Star(pchar))))
	pathSegments = peg.Seq(segment, peg.Star(peg.Seq(peg.Lit("/"), segment)))
	absPath      = def(RuleAbsPath, text(peg.Lit("/"), pathSegments))

	scheme = peg.Rule("scheme", text(alpha, peg.Star(peg.Class("scheme character", func(r rune) bool {
		return chars.IsAlphanum(r) || r == '+' || r == '-' || r == '.'
	}))))
	regName = peg.Plus(peg.Choice(unreserved, escaped, peg.Class("reg-name character", func(r rune) bool {
		return r == '$' || r == ',' || r == ';' || r == ':' || r == '@' || r == '&' || r == '=' || r == '+'
	})))
	authority = peg.Opt(peg.Choice(peg.Seq(peg.Opt(userinfo), hostportParts), regName))
	netPath   = peg.Seq(peg.Lit("//"), authority, peg.Opt(absPath))
	hierPart  = peg.Seq(peg.Choice(netPath, absPath), peg.Opt(peg.Seq(peg.Lit("?"), peg.Star(uric))))

	absoluteURI = def(RuleAbsoluteURI, peg.Action(
		text(scheme, peg.Lit(":"), peg.Choice(hierPart, peg.Seq(uricNoSlash, peg.Star(uric)))),
		func(_ *peg.Current, v any) (any, error) {
			u, err := uri.NewAny(str(v))
			if err != nil {
				return nil, errtrace.Wrap(err)
			}
			return u, nil
		},
	))
	// absPathURI is a relative reference used in the digest domain list.
	absPathURI = peg.Action(absPath, func(_ *peg.Current, v any) (any, error) {
		u, err := url.Parse(str(v))
		if err != nil {
			return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError(err))
		}
		return &uri.Any{URL: *u}, nil
	})
)

var (
	// Tokens of an unquoted display-name are joined by a single space.
	displayName = def(RuleDisplayName, peg.Choice(
		peg.Map(listOf(token, lws), func(v any) any { return strings.Join(mapList(v, str), " ") }),
		quotedStringClean,
	))

	nameAddrParts = peg.Map(peg.Seq(peg.Opt(displayName), laquot, sipURI, raquot), func(v any) any {
		u, _ := at(v, 2).(uri.URI)
		return addrParts{display: str(at(v, 0)), uri: u}
	})
	addrSpecParts = peg.Map(sipURINoParams, func(v any) any {
		u, _ := v.(uri.URI)
		return addrParts{uri: u}
	})

	nameAddr = def(RuleNameAddr, peg.Action(nameAddrParts, func(c *peg.Current, v any) (any, error) {
		return newNameAddr(c, v, nil)
	}))
	addrSpec = def(RuleAddrSpec, sipURINoParams)
)

// h16Prefix matches [ *n( h16 ":" ) h16 ].
func h16Prefix(n int) peg.Expr {
	return peg.Opt(peg.Seq(h16, peg.Repeat(peg.Seq(peg.Lit(":"), h16), 0, n)))
}

// uriParam matches name=value of a recognized URI parameter.
func uriParam(name string, value peg.Expr) peg.Expr {
	return peg.Map(peg.Seq(peg.LitI(name), peg.Lit("="), value, endParam), func(v any) any {
		return param{name: name, value: str(at(v, 2))}
	})
}

func uriPartsOf(v any) uri.Parts {
	p := uri.Parts{Scheme: str(at(v, 0))}
	if ui, ok := at(v, 2).(userInfo); ok {
		p.User, p.Password, p.HasPassword = ui.user, ui.passwd, ui.hasPasswd
	}
	hp, _ := at(v, 3).(hostPort)
	p.Host, p.HostKind = hp.host, uri.DetectHostKind(hp.host)
	p.Port, p.HasPort = hp.port, hp.hasPort
	return p
}

func newSIP(c *peg.Current, p uri.Parts) (any, error) {
	u, err := factoryOf(c).NewSIP(p)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	return u, nil
}

func newNameAddr(c *peg.Current, v any, params uri.Values) (any, error) {
	ap, _ := v.(addrParts)
	addr, err := factoryOf(c).NewNameAddr(ap.display, ap.uri, params)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	return addr, nil
}
