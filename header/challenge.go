package header

import (
	"io"
	"slices"
	"strconv"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipabnf/internal/chars"
	"github.com/ghettovoice/sipabnf/internal/ioutil"
	"github.com/ghettovoice/sipabnf/internal/util"
	"github.com/ghettovoice/sipabnf/uri"
)

// Challenge represents the WWW-Authenticate and Proxy-Authenticate header field value.
//
// For the Digest scheme the known parameters are decoded into their fields
// (quoted strings are unquoted) and the rest are kept in Params.
// For other schemes all parameters are kept in Params as they were matched.
type Challenge struct {
	Scheme    string
	Realm     string
	Domain    []uri.URI
	Nonce     string
	Opaque    string
	Stale     *bool
	Algorithm string   // upper-cased
	QOP       []string // lower-cased
	Params    Values
}

// IsDigest reports whether the challenge uses the Digest scheme.
func (ch Challenge) IsDigest() bool { return util.EqFold(ch.Scheme, "Digest") }

func (ch Challenge) RenderTo(w io.Writer) (num int, err error) {
	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	cw.Fprint(ch.Scheme)

	var i int
	write := func(k, v string) {
		if i == 0 {
			cw.Fprint(" ")
		} else {
			cw.Fprint(", ")
		}
		cw.Fprint(k, "=", v)
		i++
	}

	if ch.Realm != "" {
		write("realm", chars.Quote(ch.Realm))
	}
	if len(ch.Domain) > 0 {
		sb := util.GetStringBuilder()
		for j, u := range ch.Domain {
			if j > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(u.String())
		}
		write("domain", chars.Quote(sb.String()))
		util.FreeStringBuilder(sb)
	}
	if ch.Nonce != "" {
		write("nonce", chars.Quote(ch.Nonce))
	}
	if ch.Opaque != "" {
		write("opaque", chars.Quote(ch.Opaque))
	}
	if ch.Stale != nil {
		write("stale", strconv.FormatBool(*ch.Stale))
	}
	if ch.Algorithm != "" {
		write("algorithm", ch.Algorithm)
	}
	if len(ch.QOP) > 0 {
		sb := util.GetStringBuilder()
		for j, q := range ch.QOP {
			if j > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(q)
		}
		write("qop", chars.Quote(sb.String()))
		util.FreeStringBuilder(sb)
	}
	for _, k := range ch.Params.Keys() {
		for _, v := range ch.Params.Get(k) {
			write(k, v)
		}
	}
	return errtrace.Wrap2(cw.Result())
}

func (ch Challenge) String() string { return stringOf(ch.RenderTo) }

func (ch Challenge) Clone() Challenge {
	ch.Domain = slices.Clone(ch.Domain)
	for i := range ch.Domain {
		ch.Domain[i] = ch.Domain[i].Clone()
	}
	if ch.Stale != nil {
		stale := *ch.Stale
		ch.Stale = &stale
	}
	ch.QOP = slices.Clone(ch.QOP)
	ch.Params = ch.Params.Clone()
	return ch
}

// HasQOP reports whether the challenge offers the given quality of protection.
func (ch Challenge) HasQOP(qop string) bool {
	return slices.Contains(ch.QOP, util.LCase(qop))
}
