package header

//go:generate go tool errtrace -w .

import (
	"io"
	"net/textproto"
	"slices"
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipabnf/internal/chars"
	"github.com/ghettovoice/sipabnf/internal/ioutil"
	"github.com/ghettovoice/sipabnf/internal/types"
	"github.com/ghettovoice/sipabnf/internal/util"
)

// Values represents header parameters as a multi-value map.
// Values are stored as they were matched, quoted strings keep their quotes,
// and valueless parameters hold an empty string.
type Values = types.Values

// RenderOptions contains options for rendering headers and URIs.
type RenderOptions = types.RenderOptions

// Name represents a SIP header name.
type Name string

// ToCanonic converts the Name to its canonical form.
func (n Name) ToCanonic() Name { return CanonicName(n) }

// IsValid checks whether the Name is syntactically valid.
func (n Name) IsValid() bool { return chars.IsToken(n) }

// Equal compares this Name with another for equality.
func (n Name) Equal(val any) bool {
	var other Name
	switch v := val.(type) {
	case Name:
		other = v
	case *Name:
		if v == nil {
			return false
		}
		other = *v
	default:
		return false
	}
	return CanonicName(n) == CanonicName(other)
}

var hdrNames = map[string]Name{
	"c":                  "Content-Type",
	"e":                  "Content-Encoding",
	"f":                  "From",
	"i":                  "Call-ID",
	"k":                  "Supported",
	"l":                  "Content-Length",
	"m":                  "Contact",
	"o":                  "Event",
	"r":                  "Refer-To",
	"s":                  "Subject",
	"t":                  "To",
	"u":                  "Allow-Events",
	"v":                  "Via",
	"x":                  "Session-Expires",
	"Call-Id":            "Call-ID",
	"Cseq":               "CSeq",
	"Mime-Version":       "MIME-Version",
	"Www-Authenticate":   "WWW-Authenticate",
	"C":                  "Content-Type",
	"E":                  "Content-Encoding",
	"F":                  "From",
	"I":                  "Call-ID",
	"K":                  "Supported",
	"L":                  "Content-Length",
	"M":                  "Contact",
	"O":                  "Event",
	"R":                  "Refer-To",
	"S":                  "Subject",
	"T":                  "To",
	"U":                  "Allow-Events",
	"V":                  "Via",
	"X":                  "Session-Expires",
}

// CanonicName converts name to the canonical form.
// The canonicalization converts the first letter and any letter following a hyphen to upper case;
// the rest are converted to lowercase. For example, the canonical name for "accept-encoding" is "Accept-Encoding".
// Also, any compact name is converted to its full canonical form. For example, "c" converts to "Content-Type".
func CanonicName[T ~string](name T) Name {
	name = util.TrimSP(name)
	if n, ok := hdrNames[string(name)]; ok {
		return n
	}

	name = T(textproto.CanonicalMIMEHeaderKey(string(name)))
	if n, ok := hdrNames[string(name)]; ok {
		return n
	}
	return Name(name)
}

func renderHdrEntries[H ~[]E, E any](w io.Writer, hdr H) (num int, err error) {
	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	for i := range hdr {
		if i > 0 {
			cw.Fprint(", ")
		}
		cw.Fprint(hdr[i])
	}
	return errtrace.Wrap2(cw.Result())
}

func renderHdrParams(w io.Writer, params Values) (num int, err error) {
	if len(params) == 0 {
		return 0, nil
	}

	// Sort parameters in alphabet order, but with "q" parameter always the first place.
	keys := params.Keys()
	slices.SortStableFunc(keys, func(a, b string) int {
		switch {
		case a == "q" && b != "q":
			return -1
		case a != "q" && b == "q":
			return 1
		}
		return 0
	})

	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	for _, k := range keys {
		for _, v := range params.Get(k) {
			cw.Fprint(";", k)
			if v != "" {
				cw.Fprint("=", v)
			}
		}
	}
	return errtrace.Wrap2(cw.Result())
}

func isQuoted(s string) bool { return len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' }

func compareHdrParams(params1, params2 Values, specParams map[string]bool) bool {
	// Any parameter appearing in both lists must match.
	for k := range params1 {
		if !params2.Has(k) {
			if specParams[k] {
				return false
			}
			continue
		}
		v1, _ := params1.Last(k)
		v2, _ := params2.Last(k)
		if !isQuoted(v1) {
			v1 = util.LCase(v1)
		}
		if !isQuoted(v2) {
			v2 = util.LCase(v2)
		}
		if v1 != v2 {
			return false
		}
	}
	// Any special parameter appearing in one list must appear in the other.
	for k := range params2 {
		if specParams[k] && !params1.Has(k) {
			return false
		}
	}
	return true
}

func validateHdrParams(params Values) bool {
	for k, vs := range params {
		if !chars.IsToken(k) {
			return false
		}
		for _, v := range vs {
			if v != "" && !isQuoted(v) && strings.ContainsAny(v, " \t\r\n;,\"") {
				return false
			}
		}
	}
	return true
}

func cloneHdrEntries[H ~[]E, E interface{ Clone() E }](hdr H) H {
	var hdr2 H
	if hdr == nil {
		return hdr2
	}
	hdr2 = make(H, len(hdr))
	for i := range hdr {
		hdr2[i] = hdr[i].Clone()
	}
	return hdr2
}

func lastParam(params Values, name string) (string, bool) {
	v, ok := params.Last(name)
	if !ok {
		return "", false
	}
	return chars.Unquote(v), true
}

func stringOf(fn func(w io.Writer) (int, error)) string {
	sb := util.GetStringBuilder()
	defer util.FreeStringBuilder(sb)
	fn(sb) //nolint:errcheck
	return sb.String()
}
