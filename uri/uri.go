package uri

//go:generate go tool errtrace -w .

import (
	"net/url"

	"github.com/ghettovoice/sipabnf/internal/errorutil"
	"github.com/ghettovoice/sipabnf/internal/types"
)

// Values represents URI parameters or headers as a multi-value map.
type Values = types.Values

// RenderOptions contains options for rendering URIs and headers.
type RenderOptions = types.RenderOptions

// URI represents generic URI (SIP, SIPS or any other absolute URI).
type URI interface {
	types.Renderer
	types.Cloneable[URI]
	types.ValidFlag
	types.Equalable
	String() string
}

// GetScheme returns the scheme of the URI.
//
// SIP and SIPS URIs return "sip" or "sips" respectively,
// Any URI returns the value of [net/url.URL.Scheme] field.
// If the URI is nil, an empty string is returned.
// If the URI is of unknown type, a panic is raised.
func GetScheme(u URI) string {
	if u == nil {
		return ""
	}

	switch u := u.(type) {
	case *SIP:
		return u.scheme()
	case *Any:
		return u.Scheme
	default:
		panic(newUnexpectURITypeErr(u))
	}
}

// GetParams returns the parameters of the URI.
//
// SIP and SIPS URIs return the value of [SIP.Params] field,
// Any URI returns the value of [net/url.URL.RawQuery] field parsed into [Values].
// If the URI is nil, nil is returned.
// If the URI is of unknown type, a panic is raised.
func GetParams(u URI) Values {
	if u == nil {
		return nil
	}

	switch u := u.(type) {
	case *SIP:
		return u.Params
	case *Any:
		p, _ := url.ParseQuery(u.RawQuery)
		return Values(p)
	default:
		panic(newUnexpectURITypeErr(u))
	}
}

func newUnexpectURITypeErr(u URI) error {
	return errorutil.Errorf("unexpected URI type %T", u) //errtrace:skip
}
