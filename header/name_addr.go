package header

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipabnf/internal/chars"
	"github.com/ghettovoice/sipabnf/internal/errorutil"
	"github.com/ghettovoice/sipabnf/internal/ioutil"
	"github.com/ghettovoice/sipabnf/internal/types"
	"github.com/ghettovoice/sipabnf/uri"
)

// NameAddr represents a single element in From, To, Contact, Route, Record-Route and Refer-To headers.
// It contains a display name, URI, and parameters.
type NameAddr struct {
	DisplayName string
	URI         uri.URI
	Params      Values
}

// singleParams are the parameters that may appear only once in a name-addr instance.
var singleParams = []string{"tag", "q", "expires"}

// NewNameAddr builds a name-addr value.
// It rejects a nil or invalid URI, parameter names that are not tokens
// and repeated tag, q or expires parameters.
func NewNameAddr(displayName string, u uri.URI, params Values) (NameAddr, error) {
	if u == nil || !u.IsValid() {
		return NameAddr{}, errtrace.Wrap(errorutil.NewInvalidArgumentError("invalid URI %v", u))
	}
	for k := range params {
		if !chars.IsToken(k) {
			return NameAddr{}, errtrace.Wrap(errorutil.NewInvalidArgumentError("invalid parameter name %q", k))
		}
	}
	for _, k := range singleParams {
		if len(params.Get(k)) > 1 {
			return NameAddr{}, errtrace.Wrap(errorutil.NewInvalidArgumentError("duplicated %q parameter", k))
		}
	}
	return NameAddr{DisplayName: displayName, URI: u, Params: params}, nil
}

// RenderTo writes the name-addr to the provided writer.
func (addr NameAddr) RenderTo(w io.Writer) (num int, err error) {
	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)

	if addr.DisplayName != "" {
		if chars.IsToken(addr.DisplayName) {
			cw.Fprint(addr.DisplayName, " ")
		} else {
			cw.Fprint(chars.Quote(addr.DisplayName), " ")
		}
	}
	cw.Fprint("<")
	if addr.URI != nil {
		cw.Call(func(w io.Writer) (int, error) { return errtrace.Wrap2(addr.URI.RenderTo(w, nil)) })
	}
	cw.Fprint(">")
	cw.Call(func(w io.Writer) (int, error) { return errtrace.Wrap2(renderHdrParams(w, addr.Params)) })
	return errtrace.Wrap2(cw.Result())
}

// String returns the string representation of the NameAddr.
func (addr NameAddr) String() string { return stringOf(addr.RenderTo) }

// Format implements fmt.Formatter for custom formatting of the NameAddr.
func (addr NameAddr) Format(f fmt.State, verb rune) {
	switch verb {
	case 's':
		fmt.Fprint(f, addr.String())
		return
	case 'q':
		fmt.Fprint(f, strconv.Quote(addr.String()))
		return
	default:
		if !f.Flag('+') && !f.Flag('#') {
			fmt.Fprint(f, addr.String())
			return
		}

		type hideMethods NameAddr
		type NameAddr hideMethods
		fmt.Fprintf(f, fmt.FormatString(f, verb), NameAddr(addr))
		return
	}
}

// Equal compares this NameAddr with another for equality.
// Display names are ignored.
func (addr NameAddr) Equal(val any) bool {
	var other NameAddr
	switch v := val.(type) {
	case NameAddr:
		other = v
	case *NameAddr:
		if v == nil {
			return false
		}
		other = *v
	default:
		return false
	}

	if addr.URI == nil || other.URI == nil {
		return addr.URI == nil && other.URI == nil
	}
	return addr.URI.Equal(other.URI) &&
		compareHdrParams(addr.Params, other.Params, map[string]bool{
			"q":       true,
			"tag":     true,
			"expires": true,
		})
}

// IsValid checks whether the NameAddr is syntactically valid.
func (addr NameAddr) IsValid() bool {
	return types.IsValid(addr.URI) && validateHdrParams(addr.Params)
}

// IsZero checks whether the NameAddr is empty.
func (addr NameAddr) IsZero() bool {
	return addr.DisplayName == "" && addr.URI == nil && len(addr.Params) == 0
}

// Clone returns a copy of the NameAddr.
func (addr NameAddr) Clone() NameAddr {
	addr.URI = types.Clone[uri.URI](addr.URI)
	addr.Params = addr.Params.Clone()
	return addr
}

func (addr NameAddr) MarshalText() ([]byte, error) {
	return []byte(addr.String()), nil
}

func (addr NameAddr) Tag() (string, bool) {
	return addr.Params.Last("tag")
}

// Q returns the q parameter of a Contact instance.
func (addr NameAddr) Q() (float64, bool) {
	v, ok := addr.Params.Last("q")
	if !ok {
		return 0, false
	}
	q, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return q, true
}

func (addr NameAddr) Expires() (time.Duration, bool) {
	v, ok := addr.Params.Last("expires")
	if !ok {
		return 0, false
	}
	sec, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(sec) * time.Second, true
}
