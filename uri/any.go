package uri

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipabnf/internal/errorutil"
	"github.com/ghettovoice/sipabnf/internal/util"
)

// Any implements any absolute URI that is not SIP or SIPS.
type Any struct {
	url.URL
}

// NewAny builds an absolute URI from the matched text.
func NewAny(s string) (*Any, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError(err))
	}
	if u.Scheme == "" {
		return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError("missing scheme in %q", s))
	}
	return &Any{URL: *u}, nil
}

// Clone returns a deep copy of the Any URI.
func (u *Any) Clone() URI {
	if u == nil {
		return nil
	}
	u2 := *u
	if u.User != nil {
		if pwd, ok := u.User.Password(); ok {
			u2.User = url.UserPassword(u.User.Username(), pwd)
		} else {
			u2.User = url.User(u.User.Username())
		}
	}
	return &u2
}

// RenderTo writes the URI to the provided writer.
func (u *Any) RenderTo(w io.Writer, _ *RenderOptions) (num int, err error) {
	if u == nil {
		return 0, nil
	}
	return errtrace.Wrap2(fmt.Fprint(w, u.URL.String()))
}

// Render returns the string representation of the URI.
func (u *Any) Render(opts *RenderOptions) string {
	if u == nil {
		return ""
	}
	sb := util.GetStringBuilder()
	defer util.FreeStringBuilder(sb)
	u.RenderTo(sb, opts) //nolint:errcheck
	return sb.String()
}

// String returns the string representation of the URI.
func (u *Any) String() string {
	if u == nil {
		return ""
	}
	return u.Render(nil)
}

// Format implements fmt.Formatter for custom formatting of the Any URI.
func (u *Any) Format(f fmt.State, verb rune) {
	switch verb {
	case 's':
		fmt.Fprint(f, u.String())
		return
	case 'q':
		fmt.Fprint(f, strconv.Quote(u.String()))
		return
	default:
		type hideMethods Any
		type Any hideMethods
		fmt.Fprintf(f, fmt.FormatString(f, verb), (*Any)(u))
		return
	}
}

// Equal compares this URI with another for equality.
func (u *Any) Equal(val any) bool {
	var other *Any
	switch v := val.(type) {
	case Any:
		other = &v
	case *Any:
		other = v
	default:
		return false
	}

	if u == other {
		return true
	} else if u == nil || other == nil {
		return false
	}
	return util.EqFold(u.Scheme, other.Scheme) &&
		util.EqFold(u.Host, other.Host) &&
		u.Opaque == other.Opaque &&
		u.Path == other.Path &&
		u.RawQuery == other.RawQuery &&
		u.User.String() == other.User.String()
}

// IsValid checks whether the Any URI is syntactically valid.
// Relative references are valid when they hold an absolute path.
func (u *Any) IsValid() bool {
	if u == nil {
		return false
	}
	if u.Scheme == "" {
		return strings.HasPrefix(u.Path, "/")
	}
	return util.TrimSP(u.Opaque) != "" ||
		util.TrimSP(u.Host) != "" ||
		util.TrimSP(u.Path) != ""
}

// MarshalText implements [encoding.TextMarshaler].
func (u *Any) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}
