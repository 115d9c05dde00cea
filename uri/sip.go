package uri

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipabnf/internal/chars"
	"github.com/ghettovoice/sipabnf/internal/errorutil"
	"github.com/ghettovoice/sipabnf/internal/ioutil"
	"github.com/ghettovoice/sipabnf/internal/util"
)

// SIP represents a SIP or SIPS URI.
type SIP struct {
	User    UserInfo // username and passwd
	Addr    Addr     // host and port
	Params  Values   // parameters
	Headers Values   // headers
	Secured bool
}

// Parts holds the fields of a SIP URI as they were matched.
// It is the input of [NewSIP].
type Parts struct {
	Scheme      string
	User        string // decoded
	Password    string // kept as is
	HasPassword bool
	Host        string
	HostKind    HostKind
	Port        int
	HasPort     bool
	Params      Values
	Headers     Values
}

const (
	errEmptyHost errorutil.Error = "empty host"

	maxPort = 65535
	maxTTL  = 255
)

func newInvalidHostErr(host string, kind HostKind) error {
	return errorutil.NewInvalidArgumentError("invalid %s host %q", kind, host) //errtrace:skip
}

// NewSIP builds a SIP URI from the matched parts.
// It rejects unknown schemes, ports above 65535, ttl parameter above 255,
// hosts that are not valid for their kind (domain names with a label longer than 63 octets
// or a name longer than 255 octets) and a password without a user.
func NewSIP(p Parts) (*SIP, error) {
	u := &SIP{
		Params:  p.Params,
		Headers: p.Headers,
	}

	switch util.LCase(p.Scheme) {
	case "sip":
	case "sips":
		u.Secured = true
	default:
		return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError("unexpected scheme %q", p.Scheme))
	}

	if err := validateHost(p.Host, p.HostKind); err != nil {
		return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError(err))
	}
	if p.HasPort {
		if p.Port < 0 || p.Port > maxPort {
			return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError("port %d out of range", p.Port))
		}
		u.Addr = Addr{host: p.Host, kind: p.HostKind, port: uint16(p.Port), hasPort: true}
	} else {
		u.Addr = Addr{host: p.Host, kind: p.HostKind}
	}

	if ttl, ok := p.Params.Last("ttl"); ok {
		if n, err := strconv.Atoi(ttl); err != nil || n < 0 || n > maxTTL {
			return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError("ttl %q out of range", ttl))
		}
	}

	switch {
	case p.HasPassword && p.User == "":
		return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError("password without user"))
	case p.HasPassword:
		u.User = UserPassword(p.User, p.Password)
	case p.User != "":
		u.User = User(p.User)
	}
	return u, nil
}

// Clone returns a deep copy of the SIP URI.
func (u *SIP) Clone() URI {
	if u == nil {
		return nil
	}
	u2 := *u
	u2.Addr = u.Addr.Clone()
	u2.Params = u.Params.Clone()
	u2.Headers = u.Headers.Clone()
	return &u2
}

// RenderTo writes the SIP URI to the provided writer.
func (u *SIP) RenderTo(w io.Writer, _ *RenderOptions) (num int, err error) {
	if u == nil {
		return 0, nil
	}

	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	cw.Fprint(u.scheme(), ":")
	if !u.User.IsZero() {
		cw.Fprint(u.User, "@")
	}
	cw.Fprint(u.Addr)
	cw.Call(u.renderParams)
	cw.Call(u.renderHeaders)
	return errtrace.Wrap2(cw.Result())
}

func (u *SIP) scheme() string {
	if u.Secured {
		return "sips"
	}
	return "sip"
}

func shouldEscapeParamChar(c byte) bool {
	return c >= utf8.RuneSelf || !chars.IsUnreserved(rune(c)) && !chars.IsParamUnreserved(rune(c))
}

func shouldEscapeHeaderChar(c byte) bool {
	return c >= utf8.RuneSelf || !chars.IsUnreserved(rune(c)) && !chars.IsHnvUnreserved(rune(c))
}

func shouldEscapeUserChar(c byte) bool {
	return c >= utf8.RuneSelf || !chars.IsUnreserved(rune(c)) && !chars.IsUserUnreserved(rune(c))
}

func (u *SIP) renderParams(w io.Writer) (num int, err error) {
	if len(u.Params) == 0 {
		return 0, nil
	}

	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	for _, k := range u.Params.Keys() {
		for _, v := range u.Params.Get(k) {
			cw.Fprint(";", chars.EscapeEncoded(k, shouldEscapeParamChar))
			if v != "" {
				cw.Fprint("=", chars.EscapeEncoded(v, shouldEscapeParamChar))
			}
		}
	}
	return errtrace.Wrap2(cw.Result())
}

func (u *SIP) renderHeaders(w io.Writer) (num int, err error) {
	if len(u.Headers) == 0 {
		return 0, nil
	}

	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	cw.Fprint("?")

	var i int
	for _, k := range u.Headers.Keys() {
		for _, v := range u.Headers.Get(k) {
			if i > 0 {
				cw.Fprint("&")
			}
			cw.Fprint(chars.EscapeEncoded(k, shouldEscapeHeaderChar), "=", chars.EscapeEncoded(v, shouldEscapeHeaderChar))
			i++
		}
	}
	return errtrace.Wrap2(cw.Result())
}

// Render returns the string representation of the SIP URI.
func (u *SIP) Render(opts *RenderOptions) string {
	if u == nil {
		return ""
	}
	sb := util.GetStringBuilder()
	defer util.FreeStringBuilder(sb)
	u.RenderTo(sb, opts) //nolint:errcheck
	return sb.String()
}

// String returns the string representation of the SIP URI.
func (u *SIP) String() string {
	if u == nil {
		return ""
	}
	return u.Render(nil)
}

// Format implements fmt.Formatter for custom formatting of the SIP URI.
func (u *SIP) Format(f fmt.State, verb rune) {
	switch verb {
	case 's':
		fmt.Fprint(f, u.String())
		return
	case 'q':
		fmt.Fprint(f, strconv.Quote(u.String()))
		return
	default:
		type hideMethods SIP
		type SIP hideMethods
		fmt.Fprintf(f, fmt.FormatString(f, verb), (*SIP)(u))
		return
	}
}

// Equal compares this SIP URI with another for equality according to RFC 3261 Section 19.1.4.
func (u *SIP) Equal(val any) bool {
	var other *SIP
	switch v := val.(type) {
	case SIP:
		other = &v
	case *SIP:
		other = v
	default:
		return false
	}

	if u == other {
		return true
	} else if u == nil || other == nil {
		return false
	}

	return u.Secured == other.Secured &&
		u.User.Equal(other.User) &&
		u.Addr.Equal(other.Addr) &&
		u.compareParams(other.Params) &&
		u.compareHeaders(other.Headers)
}

var sipURISpecParams = map[string]bool{
	"transport": true,
	"user":      true,
	"method":    true,
	"maddr":     true,
	"ttl":       true,
	"lr":        true,
}

func (u *SIP) compareParams(params Values) bool {
	// Any parameter appearing in both URIs must match.
	for k := range u.Params {
		if !params.Has(k) {
			if sipURISpecParams[k] {
				return false
			}
			continue
		}
		v1, _ := u.Params.Last(k)
		v2, _ := params.Last(k)
		if !util.EqFold(chars.Unescape(v1), chars.Unescape(v2)) {
			return false
		}
	}
	// Any special parameter appearing in one URI must appear in the other.
	for k := range params {
		if sipURISpecParams[k] && !u.Params.Has(k) {
			return false
		}
	}
	return true
}

func (u *SIP) compareHeaders(hdrs Values) bool {
	// URI header components are never ignored.
	if len(u.Headers) != len(hdrs) {
		return false
	}
	for k := range u.Headers {
		if !hdrs.Has(k) {
			return false
		}
		if !util.EqFold(chars.Unescape(strings.Join(u.Headers.Get(k), ", ")), chars.Unescape(strings.Join(hdrs.Get(k), ", "))) {
			return false
		}
	}
	return true
}

// IsValid checks whether the SIP URI is syntactically valid.
func (u *SIP) IsValid() bool {
	return u != nil && u.Addr.IsValid() && (u.User.IsZero() || u.User.IsValid())
}

// MarshalText implements [encoding.TextMarshaler].
func (u *SIP) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *SIP) Transport() (string, bool) {
	return u.Params.Last("transport")
}

func (u *SIP) UserParam() (string, bool) {
	return u.Params.Last("user")
}

func (u *SIP) Method() (string, bool) {
	return u.Params.Last("method")
}

func (u *SIP) MAddr() (string, bool) {
	return u.Params.Last("maddr")
}

func (u *SIP) TTL() (uint8, bool) {
	val, ok := u.Params.Last("ttl")
	if !ok {
		return 0, false
	}
	ttl, err := strconv.ParseUint(val, 10, 8)
	if err != nil {
		return 0, false
	}
	return uint8(ttl), true
}

func (u *SIP) LR() bool {
	return u.Params.Has("lr")
}

// UserInfo is a container for user credentials.
// It is typically used in [SIP] to store userinfo part.
type UserInfo struct {
	usrname, passwd string
	hasPasswd       bool
}

// User returns a [UserInfo] containing the provided username and no password.
func User(usrname string) UserInfo {
	return UserInfo{usrname: usrname}
}

// UserPassword returns a [UserInfo] containing the provided username and password.
func UserPassword(usrname, passwd string) UserInfo {
	return UserInfo{usrname: usrname, passwd: passwd, hasPasswd: true}
}

// Username returns the username from the UserInfo.
func (ui UserInfo) Username() string { return ui.usrname }

// Password returns the password, in case it is set, and a bool flag indicating whether it is set.
func (ui UserInfo) Password() (string, bool) { return ui.passwd, ui.hasPasswd }

// String returns the string representation of the UserInfo.
// The password is written as it was matched.
func (ui UserInfo) String() string {
	sb := util.GetStringBuilder()
	defer util.FreeStringBuilder(sb)
	sb.WriteString(chars.Escape(ui.usrname, shouldEscapeUserChar))
	if ui.hasPasswd {
		sb.WriteString(":")
		sb.WriteString(ui.passwd)
	}
	return sb.String()
}

// Equal compares this UserInfo with another for equality.
func (ui UserInfo) Equal(val any) bool {
	var other UserInfo
	switch v := val.(type) {
	case UserInfo:
		other = v
	case *UserInfo:
		if v == nil {
			return false
		}
		other = *v
	default:
		return false
	}
	return ui.usrname == other.usrname && ui.passwd == other.passwd && ui.hasPasswd == other.hasPasswd
}

// IsValid checks whether the UserInfo is syntactically valid.
func (ui UserInfo) IsValid() bool { return ui.usrname != "" }

// IsZero checks whether the UserInfo is empty.
func (ui UserInfo) IsZero() bool { return ui.usrname == "" && ui.passwd == "" && !ui.hasPasswd }

