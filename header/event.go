package header

import (
	"io"
	"strconv"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipabnf/internal/ioutil"
)

// Event represents the Event header field value (RFC 6665).
type Event struct {
	Type   string
	Params Values
}

func (e Event) RenderTo(w io.Writer) (num int, err error) {
	return errtrace.Wrap2(renderTokenParams(w, e.Type, e.Params))
}

func (e Event) String() string { return stringOf(e.RenderTo) }

func (e Event) Clone() Event {
	e.Params = e.Params.Clone()
	return e
}

func (e Event) ID() (string, bool) { return e.Params.Last("id") }

// SubscriptionState represents the Subscription-State header field value (RFC 6665).
type SubscriptionState struct {
	State  string
	Params Values
}

func (ss SubscriptionState) RenderTo(w io.Writer) (num int, err error) {
	return errtrace.Wrap2(renderTokenParams(w, ss.State, ss.Params))
}

func (ss SubscriptionState) String() string { return stringOf(ss.RenderTo) }

func (ss SubscriptionState) Clone() SubscriptionState {
	ss.Params = ss.Params.Clone()
	return ss
}

func (ss SubscriptionState) Reason() (string, bool) { return ss.Params.Last("reason") }

func (ss SubscriptionState) Expires() (int, bool) { return intParam(ss.Params, "expires") }

func (ss SubscriptionState) RetryAfter() (int, bool) { return intParam(ss.Params, "retry-after") }

// SessionExpires represents the Session-Expires header field value (RFC 4028).
type SessionExpires struct {
	Delta  int
	Params Values
}

func (se SessionExpires) RenderTo(w io.Writer) (num int, err error) {
	return errtrace.Wrap2(renderTokenParams(w, strconv.Itoa(se.Delta), se.Params))
}

func (se SessionExpires) String() string { return stringOf(se.RenderTo) }

func (se SessionExpires) Clone() SessionExpires {
	se.Params = se.Params.Clone()
	return se
}

// Refresher returns "uac" or "uas".
func (se SessionExpires) Refresher() (string, bool) { return se.Params.Last("refresher") }

// Replaces represents the Replaces header field value (RFC 3891).
type Replaces struct {
	CallID string
	Params Values
}

func (r Replaces) RenderTo(w io.Writer) (num int, err error) {
	return errtrace.Wrap2(renderTokenParams(w, r.CallID, r.Params))
}

func (r Replaces) String() string { return stringOf(r.RenderTo) }

func (r Replaces) Clone() Replaces {
	r.Params = r.Params.Clone()
	return r
}

func (r Replaces) ToTag() (string, bool) { return r.Params.Last("to-tag") }

func (r Replaces) FromTag() (string, bool) { return r.Params.Last("from-tag") }

func (r Replaces) EarlyOnly() bool { return r.Params.Has("early-only") }

// Reason represents the Reason header field value (RFC 3326).
type Reason struct {
	Protocol string
	Params   Values
}

func (r Reason) RenderTo(w io.Writer) (num int, err error) {
	return errtrace.Wrap2(renderTokenParams(w, r.Protocol, r.Params))
}

func (r Reason) String() string { return stringOf(r.RenderTo) }

func (r Reason) Clone() Reason {
	r.Params = r.Params.Clone()
	return r
}

func (r Reason) Cause() (int, bool) { return intParam(r.Params, "cause") }

// Text returns the unquoted text parameter.
func (r Reason) Text() (string, bool) { return lastParam(r.Params, "text") }

// Extension is a header field with a name unknown to the grammar.
type Extension struct {
	Name  string
	Value string
}

func (e Extension) String() string { return e.Name + ": " + e.Value }

func renderTokenParams(w io.Writer, tok string, params Values) (num int, err error) {
	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	cw.Fprint(tok)
	cw.Call(func(w io.Writer) (int, error) { return errtrace.Wrap2(renderHdrParams(w, params)) })
	return errtrace.Wrap2(cw.Result())
}

func intParam(params Values, name string) (int, bool) {
	v, ok := params.Last(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
