package header

import (
	"strconv"

	"github.com/ghettovoice/sipabnf/internal/chars"
	"github.com/ghettovoice/sipabnf/uri"
)

// Method is a SIP request method.
// Methods are case-sensitive.
type Method string

const (
	INVITE    Method = "INVITE"
	ACK       Method = "ACK"
	OPTIONS   Method = "OPTIONS"
	BYE       Method = "BYE"
	CANCEL    Method = "CANCEL"
	REGISTER  Method = "REGISTER"
	SUBSCRIBE Method = "SUBSCRIBE"
	NOTIFY    Method = "NOTIFY"
	REFER     Method = "REFER"
)

// IsCore reports whether the method is one of the methods with a dedicated keyword in the grammar.
func (m Method) IsCore() bool {
	switch m {
	case INVITE, ACK, OPTIONS, BYE, CANCEL, REGISTER, SUBSCRIBE, NOTIFY, REFER:
		return true
	default:
		return false
	}
}

func (m Method) IsValid() bool { return chars.IsToken(m) }

// RequestLine is the start line of a request.
type RequestLine struct {
	Method  Method
	URI     uri.URI
	Version string
}

func (l RequestLine) String() string {
	var u string
	if l.URI != nil {
		u = l.URI.String()
	}
	return string(l.Method) + " " + u + " " + l.Version
}

// StatusLine is the start line of a response.
type StatusLine struct {
	Version      string
	StatusCode   int
	ReasonPhrase string
}

func (l StatusLine) String() string {
	return l.Version + " " + strconv.Itoa(l.StatusCode) + " " + l.ReasonPhrase
}

// CSeq represents the CSeq header field value.
type CSeq struct {
	Seq    uint32
	Method Method
}

func (hdr CSeq) String() string {
	return strconv.FormatUint(uint64(hdr.Seq), 10) + " " + string(hdr.Method)
}

func (hdr CSeq) IsValid() bool { return hdr.Method.IsValid() }
