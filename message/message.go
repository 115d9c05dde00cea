// Package message splits a buffered SIP message into the start line, header fields and body
// and parses every part with the grammar.
package message

import (
	"github.com/ghettovoice/sipabnf/header"
)

// Field is a single header field as it appears in the message.
type Field struct {
	// Name is the canonical name, compact forms are expanded.
	Name header.Name
	// Raw is the field value with folded lines joined.
	Raw string
	// Value is the parsed value, nil when parsing failed in lenient mode.
	Value any
	// Err is the parse error kept in lenient mode.
	Err error
}

// Message is a parsed SIP request or response.
type Message struct {
	// StartLine is either [header.RequestLine] or [header.StatusLine].
	StartLine any
	// Fields keeps the header fields in the order of appearance.
	Fields []Field
	Body   []byte
}

// IsRequest reports whether the message is a request.
func (m *Message) IsRequest() bool {
	_, ok := m.StartLine.(header.RequestLine)
	return ok
}

// RequestLine returns the start line of a request.
func (m *Message) RequestLine() (header.RequestLine, bool) {
	l, ok := m.StartLine.(header.RequestLine)
	return l, ok
}

// StatusLine returns the start line of a response.
func (m *Message) StatusLine() (header.StatusLine, bool) {
	l, ok := m.StartLine.(header.StatusLine)
	return l, ok
}

// Header returns the parsed values of all fields with the name in the order of appearance.
// The name may be given in any case or in the compact form.
// Fields that failed to parse in lenient mode are skipped.
func (m *Message) Header(name string) []any {
	n := header.CanonicName(name)
	var vals []any
	for _, f := range m.Fields {
		if f.Name == n && f.Value != nil {
			vals = append(vals, f.Value)
		}
	}
	return vals
}

// Has reports whether the message has a field with the name.
func (m *Message) Has(name string) bool {
	n := header.CanonicName(name)
	for _, f := range m.Fields {
		if f.Name == n {
			return true
		}
	}
	return false
}

func headerOf[T any](m *Message, name string) (T, bool) {
	var zero T
	for _, v := range m.Header(name) {
		if hdr, ok := v.(T); ok {
			return hdr, true
		}
	}
	return zero, false
}

func listOf[T ~[]E, E any](m *Message, name string) T {
	var res T
	for _, v := range m.Header(name) {
		if hdr, ok := v.(T); ok {
			res = append(res, hdr...)
		}
	}
	return res
}

// Via returns hops of all Via fields.
func (m *Message) Via() header.Via { return listOf[header.Via](m, "Via") }

// Route returns entries of all Route fields.
func (m *Message) Route() header.Route { return listOf[header.Route](m, "Route") }

// RecordRoute returns entries of all Record-Route fields.
func (m *Message) RecordRoute() header.RecordRoute {
	return listOf[header.RecordRoute](m, "Record-Route")
}

// Contact returns instances of all Contact fields, a wildcard field wins.
func (m *Message) Contact() header.Contact {
	var res header.Contact
	for _, v := range m.Header("Contact") {
		hdr, ok := v.(header.Contact)
		if !ok {
			continue
		}
		if hdr.Wildcard {
			return hdr
		}
		res.Addrs = append(res.Addrs, hdr.Addrs...)
	}
	return res
}

// From returns the From field value.
func (m *Message) From() (header.NameAddr, bool) { return headerOf[header.NameAddr](m, "From") }

// To returns the To field value.
func (m *Message) To() (header.NameAddr, bool) { return headerOf[header.NameAddr](m, "To") }

// CallID returns the Call-ID field value.
func (m *Message) CallID() (string, bool) { return headerOf[string](m, "Call-ID") }

// CSeq returns the CSeq field value.
func (m *Message) CSeq() (header.CSeq, bool) { return headerOf[header.CSeq](m, "CSeq") }

// ContentLength returns the Content-Length field value.
func (m *Message) ContentLength() (int, bool) { return headerOf[int](m, "Content-Length") }

// ContentType returns the Content-Type field value.
func (m *Message) ContentType() (header.MediaType, bool) {
	return headerOf[header.MediaType](m, "Content-Type")
}
