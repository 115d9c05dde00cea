package message_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ghettovoice/sipabnf/grammar"
	"github.com/ghettovoice/sipabnf/header"
	"github.com/ghettovoice/sipabnf/message"
	"github.com/ghettovoice/sipabnf/uri"
)

func join(lines ...string) string { return strings.Join(lines, "\r\n") }

func TestParse_Request(t *testing.T) {
	t.Parallel()

	in := join(
		"INVITE sip:bob@biloxi.com SIP/2.0",
		"Via: SIP/2.0/UDP pc33.atlanta.com;branch=z9hG4bK776asdhds",
		"v: SIP/2.0/TCP client.atlanta.com:5060;branch=z9hG4bK74bf9",
		"Max-Forwards: 70",
		"To: Bob <sip:bob@biloxi.com>",
		"f: Alice <sip:alice@atlanta.com>;tag=1928301774",
		"i: a84b4c76e66710@pc33.atlanta.com",
		"CSeq: 314159 INVITE",
		"m: <sip:alice@pc33.atlanta.com>",
		"Contact: sip:alice@192.0.2.4",
		"Subject: lunch",
		"\tat noon",
		"X-Custom:  anything goes ",
		"c: application/sdp",
		"l: 4",
		"",
		"test",
	)

	msg, err := message.Parse(in)
	if err != nil {
		t.Fatalf("message.Parse() error = %v, want nil", err)
	}

	rl, ok := msg.RequestLine()
	if !ok || !msg.IsRequest() {
		t.Fatalf("msg.StartLine = %T, want header.RequestLine", msg.StartLine)
	}
	wantRL := header.RequestLine{
		Method:  header.INVITE,
		URI:     &uri.SIP{User: uri.User("bob"), Addr: uri.Host("biloxi.com")},
		Version: "SIP/2.0",
	}
	if diff := cmp.Diff(rl, wantRL); diff != "" {
		t.Errorf("msg.RequestLine() = %v, want %v\ndiff (-got +want):\n%v", rl, wantRL, diff)
	}

	if via := msg.Via(); len(via) != 2 || via[1].Transport != "TCP" {
		t.Errorf("msg.Via() = %v, want 2 hops", via)
	}
	if from, ok := msg.From(); !ok || from.DisplayName != "Alice" {
		t.Errorf("msg.From() = %v, %v, want Alice", from, ok)
	} else if tag, _ := from.Tag(); tag != "1928301774" {
		t.Errorf("from.Tag() = %q, want %q", tag, "1928301774")
	}
	if to, ok := msg.To(); !ok || to.String() != "Bob <sip:bob@biloxi.com>" {
		t.Errorf("msg.To() = %v, %v, want Bob <sip:bob@biloxi.com>", to, ok)
	}
	if callID, ok := msg.CallID(); !ok || callID != "a84b4c76e66710@pc33.atlanta.com" {
		t.Errorf("msg.CallID() = %q, %v", callID, ok)
	}
	if cseq, ok := msg.CSeq(); !ok || cseq != (header.CSeq{Seq: 314159, Method: header.INVITE}) {
		t.Errorf("msg.CSeq() = %v, %v", cseq, ok)
	}
	if contact := msg.Contact(); contact.Wildcard || len(contact.Addrs) != 2 {
		t.Errorf("msg.Contact() = %v, want 2 instances", contact)
	}
	if ct, ok := msg.ContentType(); !ok || ct.String() != "application/sdp" {
		t.Errorf("msg.ContentType() = %v, %v", ct, ok)
	}
	if n, ok := msg.ContentLength(); !ok || n != 4 {
		t.Errorf("msg.ContentLength() = %v, %v, want 4", n, ok)
	}

	if diff := cmp.Diff(msg.Header("s"), []any{"lunch at noon"}); diff != "" {
		t.Errorf("msg.Header(\"s\") differs\ndiff (-got +want):\n%v", diff)
	}
	if diff := cmp.Diff(msg.Header("x-custom"), []any{header.Extension{Name: "X-Custom", Value: "anything goes"}}); diff != "" {
		t.Errorf("msg.Header(\"x-custom\") differs\ndiff (-got +want):\n%v", diff)
	}
	if diff := cmp.Diff(msg.Header("max-forwards"), []any{70}); diff != "" {
		t.Errorf("msg.Header(\"max-forwards\") differs\ndiff (-got +want):\n%v", diff)
	}

	wantNames := []header.Name{
		"Via", "Via", "Max-Forwards", "To", "From", "Call-ID", "CSeq", "Contact", "Contact",
		"Subject", "X-Custom", "Content-Type", "Content-Length",
	}
	gotNames := make([]header.Name, 0, len(msg.Fields))
	for _, f := range msg.Fields {
		gotNames = append(gotNames, f.Name)
	}
	if diff := cmp.Diff(gotNames, wantNames); diff != "" {
		t.Errorf("field names differ\ndiff (-got +want):\n%v", diff)
	}

	if got := string(msg.Body); got != "test" {
		t.Errorf("msg.Body = %q, want %q", got, "test")
	}
}

func TestParse_Response(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		in       string
		wantLine header.StatusLine
		wantBody string
	}{
		{
			"leading empty lines",
			join("", "", "SIP/2.0 200 OK", "Content-Length: 0", "", ""),
			header.StatusLine{Version: "SIP/2.0", StatusCode: 200, ReasonPhrase: "OK"},
			"",
		},
		{
			"body truncated to content length",
			join("SIP/2.0 180 Ringing", "l: 2", "", "abcdef"),
			header.StatusLine{Version: "SIP/2.0", StatusCode: 180, ReasonPhrase: "Ringing"},
			"ab",
		},
		{
			"body without content length",
			join("SIP/2.0 486 Busy Here", "", "rest of datagram"),
			header.StatusLine{Version: "SIP/2.0", StatusCode: 486, ReasonPhrase: "Busy Here"},
			"rest of datagram",
		},
		{
			"bare line feeds",
			"SIP/2.0 100 Trying\nCall-ID: abc\n\n",
			header.StatusLine{Version: "SIP/2.0", StatusCode: 100, ReasonPhrase: "Trying"},
			"",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			msg, err := message.Parse([]byte(c.in))
			if err != nil {
				t.Fatalf("message.Parse() error = %v, want nil", err)
			}
			sl, ok := msg.StatusLine()
			if !ok || msg.IsRequest() {
				t.Fatalf("msg.StartLine = %T, want header.StatusLine", msg.StartLine)
			}
			if diff := cmp.Diff(sl, c.wantLine); diff != "" {
				t.Errorf("msg.StatusLine() = %v, want %v\ndiff (-got +want):\n%v", sl, c.wantLine, diff)
			}
			if got := string(msg.Body); got != c.wantBody {
				t.Errorf("msg.Body = %q, want %q", got, c.wantBody)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"empty", "", message.ErrIncomplete},
		{"no empty line", join("OPTIONS sip:a@b.com SIP/2.0", "Via: SIP/2.0/UDP b.com"), message.ErrIncomplete},
		{"no colon", join("OPTIONS sip:a@b.com SIP/2.0", "Via SIP/2.0/UDP b.com", "", ""), message.ErrMalformedLine},
		{"invalid name", join("OPTIONS sip:a@b.com SIP/2.0", "Bad Name: x", "", ""), message.ErrMalformedLine},
		{"leading continuation", join("OPTIONS sip:a@b.com SIP/2.0", " x", "", ""), message.ErrMalformedLine},
		{"continuation before start line", join(" OPTIONS sip:a@b.com SIP/2.0", "", ""), message.ErrMalformedLine},
		{"invalid start line", join("OPTIONS sip:a@b.com HTTP/1.1", "", ""), message.ErrStartLine},
		{"body too short", join("SIP/2.0 200 OK", "Content-Length: 10", "", "abc"), message.ErrContentLength},
		{
			"conflicting content length",
			join("SIP/2.0 200 OK", "Content-Length: 3", "l: 4", "", "abcd"),
			message.ErrContentLength,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			msg, err := message.Parse(c.in)
			if msg != nil {
				t.Errorf("message.Parse() = %+v, want nil", msg)
			}
			if !errors.Is(err, c.wantErr) {
				t.Errorf("message.Parse() error = %v, want %v", err, c.wantErr)
			}
		})
	}
}

func TestParse_InvalidStartLineDiagnostic(t *testing.T) {
	t.Parallel()

	_, err := message.Parse(join("SIP/2.0 4045 Bad", "", ""))
	var se *grammar.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("message.Parse() error = %v, want *grammar.SyntaxError", err)
	}
	if se.Offset != 11 {
		t.Errorf("syntax error offset = %d, want 11", se.Offset)
	}
}

func TestParser_Lenient(t *testing.T) {
	t.Parallel()

	in := join(
		"BYE sip:alice@pc33.atlanta.com SIP/2.0",
		"Max-Forwards: seventy",
		"Call-ID: a84b4c76e66710",
		"",
		"",
	)

	t.Run("strict", func(t *testing.T) {
		t.Parallel()

		var p message.Parser
		_, err := p.Parse([]byte(in))
		var ferr *message.FieldError
		if !errors.As(err, &ferr) {
			t.Fatalf("p.Parse() error = %v, want *message.FieldError", err)
		}
		if ferr.Name != "Max-Forwards" || ferr.Value != "seventy" {
			t.Errorf("ferr = %+v, want field Max-Forwards with value \"seventy\"", ferr)
		}
		var se *grammar.SyntaxError
		if !errors.As(err, &se) {
			t.Errorf("p.Parse() error = %v, want *grammar.SyntaxError inside", err)
		}
	})

	t.Run("lenient", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		p := message.Parser{
			Lenient: true,
			Logger:  slog.New(slog.NewTextHandler(&buf, nil)),
		}
		msg, err := p.Parse([]byte(in))
		if err != nil {
			t.Fatalf("p.Parse() error = %v, want nil", err)
		}
		if !msg.Has("max-forwards") {
			t.Error("msg.Has(\"max-forwards\") = false, want true")
		}
		if vals := msg.Header("Max-Forwards"); len(vals) != 0 {
			t.Errorf("msg.Header(\"Max-Forwards\") = %v, want empty", vals)
		}
		f := msg.Fields[0]
		if f.Raw != "seventy" || f.Value != nil || f.Err == nil {
			t.Errorf("msg.Fields[0] = %+v, want raw value with error", f)
		}
		if callID, ok := msg.CallID(); !ok || callID != "a84b4c76e66710" {
			t.Errorf("msg.CallID() = %q, %v", callID, ok)
		}
		if !strings.Contains(buf.String(), "keep malformed header field") {
			t.Errorf("log output = %q, want warning about the field", buf.String())
		}
	})
}

func TestParser_DebugLog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := message.Parser{Logger: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}
	in := join(
		"OPTIONS sip:bob@biloxi.com SIP/2.0",
		"CSeq: 314159 OPTIONS",
		"",
		"",
	)
	if _, err := p.Parse([]byte(in)); err != nil {
		t.Fatalf("p.Parse() error = %v, want nil", err)
	}
	for _, want := range []string{`msg="parsed header field"`, "field=CSeq", `value="314159 OPTIONS"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log output = %q, want it to contain %q", buf.String(), want)
		}
	}
}

func TestMessage_ContactWildcard(t *testing.T) {
	t.Parallel()

	msg, err := message.Parse(join(
		"REGISTER sip:registrar.biloxi.com SIP/2.0",
		"Contact: *",
		"Expires: 0",
		"",
		"",
	))
	if err != nil {
		t.Fatalf("message.Parse() error = %v, want nil", err)
	}
	if diff := cmp.Diff(msg.Contact(), header.Contact{Wildcard: true}, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("msg.Contact() differs\ndiff (-got +want):\n%v", diff)
	}
	if diff := cmp.Diff(msg.Header("Expires"), []any{0}); diff != "" {
		t.Errorf("msg.Header(\"Expires\") differs\ndiff (-got +want):\n%v", diff)
	}
}

func TestFieldRule(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		want grammar.Rule
		ok   bool
	}{
		{"v", grammar.RuleVia, true},
		{"record-route", grammar.RuleRecordRoute, true},
		{"WWW-Authenticate", grammar.RuleWWWAuthenticate, true},
		{"call-id", grammar.RuleCallID, true},
		{"X-Unknown", "", false},
	}

	for _, c := range cases {
		if got, ok := message.FieldRule(c.name); got != c.want || ok != c.ok {
			t.Errorf("message.FieldRule(%q) = %q, %v, want %q, %v", c.name, got, ok, c.want, c.ok)
		}
	}
}
