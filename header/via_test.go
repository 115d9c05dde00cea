package header_test

import (
	"net/netip"
	"testing"

	"github.com/ghettovoice/sipabnf/header"
	"github.com/ghettovoice/sipabnf/uri"
)

func TestVia(t *testing.T) {
	t.Parallel()

	hop := header.ViaHop{
		Proto:     "SIP",
		Version:   "2.0",
		Transport: "UDP",
		Addr:      uri.HostPort("pc33.atlanta.com", 5060),
		Params: make(header.Values).
			Append("branch", "z9hG4bK776asdhds").
			Append("received", "192.0.2.1").
			Append("rport", "").
			Append("ttl", "16"),
	}
	via := header.Via{hop, {Proto: "SIP", Version: "2.0", Transport: "TCP", Addr: uri.Host("[2001:db8::9]")}}

	want := "SIP/2.0/UDP pc33.atlanta.com:5060;branch=z9hG4bK776asdhds;received=192.0.2.1;rport;ttl=16, " +
		"SIP/2.0/TCP [2001:db8::9]"
	if got := via.String(); got != want {
		t.Errorf("via.String() = %q, want %q", got, want)
	}
	if !via.IsValid() {
		t.Error("via.IsValid() = false, want true")
	}
	if !via.Equal(via.Clone()) {
		t.Error("via.Equal(via.Clone()) = false, want true")
	}

	if v, ok := hop.Branch(); !ok || v != "z9hG4bK776asdhds" {
		t.Errorf("hop.Branch() = %q, %v", v, ok)
	}
	if v, ok := hop.Received(); !ok || v != netip.MustParseAddr("192.0.2.1") {
		t.Errorf("hop.Received() = %v, %v", v, ok)
	}
	if v, ok := hop.RPort(); !ok || v != 0 {
		t.Errorf("hop.RPort() = %v, %v, want 0, true", v, ok)
	}
	if v, ok := hop.TTL(); !ok || v != 16 {
		t.Errorf("hop.TTL() = %v, %v, want 16, true", v, ok)
	}
	if _, ok := hop.MAddr(); ok {
		t.Error("hop.MAddr() ok = true, want false")
	}
}

func TestContact_String(t *testing.T) {
	t.Parallel()

	if got := (header.Contact{Wildcard: true}).String(); got != "*" {
		t.Errorf("wildcard contact = %q, want \"*\"", got)
	}

	u1, _ := uri.NewSIP(uri.Parts{Scheme: "sip", User: "a", Host: "x.com"})
	u2, _ := uri.NewSIP(uri.Parts{Scheme: "sip", User: "b", Host: "y.com"})
	c := header.Contact{Addrs: []header.NameAddr{{URI: u1}, {URI: u2, Params: make(header.Values).Append("q", "0.1")}}}
	if got, want := c.String(), "<sip:a@x.com>, <sip:b@y.com>;q=0.1"; got != want {
		t.Errorf("contact = %q, want %q", got, want)
	}
	if !c.IsValid() {
		t.Error("c.IsValid() = false, want true")
	}
	if !c.Equal(c.Clone()) {
		t.Error("c.Equal(c.Clone()) = false, want true")
	}
}

func TestChallenge_String(t *testing.T) {
	t.Parallel()

	stale := false
	d, _ := uri.NewAny("http://example.com/protected")
	ch := header.Challenge{
		Scheme:    "Digest",
		Realm:     "atlanta.com",
		Domain:    []uri.URI{d},
		Nonce:     "84a4cc6f3082121f32b42a2187831a9e",
		Stale:     &stale,
		Algorithm: "MD5",
		QOP:       []string{"auth", "auth-int"},
	}
	want := `Digest realm="atlanta.com", domain="http://example.com/protected", ` +
		`nonce="84a4cc6f3082121f32b42a2187831a9e", stale=false, algorithm=MD5, qop="auth,auth-int"`
	if got := ch.String(); got != want {
		t.Errorf("ch.String() = %q, want %q", got, want)
	}
	if !ch.IsDigest() || !ch.HasQOP("AUTH") {
		t.Error("digest challenge flags mismatch")
	}

	clone := ch.Clone()
	*clone.Stale = true
	if *ch.Stale {
		t.Error("clone modification leaked into the original challenge")
	}
}
