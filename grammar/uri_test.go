package grammar_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ghettovoice/sipabnf/grammar"
	"github.com/ghettovoice/sipabnf/uri"
)

func TestParseSIPURI(t *testing.T) {
	t.Parallel()

	type want struct {
		scheme  string
		user    string
		passwd  string
		hasPass bool
		host    string
		kind    uri.HostKind
		port    uint16
		hasPort bool
		params  uri.Values
		headers uri.Values
	}

	cases := []struct {
		name string
		in   string
		want want
	}{
		{
			"sip user at domain",
			"sip:alice@atlanta.com",
			want{scheme: "sip", user: "alice", host: "atlanta.com", kind: uri.HostDomain},
		},
		{
			"sips with password ipv4 and port",
			"sips:bob:secret@192.0.2.4:5061",
			want{
				scheme: "sips", user: "bob", passwd: "secret", hasPass: true,
				host: "192.0.2.4", kind: uri.HostIPv4, port: 5061, hasPort: true,
			},
		},
		{
			"ipv6 reference",
			"sip:[2001:db8::1]:5060;lr;transport=TCP",
			want{
				scheme: "sip", host: "[2001:db8::1]", kind: uri.HostIPv6, port: 5060, hasPort: true,
				params: make(uri.Values).Append("lr", "").Append("transport", "tcp"),
			},
		},
		{
			"telephone user",
			"sip:+1-212-555-1212:1234@gateway.com;user=phone",
			want{
				scheme: "sip", user: "+1-212-555-1212", passwd: "1234", hasPass: true,
				host: "gateway.com", kind: uri.HostDomain,
				params: make(uri.Values).Append("user", "phone"),
			},
		},
		{
			"user with semicolon",
			"sip:alice;day=tuesday@atlanta.com",
			want{scheme: "sip", user: "alice;day=tuesday", host: "atlanta.com", kind: uri.HostDomain},
		},
		{
			"escaped user and params",
			"SIP:%61lice@atlanta.com;x%2Dy=a%20b;maddr=239.255.255.1;ttl=15",
			want{
				scheme: "sip", user: "alice", host: "atlanta.com", kind: uri.HostDomain,
				params: make(uri.Values).Append("x%2Dy", "a%20b").Append("maddr", "239.255.255.1").Append("ttl", "15"),
			},
		},
		{
			"method and headers",
			"sip:atlanta.com;method=REGISTER?to=alice%40atlanta.com&priority=urgent",
			want{
				scheme: "sip", host: "atlanta.com", kind: uri.HostDomain,
				params:  make(uri.Values).Append("method", "REGISTER"),
				headers: make(uri.Values).Append("to", "alice%40atlanta.com").Append("priority", "urgent"),
			},
		},
		{
			"escaped delimiters in params and headers",
			"sip:alice@atlanta.com;foo=a%3Bb?subject=x%26y",
			want{
				scheme: "sip", user: "alice", host: "atlanta.com", kind: uri.HostDomain,
				params:  make(uri.Values).Append("foo", "a%3Bb"),
				headers: make(uri.Values).Append("subject", "x%26y"),
			},
		},
		{
			"fqdn with trailing dot",
			"sip:biloxi.com.",
			want{scheme: "sip", host: "biloxi.com.", kind: uri.HostDomain},
		},
		{
			"lr prefix is a generic param",
			"sip:p1.example.com;lrx",
			want{
				scheme: "sip", host: "p1.example.com", kind: uri.HostDomain,
				params: make(uri.Values).Append("lrx", ""),
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			u, err := grammar.ParseSIPURI(c.in)
			if err != nil {
				t.Fatalf("grammar.ParseSIPURI(%q) error = %v, want nil", c.in, err)
			}

			port, hasPort := u.Addr.Port()
			passwd, hasPass := u.User.Password()
			got := want{
				scheme:  uri.GetScheme(u),
				user:    u.User.Username(),
				passwd:  passwd,
				hasPass: hasPass,
				host:    u.Addr.Host(),
				kind:    u.Addr.Kind(),
				port:    port,
				hasPort: hasPort,
				params:  u.Params,
				headers: u.Headers,
			}
			if diff := cmp.Diff(got, c.want, cmp.AllowUnexported(want{}), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("grammar.ParseSIPURI(%q) = %+v, want %+v\ndiff (-got +want):\n%v", c.in, got, c.want, diff)
			}
		})
	}
}

func TestParseSIPURI_RoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"sip:alice@atlanta.com",
		"sips:bob:secret@192.0.2.4:5061",
		"sip:+1-212-555-1212:1234@gateway.com;user=phone",
		"sip:alice;day=tuesday@atlanta.com",
		"sip:atlanta.com;method=REGISTER?to=alice%40atlanta.com",
		"sip:[2001:db8::1]:5060;lr;transport=tcp",
		"sip:%61lice@atlanta.com;x=a%20b",
		"sip:alice@atlanta.com;foo=a%3Bb?subject=x%26y",
		"sip:alice@atlanta.com;foo=100%25",
		"sip:carol@chicago.com;newparam=5;security=on?subject=project%20x&priority=urgent",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			t.Parallel()

			u1, err := grammar.ParseSIPURI(in)
			if err != nil {
				t.Fatalf("grammar.ParseSIPURI(%q) error = %v, want nil", in, err)
			}
			s := u1.String()
			u2, err := grammar.ParseSIPURI(s)
			if err != nil {
				t.Fatalf("grammar.ParseSIPURI(%q) error = %v, want nil", s, err)
			}
			if diff := cmp.Diff(u2, u1); diff != "" {
				t.Errorf("grammar.ParseSIPURI(%q) = %v, want %v\ndiff (-got +want):\n%v", s, u2, u1, diff)
			}
			if diff := cmp.Diff(u2.Params, u1.Params, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("params differ after round trip\ndiff (-got +want):\n%v", diff)
			}
			if diff := cmp.Diff(u2.Headers, u1.Headers, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("headers differ after round trip\ndiff (-got +want):\n%v", diff)
			}
			if got := u2.String(); got != s {
				t.Errorf("u.String() = %q, want %q", got, s)
			}
		})
	}
}

func TestParse_Host(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in       string
		wantKind uri.HostKind
	}{
		{"[2001:db8::1]", uri.HostIPv6},
		{"192.0.2.255", uri.HostIPv4},
		{"atlanta.com", uri.HostDomain},
		{"a-b_c.example", uri.HostDomain},
		{"192.0.2.256.example", uri.HostDomain},
	}

	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			t.Parallel()

			got, err := grammar.ParseAs[string](c.in, grammar.RuleHost)
			if err != nil {
				t.Fatalf("grammar.Parse(%q, host) error = %v, want nil", c.in, err)
			}
			if got != c.in {
				t.Errorf("grammar.Parse(%q, host) = %q, want %q", c.in, got, c.in)
			}
			if kind := uri.DetectHostKind(got); kind != c.wantKind {
				t.Errorf("uri.DetectHostKind(%q) = %v, want %v", got, kind, c.wantKind)
			}
		})
	}
}

func TestParse_IPv6Address(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in string
		ok bool
	}{
		{"::", true},
		{"::1", true},
		{"2001:db8::", true},
		{"fe80::1", true},
		{"1:2:3:4:5:6:7:8", true},
		{"1::2:3:4:5:6:7", true},
		{"::ffff:192.0.2.128", true},
		{"1:2:3:4:5:6:192.0.2.1", true},
		{"1:2:3:4:5:6:7:8:9", false},
		{"12345::", false},
		{":::", false},
		{"1:2", false},
	}

	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			t.Parallel()

			got, err := grammar.Parse(c.in, grammar.RuleIPv6Address)
			if c.ok {
				if err != nil {
					t.Fatalf("grammar.Parse(%q, IPv6address) error = %v, want nil", c.in, err)
				}
				if got != c.in {
					t.Errorf("grammar.Parse(%q, IPv6address) = %v, want %q", c.in, got, c.in)
				}
				return
			}
			if err == nil {
				t.Errorf("grammar.Parse(%q, IPv6address) = %v, want error", c.in, got)
			}
		})
	}
}

func TestParse_IPv4Address(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"0.0.0.0", "192.0.2.1", "255.255.255.255", "10.200.249.9"} {
		if got, err := grammar.Parse(in, grammar.RuleIPv4Address); err != nil || got != in {
			t.Errorf("grammar.Parse(%q, IPv4address) = %v, %v, want %q, nil", in, got, err, in)
		}
	}
	for _, in := range []string{"256.0.0.1", "1.2.3", "1.2.3.4.5", "01.2.3.4a"} {
		if got, err := grammar.Parse(in, grammar.RuleIPv4Address); err == nil {
			t.Errorf("grammar.Parse(%q, IPv4address) = %v, want error", in, got)
		}
	}
}

func TestParseRequestURI(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want uri.URI
	}{
		{"sip:bob@biloxi.com", &uri.SIP{User: uri.User("bob"), Addr: uri.Host("biloxi.com")}},
		{"tel:+1-201-555-0123", mustAny(t, "tel:+1-201-555-0123")},
		{"http://www.example.com/path?x=1", mustAny(t, "http://www.example.com/path?x=1")},
		{"im:alice@atlanta.com", mustAny(t, "im:alice@atlanta.com")},
	}

	for _, c := range cases {
		got, err := grammar.ParseRequestURI(c.in)
		if err != nil {
			t.Errorf("grammar.ParseRequestURI(%q) error = %v, want nil", c.in, err)
			continue
		}
		if diff := cmp.Diff(got, c.want); diff != "" {
			t.Errorf("grammar.ParseRequestURI(%q) = %v, want %v\ndiff (-got +want):\n%v", c.in, got, c.want, diff)
		}
	}
}

func TestParseNameAddr(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		in          string
		wantDisplay string
		wantURI     uri.URI
		wantString  string
	}{
		{
			"quoted display name",
			`"Bob \"the builder\"" <sip:bob@biloxi.com>;tag=a6c85cf`,
			`Bob "the builder"`,
			&uri.SIP{User: uri.User("bob"), Addr: uri.Host("biloxi.com")},
			`"Bob \"the builder\"" <sip:bob@biloxi.com>;tag=a6c85cf`,
		},
		{
			"token display name",
			"Alice Liddell <sips:alice@atlanta.com>",
			"Alice Liddell",
			&uri.SIP{Secured: true, User: uri.User("alice"), Addr: uri.Host("atlanta.com")},
			`"Alice Liddell" <sips:alice@atlanta.com>`,
		},
		{
			"token display name with folded whitespace",
			"Bob \t Smith\r\n  Jr <sip:bob@biloxi.com>",
			"Bob Smith Jr",
			&uri.SIP{User: uri.User("bob"), Addr: uri.Host("biloxi.com")},
			`"Bob Smith Jr" <sip:bob@biloxi.com>`,
		},
		{
			"no display name",
			"<sip:alice@atlanta.com;transport=udp>",
			"",
			&uri.SIP{User: uri.User("alice"), Addr: uri.Host("atlanta.com"), Params: make(uri.Values).Append("transport", "udp")},
			"<sip:alice@atlanta.com;transport=udp>",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			got, err := grammar.ParseNameAddr(c.in)
			if err != nil {
				t.Fatalf("grammar.ParseNameAddr(%q) error = %v, want nil", c.in, err)
			}
			if got.DisplayName != c.wantDisplay {
				t.Errorf("addr.DisplayName = %q, want %q", got.DisplayName, c.wantDisplay)
			}
			if diff := cmp.Diff(got.URI, c.wantURI); diff != "" {
				t.Errorf("addr.URI = %v, want %v\ndiff (-got +want):\n%v", got.URI, c.wantURI, diff)
			}
			if s := got.String(); s != c.wantString {
				t.Errorf("addr.String() = %q, want %q", s, c.wantString)
			}
		})
	}
}

func TestParse_QuotedStringClean(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{`"a\"b"`, `a"b`},
		{`""`, ""},
		{`"plain text"`, "plain text"},
		{`"back\\slash"`, `back\slash`},
	}

	for _, c := range cases {
		got, err := grammar.ParseAs[string](c.in, grammar.RuleQuotedStringClean)
		if err != nil {
			t.Errorf("grammar.Parse(%q, quoted_string_clean) error = %v, want nil", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("grammar.Parse(%q, quoted_string_clean) = %q, want %q", c.in, got, c.want)
		}
	}

	if got, err := grammar.ParseAs[string](`"a\"b"`, grammar.RuleQuotedString); err != nil || got != `"a\"b"` {
		t.Errorf("grammar.Parse(quoted_string) = %q, %v, want %q, nil", got, err, `"a\"b"`)
	}
}
