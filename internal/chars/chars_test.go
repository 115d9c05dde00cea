package chars_test

import (
	"testing"

	"github.com/ghettovoice/sipabnf/internal/chars"
)

func TestEscape(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		fn   func(c byte) bool
		want string
	}{
		{"empty", "", nil, ""},
		{"unreserved", "abc-qwe!", nil, "abc-qwe!"},
		{"reserved", "abc++qwe!", nil, "abc%2B%2Bqwe!"},
		{"custom", "abc++qwe!", func(c byte) bool { return c != '+' && !chars.IsUnreserved(rune(c)) }, "abc++qwe!"},
		{"percent", "a%20b c", nil, "a%2520b%20c"},
		{"non ascii", "世", nil, "%E4%B8%96"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			if got := chars.Escape(c.in, c.fn); got != c.want {
				t.Errorf("chars.Escape(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestEscapeEncoded(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"escaped", "a%3Bb%3b", "a%3Bb%3b"},
		{"lone percent", "100%", "100%25"},
		{"broken triplet", "%4g%", "%254g%25"},
		{"mixed", "a%20b c;", "a%20b%20c%3B"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			if got := chars.EscapeEncoded(c.in, nil); got != c.want {
				t.Errorf("chars.EscapeEncoded(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestUnescape(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"abc", "abc"},
		{"abc%%", "abc%%"},
		{"abc%ax", "abc%ax"},
		{"abc%4", "abc%4"},
		{"abc%E4%b8%96", "abc世"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			t.Parallel()

			if got := chars.Unescape(c.in); got != c.want {
				t.Errorf("chars.Unescape(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestQuote(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"", `""`},
		{"Alice", `"Alice"`},
		{`a"b\c`, `"a\"b\\c"`},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			t.Parallel()

			got := chars.Quote(c.in)
			if got != c.want {
				t.Errorf("chars.Quote(%q) = %q, want %q", c.in, got, c.want)
			}
			if back := chars.Unquote(got); back != c.in {
				t.Errorf("chars.Unquote(%q) = %q, want %q", got, back, c.in)
			}
		})
	}
}

func TestIsToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"tag", true},
		{"z9hG4bK-776.a~b", true},
		{"a b", false},
		{"a=b", false},
		{"a\"", false},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			t.Parallel()

			if got := chars.IsToken(c.in); got != c.want {
				t.Errorf("chars.IsToken(%q) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}
