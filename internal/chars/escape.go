package chars

import (
	"bytes"
	"unicode/utf8"

	"github.com/ghettovoice/sipabnf/internal/constraints"
)

// Unescape unescapes s by converting each 3-byte encoded substring of the form "% HEXDIG HEXDIG" into the hex-decoded byte.
func Unescape[T constraints.Byteseq](s T) T {
	if len(s) == 0 || bytes.IndexByte([]byte(s), '%') < 0 {
		return s
	}

	var b bytes.Buffer
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && ishex(s[i+1]) && ishex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		} else {
			b.WriteByte(s[i])
		}
	}
	return T(b.Bytes())
}

// Escape escapes s by replacing each char matched by shouldEscape callback to the hex form "% HEXDIG HEXDIG".
// The percent sign is always escaped, s is expected to hold decoded text.
func Escape[T constraints.Byteseq](s T, shouldEscape func(c byte) bool) T {
	return escape(s, shouldEscape, false)
}

// EscapeEncoded is like Escape but keeps each valid "% HEXDIG HEXDIG" triplet of s as is.
// A percent sign that does not start a triplet is escaped.
func EscapeEncoded[T constraints.Byteseq](s T, shouldEscape func(c byte) bool) T {
	return escape(s, shouldEscape, true)
}

func escape[T constraints.Byteseq](s T, shouldEscape func(c byte) bool, keepEncoded bool) T {
	if len(s) == 0 {
		return s
	}

	if shouldEscape == nil {
		shouldEscape = func(c byte) bool { return c >= utf8.RuneSelf || !IsUnreserved(rune(c)) }
	}

	var b bytes.Buffer
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '%' && keepEncoded && i+2 < len(s) && ishex(s[i+1]) && ishex(s[i+2]):
			b.WriteByte(s[i])
			b.WriteByte(s[i+1])
			b.WriteByte(s[i+2])
			i += 2
		case s[i] == '%' || shouldEscape(s[i]):
			b.WriteByte('%')
			b.WriteByte(upperhex[s[i]>>4])
			b.WriteByte(upperhex[s[i]&15])
		default:
			b.WriteByte(s[i])
		}
	}
	return T(b.Bytes())
}

// Quote renders s as a quoted-string, escaping double quotes and backslashes.
func Quote(s string) string {
	var b bytes.Buffer
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

// Unquote strips surrounding double quotes and removes quoted-pair backslashes.
// Strings that are not quoted are returned as is.
func Unquote(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	return UnescapePairs(s[1 : len(s)-1])
}

// UnescapePairs removes the backslash of each quoted-pair in s.
func UnescapePairs(s string) string {
	if bytes.IndexByte([]byte(s), '\\') < 0 {
		return s
	}

	var b bytes.Buffer
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

const upperhex = "0123456789ABCDEF"

func ishex(c byte) bool { return IsHexDigit(rune(c)) }

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}
