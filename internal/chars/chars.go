// Package chars holds the RFC 3261 character classes shared by the grammar rules,
// the value validators and the renderers.
package chars

import "strings"

func IsDigit(r rune) bool { return '0' <= r && r <= '9' }

func IsAlpha(r rune) bool { return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' }

func IsHexDigit(r rune) bool {
	return IsDigit(r) || 'a' <= r && r <= 'f' || 'A' <= r && r <= 'F'
}

func IsAlphanum(r rune) bool { return IsAlpha(r) || IsDigit(r) }

// IsWSP checks SP / HTAB.
func IsWSP(r rune) bool { return r == ' ' || r == '\t' }

// IsUTF8NonASCII checks any non US-ASCII character.
func IsUTF8NonASCII(r rune) bool { return r >= 0x80 }

func in(r rune, set string) bool { return r < 0x80 && strings.ContainsRune(set, r) }

// IsMark checks mark rule.
func IsMark(r rune) bool { return in(r, "-_.!~*'()") }

// IsUnreserved checks unreserved rule.
func IsUnreserved(r rune) bool { return IsAlphanum(r) || IsMark(r) }

// IsReserved checks reserved rule.
func IsReserved(r rune) bool { return in(r, ";/?:@&=+$,") }

// IsTokenChar checks a single character of the token rule.
func IsTokenChar(r rune) bool { return IsAlphanum(r) || in(r, "-.!%*_+`'~") }

// IsTokenNoDotChar is [IsTokenChar] without the dot.
func IsTokenNoDotChar(r rune) bool { return r != '.' && IsTokenChar(r) }

// IsWordChar checks a single character of the word rule.
func IsWordChar(r rune) bool { return IsAlphanum(r) || in(r, "-.!%*_+`'~()<>:\\\"/[]?{}") }

// IsSeparator checks separators rule.
func IsSeparator(r rune) bool { return in(r, "()<>@,;:\\\"/[]?={} \t") }

// IsUserUnreserved checks user-unreserved rule.
func IsUserUnreserved(r rune) bool { return in(r, "&=+$,;?/") }

// IsPasswdChar checks password characters excluding escapes.
func IsPasswdChar(r rune) bool { return IsUnreserved(r) || in(r, "&=+$,") }

// IsParamUnreserved checks param-unreserved rule.
func IsParamUnreserved(r rune) bool { return in(r, "[]/:&+$") }

// IsHnvUnreserved checks hnv-unreserved rule.
func IsHnvUnreserved(r rune) bool { return in(r, "[]/?:+$") }

// IsQdtext checks qdtext characters except LWS.
func IsQdtext(r rune) bool {
	return r == 0x21 || 0x23 <= r && r <= 0x5B || 0x5D <= r && r <= 0x7E || IsUTF8NonASCII(r)
}

// IsCtext checks ctext characters except LWS.
func IsCtext(r rune) bool {
	return 0x21 <= r && r <= 0x27 || 0x2A <= r && r <= 0x5B || 0x5D <= r && r <= 0x7E || IsUTF8NonASCII(r)
}

// IsQuotedPairChar checks the character allowed after a backslash in quoted-pair.
func IsQuotedPairChar(r rune) bool {
	return 0x00 <= r && r <= 0x09 || 0x0B <= r && r <= 0x0C || 0x0E <= r && r <= 0x7F
}

// IsTextUTF8Char checks TEXT-UTF8char rule.
func IsTextUTF8Char(r rune) bool { return 0x21 <= r && r <= 0x7E || IsUTF8NonASCII(r) }

// IsToken reports whether s is a non-empty token.
func IsToken[T ~string](s T) bool { return len(s) > 0 && all(string(s), IsTokenChar) }

func all(s string, fn func(r rune) bool) bool {
	for _, r := range s {
		if !fn(r) {
			return false
		}
	}
	return true
}
