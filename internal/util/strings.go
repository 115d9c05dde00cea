// Package util provides small string helpers shared across packages.
package util

import (
	"strings"
	"sync"
)

// UCase upper-cases ASCII letters of s, other characters are kept.
func UCase[T ~string](s T) T {
	return T(strings.Map(func(r rune) rune {
		if 'a' <= r && r <= 'z' {
			return r - 'a' + 'A'
		}
		return r
	}, string(s)))
}

// LCase lower-cases ASCII letters of s, other characters are kept.
func LCase[T ~string](s T) T {
	return T(strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r - 'A' + 'a'
		}
		return r
	}, string(s)))
}

func TrimSP[T ~string](s T) T { return T(strings.TrimSpace(string(s))) }

// EqFold reports whether s1 and s2 are equal under ASCII case folding.
func EqFold[T1, T2 ~string](s1 T1, s2 T2) bool {
	return len(s1) == len(s2) && LCase(string(s1)) == LCase(string(s2))
}

var strBldrPool = &sync.Pool{
	New: func() any {
		sb := new(strings.Builder)
		sb.Grow(256)
		return sb
	},
}

func GetStringBuilder() *strings.Builder {
	return strBldrPool.Get().(*strings.Builder) //nolint:forcetypeassert
}

func FreeStringBuilder(sb *strings.Builder) {
	sb.Reset()
	strBldrPool.Put(sb)
}
