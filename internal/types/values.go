// Package types contains the parameter map shared by URI and header values.
package types

import (
	"slices"

	"github.com/ghettovoice/sipabnf/internal/util"
)

// Values maps a string key to a list of string values.
// The keys in the map are case-insensitive.
// It is typically used to store URI's or header's parameters.
// A parameter present without a value is stored as an empty string.
type Values map[string][]string

// Get returns values associated with the given key.
// If there are no values associated with the key, Get returns the empty slice.
func (vals Values) Get(key string) []string { return vals[util.LCase(key)] }

func (vals Values) First(key string) (string, bool) {
	v := vals[util.LCase(key)]
	if len(v) == 0 {
		return "", false
	}
	return v[0], true
}

func (vals Values) Last(key string) (string, bool) {
	v := vals[util.LCase(key)]
	if len(v) == 0 {
		return "", false
	}
	return v[len(v)-1], true
}

// Set sets the key to value. It replaces any existing values.
func (vals Values) Set(key, value string) Values {
	vals[util.LCase(key)] = []string{value}
	return vals
}

func (vals Values) Append(key, value string) Values {
	key = util.LCase(key)
	vals[key] = append(vals[key], value)
	return vals
}

// Del deletes the values associated with the key.
func (vals Values) Del(key string) Values {
	delete(vals, util.LCase(key))
	return vals
}

// Has checks whether a given key is in the list.
func (vals Values) Has(key string) bool {
	_, ok := vals[util.LCase(key)]
	return ok
}

// Keys returns the keys sorted in alphabet order.
func (vals Values) Keys() []string {
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Clone returns a copy of the map.
func (vals Values) Clone() Values {
	var vals2 Values
	for k, vs := range vals {
		if vals2 == nil {
			vals2 = make(Values, len(vals))
		}
		vals2[k] = slices.Clone(vs)
	}
	return vals2
}

// Equal reports whether both maps hold the same keys with the same value lists.
// Nil and empty maps are equal.
func (vals Values) Equal(other Values) bool {
	if len(vals) != len(other) {
		return false
	}
	for k, vs := range vals {
		if !slices.Equal(vs, other[k]) {
			return false
		}
	}
	return true
}
