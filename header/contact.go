package header

import (
	"io"
	"slices"

	"braces.dev/errtrace"
)

// Contact represents the Contact header field value.
// Either Wildcard is set ("*") or Addrs holds at least one instance.
type Contact struct {
	Wildcard bool
	Addrs    []NameAddr
}

// String returns the string representation of the header value.
func (hdr Contact) String() string {
	if hdr.Wildcard {
		return "*"
	}
	return stringOf(func(w io.Writer) (int, error) { return errtrace.Wrap2(renderHdrEntries(w, hdr.Addrs)) })
}

// Clone returns a copy of the header.
func (hdr Contact) Clone() Contact {
	hdr.Addrs = cloneHdrEntries(hdr.Addrs)
	return hdr
}

// Equal compares this header with another for equality.
func (hdr Contact) Equal(val any) bool {
	var other Contact
	switch v := val.(type) {
	case Contact:
		other = v
	case *Contact:
		if v == nil {
			return false
		}
		other = *v
	default:
		return false
	}
	return hdr.Wildcard == other.Wildcard && equalAddrs(hdr.Addrs, other.Addrs)
}

// IsValid checks whether the header is syntactically valid.
func (hdr Contact) IsValid() bool {
	if hdr.Wildcard {
		return len(hdr.Addrs) == 0
	}
	return validAddrs(hdr.Addrs)
}

// Route represents the Route header field value.
type Route []NameAddr

func (hdr Route) String() string {
	return stringOf(func(w io.Writer) (int, error) { return errtrace.Wrap2(renderHdrEntries(w, hdr)) })
}

func (hdr Route) Clone() Route { return cloneHdrEntries(hdr) }

func (hdr Route) Equal(val any) bool {
	switch v := val.(type) {
	case Route:
		return equalAddrs(hdr, v)
	case *Route:
		return v != nil && equalAddrs(hdr, *v)
	default:
		return false
	}
}

func (hdr Route) IsValid() bool { return validAddrs(hdr) }

// RecordRoute represents the Record-Route header field value.
type RecordRoute []NameAddr

func (hdr RecordRoute) String() string {
	return stringOf(func(w io.Writer) (int, error) { return errtrace.Wrap2(renderHdrEntries(w, hdr)) })
}

func (hdr RecordRoute) Clone() RecordRoute { return cloneHdrEntries(hdr) }

func (hdr RecordRoute) Equal(val any) bool {
	switch v := val.(type) {
	case RecordRoute:
		return equalAddrs(hdr, v)
	case *RecordRoute:
		return v != nil && equalAddrs(hdr, *v)
	default:
		return false
	}
}

func (hdr RecordRoute) IsValid() bool { return validAddrs(hdr) }

func equalAddrs(addrs1, addrs2 []NameAddr) bool {
	return slices.EqualFunc(addrs1, addrs2, func(a1, a2 NameAddr) bool { return a1.Equal(a2) })
}

func validAddrs(addrs []NameAddr) bool {
	return len(addrs) > 0 && !slices.ContainsFunc(addrs, func(a NameAddr) bool { return !a.IsValid() })
}
