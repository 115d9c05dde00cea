package header

import (
	"fmt"
	"io"
	"net/netip"
	"slices"
	"strconv"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipabnf/internal/ioutil"
	"github.com/ghettovoice/sipabnf/internal/util"
	"github.com/ghettovoice/sipabnf/uri"
)

// Via represents the Via header field.
// The Via header field indicates the transport used for the transaction and identifies the location
// where the response is to be sent.
type Via []ViaHop

// String returns the string representation of the header value.
func (hdr Via) String() string {
	return stringOf(func(w io.Writer) (int, error) { return errtrace.Wrap2(renderHdrEntries(w, hdr)) })
}

// Clone returns a copy of the header.
func (hdr Via) Clone() Via { return cloneHdrEntries(hdr) }

// Equal compares this header with another for equality.
func (hdr Via) Equal(val any) bool {
	var other Via
	switch v := val.(type) {
	case Via:
		other = v
	case *Via:
		if v == nil {
			return false
		}
		other = *v
	default:
		return false
	}
	return slices.EqualFunc(hdr, other, func(hop1, hop2 ViaHop) bool { return hop1.Equal(hop2) })
}

// IsValid checks whether the header is syntactically valid.
func (hdr Via) IsValid() bool {
	return len(hdr) > 0 && !slices.ContainsFunc(hdr, func(hop ViaHop) bool { return !hop.IsValid() })
}

// ViaHop represents a single hop in the Via header.
// Proto and Version are the protocol name and version ("SIP", "2.0"),
// Transport is upper-cased as it is case-insensitive.
type ViaHop struct {
	Proto     string
	Version   string
	Transport string
	Addr      uri.Addr
	Params    Values
}

// RenderTo writes the hop to the provided writer.
func (hop ViaHop) RenderTo(w io.Writer) (num int, err error) {
	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	cw.Fprint(hop.Proto, "/", hop.Version, "/", hop.Transport, " ", hop.Addr)
	cw.Call(func(w io.Writer) (int, error) { return errtrace.Wrap2(renderHdrParams(w, hop.Params)) })
	return errtrace.Wrap2(cw.Result())
}

// String returns the string representation of the ViaHop.
func (hop ViaHop) String() string { return stringOf(hop.RenderTo) }

// Format implements fmt.Formatter for custom formatting of the ViaHop.
func (hop ViaHop) Format(f fmt.State, verb rune) {
	switch verb {
	case 's':
		fmt.Fprint(f, hop.String())
		return
	case 'q':
		fmt.Fprint(f, strconv.Quote(hop.String()))
		return
	default:
		if !f.Flag('+') && !f.Flag('#') {
			fmt.Fprint(f, hop.String())
			return
		}

		type hideMethods ViaHop
		type ViaHop hideMethods
		fmt.Fprintf(f, fmt.FormatString(f, verb), ViaHop(hop))
		return
	}
}

// Equal compares this ViaHop with another for equality.
func (hop ViaHop) Equal(val any) bool {
	var other ViaHop
	switch v := val.(type) {
	case ViaHop:
		other = v
	case *ViaHop:
		if v == nil {
			return false
		}
		other = *v
	default:
		return false
	}

	return util.EqFold(hop.Proto, other.Proto) &&
		hop.Version == other.Version &&
		util.EqFold(hop.Transport, other.Transport) &&
		hop.Addr.Equal(other.Addr) &&
		compareHdrParams(hop.Params, other.Params, map[string]bool{
			"maddr":    true,
			"ttl":      true,
			"received": true,
			"rport":    true,
			"branch":   true,
		})
}

// IsValid checks whether the ViaHop is syntactically valid.
func (hop ViaHop) IsValid() bool {
	return hop.Proto != "" &&
		hop.Version != "" &&
		hop.Transport != "" &&
		hop.Addr.IsValid() &&
		validateHdrParams(hop.Params)
}

// Clone returns a copy of the ViaHop.
func (hop ViaHop) Clone() ViaHop {
	hop.Addr = hop.Addr.Clone()
	hop.Params = hop.Params.Clone()
	return hop
}

func (hop ViaHop) MarshalText() ([]byte, error) {
	return []byte(hop.String()), nil
}

func (hop ViaHop) Branch() (string, bool) {
	return hop.Params.Last("branch")
}

var zeroAddr netip.Addr

func (hop ViaHop) Received() (netip.Addr, bool) {
	val, ok := hop.Params.Last("received")
	if !ok {
		return zeroAddr, false
	}
	addr, err := netip.ParseAddr(val)
	if err != nil {
		return zeroAddr, false
	}
	return addr, true
}

// RPort returns the rport parameter value.
// The parameter may be present without a value, then the port is zero and the flag is true.
func (hop ViaHop) RPort() (uint16, bool) {
	val, ok := hop.Params.Last("rport")
	if !ok || val == "" {
		return 0, ok
	}
	port, err := strconv.ParseUint(val, 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(port), true
}

func (hop ViaHop) MAddr() (string, bool) {
	return hop.Params.Last("maddr")
}

func (hop ViaHop) TTL() (uint8, bool) {
	val, ok := hop.Params.Last("ttl")
	if !ok {
		return 0, false
	}
	ttl, err := strconv.ParseUint(val, 10, 8)
	if err != nil {
		return 0, false
	}
	return uint8(ttl), true
}
