package uri

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/miekg/dns"

	"github.com/ghettovoice/sipabnf/internal/util"
)

// HostKind tags the form of a host.
type HostKind uint8

const (
	HostDomain HostKind = iota
	HostIPv4
	HostIPv6
)

func (k HostKind) String() string {
	switch k {
	case HostDomain:
		return "domain"
	case HostIPv4:
		return "IPv4"
	case HostIPv6:
		return "IPv6"
	default:
		return "HostKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (k HostKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Addr is a container for host and optional port.
// IPv6 hosts are kept in the reference form with brackets.
type Addr struct {
	host    string
	kind    HostKind
	port    uint16
	hasPort bool
}

// Host returns an [Addr] containing the provided host and no port.
// The host kind is detected from the host form.
func Host(host string) Addr {
	return Addr{host: host, kind: DetectHostKind(host)}
}

// HostPort returns an [Addr] containing the provided host and port.
func HostPort(host string, port uint16) Addr {
	return Addr{host: host, kind: DetectHostKind(host), port: port, hasPort: true}
}

// DetectHostKind returns the kind of the host by its form.
func DetectHostKind(host string) HostKind {
	if strings.HasPrefix(host, "[") {
		return HostIPv6
	}
	if ip, err := netip.ParseAddr(host); err == nil {
		if ip.Is4() {
			return HostIPv4
		}
		return HostIPv6
	}
	return HostDomain
}

// Host returns the host as it was matched, IPv6 hosts include brackets.
func (addr Addr) Host() string { return addr.host }

// Kind returns the host kind.
func (addr Addr) Kind() HostKind { return addr.kind }

// IP returns the IP address when the host is an IP literal.
func (addr Addr) IP() (netip.Addr, bool) {
	if addr.kind == HostDomain {
		return netip.Addr{}, false
	}
	ip, err := netip.ParseAddr(strings.Trim(addr.host, "[]"))
	return ip, err == nil
}

// Port returns the port, in case it is set, and bool flag indicating whether it is set.
func (addr Addr) Port() (uint16, bool) { return addr.port, addr.hasPort }

// String formats the address as host[:port].
func (addr Addr) String() string {
	host := addr.host
	if addr.kind == HostIPv6 && !strings.HasPrefix(host, "[") {
		host = "[" + host + "]"
	}
	if !addr.hasPort {
		return host
	}
	return host + ":" + strconv.Itoa(int(addr.port))
}

// Format implements fmt.Formatter to support custom formatting verbs for Addr values.
func (addr Addr) Format(f fmt.State, verb rune) {
	switch verb {
	case 's':
		fmt.Fprint(f, addr.String())
		return
	case 'q':
		fmt.Fprint(f, strconv.Quote(addr.String()))
		return
	default:
		if !f.Flag('+') && !f.Flag('#') {
			fmt.Fprint(f, addr.String())
			return
		}

		type hideMethods Addr
		type Addr hideMethods
		fmt.Fprintf(f, fmt.FormatString(f, verb), Addr(addr))
		return
	}
}

// Clone returns a copy of the address.
func (addr Addr) Clone() Addr { return addr }

// Equal reports whether the address equals the provided value, accepting Addr and *Addr.
// Domain names are compared case-insensitively, IP literals by their numeric value.
func (addr Addr) Equal(val any) bool {
	var other Addr
	switch v := val.(type) {
	case Addr:
		other = v
	case *Addr:
		if v == nil {
			return false
		}
		other = *v
	default:
		return false
	}

	if addr.kind != other.kind || addr.port != other.port || addr.hasPort != other.hasPort {
		return false
	}
	if addr.kind == HostDomain {
		return util.EqFold(addr.host, other.host)
	}
	ip1, ok1 := addr.IP()
	ip2, ok2 := other.IP()
	return ok1 && ok2 && ip1 == ip2
}

// IsValid reports whether the host is a valid domain name or IP literal of its kind.
func (addr Addr) IsValid() bool { return validateHost(addr.host, addr.kind) == nil }

// IsZero reports whether the address has zero host and port information.
func (addr Addr) IsZero() bool { return addr.host == "" && !addr.hasPort }

// MarshalText encodes the address into its textual representation.
func (addr Addr) MarshalText() ([]byte, error) {
	return []byte(addr.String()), nil
}

func validateHost(host string, kind HostKind) error {
	if host == "" {
		return errEmptyHost
	}
	switch kind {
	case HostDomain:
		if _, ok := dns.IsDomainName(host); !ok {
			return newInvalidHostErr(host, kind)
		}
	case HostIPv4:
		if ip, err := netip.ParseAddr(host); err != nil || !ip.Is4() {
			return newInvalidHostErr(host, kind)
		}
	case HostIPv6:
		if ip, err := netip.ParseAddr(strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")); err != nil || !ip.Is6() {
			return newInvalidHostErr(host, kind)
		}
	default:
		return newInvalidHostErr(host, kind)
	}
	return nil
}
