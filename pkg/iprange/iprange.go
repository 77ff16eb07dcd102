// pkg/iprange/iprange.go
// Target address expansion on net/netip

package iprange

import (
	"fmt"
	"net/netip"
	"strings"
)

// Parse parses one target spec, either a CIDR block ("10.0.0.0/24") or a
// bare address ("10.0.0.1" becomes a /32, IPv6 a /128). Host bits are
// cleared.
func Parse(spec string) (netip.Prefix, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return netip.Prefix{}, fmt.Errorf("empty target spec")
	}

	prefix, err := netip.ParsePrefix(spec)
	if err != nil {
		addr, addrErr := netip.ParseAddr(spec)
		if addrErr != nil {
			return netip.Prefix{}, fmt.Errorf("invalid CIDR or IP %q: %w", spec, err)
		}
		bits := 32
		if addr.Is6() {
			bits = 128
		}
		prefix = netip.PrefixFrom(addr, bits)
	}
	return prefix.Masked(), nil
}

// ParseAll parses a list of target specs. Empty entries are skipped; an
// empty result is an error.
func ParseAll(specs []string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, spec := range specs {
		if strings.TrimSpace(spec) == "" {
			continue
		}
		p, err := Parse(spec)
		if err != nil {
			return nil, err
		}
		prefixes = append(prefixes, p)
	}
	if len(prefixes) == 0 {
		return nil, fmt.Errorf("no valid targets provided")
	}
	return prefixes, nil
}

// Expand resolves target specs into concrete address strings. For IPv4
// prefixes wider than /31 the network and broadcast addresses are skipped,
// so a /24 yields 254 hosts and a /32 yields exactly one.
func Expand(specs []string) ([]string, error) {
	prefixes, err := ParseAll(specs)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, prefix := range prefixes {
		for addr := prefix.Addr(); addr.IsValid() && prefix.Contains(addr); addr = addr.Next() {
			if skipNonHost(prefix, addr) {
				continue
			}
			out = append(out, addr.String())
		}
	}
	return out, nil
}

// Count returns the number of host addresses Expand would yield, without
// materializing them. Used for safety limits before a scan starts.
func Count(specs []string) (uint64, error) {
	prefixes, err := ParseAll(specs)
	if err != nil {
		return 0, err
	}

	var total uint64
	for _, prefix := range prefixes {
		bits := prefix.Bits()
		if prefix.Addr().Is4() {
			hostBits := uint(32 - bits)
			n := uint64(1) << hostBits
			if bits < 31 {
				n -= 2 // network and broadcast
			}
			total += n
		} else {
			hostBits := 128 - bits
			if hostBits > 60 {
				total += uint64(1) << 60 // cap to keep the count meaningful
			} else {
				total += uint64(1) << uint(hostBits)
			}
		}
	}
	return total, nil
}

// skipNonHost reports whether addr is the IPv4 network or broadcast address
// of prefix. /31 and /32 have no such addresses.
func skipNonHost(prefix netip.Prefix, addr netip.Addr) bool {
	if !addr.Is4() || prefix.Bits() >= 31 {
		return false
	}
	if addr == prefix.Addr() {
		return true
	}
	return !prefix.Contains(addr.Next())
}
