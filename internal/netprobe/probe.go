/*
 * MIT License
 *
 * Copyright (c) 2026 Thierry Delhaise
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package netprobe enumerates local network interfaces and classifies
// their addresses per spec.md §4.5.
package netprobe

import (
	"net"
	"sort"
)

// Result is the outcome of one connectivity probe.
type Result struct {
	HasGlobalIPv6 bool
	GlobalIPv6    []string
	IPv4Addresses []IPv4Address
	ProbeError    string
}

// IPv4Address is an additive supplement of SPEC_FULL.md §4.5: IPv4
// addresses are also classified, even though spec.md §4.5 only mandates
// IPv6 global-address detection.
type IPv4Address struct {
	IP    string
	Class IPv4Class
}

// IPv4Class classifies an IPv4 address's reachability, mirroring the
// scope vocabulary used for LocationNodeRecord addresses.
type IPv4Class string

const (
	IPv4Private  IPv4Class = "private"
	IPv4Loopback IPv4Class = "loopback"
	IPv4Public   IPv4Class = "public"
)

// isGlobalIPv6 applies the exact byte-range rules of spec.md §4.5: not
// loopback, not multicast (first byte != 0xFF), not link-local (first
// two bytes not in fe80..febf), not unique-local (first byte not in
// fc..fd).
func isGlobalIPv6(ip net.IP) bool {
	ip16 := ip.To16()
	if ip16 == nil || ip.To4() != nil {
		return false
	}
	if ip16.IsLoopback() {
		return false
	}
	if ip16[0] == 0xFF {
		return false
	}
	if ip16[0] == 0xFE && ip16[1] >= 0x80 && ip16[1] <= 0xBF {
		return false
	}
	if ip16[0] == 0xFC || ip16[0] == 0xFD {
		return false
	}
	return true
}

func classifyIPv4(ip net.IP) IPv4Class {
	if ip.IsLoopback() {
		return IPv4Loopback
	}
	if ip.IsPrivate() || ip.IsLinkLocalUnicast() {
		return IPv4Private
	}
	return IPv4Public
}

// Probe enumerates every non-loopback, up interface and returns the
// deduplicated, sorted set of global IPv6 addresses (spec.md §4.5) plus
// the additive IPv4 classification of SPEC_FULL.md §4.5. A per-interface
// enumeration failure is recorded in ProbeError but does not abort the
// scan of the remaining interfaces.
func Probe() Result {
	var res Result
	seen6 := map[string]struct{}{}
	seen4 := map[string]struct{}{}

	ifaces, err := net.Interfaces()
	if err != nil {
		res.ProbeError = err.Error()
		return res
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, aErr := iface.Addrs()
		if aErr != nil {
			if res.ProbeError == "" {
				res.ProbeError = aErr.Error()
			}
			continue
		}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			ip := ipNet.IP
			if v4 := ip.To4(); v4 != nil {
				s := v4.String()
				if _, dup := seen4[s]; dup {
					continue
				}
				seen4[s] = struct{}{}
				res.IPv4Addresses = append(res.IPv4Addresses, IPv4Address{IP: s, Class: classifyIPv4(v4)})
				continue
			}
			if isGlobalIPv6(ip) {
				s := ip.String()
				if _, dup := seen6[s]; dup {
					continue
				}
				seen6[s] = struct{}{}
				res.GlobalIPv6 = append(res.GlobalIPv6, s)
			}
		}
	}

	sort.Strings(res.GlobalIPv6)
	sort.Slice(res.IPv4Addresses, func(i, j int) bool { return res.IPv4Addresses[i].IP < res.IPv4Addresses[j].IP })
	res.HasGlobalIPv6 = len(res.GlobalIPv6) > 0
	return res
}
