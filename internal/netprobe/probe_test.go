package netprobe_test

import (
	"net"
	"sort"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tdelhaise/box/internal/netprobe"
)

func TestNetprobe(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "netprobe suite")
}

var _ = Describe("Probe", func() {
	It("never reports an interface enumeration crash as a panic", func() {
		Expect(func() { netprobe.Probe() }).NotTo(Panic())
	})

	It("returns a sorted, deduplicated set of global IPv6 addresses", func() {
		res := netprobe.Probe()
		sorted := append([]string(nil), res.GlobalIPv6...)
		Expect(res.GlobalIPv6).To(Equal(uniqueSorted(sorted)))
	})

	It("reports HasGlobalIPv6 consistently with the address list", func() {
		res := netprobe.Probe()
		Expect(res.HasGlobalIPv6).To(Equal(len(res.GlobalIPv6) > 0))
	})
})

var _ = Describe("scope classification", func() {
	It("excludes loopback, multicast, link-local and unique-local per spec", func() {
		cases := map[string]bool{
			"::1":        false, // loopback
			"ff02::1":    false, // multicast
			"fe80::1":    false, // link-local
			"fc00::1":    false, // unique-local
			"fd12::1":    false, // unique-local
			"2001:db8::1": true, // global
		}
		for raw, want := range cases {
			ip := net.ParseIP(raw)
			Expect(ip).NotTo(BeNil())
			Expect(exportedIsGlobal(ip)).To(Equal(want), raw)
		}
	})
})

// exportedIsGlobal re-derives the same classification via the public
// Probe surface is not exposed per-IP, so this mirrors the rule
// directly for table-driven coverage of the boundary bytes.
func exportedIsGlobal(ip net.IP) bool {
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

func uniqueSorted(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
