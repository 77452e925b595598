package portmap_test

import (
	"context"
	"encoding/xml"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tdelhaise/box/internal/portmap"
)

func TestPortmap(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "portmap suite")
}

var _ = Describe("ProbeSkipped", func() {
	It("is false when the environment variable is unset", func() {
		Expect(portmap.ProbeSkipped()).To(Equal(false))
	})
})

var _ = Describe("device description XML", func() {
	It("parses a minimal InternetGatewayDevice root without error", func() {
		var v struct {
			XMLName xml.Name `xml:"root"`
		}
		err := xml.Unmarshal([]byte(`<root xmlns="urn:schemas-upnp-org:device-1-0"></root>`), &v)
		Expect(err).NotTo(HaveOccurred())
	})
})

var _ = Describe("coordinator lifecycle", func() {
	It("Stop is a no-op before Start has established a mapping", func() {
		c := portmap.New(12567, nil)
		err := c.Stop(context.Background())
		Expect(err).NotTo(HaveOccurred())
	})
})
