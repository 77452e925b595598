package boxpath_test

import (
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tdelhaise/box/internal/boxpath"
)

func TestBoxPath(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "boxpath suite")
}

var _ = Describe("ResolveUnder", func() {
	It("lays out run/logs/queues/keys under the given root", func() {
		l := boxpath.ResolveUnder("/home/alice/.box")

		Expect(l.Home).To(Equal("/home/alice/.box"))
		Expect(l.Run).To(Equal(filepath.Join("/home/alice/.box", "run")))
		Expect(l.Logs).To(Equal(filepath.Join("/home/alice/.box", "logs")))
		Expect(l.Queues).To(Equal(filepath.Join("/home/alice/.box", "queues")))
		Expect(l.Keys).To(Equal(filepath.Join("/home/alice/.box", "keys")))
	})

	It("places identity files under keys/ and the config file at the root", func() {
		l := boxpath.ResolveUnder("/home/alice/.box")

		Expect(l.ConfigFile).To(Equal(filepath.Join("/home/alice/.box", "Box.plist")))
		Expect(l.NodeIdentityFile).To(Equal(filepath.Join(l.Keys, "node.identity.json")))
		Expect(l.ClientIdentityFile).To(Equal(filepath.Join(l.Keys, "client.identity.json")))
		Expect(l.IdentityLinksFile).To(Equal(filepath.Join(l.Keys, "identity-links.json")))
	})

	It("places the admin socket under run/", func() {
		l := boxpath.ResolveUnder("/home/alice/.box")
		Expect(l.AdminSocket).To(Equal(filepath.Join(l.Run, "boxd.socket")))
	})

	It("reports exactly the four directories that need 0700 creation", func() {
		l := boxpath.ResolveUnder("/home/alice/.box")
		Expect(l.Dirs()).To(ConsistOf(l.Home, l.Run, l.Logs, l.Queues))
	})
})

var _ = Describe("Resolve", func() {
	It("resolves under the real home directory without error", func() {
		l, err := boxpath.Resolve()
		Expect(err).NotTo(HaveOccurred())
		Expect(filepath.Base(l.Home)).To(Equal(".box"))
	})
})
