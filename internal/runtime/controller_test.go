package runtime_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tdelhaise/box/internal/boxconfig"
	"github.com/tdelhaise/box/internal/boxid"
	"github.com/tdelhaise/box/internal/runtime"
)

func TestRuntime(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "runtime suite")
}

func baseDoc() boxconfig.Document {
	return boxconfig.Document{
		Server: boxconfig.ServerSection{
			Port:      12567,
			LogLevel:  "info",
			LogTarget: "stderr",
		},
		Client: boxconfig.ClientSection{
			LogLevel:  "info",
			LogTarget: "stderr",
			Address:   "127.0.0.1",
			Port:      12567,
		},
	}
}

var _ = Describe("precedence resolution", func() {
	It("prefers the CLI flag over everything else", func() {
		port := 9999
		ctl := runtime.New(runtime.CLIOptions{Port: &port}, "", baseDoc(), boxid.MustNew(), boxid.MustNew(), "/tmp/queues", runtime.Hooks{})
		snap := ctl.Snapshot()
		Expect(snap.Port).To(Equal(9999))
		Expect(snap.PortOrigin).To(Equal(runtime.OriginCLI))
	})

	It("falls back to the configuration value when no CLI flag is given", func() {
		doc := baseDoc()
		doc.Server.Port = 23456
		ctl := runtime.New(runtime.CLIOptions{}, "", doc, boxid.MustNew(), boxid.MustNew(), "/tmp/queues", runtime.Hooks{})
		snap := ctl.Snapshot()
		Expect(snap.Port).To(Equal(23456))
		Expect(snap.PortOrigin).To(Equal(runtime.OriginConfig))
	})

	It("falls back to the built-in default when config and CLI are both silent", func() {
		doc := boxconfig.Document{}
		ctl := runtime.New(runtime.CLIOptions{}, "", doc, boxid.MustNew(), boxid.MustNew(), "/tmp/queues", runtime.Hooks{})
		snap := ctl.Snapshot()
		Expect(snap.Port).To(Equal(boxconfig.DefaultServerPort))
		Expect(snap.PortOrigin).To(Equal(runtime.OriginDefault))
	})
})

var _ = Describe("Reload", func() {
	It("never overrides a CLI-originated field", func() {
		port := 11111
		ctl := runtime.New(runtime.CLIOptions{Port: &port}, "", baseDoc(), boxid.MustNew(), boxid.MustNew(), "/tmp/queues", runtime.Hooks{})

		doc2 := baseDoc()
		doc2.Server.Port = 22222
		status, err := ctl.Reload(context.Background(), "", doc2)
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal("ok"))

		snap := ctl.Snapshot()
		Expect(snap.Port).To(Equal(11111))
		Expect(snap.PortOrigin).To(Equal(runtime.OriginCLI))
		Expect(snap.ReloadCount).To(Equal(1))
	})

	It("updates a config-originated field and records a partial status on hook failure", func() {
		ctl := runtime.New(runtime.CLIOptions{}, "", baseDoc(), boxid.MustNew(), boxid.MustNew(), "/tmp/queues", runtime.Hooks{
			Republish: func(ctx context.Context) error { return context.DeadlineExceeded },
		})

		doc2 := baseDoc()
		doc2.Server.Port = 33333
		status, err := ctl.Reload(context.Background(), "", doc2)
		Expect(err).To(HaveOccurred())
		Expect(status).To(Equal("partial"))

		snap := ctl.Snapshot()
		Expect(snap.Port).To(Equal(33333))
		Expect(snap.LastReloadStatus).To(Equal("partial"))
	})
})

var _ = Describe("IsPermanent", func() {
	It("reports queues listed in the configuration's permanent_queues", func() {
		doc := baseDoc()
		doc.Server.PermanentQueues = []string{"inbox"}
		ctl := runtime.New(runtime.CLIOptions{}, "", doc, boxid.MustNew(), boxid.MustNew(), "/tmp/queues", runtime.Hooks{})
		Expect(ctl.IsPermanent("inbox")).To(BeTrue())
		Expect(ctl.IsPermanent("other")).To(BeFalse())
	})
})
