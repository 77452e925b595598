package boxlog_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tdelhaise/box/internal/boxlog"
)

func TestBoxLog(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "boxlog suite")
}

var _ = Describe("New", func() {
	It("accepts stderr and stdout targets", func() {
		l, err := boxlog.New("stderr", boxlog.LevelInfo)
		Expect(err).NotTo(HaveOccurred())
		Expect(l).NotTo(BeNil())

		Expect(l.SetTarget("stdout")).To(Succeed())
	})

	It("rejects an unrecognized target grammar", func() {
		l, err := boxlog.New("stderr", boxlog.LevelInfo)
		Expect(err).NotTo(HaveOccurred())
		Expect(l.SetTarget("syslog://local")).To(HaveOccurred())
	})

	It("redirects to a file: target and writes through", func() {
		path := filepath.Join(GinkgoT().TempDir(), "boxd.log")
		l, err := boxlog.New(fmt.Sprintf("file:%s", path), boxlog.LevelInfo)
		Expect(err).NotTo(HaveOccurred())

		l.Infof("hello %s", "world")

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("hello world"))
	})
})

var _ = Describe("AsHCLog", func() {
	It("routes through without panicking", func() {
		l, err := boxlog.New("stderr", boxlog.LevelDebug)
		Expect(err).NotTo(HaveOccurred())
		hc := boxlog.AsHCLog(l)
		hc.Info("test", "k", "v")
		Expect(hc.Name()).To(Equal(""))
	})
})
