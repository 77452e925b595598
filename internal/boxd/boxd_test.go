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

package boxd_test

import (
	"context"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tdelhaise/box/internal/boxd"
	"github.com/tdelhaise/box/internal/runtime"
)

func TestBoxd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "boxd suite")
}

// withTempHome points go-homedir's HOME lookup at a fresh temp
// directory so boxpath.Resolve lands under an isolated ~/.box for the
// duration of one test.
func withTempHome() (string, func()) {
	dir, err := os.MkdirTemp("", "boxd-home-*")
	Expect(err).NotTo(HaveOccurred())
	prev, had := os.LookupEnv("HOME")
	Expect(os.Setenv("HOME", dir)).To(Succeed())
	return dir, func() {
		if had {
			_ = os.Setenv("HOME", prev)
		} else {
			_ = os.Unsetenv("HOME")
		}
		_ = os.RemoveAll(dir)
	}
}

var _ = Describe("Bootstrap", func() {
	var cleanup func()

	AfterEach(func() {
		if cleanup != nil {
			cleanup()
		}
	})

	It("brings up every collaborator under a fresh home directory", func() {
		_, teardown := withTempHome()
		cleanup = teardown

		port := 0
		d, err := boxd.Bootstrap(context.Background(), boxd.Options{
			CLI: runtime.CLIOptions{Port: &port},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Store).NotTo(BeNil())
		Expect(d.Location).NotTo(BeNil())
		Expect(d.Runtime).NotTo(BeNil())
		Expect(d.UDP).NotTo(BeNil())
		Expect(d.UDP.LocalPort()).NotTo(Equal(0))

		// A fresh config has no admin_channel/port_mapping set, so
		// neither collaborator is started.
		Expect(d.Admin).To(BeNil())
		Expect(d.PortMap).To(BeNil())

		queues, qerr := d.Store.Queues(context.Background())
		Expect(qerr).NotTo(HaveOccurred())
		Expect(queues).To(ContainElement(boxd.InboxQueue))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- d.Run(ctx) }()

		cancel()
		Eventually(done, time.Second).Should(Receive(BeNil()))
	})

	It("refuses a second instance over the same home directory", func() {
		_, teardown := withTempHome()
		cleanup = teardown

		port := 0
		first, err := boxd.Bootstrap(context.Background(), boxd.Options{
			CLI: runtime.CLIOptions{Port: &port},
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = boxd.Bootstrap(context.Background(), boxd.Options{
			CLI: runtime.CLIOptions{Port: &port},
		})
		Expect(err).To(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- first.Run(ctx) }()
		cancel()
		Eventually(done, time.Second).Should(Receive(BeNil()))
	})

	It("starts the metrics listener and records its address when requested", func() {
		_, teardown := withTempHome()
		cleanup = teardown

		port := 0
		d, err := boxd.Bootstrap(context.Background(), boxd.Options{
			CLI:     runtime.CLIOptions{Port: &port},
			Metrics: true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Metrics).NotTo(BeNil())
		Expect(d.Runtime.Snapshot().MetricsAddress).To(Equal(d.Metrics.Addr()))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- d.Run(ctx) }()
		cancel()
		Eventually(done, time.Second).Should(Receive(BeNil()))
	})
})
