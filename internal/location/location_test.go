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

package location_test

import (
	"context"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tdelhaise/box/internal/boxid"
	"github.com/tdelhaise/box/internal/location"
	"github.com/tdelhaise/box/internal/queuestore"
)

func TestLocation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "location suite")
}

func newStore() (*queuestore.Store, func()) {
	dir, err := os.MkdirTemp("", "location-*")
	Expect(err).NotTo(HaveOccurred())
	s := queuestore.New(dir)
	return s, func() {
		s.Close()
		_ = os.RemoveAll(dir)
	}
}

var _ = Describe("SortAddresses", func() {
	It("orders by scope then ip", func() {
		addrs := []location.Address{
			{IP: "10.0.0.2", Scope: location.ScopeLAN},
			{IP: "203.0.113.1", Scope: location.ScopeGlobal},
			{IP: "10.0.0.1", Scope: location.ScopeLAN},
			{IP: "127.0.0.1", Scope: location.ScopeLoopback},
		}
		location.SortAddresses(addrs)
		Expect(addrs[0].Scope).To(Equal(location.ScopeGlobal))
		Expect(addrs[1].IP).To(Equal("10.0.0.1"))
		Expect(addrs[2].IP).To(Equal("10.0.0.2"))
		Expect(addrs[3].Scope).To(Equal(location.ScopeLoopback))
	})
})

var _ = Describe("NodeRecord.CanonicalJSON", func() {
	It("renders the explicit node schema marker", func() {
		rec := location.NodeRecord{
			UserUUID: boxid.MustNew(),
			NodeUUID: boxid.MustNew(),
			Online:   true,
		}
		data, err := rec.CanonicalJSON()
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"schema":"box.location-service.v1.node"`))
	})
})

var _ = Describe("Coordinator", func() {
	var (
		store    *queuestore.Store
		teardown func()
		ctx      context.Context
		coord    *location.Coordinator
	)

	BeforeEach(func() {
		store, teardown = newStore()
		ctx = context.Background()
		coord = location.New(store)
	})

	AfterEach(func() {
		teardown()
	})

	It("bootstraps cleanly with no prior whoswho entries", func() {
		Expect(coord.Bootstrap(ctx)).To(Succeed())
		Expect(coord.Snapshot()).To(BeEmpty())
	})

	It("publishes a node record, resolving it by node and by user", func() {
		node := boxid.MustNew()
		user := boxid.MustNew()
		rec := location.NodeRecord{
			UserUUID: user,
			NodeUUID: node,
			Online:   true,
			Since:    time.Now().UnixMilli(),
			LastSeen: time.Now().UnixMilli(),
		}
		Expect(coord.Publish(ctx, rec)).To(Succeed())

		got, ok := coord.ResolveNode(node)
		Expect(ok).To(BeTrue())
		Expect(got.UserUUID).To(Equal(user))

		byUser := coord.ResolveUser(user)
		Expect(byUser).To(HaveLen(1))
		Expect(byUser[0].NodeUUID).To(Equal(node))

		Expect(coord.Authorize(node, user)).To(BeTrue())
		Expect(coord.Authorize(node, boxid.MustNew())).To(BeFalse())
	})

	It("replays published records across a Bootstrap on a fresh coordinator", func() {
		node := boxid.MustNew()
		user := boxid.MustNew()
		rec := location.NodeRecord{UserUUID: user, NodeUUID: node, Online: true, LastSeen: time.Now().UnixMilli()}
		Expect(coord.Publish(ctx, rec)).To(Succeed())

		fresh := location.New(store)
		Expect(fresh.Bootstrap(ctx)).To(Succeed())

		got, ok := fresh.ResolveNode(node)
		Expect(ok).To(BeTrue())
		Expect(got.UserUUID).To(Equal(user))
	})

	It("associates multiple nodes under one user record", func() {
		user := boxid.MustNew()
		n1 := boxid.MustNew()
		n2 := boxid.MustNew()
		Expect(coord.Publish(ctx, location.NodeRecord{UserUUID: user, NodeUUID: n1, LastSeen: time.Now().UnixMilli()})).To(Succeed())
		Expect(coord.Publish(ctx, location.NodeRecord{UserUUID: user, NodeUUID: n2, LastSeen: time.Now().UnixMilli()})).To(Succeed())

		byUser := coord.ResolveUser(user)
		Expect(byUser).To(HaveLen(2))
	})

	It("returns nodes for a user in a deterministic, node-UUID-sorted order", func() {
		user := boxid.MustNew()
		ids := make([]boxid.UUID, 5)
		for i := range ids {
			ids[i] = boxid.MustNew()
			Expect(coord.Publish(ctx, location.NodeRecord{UserUUID: user, NodeUUID: ids[i], LastSeen: time.Now().UnixMilli()})).To(Succeed())
		}

		first := coord.ResolveUser(user)
		Expect(first).To(HaveLen(5))
		for i := 1; i < len(first); i++ {
			Expect(boxid.Compare(first[i-1].NodeUUID, first[i].NodeUUID)).To(BeNumerically("<", 0))
		}

		for i := 0; i < 10; i++ {
			Expect(coord.ResolveUser(user)).To(Equal(first))
		}
	})

	It("reports a record stale once past the configured threshold", func() {
		coord.SetStaleAfter(time.Millisecond)
		node := boxid.MustNew()
		rec := location.NodeRecord{NodeUUID: node, LastSeen: time.Now().Add(-time.Hour).UnixMilli()}
		Expect(coord.IsStale(rec)).To(BeTrue())

		fresh := location.NodeRecord{NodeUUID: node, LastSeen: time.Now().UnixMilli()}
		Expect(coord.IsStale(fresh)).To(BeFalse())
	})
})

var _ = Describe("SelfRegister", func() {
	It("accepts a node record matching the sender's own identity", func() {
		node := boxid.MustNew()
		user := boxid.MustNew()
		rec := location.NodeRecord{UserUUID: user, NodeUUID: node}
		data, err := rec.CanonicalJSON()
		Expect(err).NotTo(HaveOccurred())

		Expect(location.SelfRegister(data, node, user)).To(BeTrue())
	})

	It("rejects a node record naming a different node", func() {
		rec := location.NodeRecord{UserUUID: boxid.MustNew(), NodeUUID: boxid.MustNew()}
		data, err := rec.CanonicalJSON()
		Expect(err).NotTo(HaveOccurred())

		Expect(location.SelfRegister(data, boxid.MustNew(), boxid.MustNew())).To(BeFalse())
	})

	It("rejects malformed JSON", func() {
		Expect(location.SelfRegister([]byte("not json"), boxid.MustNew(), boxid.MustNew())).To(BeFalse())
	})
})
