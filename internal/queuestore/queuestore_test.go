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

package queuestore_test

import (
	"context"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tdelhaise/box/internal/boxerr"
	"github.com/tdelhaise/box/internal/boxid"
	"github.com/tdelhaise/box/internal/queuestore"
)

func TestQueuestore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "queuestore suite")
}

func newStore() (*queuestore.Store, func()) {
	dir, err := os.MkdirTemp("", "queuestore-*")
	Expect(err).NotTo(HaveOccurred())
	s := queuestore.New(dir)
	return s, func() {
		s.Close()
		_ = os.RemoveAll(dir)
	}
}

func obj(data string) queuestore.Object {
	return queuestore.Object{
		ID:          boxid.MustNew(),
		ContentType: "text/plain",
		Data:        []byte(data),
		CreatedAt:   time.Now(),
		NodeID:      boxid.MustNew(),
		UserID:      boxid.MustNew(),
	}
}

var _ = Describe("NormalizeName", func() {
	It("strips a leading slash", func() {
		n, err := queuestore.NormalizeName("/INBOX")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal("INBOX"))
	})

	It("preserves case for ordinary names", func() {
		n, err := queuestore.NormalizeName("MyQueue")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal("MyQueue"))
	})

	It("canonicalizes whoswho to lower case regardless of input case", func() {
		n, err := queuestore.NormalizeName("WhosWho")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(queuestore.WhoswhoQueue))
	})

	It("rejects an empty name", func() {
		_, err := queuestore.NormalizeName("")
		Expect(boxerr.HasCode(err, boxerr.InvalidQueue)).To(BeTrue())
	})

	It("rejects a name with a forbidden character", func() {
		_, err := queuestore.NormalizeName(`bad"name`)
		Expect(boxerr.HasCode(err, boxerr.InvalidQueue)).To(BeTrue())
	})
})

var _ = Describe("Store", func() {
	var (
		s        *queuestore.Store
		teardown func()
		ctx      context.Context
	)

	BeforeEach(func() {
		s, teardown = newStore()
		ctx = context.Background()
	})

	AfterEach(func() {
		teardown()
	})

	It("creates a queue directory on EnsureQueue and lists it", func() {
		canon, path, err := s.EnsureQueue(ctx, "INBOX")
		Expect(err).NotTo(HaveOccurred())
		Expect(canon).To(Equal("INBOX"))
		Expect(path).To(BeADirectory())

		names, err := s.Queues(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(names).To(ContainElement("INBOX"))
	})

	It("puts and lists an object in insertion order", func() {
		_, _, err := s.EnsureQueue(ctx, "INBOX")
		Expect(err).NotTo(HaveOccurred())

		o1 := obj("first")
		o1.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		o2 := obj("second")
		o2.CreatedAt = time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC)

		Expect(s.Put(ctx, "INBOX", o1)).To(Succeed())
		Expect(s.Put(ctx, "INBOX", o2)).To(Succeed())

		refs, err := s.List(ctx, "INBOX", 0, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(refs).To(HaveLen(2))

		first, err := s.Read(ctx, refs[0])
		Expect(err).NotTo(HaveOccurred())
		Expect(first.ID).To(Equal(o1.ID))
	})

	It("returns QueueNotFound for List against a nonexistent queue", func() {
		_, err := s.List(ctx, "GHOST", 0, 0)
		Expect(boxerr.HasCode(err, boxerr.QueueNotFound)).To(BeTrue())
	})

	It("peeks without removing", func() {
		_, _, err := s.EnsureQueue(ctx, "INBOX")
		Expect(err).NotTo(HaveOccurred())
		o := obj("peek me")
		Expect(s.Put(ctx, "INBOX", o)).To(Succeed())

		peeked, found, err := s.PeekOldest(ctx, "INBOX")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())
		Expect(peeked.ID).To(Equal(o.ID))

		refs, err := s.List(ctx, "INBOX", 0, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(refs).To(HaveLen(1))
	})

	It("pops the oldest entry and removes it", func() {
		_, _, err := s.EnsureQueue(ctx, "INBOX")
		Expect(err).NotTo(HaveOccurred())

		o1 := obj("first")
		o1.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		o2 := obj("second")
		o2.CreatedAt = time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC)
		Expect(s.Put(ctx, "INBOX", o1)).To(Succeed())
		Expect(s.Put(ctx, "INBOX", o2)).To(Succeed())

		popped, found, err := s.PopOldest(ctx, "INBOX")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())
		Expect(popped.ID).To(Equal(o1.ID))

		refs, err := s.List(ctx, "INBOX", 0, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(refs).To(HaveLen(1))
	})

	It("reports not found when popping an empty queue", func() {
		_, _, err := s.EnsureQueue(ctx, "INBOX")
		Expect(err).NotTo(HaveOccurred())

		_, found, err := s.PopOldest(ctx, "INBOX")
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())
	})

	It("replaces an existing whoswho entry for the same object ID", func() {
		id := boxid.MustNew()
		first := obj("v1")
		first.ID = id
		second := obj("v2")
		second.ID = id

		Expect(s.Put(ctx, "whoswho", first)).To(Succeed())
		Expect(s.Put(ctx, "whoswho", second)).To(Succeed())

		refs, err := s.List(ctx, "whoswho", 0, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(refs).To(HaveLen(1))

		got, err := s.Read(ctx, refs[0])
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Data).To(Equal(second.Data))
	})

	It("removes an object by ID", func() {
		_, _, err := s.EnsureQueue(ctx, "INBOX")
		Expect(err).NotTo(HaveOccurred())
		o := obj("to remove")
		Expect(s.Put(ctx, "INBOX", o)).To(Succeed())

		Expect(s.Remove(ctx, "INBOX", o.ID)).To(Succeed())

		refs, err := s.List(ctx, "INBOX", 0, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(refs).To(BeEmpty())
	})

	It("returns ObjectNotFound when removing an absent ID", func() {
		_, _, err := s.EnsureQueue(ctx, "INBOX")
		Expect(err).NotTo(HaveOccurred())

		err = s.Remove(ctx, "INBOX", boxid.MustNew())
		Expect(boxerr.HasCode(err, boxerr.ObjectNotFound)).To(BeTrue())
	})

	It("purges every entry in a queue", func() {
		_, _, err := s.EnsureQueue(ctx, "INBOX")
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Put(ctx, "INBOX", obj("a"))).To(Succeed())
		Expect(s.Put(ctx, "INBOX", obj("b"))).To(Succeed())

		Expect(s.Purge(ctx, "INBOX")).To(Succeed())

		refs, err := s.List(ctx, "INBOX", 0, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(refs).To(BeEmpty())
	})

	It("applies limit and offset in List", func() {
		_, _, err := s.EnsureQueue(ctx, "INBOX")
		Expect(err).NotTo(HaveOccurred())
		for i := 0; i < 5; i++ {
			o := obj("entry")
			o.CreatedAt = time.Date(2026, 1, 1, 0, 0, i, 0, time.UTC)
			Expect(s.Put(ctx, "INBOX", o)).To(Succeed())
		}

		refs, err := s.List(ctx, "INBOX", 2, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(refs).To(HaveLen(2))
	})
})
