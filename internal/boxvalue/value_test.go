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

package boxvalue_test

import (
	"sync"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tdelhaise/box/internal/boxvalue"
)

func TestBoxValue(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "boxvalue suite")
}

var _ = Describe("Value", func() {
	It("returns the configured default before the first Store", func() {
		v := boxvalue.NewValue(42)
		Expect(v.Load()).To(Equal(42))
	})

	It("returns the most recently stored value", func() {
		v := boxvalue.NewValue("idle")
		v.Store("running")
		Expect(v.Load()).To(Equal("running"))
		v.Store("stopped")
		Expect(v.Load()).To(Equal("stopped"))
	})

	It("is safe under concurrent Store/Load", func() {
		v := boxvalue.NewValue(0)
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				v.Store(n)
				_ = v.Load()
			}(i)
		}
		wg.Wait()
	})
})

var _ = Describe("SyncMap", func() {
	It("reports absence for a key never stored", func() {
		m := &boxvalue.SyncMap[string, int]{}
		_, ok := m.Load("missing")
		Expect(ok).To(BeFalse())
	})

	It("stores and loads a value", func() {
		m := &boxvalue.SyncMap[string, int]{}
		m.Store("a", 1)
		v, ok := m.Load("a")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(1))
	})

	It("deletes a stored key", func() {
		m := &boxvalue.SyncMap[string, int]{}
		m.Store("a", 1)
		m.Delete("a")
		_, ok := m.Load("a")
		Expect(ok).To(BeFalse())
	})

	It("ranges over every stored entry", func() {
		m := &boxvalue.SyncMap[string, int]{}
		m.Store("a", 1)
		m.Store("b", 2)

		seen := map[string]int{}
		m.Range(func(k string, v int) bool {
			seen[k] = v
			return true
		})
		Expect(seen).To(Equal(map[string]int{"a": 1, "b": 2}))
	})

	It("stops ranging early when f returns false", func() {
		m := &boxvalue.SyncMap[string, int]{}
		m.Store("a", 1)
		m.Store("b", 2)
		m.Store("c", 3)

		count := 0
		m.Range(func(k string, v int) bool {
			count++
			return false
		})
		Expect(count).To(Equal(1))
	})

	It("Len reflects the number of stored entries", func() {
		m := &boxvalue.SyncMap[string, int]{}
		Expect(m.Len()).To(Equal(0))
		m.Store("a", 1)
		m.Store("b", 2)
		Expect(m.Len()).To(Equal(2))
		m.Delete("a")
		Expect(m.Len()).To(Equal(1))
	})
})
