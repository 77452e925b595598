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

// Package boxvalue provides small generic concurrency-safe containers
// (a typed atomic value, a typed sync.Map) for fields that are read far
// more often than written, without a hand-rolled sync.RWMutex + map pair
// for each one. The Location Service coordinator keeps its indexes in
// SyncMap; the runtime controller uses neither and guards its state
// with its own mutex.
package boxvalue

import "sync/atomic"

// Value is a typed, concurrency-safe single-value container with a
// configurable default returned by Load before the first Store.
type Value[T any] struct {
	av  atomic.Value
	def T
}

// NewValue builds a Value with the given default.
func NewValue[T any](def T) *Value[T] {
	return &Value[T]{def: def}
}

// Load returns the current value, or the configured default if Store was
// never called.
func (v *Value[T]) Load() T {
	if raw := v.av.Load(); raw != nil {
		if t, ok := raw.(T); ok {
			return t
		}
	}
	return v.def
}

// Store sets the current value atomically.
func (v *Value[T]) Store(value T) {
	v.av.Store(value)
}
