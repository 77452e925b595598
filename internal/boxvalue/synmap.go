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

package boxvalue

import "sync"

// SyncMap is a generic, concurrency-safe map, used by the Location Service
// coordinator for its node/user indexes so lookups take no lock of the
// coordinator's own.
type SyncMap[K comparable, V any] struct {
	m sync.Map
}

// Load returns the value stored for key, if any.
func (s *SyncMap[K, V]) Load(key K) (V, bool) {
	var zero V
	raw, ok := s.m.Load(key)
	if !ok {
		return zero, false
	}
	v, ok := raw.(V)
	return v, ok
}

// Store sets the value for key.
func (s *SyncMap[K, V]) Store(key K, value V) {
	s.m.Store(key, value)
}

// Delete removes key, if present.
func (s *SyncMap[K, V]) Delete(key K) {
	s.m.Delete(key)
}

// Range iterates the map in unspecified order, stopping early if f
// returns false.
func (s *SyncMap[K, V]) Range(f func(key K, value V) bool) {
	s.m.Range(func(k, v any) bool {
		kk, ok := k.(K)
		if !ok {
			return true
		}
		vv, ok := v.(V)
		if !ok {
			return true
		}
		return f(kk, vv)
	})
}

// Len returns the number of entries currently stored. It is O(n) and
// intended for admin/status reporting only, not hot paths.
func (s *SyncMap[K, V]) Len() int {
	n := 0
	s.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
