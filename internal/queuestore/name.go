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

package queuestore

import (
	"strings"

	"github.com/tdelhaise/box/internal/boxerr"
)

// WhoswhoQueue is the reserved queue name backing the Location Service.
const WhoswhoQueue = "whoswho"

// isForbiddenRune reports characters a queue name may never contain:
// path separators, quotes, wildcards, control characters.
func isForbiddenRune(r rune) bool {
	switch r {
	case '/', '\\', '"', '\'', '*', '?', '<', '>', '|', ':':
		return true
	}
	return r < 0x20 || r == 0x7F
}

// NormalizeName validates and canonicalizes a queue name per spec.md §3:
// a leading '/' is stripped, names are case-sensitive except "whoswho"
// which canonicalizes to lower case, and the restricted alphabet is
// enforced.
func NormalizeName(name string) (string, error) {
	n := strings.TrimPrefix(name, "/")
	if n == "" {
		return "", boxerr.InvalidQueue.Errorf("empty queue name")
	}
	for _, r := range n {
		if isForbiddenRune(r) {
			return "", boxerr.InvalidQueue.Errorf("queue name %q contains a forbidden character", name)
		}
	}
	if strings.EqualFold(n, WhoswhoQueue) {
		return strings.ToLower(n), nil
	}
	return n, nil
}
