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

// Package admin implements the local admin control plane of spec.md
// §4.8: a stream-oriented endpoint (UNIX domain socket on POSIX, named
// pipe on Windows) carrying one newline-terminated command per
// connection and replying with one newline-terminated canonical JSON
// response.
package admin

import "net"

// Transport listens for one connection at a time on the platform's
// local control channel. transport_unix.go (POSIX) and
// transport_windows.go (Windows) each define listen, the two
// implementations behind this common contract, chosen by build tag.
type Transport interface {
	net.Listener

	// Remove deletes the on-disk endpoint (the socket file on POSIX;
	// a no-op on Windows, where named pipes have no filesystem entry
	// to clean up), per spec.md §4.9 step 11.
	Remove() error
}

// Listen binds the admin endpoint at path, dispatching to the
// platform-specific constructor.
func Listen(path string) (Transport, error) {
	return listen(path)
}
