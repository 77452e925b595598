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

// Package boxerr implements the structured, HTTP-status-flavored error code
// framework used across the daemon core, per the error kinds enumerated in
// spec.md §7. Each kind is surfaced exactly once at the boundary that owns
// it; crossing the wire it collapses to the closed STATUS enum, crossing
// the admin channel it collapses to a JSON {status:"error",...} object.
package boxerr

import "strconv"

// Code is a numeric error classification, similar in spirit to an HTTP
// status code.
type Code uint16

const (
	// Unknown is the zero-value fallback code.
	Unknown Code = 0

	// ConfigurationLoadFailed: the configuration file exists but cannot be
	// decoded. Bootstrap refuses to start.
	ConfigurationLoadFailed Code = 1000

	// StorageUnavailable: the queue root directory cannot be established.
	StorageUnavailable Code = 1001

	// ForbiddenOperation: the daemon was launched as root on POSIX.
	ForbiddenOperation Code = 1002

	// InvalidQueue: a queue name contains a forbidden character or shape.
	InvalidQueue Code = 1003

	// QueueNotFound: lookup against a queue that was never created.
	QueueNotFound Code = 1004

	// ObjectNotFound: a referenced StoredObject does not exist.
	ObjectNotFound Code = 1005

	// Corrupted: a StoredObject file failed to decode.
	Corrupted Code = 1006

	// Unauthorized: the requesting (node,user) pair is not known to the
	// Location Service.
	Unauthorized Code = 1007

	// FrameDecode: a datagram failed header or payload validation.
	FrameDecode Code = 1008

	// PortMapping: a UPnP/NAT-PMP backend call failed.
	PortMapping Code = 1009
)

var messages = map[Code]string{
	Unknown:                 "unknown error",
	ConfigurationLoadFailed: "configuration load failed",
	StorageUnavailable:      "storage unavailable",
	ForbiddenOperation:      "forbidden operation",
	InvalidQueue:            "invalid queue",
	QueueNotFound:           "queue not found",
	ObjectNotFound:          "object not found",
	Corrupted:               "corrupted object",
	Unauthorized:            "unauthorized",
	FrameDecode:             "frame decode failed",
	PortMapping:             "port mapping failed",
}

// Message returns the registered human-readable message for the code, or
// the generic "unknown error" fallback.
func (c Code) Message() string {
	if m, ok := messages[c]; ok {
		return m
	}
	return messages[Unknown]
}

// Uint16 returns the numeric form of the code.
func (c Code) Uint16() uint16 {
	return uint16(c)
}

// String renders the code as its decimal numeric text.
func (c Code) String() string {
	return strconv.Itoa(int(c))
}

// Error builds a new Error carrying this code, the registered message, and
// the given optional parent errors.
func (c Code) Error(parents ...error) Error {
	return New(c, c.Message(), parents...)
}

// Errorf is Error with a custom, formatted message instead of the
// registered one.
func (c Code) Errorf(format string, args ...any) Error {
	return Newf(c, format, args...)
}
