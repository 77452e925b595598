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

// Package boxid implements the 128-bit opaque node/user identifier used
// across the wire codec, the queue store, and the Location Service.
package boxid

import (
	"encoding/hex"
	"strings"

	hcuuid "github.com/hashicorp/go-uuid"
)

// Size is the length in bytes of the binary form of a UUID.
const Size = 16

// Nil is the zero-value UUID, used to mean "absent" where a pointer would
// otherwise be needed.
var Nil UUID

// UUID is a 128-bit opaque identifier. Every node and every user has one,
// stable across restarts.
type UUID [Size]byte

// New generates a fresh random UUID using the same RFC 4122 version-4
// generator the teacher library exposes for request/session identifiers.
func New() (UUID, error) {
	raw, err := hcuuid.GenerateUUID()
	if err != nil {
		return Nil, err
	}
	return Parse(raw)
}

// MustNew is New, panicking on generator failure. Only safe at process
// bootstrap where a broken RNG is already fatal.
func MustNew() UUID {
	id, err := New()
	if err != nil {
		panic(err)
	}
	return id
}

// Parse decodes the canonical dashed hex form ("xxxxxxxx-xxxx-...-xxxxxxxxxxxx")
// into a UUID. It is tolerant of upper or lower case input.
func Parse(s string) (UUID, error) {
	s = strings.TrimSpace(s)
	hexOnly := strings.ReplaceAll(s, "-", "")
	if len(hexOnly) != Size*2 {
		return Nil, ErrMalformed
	}

	raw, err := hex.DecodeString(hexOnly)
	if err != nil {
		return Nil, ErrMalformed
	}

	var id UUID
	copy(id[:], raw)
	return id, nil
}

// FromBytes copies a 16-byte slice into a UUID. It fails if the slice is
// not exactly 16 bytes, matching the fixed-width UUID fields of the wire
// frame header.
func FromBytes(b []byte) (UUID, error) {
	if len(b) != Size {
		return Nil, ErrMalformed
	}
	var id UUID
	copy(id[:], b)
	return id, nil
}

// Bytes returns the 16-byte binary form, suitable for embedding in the
// wire frame header.
func (u UUID) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, u[:])
	return out
}

// IsNil reports whether u is the zero-value UUID.
func (u UUID) IsNil() bool {
	return u == Nil
}

// String renders the canonical dashed hex form, lower case, matching the
// form persisted in configuration and queue object JSON.
func (u UUID) String() string {
	buf := make([]byte, 36)
	hex.Encode(buf[0:8], u[0:4])
	buf[8] = '-'
	hex.Encode(buf[9:13], u[4:6])
	buf[13] = '-'
	hex.Encode(buf[14:18], u[6:8])
	buf[18] = '-'
	hex.Encode(buf[19:23], u[8:10])
	buf[23] = '-'
	hex.Encode(buf[24:36], u[10:16])
	return string(buf)
}

// MarshalText implements encoding.TextMarshaler so a UUID round-trips
// through JSON as its canonical string form.
func (u UUID) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *UUID) UnmarshalText(b []byte) error {
	id, err := Parse(string(b))
	if err != nil {
		return err
	}
	*u = id
	return nil
}

// Compare provides a total, lexicographic order over the text form, used
// to sort node UUID lists deterministically (LocationUserRecord.nodeUUIDs).
func Compare(a, b UUID) int {
	return strings.Compare(a.String(), b.String())
}
