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

package wire

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/tdelhaise/box/internal/boxerr"
)

// StatusCode is the closed STATUS enum of spec.md §4.1.
type StatusCode uint8

const (
	StatusOK           StatusCode = 0
	StatusBadRequest   StatusCode = 1
	StatusNotFound     StatusCode = 2
	StatusUnauthorized StatusCode = 3
	StatusInternal     StatusCode = 4
)

// StatusPayload is the decoded STATUS command payload: one status byte,
// one two-byte UTF-8 length, and the UTF-8 message bytes.
type StatusPayload struct {
	Code    StatusCode
	Message string
}

// Encode renders the STATUS payload.
func (p StatusPayload) Encode() ([]byte, error) {
	if !utf8.ValidString(p.Message) {
		return nil, boxerr.FrameDecode.Errorf("status message is not valid utf-8")
	}
	msg := []byte(p.Message)
	if len(msg) > 0xFFFF {
		return nil, boxerr.FrameDecode.Errorf("status message too long: %d bytes", len(msg))
	}

	buf := make([]byte, 3+len(msg))
	buf[0] = byte(p.Code)
	binary.BigEndian.PutUint16(buf[1:3], uint16(len(msg)))
	copy(buf[3:], msg)
	return buf, nil
}

// DecodeStatus parses a STATUS payload.
func DecodeStatus(raw []byte) (StatusPayload, error) {
	if len(raw) < 3 {
		return StatusPayload{}, boxerr.FrameDecode.Errorf("short status payload")
	}
	code := StatusCode(raw[0])
	n := binary.BigEndian.Uint16(raw[1:3])
	if len(raw)-3 != int(n) {
		return StatusPayload{}, boxerr.FrameDecode.Errorf("status length mismatch")
	}
	msg := raw[3:]
	if !utf8.Valid(msg) {
		return StatusPayload{}, boxerr.FrameDecode.Errorf("status message is not valid utf-8")
	}
	return StatusPayload{Code: code, Message: string(msg)}, nil
}
