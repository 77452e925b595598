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

import "github.com/tdelhaise/box/internal/boxerr"

// HelloPayload is the decoded HELLO command payload. On a request, Status
// is zero and SupportedVersions lists the client's acceptable versions.
// On a reply, Status is one of the STATUS codes and SupportedVersions
// carries the server's chosen/acceptable versions (§4.1: "a one-byte
// status (0 = request, otherwise a reply status code...)").
type HelloPayload struct {
	Status             StatusCode
	SupportedVersions  []uint8
}

// IsRequest reports whether this HELLO payload is a request (status byte
// zero) rather than a reply. StatusOK is also zero, so a reply carrying
// StatusOK reports true as well.
func (p HelloPayload) IsRequest() bool {
	return p.Status == 0
}

// Supports reports whether version v is present in SupportedVersions.
func (p HelloPayload) Supports(v uint8) bool {
	for _, sv := range p.SupportedVersions {
		if sv == v {
			return true
		}
	}
	return false
}

// Encode renders the HELLO payload: one status byte, one count byte, and
// that many version bytes.
func (p HelloPayload) Encode() ([]byte, error) {
	if len(p.SupportedVersions) > 0xFF {
		return nil, boxerr.FrameDecode.Errorf("too many supported versions: %d", len(p.SupportedVersions))
	}
	buf := make([]byte, 2+len(p.SupportedVersions))
	buf[0] = byte(p.Status)
	buf[1] = byte(len(p.SupportedVersions))
	copy(buf[2:], p.SupportedVersions)
	return buf, nil
}

// DecodeHello parses a HELLO payload.
func DecodeHello(raw []byte) (HelloPayload, error) {
	if len(raw) < 2 {
		return HelloPayload{}, boxerr.FrameDecode.Errorf("short hello payload")
	}
	status := StatusCode(raw[0])
	count := int(raw[1])
	if len(raw)-2 != count {
		return HelloPayload{}, boxerr.FrameDecode.Errorf("hello version count mismatch")
	}
	versions := make([]uint8, count)
	copy(versions, raw[2:])
	return HelloPayload{Status: status, SupportedVersions: versions}, nil
}
