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
	"github.com/tdelhaise/box/internal/boxerr"
	"github.com/tdelhaise/box/internal/boxid"
)

// LocatePayload is the decoded LOCATE command payload: a 16-byte target
// node UUID.
type LocatePayload struct {
	TargetNodeID boxid.UUID
}

// Encode renders the LOCATE payload.
func (p LocatePayload) Encode() ([]byte, error) {
	return p.TargetNodeID.Bytes(), nil
}

// DecodeLocate parses a LOCATE payload.
func DecodeLocate(raw []byte) (LocatePayload, error) {
	if len(raw) != boxid.Size {
		return LocatePayload{}, boxerr.FrameDecode.Errorf("locate payload must be %d bytes, got %d", boxid.Size, len(raw))
	}
	id, err := boxid.FromBytes(raw)
	if err != nil {
		return LocatePayload{}, boxerr.FrameDecode.Errorf("bad locate target uuid")
	}
	return LocatePayload{TargetNodeID: id}, nil
}
