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

// GetPayload is the decoded GET command payload: a queue path.
type GetPayload struct {
	QueuePath string
}

// Encode renders the GET payload: two-byte queue-path length + UTF-8.
func (p GetPayload) Encode() ([]byte, error) {
	if !utf8.ValidString(p.QueuePath) {
		return nil, boxerr.FrameDecode.Errorf("get queue path is not valid utf-8")
	}
	qp := []byte(p.QueuePath)
	if len(qp) > 0xFFFF {
		return nil, boxerr.FrameDecode.Errorf("get queue path too long")
	}
	buf := make([]byte, 2+len(qp))
	binary.BigEndian.PutUint16(buf[0:2], uint16(len(qp)))
	copy(buf[2:], qp)
	return buf, nil
}

// DecodeGet parses a GET payload.
func DecodeGet(raw []byte) (GetPayload, error) {
	qp, o, err := readShortString(raw, 0)
	if err != nil {
		return GetPayload{}, err
	}
	if o != len(raw) {
		return GetPayload{}, boxerr.FrameDecode.Errorf("trailing bytes after get payload")
	}
	return GetPayload{QueuePath: qp}, nil
}

// SearchPayload is the decoded SEARCH command payload: a queue path.
type SearchPayload struct {
	QueuePath string
}

// Encode renders the SEARCH payload, identical in shape to GET.
func (p SearchPayload) Encode() ([]byte, error) {
	return GetPayload(p).Encode()
}

// DecodeSearch parses a SEARCH payload.
func DecodeSearch(raw []byte) (SearchPayload, error) {
	g, err := DecodeGet(raw)
	if err != nil {
		return SearchPayload{}, err
	}
	return SearchPayload(g), nil
}
