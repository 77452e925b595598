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

// PutPayload is the decoded PUT command payload: a queue path, a content
// type, and the opaque data bytes. It is reused, unchanged, as the
// response payload for GET (spec.md §4.6) and as the per-entry payload of
// a SEARCH reply stream.
type PutPayload struct {
	QueuePath   string
	ContentType string
	Data        []byte
}

// Encode renders the PUT payload: two-byte queue-path length + UTF-8,
// two-byte content-type length + UTF-8, four-byte data length + data.
func (p PutPayload) Encode() ([]byte, error) {
	if !utf8.ValidString(p.QueuePath) || !utf8.ValidString(p.ContentType) {
		return nil, boxerr.FrameDecode.Errorf("put text fields are not valid utf-8")
	}
	qp := []byte(p.QueuePath)
	ct := []byte(p.ContentType)
	if len(qp) > 0xFFFF || len(ct) > 0xFFFF {
		return nil, boxerr.FrameDecode.Errorf("put text field too long")
	}
	if uint64(len(p.Data)) > 0xFFFFFFFF {
		return nil, boxerr.FrameDecode.Errorf("put data too long")
	}

	buf := make([]byte, 2+len(qp)+2+len(ct)+4+len(p.Data))
	o := 0
	binary.BigEndian.PutUint16(buf[o:o+2], uint16(len(qp)))
	o += 2
	copy(buf[o:], qp)
	o += len(qp)
	binary.BigEndian.PutUint16(buf[o:o+2], uint16(len(ct)))
	o += 2
	copy(buf[o:], ct)
	o += len(ct)
	binary.BigEndian.PutUint32(buf[o:o+4], uint32(len(p.Data)))
	o += 4
	copy(buf[o:], p.Data)

	return buf, nil
}

// DecodePut parses a PUT payload.
func DecodePut(raw []byte) (PutPayload, error) {
	o := 0
	qp, o2, err := readShortString(raw, o)
	if err != nil {
		return PutPayload{}, err
	}
	o = o2

	ct, o2, err := readShortString(raw, o)
	if err != nil {
		return PutPayload{}, err
	}
	o = o2

	if len(raw)-o < 4 {
		return PutPayload{}, boxerr.FrameDecode.Errorf("truncated put data length")
	}
	n := binary.BigEndian.Uint32(raw[o : o+4])
	o += 4
	if uint32(len(raw)-o) != n {
		return PutPayload{}, boxerr.FrameDecode.Errorf("put data length mismatch")
	}
	data := make([]byte, n)
	copy(data, raw[o:])

	return PutPayload{QueuePath: qp, ContentType: ct, Data: data}, nil
}

// readShortString decodes a two-byte-length-prefixed UTF-8 string
// starting at offset o in raw, returning the string and the offset just
// past it.
func readShortString(raw []byte, o int) (string, int, error) {
	if len(raw)-o < 2 {
		return "", 0, boxerr.FrameDecode.Errorf("truncated string length")
	}
	n := binary.BigEndian.Uint16(raw[o : o+2])
	o += 2
	if len(raw)-o < int(n) {
		return "", 0, boxerr.FrameDecode.Errorf("truncated string body")
	}
	b := raw[o : o+int(n)]
	if !utf8.Valid(b) {
		return "", 0, boxerr.FrameDecode.Errorf("string field is not valid utf-8")
	}
	return string(b), o + int(n), nil
}
