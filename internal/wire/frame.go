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

// Package wire implements the Box UDP frame codec: a fixed 60-byte header
// followed by a command-specific payload, per spec.md §4.1.
package wire

import (
	"encoding/binary"

	"github.com/tdelhaise/box/internal/boxerr"
	"github.com/tdelhaise/box/internal/boxid"
)

// Magic is the constant 4-byte value identifying a Box frame ("BOX1").
const Magic uint32 = 0x424F5831

// Version is the only wire protocol version this codec accepts.
const Version uint8 = 1

// Command identifies the operation a frame carries.
type Command uint8

const (
	CmdHello  Command = 1
	CmdStatus Command = 2
	CmdPut    Command = 3
	CmdGet    Command = 4
	CmdLocate Command = 5
	CmdSearch Command = 6
)

func (c Command) String() string {
	switch c {
	case CmdHello:
		return "HELLO"
	case CmdStatus:
		return "STATUS"
	case CmdPut:
		return "PUT"
	case CmdGet:
		return "GET"
	case CmdLocate:
		return "LOCATE"
	case CmdSearch:
		return "SEARCH"
	default:
		return "UNKNOWN"
	}
}

// HeaderSize is the fixed size, in bytes, of the frame header.
const HeaderSize = 60

// MaxPayloadSize is the Open Question resolution of spec.md §9: a single
// constant, enforced uniformly by encode and decode, chosen so the total
// frame never exceeds the IPv6-safe MTU budget named in spec.md §4.1
// (payload length field must fit in the ≤65471 ceiling).
const MaxPayloadSize = 65471

// MaxFrameSize is HeaderSize + MaxPayloadSize.
const MaxFrameSize = HeaderSize + MaxPayloadSize

// Frame is a decoded Box wire frame: header fields plus an opaque,
// still-encoded payload. Command-specific payload codecs live alongside
// their command in this package.
type Frame struct {
	Version   uint8
	Command   Command
	RequestID boxid.UUID
	NodeID    boxid.UUID
	UserID    boxid.UUID
	Payload   []byte
}

// Encode renders f into its wire form. It fails if the payload exceeds
// MaxPayloadSize.
func Encode(f Frame) ([]byte, error) {
	if len(f.Payload) > MaxPayloadSize {
		return nil, boxerr.FrameDecode.Errorf("payload too large: %d bytes", len(f.Payload))
	}

	buf := make([]byte, HeaderSize+len(f.Payload))
	binary.BigEndian.PutUint32(buf[0:4], Magic)
	buf[4] = Version
	buf[5] = byte(f.Command)
	// offset 6:8 reserved, left zero.
	copy(buf[8:24], f.RequestID.Bytes())
	copy(buf[24:40], f.NodeID.Bytes())
	copy(buf[40:56], f.UserID.Bytes())
	binary.BigEndian.PutUint32(buf[56:60], uint32(len(f.Payload)))
	copy(buf[60:], f.Payload)

	return buf, nil
}

// Decode parses a raw datagram into a Frame. Any malformed input (bad
// magic, unsupported version, truncated header/payload, oversize
// payload) returns boxerr.FrameDecode and the caller must drop the
// datagram silently (log at warn, do not reply), per spec.md §4.1.
func Decode(raw []byte) (Frame, error) {
	if len(raw) < HeaderSize {
		return Frame{}, boxerr.FrameDecode.Errorf("short header: %d bytes", len(raw))
	}

	magic := binary.BigEndian.Uint32(raw[0:4])
	if magic != Magic {
		return Frame{}, boxerr.FrameDecode.Errorf("bad magic: %#x", magic)
	}

	version := raw[4]
	if version != Version {
		return Frame{}, boxerr.FrameDecode.Errorf("unsupported version: %d", version)
	}

	reqID, err := boxid.FromBytes(raw[8:24])
	if err != nil {
		return Frame{}, boxerr.FrameDecode.Errorf("bad requestId")
	}
	nodeID, err := boxid.FromBytes(raw[24:40])
	if err != nil {
		return Frame{}, boxerr.FrameDecode.Errorf("bad nodeId")
	}
	userID, err := boxid.FromBytes(raw[40:56])
	if err != nil {
		return Frame{}, boxerr.FrameDecode.Errorf("bad userId")
	}

	length := binary.BigEndian.Uint32(raw[56:60])
	if length > MaxPayloadSize {
		return Frame{}, boxerr.FrameDecode.Errorf("payload length out of range: %d", length)
	}
	if uint32(len(raw)-HeaderSize) < length {
		return Frame{}, boxerr.FrameDecode.Errorf("truncated payload: want %d have %d", length, len(raw)-HeaderSize)
	}

	payload := make([]byte, length)
	copy(payload, raw[HeaderSize:HeaderSize+int(length)])

	return Frame{
		Version:   version,
		Command:   Command(raw[5]),
		RequestID: reqID,
		NodeID:    nodeID,
		UserID:    userID,
		Payload:   payload,
	}, nil
}
