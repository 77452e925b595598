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

// Package udpserver implements the UDP request handler of spec.md §4.6:
// one decode-and-dispatch loop per socket, offloading storage and
// Location Service work to background goroutines so the read loop never
// blocks.
package udpserver

import (
	"context"

	jsoniter "github.com/json-iterator/go"

	"github.com/tdelhaise/box/internal/boxid"
	"github.com/tdelhaise/box/internal/location"
	"github.com/tdelhaise/box/internal/queuestore"
	"github.com/tdelhaise/box/internal/wire"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Logger is the narrow logging surface the handler needs; internal/boxlog
// satisfies it.
type Logger interface {
	Debugf(format string, args ...any)
	Errorf(format string, args ...any)
}

// PermanentQueues reports whether a queue is exempt from consume-on-read
// semantics (peekOldest instead of popOldest), per spec.md §4.6.
type PermanentQueues interface {
	IsPermanent(queue string) bool
}

// VersionString is echoed back by STATUS "pong" responses.
var VersionString = "dev"

// Handler dispatches decoded frames against the queue store and
// Location Service coordinator, implementing every command of spec.md
// §4.6.
type Handler struct {
	Store      *queuestore.Store
	Location   *location.Coordinator
	Permanent  PermanentQueues
	Logger     Logger
	ServerNode boxid.UUID
	ServerUser boxid.UUID
}

// Dispatch decodes raw and returns the ordered sequence of encoded
// response frames to send back to the sender. A decode failure yields
// no response at all, per spec.md §4.1 ("Decoders fail with BAD_FRAME
// on truncation, oversize, or non-UTF-8... ") — BAD_FRAME is never
// replied to the sender (spec.md §7).
func (h *Handler) Dispatch(ctx context.Context, raw []byte) [][]byte {
	frame, err := wire.Decode(raw)
	if err != nil {
		if w, ok := h.Logger.(interface{ Warningf(string, ...any) }); ok {
			w.Warningf("dropping malformed frame: %v", err)
		} else if h.Logger != nil {
			h.Logger.Debugf("dropping malformed frame: %v", err)
		}
		return nil
	}

	var frames []wire.Frame
	switch frame.Command {
	case wire.CmdHello:
		frames = h.handleHello(frame)
	case wire.CmdStatus:
		frames = h.handleStatus(frame)
	case wire.CmdPut:
		frames = h.handlePut(ctx, frame)
	case wire.CmdGet:
		frames = h.handleGet(ctx, frame)
	case wire.CmdLocate:
		frames = h.handleLocate(frame)
	case wire.CmdSearch:
		frames = h.handleSearch(ctx, frame)
	default:
		frames = []wire.Frame{h.status(frame, wire.StatusBadRequest, "unknown-command")}
	}

	out := make([][]byte, 0, len(frames))
	for _, f := range frames {
		enc, err := wire.Encode(f)
		if err != nil {
			if h.Logger != nil {
				h.Logger.Errorf("encode response frame: %v", err)
			}
			continue
		}
		out = append(out, enc)
	}
	return out
}

// status builds a STATUS response frame reusing the request's
// requestId and the server's own node/user identity, per spec.md §4.6
// ("Responses reuse the request's requestId; sender's nodeId/userId are
// the server's runtime identities"). A message that somehow fails to
// encode (non-UTF-8 or oversize, which never happens for the literal
// strings this package emits) falls back to an empty STATUS body rather
// than panicking.
func (h *Handler) status(req wire.Frame, code wire.StatusCode, message string) wire.Frame {
	payload, err := wire.StatusPayload{Code: code, Message: message}.Encode()
	if err != nil {
		payload, _ = wire.StatusPayload{Code: wire.StatusInternal, Message: ""}.Encode()
	}
	return wire.Frame{
		Version:   wire.Version,
		Command:   wire.CmdStatus,
		RequestID: req.RequestID,
		NodeID:    h.ServerNode,
		UserID:    h.ServerUser,
		Payload:   payload,
	}
}

func (h *Handler) put(req wire.Frame, queuePath, contentType string, data []byte) (wire.Frame, error) {
	payload, err := wire.PutPayload{QueuePath: queuePath, ContentType: contentType, Data: data}.Encode()
	if err != nil {
		return wire.Frame{}, err
	}
	return wire.Frame{
		Version:   wire.Version,
		Command:   wire.CmdPut,
		RequestID: req.RequestID,
		NodeID:    h.ServerNode,
		UserID:    h.ServerUser,
		Payload:   payload,
	}, nil
}

func (h *Handler) authorize(frame wire.Frame) bool {
	if h.Location == nil {
		return false
	}
	return h.Location.Authorize(frame.NodeID, frame.UserID)
}
