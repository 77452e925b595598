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

package udpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/tdelhaise/box/internal/boxerr"
	"github.com/tdelhaise/box/internal/boxid"
	"github.com/tdelhaise/box/internal/location"
	"github.com/tdelhaise/box/internal/queuestore"
	"github.com/tdelhaise/box/internal/wire"
)

func boxidParse(s string) (boxid.UUID, error) {
	id, err := boxid.Parse(s)
	if err != nil {
		return boxid.Nil, boxerr.Corrupted.Errorf("parse uuid %q: %v", s, err)
	}
	return id, nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// handleHello implements spec.md §4.6's HELLO rule.
func (h *Handler) handleHello(frame wire.Frame) []wire.Frame {
	hello, err := wire.DecodeHello(frame.Payload)
	if err != nil {
		return []wire.Frame{h.status(frame, wire.StatusBadRequest, "invalid-hello")}
	}
	if !hello.Supports(wire.Version) {
		return []wire.Frame{h.status(frame, wire.StatusBadRequest, "unsupported-version")}
	}

	reply, err := wire.HelloPayload{Status: wire.StatusOK, SupportedVersions: []uint8{wire.Version}}.Encode()
	if err != nil {
		return []wire.Frame{h.status(frame, wire.StatusInternal, "storage-error")}
	}
	return []wire.Frame{{
		Version:   wire.Version,
		Command:   wire.CmdHello,
		RequestID: frame.RequestID,
		NodeID:    h.ServerNode,
		UserID:    h.ServerUser,
		Payload:   reply,
	}}
}

// handleStatus implements spec.md §4.6's STATUS rule ("log; respond
// STATUS(OK, "pong <version-string>")").
func (h *Handler) handleStatus(frame wire.Frame) []wire.Frame {
	if h.Logger != nil {
		h.Logger.Debugf("status ping from node=%s user=%s", frame.NodeID, frame.UserID)
	}
	return []wire.Frame{h.status(frame, wire.StatusOK, fmt.Sprintf("pong %s", VersionString))}
}

// handlePut implements spec.md §4.6's PUT rule, including the
// self-registration exception of §4.3 for the "whoswho" queue.
func (h *Handler) handlePut(ctx context.Context, frame wire.Frame) []wire.Frame {
	payload, err := wire.DecodePut(frame.Payload)
	if err != nil {
		return []wire.Frame{h.status(frame, wire.StatusBadRequest, "invalid-put")}
	}

	queue, err := queuestore.NormalizeName(payload.QueuePath)
	if err != nil {
		return []wire.Frame{h.status(frame, wire.StatusBadRequest, "invalid-queue")}
	}

	authorized := h.authorize(frame)
	if !authorized && queue == queuestore.WhoswhoQueue && h.Location != nil {
		authorized = location.SelfRegister(payload.Data, frame.NodeID, frame.UserID)
	}
	if !authorized {
		return []wire.Frame{h.status(frame, wire.StatusUnauthorized, "unknown-client")}
	}

	obj, err := h.buildStoredObject(ctx, queue, payload, frame)
	if err != nil {
		return []wire.Frame{h.status(frame, wire.StatusInternal, "storage-error")}
	}

	if h.Store == nil {
		return []wire.Frame{h.status(frame, wire.StatusInternal, "storage-error")}
	}
	if err := h.Store.Put(ctx, queue, obj); err != nil {
		return []wire.Frame{h.status(frame, wire.StatusInternal, "storage-error")}
	}

	return []wire.Frame{h.status(frame, wire.StatusOK, "stored")}
}

// buildStoredObject decides the object's id/node/user: for "whoswho" it
// is drawn from the decoded node/user record body rather than from the
// frame, per spec.md §4.6 ("store with nodeId/userId from the frame (or,
// for whoswho, from the decoded record)").
func (h *Handler) buildStoredObject(ctx context.Context, queue string, payload wire.PutPayload, frame wire.Frame) (queuestore.Object, error) {
	id, err := boxid.New()
	if err != nil {
		return queuestore.Object{}, boxerr.StorageUnavailable.Errorf("generate object id: %v", err)
	}

	obj := queuestore.Object{
		ID:          id,
		ContentType: payload.ContentType,
		Data:        payload.Data,
		NodeID:      frame.NodeID,
		UserID:      frame.UserID,
	}
	obj.CreatedAt = nowUTC()

	if queue != queuestore.WhoswhoQueue {
		return obj, nil
	}

	var probe struct {
		NodeUUID string `json:"nodeUUID"`
		UserUUID string `json:"userUUID"`
	}
	if err := json.Unmarshal(payload.Data, &probe); err != nil {
		return queuestore.Object{}, boxerr.Corrupted.Errorf("decode whoswho entry: %v", err)
	}

	switch {
	case probe.NodeUUID != "":
		id, err := boxidParse(probe.NodeUUID)
		if err != nil {
			return queuestore.Object{}, err
		}
		obj.ID = id
	case probe.UserUUID != "":
		id, err := boxidParse(probe.UserUUID)
		if err != nil {
			return queuestore.Object{}, err
		}
		obj.ID = id
	}
	return obj, nil
}

// handleGet implements spec.md §4.6's GET rule.
func (h *Handler) handleGet(ctx context.Context, frame wire.Frame) []wire.Frame {
	payload, err := wire.DecodeGet(frame.Payload)
	if err != nil {
		return []wire.Frame{h.status(frame, wire.StatusBadRequest, "invalid-get")}
	}
	queue, err := queuestore.NormalizeName(payload.QueuePath)
	if err != nil {
		return []wire.Frame{h.status(frame, wire.StatusBadRequest, "invalid-queue")}
	}
	if !h.authorize(frame) {
		return []wire.Frame{h.status(frame, wire.StatusUnauthorized, "unknown-client")}
	}
	if h.Store == nil {
		return []wire.Frame{h.status(frame, wire.StatusInternal, "storage-error")}
	}

	var (
		obj   queuestore.Object
		found bool
	)
	if h.Permanent != nil && h.Permanent.IsPermanent(queue) {
		obj, found, err = h.Store.PeekOldest(ctx, queue)
	} else {
		obj, found, err = h.Store.PopOldest(ctx, queue)
	}
	if err != nil {
		if boxerr.HasCode(err, boxerr.QueueNotFound) {
			return []wire.Frame{h.status(frame, wire.StatusBadRequest, "not-found")}
		}
		return []wire.Frame{h.status(frame, wire.StatusInternal, "storage-error")}
	}
	if !found {
		return []wire.Frame{h.status(frame, wire.StatusBadRequest, "not-found")}
	}

	reply, err := h.put(frame, queue, obj.ContentType, obj.Data)
	if err != nil {
		return []wire.Frame{h.status(frame, wire.StatusInternal, "storage-error")}
	}
	return []wire.Frame{reply}
}

// handleLocate implements spec.md §4.6's LOCATE rule.
func (h *Handler) handleLocate(frame wire.Frame) []wire.Frame {
	payload, err := wire.DecodeLocate(frame.Payload)
	if err != nil {
		return []wire.Frame{h.status(frame, wire.StatusBadRequest, "invalid-locate")}
	}
	if !h.authorize(frame) {
		return []wire.Frame{h.status(frame, wire.StatusUnauthorized, "unknown-client")}
	}
	if h.Location == nil {
		return []wire.Frame{h.status(frame, wire.StatusNotFound, "node-not-found")}
	}

	rec, ok := h.Location.ResolveNode(payload.TargetNodeID)
	if !ok {
		return []wire.Frame{h.status(frame, wire.StatusNotFound, "node-not-found")}
	}

	data, err := rec.CanonicalJSON()
	if err != nil {
		return []wire.Frame{h.status(frame, wire.StatusInternal, "storage-error")}
	}

	reply, err := h.put(frame, "/location", "application/json; charset=utf-8", data)
	if err != nil {
		return []wire.Frame{h.status(frame, wire.StatusInternal, "storage-error")}
	}
	return []wire.Frame{reply}
}

// handleSearch implements spec.md §4.6's SEARCH rule.
func (h *Handler) handleSearch(ctx context.Context, frame wire.Frame) []wire.Frame {
	payload, err := wire.DecodeSearch(frame.Payload)
	if err != nil {
		return []wire.Frame{h.status(frame, wire.StatusBadRequest, "invalid-search")}
	}
	queue, err := queuestore.NormalizeName(payload.QueuePath)
	if err != nil {
		return []wire.Frame{h.status(frame, wire.StatusBadRequest, "invalid-queue")}
	}
	if !h.authorize(frame) {
		return []wire.Frame{h.status(frame, wire.StatusUnauthorized, "unknown-client")}
	}
	if h.Store == nil {
		return []wire.Frame{h.status(frame, wire.StatusInternal, "storage-error")}
	}

	refs, err := h.Store.List(ctx, queue, 0, 0)
	if err != nil {
		if boxerr.HasCode(err, boxerr.QueueNotFound) {
			return []wire.Frame{h.status(frame, wire.StatusOK, "sync-empty")}
		}
		return []wire.Frame{h.status(frame, wire.StatusInternal, "storage-error")}
	}

	frames := make([]wire.Frame, 0, len(refs)+1)
	for _, ref := range refs {
		obj, err := h.Store.Read(ctx, ref)
		if err != nil {
			continue
		}
		reply, err := h.put(frame, queue, obj.ContentType, obj.Data)
		if err != nil {
			continue
		}
		frames = append(frames, reply)
	}
	frames = append(frames, h.status(frame, wire.StatusOK, "sync-complete"))
	return frames
}
