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

package location

import (
	"context"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/tdelhaise/box/internal/boxerr"
	"github.com/tdelhaise/box/internal/boxid"
	"github.com/tdelhaise/box/internal/boxvalue"
	"github.com/tdelhaise/box/internal/queuestore"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StaleAfter is the default staleness threshold of spec.md §4.3: records
// older than this since lastSeen are reported stale but remain
// resolvable.
const StaleAfter = 15 * time.Minute

// Coordinator holds the canonical presence index and is the only writer
// of the "whoswho" queue's semantics (though queuestore.Store owns the
// actual files). Lookups use boxvalue.SyncMap so resolve/authorize never
// block on publish, per spec.md §5 ("likewise serialized" refers to
// writes; reads are lock-free here).
type Coordinator struct {
	store *queuestore.Store

	nodesByNode boxvalue.SyncMap[boxid.UUID, NodeRecord]
	nodesByUser boxvalue.SyncMap[boxid.UUID, map[boxid.UUID]struct{}]
	userRecords boxvalue.SyncMap[boxid.UUID, UserRecord]

	staleAfter time.Duration
}

// New builds a Coordinator over store. Call Bootstrap once before
// serving requests to replay "whoswho" into memory.
func New(store *queuestore.Store) *Coordinator {
	return &Coordinator{store: store, staleAfter: StaleAfter}
}

// SetStaleAfter overrides the staleness threshold (configurable per
// spec.md §9's Open Question).
func (c *Coordinator) SetStaleAfter(d time.Duration) {
	if d > 0 {
		c.staleAfter = d
	}
}

// Bootstrap reads every entry from "whoswho" and rebuilds the in-memory
// maps, per spec.md §4.3. Malformed or unrecognized entries are skipped.
func (c *Coordinator) Bootstrap(ctx context.Context) error {
	refs, err := c.store.List(ctx, queuestore.WhoswhoQueue, 0, 0)
	if err != nil {
		if boxerr.HasCode(err, boxerr.QueueNotFound) {
			return nil
		}
		return err
	}

	for _, ref := range refs {
		obj, err := c.store.Read(ctx, ref)
		if err != nil {
			continue
		}
		c.ingest(obj)
	}
	return nil
}

// ingest decodes one stored whoswho entry and applies it to the
// in-memory indexes without writing back to the store (used by
// Bootstrap replay).
func (c *Coordinator) ingest(obj queuestore.Object) {
	var probe struct {
		Schema string `json:"schema"`
	}
	if err := json.Unmarshal(obj.Data, &probe); err != nil {
		return
	}

	switch probe.Schema {
	case schemaNode, schemaLegacy:
		var d nodeOnDisk
		if err := json.Unmarshal(obj.Data, &d); err != nil {
			return
		}
		rec, err := nodeFromDisk(d)
		if err != nil {
			return
		}
		c.applyNode(rec)
	case schemaUser:
		var d userOnDisk
		if err := json.Unmarshal(obj.Data, &d); err != nil {
			return
		}
		rec, err := userFromDisk(d)
		if err != nil {
			return
		}
		c.userRecords.Store(rec.UserUUID, rec)
	}
}

func (c *Coordinator) applyNode(rec NodeRecord) {
	c.nodesByNode.Store(rec.NodeUUID, rec)

	set, _ := c.nodesByUser.Load(rec.UserUUID)
	if set == nil {
		set = map[boxid.UUID]struct{}{}
	} else {
		// copy-on-write: SyncMap values are not mutated in place.
		cp := make(map[boxid.UUID]struct{}, len(set)+1)
		for k := range set {
			cp[k] = struct{}{}
		}
		set = cp
	}
	set[rec.NodeUUID] = struct{}{}
	c.nodesByUser.Store(rec.UserUUID, set)
}

// Publish replaces the in-memory node record, updates the user inverse,
// persists via Put on "whoswho" (which clears any prior entry with the
// same ID), and (re)builds + persists the user record, per spec.md §4.3.
func (c *Coordinator) Publish(ctx context.Context, rec NodeRecord) error {
	c.applyNode(rec)

	data, err := json.Marshal(rec.toDisk())
	if err != nil {
		return err
	}
	if err := c.store.Put(ctx, queuestore.WhoswhoQueue, queuestore.Object{
		ID:          rec.NodeUUID,
		ContentType: "application/json; charset=utf-8",
		Data:        data,
		CreatedAt:   time.Now().UTC(),
		NodeID:      rec.NodeUUID,
		UserID:      rec.UserUUID,
	}); err != nil {
		return err
	}

	nodeSet, _ := c.nodesByUser.Load(rec.UserUUID)
	ids := make([]boxid.UUID, 0, len(nodeSet))
	for id := range nodeSet {
		ids = append(ids, id)
	}
	userRec := UserRecord{UserUUID: rec.UserUUID, NodeUUIDs: ids, UpdatedAt: time.Now().UnixMilli()}
	c.userRecords.Store(rec.UserUUID, userRec)

	udata, err := json.Marshal(userRec.toDisk())
	if err != nil {
		return err
	}
	return c.store.Put(ctx, queuestore.WhoswhoQueue, queuestore.Object{
		ID:          rec.UserUUID,
		ContentType: "application/json; charset=utf-8",
		Data:        udata,
		CreatedAt:   time.Now().UTC(),
		NodeID:      rec.NodeUUID,
		UserID:      rec.UserUUID,
	})
}

// ResolveNode is an O(1) lookup of a node record.
func (c *Coordinator) ResolveNode(nodeUUID boxid.UUID) (NodeRecord, bool) {
	return c.nodesByNode.Load(nodeUUID)
}

// ResolveUser returns the sorted list of node records associated with a
// user UUID.
func (c *Coordinator) ResolveUser(userUUID boxid.UUID) []NodeRecord {
	set, _ := c.nodesByUser.Load(userUUID)
	out := make([]NodeRecord, 0, len(set))
	for id := range set {
		if rec, ok := c.nodesByNode.Load(id); ok {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return boxid.Compare(out[i].NodeUUID, out[j].NodeUUID) < 0 })
	return out
}

// Authorize reports whether nodeUUID is known and mapped to userUUID.
func (c *Coordinator) Authorize(nodeUUID, userUUID boxid.UUID) bool {
	rec, ok := c.nodesByNode.Load(nodeUUID)
	return ok && rec.UserUUID == userUUID
}

// Snapshot returns every node record sorted by node UUID, for admin
// reporting (location-summary, stats).
func (c *Coordinator) Snapshot() []NodeRecord {
	out := make([]NodeRecord, 0)
	c.nodesByNode.Range(func(_ boxid.UUID, rec NodeRecord) bool {
		out = append(out, rec)
		return true
	})
	sort.Slice(out, func(i, j int) bool { return boxid.Compare(out[i].NodeUUID, out[j].NodeUUID) < 0 })
	return out
}

// IsStale reports whether rec's lastSeen is older than the configured
// staleness threshold.
func (c *Coordinator) IsStale(rec NodeRecord) bool {
	last := time.UnixMilli(rec.LastSeen)
	return time.Since(last) > c.staleAfter
}

// SelfRegister implements the self-registration exception of spec.md
// §4.3: a PUT targeting "whoswho" whose JSON body decodes as a node or
// user record matching the sender's own identity is accepted even if the
// sender is not yet authorized.
func SelfRegister(data []byte, frameNodeID, frameUserID boxid.UUID) bool {
	var probe struct {
		Schema    string   `json:"schema"`
		UserUUID  string   `json:"userUUID"`
		NodeUUID  string   `json:"nodeUUID"`
		NodeUUIDs []string `json:"nodeUUIDs"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}

	switch probe.Schema {
	case schemaNode, schemaLegacy:
		nodeID, err := boxid.Parse(probe.NodeUUID)
		if err != nil || nodeID != frameNodeID {
			return false
		}
		userID, err := boxid.Parse(probe.UserUUID)
		return err == nil && userID == frameUserID
	case schemaUser:
		userID, err := boxid.Parse(probe.UserUUID)
		if err != nil || userID != frameUserID {
			return false
		}
		for _, s := range probe.NodeUUIDs {
			if id, err := boxid.Parse(s); err == nil && id == frameNodeID {
				return true
			}
		}
		return false
	default:
		return false
	}
}
