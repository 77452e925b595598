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

// Package queuestore implements the durable, on-disk FIFO queue store of
// spec.md §4.2: atomic writes, ordered dequeue, at-most-one-consumer
// semantics per process.
package queuestore

import (
	"time"

	"github.com/tdelhaise/box/internal/boxid"
)

// Object is a durable queue entry (spec.md §3 StoredObject). Once
// written, the tuple (queue, ID) is immutable.
type Object struct {
	ID           boxid.UUID
	ContentType  string
	Data         []byte
	CreatedAt    time.Time
	NodeID       boxid.UUID
	UserID       boxid.UUID
	UserMetadata map[string]string
}

// onDisk mirrors the JSON schema of spec.md §4.2:
// {id, contentType, content (base64), createdAt (ISO-8601), nodeId, userId, userMetadata?}.
type onDisk struct {
	ID           string            `json:"id"`
	ContentType  string            `json:"contentType"`
	Content      []byte            `json:"content"`
	CreatedAt    string            `json:"createdAt"`
	NodeID       string            `json:"nodeId"`
	UserID       string            `json:"userId"`
	UserMetadata map[string]string `json:"userMetadata,omitempty"`
}

const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// basicTimestampLayout renders the lexically sortable UTC basic
// timestamp used in the on-disk file name, e.g. "20260730T143000Z".
const basicTimestampLayout = "20060102T150405Z"

func (o Object) fileStem() string {
	return o.CreatedAt.UTC().Format(basicTimestampLayout) + "-" + o.ID.String()
}

func (o Object) toDisk() onDisk {
	return onDisk{
		ID:           o.ID.String(),
		ContentType:  o.ContentType,
		Content:      o.Data,
		CreatedAt:    o.CreatedAt.UTC().Format(isoLayout),
		NodeID:       o.NodeID.String(),
		UserID:       o.UserID.String(),
		UserMetadata: o.UserMetadata,
	}
}

func fromDisk(d onDisk) (Object, error) {
	id, err := boxid.Parse(d.ID)
	if err != nil {
		return Object{}, err
	}
	nodeID, err := boxid.Parse(d.NodeID)
	if err != nil {
		return Object{}, err
	}
	userID, err := boxid.Parse(d.UserID)
	if err != nil {
		return Object{}, err
	}
	createdAt, err := time.Parse(isoLayout, d.CreatedAt)
	if err != nil {
		return Object{}, err
	}

	return Object{
		ID:           id,
		ContentType:  d.ContentType,
		Data:         d.Content,
		CreatedAt:    createdAt,
		NodeID:       nodeID,
		UserID:       userID,
		UserMetadata: d.UserMetadata,
	}, nil
}
