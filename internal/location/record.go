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

// Package location implements the Location Service coordinator of
// spec.md §4.3: the embedded presence directory backed by the reserved
// "whoswho" queue.
package location

import (
	"sort"

	"github.com/tdelhaise/box/internal/boxid"
)

// Scope classifies an address by reachability, per spec.md §3.
type Scope string

const (
	ScopeGlobal   Scope = "global"
	ScopeLAN      Scope = "lan"
	ScopeLoopback Scope = "loopback"
)

// Source identifies how an address entry was obtained.
type Source string

const (
	SourceProbe  Source = "probe"
	SourceConfig Source = "config"
	SourceManual Source = "manual"
)

// Address is one (ip, port, scope, source) tuple of a node record.
type Address struct {
	IP     string `json:"ip"`
	Port   int    `json:"port"`
	Scope  Scope  `json:"scope"`
	Source Source `json:"source"`
}

// SortAddresses orders a slice deterministically by scope then ip, per
// spec.md §3.
func SortAddresses(addrs []Address) {
	sort.SliceStable(addrs, func(i, j int) bool {
		if addrs[i].Scope != addrs[j].Scope {
			return addrs[i].Scope < addrs[j].Scope
		}
		return addrs[i].IP < addrs[j].IP
	})
}

// PortMappingInfo is the connectivity.portMapping sub-object of a node
// record.
type PortMappingInfo struct {
	Enabled      bool   `json:"enabled"`
	Origin       string `json:"origin,omitempty"`
	ExternalIPv4 string `json:"externalIPv4,omitempty"`
	ExternalPort int    `json:"externalPort,omitempty"`
	Peer         string `json:"peer,omitempty"`
	Status       string `json:"status,omitempty"`
	Error        string `json:"error,omitempty"`
	ErrorCode    string `json:"errorCode,omitempty"`
	Reachability string `json:"reachability,omitempty"`
}

// Connectivity is the connectivity sub-object of a node record.
type Connectivity struct {
	HasGlobalIPv6  bool            `json:"hasGlobalIPv6"`
	GlobalIPv6     []string        `json:"globalIPv6,omitempty"`
	IPv6ProbeError string          `json:"ipv6ProbeError,omitempty"`
	PortMapping    PortMappingInfo `json:"portMapping"`
}

// schemaNode/schemaUser are the explicit form's markers. schemaLegacy is
// accepted on read only, per the Open Question noted in spec.md §9 and
// resolved in SPEC_FULL.md §4.3.
const (
	schemaNode   = "box.location-service.v1.node"
	schemaUser   = "box.location-service.v1.user"
	schemaLegacy = "box.location-service.v1"
)

// NodeRecord is a presence descriptor persisted as JSON in "whoswho", one
// entry per node UUID (spec.md §3 LocationNodeRecord).
type NodeRecord struct {
	UserUUID      boxid.UUID        `json:"userUUID"`
	NodeUUID      boxid.UUID        `json:"nodeUUID"`
	Addresses     []Address         `json:"addresses"`
	NodePublicKey string            `json:"nodePublicKey,omitempty"`
	Online        bool              `json:"online"`
	Since         int64             `json:"since"`
	LastSeen      int64             `json:"lastSeen"`
	Connectivity  Connectivity      `json:"connectivity"`
	Tags          map[string]string `json:"tags,omitempty"`
}

type nodeOnDisk struct {
	Schema       string            `json:"schema"`
	UserUUID     string            `json:"userUUID"`
	NodeUUID     string            `json:"nodeUUID"`
	Addresses    []Address         `json:"addresses"`
	PublicKey    string            `json:"nodePublicKey,omitempty"`
	Online       bool              `json:"online"`
	Since        int64             `json:"since"`
	LastSeen     int64             `json:"lastSeen"`
	Connectivity Connectivity      `json:"connectivity"`
	Tags         map[string]string `json:"tags,omitempty"`
}

func (r NodeRecord) toDisk() nodeOnDisk {
	addrs := append([]Address(nil), r.Addresses...)
	SortAddresses(addrs)
	return nodeOnDisk{
		Schema:       schemaNode,
		UserUUID:     r.UserUUID.String(),
		NodeUUID:     r.NodeUUID.String(),
		Addresses:    addrs,
		PublicKey:    r.NodePublicKey,
		Online:       r.Online,
		Since:        r.Since,
		LastSeen:     r.LastSeen,
		Connectivity: r.Connectivity,
		Tags:         r.Tags,
	}
}

// CanonicalJSON renders the record in its on-disk / wire form (explicit
// node schema marker, addresses sorted by scope then ip), used both by
// the queue store and by the LOCATE response of spec.md §4.6.
func (r NodeRecord) CanonicalJSON() ([]byte, error) {
	return json.Marshal(r.toDisk())
}

func nodeFromDisk(d nodeOnDisk) (NodeRecord, error) {
	userID, err := boxid.Parse(d.UserUUID)
	if err != nil {
		return NodeRecord{}, err
	}
	nodeID, err := boxid.Parse(d.NodeUUID)
	if err != nil {
		return NodeRecord{}, err
	}
	return NodeRecord{
		UserUUID:      userID,
		NodeUUID:      nodeID,
		Addresses:     d.Addresses,
		NodePublicKey: d.PublicKey,
		Online:        d.Online,
		Since:         d.Since,
		LastSeen:      d.LastSeen,
		Connectivity:  d.Connectivity,
		Tags:          d.Tags,
	}, nil
}

// UserRecord aggregates the node UUIDs a user has published (spec.md §3
// LocationUserRecord).
type UserRecord struct {
	UserUUID  boxid.UUID
	NodeUUIDs []boxid.UUID
	UpdatedAt int64
}

type userOnDisk struct {
	Schema    string   `json:"schema"`
	UserUUID  string   `json:"userUUID"`
	NodeUUIDs []string `json:"nodeUUIDs"`
	UpdatedAt int64    `json:"updatedAt"`
}

func (r UserRecord) toDisk() userOnDisk {
	ids := make([]string, len(r.NodeUUIDs))
	for i, n := range r.NodeUUIDs {
		ids[i] = n.String()
	}
	sort.Strings(ids)
	return userOnDisk{
		Schema:    schemaUser,
		UserUUID:  r.UserUUID.String(),
		NodeUUIDs: ids,
		UpdatedAt: r.UpdatedAt,
	}
}

func userFromDisk(d userOnDisk) (UserRecord, error) {
	userID, err := boxid.Parse(d.UserUUID)
	if err != nil {
		return UserRecord{}, err
	}
	ids := make([]boxid.UUID, 0, len(d.NodeUUIDs))
	for _, s := range d.NodeUUIDs {
		id, err := boxid.Parse(s)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return boxid.Compare(ids[i], ids[j]) < 0 })
	return UserRecord{UserUUID: userID, NodeUUIDs: ids, UpdatedAt: d.UpdatedAt}, nil
}
