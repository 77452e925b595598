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

package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/tdelhaise/box/internal/boxconfig"
	"github.com/tdelhaise/box/internal/boxid"
	"github.com/tdelhaise/box/internal/location"
	"github.com/tdelhaise/box/internal/portmap"
	"github.com/tdelhaise/box/internal/queuestore"
	"github.com/tdelhaise/box/internal/runtime"
	"github.com/tdelhaise/box/internal/udpserver"
	"github.com/tdelhaise/box/internal/wire"
)

// ConfigReloader loads and validates the configuration document at
// path, the collaborator the "reload-config" verb drives.
type ConfigReloader interface {
	Reload(path string) (boxconfig.Document, error)
}

// Collaborators bundles everything the nine spec.md §4.8 verbs (plus
// the two supplemental ones) need.
type Collaborators struct {
	Runtime  *runtime.Controller
	Location *location.Coordinator
	Store    *queuestore.Store
	PortMap  *portmap.Coordinator
	Config   ConfigReloader
}

// Verbs builds the full Registry: ping, status, stats, log-target,
// reload-config, locate, nat-probe, location-summary, sync-roots
// (spec.md §4.8), plus version and queue-list (SPEC_FULL.md §4.8).
func Verbs(c Collaborators) *Registry {
	return NewRegistry(
		Command{Name: "ping", Describe: "liveness check", Run: verbPing},
		Command{Name: "version", Describe: "report the running build version", Run: verbVersion},
		Command{Name: "status", Describe: "full runtime snapshot", Run: c.verbStatus},
		Command{Name: "stats", Describe: "runtime snapshot plus queue metrics", Run: c.verbStats},
		Command{Name: "log-target", Describe: "update the runtime log sink", Run: c.verbLogTarget},
		Command{Name: "reload-config", Describe: "re-read the configuration file", Run: c.verbReloadConfig},
		Command{Name: "locate", Describe: "resolve a node or user UUID", Run: c.verbLocate},
		Command{Name: "nat-probe", Describe: "one-shot port-mapping probe", Run: c.verbNatProbe},
		Command{Name: "location-summary", Describe: "aggregate presence counters and stale nodes", Run: c.verbLocationSummary},
		Command{Name: "sync-roots", Describe: "republish this node to every configured root", Run: c.verbSyncRoots},
		Command{Name: "queue-list", Describe: "list a queue's entries without dequeuing", Run: c.verbQueueList},
	)
}

func verbPing(ctx context.Context, raw json.RawMessage) (any, error) {
	return map[string]any{"message": fmt.Sprintf("pong %s", udpserver.VersionString)}, nil
}

func verbVersion(ctx context.Context, raw json.RawMessage) (any, error) {
	return map[string]any{"version": udpserver.VersionString}, nil
}

func (c Collaborators) verbStatus(ctx context.Context, raw json.RawMessage) (any, error) {
	return StatusPayloadFor(c.Runtime), nil
}

// StatusPayloadFor exposes runtime.StatusPayload under the admin
// package so both "status" and "stats" share one construction path.
func StatusPayloadFor(ctl *runtime.Controller) map[string]any {
	return runtime.StatusPayload(ctl.Snapshot())
}

func (c Collaborators) verbStats(ctx context.Context, raw json.RawMessage) (any, error) {
	payload := StatusPayloadFor(c.Runtime)

	queues, err := c.Store.Queues(ctx)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, q := range queues {
		refs, err := c.Store.List(ctx, q, 0, 0)
		if err != nil {
			continue
		}
		total += len(refs)
	}

	payload["queues"] = queues
	payload["queueCount"] = len(queues)
	payload["objects"] = total
	return payload, nil
}

func (c Collaborators) verbLogTarget(ctx context.Context, raw json.RawMessage) (any, error) {
	target, err := StringArg(raw, "target")
	if err != nil {
		return nil, err
	}
	if target == "" {
		return nil, PayloadError(fmt.Errorf("log-target requires a target"))
	}
	c.Runtime.SetLogTarget(target)
	return map[string]any{"logTarget": target}, nil
}

func (c Collaborators) verbReloadConfig(ctx context.Context, raw json.RawMessage) (any, error) {
	path, err := StringArg(raw, "path")
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = c.Runtime.Snapshot().ConfigPath
	}

	doc, err := c.Config.Reload(path)
	if err != nil {
		return map[string]any{"status": "error", "message": err.Error()}, nil
	}

	status, rerr := c.Runtime.Reload(ctx, path, doc)
	result := map[string]any{"status": status, "reloadCount": c.Runtime.Snapshot().ReloadCount}
	if rerr != nil {
		result["message"] = rerr.Error()
	}
	return result, nil
}

func (c Collaborators) verbLocate(ctx context.Context, raw json.RawMessage) (any, error) {
	target, err := StringArg(raw, "node")
	if err != nil {
		return nil, err
	}
	if target == "" {
		return nil, PayloadError(fmt.Errorf("locate requires a node or user UUID"))
	}

	id, err := boxid.Parse(target)
	if err != nil {
		return nil, PayloadError(err)
	}

	if rec, ok := c.Location.ResolveNode(id); ok {
		return map[string]any{"node": rec}, nil
	}
	if users := c.Location.ResolveUser(id); len(users) > 0 {
		return map[string]any{"nodes": users}, nil
	}
	return map[string]any{"status": "error", "message": "not-found"}, nil
}

func (c Collaborators) verbNatProbe(ctx context.Context, raw json.RawMessage) (any, error) {
	gateway, err := StringArg(raw, "gateway")
	if err != nil {
		return nil, err
	}

	port := c.Runtime.Snapshot().Port
	snap, err := portmap.ProbeOnce(port, gateway, 5*time.Second)
	if err != nil {
		return map[string]any{"status": "error", "message": err.Error()}, nil
	}
	return map[string]any{
		"backend":         string(snap.Backend),
		"externalPort":    snap.ExternalPort,
		"gateway":         snap.Gateway,
		"service":         snap.Service,
		"lifetimeSeconds": snap.LifetimeSeconds,
	}, nil
}

func (c Collaborators) verbLocationSummary(ctx context.Context, raw json.RawMessage) (any, error) {
	nodes := c.Location.Snapshot()
	stale := 0
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if c.Location.IsStale(n) {
			stale++
		}
		names = append(names, n.NodeUUID.String())
	}
	return map[string]any{
		"nodeCount":  len(nodes),
		"staleCount": stale,
		"nodes":      names,
	}, nil
}

func (c Collaborators) verbSyncRoots(ctx context.Context, raw json.RawMessage) (any, error) {
	snap := c.Runtime.Snapshot()
	rec, ok := c.Location.ResolveNode(snap.NodeUUID)
	if !ok {
		return map[string]any{"status": "error", "message": "node-not-published"}, nil
	}

	data, err := rec.CanonicalJSON()
	if err != nil {
		return nil, err
	}

	sent := 0
	var lastErr error
	for _, root := range snap.RootServers {
		if err := sendWhoswho(root, snap.NodeUUID, snap.UserUUID, data); err != nil {
			lastErr = err
			continue
		}
		sent++
	}

	result := map[string]any{"sent": sent, "total": len(snap.RootServers)}
	if lastErr != nil && sent < len(snap.RootServers) {
		result["message"] = lastErr.Error()
	}
	return result, nil
}

// sendWhoswho best-effort republishes rec to one configured root server
// over the wire protocol's PUT command against the whoswho queue.
func sendWhoswho(root boxconfig.RootServer, nodeID, userID boxid.UUID, data []byte) error {
	port := root.Port
	if port == 0 {
		port = boxconfig.DefaultServerPort
	}
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", root.Address, port))
	if err != nil {
		return err
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	payload, err := wire.PutPayload{
		QueuePath:   queuestore.WhoswhoQueue,
		ContentType: "application/json; charset=utf-8",
		Data:        data,
	}.Encode()
	if err != nil {
		return err
	}

	raw, err := wire.Encode(wire.Frame{
		Version:   wire.Version,
		Command:   wire.CmdPut,
		RequestID: boxid.MustNew(),
		NodeID:    nodeID,
		UserID:    userID,
		Payload:   payload,
	})
	if err != nil {
		return err
	}

	_ = conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	_, err = conn.Write(raw)
	return err
}

func (c Collaborators) verbQueueList(ctx context.Context, raw json.RawMessage) (any, error) {
	queue, err := StringArg(raw, "queue")
	if err != nil {
		return nil, err
	}
	if queue == "" {
		return nil, PayloadError(fmt.Errorf("queue-list requires a queue name"))
	}

	refs, err := c.Store.List(ctx, queue, 0, 0)
	if err != nil {
		return map[string]any{"status": "error", "message": "not-found"}, nil
	}

	entries := make([]string, 0, len(refs))
	for _, r := range refs {
		entries = append(entries, r.FileName)
	}
	return map[string]any{"queue": queue, "count": len(entries), "entries": entries}, nil
}
