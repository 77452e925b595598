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

// Package boxd implements the server bootstrap sequence of spec.md
// §4.9: single-instance guard, directory/queue setup, identity
// load/rotate, precedence resolution, connectivity probe, the queue
// store and Location Service coordinator, the admin endpoint, the UDP
// socket, the port-mapping coordinator, and graceful shutdown, wired
// together with golang.org/x/sync/errgroup the same way the teacher's
// own cooperative task model (spec.md §5) runs sibling services.
package boxd

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tdelhaise/box/internal/admin"
	"github.com/tdelhaise/box/internal/boxconfig"
	"github.com/tdelhaise/box/internal/boxerr"
	"github.com/tdelhaise/box/internal/boxid"
	"github.com/tdelhaise/box/internal/boxlog"
	"github.com/tdelhaise/box/internal/boxmetrics"
	"github.com/tdelhaise/box/internal/boxpath"
	"github.com/tdelhaise/box/internal/location"
	"github.com/tdelhaise/box/internal/netprobe"
	"github.com/tdelhaise/box/internal/portmap"
	"github.com/tdelhaise/box/internal/queuestore"
	"github.com/tdelhaise/box/internal/runtime"
	"github.com/tdelhaise/box/internal/udpserver"
)

// InboxQueue is the one queue spec.md §4.9 step 3 requires to exist at
// bootstrap.
const InboxQueue = "INBOX"

// Options carries everything the CLI layer (cmd/boxd) resolves before
// calling Run: the explicit command-line overrides (a nil field means
// "not passed", per runtime.CLIOptions) and the configuration file path
// to use.
type Options struct {
	ConfigPath string
	CLI        runtime.CLIOptions
	Metrics    bool
}

// Daemon bundles every collaborator constructed during bootstrap, kept
// around so cmd/boxd can wait on it and so tests can inspect it without
// re-running bootstrap.
type Daemon struct {
	Layout   boxpath.Layout
	Logger   boxlog.Logger
	Store    *queuestore.Store
	Location *location.Coordinator
	Runtime  *runtime.Controller
	PortMap  *portmap.Coordinator
	UDP      *udpserver.Server
	Admin    *admin.Server
	Metrics  *boxmetrics.Server

	guard *instanceGuard
	group *errgroup.Group
	gctx  context.Context
}

// Bootstrap runs the 11-step sequence of spec.md §4.9 and returns a
// Daemon ready for Run. It does not block; Run drives the lifecycle.
func Bootstrap(ctx context.Context, opts Options) (*Daemon, error) {
	// Step 1: refuse root on POSIX.
	if runningAsRoot() {
		return nil, boxerr.ForbiddenOperation.Errorf("boxd refuses to run as root")
	}

	// Step 2: resolve and create ~/.box and its subdirectories.
	layout, err := boxpath.Resolve()
	if err != nil {
		return nil, err
	}
	for _, dir := range layout.Dirs() {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, boxerr.StorageUnavailable.Errorf("create %s: %v", dir, err)
		}
	}

	guard, err := acquireGuard(layout.Run)
	if err != nil {
		return nil, err
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = layout.ConfigFile
	}

	// Step 4: load or create the configuration; load or rotate identity.
	store, err := boxconfig.Open(configPath)
	if err != nil {
		_ = guard.release()
		return nil, boxerr.ConfigurationLoadFailed.Errorf("%s: %v", configPath, err)
	}
	if err := store.Validate(); err != nil {
		_ = guard.release()
		return nil, boxerr.ConfigurationLoadFailed.Errorf("%s: %v", configPath, err)
	}
	if err := store.Save(); err != nil {
		_ = guard.release()
		return nil, boxerr.ConfigurationLoadFailed.Errorf("persist repaired config: %v", err)
	}
	doc := store.Document()

	nodeUUID, err := boxid.Parse(doc.Common.NodeUUID)
	if err != nil {
		_ = guard.release()
		return nil, boxerr.ConfigurationLoadFailed.Errorf("node_uuid: %v", err)
	}
	userUUID, err := boxid.Parse(doc.Common.UserUUID)
	if err != nil {
		_ = guard.release()
		return nil, boxerr.ConfigurationLoadFailed.Errorf("user_uuid: %v", err)
	}

	if _, err := loadOrCreateIdentity(layout.Keys, nodeUUID, userUUID); err != nil {
		_ = guard.release()
		return nil, boxerr.ConfigurationLoadFailed.Errorf("identity material: %v", err)
	}

	logger, err := boxlog.New(doc.Server.LogTarget, parseLevel(doc.Server.LogLevel))
	if err != nil {
		_ = guard.release()
		return nil, err
	}
	boxlog.BridgeSPF13(logger, parseLevel(doc.Server.LogLevel))

	// Step 3: ensure INBOX exists.
	qstore := queuestore.New(layout.Queues)
	if _, _, err := qstore.EnsureQueue(ctx, InboxQueue); err != nil {
		_ = guard.release()
		return nil, boxerr.StorageUnavailable.Errorf("ensure INBOX: %v", err)
	}

	// Step 5: resolve the effective options via precedence.
	ctl := runtime.New(opts.CLI, configPath, doc, nodeUUID, userUUID, layout.Queues, runtime.Hooks{
		OnLogTargetChange: func(target string) {
			if err := logger.SetTarget(target); err != nil {
				logger.Errorf("log-target reload failed: %v", err)
			}
		},
	})

	// Step 6: probe connectivity.
	ctl.SetConnectivity(netprobe.Probe())

	// Step 7: queue store, Location Service coordinator, initial record.
	loc := location.New(qstore)
	if err := loc.Bootstrap(ctx); err != nil {
		_ = guard.release()
		return nil, boxerr.StorageUnavailable.Errorf("bootstrap location service: %v", err)
	}

	snap := ctl.Snapshot()
	if err := publishSelf(ctx, loc, ctl, snap); err != nil {
		_ = guard.release()
		return nil, err
	}

	d := &Daemon{
		Layout:   layout,
		Logger:   logger,
		Store:    qstore,
		Location: loc,
		Runtime:  ctl,
		guard:    guard,
	}

	// Step 8: start the admin endpoint, if enabled.
	if snap.AdminChannel {
		transport, err := admin.Listen(layout.AdminSocket)
		if err != nil {
			_ = guard.release()
			return nil, err
		}
		reloader := admin.StoreReloader{Store: store, Path: configPath}
		registry := admin.Verbs(admin.Collaborators{
			Runtime: ctl,
			Location: loc,
			Store:    qstore,
			Config:   reloader,
		})
		d.Admin = admin.NewServer(transport, registry, logger)
	}

	// Step 9: bind the UDP socket; rebuild the location record if the
	// requested port was ephemeral.
	handler := &udpserver.Handler{
		Store:      qstore,
		Location:   loc,
		Permanent:  ctl,
		Logger:     logger,
		ServerNode: nodeUUID,
		ServerUser: userUUID,
	}
	udpSrv, err := udpserver.Listen(fmt.Sprintf("0.0.0.0:%d", snap.Port), handler)
	if err != nil {
		if d.Admin != nil {
			_ = d.Admin.Close()
		}
		_ = guard.release()
		return nil, boxerr.StorageUnavailable.Errorf("bind udp: %v", err)
	}
	d.UDP = udpSrv

	if bound := udpSrv.LocalPort(); bound != snap.Port {
		snap.Port = bound
		if err := publishSelf(ctx, loc, ctl, snap); err != nil {
			logger.Errorf("rebuild location record after ephemeral bind: %v", err)
		}
	}

	// Step 10: start the port-mapping coordinator, if requested.
	if snap.PortMappingEnabled {
		d.PortMap = portmap.New(udpSrv.LocalPort(), ctl)
	}

	if opts.Metrics {
		collectors, reg := boxmetrics.New()
		metricsSrv, err := boxmetrics.Listen(reg)
		if err != nil {
			logger.Errorf("metrics listener failed: %v", err)
		} else {
			d.Metrics = metricsSrv
			ctl.SetMetricsAddress(metricsSrv.Addr())
			reportQueueDepths(ctx, qstore, collectors)
		}
	}

	return d, nil
}

// reportQueueDepths seeds the queue-depth gauge with current counts so
// the first /metrics scrape is not empty.
func reportQueueDepths(ctx context.Context, store *queuestore.Store, c *boxmetrics.Collectors) {
	names, err := store.Queues(ctx)
	if err != nil {
		return
	}
	for _, name := range names {
		refs, err := store.List(ctx, name, 0, 0)
		if err != nil {
			continue
		}
		c.QueueDepth.WithLabelValues(name).Set(float64(len(refs)))
	}
}

func publishSelf(ctx context.Context, loc *location.Coordinator, ctl *runtime.Controller, snap runtime.State) error {
	rec := location.NodeRecord{
		UserUUID: snap.UserUUID,
		NodeUUID: snap.NodeUUID,
		Online:   true,
		Since:    time.Now().UnixMilli(),
		LastSeen: time.Now().UnixMilli(),
		Connectivity: location.Connectivity{
			HasGlobalIPv6:  snap.Connectivity.HasGlobalIPv6,
			GlobalIPv6:     snap.Connectivity.GlobalIPv6,
			IPv6ProbeError: snap.Connectivity.ProbeError,
		},
	}
	if err := loc.Publish(ctx, rec); err != nil {
		return err
	}
	ctl.SetLastPresenceUpdate(time.Now())
	return nil
}

func parseLevel(s string) boxlog.Level {
	switch s {
	case "trace":
		return boxlog.LevelTrace
	case "debug":
		return boxlog.LevelDebug
	case "warning":
		return boxlog.LevelWarning
	case "error":
		return boxlog.LevelError
	case "critical":
		return boxlog.LevelCritical
	default:
		return boxlog.LevelInfo
	}
}

