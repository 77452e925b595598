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

package portmap

import (
	"context"
	"net"
	"os"
	"sync"
	"time"

	"github.com/tdelhaise/box/internal/boxerr"
)

// Publisher receives coordinator snapshots for the runtime controller,
// per spec.md §4.4 ("publishes a MappingSnapshot to the runtime
// controller"). The runtime package implements this against
// RuntimeState.
type Publisher interface {
	PublishMappingSnapshot(Snapshot)
	PublishMappingLost()
}

// Coordinator discovers and maintains one external UDP port mapping for
// the daemon's listening port, refreshing it on a schedule and removing
// it on Stop, per spec.md §4.4.
type Coordinator struct {
	internalPort int
	publisher    Publisher

	mu      sync.Mutex
	active  mapper
	handle  Handle
	cancel  context.CancelFunc
	stopped chan struct{}
}

// New builds a Coordinator for internalPort. Start must be called to
// begin probing and mapping.
func New(internalPort int, publisher Publisher) *Coordinator {
	return &Coordinator{internalPort: internalPort, publisher: publisher}
}

// SkipProbeEnv is the environment variable of spec.md §6 that disables
// port-mapping discovery entirely.
const SkipProbeEnv = "BOX_SKIP_NAT_PROBE"

// ProbeSkipped reports whether BOX_SKIP_NAT_PROBE=1 is set.
func ProbeSkipped() bool {
	return os.Getenv(SkipProbeEnv) == "1"
}

// defaultGateway returns the first IPv4 default route's next hop is not
// introspectable without platform-specific syscalls; Box instead infers
// the gateway as the .1 host of the first non-loopback IPv4 interface's
// subnet, a pragmatic heuristic used when SSDP discovery (which yields
// its own gateway host from the LOCATION header) fails and NAT-PMP must
// be tried directly.
func defaultGateway() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			v4 := ipNet.IP.To4()
			if v4 == nil || v4.IsLoopback() {
				continue
			}
			gw := make(net.IP, len(v4))
			copy(gw, v4)
			gw[3] = 1
			return gw.String(), nil
		}
	}
	return "", boxerr.PortMapping.Errorf("no usable ipv4 interface found")
}

// probe selects a backend: UPnP IGD discovery is tried first (spec.md
// §4.4 item 1), falling back to NAT-PMP against the heuristic gateway
// (item 2).
func probe(timeout time.Duration) (mapper, error) {
	if m, err := discoverUPnPMapper(timeout); err == nil {
		return m, nil
	}

	gw, err := defaultGateway()
	if err != nil {
		return nil, boxerr.PortMapping.Errorf("no port-mapping backend available: %v", err)
	}
	return newNATPMPMapper(gw), nil
}

// Start probes for a backend, performs the initial mapping, publishes
// the resulting snapshot, and schedules refreshes until ctx is
// cancelled or Stop is called. It returns immediately after the first
// successful mapping; refresh runs in a background goroutine.
//
// On Windows, per spec.md §4.4, no UPnP/NAT-PMP discovery is attempted
// at all: Start reports an empty, BackendUnavailable snapshot and
// returns.
func (c *Coordinator) Start(ctx context.Context) error {
	if !platformSupported {
		if c.publisher != nil {
			c.publisher.PublishMappingSnapshot(Snapshot{Backend: BackendUnavailable})
		}
		return nil
	}

	if ProbeSkipped() {
		return nil
	}

	m, err := probe(5 * time.Second)
	if err != nil {
		return err
	}

	snap, handle, err := m.Map(c.internalPort)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.active = m
	c.handle = handle
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.stopped = make(chan struct{})
	c.mu.Unlock()

	if c.publisher != nil {
		c.publisher.PublishMappingSnapshot(snap)
	}

	go c.refreshLoop(runCtx, snap.LifetimeSeconds)
	return nil
}

// refreshLoop re-maps at lifetime/2 (minimum 60s), per spec.md §4.4. On
// refresh failure it reports a null snapshot and terminates, exactly as
// spec.md prescribes ("On refresh failure the coordinator reports a
// null snapshot and terminates").
func (c *Coordinator) refreshLoop(ctx context.Context, lifetimeSeconds int) {
	defer close(c.stopped)

	timer := time.NewTimer(refreshDelay(lifetimeSeconds))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			c.mu.Lock()
			m, h := c.active, c.handle
			c.mu.Unlock()

			snap, err := m.Refresh(h)
			if err != nil {
				if c.publisher != nil {
					c.publisher.PublishMappingLost()
				}
				return
			}
			if c.publisher != nil {
				c.publisher.PublishMappingSnapshot(snap)
			}
			timer.Reset(refreshDelay(snap.LifetimeSeconds))
		}
	}
}

// ProbeOnce performs a fresh backend discovery and mapping attempt
// without touching the coordinator's active mapping, for the admin
// control plane's "nat-probe" verb. When gateway is non-empty, NAT-PMP
// is tried directly against it instead of running UPnP/heuristic
// discovery.
func ProbeOnce(internalPort int, gateway string, timeout time.Duration) (Snapshot, error) {
	var m mapper
	var err error
	if gateway != "" {
		m = newNATPMPMapper(gateway)
	} else {
		m, err = probe(timeout)
		if err != nil {
			return Snapshot{}, err
		}
	}

	snap, handle, err := m.Map(internalPort)
	if err != nil {
		return Snapshot{}, err
	}
	_ = m.Remove(handle)
	return snap, nil
}

// Stop cancels the refresh loop, waits for it to exit, and issues a
// DeletePortMapping (UPnP) or zero-lifetime map request (NAT-PMP), per
// spec.md §4.4.
func (c *Coordinator) Stop(ctx context.Context) error {
	c.mu.Lock()
	m, h, cancel, stopped := c.active, c.handle, c.cancel, c.stopped
	c.mu.Unlock()

	if m == nil {
		return nil
	}
	if cancel != nil {
		cancel()
	}
	if stopped != nil {
		select {
		case <-stopped:
		case <-ctx.Done():
		}
	}
	return m.Remove(h)
}
