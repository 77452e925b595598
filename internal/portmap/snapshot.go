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

// Package portmap implements the NAT / port-mapping coordinator of
// spec.md §4.4: UPnP IGD and NAT-PMP backends behind one contract, with
// scheduled refresh and graceful removal.
package portmap

import "time"

// Backend names which protocol produced a Snapshot.
type Backend string

const (
	BackendUPnP        Backend = "upnp"
	BackendNATPMP      Backend = "natpmp"
	BackendUnavailable Backend = "unavailable"
)

// Snapshot is spec.md §3's MappingSnapshot.
type Snapshot struct {
	Backend         Backend
	ExternalPort    int
	Gateway         string
	Service         string
	LifetimeSeconds int
	RefreshedAt     time.Time
}

// Handle is an opaque backend-specific mapping reference passed to
// Refresh/Remove.
type Handle interface {
	isHandle()
}

// mapper is the common map/refresh/remove contract of SPEC_FULL.md
// §4.4, implemented once per backend.
type mapper interface {
	Map(internalPort int) (Snapshot, Handle, error)
	Refresh(h Handle) (Snapshot, error)
	Remove(h Handle) error
}

func refreshDelay(lifetimeSeconds int) time.Duration {
	d := time.Duration(lifetimeSeconds/2) * time.Second
	if d < 60*time.Second {
		d = 60 * time.Second
	}
	return d
}
