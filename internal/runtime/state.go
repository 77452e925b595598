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

package runtime

import (
	"time"

	"github.com/tdelhaise/box/internal/boxconfig"
	"github.com/tdelhaise/box/internal/boxid"
	"github.com/tdelhaise/box/internal/netprobe"
	"github.com/tdelhaise/box/internal/portmap"
)

// State is spec.md §3's RuntimeState: every field the admin status
// payload and the reload logic need, plus the origin of each resolved
// option so a later reload knows which fields it is allowed to touch.
type State struct {
	Port       int
	PortOrigin Origin

	LogLevel       string
	LogLevelOrigin Origin

	LogTarget       string
	LogTargetOrigin Origin

	AdminChannel       bool
	AdminChannelOrigin Origin

	PortMappingEnabled bool
	PortMappingOrigin  Origin
	PortMapping        *portmap.Snapshot

	ConfigPath string
	Config     boxconfig.Document

	NodeUUID  boxid.UUID
	UserUUID  boxid.UUID
	QueueRoot string

	ReloadCount      int
	LastReloadAt     time.Time
	LastReloadStatus string
	LastReloadError  string

	Connectivity netprobe.Result

	LastPresenceUpdate time.Time

	PermanentQueues map[string]struct{}
	RootServers     []boxconfig.RootServer

	MetricsAddress string
}

// clone deep-copies the map/slice fields so a Snapshot caller cannot
// mutate live state through its result.
func (s State) clone() State {
	out := s
	if s.PortMapping != nil {
		snap := *s.PortMapping
		out.PortMapping = &snap
	}
	if s.PermanentQueues != nil {
		out.PermanentQueues = make(map[string]struct{}, len(s.PermanentQueues))
		for k := range s.PermanentQueues {
			out.PermanentQueues[k] = struct{}{}
		}
	}
	if s.RootServers != nil {
		out.RootServers = append([]boxconfig.RootServer(nil), s.RootServers...)
	}
	if s.Connectivity.GlobalIPv6 != nil {
		out.Connectivity.GlobalIPv6 = append([]string(nil), s.Connectivity.GlobalIPv6...)
	}
	return out
}

func permanentSet(names []string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}
