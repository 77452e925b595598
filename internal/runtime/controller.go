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
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/tdelhaise/box/internal/boxconfig"
	"github.com/tdelhaise/box/internal/boxid"
	"github.com/tdelhaise/box/internal/netprobe"
	"github.com/tdelhaise/box/internal/portmap"
)

// PortEnvVar is BOXD_PORT of spec.md §6: server port override, ranked
// below CLI but above the configuration file.
const PortEnvVar = "BOXD_PORT"

// CLIOptions carries only the flags the operator actually passed.
// Pointer fields distinguish "not passed" (nil) from "passed as the
// zero value", which matters for precedence.
type CLIOptions struct {
	Port         *int
	LogLevel     *string
	LogTarget    *string
	AdminChannel *bool
}

// Hooks are the side effects spec.md §4.7 requires on reload. All are
// optional; a nil hook is skipped.
type Hooks struct {
	OnLogTargetChange            func(target string)
	OnPermanentQueuesChange      func(names map[string]struct{})
	OnPortMappingPreferenceReset func(enabled bool)
	Republish                    func(ctx context.Context) error
}

// Controller owns one RuntimeState behind a single mutex, per spec.md
// §4.7 and §5 ("one mutex over the RuntimeState struct; critical
// sections are short").
type Controller struct {
	mu    sync.Mutex
	state State
	cli   CLIOptions
	hooks Hooks
}

// New resolves the initial RuntimeState from the four-tier precedence
// (CLI > env > config > default) and constructs a Controller.
func New(cli CLIOptions, configPath string, doc boxconfig.Document, nodeUUID, userUUID boxid.UUID, queueRoot string, hooks Hooks) *Controller {
	c := &Controller{cli: cli, hooks: hooks}
	c.state = resolve(State{}, cli, doc, false)
	c.state.ConfigPath = configPath
	c.state.Config = doc
	c.state.NodeUUID = nodeUUID
	c.state.UserUUID = userUUID
	c.state.QueueRoot = queueRoot
	c.state.PermanentQueues = permanentSet(doc.Server.PermanentQueues)
	c.state.RootServers = append([]boxconfig.RootServer(nil), doc.Common.RootServers...)
	return c
}

// resolve applies the precedence rule of spec.md §4.7 to produce the
// port/log-level/log-target/admin-channel/port-mapping fields of a new
// state built from prev and doc. When preserveCLI is true, any field
// whose origin in prev is already OriginCLI keeps its prior value and
// origin untouched — the reload-time exception.
func resolve(prev State, cli CLIOptions, doc boxconfig.Document, preserveCLI bool) State {
	next := prev

	resolveInt := func(cur int, curOrigin Origin, flag *int, env string, cfg int, def int) (int, Origin) {
		if preserveCLI && curOrigin == OriginCLI {
			return cur, curOrigin
		}
		if flag != nil {
			return *flag, OriginCLI
		}
		if env != "" {
			if v, err := strconv.Atoi(env); err == nil {
				return v, OriginEnv
			}
		}
		if cfg != 0 {
			return cfg, OriginConfig
		}
		return def, OriginDefault
	}

	resolveString := func(cur string, curOrigin Origin, flag *string, cfg string, def string) (string, Origin) {
		if preserveCLI && curOrigin == OriginCLI {
			return cur, curOrigin
		}
		if flag != nil {
			return *flag, OriginCLI
		}
		if cfg != "" {
			return cfg, OriginConfig
		}
		return def, OriginDefault
	}

	resolveBool := func(cur bool, curOrigin Origin, flag *bool, cfgPresent bool, cfg bool) (bool, Origin) {
		if preserveCLI && curOrigin == OriginCLI {
			return cur, curOrigin
		}
		if flag != nil {
			return *flag, OriginCLI
		}
		if cfgPresent {
			return cfg, OriginConfig
		}
		return cfg, OriginDefault
	}

	next.Port, next.PortOrigin = resolveInt(prev.Port, prev.PortOrigin, cli.Port, os.Getenv(PortEnvVar), doc.Server.Port, boxconfig.DefaultServerPort)
	next.LogLevel, next.LogLevelOrigin = resolveString(prev.LogLevel, prev.LogLevelOrigin, cli.LogLevel, doc.Server.LogLevel, boxconfig.DefaultLogLevel)
	next.LogTarget, next.LogTargetOrigin = resolveString(prev.LogTarget, prev.LogTargetOrigin, cli.LogTarget, doc.Server.LogTarget, boxconfig.DefaultLogTarget)
	next.AdminChannel, next.AdminChannelOrigin = resolveBool(prev.AdminChannel, prev.AdminChannelOrigin, cli.AdminChannel, true, doc.Server.AdminChannel)
	next.PortMappingEnabled, next.PortMappingOrigin = resolveBool(prev.PortMappingEnabled, prev.PortMappingOrigin, nil, true, doc.Server.PortMapping)

	return next
}

// Snapshot returns a deep copy of the current state, safe to read
// without holding the controller's mutex.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// IsPermanent reports whether name is in the permanent queue set,
// satisfying udpserver.PermanentQueues.
func (c *Controller) IsPermanent(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.state.PermanentQueues[name]
	return ok
}

// SetLogTarget applies an admin log-target command; origin becomes
// OriginRuntime per spec.md §4.8's log-target row.
func (c *Controller) SetLogTarget(target string) {
	c.mu.Lock()
	c.state.LogTarget = target
	c.state.LogTargetOrigin = OriginRuntime
	c.mu.Unlock()

	if c.hooks.OnLogTargetChange != nil {
		c.hooks.OnLogTargetChange(target)
	}
}

// SetMetricsAddress records the loopback address the metrics HTTP
// listener bound to, reported as metricsAddress in the admin status
// payload once boxmetrics.Listen resolves it.
func (c *Controller) SetMetricsAddress(addr string) {
	c.mu.Lock()
	c.state.MetricsAddress = addr
	c.mu.Unlock()
}

// SetConnectivity records the connectivity probe's result.
func (c *Controller) SetConnectivity(r netprobe.Result) {
	c.mu.Lock()
	c.state.Connectivity = r
	c.mu.Unlock()
}

// SetLastPresenceUpdate records the timestamp of the most recent
// successful Location Service publish.
func (c *Controller) SetLastPresenceUpdate(t time.Time) {
	c.mu.Lock()
	c.state.LastPresenceUpdate = t
	c.mu.Unlock()
}

// PublishMappingSnapshot implements portmap.Publisher.
func (c *Controller) PublishMappingSnapshot(s portmap.Snapshot) {
	c.mu.Lock()
	c.state.PortMapping = &s
	c.mu.Unlock()
}

// PublishMappingLost implements portmap.Publisher.
func (c *Controller) PublishMappingLost() {
	c.mu.Lock()
	c.state.PortMapping = nil
	c.mu.Unlock()
}

// Reload implements spec.md §4.7's reload-config: re-resolve every
// option from the fresh document, except that any field whose current
// origin is OriginCLI is left untouched, then runs the recorded side
// effects. It returns the status recorded into the state ("ok" or
// "partial") and any hook error encountered.
func (c *Controller) Reload(ctx context.Context, configPath string, doc boxconfig.Document) (status string, err error) {
	c.mu.Lock()
	next := resolve(c.state, c.cli, doc, true)
	next.ConfigPath = configPath
	next.Config = doc
	next.PermanentQueues = permanentSet(doc.Server.PermanentQueues)
	next.RootServers = append([]boxconfig.RootServer(nil), doc.Common.RootServers...)
	next.ReloadCount = c.state.ReloadCount + 1
	next.LastReloadAt = time.Now()
	c.state = next
	logTarget := next.LogTarget
	permanent := next.PermanentQueues
	portMappingEnabled := next.PortMappingEnabled
	c.mu.Unlock()

	status = "ok"
	var errs []error

	if c.hooks.OnLogTargetChange != nil {
		c.hooks.OnLogTargetChange(logTarget)
	}
	if c.hooks.OnPermanentQueuesChange != nil {
		c.hooks.OnPermanentQueuesChange(permanent)
	}
	if c.hooks.OnPortMappingPreferenceReset != nil {
		c.hooks.OnPortMappingPreferenceReset(portMappingEnabled)
	}
	if c.hooks.Republish != nil {
		if rerr := c.hooks.Republish(ctx); rerr != nil {
			errs = append(errs, fmt.Errorf("republish: %w", rerr))
		}
	}

	if len(errs) > 0 {
		status = "partial"
		err = errs[0]
	}

	c.mu.Lock()
	c.state.LastReloadStatus = status
	if err != nil {
		c.state.LastReloadError = err.Error()
	} else {
		c.state.LastReloadError = ""
	}
	c.mu.Unlock()

	return status, err
}
