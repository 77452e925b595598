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

package boxd

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run drives every started collaborator (UDP loop, admin endpoint,
// port-mapping coordinator) as errgroup siblings, per spec.md §4.9 step
// 11 and §5's cooperative task model: cancelling ctx, or any one
// sibling returning an error, stops the others, and Run returns once
// every sibling has unwound. Shutdown order on the way out is
// port-mapping stop (removing its mapping), admin close (deleting the
// socket file), then the UDP loop's own drain.
func (d *Daemon) Run(ctx context.Context) error {
	group, gctx := errgroup.WithContext(ctx)
	d.group = group
	d.gctx = gctx

	group.Go(func() error {
		return d.UDP.Serve(gctx)
	})

	if d.Admin != nil {
		group.Go(func() error {
			return d.Admin.Serve(gctx)
		})
	}

	if d.PortMap != nil {
		if err := d.PortMap.Start(gctx); err != nil {
			d.Logger.Errorf("port-mapping coordinator failed to start: %v", err)
		}
	}

	if d.Metrics != nil {
		group.Go(func() error {
			return d.Metrics.Serve(gctx)
		})
	}

	<-gctx.Done()
	return d.shutdown(group)
}

// shutdown runs the graceful teardown of spec.md §4.9 step 11 and waits
// for every errgroup sibling to return, then releases the single
// instance guard.
func (d *Daemon) shutdown(group *errgroup.Group) error {
	stopCtx := context.Background()

	if d.PortMap != nil {
		if err := d.PortMap.Stop(stopCtx); err != nil {
			d.Logger.Errorf("port-mapping coordinator stop: %v", err)
		}
	}
	if d.Admin != nil {
		if err := d.Admin.Close(); err != nil {
			d.Logger.Errorf("admin endpoint close: %v", err)
		}
	}
	if err := d.UDP.Close(); err != nil {
		d.Logger.Errorf("udp socket close: %v", err)
	}

	err := group.Wait()
	d.Store.Close()
	if g := d.guard; g != nil {
		_ = g.release()
	}
	return err
}
