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

package boxconfig

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow bounds reload notifications to at most one per window,
// per SPEC_FULL.md §4.10 ("never fires more often than once per 500ms").
const debounceWindow = 500 * time.Millisecond

// Watch watches the directory containing the store's file and invokes
// onReload after Reload succeeds, debounced so a burst of filesystem
// events (editors commonly write-rename-write) collapses into a single
// call. It runs until ctx is cancelled.
func (s *Store) Watch(ctx context.Context, onReload func(Document, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()

		var pending bool
		timer := time.NewTimer(debounceWindow)
		if !timer.Stop() {
			<-timer.C
		}

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
					continue
				}
				if !pending {
					pending = true
					timer.Reset(debounceWindow)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if onReload != nil {
					onReload(Document{}, err)
				}

			case <-timer.C:
				if !pending {
					continue
				}
				pending = false
				err := s.Reload()
				if onReload != nil {
					onReload(s.Document(), err)
				}
			}
		}
	}()

	return nil
}
