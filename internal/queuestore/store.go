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

package queuestore

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/tdelhaise/box/internal/boxerr"
	"github.com/tdelhaise/box/internal/boxid"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	dirPerm  = 0700
	filePerm = 0600
)

// Reference names one StoredObject file within a queue, enough to List
// and later Read it without holding the file open.
type Reference struct {
	Queue    string
	FileName string
}

// Store is the durable FIFO queue store. Every operation is funneled
// through a single owning goroutine (started by New), so popOldest never
// races with itself within one Store instance, per spec.md §4.2/§5.
type Store struct {
	root string
	ops  chan func()
	done chan struct{}
}

// New creates a Store rooted at queueRoot (normally <home>/.box/queues)
// and starts its owning goroutine. queueRoot must already exist with the
// correct permissions; New does not create it (the server bootstrap
// does, per spec.md §4.9 step 2).
func New(queueRoot string) *Store {
	s := &Store{
		root: queueRoot,
		ops:  make(chan func()),
		done: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Store) run() {
	for op := range s.ops {
		op()
	}
	close(s.done)
}

// Close stops accepting new operations and waits for the owning
// goroutine to drain (spec.md §5: "in-flight storage writes complete
// their atomic rename before the store drops").
func (s *Store) Close() {
	close(s.ops)
	<-s.done
}

// exec submits fn to the owning goroutine and blocks for its completion,
// honoring ctx cancellation while waiting to be scheduled.
func (s *Store) exec(ctx context.Context, fn func()) error {
	doneCh := make(chan struct{})
	wrapped := func() {
		fn()
		close(doneCh)
	}

	select {
	case s.ops <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) queueDir(queue string) string {
	return filepath.Join(s.root, queue)
}

// EnsureQueue validates name, creates the queue directory if missing, and
// returns the canonicalized name and its absolute directory path.
func (s *Store) EnsureQueue(ctx context.Context, name string) (canon string, path string, err error) {
	canon, err = NormalizeName(name)
	if err != nil {
		return "", "", err
	}

	execErr := s.exec(ctx, func() {
		dir := s.queueDir(canon)
		if mkErr := os.MkdirAll(dir, dirPerm); mkErr != nil {
			err = boxerr.StorageUnavailable.Errorf("create queue dir %q: %v", dir, mkErr)
			return
		}
		path = dir
	})
	if execErr != nil {
		return "", "", execErr
	}
	return canon, path, err
}

// Queues lists the names of every queue directory under the store's
// root, sorted lexicographically. Used by the admin control plane's
// "stats" verb and by the server bootstrap to enumerate what exists
// without requiring each queue name be known in advance.
func (s *Store) Queues(ctx context.Context) ([]string, error) {
	var names []string
	execErr := s.exec(ctx, func() {
		entries, err := os.ReadDir(s.root)
		if err != nil {
			if os.IsNotExist(err) {
				return
			}
			return
		}
		for _, e := range entries {
			if e.IsDir() {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
	})
	if execErr != nil {
		return nil, execErr
	}
	return names, nil
}

// Put materializes obj as <createdAt-basic>-<UUID>.json under queue via
// temp-file + rename. If queue is "whoswho" and an entry with the same
// object ID already exists, it is removed first (spec.md §4.2).
func (s *Store) Put(ctx context.Context, queue string, obj Object) error {
	canon, err := NormalizeName(queue)
	if err != nil {
		return err
	}

	var opErr error
	execErr := s.exec(ctx, func() {
		dir := s.queueDir(canon)
		if mkErr := os.MkdirAll(dir, dirPerm); mkErr != nil {
			opErr = boxerr.StorageUnavailable.Errorf("create queue dir %q: %v", dir, mkErr)
			return
		}

		if canon == WhoswhoQueue {
			s.removeByIDLocked(dir, obj.ID)
		}

		data, mErr := json.Marshal(obj.toDisk())
		if mErr != nil {
			opErr = boxerr.StorageUnavailable.Errorf("marshal object: %v", mErr)
			return
		}

		target := filepath.Join(dir, obj.fileStem()+".json")
		tmp := target + ".tmp"

		if wErr := os.WriteFile(tmp, data, filePerm); wErr != nil {
			opErr = boxerr.StorageUnavailable.Errorf("write temp object: %v", wErr)
			return
		}
		if rErr := os.Rename(tmp, target); rErr != nil {
			_ = os.Remove(tmp)
			opErr = boxerr.StorageUnavailable.Errorf("rename object into place: %v", rErr)
			return
		}
	})
	if execErr != nil {
		return execErr
	}
	return opErr
}

// removeByIDLocked unlinks the file in dir whose name suffix matches
// id's text form. Best-effort: a missing entry is not an error. Must
// only be called from the owning goroutine.
func (s *Store) removeByIDLocked(dir string, id boxid.UUID) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	suffix := "-" + id.String() + ".json"
	for _, e := range entries {
		if strings.EqualFold(e.Name()[max(0, len(e.Name())-len(suffix)):], suffix) {
			_ = os.Remove(filepath.Join(dir, e.Name()))
			return
		}
	}
}

// List returns references sorted by filename (= insertion order).
func (s *Store) List(ctx context.Context, queue string, limit, offset int) ([]Reference, error) {
	canon, err := NormalizeName(queue)
	if err != nil {
		return nil, err
	}

	var (
		refs   []Reference
		opErr  error
	)
	execErr := s.exec(ctx, func() {
		dir := s.queueDir(canon)
		entries, rErr := os.ReadDir(dir)
		if rErr != nil {
			if os.IsNotExist(rErr) {
				opErr = boxerr.QueueNotFound.Errorf("queue %q not found", canon)
				return
			}
			opErr = boxerr.StorageUnavailable.Errorf("read queue dir %q: %v", dir, rErr)
			return
		}

		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			names = append(names, e.Name())
		}
		sort.Strings(names)

		if offset > 0 && offset < len(names) {
			names = names[offset:]
		} else if offset >= len(names) {
			names = nil
		}
		if limit > 0 && limit < len(names) {
			names = names[:limit]
		}

		refs = make([]Reference, 0, len(names))
		for _, n := range names {
			refs = append(refs, Reference{Queue: canon, FileName: n})
		}
	})
	if execErr != nil {
		return nil, execErr
	}
	return refs, opErr
}

// Read decodes the StoredObject named by ref.
func (s *Store) Read(ctx context.Context, ref Reference) (Object, error) {
	var (
		obj   Object
		opErr error
	)
	execErr := s.exec(ctx, func() {
		obj, opErr = s.readFileLocked(filepath.Join(s.queueDir(ref.Queue), ref.FileName))
	})
	if execErr != nil {
		return Object{}, execErr
	}
	return obj, opErr
}

func (s *Store) readFileLocked(path string) (Object, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Object{}, boxerr.ObjectNotFound.Errorf("read %q: %v", path, err)
	}

	var d onDisk
	if err := json.Unmarshal(raw, &d); err != nil {
		return Object{}, boxerr.Corrupted.Errorf("decode %q: %v", path, err)
	}

	obj, err := fromDisk(d)
	if err != nil {
		return Object{}, boxerr.Corrupted.Errorf("decode %q: %v", path, err)
	}
	return obj, nil
}

// PeekOldest reads the lexicographically first entry without removal. It
// is used for permanent queues, where GET is observational.
func (s *Store) PeekOldest(ctx context.Context, queue string) (Object, bool, error) {
	canon, err := NormalizeName(queue)
	if err != nil {
		return Object{}, false, err
	}

	var (
		obj   Object
		found bool
		opErr error
	)
	execErr := s.exec(ctx, func() {
		name, ok, rErr := s.oldestNameLocked(canon)
		if rErr != nil {
			opErr = rErr
			return
		}
		if !ok {
			return
		}
		obj, opErr = s.readFileLocked(filepath.Join(s.queueDir(canon), name))
		found = opErr == nil
	})
	if execErr != nil {
		return Object{}, false, execErr
	}
	return obj, found, opErr
}

// PopOldest atomically reads and unlinks the lexicographically first
// entry. Returns found=false if the queue is empty.
func (s *Store) PopOldest(ctx context.Context, queue string) (Object, bool, error) {
	canon, err := NormalizeName(queue)
	if err != nil {
		return Object{}, false, err
	}

	var (
		obj   Object
		found bool
		opErr error
	)
	execErr := s.exec(ctx, func() {
		name, ok, rErr := s.oldestNameLocked(canon)
		if rErr != nil {
			opErr = rErr
			return
		}
		if !ok {
			return
		}

		path := filepath.Join(s.queueDir(canon), name)
		obj, opErr = s.readFileLocked(path)
		if opErr != nil {
			return
		}
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			opErr = boxerr.StorageUnavailable.Errorf("remove %q: %v", path, rmErr)
			return
		}
		found = true
	})
	if execErr != nil {
		return Object{}, false, execErr
	}
	return obj, found, opErr
}

// oldestNameLocked returns the lexicographically first file name in
// queue, or ok=false if the queue exists but is empty. Must only be
// called from the owning goroutine.
func (s *Store) oldestNameLocked(queue string) (name string, ok bool, err error) {
	dir := s.queueDir(queue)
	entries, rErr := os.ReadDir(dir)
	if rErr != nil {
		if os.IsNotExist(rErr) {
			return "", false, boxerr.QueueNotFound.Errorf("queue %q not found", queue)
		}
		return "", false, boxerr.StorageUnavailable.Errorf("read queue dir %q: %v", dir, rErr)
	}

	best := ""
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if best == "" || e.Name() < best {
			best = e.Name()
		}
	}
	if best == "" {
		return "", false, nil
	}
	return best, true, nil
}

// Remove unlinks the file in queue whose name suffix matches id's
// uppercase UUID form.
func (s *Store) Remove(ctx context.Context, queue string, id boxid.UUID) error {
	canon, err := NormalizeName(queue)
	if err != nil {
		return err
	}

	var opErr error
	execErr := s.exec(ctx, func() {
		dir := s.queueDir(canon)
		entries, rErr := os.ReadDir(dir)
		if rErr != nil {
			if os.IsNotExist(rErr) {
				opErr = boxerr.QueueNotFound.Errorf("queue %q not found", canon)
				return
			}
			opErr = boxerr.StorageUnavailable.Errorf("read queue dir %q: %v", dir, rErr)
			return
		}

		suffix := strings.ToUpper(id.String()) + ".JSON"
		for _, e := range entries {
			if strings.ToUpper(e.Name()) == suffix || strings.HasSuffix(strings.ToUpper(e.Name()), strings.ToUpper(id.String())+".JSON") {
				if rmErr := os.Remove(filepath.Join(dir, e.Name())); rmErr != nil && !os.IsNotExist(rmErr) {
					opErr = boxerr.StorageUnavailable.Errorf("remove %q: %v", e.Name(), rmErr)
				}
				return
			}
		}
		opErr = boxerr.ObjectNotFound.Errorf("object %s not found in %q", id, canon)
	})
	if execErr != nil {
		return execErr
	}
	return opErr
}

// Purge unlinks every entry in queue, best-effort.
func (s *Store) Purge(ctx context.Context, queue string) error {
	canon, err := NormalizeName(queue)
	if err != nil {
		return err
	}

	return s.exec(ctx, func() {
		dir := s.queueDir(canon)
		entries, rErr := os.ReadDir(dir)
		if rErr != nil {
			return
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			_ = os.Remove(filepath.Join(dir, e.Name()))
		}
	})
}
