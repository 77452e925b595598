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
	"fmt"
	"os"
	"path/filepath"
	"sync"

	validatorv10 "github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/viper"

	"github.com/tdelhaise/box/internal/boxid"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	dirPerm  = 0700
	filePerm = 0600
)

// Store loads, validates, repairs, and persists one Box.plist document,
// grounded on the teacher's viper-backed config component pattern.
type Store struct {
	mu   sync.Mutex
	path string
	v    *viper.Viper
	vld  *validatorv10.Validate
	doc  Document
}

// Open loads path if it exists, or produces a fully-defaulted, repaired
// Document if it does not. The document is not written to disk by Open;
// call Save to persist repairs.
func Open(path string) (*Store, error) {
	s := &Store{
		path: path,
		v:    viper.New(),
		vld:  validatorv10.New(),
	}
	s.v.SetConfigFile(path)
	s.v.SetConfigType("json")

	if _, err := os.Stat(path); err == nil {
		if err := s.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("boxconfig: read %s: %w", path, err)
		}
	}

	raw := s.v.AllSettings()
	var doc Document
	if err := s.v.Unmarshal(&doc); err != nil {
		return nil, fmt.Errorf("boxconfig: decode %s: %w", path, err)
	}
	doc.Raw = raw

	repair(&doc)
	s.doc = doc
	return s, nil
}

// Document returns a copy of the currently loaded document.
func (s *Store) Document() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Validate runs struct-tag validation over the typed sections, per
// SPEC_FULL.md §4.10.
func (s *Store) Validate() error {
	s.mu.Lock()
	doc := s.doc
	s.mu.Unlock()
	return s.vld.Struct(doc)
}

// repair fills missing required fields with generated UUIDs and
// section defaults, per spec.md §6 ("Missing required fields are
// repaired").
func repair(doc *Document) {
	if doc.Common.NodeUUID == "" {
		doc.Common.NodeUUID = boxid.MustNew().String()
	}
	if doc.Common.UserUUID == "" {
		doc.Common.UserUUID = boxid.MustNew().String()
	}

	if doc.Server.Port == 0 {
		doc.Server.Port = DefaultServerPort
	}
	if doc.Server.LogLevel == "" {
		doc.Server.LogLevel = DefaultLogLevel
	}
	if doc.Server.LogTarget == "" {
		doc.Server.LogTarget = DefaultLogTarget
	}

	if doc.Client.LogLevel == "" {
		doc.Client.LogLevel = DefaultLogLevel
	}
	if doc.Client.LogTarget == "" {
		doc.Client.LogTarget = DefaultLogTarget
	}
	if doc.Client.Address == "" {
		doc.Client.Address = DefaultClientAddr
	}
	if doc.Client.Port == 0 {
		doc.Client.Port = DefaultServerPort
	}
}

// Save merges the typed sections back into the preserved raw map (so
// unrecognized keys round-trip, per spec.md §6) and writes the result
// as JSON under 0600, creating the 0700 parent directory if needed.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return fmt.Errorf("boxconfig: create config dir: %w", err)
	}

	merged := mergeRaw(s.doc)

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("boxconfig: encode: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, filePerm); err != nil {
		return fmt.Errorf("boxconfig: write temp config: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("boxconfig: rename config into place: %w", err)
	}
	return nil
}

// mergeRaw folds the typed view back into a copy of the preserved raw
// map, overwriting only the three known sections and leaving every
// other top-level key untouched.
func mergeRaw(doc Document) map[string]any {
	out := make(map[string]any, len(doc.Raw)+3)
	for k, v := range doc.Raw {
		out[k] = v
	}

	var typed map[string]any
	data, _ := json.Marshal(doc)
	_ = json.Unmarshal(data, &typed)
	for _, section := range []string{"common", "server", "client"} {
		if v, ok := typed[section]; ok {
			out[section] = v
		}
	}
	return out
}

// Reload re-reads the file from disk, repairs it, and replaces the
// in-memory document. It does not Save; callers decide whether repairs
// should be persisted.
func (s *Store) Reload() error {
	next, err := Open(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.doc = next.doc
	s.v = next.v
	s.mu.Unlock()
	return nil
}
