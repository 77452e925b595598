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

// Package boxpath resolves the on-disk layout of spec.md §6: ~/.box
// and its run/logs/queues/keys subdirectories, plus the configuration
// file and admin endpoint paths within it.
package boxpath

import (
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
)

// Layout names every path under the Box home directory.
type Layout struct {
	Home   string
	Run    string
	Logs   string
	Queues string
	Keys   string

	ConfigFile  string
	AdminSocket string

	NodeIdentityFile    string
	ClientIdentityFile  string
	IdentityLinksFile   string
}

// Resolve expands ~/.box (via github.com/mitchellh/go-homedir, which
// handles cross-compiled binaries where os.UserHomeDir can fail) into
// a full Layout.
func Resolve() (Layout, error) {
	home, err := homedir.Dir()
	if err != nil {
		return Layout{}, err
	}
	return ResolveUnder(filepath.Join(home, ".box")), nil
}

// ResolveUnder builds a Layout rooted at an explicit directory,
// bypassing home-directory discovery. Tests use this to avoid
// depending on the invoking user's actual home directory.
func ResolveUnder(root string) Layout {
	l := Layout{
		Home:   root,
		Run:    filepath.Join(root, "run"),
		Logs:   filepath.Join(root, "logs"),
		Queues: filepath.Join(root, "queues"),
		Keys:   filepath.Join(root, "keys"),
	}
	l.ConfigFile = filepath.Join(root, "Box.plist")
	l.NodeIdentityFile = filepath.Join(l.Keys, "node.identity.json")
	l.ClientIdentityFile = filepath.Join(l.Keys, "client.identity.json")
	l.IdentityLinksFile = filepath.Join(l.Keys, "identity-links.json")
	l.AdminSocket = filepath.Join(l.Run, "boxd.socket")
	return l
}

// Dirs returns the four directories that must be created with mode
// 0700 at bootstrap, per spec.md §4.9 step 2.
func (l Layout) Dirs() []string {
	return []string{l.Home, l.Run, l.Logs, l.Queues}
}
