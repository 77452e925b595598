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

package admin

import "github.com/tdelhaise/box/internal/boxconfig"

// StoreReloader adapts *boxconfig.Store to ConfigReloader. An empty or
// matching path reloads the store's own file in place; any other path
// is loaded independently, leaving the store's tracked file untouched.
type StoreReloader struct {
	Store *boxconfig.Store
	Path  string
}

func (r StoreReloader) Reload(path string) (boxconfig.Document, error) {
	if path == "" || path == r.Path {
		if err := r.Store.Reload(); err != nil {
			return boxconfig.Document{}, err
		}
		return r.Store.Document(), nil
	}

	other, err := boxconfig.Open(path)
	if err != nil {
		return boxconfig.Document{}, err
	}
	return other.Document(), nil
}
