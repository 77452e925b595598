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

package boxerr

import (
	"errors"
	"fmt"
)

// Error extends the standard error with a Code and an optional parent
// chain, so a handler can decide, by code, how to collapse a failure onto
// the wire STATUS enum or the admin JSON status discriminant.
type Error interface {
	error

	// Code returns the classification code of this error.
	Code() Code

	// Is reports whether this error or any of its parents carries the
	// given code.
	Is(code Code) bool

	// Unwrap exposes the parent chain to errors.Is/errors.As.
	Unwrap() []error
}

type boxErr struct {
	code    Code
	message string
	parents []error
}

// New builds an Error with the given code, message, and optional parent
// errors.
func New(code Code, message string, parents ...error) Error {
	return &boxErr{code: code, message: message, parents: parents}
}

// Newf is New with a formatted message.
func Newf(code Code, format string, args ...any) Error {
	return &boxErr{code: code, message: fmt.Sprintf(format, args...)}
}

func (e *boxErr) Error() string {
	if e.message != "" {
		return e.message
	}
	return e.code.Message()
}

func (e *boxErr) Code() Code {
	return e.code
}

func (e *boxErr) Is(code Code) bool {
	if e.code == code {
		return true
	}
	for _, p := range e.parents {
		var be Error
		if errors.As(p, &be) && be.Is(code) {
			return true
		}
	}
	return false
}

func (e *boxErr) Unwrap() []error {
	return e.parents
}

// As extracts a boxerr.Error from an arbitrary error, mirroring
// errors.As. Returns nil, false when err is not (or does not wrap) one.
func As(err error) (Error, bool) {
	var be Error
	ok := errors.As(err, &be)
	return be, ok
}

// HasCode reports whether err is, or wraps, a boxerr.Error carrying code.
func HasCode(err error, code Code) bool {
	be, ok := As(err)
	return ok && be.Is(code)
}
