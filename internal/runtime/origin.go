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

// Package runtime holds the mutable RuntimeState of spec.md §4.7: the
// fusion of CLI flags, environment variables, the configuration file,
// and built-in defaults into one lock-protected view, plus the
// reload semantics that never let a configuration reload override a
// CLI-originated field.
package runtime

// Origin records which tier of the four-tier precedence supplied a
// resolved field's current value.
type Origin string

const (
	OriginDefault Origin = "default"
	OriginConfig  Origin = "config"
	OriginEnv     Origin = "env"
	OriginCLI     Origin = "cli"
	// OriginRuntime marks a field set directly by an admin command
	// (e.g. log-target), per spec.md §4.8's "origin becomes runtime".
	OriginRuntime Origin = "runtime"
)
