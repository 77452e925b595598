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

package boxlog

import (
	"io"
	"log"

	"github.com/hashicorp/go-hclog"
)

// hclogBridge adapts Logger to hclog.Logger, for components that expect
// an hclog sink rather than Logger's own interface. The port-mapping
// coordinator's retryablehttp client does not use it: that client is
// built with its logger disabled.
type hclogBridge struct {
	l    Logger
	name string
}

// AsHCLog wraps l as an hclog.Logger.
func AsHCLog(l Logger) hclog.Logger {
	return &hclogBridge{l: l}
}

func (h *hclogBridge) Log(level hclog.Level, msg string, args ...interface{}) {
	switch level {
	case hclog.Trace, hclog.Debug:
		h.l.Debugf(msg, args...)
	case hclog.Info:
		h.l.Infof(msg, args...)
	case hclog.Warn:
		h.l.Warningf(msg, args...)
	case hclog.Error:
		h.l.Errorf(msg, args...)
	}
}

func (h *hclogBridge) Trace(msg string, args ...interface{}) { h.l.Debugf(msg, args...) }
func (h *hclogBridge) Debug(msg string, args ...interface{}) { h.l.Debugf(msg, args...) }
func (h *hclogBridge) Info(msg string, args ...interface{})  { h.l.Infof(msg, args...) }
func (h *hclogBridge) Warn(msg string, args ...interface{})  { h.l.Warningf(msg, args...) }
func (h *hclogBridge) Error(msg string, args ...interface{}) { h.l.Errorf(msg, args...) }

func (h *hclogBridge) IsTrace() bool { return true }
func (h *hclogBridge) IsDebug() bool { return true }
func (h *hclogBridge) IsInfo() bool  { return true }
func (h *hclogBridge) IsWarn() bool  { return true }
func (h *hclogBridge) IsError() bool { return true }

func (h *hclogBridge) ImpliedArgs() []interface{} { return nil }
func (h *hclogBridge) With(args ...interface{}) hclog.Logger {
	return h
}
func (h *hclogBridge) Name() string { return h.name }
func (h *hclogBridge) Named(name string) hclog.Logger {
	return &hclogBridge{l: h.l, name: name}
}
func (h *hclogBridge) ResetNamed(name string) hclog.Logger {
	return &hclogBridge{l: h.l, name: name}
}
func (h *hclogBridge) SetLevel(level hclog.Level) {}
func (h *hclogBridge) GetLevel() hclog.Level       { return hclog.Info }

func (h *hclogBridge) StandardLogger(opts *hclog.StandardLoggerOptions) *log.Logger {
	return log.New(h.StandardWriter(opts), "", 0)
}

func (h *hclogBridge) StandardWriter(opts *hclog.StandardLoggerOptions) io.Writer {
	return &hclogWriter{l: h.l}
}

// hclogWriter routes raw bytes (from a StandardLogger caller) to Infof.
type hclogWriter struct{ l Logger }

func (w *hclogWriter) Write(p []byte) (int, error) {
	w.l.Infof("%s", string(p))
	return len(p), nil
}
