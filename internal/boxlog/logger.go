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

// Package boxlog wraps github.com/sirupsen/logrus behind one Logger
// interface whose output sink is reconfigurable at runtime
// (stderr/stdout/file:<path>), so the admin "log-target" verb and
// configuration reloads can redirect logs without restarting the
// process.
package boxlog

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Level mirrors the closed log-level set of spec.md §6.
type Level string

const (
	LevelTrace    Level = "trace"
	LevelDebug    Level = "debug"
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelError    Level = "error"
	LevelCritical Level = "critical"
)

func (l Level) logrusLevel() logrus.Level {
	switch l {
	case LevelTrace:
		return logrus.TraceLevel
	case LevelDebug:
		return logrus.DebugLevel
	case LevelInfo:
		return logrus.InfoLevel
	case LevelWarning:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	case LevelCritical:
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

// Logger is the logging surface every Box component depends on.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warningf(format string, args ...any)
	Errorf(format string, args ...any)

	SetLevel(lvl Level)
	SetTarget(target string) error
}

// lgr wraps one *logrus.Logger whose output can be swapped live.
type lgr struct {
	mu  sync.Mutex
	log *logrus.Logger
	out io.WriteCloser
}

// New builds a Logger writing to target ("stderr", "stdout", or
// "file:<path>") at level lvl, per spec.md §6's log target grammar.
func New(target string, lvl Level) (Logger, error) {
	l := &lgr{log: logrus.New()}
	l.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if err := l.SetTarget(target); err != nil {
		return nil, err
	}
	l.SetLevel(lvl)
	return l, nil
}

// SetTarget parses spec.md §6's log target grammar and redirects
// output, closing any previously opened file sink.
func (l *lgr) SetTarget(target string) error {
	var next io.Writer
	var closer io.WriteCloser

	switch {
	case target == "stderr" || target == "":
		next = os.Stderr
	case target == "stdout":
		next = os.Stdout
	case len(target) > len("file:") && target[:len("file:")] == "file:":
		path := target[len("file:"):]
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("boxlog: open %q: %w", path, err)
		}
		next = f
		closer = f
	default:
		return fmt.Errorf("boxlog: invalid log target %q", target)
	}

	l.mu.Lock()
	prev := l.out
	l.log.SetOutput(next)
	l.out = closer
	l.mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
	return nil
}

func (l *lgr) SetLevel(lvl Level) {
	l.log.SetLevel(lvl.logrusLevel())
}

func (l *lgr) Debugf(format string, args ...any)   { l.log.Debugf(format, args...) }
func (l *lgr) Infof(format string, args ...any)    { l.log.Infof(format, args...) }
func (l *lgr) Warningf(format string, args ...any) { l.log.Warnf(format, args...) }
func (l *lgr) Errorf(format string, args ...any)   { l.log.Errorf(format, args...) }
