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

	jww "github.com/spf13/jwalterweatherman"
)

// jwwWriter routes jwalterweatherman output (used by cobra/viper) to
// Logger.Infof.
type jwwWriter struct{ l Logger }

func (w *jwwWriter) Write(p []byte) (int, error) {
	w.l.Infof("%s", string(p))
	return len(p), nil
}

// BridgeSPF13 redirects the global jwalterweatherman logger (the
// backend cobra and viper log through) to l at the given level, the
// same bridge the teacher's logger.SetSPF13Level performs.
func BridgeSPF13(l Logger, lvl Level) {
	out := io.Writer(&jwwWriter{l: l})

	switch lvl {
	case LevelTrace, LevelDebug:
		jww.SetLogOutput(out)
		jww.SetLogThreshold(jww.LevelTrace)
	case LevelInfo:
		jww.SetLogOutput(out)
		jww.SetLogThreshold(jww.LevelInfo)
	case LevelWarning:
		jww.SetLogOutput(out)
		jww.SetLogThreshold(jww.LevelWarn)
	case LevelError:
		jww.SetLogOutput(out)
		jww.SetLogThreshold(jww.LevelError)
	case LevelCritical:
		jww.SetLogOutput(out)
		jww.SetLogThreshold(jww.LevelCritical)
	default:
		jww.SetLogOutput(io.Discard)
		jww.SetLogThreshold(jww.LevelCritical)
	}
	jww.SetStdoutOutput(out)
}
