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

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
)

// Logger is the minimal sink the admin endpoint needs; internal/boxlog
// satisfies it.
type Logger interface {
	Errorf(format string, args ...any)
}

// Server accepts admin connections and dispatches one command per
// connection against a Registry, per spec.md §4.8.
type Server struct {
	transport Transport
	registry  *Registry
	logger    Logger
}

// NewServer wraps an already-bound Transport with a command Registry.
func NewServer(transport Transport, registry *Registry, logger Logger) *Server {
	return &Server{transport: transport, registry: registry, logger: logger}
}

// Serve accepts connections until ctx is cancelled or the transport is
// closed.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.transport.Close()
	}()

	for {
		conn, err := s.transport.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		go s.handleConn(ctx, conn)
	}
}

// Close closes the transport and removes its on-disk endpoint.
func (s *Server) Close() error {
	err := s.transport.Close()
	if rmErr := s.transport.Remove(); rmErr != nil && err == nil {
		err = rmErr
	}
	return err
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)

	if !scanner.Scan() {
		return
	}
	line := scanner.Text()

	resp := s.dispatch(ctx, line)
	data, err := json.Marshal(resp)
	if err != nil {
		data = []byte(`{"status":"error","message":"internal"}`)
	}
	data = append(data, '\n')
	_, _ = conn.Write(data)
}

func (s *Server) dispatch(ctx context.Context, line string) map[string]any {
	line = strings.TrimSpace(line)
	if line == "" {
		return map[string]any{"status": "error", "message": "empty-command"}
	}

	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	cmd, ok := s.registry.Lookup(name)
	if !ok {
		return map[string]any{"status": "error", "message": "unknown-command", "command": name}
	}

	raw := normalizeArg(rest)

	result, err := cmd.Run(ctx, raw)
	if err != nil {
		if _, isPayloadErr := err.(*payloadError); isPayloadErr {
			if s.logger != nil {
				s.logger.Errorf("admin: %s: %v", name, err)
			}
			return map[string]any{"status": "error", "message": "invalid-" + name + "-payload"}
		}
		if s.logger != nil {
			s.logger.Errorf("admin: %s: %v", name, err)
		}
		return map[string]any{"status": "error", "message": err.Error()}
	}

	if m, ok := result.(map[string]any); ok {
		if _, has := m["status"]; !has {
			m["status"] = "ok"
		}
		return m
	}
	return map[string]any{"status": "ok", "result": result}
}

// normalizeArg turns a request's trailing argument text into a valid
// JSON value: an empty argument yields nil, text starting with '{' or
// '[' is passed through verbatim, and anything else (a bare UUID, a bare
// path, a number, true/false) is quoted as a JSON string so every verb's
// handler can always decode raw as JSON.
func normalizeArg(rest string) json.RawMessage {
	if rest == "" {
		return nil
	}
	trimmed := strings.TrimSpace(rest)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(trimmed)
	return quoted
}

// payloadError marks a decode failure as a malformed-payload error, so
// dispatch can report it as invalid-<verb>-payload rather than an
// opaque internal error string.
type payloadError struct{ err error }

func (p *payloadError) Error() string { return p.err.Error() }

// PayloadError wraps err so dispatch reports it as
// invalid-<verb>-payload, per spec.md §4.8.
func PayloadError(err error) error { return &payloadError{err: err} }

// StringArg decodes raw as either a bare JSON string or an object
// carrying key, returning "" if raw is empty (the argument was
// omitted).
func StringArg(raw json.RawMessage, key string) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", PayloadError(err)
	}
	v, ok := obj[key]
	if !ok {
		return "", nil
	}
	s, ok = v.(string)
	if !ok {
		return "", PayloadError(fmt.Errorf("%q is not a string", key))
	}
	return s, nil
}
