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

package udpserver

import (
	"context"
	"net"
	"sync"

	"github.com/tdelhaise/box/internal/wire"
)

// Server binds one UDP socket and drives the read loop of spec.md §4.6:
// a single consumer decodes and dispatches frames, offloading storage
// and Location Service work to background goroutines so a slow
// datagram never delays the next read.
type Server struct {
	conn    *net.UDPConn
	handler *Handler

	writeMu sync.Mutex
}

// Listen binds addr (e.g. "0.0.0.0:12567" or "0.0.0.0:0" for an
// ephemeral port) with SO_REUSEADDR semantics via net.ListenUDP, per
// spec.md §4.9 step 9.
func Listen(addr string, handler *Handler) (*Server, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}
	return &Server{conn: conn, handler: handler}, nil
}

// LocalPort returns the actually-bound port, needed when the requested
// port was ephemeral (spec.md §4.9 step 9: "capture the assigned port
// and rebuild the location record").
func (s *Server) LocalPort() int {
	if addr, ok := s.conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.Port
	}
	return 0
}

// Close closes the underlying socket, unblocking Serve.
func (s *Server) Close() error {
	return s.conn.Close()
}

// Serve reads datagrams until ctx is cancelled or the socket is closed.
// Each datagram is dispatched in its own goroutine; blocking operations
// (spec.md §5) never occur on the read loop itself.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.conn.Close()
	}()

	buf := make([]byte, wire.MaxFrameSize)
	for {
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}

		raw := make([]byte, n)
		copy(raw, buf[:n])

		go s.handleDatagram(ctx, raw, addr)
	}
}

func (s *Server) handleDatagram(ctx context.Context, raw []byte, addr *net.UDPAddr) {
	responses := s.handler.Dispatch(ctx, raw)
	for _, resp := range responses {
		s.writeMu.Lock()
		_, _ = s.conn.WriteToUDP(resp, addr)
		s.writeMu.Unlock()
	}
}
