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

package portmap

import (
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/tdelhaise/box/internal/boxerr"
)

const natPMPPort = 5351

// natPMPHandle carries the internal/external port pair needed to issue
// a zero-lifetime removal request, per spec.md §4.4.
type natPMPHandle struct {
	gateway      string
	internalPort int
	externalPort int
}

func (natPMPHandle) isHandle() {}

type natPMPMapper struct {
	gateway string
	timeout time.Duration
}

func newNATPMPMapper(gateway string) *natPMPMapper {
	return &natPMPMapper{gateway: gateway, timeout: 2 * time.Second}
}

// request sends opcode 1 (map UDP) with the given requested external
// port and lifetime, per spec.md §4.4 item 2, and parses the 16-byte
// response.
func (m *natPMPMapper) request(internalPort, externalPort, lifetime int) (resultExternalPort, resultLifetime int, err error) {
	conn, dErr := net.Dial("udp", fmt.Sprintf("%s:%d", m.gateway, natPMPPort))
	if dErr != nil {
		return 0, 0, boxerr.PortMapping.Errorf("dial nat-pmp gateway %s: %v", m.gateway, dErr)
	}
	defer conn.Close()

	req := make([]byte, 12)
	req[0] = 0 // version
	req[1] = 1 // opcode: map UDP
	// req[2:4] reserved, zero
	binary.BigEndian.PutUint16(req[4:6], uint16(internalPort))
	binary.BigEndian.PutUint16(req[6:8], uint16(externalPort))
	binary.BigEndian.PutUint32(req[8:12], uint32(lifetime))

	_ = conn.SetDeadline(time.Now().Add(m.timeout))
	if _, wErr := conn.Write(req); wErr != nil {
		return 0, 0, boxerr.PortMapping.Errorf("send nat-pmp request: %v", wErr)
	}

	resp := make([]byte, 16)
	n, rErr := conn.Read(resp)
	if rErr != nil {
		return 0, 0, boxerr.PortMapping.Errorf("read nat-pmp response: %v", rErr)
	}
	if n < 16 {
		return 0, 0, boxerr.PortMapping.Errorf("nat-pmp response truncated: %d bytes", n)
	}

	version, opcode := resp[0], resp[1]
	if version != 0 || opcode != 0x81 {
		return 0, 0, boxerr.PortMapping.Errorf("unexpected nat-pmp version/opcode: %d/%d", version, opcode)
	}
	resultCode := binary.BigEndian.Uint16(resp[2:4])
	if resultCode != 0 {
		return 0, 0, boxerr.PortMapping.Errorf("nat-pmp result code %d", resultCode)
	}

	resultLifetime = int(binary.BigEndian.Uint32(resp[8:12]))
	resultExternalPort = int(binary.BigEndian.Uint16(resp[12:14]))
	return resultExternalPort, resultLifetime, nil
}

func (m *natPMPMapper) Map(internalPort int) (Snapshot, Handle, error) {
	extPort, lifetime, err := m.request(internalPort, internalPort, 3600)
	if err != nil {
		return Snapshot{}, nil, err
	}
	snap := Snapshot{
		Backend:         BackendNATPMP,
		ExternalPort:    extPort,
		Gateway:         m.gateway,
		LifetimeSeconds: lifetime,
		RefreshedAt:     time.Now(),
	}
	return snap, natPMPHandle{gateway: m.gateway, internalPort: internalPort, externalPort: extPort}, nil
}

func (m *natPMPMapper) Refresh(h Handle) (Snapshot, error) {
	nh, ok := h.(natPMPHandle)
	if !ok {
		return Snapshot{}, boxerr.PortMapping.Errorf("nat-pmp refresh: wrong handle type")
	}
	extPort, lifetime, err := m.request(nh.internalPort, nh.externalPort, 3600)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Backend:         BackendNATPMP,
		ExternalPort:    extPort,
		Gateway:         m.gateway,
		LifetimeSeconds: lifetime,
		RefreshedAt:     time.Now(),
	}, nil
}

func (m *natPMPMapper) Remove(h Handle) error {
	nh, ok := h.(natPMPHandle)
	if !ok {
		return boxerr.PortMapping.Errorf("nat-pmp remove: wrong handle type")
	}
	_, _, err := m.request(nh.internalPort, nh.externalPort, 0)
	return err
}
