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
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/tdelhaise/box/internal/boxerr"
)

const (
	ssdpMulticastAddr = "239.255.255.250:1900"
	ssdpSearchTarget  = "urn:schemas-upnp-org:device:InternetGatewayDevice:1"
)

// discoverLocation issues one SSDP M-SEARCH and returns the LOCATION
// header of the first InternetGatewayDevice response, per spec.md §4.4
// item 1.
func discoverLocation(timeout time.Duration) (string, error) {
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return "", boxerr.PortMapping.Errorf("open ssdp socket: %v", err)
	}
	defer conn.Close()

	dst, err := net.ResolveUDPAddr("udp4", ssdpMulticastAddr)
	if err != nil {
		return "", boxerr.PortMapping.Errorf("resolve ssdp multicast addr: %v", err)
	}

	msg := "M-SEARCH * HTTP/1.1\r\n" +
		"HOST: 239.255.255.250:1900\r\n" +
		"MAN: \"ssdp:discover\"\r\n" +
		"MX: 2\r\n" +
		"ST: " + ssdpSearchTarget + "\r\n\r\n"

	if _, err := conn.WriteTo([]byte(msg), dst); err != nil {
		return "", boxerr.PortMapping.Errorf("send ssdp m-search: %v", err)
	}

	_ = conn.SetDeadline(time.Now().Add(timeout))
	buf := make([]byte, 2048)
	for {
		n, _, rErr := conn.ReadFrom(buf)
		if rErr != nil {
			return "", boxerr.PortMapping.Errorf("ssdp discovery timed out: %v", rErr)
		}
		loc := parseLocationHeader(string(buf[:n]))
		if loc != "" {
			return loc, nil
		}
	}
}

func parseLocationHeader(raw string) string {
	for _, line := range strings.Split(raw, "\r\n") {
		if idx := strings.IndexByte(line, ':'); idx > 0 {
			if strings.EqualFold(strings.TrimSpace(line[:idx]), "LOCATION") {
				return strings.TrimSpace(line[idx+1:])
			}
		}
	}
	return ""
}

// deviceDescription is the minimal XML shape needed to locate a WAN
// connection service's control URL.
type deviceDescription struct {
	XMLName xml.Name `xml:"root"`
	Device  device   `xml:"device"`
}

type device struct {
	DeviceList  deviceList  `xml:"deviceList"`
	ServiceList serviceList `xml:"serviceList"`
}

type deviceList struct {
	Devices []device `xml:"device"`
}

type serviceList struct {
	Services []service `xml:"service"`
}

type service struct {
	ServiceType string `xml:"serviceType"`
	ControlURL  string `xml:"controlURL"`
}

// selectService finds every service in the device tree, preferring
// WANIPConnection:2 > WANIPConnection:1 > WANPPPConnection:1 > any
// service whose type contains WANIPConnection or WANPPPConnection, per
// spec.md §4.4 item 1.
func selectService(root device) (service, bool) {
	var all []service
	var walk func(d device)
	walk = func(d device) {
		all = append(all, d.ServiceList.Services...)
		for _, child := range d.DeviceList.Devices {
			walk(child)
		}
	}
	walk(root)

	priority := []string{
		"urn:schemas-upnp-org:service:WANIPConnection:2",
		"urn:schemas-upnp-org:service:WANIPConnection:1",
		"urn:schemas-upnp-org:service:WANPPPConnection:1",
	}
	for _, want := range priority {
		for _, svc := range all {
			if svc.ServiceType == want {
				return svc, true
			}
		}
	}
	for _, svc := range all {
		if strings.Contains(svc.ServiceType, "WANIPConnection") || strings.Contains(svc.ServiceType, "WANPPPConnection") {
			return svc, true
		}
	}
	return service{}, false
}

// upnpMapper implements mapper against a discovered InternetGatewayDevice.
type upnpMapper struct {
	client     *retryablehttp.Client
	controlURL string
	serviceURN string
	gateway    string
}

// discoverUPnPMapper performs SSDP discovery, fetches the device
// description, and selects the WAN connection service, building a ready
// upnpMapper.
func discoverUPnPMapper(timeout time.Duration) (*upnpMapper, error) {
	location, err := discoverLocation(timeout)
	if err != nil {
		return nil, err
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.Logger = nil
	client.HTTPClient.Timeout = timeout

	resp, err := client.Get(location)
	if err != nil {
		return nil, boxerr.PortMapping.Errorf("fetch device description %s: %v", location, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, boxerr.PortMapping.Errorf("read device description: %v", err)
	}

	var desc deviceDescription
	if err := xml.Unmarshal(body, &desc); err != nil {
		return nil, boxerr.PortMapping.Errorf("parse device description xml: %v", err)
	}

	svc, ok := selectService(desc.Device)
	if !ok {
		return nil, boxerr.PortMapping.Errorf("no WAN connection service advertised")
	}

	base, err := baseURL(location)
	if err != nil {
		return nil, err
	}

	return &upnpMapper{
		client:     client,
		controlURL: resolveURL(base, svc.ControlURL),
		serviceURN: svc.ServiceType,
		gateway:    gatewayHost(location),
	}, nil
}

func baseURL(location string) (string, error) {
	idx := strings.Index(location[len("http://"):], "/")
	if idx < 0 {
		return location, nil
	}
	return location[:len("http://")+idx], nil
}

func resolveURL(base, ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return base + ref
}

func gatewayHost(location string) string {
	s := strings.TrimPrefix(location, "http://")
	if idx := strings.Index(s, "/"); idx >= 0 {
		s = s[:idx]
	}
	if idx := strings.Index(s, ":"); idx >= 0 {
		s = s[:idx]
	}
	return s
}

const soapEnvelope = `<?xml version="1.0"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">
<s:Body>
<u:%s xmlns:u="%s">
%s
</u:%s>
</s:Body>
</s:Envelope>`

func (m *upnpMapper) soapCall(action, args string) error {
	body := fmt.Sprintf(soapEnvelope, action, m.serviceURN, args, action)
	req, err := retryablehttp.NewRequest(http.MethodPost, m.controlURL, bytes.NewBufferString(body))
	if err != nil {
		return boxerr.PortMapping.Errorf("build soap request: %v", err)
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	req.Header.Set("SOAPAction", fmt.Sprintf(`"%s#%s"`, m.serviceURN, action))

	resp, err := m.client.Do(req)
	if err != nil {
		return boxerr.PortMapping.Errorf("soap call %s: %v", action, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return boxerr.PortMapping.Errorf("soap call %s: status %d", action, resp.StatusCode)
	}
	return nil
}

type upnpHandle struct {
	externalPort int
}

func (upnpHandle) isHandle() {}

func localIPv4(gateway string) (string, error) {
	conn, err := net.Dial("udp4", gateway+":7")
	if err != nil {
		return "", boxerr.PortMapping.Errorf("determine local ipv4 toward gateway: %v", err)
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}

func (m *upnpMapper) Map(internalPort int) (Snapshot, Handle, error) {
	local, err := localIPv4(m.gateway)
	if err != nil {
		return Snapshot{}, nil, err
	}

	args := fmt.Sprintf(
		"<NewRemoteHost></NewRemoteHost>"+
			"<NewExternalPort>%d</NewExternalPort>"+
			"<NewProtocol>UDP</NewProtocol>"+
			"<NewInternalPort>%d</NewInternalPort>"+
			"<NewInternalClient>%s</NewInternalClient>"+
			"<NewEnabled>1</NewEnabled>"+
			"<NewPortMappingDescription>boxd</NewPortMappingDescription>"+
			"<NewLeaseDuration>3600</NewLeaseDuration>",
		internalPort, internalPort, local)

	if err := m.soapCall("AddPortMapping", args); err != nil {
		return Snapshot{}, nil, err
	}

	snap := Snapshot{
		Backend:         BackendUPnP,
		ExternalPort:    internalPort,
		Gateway:         m.gateway,
		Service:         m.serviceURN,
		LifetimeSeconds: 3600,
		RefreshedAt:     time.Now(),
	}
	return snap, upnpHandle{externalPort: internalPort}, nil
}

func (m *upnpMapper) Refresh(h Handle) (Snapshot, error) {
	uh, ok := h.(upnpHandle)
	if !ok {
		return Snapshot{}, boxerr.PortMapping.Errorf("upnp refresh: wrong handle type")
	}
	snap, _, err := m.Map(uh.externalPort)
	return snap, err
}

func (m *upnpMapper) Remove(h Handle) error {
	uh, ok := h.(upnpHandle)
	if !ok {
		return boxerr.PortMapping.Errorf("upnp remove: wrong handle type")
	}
	args := fmt.Sprintf(
		"<NewRemoteHost></NewRemoteHost><NewExternalPort>%d</NewExternalPort><NewProtocol>UDP</NewProtocol>",
		uh.externalPort)
	return m.soapCall("DeletePortMapping", args)
}
