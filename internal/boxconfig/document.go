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

// Package boxconfig loads, validates, repairs, and persists the Box
// configuration document of spec.md §6. The on-disk file keeps the
// historical "Box.plist" name but its content is JSON — see DESIGN.md
// for why no plist codec is used.
package boxconfig

// RootServer is one entry of common.root_servers.
type RootServer struct {
	Address string `mapstructure:"address" json:"address" validate:"required"`
	Port    int    `mapstructure:"port" json:"port,omitempty" validate:"omitempty,gt=0,lte=65535"`
}

// CommonSection is the "common" document section of spec.md §6.
type CommonSection struct {
	NodeUUID    string       `mapstructure:"node_uuid" json:"node_uuid" validate:"required,len=36"`
	UserUUID    string       `mapstructure:"user_uuid" json:"user_uuid" validate:"required,len=36"`
	RootServers []RootServer `mapstructure:"root_servers" json:"root_servers"`
}

// ServerSection is the "server" document section of spec.md §6.
type ServerSection struct {
	Port             int      `mapstructure:"port" json:"port" validate:"gt=0,lte=65535"`
	LogLevel         string   `mapstructure:"log_level" json:"log_level" validate:"oneof=trace debug info warning error critical"`
	LogTarget        string   `mapstructure:"log_target" json:"log_target" validate:"required"`
	Transport        string   `mapstructure:"transport" json:"transport,omitempty"`
	TransportStatus  string   `mapstructure:"transport_status" json:"transport_status,omitempty"`
	TransportPut     string   `mapstructure:"transport_put" json:"transport_put,omitempty"`
	TransportGet     string   `mapstructure:"transport_get" json:"transport_get,omitempty"`
	PreShareKey      string   `mapstructure:"pre_share_key" json:"pre_share_key,omitempty"`
	NoisePattern     string   `mapstructure:"noise_pattern" json:"noise_pattern,omitempty"`
	AdminChannel     bool     `mapstructure:"admin_channel" json:"admin_channel"`
	PortMapping      bool     `mapstructure:"port_mapping" json:"port_mapping"`
	ExternalAddress  string   `mapstructure:"external_address" json:"external_address,omitempty"`
	ExternalPort     int      `mapstructure:"external_port" json:"external_port,omitempty" validate:"omitempty,gt=0,lte=65535"`
	PermanentQueues  []string `mapstructure:"permanent_queues" json:"permanent_queues,omitempty"`
}

// ClientSection is the "client" document section of spec.md §6.
type ClientSection struct {
	LogLevel  string `mapstructure:"log_level" json:"log_level" validate:"oneof=trace debug info warning error critical"`
	LogTarget string `mapstructure:"log_target" json:"log_target" validate:"required"`
	Address   string `mapstructure:"address" json:"address" validate:"required"`
	Port      int    `mapstructure:"port" json:"port" validate:"gt=0,lte=65535"`
}

// Document is the typed view of Box.plist. Extra, unrecognized keys
// read from disk are preserved in Raw and merged back in on Save, per
// spec.md §6 ("Unknown keys are preserved on round-trip").
type Document struct {
	Common CommonSection `mapstructure:"common" json:"common"`
	Server ServerSection `mapstructure:"server" json:"server"`
	Client ClientSection `mapstructure:"client" json:"client"`

	Raw map[string]any `json:"-"`
}

// Defaults, per spec.md §6.
const (
	DefaultLogLevel     = "info"
	DefaultServerPort   = 12567
	DefaultClientAddr   = "127.0.0.1"
	DefaultServerBind   = "0.0.0.0"
	DefaultLogTarget    = "stderr"
)

// ValidLogLevels enumerates spec.md §6's closed log-level set.
var ValidLogLevels = []string{"trace", "debug", "info", "warning", "error", "critical"}
