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

package runtime

// StatusPayload builds the admin status payload of spec.md §6 from a
// State snapshot. Queue metrics (queueCount, objects, queues,
// queueFreeBytes) are left to the caller (the admin "stats" verb,
// which has the queue store in scope) and merged in afterward.
func StatusPayload(s State) map[string]any {
	payload := map[string]any{
		"status":              "ok",
		"port":                s.Port,
		"portOrigin":          string(s.PortOrigin),
		"logLevel":            s.LogLevel,
		"logLevelOrigin":      string(s.LogLevelOrigin),
		"logTarget":           s.LogTarget,
		"logTargetOrigin":     string(s.LogTargetOrigin),
		"adminChannel":        s.AdminChannel,
		"reloadCount":         s.ReloadCount,
		"hasGlobalIPv6":       s.Connectivity.HasGlobalIPv6,
		"globalIPv6Addresses": s.Connectivity.GlobalIPv6,
		"portMappingEnabled":  s.PortMappingEnabled,
		"portMappingOrigin":   string(s.PortMappingOrigin),
		"nodeUUID":            s.NodeUUID.String(),
		"userUUID":            s.UserUUID.String(),
		"queueRoot":           s.QueueRoot,
	}

	if s.ConfigPath != "" {
		payload["configPath"] = s.ConfigPath
	}
	if s.MetricsAddress != "" {
		payload["metricsAddress"] = s.MetricsAddress
	}
	if s.Connectivity.ProbeError != "" {
		payload["ipv6ProbeError"] = s.Connectivity.ProbeError
	}
	if s.PortMapping != nil {
		payload["portMappingBackend"] = string(s.PortMapping.Backend)
		payload["portMappingExternalPort"] = s.PortMapping.ExternalPort
		payload["portMappingGateway"] = s.PortMapping.Gateway
		payload["portMappingService"] = s.PortMapping.Service
		payload["portMappingLeaseSeconds"] = s.PortMapping.LifetimeSeconds
		payload["portMappingRefreshedAt"] = s.PortMapping.RefreshedAt
	}
	if !s.LastPresenceUpdate.IsZero() {
		payload["lastPresenceUpdate"] = s.LastPresenceUpdate
	}
	if !s.LastReloadAt.IsZero() {
		payload["lastReload"] = s.LastReloadAt
		payload["lastReloadStatus"] = s.LastReloadStatus
		if s.LastReloadError != "" {
			payload["lastReloadMessage"] = s.LastReloadError
		}
	}

	connectivity := map[string]any{
		"hasGlobalIPv6": s.Connectivity.HasGlobalIPv6,
		"globalIPv6":    s.Connectivity.GlobalIPv6,
	}
	if s.PortMapping != nil {
		connectivity["portMapping"] = map[string]any{
			"backend":         string(s.PortMapping.Backend),
			"externalPort":    s.PortMapping.ExternalPort,
			"gateway":         s.PortMapping.Gateway,
			"service":         s.PortMapping.Service,
			"lifetimeSeconds": s.PortMapping.LifetimeSeconds,
			"refreshedAt":     s.PortMapping.RefreshedAt,
		}
	}
	payload["connectivity"] = connectivity

	return payload
}
