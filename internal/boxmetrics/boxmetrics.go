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

// Package boxmetrics exposes Prometheus collectors for queue depth,
// Location Service record counts, and port-mapping refresh outcomes,
// served over a loopback-only HTTP listener.
package boxmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collectors groups every metric boxd registers. Each field is
// exported so callers can update metrics directly without a facade
// method per metric, the same shape the teacher's own metrics values
// take (named fields of concrete collector types).
type Collectors struct {
	QueueDepth     *prometheus.GaugeVec
	LocationNodes  prometheus.Gauge
	LocationStale  prometheus.Gauge
	PortMapRefresh *prometheus.CounterVec
	AdminLatency   *prometheus.HistogramVec
}

// New builds and registers every collector against a fresh registry.
func New() (*Collectors, *prometheus.Registry) {
	reg := prometheus.NewRegistry()

	c := &Collectors{
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "box",
			Name:      "queue_depth",
			Help:      "Number of objects currently stored in a queue.",
		}, []string{"queue"}),
		LocationNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "box",
			Name:      "location_nodes",
			Help:      "Number of node records held by the Location Service.",
		}),
		LocationStale: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "box",
			Name:      "location_stale_nodes",
			Help:      "Number of node records past their staleness threshold.",
		}),
		PortMapRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "box",
			Name:      "portmap_refresh_total",
			Help:      "Port-mapping refresh attempts, by outcome.",
		}, []string{"outcome"}),
		AdminLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "box",
			Name:      "admin_command_duration_seconds",
			Help:      "Admin control plane command handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
	}

	reg.MustRegister(
		c.QueueDepth,
		c.LocationNodes,
		c.LocationStale,
		c.PortMapRefresh,
		c.AdminLatency,
	)
	return c, reg
}
