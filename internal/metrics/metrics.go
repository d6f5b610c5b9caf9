// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package metrics exports prometheus counters for the calculator servers.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OpMalformed labels requests that failed to decode.
const OpMalformed = "malformed"

var (
	registerOnce sync.Once

	requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "calcproto",
			Name:      "requests_total",
			Help:      "Requests answered, by transport, operation and status.",
		},
		[]string{"transport", "op", "status"},
	)
	sessions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "calcproto",
			Name:      "sessions_active",
			Help:      "Open client connections on connection oriented transports.",
		},
		[]string{"transport"},
	)
)

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(requests, sessions)
	})
}

// RecordRequest counts one answered request. op is the operation name or
// OpMalformed.
func RecordRequest(transport, op, status string) {
	Register()
	requests.WithLabelValues(transport, op, status).Inc()
}

// SessionOpened tracks a new connection. The returned func must be called
// once the connection is closed.
func SessionOpened(transport string) (closed func()) {
	Register()
	g := sessions.WithLabelValues(transport)
	g.Inc()
	return g.Dec
}

// Handler serves the default registry in the prometheus text format.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}
