package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outbound bahn.de call metrics. The inbound HTTP surface is instrumented
// separately by ginprom.

var UpstreamRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bahn_upstream_requests_total",
		Help: "Total number of outbound bahn.de requests by endpoint and status",
	},
	[]string{"endpoint", "status"},
)

var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "bahn_upstream_request_duration_seconds",
		Help:    "Outbound bahn.de request duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0, 10.0},
	},
	[]string{"endpoint"},
)

var ZeroPriceDaysTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bahn_zero_price_days_total",
		Help: "Day queries that produced the zero-price sentinel, by reason",
	},
	[]string{"reason"},
)
