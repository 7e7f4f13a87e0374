package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(bridgeRequestsTotal, bridgeRequestDuration) }

var (
	// route is the chi route pattern, never the raw path, to keep cardinality bounded.
	bridgeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_http_requests_total",
			Help: "Bridge HTTP requests by route, method and status code.",
		},
		[]string{"route", "method", "status"},
	)

	bridgeRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridge_http_request_duration_seconds",
			Help:    "Bridge HTTP handler latency in seconds.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
		},
		[]string{"route"},
	)
)

func ObserveHTTP(route, method string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	bridgeRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	bridgeRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}
