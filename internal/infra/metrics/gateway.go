package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"yiiep-sdk/pkg/yiiep"
)

func init() {
	register(
		gatewayCallsTotal,
		gatewayCallDuration,
	)
	// export a zero series per operation before the first call
	for _, op := range yiiep.Operations {
		gatewayCallsTotal.WithLabelValues(string(op), string(yiiep.OutcomeSuccess))
		gatewayCallDuration.WithLabelValues(string(op))
	}
}

var (
	// outcome: success|business_failure|verification_failure|transport_failure|input_error
	gatewayCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yiiep_gateway_calls_total",
			Help: "Yiiep API calls by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	gatewayCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yiiep_gateway_call_duration_seconds",
			Help:    "Duration of Yiiep API calls in seconds, signing and unwrapping included.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"op"},
	)
)

var _ yiiep.Observer = GatewayObserver{}

// GatewayObserver feeds SDK call outcomes into the gateway collectors.
type GatewayObserver struct{}

func (GatewayObserver) ObserveCall(op yiiep.Operation, outcome yiiep.Outcome, d time.Duration) {
	gatewayCallsTotal.WithLabelValues(norm(string(op)), string(outcome)).Inc()
	gatewayCallDuration.WithLabelValues(norm(string(op))).Observe(d.Seconds())
}
