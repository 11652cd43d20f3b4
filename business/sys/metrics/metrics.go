// Package metrics constructs the metrics the node exposes to prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blocktrading"

var (
	callsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "registry",
		Name:      "calls_total",
		Help:      "Count of registry calls submitted to the node.",
	}, []string{"call", "status"})
	callDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "registry",
		Name:      "call_duration_seconds",
		Help:      "Duration of registry calls including journaling.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"call", "status"})

	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Count of http requests handled.",
	}, []string{"method", "code"})
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of http requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "code"})
	panicsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "panics_total",
		Help:      "Count of panics recovered while handling requests.",
	})
)

// Calls records registry call outcomes. It satisfies the recorder the
// state package reports to.
type Calls struct{}

// NewCalls constructs a call recorder.
func NewCalls() *Calls {
	return &Calls{}
}

// ObserveCall counts the call and records how long it took.
func (*Calls) ObserveCall(call string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}

	if call == "" {
		call = "unknown"
	}

	callsTotal.WithLabelValues(call, status).Inc()
	callDuration.WithLabelValues(call, status).Observe(time.Since(started).Seconds())
}

// ObserveRequest counts an http request by method and status code.
func ObserveRequest(method string, statusCode int, started time.Time) {
	code := strconv.Itoa(statusCode)

	requestsTotal.WithLabelValues(method, code).Inc()
	requestDuration.WithLabelValues(method, code).Observe(time.Since(started).Seconds())
}

// AddPanic counts a recovered panic.
func AddPanic() {
	panicsTotal.Inc()
}
