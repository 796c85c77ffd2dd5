// Package metrics records the outcome of registry operations.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// A Recorder observes registry operations.
type Recorder interface {
	// Observe records an operation outcome.
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Nop is a Recorder discarding everything.
var Nop Recorder = nop{}

type nop struct{}

func (nop) Observe(context.Context, string, bool, time.Duration) {}

// A Prometheus records operations as Prometheus metrics.
type Prometheus struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
}

// NewPrometheus returns a new Prometheus recorder with its own registry.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "evidence",
			Name:      "operations_total",
			Help:      "Number of registry operations by result.",
		}, []string{"operation", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "evidence",
			Name:      "operation_duration_seconds",
			Help:      "Duration of registry operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	p.registry.MustRegister(
		p.operations,
		p.durations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// Observe implements Recorder.
func (p *Prometheus) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}

	status := "error"
	if success {
		status = "success"
	}
	p.operations.WithLabelValues(operation, status).Inc()
	p.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// Handler returns the HTTP handler exposing the recorded metrics.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
