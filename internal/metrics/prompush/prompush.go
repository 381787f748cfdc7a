// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// Ingest and export are short-lived batch runs, so instead of exposing a
// scrape endpoint the collected registry is pushed once on Flush, grouped by
// the run's job name.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"maude/internal/metrics"
)

// DefaultJob is the Pushgateway grouping used when none is given.
const DefaultJob = "maude"

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stepCounter  *prometheus.CounterVec // maude_step_total{step,status}
	stepDuration *prometheus.SummaryVec // maude_step_duration_seconds{step,status}
	docCounter   *prometheus.CounterVec // maude_documents_total{kind}
	batchCounter prometheus.Counter     // maude_batches_total
}

// NewBackend constructs a Pushgateway backend. jobName is the grouping key,
// usually the configured job.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = DefaultJob
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        prometheus.NewRegistry(),
		stepCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Ingest and export steps executed, by step and status.",
		}, []string{"step", "status"}),
		stepDuration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       metrics.StepDuration,
			Help:       "Duration of ingest and export steps in seconds.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"step", "status"}),
		docCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.DocumentsTotal,
			Help: "Event documents by outcome (parsed, inserted, duplicate, flattened, record_errors).",
		}, []string{"kind"}),
		batchCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metrics.BatchesTotal,
			Help: "Insert batches committed to the record store.",
		}),
	}
	for _, c := range []prometheus.Collector{b.stepCounter, b.stepDuration, b.docCounter, b.batchCounter} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register: %w", err)
		}
	}
	return b, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		if b.stepCounter != nil {
			b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)
		}
	case metrics.DocumentsTotal:
		if b.docCounter != nil {
			b.docCounter.WithLabelValues(labels["kind"]).Add(delta)
		}
	case metrics.BatchesTotal:
		if b.batchCounter != nil {
			b.batchCounter.Add(delta)
		}
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDuration || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
