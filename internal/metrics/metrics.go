// Package metrics records operational metrics for ingest and export runs
// behind a backend-agnostic interface.
//
// A global backend defaults to a no-op, so instrumented code is always safe
// to call. Concrete systems live in subpackages (prompush, datadog) and are
// installed once at startup with SetBackend.
package metrics

import "time"

// Metric names shared by every backend.
const (
	StepTotal      = "maude_step_total"
	StepDuration   = "maude_step_duration_seconds"
	DocumentsTotal = "maude_documents_total"
	BatchesTotal   = "maude_batches_total"
	StatusSuccess  = "success"
	StatusFailure  = "failure"
	labelJob       = "job"
	labelStep      = "step"
	labelStatus    = "status"
	labelKind      = "kind"
)

// Document kinds counted by RecordDocs.
const (
	KindParsed       = "parsed"
	KindInserted     = "inserted"
	KindDuplicate    = "duplicate"
	KindFlattened    = "flattened"
	KindRecordErrors = "record_errors"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep counts one execution of step and observes its duration,
// labelled with the outcome.
func RecordStep(job, step string, err error, d time.Duration) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	lbls := Labels{labelJob: job, labelStep: step, labelStatus: status}
	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// Time runs fn as step and records it with RecordStep.
func Time(job, step string, fn func() error) error {
	start := time.Now()
	err := fn()
	RecordStep(job, step, err, time.Since(start))
	return err
}

// RecordDocs adds delta documents of kind (KindParsed, KindInserted, ...).
// Non-positive deltas are ignored.
func RecordDocs(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(DocumentsTotal, float64(delta), Labels{labelJob: job, labelKind: kind})
}

// RecordBatches increments the stored-batch counter for job.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(BatchesTotal, float64(delta), Labels{labelJob: job})
}
