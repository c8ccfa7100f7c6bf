// Package metrics records operational metrics for campaign ETL runs behind a
// narrow, pluggable Backend. The default backend is a no-op, so callers never
// need to check whether metrics are enabled.
//
// Concrete metric systems live in subpackages (see prompush) and are
// installed once at startup with SetBackend.
package metrics

import "time"

// Metric names shared by all backends.
const (
	StepTotal    = "campaign_etl_step_total"
	StepDuration = "campaign_etl_step_duration_seconds"
	RowsTotal    = "campaign_etl_rows_total"
	BatchesTotal = "campaign_etl_batches_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered metrics, if the backend needs it (e.g. Pushgateway).
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

// RecordStep counts one execution of a pipeline step and records its
// duration, labelled by outcome.
//
// Steps: ingest, consolidate, project, emit, load.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}
	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// Track returns a func that records step when called with the step's error.
//
//	done := metrics.Track(job, "emit")
//	err := emit()
//	done(err)
func Track(job, step string) func(error) {
	start := time.Now()
	return func(err error) { RecordStep(job, step, err, time.Since(start)) }
}

// RecordRows adds delta rows of the given kind for table. Kinds used by the
// pipeline: ingested, emitted, loaded, duplicate_client_id.
func RecordRows(job, table, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{"job": job, "table": table, "kind": kind})
}

// RecordBatches counts database batches flushed for table.
func RecordBatches(job, table string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(BatchesTotal, float64(delta), Labels{"job": job, "table": table})
}
