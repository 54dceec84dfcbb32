// Package metrics is a small, backend-agnostic seam for recording
// operational metrics from runs.
//
// The global backend defaults to a no-op, so every call site is safe
// when nothing is configured. A deployment that wants real metrics
// installs a Backend with SetBackend before starting a run; the library
// bundles no exporters.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface a metrics system must satisfy.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a duration-style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the
// existing backend.
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

// RecordFile records one processed input file: latency plus a
// success/failure counter. op is "convert" or "load".
func RecordFile(op, file string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"op":     op,
		"file":   file,
		"status": status,
	}
	backend.IncCounter("dgkit_files_total", 1, lbls)
	backend.ObserveHistogram("dgkit_file_duration_seconds", d.Seconds(), lbls)
}

// RecordRecords increments a record-level counter for the given op.
//
// Typical kinds mirror the summary fields:
//   - "read"
//   - "dropped"
//   - "modified"
//   - "written"
//   - "unhandled"
func RecordRecords(op, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("dgkit_records_total", float64(delta), Labels{
		"op":   op,
		"kind": kind,
	})
}

// RecordBatch counts one batch flushed by a database writer.
func RecordBatch(format, table string, rows int) {
	if rows <= 0 {
		return
	}
	backend.IncCounter("dgkit_batches_total", 1, Labels{
		"format": format,
		"table":  table,
	})
	backend.IncCounter("dgkit_batch_rows_total", float64(rows), Labels{
		"format": format,
		"table":  table,
	})
}
