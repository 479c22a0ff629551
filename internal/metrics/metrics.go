// Package metrics records analysis counters and exports them in the
// Prometheus text format for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/phobologic/rsinspect/internal/model"
)

const namespace = "rsinspect"

// Recorder holds the metrics of one process. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry    *prometheus.Registry
	files       prometheus.Counter
	parseErrors prometheus.Counter
	cacheHits   prometheus.Counter
	diagnostics *prometheus.CounterVec
	duration    prometheus.Histogram
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_analyzed_total",
			Help:      "Source files parsed and inspected.",
		}),
		parseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "Source files skipped because they could not be read or parsed.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Runs answered from the report cache.",
		}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Reported diagnostics by inspection and severity.",
		}, []string{"inspection", "severity"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of a full analysis run.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
	r.registry.MustRegister(r.files, r.parseErrors, r.cacheHits, r.diagnostics, r.duration)
	return r
}

// FileAnalyzed counts one parsed file.
func (r *Recorder) FileAnalyzed() {
	if r == nil {
		return
	}
	r.files.Inc()
}

// ParseError counts one skipped file.
func (r *Recorder) ParseError() {
	if r == nil {
		return
	}
	r.parseErrors.Inc()
}

// CacheHit counts one cached run.
func (r *Recorder) CacheHit() {
	if r == nil {
		return
	}
	r.cacheHits.Inc()
}

// Report counts every diagnostic in rep.
func (r *Recorder) Report(rep *model.Report) {
	if r == nil {
		return
	}
	for _, d := range rep.Diagnostics() {
		r.diagnostics.WithLabelValues(d.Inspection, string(d.Severity)).Inc()
	}
}

// ObserveRun records the duration of a run that started at start.
func (r *Recorder) ObserveRun(start time.Time) {
	if r == nil {
		return
	}
	r.duration.Observe(time.Since(start).Seconds())
}

// Gatherer exposes the registry, mainly for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteFile writes all metrics to path atomically.
func (r *Recorder) WriteFile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
