// Package metrics records Prometheus metrics for track processing runs.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Track outcome labels.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Recorder owns a registry and the pipeline collectors. A nil *Recorder
// records nothing.
type Recorder struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	tracksProcessed    *prometheus.CounterVec
	pointsIngested     prometheus.Counter
	timezoneUnresolved prometheus.Counter
	windowShrunk       prometheus.Counter
	smoothingSkipped   prometheus.Counter
	processingSeconds  prometheus.Histogram
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(r *Recorder) {
		if namespace != "" {
			r.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets the processing-time buckets.
func WithHistogramBuckets(buckets []float64) Option {
	return func(r *Recorder) {
		if len(buckets) > 0 {
			r.buckets = buckets
		}
	}
}

// WithRegistry uses an existing registry instead of a fresh one.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(r *Recorder) {
		if registry != nil {
			r.registry = registry
		}
	}
}

// New creates a Recorder and registers its collectors.
func New(opts ...Option) *Recorder {
	r := &Recorder{
		namespace: "trailstats",
		buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}

	factory := promauto.With(r.registry)

	r.tracksProcessed = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "tracks_processed_total",
		Help:      "Tracks processed, by outcome.",
	}, []string{"status"})
	r.pointsIngested = factory.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "track_points_total",
		Help:      "Track points turned into per-point records.",
	})
	r.timezoneUnresolved = factory.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "timezone_unresolved_total",
		Help:      "Track points whose timezone could not be resolved.",
	})
	r.windowShrunk = factory.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "smoothing_window_shrunk_total",
		Help:      "Tracks smoothed with a window smaller than configured.",
	})
	r.smoothingSkipped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "smoothing_skipped_total",
		Help:      "Tracks too short for any smoothing window.",
	})
	r.processingSeconds = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Name:      "track_processing_seconds",
		Help:      "Wall time to profile one track.",
		Buckets:   r.buckets,
	})

	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// TrackProcessed counts one track with the given status and duration.
func (r *Recorder) TrackProcessed(status string, took time.Duration) {
	if r == nil {
		return
	}
	r.tracksProcessed.WithLabelValues(status).Inc()
	r.processingSeconds.Observe(took.Seconds())
}

// PointsIngested adds ingested points and how many of them had no timezone.
func (r *Recorder) PointsIngested(points, unresolved int) {
	if r == nil {
		return
	}
	r.pointsIngested.Add(float64(points))
	r.timezoneUnresolved.Add(float64(unresolved))
}

// WindowShrunk counts a track smoothed with a reduced window.
func (r *Recorder) WindowShrunk() {
	if r == nil {
		return
	}
	r.windowShrunk.Inc()
}

// SmoothingSkipped counts a track that bypassed smoothing.
func (r *Recorder) SmoothingSkipped() {
	if r == nil {
		return
	}
	r.smoothingSkipped.Inc()
}

// WriteTextfile dumps the registry in the text exposition format, suitable
// for the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
