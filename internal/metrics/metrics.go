// Package metrics exposes run, cycle, and outcome counters for Prometheus.
package metrics

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/JaimeStill/filer/internal/workflow"
)

// Unlisted is the category label recorded for classifier labels that are not
// in the configured table. It bounds the category label cardinality.
const Unlisted = "unlisted"

// Item results.
const (
	ResultMoved  = "moved"
	ResultFailed = "failed"
)

// Metrics is a workflow.Recorder that maintains Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry
	labels   []string

	Runs        *prometheus.CounterVec
	Cycles      prometheus.Counter
	Items       *prometheus.CounterVec
	Categories  *prometheus.CounterVec
	Faults      *prometheus.CounterVec
	Remaining   prometheus.Gauge
	RunDuration prometheus.Histogram
}

// New registers the filer collectors with a fresh registry. labels is the
// configured category table.
func New(labels []string) *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		labels:   slices.Clone(labels),

		Runs: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filer_runs_total",
				Help: "Total number of completed runs by halt reason",
			},
			[]string{"reason"},
		),
		Cycles: f.NewCounter(
			prometheus.CounterOpts{
				Name: "filer_cycles_total",
				Help: "Total number of completed pick-classify-relocate cycles",
			},
		),
		Items: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filer_items_total",
				Help: "Total number of relocation attempts by result",
			},
			[]string{"result"},
		),
		Categories: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filer_classifications_total",
				Help: "Total number of relocation attempts by assigned category",
			},
			[]string{"category"},
		),
		Faults: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filer_step_faults_total",
				Help: "Total number of recovered step faults by step",
			},
			[]string{"step"},
		),
		Remaining: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "filer_remaining_items",
				Help: "Items left pending when the last run halted",
			},
		),
		RunDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "filer_run_duration_seconds",
				Help:    "Run wall time in seconds",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
			},
		),
	}
}

// Registry returns the registry holding the filer collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RunStarted(ctx context.Context, runID uuid.UUID, startedAt time.Time) error {
	return nil
}

func (m *Metrics) ItemProcessed(ctx context.Context, runID uuid.UUID, o workflow.Outcome) error {
	result := ResultMoved
	if !o.Moved {
		result = ResultFailed
	}
	m.Items.WithLabelValues(result).Inc()
	m.Categories.WithLabelValues(m.category(o.Category)).Inc()
	return nil
}

func (m *Metrics) CycleCompleted(ctx context.Context, runID uuid.UUID, step int) error {
	m.Cycles.Inc()
	return nil
}

func (m *Metrics) RunHalted(ctx context.Context, res *workflow.Result) error {
	m.Runs.WithLabelValues(string(res.Reason)).Inc()
	m.Remaining.Set(float64(len(res.Remaining)))
	m.RunDuration.Observe(res.CompletedAt.Sub(res.StartedAt).Seconds())

	for _, f := range res.Faults {
		m.Faults.WithLabelValues(string(f.Step)).Inc()
	}
	return nil
}

func (m *Metrics) category(label string) string {
	if slices.Contains(m.labels, label) {
		return label
	}
	return Unlisted
}
