// Package metrics exposes the controller's per-tick counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Component run results.
const (
	ResultRan     = "ran"
	ResultSkipped = "skipped"
	ResultFailed  = "failed"
)

// Collector holds the controller's metrics. A nil *Collector is valid and
// records nothing, so callers never need to check.
type Collector struct {
	jobsAssigned  *prometheus.CounterVec
	unitErrors    *prometheus.CounterVec
	componentRuns *prometheus.CounterVec
	tickDuration  prometheus.Histogram
	bucket        prometheus.Gauge
	flagsRemoved  prometheus.Counter
	squads        prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewCollector creates the collectors and registers them on reg. A nil reg
// gets a fresh private registry.
func NewCollector(reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	c := &Collector{
		jobsAssigned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tundra_jobs_assigned_total",
			Help: "Jobs handed to idle units, by role",
		}, []string{"role"}),
		unitErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tundra_unit_errors_total",
			Help: "Errors reported while running units, by kind",
		}, []string{"kind"}),
		componentRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tundra_component_runs_total",
			Help: "Orchestrator component outcomes per tick",
		}, []string{"component", "result"}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tundra_tick_duration_seconds",
			Help:    "Wall time spent deciding one tick",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		bucket: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tundra_cpu_bucket",
			Help: "CPU bucket reported by the host on the last tick",
		}),
		flagsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tundra_flags_removed_total",
			Help: "Complete flags the host was asked to remove",
		}),
		squads: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tundra_squads",
			Help: "Live military squads",
		}),
		gatherer: reg,
	}
	reg.MustRegister(c.jobsAssigned, c.unitErrors, c.componentRuns, c.tickDuration, c.bucket, c.flagsRemoved, c.squads)
	return c
}

func (c *Collector) RecordAssigned(role string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.jobsAssigned.WithLabelValues(role).Add(float64(n))
}

func (c *Collector) RecordUnitError(kind string) {
	if c == nil {
		return
	}
	c.unitErrors.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordComponent(component, result string) {
	if c == nil {
		return
	}
	c.componentRuns.WithLabelValues(component, result).Inc()
}

// RecordTick observes one tick's duration in seconds and the bucket it ran on.
func (c *Collector) RecordTick(seconds float64, bucket int) {
	if c == nil {
		return
	}
	c.tickDuration.Observe(seconds)
	c.bucket.Set(float64(bucket))
}

func (c *Collector) RecordFlagsRemoved(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.flagsRemoved.Add(float64(n))
}

func (c *Collector) SetSquads(n int) {
	if c == nil {
		return
	}
	c.squads.Set(float64(n))
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
