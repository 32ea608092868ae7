// Package metrics exposes Prometheus instrumentation for the synthesis
// engine: search progress, candidate rejection reasons and ranking calls.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rejection reasons recorded on candidates_rejected_total.
const (
	ReasonDisconnected  = "disconnected"
	ReasonInvalidDOF    = "invalid_dof"
	ReasonVisited       = "visited"
	ReasonUnsatisfiable = "unsatisfiable_rule"
)

// Search outcomes recorded on searches_total.
const (
	OutcomeGoal      = "goal"
	OutcomeExhausted = "exhausted"
)

// Registry holds all metrics for the synthesizer.
type Registry struct {
	SearchesTotal      *prometheus.CounterVec
	SearchDuration     prometheus.Histogram
	IterationsTotal    prometheus.Counter
	RulesAppliedTotal  *prometheus.CounterVec
	CandidatesRejected *prometheus.CounterVec
	FrontierSize       prometheus.Gauge
	RankingCallsTotal  *prometheus.CounterVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// Default returns the process-wide metrics registry.
func Default() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a metrics registry with all metrics initialized.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{registry: reg}

	r.SearchesTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mechsynth_searches_total",
			Help: "Per-seed synthesis searches by outcome",
		},
		[]string{"outcome"},
	)

	r.SearchDuration = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mechsynth_search_duration_seconds",
			Help:    "Wall-clock duration of a per-seed search",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
	)

	r.IterationsTotal = promauto.With(reg).NewCounter(
		prometheus.CounterOpts{
			Name: "mechsynth_iterations_total",
			Help: "Total frontier pops across all searches",
		},
	)

	r.RulesAppliedTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mechsynth_rules_applied_total",
			Help: "Accepted rule applications by rule ID",
		},
		[]string{"rule_id"},
	)

	r.CandidatesRejected = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mechsynth_candidates_rejected_total",
			Help: "Candidate graphs rejected before enqueueing, by reason",
		},
		[]string{"reason"},
	)

	r.FrontierSize = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "mechsynth_frontier_size",
			Help: "Current size of the active search frontier",
		},
	)

	r.RankingCallsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "mechsynth_ranking_calls_total",
			Help: "Seed ranking calls by provider and status",
		},
		[]string{"provider", "status"},
	)

	return r
}

// PrometheusRegistry returns the underlying registry for scraping or
// gathering.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// RecordSearch records a completed per-seed search.
func (r *Registry) RecordSearch(outcome string, duration time.Duration) {
	r.SearchesTotal.WithLabelValues(outcome).Inc()
	r.SearchDuration.Observe(duration.Seconds())
}

// RecordRuleApplied records an accepted rule application.
func (r *Registry) RecordRuleApplied(ruleID string) {
	r.RulesAppliedTotal.WithLabelValues(ruleID).Inc()
}

// RecordRejection records a discarded candidate.
func (r *Registry) RecordRejection(reason string) {
	r.CandidatesRejected.WithLabelValues(reason).Inc()
}

// RecordRankingCall records one call to a seed ranker.
func (r *Registry) RecordRankingCall(provider string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.RankingCallsTotal.WithLabelValues(provider, status).Inc()
}
