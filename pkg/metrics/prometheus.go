package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	agentRuns      *prometheus.CounterVec
	agentDuration  *prometheus.HistogramVec
	analyses       *prometheus.CounterVec
	lastScore      *prometheus.GaugeVec
	symbolFailures *prometheus.CounterVec
	batchSize      prometheus.Histogram
	batchDuration  prometheus.Histogram
	publishErrors  *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		agentRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocksage_agent_runs_total",
				Help: "Total agent runs by outcome (ok, skipped, unavailable, error, timeout)",
			},
			[]string{"agent", "outcome"},
		),
		agentDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stocksage_agent_duration_seconds",
				Help:    "Duration of individual agent runs",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"agent"},
		),
		analyses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocksage_analyses_total",
				Help: "Total completed analyses by recommendation",
			},
			[]string{"recommendation"},
		),
		lastScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stocksage_last_score",
				Help: "Last combined score for a symbol",
			},
			[]string{"symbol"},
		),
		symbolFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocksage_symbol_failures_total",
				Help: "Total per-symbol analysis failures by reason",
			},
			[]string{"reason"},
		),
		batchSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stocksage_batch_size",
				Help:    "Number of symbols per batch request",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
			},
		),
		batchDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stocksage_batch_duration_seconds",
				Help:    "End-to-end batch scoring duration",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		publishErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocksage_publish_errors_total",
				Help: "Total result publication errors by sink",
			},
			[]string{"sink"},
		),
	}
}

// RecordAgentRun records one agent run with its outcome and duration.
func (r *Recorder) RecordAgentRun(agent, outcome string, seconds float64) {
	r.agentRuns.WithLabelValues(agent, outcome).Inc()
	r.agentDuration.WithLabelValues(agent).Observe(seconds)
}

// RecordAnalysis records a completed per-symbol analysis.
func (r *Recorder) RecordAnalysis(symbol string, score float64, recommendation string) {
	r.analyses.WithLabelValues(recommendation).Inc()
	r.lastScore.WithLabelValues(symbol).Set(score)
}

// RecordSymbolFailure records a failed per-symbol analysis.
func (r *Recorder) RecordSymbolFailure(reason string) {
	r.symbolFailures.WithLabelValues(reason).Inc()
}

// RecordBatch records batch size and duration.
func (r *Recorder) RecordBatch(size int, seconds float64) {
	r.batchSize.Observe(float64(size))
	r.batchDuration.Observe(seconds)
}

// RecordPublishError records a failed publication to a result sink.
func (r *Recorder) RecordPublishError(sink string) {
	r.publishErrors.WithLabelValues(sink).Inc()
}
