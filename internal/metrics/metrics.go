// Package metrics records pipeline activity as Prometheus metrics.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Veraticus/spend-sense/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives pipeline observations. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveEvaluation(category model.Category, mode string, degraded bool, elapsed time.Duration)
	ObserveConflict(severity model.Severity)
	ObserveRecommendations(recs []model.Recommendation)
}

// Nop discards every observation.
type Nop struct{}

// ObserveEvaluation implements Recorder.
func (Nop) ObserveEvaluation(model.Category, string, bool, time.Duration) {}

// ObserveConflict implements Recorder.
func (Nop) ObserveConflict(model.Severity) {}

// ObserveRecommendations implements Recorder.
func (Nop) ObserveRecommendations([]model.Recommendation) {}

// Prometheus is a Recorder backed by its own registry, so it never collides
// with collectors registered by other code in the process.
type Prometheus struct {
	registry        *prometheus.Registry
	evaluations     *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	conflicts       *prometheus.CounterVec
	recommendations *prometheus.CounterVec
	scores          prometheus.Histogram
}

// NewPrometheus creates and registers the spend-sense collectors.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),

		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sense_evaluations_total",
				Help: "Total number of pipeline evaluations by category, generation mode and degradation",
			},
			[]string{"category", "mode", "degraded"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sense_evaluation_duration_seconds",
				Help:    "Duration of one pipeline evaluation in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"mode"},
		),

		conflicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sense_goal_conflicts_total",
				Help: "Total number of conflict evaluations by overall severity",
			},
			[]string{"severity"},
		),

		recommendations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sense_recommendations_total",
				Help: "Total number of ranked recommendations returned by tier",
			},
			[]string{"tier"},
		),

		scores: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sense_recommendation_score",
				Help:    "Calibrated scores of returned recommendations",
				Buckets: prometheus.LinearBuckets(0.55, 0.05, 9),
			},
		),
	}

	p.registry.MustRegister(p.evaluations, p.duration, p.conflicts, p.recommendations, p.scores)
	return p
}

// Registry exposes the private registry, mainly for tests and exporters.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// ObserveEvaluation implements Recorder.
func (p *Prometheus) ObserveEvaluation(category model.Category, mode string, degraded bool, elapsed time.Duration) {
	p.evaluations.WithLabelValues(string(category), mode, strconv.FormatBool(degraded)).Inc()
	p.duration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// ObserveConflict implements Recorder.
func (p *Prometheus) ObserveConflict(severity model.Severity) {
	p.conflicts.WithLabelValues(string(severity)).Inc()
}

// ObserveRecommendations implements Recorder.
func (p *Prometheus) ObserveRecommendations(recs []model.Recommendation) {
	for _, r := range recs {
		p.recommendations.WithLabelValues(string(r.Tier)).Inc()
		p.scores.Observe(r.Score)
	}
}

// WriteTextfile writes the current metric values in the node_exporter
// textfile format.
func (p *Prometheus) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
