// Package engine runs the evaluation pipeline: habit detection, goal conflict
// scoring, candidate generation and ranking, followed by the transaction
// alerts and month-level guidance built on their outputs.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spend-sense/internal/analysis"
	"github.com/Veraticus/spend-sense/internal/candidate"
	"github.com/Veraticus/spend-sense/internal/common"
	"github.com/Veraticus/spend-sense/internal/config"
	"github.com/Veraticus/spend-sense/internal/conflict"
	"github.com/Veraticus/spend-sense/internal/guidance"
	"github.com/Veraticus/spend-sense/internal/habit"
	"github.com/Veraticus/spend-sense/internal/inference"
	"github.com/Veraticus/spend-sense/internal/metrics"
	"github.com/Veraticus/spend-sense/internal/model"
	"github.com/Veraticus/spend-sense/internal/ranking"
)

// Pipeline holds the loaded model handles and stage implementations. It is
// safe for concurrent use: every stage is read-only after construction.
type Pipeline struct {
	detector  *habit.Detector
	scorer    *conflict.Scorer
	generator *candidate.Generator
	ranker    *ranking.Model
	recorder  metrics.Recorder
	statuses  []inference.Status
	topK      int
	workers   int
}

// Config holds configuration options for the pipeline.
type Config struct {
	Recorder metrics.Recorder
	TopK     int
	Workers  int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Recorder: metrics.Nop{},
		TopK:     5,
		Workers:  4,
	}
}

// New creates a pipeline with the default configuration.
func New(artifacts *inference.Artifacts, tuning config.Tuning) *Pipeline {
	return NewWithConfig(artifacts, tuning, DefaultConfig())
}

// NewWithConfig creates a pipeline with custom configuration. A nil artifacts
// bundle runs every stage on its heuristic path.
func NewWithConfig(artifacts *inference.Artifacts, tuning config.Tuning, cfg Config) *Pipeline {
	if artifacts == nil {
		artifacts = &inference.Artifacts{
			Habit:       inference.Unavailable("habit", "no artifact configured"),
			Suitability: inference.Unavailable("suitability", "no artifact configured"),
		}
	}
	if cfg.Recorder == nil {
		cfg.Recorder = metrics.Nop{}
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultConfig().TopK
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	return &Pipeline{
		detector:  habit.NewDetector(artifacts.Habit, tuning.Habit),
		scorer:    conflict.NewScorer(tuning.Conflict),
		generator: candidate.NewGenerator(artifacts.Suitability, artifacts.Templates, tuning.Candidate),
		ranker:    ranking.NewModel(tuning.Ranking),
		recorder:  cfg.Recorder,
		statuses:  artifacts.Statuses(),
		topK:      cfg.TopK,
		workers:   cfg.Workers,
	}
}

// Statuses reports how each model artifact was loaded.
func (p *Pipeline) Statuses() []inference.Status {
	return append([]inference.Status(nil), p.statuses...)
}

// Detect classifies the behavior in a category as a habit or not.
func (p *Pipeline) Detect(features model.BehaviorFeatures, category string) (model.HabitDetection, error) {
	cat, _, ok := model.LookupCategory(category)
	if !ok {
		return model.HabitDetection{}, unknownCategory(category)
	}
	if err := ValidateFeatures(features); err != nil {
		return model.HabitDetection{}, err
	}
	return p.detector.Detect(features, cat), nil
}

// DetectConflicts scores how the habit threatens each active goal.
func (p *Pipeline) DetectConflicts(habitResult model.HabitDetection, goals []model.Goal, profile model.BehaviorProfile, ctx model.ConflictContext) (model.ConflictResult, error) {
	for i, g := range goals {
		if err := ValidateGoal(g); err != nil {
			return model.ConflictResult{}, fmt.Errorf("active_goals[%d]: %w", i, err)
		}
	}
	if !common.IsFinite(ctx.MonthlySavingsCapacity) || ctx.MonthlySavingsCapacity < 0 {
		return model.ConflictResult{}, common.NewValidationError(common.ErrInvalidRequest, "monthly_savings_capacity", "must be a non-negative number")
	}

	result := p.scorer.Detect(habitResult, goals, profile, ctx)
	p.recorder.ObserveConflict(result.OverallSeverity)
	return result, nil
}

// Rank generates candidates for the habit and returns at most topK of them
// ranked and explained. A topK of zero uses the configured default.
func (p *Pipeline) Rank(habitResult model.HabitDetection, profile model.BehaviorProfile, upstream model.UpstreamSignals, topK int) []model.Recommendation {
	recs, _ := p.rank(habitResult, profile, upstream, p.resolveTopK(topK))
	return recs
}

func (p *Pipeline) rank(habitResult model.HabitDetection, profile model.BehaviorProfile, upstream model.UpstreamSignals, topK int) ([]model.Recommendation, candidate.Result) {
	generated := p.generator.Generate(habitResult, profile, topK)
	input := ranking.BuildInput(habitResult, profile, upstream)
	recs := p.ranker.Rank(generated.Candidates, input, topK)
	p.recorder.ObserveRecommendations(recs)
	return recs, generated
}

func (p *Pipeline) resolveTopK(topK int) int {
	if topK <= 0 {
		return p.topK
	}
	return topK
}

// Evaluate validates the request and runs every stage once.
func (p *Pipeline) Evaluate(ctx context.Context, req Request) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	logger := common.FromContext(ctx)
	cat, nature, _ := model.LookupCategory(req.Category)

	habitResult := p.detector.Detect(req.BehaviorFeatures, cat)
	profile := model.NewBehaviorProfile(req.BehaviorFeatures, cat, nature, habitResult, req.BehaviorStyle)

	alerts := analysis.AnalyzeTransaction(req.CurrentTransaction, profile)
	conflictResult := p.scorer.Detect(habitResult, req.ActiveGoals, profile, model.ConflictContext{
		MonthlySavingsCapacity: req.MonthlySavingsCapacity,
	})
	p.recorder.ObserveConflict(conflictResult.OverallSeverity)

	upstream := model.UpstreamSignals{
		Habit:             &habitResult,
		Conflict:          &conflictResult,
		TransactionAlerts: alerts,
	}
	recs, generated := p.rank(habitResult, profile, upstream, p.resolveTopK(req.TopK))

	coaching := guidance.Build(guidance.Input{
		Habit:           habitResult,
		Profile:         profile,
		Conflict:        conflictResult,
		Recommendations: recs,
		Alerts:          alerts,
		MonthlyCapacity: req.MonthlySavingsCapacity,
	})

	strategy := guidance.DefaultStrategy
	if len(recs) > 0 {
		strategy = recs[0].Recommendation
	}
	level := guidance.InterventionLevel(habitResult, profile)

	report := &Report{
		ID:                req.ID,
		Category:          cat,
		Nature:            nature,
		Habit:             habitResult,
		Profile:           profile,
		TransactionAlerts: alerts,
		Conflict:          conflictResult,
		Recommendations:   recs,
		Guidance:          coaching,
		PrimaryStrategy:   strategy,
		InterventionLevel: level,
		UnifiedSummary:    guidance.UnifiedSummary(level, strategy, alerts, conflictResult),
		Diagnostics: Diagnostics{
			CandidateMode: generated.Mode,
			Habit:         habitResult.Diagnostics,
			Suitability:   generated.Diagnostics,
			Artifacts:     p.Statuses(),
		},
	}

	degraded := habitResult.Diagnostics.Degraded || generated.Diagnostics.Degraded
	elapsed := time.Since(start)
	p.recorder.ObserveEvaluation(cat, string(generated.Mode), degraded, elapsed)

	logger.Debug("Evaluated request",
		slog.String("category", string(cat)),
		slog.Bool("habit_detected", habitResult.Detected),
		slog.String("severity", string(conflictResult.OverallSeverity)),
		slog.String("mode", string(generated.Mode)),
		slog.Int("recommendations", len(recs)),
		slog.Duration("elapsed", elapsed))

	return report, nil
}
