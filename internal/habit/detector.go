// Package habit detects recurring spending habits by blending a rule-based
// score with a trained classifier.
package habit

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/spend-sense/internal/common"
	"github.com/Veraticus/spend-sense/internal/config"
	"github.com/Veraticus/spend-sense/internal/inference"
	"github.com/Veraticus/spend-sense/internal/model"
)

// rule is one behavioral threshold and the points it contributes.
type rule struct {
	met    func(model.BehaviorFeatures) bool
	points float64
}

var rules = []rule{
	{points: 0.25, met: func(f model.BehaviorFeatures) bool { return f.AvgWeeklyFrequency >= 4 }},
	{points: 0.20, met: func(f model.BehaviorFeatures) bool { return f.Consistency >= 0.6 }},
	{points: 0.20, met: func(f model.BehaviorFeatures) bool { return f.WeeksActive >= 8 }},
	{points: 0.15, met: func(f model.BehaviorFeatures) bool { return f.WeekendRatio >= 0.55 }},
	{points: 0.20, met: func(f model.BehaviorFeatures) bool { return f.NightRatio >= 0.45 }},
}

// Detector implements the habit signal detector. It is safe for concurrent use.
type Detector struct {
	classifier inference.Handle
	tuning     config.HabitTuning
}

// NewDetector creates a detector. It never fails; an unavailable classifier
// makes every result fall back to the rule score.
func NewDetector(classifier inference.Handle, tuning config.HabitTuning) *Detector {
	return &Detector{
		classifier: classifier,
		tuning:     tuning,
	}
}

// Detect scores the features of one category.
func (d *Detector) Detect(features model.BehaviorFeatures, category model.Category) model.HabitDetection {
	nature := category.Nature()
	description := d.describe(features, category, nature)

	if nature == model.NatureFixed {
		// Fixed obligations are never treated as discretionary habits.
		return model.HabitDetection{
			Detected:    false,
			Category:    description,
			Intensity:   model.IntensityLow,
			Confidence:  0,
			Diagnostics: d.diagnostics(nil),
		}
	}

	ruleScore := RuleScore(features)

	var (
		mlScore  float64
		combined float64
		inferErr error
	)
	if d.classifier.Available() {
		mlScore, inferErr = d.classifier.Classifier.PredictProba(features.Vector())
		if inferErr != nil {
			slog.Debug("Habit classifier inference failed, using rule score",
				"category", category,
				"error", inferErr)
		}
	}

	if d.classifier.Available() && inferErr == nil {
		mlScore = common.Clamp01(mlScore)
		combined = d.tuning.MLWeight*mlScore + d.tuning.RuleWeight*ruleScore
	} else {
		mlScore = ruleScore
		combined = mlScore
	}
	combined = common.Clamp01(combined)

	return model.HabitDetection{
		Detected:   combined >= d.tuning.DetectThreshold,
		Category:   description,
		Intensity:  d.intensity(combined),
		Confidence: common.Round(combined, 3),
		Scores: model.HabitScores{
			MLScore:   common.Round(mlScore, 3),
			RuleScore: common.Round(ruleScore, 3),
		},
		Diagnostics: d.diagnostics(inferErr),
	}
}

// RuleScore sums the points of every satisfied behavioral threshold.
func RuleScore(features model.BehaviorFeatures) float64 {
	score := 0.0
	for _, r := range rules {
		if r.met(features) {
			score += r.points
		}
	}
	return common.Clamp01(score)
}

func (d *Detector) intensity(score float64) model.HabitIntensity {
	switch {
	case score >= d.tuning.HighThreshold:
		return model.IntensityHigh
	case score >= d.tuning.MediumThreshold:
		return model.IntensityMedium
	default:
		return model.IntensityLow
	}
}

// describe names the habit; the first matching pattern wins.
func (d *Detector) describe(f model.BehaviorFeatures, category model.Category, nature model.ExpenseNature) string {
	switch {
	case nature == model.NatureFixed:
		return fmt.Sprintf("Recurring fixed-payment pattern (%s)", category)
	case f.NightRatio >= d.tuning.LateNightRatio && category.IsFood():
		return "Late-night food spending"
	case f.WeekendRatio >= d.tuning.WeekendHeavyRatio:
		return fmt.Sprintf("Weekend-heavy %s spending", category)
	case f.AvgWeeklyFrequency >= d.tuning.HighFrequency:
		return fmt.Sprintf("High-frequency %s spending", category)
	default:
		return fmt.Sprintf("Recurring %s spending", category)
	}
}

func (d *Detector) diagnostics(inferErr error) model.Diagnostics {
	diag := model.Diagnostics{ModelLoaded: d.classifier.Available()}
	switch {
	case !d.classifier.Available():
		diag.Degraded = true
		diag.Reason = d.classifier.Status.Reason
		if diag.Reason == "" {
			diag.Reason = "habit model unavailable"
		}
	case inferErr != nil:
		diag.Degraded = true
		diag.Reason = "habit model inference failed: " + inferErr.Error()
	}
	return diag
}
