// Package conflict scores how strongly current spending behavior threatens
// each active financial goal.
package conflict

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/Veraticus/spend-sense/internal/common"
	"github.com/Veraticus/spend-sense/internal/config"
	"github.com/Veraticus/spend-sense/internal/model"
)

const (
	defaultGoalName = "Unnamed Goal"
	defaultPriority = 3
)

// NoGoalsExplanation is returned when there is nothing to score.
const NoGoalsExplanation = "No active goals were provided, so no behavior-goal conflicts were evaluated."

// Scorer implements the goal conflict scorer. It holds no mutable state.
type Scorer struct {
	tuning config.ConflictTuning
}

// NewScorer creates a scorer with the given tuning.
func NewScorer(tuning config.ConflictTuning) *Scorer {
	return &Scorer{tuning: tuning}
}

// Detect evaluates every goal against the behavior profile. An empty goal list
// yields the canonical no-conflict result.
func (s *Scorer) Detect(habit model.HabitDetection, goals []model.Goal, profile model.BehaviorProfile, ctx model.ConflictContext) model.ConflictResult {
	if len(goals) == 0 {
		return model.ConflictResult{
			ConflictDetected:     false,
			OverallConflictScore: 0,
			OverallSeverity:      model.SeverityLow,
			Alerts:               []model.ConflictAlert{},
			Explanation:          NoGoalsExplanation,
			GoalConflicts:        []model.GoalConflict{},
		}
	}

	behavior := s.BehaviorPressure(habit, profile)
	capacity := math.Max(sanitize(ctx.MonthlySavingsCapacity), 0)
	category := profile.Category

	conflicts := make([]model.GoalConflict, 0, len(goals))
	for _, raw := range goals {
		goal := NormalizeGoal(raw)
		goalPressure := s.GoalPressure(goal, capacity)
		categoryConflict := s.CategoryConflict(goal, category)
		discount := AlignmentDiscount(goal.Type, category)

		score := common.Clamp01(
			s.tuning.BehaviorMix*behavior +
				s.tuning.GoalMix*goalPressure +
				s.tuning.CategoryMix*categoryConflict -
				discount)
		severity := s.Severity(score)
		required := MonthlyRequired(goal)

		slog.Debug("Scored goal conflict",
			"goal", goal.Name,
			"behavior_pressure", behavior,
			"goal_pressure", goalPressure,
			"category_conflict", categoryConflict,
			"alignment_discount", discount,
			"score", score)

		conflicts = append(conflicts, model.GoalConflict{
			GoalName:          goal.Name,
			GoalType:          goal.Type,
			Severity:          severity,
			ConflictScore:     common.Round(score, 3),
			Priority:          goal.Priority,
			MonthlyRequired:   common.Round(required, 2),
			Explanation:       explanation(goal, category, severity, goalPressure),
			RecommendedAction: s.action(goal, category, score, required),
		})
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].ConflictScore > conflicts[j].ConflictScore
	})

	alerts := make([]model.ConflictAlert, 0, s.tuning.MaxAlerts)
	for _, gc := range conflicts {
		if len(alerts) >= s.tuning.MaxAlerts {
			break
		}
		if !gc.Severity.IsConflict() {
			continue
		}
		alerts = append(alerts, model.ConflictAlert{
			GoalName:          gc.GoalName,
			Severity:          gc.Severity,
			Message:           gc.Explanation,
			RecommendedAction: gc.RecommendedAction,
		})
	}

	overall := conflicts[0].ConflictScore
	overallSeverity := s.Severity(overall)
	detected := overallSeverity.IsConflict()

	return model.ConflictResult{
		ConflictDetected:     detected,
		OverallConflictScore: overall,
		OverallSeverity:      overallSeverity,
		Alerts:               alerts,
		Explanation:          overallExplanation(detected, overallSeverity, category, conflicts[0].GoalName),
		GoalConflicts:        conflicts,
	}
}

// NormalizeGoal clamps numeric fields to their floors and fills defaults.
// A zero priority is treated as unset.
func NormalizeGoal(g model.Goal) model.Goal {
	name := strings.TrimSpace(g.Name)
	if name == "" {
		name = defaultGoalName
	}
	goalType := model.GoalType(strings.TrimSpace(string(g.Type)))
	if goalType == "" {
		goalType = model.GoalGeneral
	}
	priority := g.Priority
	if priority == 0 {
		priority = defaultPriority
	}
	priority = min(max(priority, 1), 5)

	protected := make([]string, 0, len(g.ProtectedCategories))
	for _, c := range g.ProtectedCategories {
		protected = append(protected, string(model.NormalizeCategory(c)))
	}

	return model.Goal{
		Name:                name,
		Type:                goalType,
		ProtectedCategories: protected,
		TargetAmount:        math.Max(sanitize(g.TargetAmount), 0),
		CurrentAmount:       math.Max(sanitize(g.CurrentAmount), 0),
		TimelineMonths:      max(g.TimelineMonths, 1),
		Priority:            priority,
	}
}

// MonthlyRequired is the remaining funding gap spread across the timeline.
func MonthlyRequired(g model.Goal) float64 {
	remaining := math.Max(g.TargetAmount-g.CurrentAmount, 0)
	return remaining / float64(max(g.TimelineMonths, 1))
}

// BehaviorPressure measures how much the observed behavior competes with saving.
func (s *Scorer) BehaviorPressure(habit model.HabitDetection, profile model.BehaviorProfile) float64 {
	w := s.tuning.Behavior
	spend := math.Min(math.Max(sanitize(profile.Spend), 0)/s.tuning.SpendNormalizer, 1)
	frequency := math.Min(math.Max(sanitize(profile.Frequency), 0)/s.tuning.FrequencyNormalizer, 1)

	score := w.Confidence*common.Clamp01(habit.Confidence) +
		w.Spend*spend +
		w.Frequency*frequency +
		w.Weekend*common.Clamp01(profile.WeekendRatio) +
		w.Night*common.Clamp01(profile.NightRatio) +
		w.Consistency*common.Clamp01(profile.Consistency)
	if habit.Detected {
		score += w.Intensity * habit.Intensity.Score()
	}
	return common.Clamp01(score)
}

// GoalPressure combines priority, urgency, affordability and remaining progress.
// The goal must already be normalized.
func (s *Scorer) GoalPressure(g model.Goal, capacity float64) float64 {
	w := s.tuning.Goal

	progress := 1.0
	if g.TargetAmount > 0 {
		progress = math.Min(g.CurrentAmount/g.TargetAmount, 1)
	}
	urgency := math.Min(1, s.tuning.UrgencyHorizonMonths/float64(g.TimelineMonths))
	priority := float64(g.Priority) / 5
	required := MonthlyRequired(g)

	var affordability float64
	switch {
	case capacity > 0:
		affordability = math.Min(required/capacity, 1)
	case required > 0:
		affordability = 1
	}

	return common.Clamp01(w.Priority*priority +
		w.Urgency*urgency +
		w.Affordability*affordability +
		w.Progress*(1-progress))
}

// CategoryConflict looks up the goal-type by category penalty and adds the
// protected-category penalty.
func (s *Scorer) CategoryConflict(g model.Goal, category model.Category) float64 {
	penalty, ok := CategoryWeight(g.Type, category)
	if !ok {
		penalty = s.tuning.DefaultCategoryConflict
	}
	for _, p := range g.ProtectedCategories {
		if model.Category(p) == category {
			penalty += s.tuning.ProtectedPenalty
			break
		}
	}
	return common.Clamp01(penalty)
}

// Severity maps a score to its tier by descending threshold.
func (s *Scorer) Severity(score float64) model.Severity {
	switch {
	case score >= s.tuning.Severity.Critical:
		return model.SeverityCritical
	case score >= s.tuning.Severity.High:
		return model.SeverityHigh
	case score >= s.tuning.Severity.Medium:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

func explanation(g model.Goal, category model.Category, severity model.Severity, goalPressure float64) string {
	text := fmt.Sprintf("%s conflict: '%s' may be delayed because %s spending behavior is competing with required monthly goal funding.",
		severity, g.Name, categoryLabel(category))
	if goalPressure >= 0.75 {
		text += " Goal urgency and remaining funding gap are both high."
	}
	return text
}

func (s *Scorer) action(g model.Goal, category model.Category, score, required float64) string {
	label := categoryLabel(category)
	if score >= s.tuning.FreezeThreshold {
		return fmt.Sprintf("Immediate action required: freeze non-essential %s spends for one cycle and redirect at least %.2f to '%s'.",
			label, required, g.Name)
	}
	return fmt.Sprintf("Reallocate a fixed monthly amount of at least %.2f toward '%s' and set a category cap for %s.",
		required, g.Name, label)
}

func overallExplanation(detected bool, severity model.Severity, category model.Category, topGoal string) string {
	label := categoryLabel(category)
	if !detected {
		return fmt.Sprintf("Spending behavior in %s is currently aligned with your active goals. "+
			"Keep tracking monthly to catch early deviations.", label)
	}
	return fmt.Sprintf("%s behavior-goal conflict detected. Current %s spending pattern creates the largest risk for goal '%s'.",
		severity, label, topGoal)
}

func categoryLabel(c model.Category) string {
	if c == "" {
		return "this category"
	}
	return string(c)
}

func sanitize(v float64) float64 {
	if !common.IsFinite(v) {
		return 0
	}
	return v
}
