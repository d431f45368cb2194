// Package guidance turns the pipeline outputs into month-level coaching:
// which goal to focus on, a strategic direction, a short roadmap, an
// alignment score and the projected impact of the top recommendations.
package guidance

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Veraticus/spend-sense/internal/common"
	"github.com/Veraticus/spend-sense/internal/model"
)

// PriorityFormula documents how goals are ordered in PrimaryFocus.
const PriorityFormula = "GoalPriority x ConflictSeverity x FeasibilityDrop"

// DefaultStrategy is used when ranking produced no recommendation.
const DefaultStrategy = "Set a weekly spending cap."

// ScoredGoal is one goal's share of the user's attention.
type ScoredGoal struct {
	GoalName            string         `json:"goal_name"`
	GoalType            model.GoalType `json:"goal_type"`
	GoalPriority        float64        `json:"goal_priority"`
	ConflictSeverity    float64        `json:"conflict_severity"`
	FeasibilityDrop     float64        `json:"feasibility_drop"`
	GlobalPriorityScore float64        `json:"global_priority_score"`
}

// PrimaryFocus names the goal that deserves attention first.
type PrimaryFocus struct {
	TopGoal     *ScoredGoal  `json:"top_goal,omitempty"`
	Message     string       `json:"message"`
	Formula     string       `json:"global_priority_formula"`
	ScoredGoals []ScoredGoal `json:"scored_goals"`
}

// Alignment grades how well current behavior matches the goals.
type Alignment struct {
	Label    string  `json:"label"`
	ScorePct float64 `json:"score_pct"`
}

// Impact projects what following the top recommendations would achieve.
type Impact struct {
	PotentialSavingsMonthly float64 `json:"potential_savings_monthly"`
	GoalGapCoveredPct       float64 `json:"goal_gap_covered_pct"`
	TimelineReductionMonths float64 `json:"timeline_reduction_months"`
}

// Guidance is the month-level coaching summary.
type Guidance struct {
	PrimaryFocus     PrimaryFocus `json:"primary_financial_focus_area"`
	MonthlyDirection string       `json:"monthly_strategic_direction"`
	Roadmap          []string     `json:"personalized_roadmap_suggestion"`
	Alignment        Alignment    `json:"financial_alignment_score"`
	Impact           Impact       `json:"impact_summary"`
}

// Input gathers what Build needs from the pipeline.
type Input struct {
	Habit           model.HabitDetection
	Profile         model.BehaviorProfile
	Conflict        model.ConflictResult
	Recommendations []model.Recommendation
	Alerts          []string
	MonthlyCapacity float64
}

// Build assembles the guidance for one evaluation.
func Build(in Input) Guidance {
	focus := Focus(in.Conflict, in.MonthlyCapacity)
	return Guidance{
		PrimaryFocus:     focus,
		MonthlyDirection: MonthlyDirection(in.Conflict, in.Habit, in.Profile, in.Alerts),
		Roadmap:          Roadmap(focus, in.Profile, in.Conflict),
		Alignment:        AlignmentScore(in.Conflict, in.Habit, in.Profile),
		Impact:           ImpactSummary(in.Recommendations, in.Conflict),
	}
}

// Focus scores every goal conflict by priority, conflict severity and how far
// savings capacity falls short of the monthly requirement.
func Focus(conflict model.ConflictResult, capacity float64) PrimaryFocus {
	capacity = math.Max(capacity, 0)

	scored := make([]ScoredGoal, 0, len(conflict.GoalConflicts))
	for _, gc := range conflict.GoalConflicts {
		priority := float64(min(max(gc.Priority, 1), 5)) / 5
		severity := common.Clamp01(gc.ConflictScore)

		drop := 0.0
		if required := math.Max(gc.MonthlyRequired, 0); required > 0 {
			feasibility := 0.0
			if capacity > 0 {
				feasibility = math.Min(capacity/required, 1)
			}
			drop = 1 - feasibility
		}

		scored = append(scored, ScoredGoal{
			GoalName:            gc.GoalName,
			GoalType:            gc.GoalType,
			GoalPriority:        common.Round(priority, 4),
			ConflictSeverity:    common.Round(severity, 4),
			FeasibilityDrop:     common.Round(drop, 4),
			GlobalPriorityScore: common.Round(priority*severity*drop, 4),
		})
	}

	if len(scored) == 0 {
		return PrimaryFocus{
			Message:     "No active goal pressure detected right now.",
			Formula:     PriorityFormula,
			ScoredGoals: []ScoredGoal{},
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].GlobalPriorityScore > scored[j].GlobalPriorityScore
	})
	top := scored[0]
	return PrimaryFocus{
		TopGoal:     &top,
		Message:     fmt.Sprintf("Your current financial priority should be strengthening your %s.", top.GoalName),
		Formula:     PriorityFormula,
		ScoredGoals: scored,
	}
}

// MonthlyDirection picks one of three focus statements by conflict level,
// habit intensity and alert count.
func MonthlyDirection(conflict model.ConflictResult, habit model.HabitDetection, profile model.BehaviorProfile, alerts []string) string {
	category := strings.ReplaceAll(string(profile.Category), "_", " ")
	if category == "" {
		category = "discretionary"
	}

	switch {
	case conflict.OverallConflictScore >= 0.75 || habit.Intensity == model.IntensityHigh:
		return fmt.Sprintf("This month's key focus: Control discretionary spending in %s to prevent liquidity risk.", category)
	case conflict.OverallConflictScore >= 0.5 || len(alerts) >= 2:
		return fmt.Sprintf("This month's key focus: Stabilize %s spending and enforce weekly caps.", category)
	default:
		return fmt.Sprintf("This month's key focus: Maintain %s discipline and preserve monthly savings consistency.", category)
	}
}

// Roadmap returns three ordered steps.
func Roadmap(focus PrimaryFocus, profile model.BehaviorProfile, conflict model.ConflictResult) []string {
	goal := "core goals"
	if focus.TopGoal != nil && strings.TrimSpace(focus.TopGoal.GoalName) != "" {
		goal = strings.TrimSpace(focus.TopGoal.GoalName)
	}
	category := string(profile.Category)
	if category == "" {
		category = "discretionary spending"
	}

	last := "Step 3: Increase long-term allocation efficiency while maintaining current control."
	if conflict.OverallConflictScore >= 0.62 {
		last = "Step 3: Increase long-term allocation efficiency after one low-conflict cycle."
	}
	return []string{
		fmt.Sprintf("Step 1: Stabilize %s reserves.", goal),
		fmt.Sprintf("Step 2: Optimize %s cash flow and remove leakage.", category),
		last,
	}
}

// AlignmentScore rewards low conflict, weak habits, consistency and weekday spending.
func AlignmentScore(conflict model.ConflictResult, habit model.HabitDetection, profile model.BehaviorProfile) Alignment {
	alignment := 0.45*(1-common.Clamp01(conflict.OverallConflictScore)) +
		0.25*(1-common.Clamp01(habit.Confidence)) +
		0.20*common.Clamp01(profile.Consistency) +
		0.10*(1-common.Clamp01(profile.WeekendRatio))
	pct := common.Round(common.Clamp(alignment*100, 0, 100), 1)

	var label string
	switch {
	case pct >= 85:
		label = "Strongly Aligned"
	case pct >= 70:
		label = "Moderate Optimization Needed"
	case pct >= 55:
		label = "Alignment At Risk"
	default:
		label = "Critical Realignment Needed"
	}
	return Alignment{ScorePct: pct, Label: label}
}

// ImpactSummary projects savings and timeline gains from the top three recommendations.
func ImpactSummary(recs []model.Recommendation, conflict model.ConflictResult) Impact {
	if len(recs) == 0 {
		return Impact{}
	}
	top := recs[:min(len(recs), 3)]

	var scoreSum, timelineSum float64
	for _, r := range top {
		scoreSum += r.Score
		timelineSum += r.TimelineReductionMonths
	}
	n := float64(len(top))
	savings := common.Round(2200+scoreSum/n*7800, 2)

	required := 1.0
	if goal, ok := conflict.TopGoal(); ok {
		required = math.Max(goal.MonthlyRequired, 1)
	}

	return Impact{
		PotentialSavingsMonthly: savings,
		GoalGapCoveredPct:       common.Round(math.Min(savings/required*100, 100), 1),
		TimelineReductionMonths: common.Round(math.Max(0.8, timelineSum/n), 1),
	}
}

// InterventionLevel is Low for fixed obligations and the habit intensity otherwise.
func InterventionLevel(habit model.HabitDetection, profile model.BehaviorProfile) model.HabitIntensity {
	if profile.Nature == model.NatureFixed {
		return model.IntensityLow
	}
	return habit.Intensity
}

// UnifiedSummary condenses the evaluation into one paragraph.
func UnifiedSummary(level model.HabitIntensity, strategy string, alerts []string, conflict model.ConflictResult) string {
	if strategy == "" {
		strategy = DefaultStrategy
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s intervention: %s", level, strategy)
	if len(alerts) > 0 {
		fmt.Fprintf(&b, " Key alert: %s", alerts[0])
	}
	if len(alerts) > 1 {
		fmt.Fprintf(&b, " Also, %s", alerts[1])
	}
	if len(conflict.Alerts) > 0 {
		fmt.Fprintf(&b, " Goal conflict: %s", conflict.Alerts[0].Message)
	}
	return b.String()
}
