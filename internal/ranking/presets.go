package ranking

import "github.com/Veraticus/spend-sense/internal/model"

// Bypass candidates skip scoring and are reported with fixed rows.
var presets = map[model.TemplateKey]model.Recommendation{
	model.TemplateStability: {
		Tier:           model.TierCritical,
		DominantFactor: "stability",
		Rationale:      "Fixed-expense category requires a stability-first recommendation.",
		TechnicalWhy:   "Dominant factor: stability control for fixed obligations.",
		ImpactsGoal:    "Cash Flow Stability",
		Difficulty:     model.DifficultyEasy,
		Breakdown: model.ScoreBreakdown{
			BaseScore:      0.9,
			HabitSeverity:  0.2,
			GoalPressure:   0.2,
			RiskFit:        0.8,
			ProfileFit:     0.8,
			UrgencySignal:  0.4,
			UpstreamSignal: 0.2,
		},
		RawScore:                 0.9,
		Score:                    0.9,
		ScorePct:                 90,
		FeasibilityImpactPct:     -4,
		SuccessProbabilityBefore: 84,
		SuccessProbabilityAfter:  90,
		TimelineReductionMonths:  1.1,
	},
	model.TemplateLightTouch: {
		Tier:           model.TierHigh,
		DominantFactor: "low_friction",
		Rationale:      "Habit signal is weak, so a low-friction recommendation is prioritized.",
		TechnicalWhy:   "Dominant factor: low-friction intervention fit under weak habit signal.",
		ImpactsGoal:    "Savings Consistency",
		Difficulty:     model.DifficultyEasy,
		Breakdown: model.ScoreBreakdown{
			BaseScore:      0.74,
			HabitSeverity:  0.25,
			GoalPressure:   0.2,
			RiskFit:        0.75,
			ProfileFit:     0.75,
			UrgencySignal:  0.3,
			UpstreamSignal: 0.25,
		},
		RawScore:                 0.74,
		Score:                    0.74,
		ScorePct:                 74,
		FeasibilityImpactPct:     -6,
		SuccessProbabilityBefore: 66,
		SuccessProbabilityAfter:  74,
		TimelineReductionMonths:  1.6,
	},
}

// presetFor returns the fixed row for a bypass candidate.
func presetFor(c model.Candidate) (model.Recommendation, bool) {
	row, ok := presets[c.TemplateKey]
	if !ok {
		return model.Recommendation{}, false
	}
	row.Recommendation = c.Recommendation
	row.TemplateKey = c.TemplateKey
	row.Rank = 1
	return row, true
}
