package ranking

import (
	"fmt"

	"github.com/Veraticus/spend-sense/internal/config"
	"github.com/Veraticus/spend-sense/internal/model"
)

// Dominant factor names.
const (
	FactorSeverity        = "severity"
	FactorGoalPressure    = "goal_pressure"
	FactorFrequency       = "frequency"
	FactorNightSpikes     = "night_spikes"
	FactorConsistencyRisk = "consistency_risk"
)

const (
	defaultTopGoal    = "Emergency Fund"
	unnamedGoal       = "primary goal"
	unnamedGoalImpact = "Core Goal"
)

type contribution struct {
	name  string
	value float64
}

// DominantFactor returns the behavior-level factor with the largest weighted
// contribution. Ties go to the factor listed first.
func DominantFactor(w config.ContextWeights, in Input) string {
	sig := signalsFrom(in.Profile)
	contributions := []contribution{
		{FactorSeverity, w.Severity * in.HabitSeverity},
		{FactorGoalPressure, w.Goal * in.GoalPressure()},
		{FactorFrequency, w.Urgency * sig.frequency},
		{FactorNightSpikes, w.Risk * sig.night},
		{FactorConsistencyRisk, w.Profile * (1 - sig.consistency)},
	}

	best := contributions[0]
	for _, c := range contributions[1:] {
		if c.value > best.value {
			best = c
		}
	}
	return best.name
}

// Rationale explains a ranking in user terms. Template-specific wording takes
// precedence over the dominant factor.
func Rationale(c model.Candidate, factor string, in Input, goalName string, timelineReduction float64) string {
	sig := signalsFrom(in.Profile)
	if goalName == "" {
		goalName = unnamedGoal
	}

	frequencyText := fmt.Sprintf("Frequency clustering behavior is increasing budget leakage risk (current weekly frequency index: %.2f).", sig.frequency)
	const nightText = "Night spending spikes are reducing your consistency score and increasing impulse exposure."

	switch c.TemplateKey {
	case model.TemplateBundlePlan:
		return frequencyText
	case model.TemplateTimeShift:
		return nightText
	case model.TemplateLowCostSwap:
		return "High-ticket purchase concentration is impacting affordability; this action reduces unit cost pressure."
	}

	switch factor {
	case FactorGoalPressure:
		return fmt.Sprintf("High discretionary volatility is directly delaying your %s timeline by about %.1f months.", goalName, timelineReduction)
	case FactorFrequency:
		return frequencyText
	case FactorNightSpikes:
		return nightText
	}

	if in.HabitSeverity >= 0.75 {
		return "Persistent habit severity is amplifying financial friction; this recommendation directly targets that risk."
	}
	return "Ranked for balanced impact on feasibility, risk control, and behavioral adherence."
}

// TechnicalWhy is the diagnostic one-liner shown in verbose output.
func TechnicalWhy(c model.Candidate, factor string, in Input) string {
	return fmt.Sprintf("Dominant factor: %s. Template=%s, habit_severity=%.2f, goal_pressure=%.2f, risk_awareness=%.2f.",
		factor, c.TemplateKey, in.HabitSeverity, in.GoalPressure(), in.RiskAwareness)
}

// topGoalName names the goal under the most pressure. Without upstream goal
// conflicts the emergency fund is assumed.
func topGoalName(up model.UpstreamSignals) string {
	top, ok := up.Conflict.TopGoal()
	if !ok {
		return defaultTopGoal
	}
	return top.GoalName
}
