package ranking

import (
	"math"

	"github.com/Veraticus/spend-sense/internal/config"
)

// Weights adapts the base weights to the context. Each shift is paired with a
// subtraction from a donor component, capped at what the donor holds, so the
// weights always keep the base total and stay non-negative.
func (m *Model) Weights(in Input) config.ContextWeights {
	w := m.tuning.Weights
	s := m.tuning.Shifts

	if in.GoalFeasibility < s.LowFeasibility {
		take := math.Min(s.GoalShift+s.UrgencyShift, w.Base)
		goal := take * share(s.GoalShift, s.UrgencyShift)
		w.Base -= take
		w.Goal += goal
		w.Urgency += take - goal
	}
	if in.HabitSeverity > s.HighSeverity {
		take := math.Min(s.SeverityShift, w.Profile)
		w.Profile -= take
		w.Severity += take
	}
	if in.RiskAwareness < s.LowRiskAwareness {
		take := math.Min(s.RiskShift, w.Upstream)
		w.Upstream -= take
		w.Risk += take
	}
	return w
}

func share(part, other float64) float64 {
	if part+other == 0 {
		return 0
	}
	return part / (part + other)
}
