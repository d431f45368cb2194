package ranking

import (
	"github.com/Veraticus/spend-sense/internal/common"
	"github.com/Veraticus/spend-sense/internal/model"
)

// Input is the per-call context every candidate is scored against.
type Input struct {
	Upstream        model.UpstreamSignals
	Profile         model.BehaviorProfile
	HabitSeverity   float64
	GoalFeasibility float64
	RiskAwareness   float64
}

// GoalPressure is the complement of goal feasibility.
func (in Input) GoalPressure() float64 {
	return 1 - in.GoalFeasibility
}

// BuildInput derives the ranking context from the habit verdict, the profile
// and whatever upstream outputs are available.
func BuildInput(habit model.HabitDetection, profile model.BehaviorProfile, upstream model.UpstreamSignals) Input {
	confidence := common.Clamp01(habit.Confidence)
	severity := common.Clamp01(0.65*habit.Intensity.Score() + 0.35*confidence)

	conflict := 0.0
	if upstream.Conflict != nil {
		conflict = upstream.Conflict.OverallConflictScore
	}

	consistency := common.Clamp01(profile.Consistency)
	night := common.Clamp01(profile.NightRatio)

	return Input{
		Upstream:        upstream,
		Profile:         profile,
		HabitSeverity:   severity,
		GoalFeasibility: common.Clamp01(1 - conflict),
		RiskAwareness:   common.Clamp01(0.7*consistency + 0.3*(1-night)),
	}
}

// normalize clamps every ratio so no component can see an out-of-range value.
func (in Input) normalize() Input {
	in.HabitSeverity = common.Clamp01(in.HabitSeverity)
	in.GoalFeasibility = common.Clamp01(in.GoalFeasibility)
	in.RiskAwareness = common.Clamp01(in.RiskAwareness)
	return in
}
