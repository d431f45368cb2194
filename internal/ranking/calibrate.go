package ranking

import (
	"math"

	"github.com/Veraticus/spend-sense/internal/common"
	"github.com/Veraticus/spend-sense/internal/config"
	"github.com/Veraticus/spend-sense/internal/model"
)

// Calibrate rescales raw scores across the whole set into the display band:
// min-max normalization followed by floor + span*x^exponent, capped at max.
// It fills Score, ScorePct and Tier in place.
func Calibrate(rows []model.Recommendation, cal config.Calibration, tiers config.TierThresholds) {
	if len(rows) == 0 {
		return
	}

	low, high := rows[0].RawScore, rows[0].RawScore
	for _, r := range rows[1:] {
		low = math.Min(low, r.RawScore)
		high = math.Max(high, r.RawScore)
	}
	spread := math.Max(high-low, cal.Epsilon)

	for i := range rows {
		normalized := common.Clamp01((rows[i].RawScore - low) / spread)
		widened := cal.Floor + cal.Span*math.Pow(normalized, cal.Exponent)
		score := common.Round(common.Clamp(widened, 0, cal.Max), 4)

		rows[i].Score = score
		rows[i].ScorePct = common.Round(score*100, 1)
		rows[i].Tier = TierFor(rows[i].ScorePct, tiers)
	}
}

// TierFor maps a percentage to its display tier.
func TierFor(pct float64, tiers config.TierThresholds) model.Tier {
	switch {
	case pct >= tiers.Critical:
		return model.TierCritical
	case pct >= tiers.High:
		return model.TierHigh
	case pct >= tiers.Moderate:
		return model.TierModerate
	default:
		return model.TierLow
	}
}

// Projection is the estimated effect of following a recommendation on the top goal.
type Projection struct {
	SuccessBefore        float64
	SuccessAfter         float64
	FeasibilityImpactPct float64
	TimelineReduction    float64
}

// Project estimates goal-success impact from a raw score.
func Project(score float64, in Input, difficulty model.Difficulty) Projection {
	before := math.Max(20, math.Min(95, common.Round(in.GoalFeasibility*100, 1)))
	delta := common.Round(common.Clamp(score*18*difficultyMultiplier(difficulty), 6, 22), 1)
	after := math.Min(98, common.Round(before+delta, 1))

	return Projection{
		SuccessBefore:        before,
		SuccessAfter:         after,
		FeasibilityImpactPct: common.Round(-math.Min(20, 6+18*score*in.GoalPressure()), 1),
		TimelineReduction:    common.Round(math.Max(0.6, (after-before)/5), 1),
	}
}

func difficultyMultiplier(d model.Difficulty) float64 {
	switch d {
	case model.DifficultyEasy:
		return 1.15
	case model.DifficultyShift:
		return 0.85
	default:
		return 1.0
	}
}
