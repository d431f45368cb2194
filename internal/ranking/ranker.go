// Package ranking scores, explains, calibrates and orders recommendation
// candidates against the user's context.
package ranking

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/Veraticus/spend-sense/internal/common"
	"github.com/Veraticus/spend-sense/internal/config"
	"github.com/Veraticus/spend-sense/internal/model"
)

const defaultBaseScore = 0.5

// Model is the personalized ranking and calibration model. It holds no
// per-call state and may be shared.
type Model struct {
	tuning config.RankingTuning
}

// NewModel creates a ranking model.
func NewModel(tuning config.RankingTuning) *Model {
	return &Model{tuning: tuning}
}

// Rank scores every candidate, calibrates the set and returns at most topK
// rows (at least one when any candidate survives ingress) ranked 1..n.
// A bypass candidate from the generator short-circuits to its preset row.
func (m *Model) Rank(candidates []model.Candidate, in Input, topK int) []model.Recommendation {
	cands := Normalize(candidates)
	if len(cands) == 0 {
		return []model.Recommendation{}
	}
	for _, c := range cands {
		if row, ok := presetFor(c); ok {
			return []model.Recommendation{row}
		}
	}

	in = in.normalize()
	weights := m.Weights(in)
	upstream := UpstreamSignal(in.Upstream)
	goalPressure := in.GoalPressure()
	goal := topGoalName(in.Upstream)

	rows := make([]model.Recommendation, 0, len(cands))
	for _, c := range cands {
		breakdown := model.ScoreBreakdown{
			BaseScore:      c.BaseScore,
			HabitSeverity:  in.HabitSeverity,
			GoalPressure:   goalPressure,
			RiskFit:        RiskFit(c, in),
			ProfileFit:     ProfileFit(c, in.Profile.BehaviorStyle),
			UrgencySignal:  UrgencySignal(c, in),
			UpstreamSignal: upstream,
		}
		score := common.Clamp01(weighted(weights, breakdown))
		factor := DominantFactor(weights, in)
		difficulty := c.TemplateKey.Difficulty()
		proj := Project(score, in, difficulty)

		impacts := goal
		if impacts == "" {
			impacts = unnamedGoalImpact
		}

		rows = append(rows, model.Recommendation{
			Recommendation:           c.Recommendation,
			TemplateKey:              c.TemplateKey,
			RawScore:                 common.Round(score, 4),
			Breakdown:                roundBreakdown(breakdown),
			DominantFactor:           factor,
			Rationale:                Rationale(c, factor, in, goal, proj.TimelineReduction),
			TechnicalWhy:             TechnicalWhy(c, factor, in),
			ImpactsGoal:              impacts,
			Difficulty:               difficulty,
			FeasibilityImpactPct:     proj.FeasibilityImpactPct,
			SuccessProbabilityBefore: proj.SuccessBefore,
			SuccessProbabilityAfter:  proj.SuccessAfter,
			TimelineReductionMonths:  proj.TimelineReduction,
		})
	}

	Calibrate(rows, m.tuning.Calibration, m.tuning.Tiers)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Score > rows[j].Score
	})

	if topK < 1 {
		topK = 1
	}
	if len(rows) > topK {
		rows = rows[:topK]
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}

	slog.Debug("Ranked recommendations",
		"candidates", len(cands),
		"returned", len(rows),
		"weights_total", weights.Sum())
	return rows
}

// Normalize converts raw candidates into their canonical form: trimmed text,
// a template key (cooldown_rule when missing), a base score clamped to [0,1]
// (0.5 when not a number). Empty texts are dropped and duplicate texts keep
// the higher base score at the position of their first occurrence.
func Normalize(candidates []model.Candidate) []model.Candidate {
	out := make([]model.Candidate, 0, len(candidates))
	seen := make(map[string]int, len(candidates))

	for _, c := range candidates {
		c.Recommendation = strings.TrimSpace(c.Recommendation)
		if c.Recommendation == "" {
			continue
		}
		c.TemplateKey = model.TemplateKey(strings.TrimSpace(string(c.TemplateKey)))
		if c.TemplateKey == "" {
			c.TemplateKey = model.TemplateCooldownRule
		}
		if math.IsNaN(c.BaseScore) {
			c.BaseScore = defaultBaseScore
		}
		c.BaseScore = common.Clamp01(c.BaseScore)

		if idx, dup := seen[c.Recommendation]; dup {
			if c.BaseScore > out[idx].BaseScore {
				out[idx] = c
			}
			continue
		}
		seen[c.Recommendation] = len(out)
		out = append(out, c)
	}
	return out
}

func weighted(w config.ContextWeights, b model.ScoreBreakdown) float64 {
	return w.Base*b.BaseScore +
		w.Severity*b.HabitSeverity +
		w.Goal*b.GoalPressure +
		w.Risk*b.RiskFit +
		w.Profile*b.ProfileFit +
		w.Urgency*b.UrgencySignal +
		w.Upstream*b.UpstreamSignal
}

func roundBreakdown(b model.ScoreBreakdown) model.ScoreBreakdown {
	return model.ScoreBreakdown{
		BaseScore:      common.Round(b.BaseScore, 4),
		HabitSeverity:  common.Round(b.HabitSeverity, 4),
		GoalPressure:   common.Round(b.GoalPressure, 4),
		RiskFit:        common.Round(b.RiskFit, 4),
		ProfileFit:     common.Round(b.ProfileFit, 4),
		UrgencySignal:  common.Round(b.UrgencySignal, 4),
		UpstreamSignal: common.Round(b.UpstreamSignal, 4),
	}
}
