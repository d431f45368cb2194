package config

import (
	"fmt"
	"math"

	"github.com/Veraticus/spend-sense/internal/common"
	"github.com/spf13/viper"
)

// Tuning holds every empirically chosen weight and threshold of the pipeline.
// DefaultTuning reproduces the shipped behavior; any field can be overridden
// under the "tuning" key of the config file.
type Tuning struct {
	Habit     HabitTuning     `mapstructure:"habit"`
	Conflict  ConflictTuning  `mapstructure:"conflict"`
	Candidate CandidateTuning `mapstructure:"candidate"`
	Ranking   RankingTuning   `mapstructure:"ranking"`
}

// HabitTuning controls the rule/model blend of the habit detector.
type HabitTuning struct {
	MLWeight          float64 `mapstructure:"ml_weight"`
	RuleWeight        float64 `mapstructure:"rule_weight"`
	DetectThreshold   float64 `mapstructure:"detect_threshold"`
	HighThreshold     float64 `mapstructure:"high_threshold"`
	MediumThreshold   float64 `mapstructure:"medium_threshold"`
	LateNightRatio    float64 `mapstructure:"late_night_ratio"`
	WeekendHeavyRatio float64 `mapstructure:"weekend_heavy_ratio"`
	HighFrequency     int     `mapstructure:"high_frequency"`
}

// BehaviorPressureWeights weight the behavior features in the conflict score.
type BehaviorPressureWeights struct {
	Confidence  float64 `mapstructure:"confidence"`
	Spend       float64 `mapstructure:"spend"`
	Frequency   float64 `mapstructure:"frequency"`
	Weekend     float64 `mapstructure:"weekend"`
	Night       float64 `mapstructure:"night"`
	Consistency float64 `mapstructure:"consistency"`
	Intensity   float64 `mapstructure:"intensity"`
}

// GoalPressureWeights weight the goal-side terms of the conflict score.
type GoalPressureWeights struct {
	Priority      float64 `mapstructure:"priority"`
	Urgency       float64 `mapstructure:"urgency"`
	Affordability float64 `mapstructure:"affordability"`
	Progress      float64 `mapstructure:"progress"`
}

// SeverityThresholds are the lower bounds of each severity tier.
type SeverityThresholds struct {
	Critical float64 `mapstructure:"critical"`
	High     float64 `mapstructure:"high"`
	Medium   float64 `mapstructure:"medium"`
}

// ConflictTuning controls the goal conflict scorer.
type ConflictTuning struct {
	Behavior                BehaviorPressureWeights `mapstructure:"behavior"`
	Goal                    GoalPressureWeights     `mapstructure:"goal"`
	Severity                SeverityThresholds      `mapstructure:"severity"`
	BehaviorMix             float64                 `mapstructure:"behavior_mix"`
	GoalMix                 float64                 `mapstructure:"goal_mix"`
	CategoryMix             float64                 `mapstructure:"category_mix"`
	SpendNormalizer         float64                 `mapstructure:"spend_normalizer"`
	FrequencyNormalizer     float64                 `mapstructure:"frequency_normalizer"`
	UrgencyHorizonMonths    float64                 `mapstructure:"urgency_horizon_months"`
	DefaultCategoryConflict float64                 `mapstructure:"default_category_conflict"`
	ProtectedPenalty        float64                 `mapstructure:"protected_penalty"`
	FreezeThreshold         float64                 `mapstructure:"freeze_threshold"`
	MaxAlerts               int                     `mapstructure:"max_alerts"`
}

// CandidateTuning controls base suitability scoring of generated candidates.
type CandidateTuning struct {
	SuitabilityWeight float64 `mapstructure:"suitability_weight"`
	SimilarityWeight  float64 `mapstructure:"similarity_weight"`
	ExtraTemplates    int     `mapstructure:"extra_templates"`
	FixedBaseScore    float64 `mapstructure:"fixed_base_score"`
	FallbackBaseScore float64 `mapstructure:"fallback_base_score"`
}

// ContextWeights are the seven ranking weights before context adaptation.
type ContextWeights struct {
	Base     float64 `mapstructure:"base"`
	Severity float64 `mapstructure:"severity"`
	Goal     float64 `mapstructure:"goal"`
	Risk     float64 `mapstructure:"risk"`
	Profile  float64 `mapstructure:"profile"`
	Urgency  float64 `mapstructure:"urgency"`
	Upstream float64 `mapstructure:"upstream"`
}

// Sum returns the total of all seven weights.
func (w ContextWeights) Sum() float64 {
	return w.Base + w.Severity + w.Goal + w.Risk + w.Profile + w.Urgency + w.Upstream
}

// Calibration shapes raw ranking scores into the display band.
type Calibration struct {
	Floor    float64 `mapstructure:"floor"`
	Span     float64 `mapstructure:"span"`
	Exponent float64 `mapstructure:"exponent"`
	Max      float64 `mapstructure:"max"`
	Epsilon  float64 `mapstructure:"epsilon"`
}

// TierThresholds are the percentage lower bounds of each display tier.
type TierThresholds struct {
	Critical float64 `mapstructure:"critical"`
	High     float64 `mapstructure:"high"`
	Moderate float64 `mapstructure:"moderate"`
}

// ContextShifts move weight between ranking components when the context calls
// for it. Every shift is taken from a paired donor so the total is unchanged.
type ContextShifts struct {
	LowFeasibility   float64 `mapstructure:"low_feasibility"`
	GoalShift        float64 `mapstructure:"goal_shift"`
	UrgencyShift     float64 `mapstructure:"urgency_shift"`
	HighSeverity     float64 `mapstructure:"high_severity"`
	SeverityShift    float64 `mapstructure:"severity_shift"`
	LowRiskAwareness float64 `mapstructure:"low_risk_awareness"`
	RiskShift        float64 `mapstructure:"risk_shift"`
}

// RankingTuning controls the personalized ranking model.
type RankingTuning struct {
	Weights     ContextWeights `mapstructure:"weights"`
	Shifts      ContextShifts  `mapstructure:"shifts"`
	Calibration Calibration    `mapstructure:"calibration"`
	Tiers       TierThresholds `mapstructure:"tiers"`
}

// DefaultTuning returns the shipped constants.
func DefaultTuning() Tuning {
	return Tuning{
		Habit: HabitTuning{
			MLWeight:          0.7,
			RuleWeight:        0.3,
			DetectThreshold:   0.5,
			HighThreshold:     0.75,
			MediumThreshold:   0.5,
			LateNightRatio:    0.5,
			WeekendHeavyRatio: 0.55,
			HighFrequency:     5,
		},
		Conflict: ConflictTuning{
			Behavior: BehaviorPressureWeights{
				Confidence:  0.28,
				Spend:       0.20,
				Frequency:   0.16,
				Weekend:     0.12,
				Night:       0.10,
				Consistency: 0.14,
				Intensity:   0.12,
			},
			Goal: GoalPressureWeights{
				Priority:      0.40,
				Urgency:       0.25,
				Affordability: 0.20,
				Progress:      0.15,
			},
			Severity: SeverityThresholds{
				Critical: 0.8,
				High:     0.62,
				Medium:   0.42,
			},
			BehaviorMix:             0.45,
			GoalMix:                 0.35,
			CategoryMix:             0.20,
			SpendNormalizer:         4000,
			FrequencyNormalizer:     7,
			UrgencyHorizonMonths:    6,
			DefaultCategoryConflict: 0.12,
			ProtectedPenalty:        0.25,
			FreezeThreshold:         0.8,
			MaxAlerts:               5,
		},
		Candidate: CandidateTuning{
			SuitabilityWeight: 0.6,
			SimilarityWeight:  0.4,
			ExtraTemplates:    2,
			FixedBaseScore:    0.9,
			FallbackBaseScore: 0.74,
		},
		Ranking: RankingTuning{
			Weights: ContextWeights{
				Base:     0.18,
				Severity: 0.18,
				Goal:     0.16,
				Risk:     0.12,
				Profile:  0.14,
				Urgency:  0.12,
				Upstream: 0.10,
			},
			Shifts: ContextShifts{
				LowFeasibility:   0.45,
				GoalShift:        0.06,
				UrgencyShift:     0.03,
				HighSeverity:     0.75,
				SeverityShift:    0.05,
				LowRiskAwareness: 0.4,
				RiskShift:        0.05,
			},
			Calibration: Calibration{
				Floor:    0.55,
				Span:     0.43,
				Exponent: 0.82,
				Max:      0.99,
				Epsilon:  1e-6,
			},
			Tiers: TierThresholds{
				Critical: 85,
				High:     70,
				Moderate: 55,
			},
		},
	}
}

// LoadTuning overlays values found under the "tuning" key onto the defaults.
func LoadTuning(v *viper.Viper) (Tuning, error) {
	tuning := DefaultTuning()
	if v == nil || !v.IsSet("tuning") {
		return tuning, nil
	}

	if err := v.UnmarshalKey("tuning", &tuning); err != nil {
		return tuning, fmt.Errorf("%w: tuning: %v", common.ErrInvalidConfig, err)
	}
	if err := tuning.Validate(); err != nil {
		return tuning, err
	}
	return tuning, nil
}

// Validate checks that weights are usable and thresholds are ordered.
func (t Tuning) Validate() error {
	weights := map[string]float64{
		"habit.ml_weight":                    t.Habit.MLWeight,
		"habit.rule_weight":                  t.Habit.RuleWeight,
		"conflict.behavior_mix":              t.Conflict.BehaviorMix,
		"conflict.goal_mix":                  t.Conflict.GoalMix,
		"conflict.category_mix":              t.Conflict.CategoryMix,
		"conflict.default_category_conflict": t.Conflict.DefaultCategoryConflict,
		"conflict.protected_penalty":         t.Conflict.ProtectedPenalty,
		"candidate.suitability_weight":       t.Candidate.SuitabilityWeight,
		"candidate.similarity_weight":        t.Candidate.SimilarityWeight,
		"ranking.weights.base":               t.Ranking.Weights.Base,
		"ranking.weights.severity":           t.Ranking.Weights.Severity,
		"ranking.weights.goal":               t.Ranking.Weights.Goal,
		"ranking.weights.risk":               t.Ranking.Weights.Risk,
		"ranking.weights.profile":            t.Ranking.Weights.Profile,
		"ranking.weights.urgency":            t.Ranking.Weights.Urgency,
		"ranking.weights.upstream":           t.Ranking.Weights.Upstream,
		"ranking.calibration.floor":          t.Ranking.Calibration.Floor,
		"ranking.calibration.span":           t.Ranking.Calibration.Span,
		"ranking.shifts.goal_shift":          t.Ranking.Shifts.GoalShift,
		"ranking.shifts.urgency_shift":       t.Ranking.Shifts.UrgencyShift,
		"ranking.shifts.severity_shift":      t.Ranking.Shifts.SeverityShift,
		"ranking.shifts.risk_shift":          t.Ranking.Shifts.RiskShift,
	}
	for name, w := range weights {
		if !common.IsFinite(w) || w < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %v", common.ErrInvalidConfig, name, w)
		}
	}

	for name, w := range map[string]float64{
		"conflict.spend_normalizer":       t.Conflict.SpendNormalizer,
		"conflict.frequency_normalizer":   t.Conflict.FrequencyNormalizer,
		"conflict.urgency_horizon_months": t.Conflict.UrgencyHorizonMonths,
		"ranking.calibration.exponent":    t.Ranking.Calibration.Exponent,
		"ranking.calibration.epsilon":     t.Ranking.Calibration.Epsilon,
	} {
		if !common.IsFinite(w) || w <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", common.ErrInvalidConfig, name, w)
		}
	}

	sev := t.Conflict.Severity
	if !(sev.Critical > sev.High && sev.High > sev.Medium && sev.Medium > 0) {
		return fmt.Errorf("%w: severity thresholds must descend (critical > high > medium > 0)", common.ErrInvalidConfig)
	}
	tiers := t.Ranking.Tiers
	if !(tiers.Critical > tiers.High && tiers.High > tiers.Moderate) {
		return fmt.Errorf("%w: tier thresholds must descend (critical > high > moderate)", common.ErrInvalidConfig)
	}
	if t.Habit.HighThreshold < t.Habit.MediumThreshold {
		return fmt.Errorf("%w: habit high threshold below medium threshold", common.ErrInvalidConfig)
	}
	if t.Ranking.Calibration.Max > 1 || t.Ranking.Calibration.Floor+t.Ranking.Calibration.Span > 1 {
		return fmt.Errorf("%w: calibration band must stay within [0,1]", common.ErrInvalidConfig)
	}
	if math.Abs(t.Ranking.Weights.Sum()) < 1e-9 {
		return fmt.Errorf("%w: ranking weights cannot all be zero", common.ErrInvalidConfig)
	}
	if t.Conflict.MaxAlerts < 0 || t.Candidate.ExtraTemplates < 0 {
		return fmt.Errorf("%w: counts must be non-negative", common.ErrInvalidConfig)
	}
	return nil
}
