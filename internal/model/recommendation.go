package model

// TemplateKey identifies an intervention archetype.
type TemplateKey string

// Intervention templates. Stability and LightTouch are only produced by the
// generator's bypass paths and never ranked by text similarity.
const (
	TemplateTimeShift        TemplateKey = "time_shift"
	TemplateHomeSubstitution TemplateKey = "home_substitution"
	TemplateBundlePlan       TemplateKey = "bundle_plan"
	TemplateLowCostSwap      TemplateKey = "low_cost_swap"
	TemplateCooldownRule     TemplateKey = "cooldown_rule"
	TemplateStability        TemplateKey = "stability"
	TemplateLightTouch       TemplateKey = "light_touch"
)

// Difficulty describes how much behavior change a recommendation demands.
type Difficulty string

// Difficulty levels.
const (
	DifficultyEasy     Difficulty = "Easy"
	DifficultyModerate Difficulty = "Moderate"
	DifficultyShift    Difficulty = "Behavioral Shift Required"
)

// Difficulty returns the difficulty associated with the template.
func (k TemplateKey) Difficulty() Difficulty {
	switch k {
	case TemplateTimeShift, TemplateHomeSubstitution, TemplateStability, TemplateLightTouch:
		return DifficultyEasy
	case TemplateCooldownRule:
		return DifficultyShift
	default:
		return DifficultyModerate
	}
}

// Candidate is an unranked recommendation produced by the generator.
type Candidate struct {
	Recommendation string      `json:"recommendation"`
	TemplateKey    TemplateKey `json:"template_key"`
	BaseScore      float64     `json:"base_score"`
	Similarity     float64     `json:"nlp_score"`
	Suitability    float64     `json:"ml_score"`
}

// ScoreBreakdown lists the seven weighted components behind a recommendation.
type ScoreBreakdown struct {
	BaseScore      float64 `json:"base_score"`
	HabitSeverity  float64 `json:"habit_severity"`
	GoalPressure   float64 `json:"goal_pressure"`
	RiskFit        float64 `json:"risk_fit"`
	ProfileFit     float64 `json:"profile_fit"`
	UrgencySignal  float64 `json:"urgency_signal"`
	UpstreamSignal float64 `json:"upstream_signal"`
}

// Tier is the display band of a calibrated score.
type Tier string

// Score tiers.
const (
	TierCritical Tier = "Critical"
	TierHigh     Tier = "High"
	TierModerate Tier = "Moderate"
	TierLow      Tier = "Low"
)

// Recommendation is a ranked, calibrated and explained recommendation.
type Recommendation struct {
	Recommendation           string         `json:"recommendation"`
	TemplateKey              TemplateKey    `json:"template_key"`
	Tier                     Tier           `json:"score_tier"`
	DominantFactor           string         `json:"dominant_factor"`
	Rationale                string         `json:"why_ranked"`
	TechnicalWhy             string         `json:"technical_why"`
	ImpactsGoal              string         `json:"impacts_goal"`
	Difficulty               Difficulty     `json:"difficulty_level"`
	Breakdown                ScoreBreakdown `json:"score_breakdown"`
	RawScore                 float64        `json:"raw_score"`
	Score                    float64        `json:"score"`
	ScorePct                 float64        `json:"score_pct"`
	FeasibilityImpactPct     float64        `json:"feasibility_impact_pct"`
	SuccessProbabilityBefore float64        `json:"goal_success_probability_before"`
	SuccessProbabilityAfter  float64        `json:"goal_success_probability_after"`
	TimelineReductionMonths  float64        `json:"goal_timeline_reduction_months"`
	Rank                     int            `json:"rank"`
}

// UpstreamSignals carries the outputs of earlier stages that the ranking model
// reads. Any field may be absent.
type UpstreamSignals struct {
	Habit             *HabitDetection `json:"habit_detection,omitempty"`
	Conflict          *ConflictResult `json:"goal_conflict,omitempty"`
	TransactionAlerts []string        `json:"transaction_alerts,omitempty"`
}
