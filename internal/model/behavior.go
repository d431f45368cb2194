// Package model defines the core data structures shared across the pipeline.
package model

// BehaviorFeatures summarizes recent spending behavior in one category.
type BehaviorFeatures struct {
	AvgWeeklyFrequency int     `json:"avg_weekly_frequency" yaml:"avg_weekly_frequency"`
	Consistency        float64 `json:"consistency" yaml:"consistency"`
	AverageSpend       float64 `json:"average_spend" yaml:"average_spend"`
	WeeksActive        int     `json:"weeks_active" yaml:"weeks_active"`
	WeekendRatio       float64 `json:"weekend_ratio" yaml:"weekend_ratio"`
	NightRatio         float64 `json:"night_ratio" yaml:"night_ratio"`
}

// Vector returns the features in the column order the classifiers were trained on.
func (f BehaviorFeatures) Vector() []float64 {
	return []float64{
		float64(f.AvgWeeklyFrequency),
		f.Consistency,
		f.AverageSpend,
		float64(f.WeeksActive),
		f.WeekendRatio,
		f.NightRatio,
	}
}

// HabitFeatureColumns names the entries of BehaviorFeatures.Vector.
var HabitFeatureColumns = []string{
	"avg_weekly_frequency",
	"consistency",
	"average_spend",
	"weeks_active",
	"weekend_ratio",
	"night_ratio",
}

// BehaviorStyle describes how a user prefers to be coached.
type BehaviorStyle string

// Known behavior styles. Anything else is treated as balanced.
const (
	StyleBalanced     BehaviorStyle = "balanced"
	StyleDisciplined  BehaviorStyle = "disciplined"
	StyleAggressive   BehaviorStyle = "aggressive"
	StyleConservative BehaviorStyle = "conservative"
	StyleLightTouch   BehaviorStyle = "light_touch"
)

// BehaviorProfile merges the raw features with the habit verdict for a category.
type BehaviorProfile struct {
	Category      Category       `json:"category"`
	Nature        ExpenseNature  `json:"expense_nature"`
	Intensity     HabitIntensity `json:"habit_intensity"`
	BehaviorStyle BehaviorStyle  `json:"behavior_style"`
	Confidence    float64        `json:"confidence"`
	Frequency     float64        `json:"frequency"`
	Consistency   float64        `json:"consistency"`
	WeeksActive   int            `json:"weeks_active"`
	Spend         float64        `json:"spend"`
	WeekendRatio  float64        `json:"weekend_ratio"`
	NightRatio    float64        `json:"night_ratio"`
}

// NewBehaviorProfile builds a profile for a category whose nature is already resolved.
func NewBehaviorProfile(features BehaviorFeatures, category Category, nature ExpenseNature, habit HabitDetection, style BehaviorStyle) BehaviorProfile {
	if style == "" {
		style = StyleBalanced
	}
	return BehaviorProfile{
		Category:      category,
		Nature:        nature,
		Intensity:     habit.Intensity,
		BehaviorStyle: style,
		Confidence:    habit.Confidence,
		Frequency:     float64(features.AvgWeeklyFrequency),
		Consistency:   features.Consistency,
		WeeksActive:   features.WeeksActive,
		Spend:         features.AverageSpend,
		WeekendRatio:  features.WeekendRatio,
		NightRatio:    features.NightRatio,
	}
}
