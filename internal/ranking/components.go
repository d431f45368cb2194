package ranking

import (
	"math"
	"strings"

	"github.com/Veraticus/spend-sense/internal/common"
	"github.com/Veraticus/spend-sense/internal/model"
)

// Keyword groups matched as lower-case substrings of the recommendation text.
var (
	strongWords      = []string{"freeze", "immediate", "cap", "reallocate"}
	gentleWords      = []string{"review", "monitor", "track", "planned"}
	urgentWords      = []string{"immediate", "freeze", "at least", "redirect"}
	plannedWords     = []string{"weekly", "monthly", "planned", "schedule"}
	safeWords        = []string{"planned", "review", "cap", "budget", "track"}
	highControlWords = []string{"freeze", "redirect", "reallocate"}
)

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// ProfileFit scores how well the wording suits the user's coaching style.
func ProfileFit(c model.Candidate, style model.BehaviorStyle) float64 {
	text := strings.ToLower(c.Recommendation)
	strong := containsAny(text, strongWords)
	gentle := containsAny(text, gentleWords)

	switch model.BehaviorStyle(strings.ToLower(string(style))) {
	case model.StyleDisciplined, model.StyleAggressive:
		if strong {
			return 0.9
		}
		return 0.6
	case model.StyleConservative, model.StyleLightTouch:
		if gentle {
			return 0.9
		}
		return 0.55
	}

	switch {
	case c.TemplateKey == model.TemplateBundlePlan, c.TemplateKey == model.TemplateLowCostSwap:
		return 0.8
	case strong, gentle:
		return 0.75
	default:
		return 0.65
	}
}

// UrgencySignal rises with goal pressure, severity and urgent or planned wording.
func UrgencySignal(c model.Candidate, in Input) float64 {
	text := strings.ToLower(c.Recommendation)

	signal := 0.45*in.GoalPressure() + 0.25*in.HabitSeverity
	if containsAny(text, urgentWords) {
		signal += 0.2
	}
	if containsAny(text, plannedWords) {
		signal += 0.1
	}
	if c.TemplateKey == model.TemplateCooldownRule {
		signal += 0.08
	}
	return common.Clamp01(signal)
}

// RiskFit rewards safe actions, high-control actions under severe habits and
// time shifting for night-heavy spenders.
func RiskFit(c model.Candidate, in Input) float64 {
	text := strings.ToLower(c.Recommendation)

	fit := 0.35 * in.RiskAwareness
	if containsAny(text, safeWords) {
		fit += 0.35
	}
	if in.HabitSeverity > 0.75 && containsAny(text, highControlWords) {
		fit += 0.2
	}
	if c.TemplateKey == model.TemplateTimeShift && in.Profile.NightRatio >= 0.45 {
		fit += 0.12
	}
	return common.Clamp01(fit)
}

// UpstreamSignal summarizes the strength of the earlier stages' findings.
// It does not depend on the candidate.
func UpstreamSignal(up model.UpstreamSignals) float64 {
	var conflict, habit float64
	if up.Conflict != nil {
		conflict = common.Clamp01(up.Conflict.OverallConflictScore)
	}
	if up.Habit != nil {
		habit = common.Clamp01(up.Habit.Confidence)
	}
	alerts := math.Min(float64(len(up.TransactionAlerts))/3, 1)
	return common.Clamp01(0.45*conflict + 0.35*habit + 0.20*alerts)
}

// behaviorSignals are raw profile ratios used for dominant factor attribution.
type behaviorSignals struct {
	frequency   float64
	night       float64
	consistency float64
}

func signalsFrom(p model.BehaviorProfile) behaviorSignals {
	return behaviorSignals{
		frequency:   common.Clamp01(p.Frequency / 7),
		night:       common.Clamp01(p.NightRatio),
		consistency: common.Clamp01(p.Consistency),
	}
}
