package candidate

import "github.com/Veraticus/spend-sense/internal/model"

// Library maps each similarity-ranked template to its literal suggestions.
var Library = map[model.TemplateKey][]string{
	model.TemplateTimeShift: {
		"Plan this category earlier in the day and use a consistent purchase window.",
		"Shift purchases to a planned daytime slot to improve spending consistency.",
	},
	model.TemplateHomeSubstitution: {
		"Replace one paid convenience purchase this week with a home-prepared alternative.",
		"Try a home-first routine three days a week, then buy only what is still needed.",
	},
	model.TemplateBundlePlan: {
		"Batch this category into 1-2 planned purchases per week instead of many small spends.",
		"Create a short list and buy once per cycle to reduce repeat purchases.",
	},
	model.TemplateLowCostSwap: {
		"Switch to one lower-cost alternative item each cycle while keeping the same habit need.",
		"Keep the behavior but choose budget-tier options for at least half of purchases.",
	},
	model.TemplateCooldownRule: {
		"Route unplanned purchases in this category into the next scheduled spending cycle.",
		"If an item is outside your plan, re-evaluate it in the next planned review.",
	},
}

// FixedRecommendation is the only suggestion made for fixed obligations.
const FixedRecommendation = "Keep payment dates consistent and track any recurring cost revisions."

// Effort is the behavior-change cost of following a template.
func Effort(key model.TemplateKey) float64 {
	switch key {
	case model.TemplateTimeShift, model.TemplateHomeSubstitution:
		return 0.35
	default:
		return 0.5
	}
}

// LightTouch picks the low-friction suggestion used when no habit is detected.
// Rows are checked in order and the first match wins.
func LightTouch(profile model.BehaviorProfile) string {
	switch {
	case profile.Category == model.CategorySubscriptions:
		return "Review active subscriptions monthly and remove low-value renewals."
	case profile.Category == model.CategoryTravel:
		return "Set a travel spending envelope per trip and confirm bookings against that limit."
	case profile.WeekendRatio >= 0.6:
		return "Set a weekend budget cap for this category and track adherence weekly."
	case profile.Spend >= 2000:
		return "Set a per-transaction budget limit and review exceptions at month-end."
	case profile.Frequency >= 3:
		return "Use pre-planned purchase slots for this category and avoid unscheduled repeats."
	default:
		return "No strong behavioral pattern is currently detected; continue periodic category monitoring."
	}
}

// Boost returns the category and behavior specific bonus for a template.
func Boost(key model.TemplateKey, profile model.BehaviorProfile) float64 {
	boost := 0.0

	switch key {
	case model.TemplateBundlePlan:
		if profile.WeekendRatio >= 0.6 {
			boost += 0.2
		}
		if profile.Frequency >= 5 {
			boost += 0.12
		}
	case model.TemplateTimeShift:
		if profile.NightRatio >= 0.6 {
			boost += 0.18
		}
	case model.TemplateLowCostSwap:
		if profile.Spend >= 2000 {
			boost += 0.12
		}
		if profile.Consistency >= 0.75 {
			boost += 0.08
		}
	}

	return boost + categoryBoosts[profile.Category][key]
}

var categoryBoosts = map[model.Category]map[model.TemplateKey]float64{
	model.CategoryDiningOut: {
		model.TemplateHomeSubstitution: 0.22,
		model.TemplateTimeShift:        0.10,
	},
	model.CategoryShopping: {
		model.TemplateLowCostSwap: 0.24,
		model.TemplateBundlePlan:  0.10,
	},
	model.CategorySubscriptions: {
		model.TemplateBundlePlan:  0.25,
		model.TemplateLowCostSwap: 0.10,
	},
	model.CategoryTravel: {
		model.TemplateBundlePlan:  0.20,
		model.TemplateLowCostSwap: 0.12,
	},
}
