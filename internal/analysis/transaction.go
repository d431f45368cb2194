// Package analysis inspects raw spending: it flags individual purchases
// against a behavior profile and derives behavior features from statements.
package analysis

import "github.com/Veraticus/spend-sense/internal/model"

// MaxAlerts caps the messages returned for one transaction.
const MaxAlerts = 2

// Transaction alert messages.
const (
	AlertFixedPriceIncrease = "This fixed expense is above its usual level and may indicate a price increase."
	AlertFixedIrregular     = "Fixed-payment timing appears less regular than usual; review due-date consistency."
	AlertFixedStable        = "Fixed expense behavior is stable and payment consistency is on track."
	AlertAboveAverage       = "This expense is above your recent average for this category."
	AlertWeekendHeavy       = "Spending in this category is concentrated on weekends."
	AlertLateNight          = "This transaction occurred in a late-hour window where costs often trend higher."
	AlertHighFrequency      = "Weekly transaction frequency in this category is elevated."
	AlertStrengthening      = "This category shows a strengthening recurring spending pattern."
	AlertNormal             = "This transaction is within your normal pattern for this category."
)

// AnalyzeTransaction compares one purchase with the profile of its category
// and returns at most MaxAlerts messages, most specific first. The result is
// never empty.
func AnalyzeTransaction(tx model.CurrentTransaction, profile model.BehaviorProfile) []string {
	var messages []string

	if profile.Nature == model.NatureFixed {
		if tx.Amount > profile.Spend*1.1 {
			messages = append(messages, AlertFixedPriceIncrease)
		}
		if profile.Consistency < 0.6 {
			messages = append(messages, AlertFixedIrregular)
		}
		if len(messages) == 0 {
			messages = append(messages, AlertFixedStable)
		}
		return limit(messages)
	}

	if tx.Amount > profile.Spend*1.25 {
		messages = append(messages, AlertAboveAverage)
	}
	if profile.WeekendRatio >= 0.55 {
		messages = append(messages, AlertWeekendHeavy)
	}
	if tx.IsLateNight() && (profile.Nature == model.NatureVariable || profile.Nature == model.NatureDiscretionary) {
		messages = append(messages, AlertLateNight)
	}
	if profile.Frequency >= 4 {
		messages = append(messages, AlertHighFrequency)
	}
	if profile.Consistency >= 0.7 && profile.Confidence >= 0.6 {
		messages = append(messages, AlertStrengthening)
	}
	if len(messages) == 0 {
		messages = append(messages, AlertNormal)
	}
	return limit(messages)
}

func limit(messages []string) []string {
	if len(messages) > MaxAlerts {
		return messages[:MaxAlerts]
	}
	return messages
}
