package testutil

import (
	"github.com/Veraticus/spend-sense/internal/engine"
	"github.com/Veraticus/spend-sense/internal/model"
)

// EmergencyFund is a high-priority savings goal that protects nothing.
func EmergencyFund(target float64, months int) model.Goal {
	return model.Goal{
		Name:           "Emergency Fund",
		Type:           model.GoalEmergencyFund,
		TargetAmount:   target,
		TimelineMonths: months,
		Priority:       4,
	}
}

// DiningRequest is a habitual late-night dining purchase against an
// emergency fund that protects the category.
func DiningRequest() engine.Request {
	goal := EmergencyFund(12000, 8)
	goal.CurrentAmount = 1000
	goal.Priority = 5
	goal.ProtectedCategories = []string{"dining out"}

	return engine.Request{
		BehaviorFeatures: model.BehaviorFeatures{
			AvgWeeklyFrequency: 6,
			Consistency:        0.8,
			AverageSpend:       3200,
			WeeksActive:        12,
			WeekendRatio:       0.7,
			NightRatio:         0.6,
		},
		CurrentTransaction:     model.CurrentTransaction{Amount: 4500, Hour: 23},
		Category:               "Dining Out",
		ActiveGoals:            []model.Goal{goal},
		MonthlySavingsCapacity: 900,
		TopK:                   3,
	}
}

// ShoppingRequest is a frequent daytime shopping purchase with two
// recommendations requested.
func ShoppingRequest() engine.Request {
	return engine.Request{
		BehaviorFeatures: model.BehaviorFeatures{
			AvgWeeklyFrequency: 5,
			Consistency:        0.75,
			AverageSpend:       2800,
			WeeksActive:        10,
			WeekendRatio:       0.6,
			NightRatio:         0.2,
		},
		CurrentTransaction:     model.CurrentTransaction{Amount: 180, Hour: 14},
		Category:               "shopping",
		ActiveGoals:            []model.Goal{EmergencyFund(6000, 6)},
		MonthlySavingsCapacity: 500,
		TopK:                   2,
	}
}
