package conflict

import "github.com/Veraticus/spend-sense/internal/model"

// categoryWeights is the goal-type by category conflict table. Combinations
// missing from it fall back to ConflictTuning.DefaultCategoryConflict.
var categoryWeights = map[model.GoalType]map[model.Category]float64{
	model.GoalEmergencyFund: {
		model.CategoryDiningOut:     0.30,
		model.CategoryShopping:      0.28,
		model.CategoryEntertainment: 0.25,
		model.CategorySubscriptions: 0.20,
		model.CategoryTravel:        0.25,
	},
	model.GoalDebtReduction: {
		model.CategoryDiningOut:     0.25,
		model.CategoryShopping:      0.27,
		model.CategoryEntertainment: 0.20,
		model.CategorySubscriptions: 0.22,
		model.CategoryTravel:        0.28,
	},
	model.GoalInvestment: {
		model.CategoryDiningOut:     0.22,
		model.CategoryShopping:      0.25,
		model.CategoryEntertainment: 0.22,
		model.CategorySubscriptions: 0.20,
		model.CategoryTravel:        0.25,
	},
}

// alignmentWeights lists categories whose spending directly serves a goal type.
var alignmentWeights = map[model.Category]map[model.GoalType]float64{
	model.CategoryTravel:       {model.GoalTravel: 0.24},
	model.CategoryMedical:      {model.GoalMedicalReserve: 0.22},
	model.CategoryLoanPayments: {model.GoalDebtReduction: 0.26},
}

// CategoryWeight returns the table entry for the pair and whether one exists.
func CategoryWeight(goalType model.GoalType, category model.Category) (float64, bool) {
	w, ok := categoryWeights[goalType][category]
	return w, ok
}

// AlignmentDiscount returns the amount subtracted from the conflict score when
// spending in category supports goals of goalType. Unlisted pairs return 0.
func AlignmentDiscount(goalType model.GoalType, category model.Category) float64 {
	return alignmentWeights[category][goalType]
}
