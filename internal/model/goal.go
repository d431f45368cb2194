package model

// GoalType identifies the kind of financial goal; it keys the conflict tables.
type GoalType string

// Goal types with dedicated conflict or alignment weights.
const (
	GoalGeneral        GoalType = "General"
	GoalEmergencyFund  GoalType = "Emergency Fund"
	GoalDebtReduction  GoalType = "Debt Reduction"
	GoalInvestment     GoalType = "Investment"
	GoalTravel         GoalType = "Travel"
	GoalMedicalReserve GoalType = "Medical Reserve"
)

// Goal is an active financial goal as supplied by the caller.
type Goal struct {
	Name                string   `json:"goal_name" yaml:"goal_name"`
	Type                GoalType `json:"goal_type" yaml:"goal_type"`
	ProtectedCategories []string `json:"protected_categories" yaml:"protected_categories"`
	TargetAmount        float64  `json:"target_amount" yaml:"target_amount"`
	CurrentAmount       float64  `json:"current_amount" yaml:"current_amount"`
	TimelineMonths      int      `json:"timeline_months" yaml:"timeline_months"`
	Priority            int      `json:"priority" yaml:"priority"`
}

// Severity grades how strongly behavior threatens a goal.
type Severity string

const (
	// SeverityLow is below the medium threshold.
	SeverityLow Severity = "Low"
	// SeverityMedium starts at 0.42 by default.
	SeverityMedium Severity = "Medium"
	// SeverityHigh starts at 0.62 by default.
	SeverityHigh Severity = "High"
	// SeverityCritical starts at 0.8 by default.
	SeverityCritical Severity = "Critical"
)

// IsConflict reports whether the severity counts as a detected conflict.
func (s Severity) IsConflict() bool {
	return s == SeverityMedium || s == SeverityHigh || s == SeverityCritical
}

// GoalConflict is the per-goal conflict assessment.
type GoalConflict struct {
	GoalName          string   `json:"goal_name"`
	GoalType          GoalType `json:"goal_type"`
	Severity          Severity `json:"severity"`
	RecommendedAction string   `json:"recommended_action"`
	Explanation       string   `json:"explanation"`
	ConflictScore     float64  `json:"conflict_score"`
	MonthlyRequired   float64  `json:"monthly_required"`
	Priority          int      `json:"priority"`
}

// ConflictAlert is a user-facing alert derived from a non-Low goal conflict.
type ConflictAlert struct {
	GoalName          string   `json:"goal_name"`
	Severity          Severity `json:"severity"`
	Message           string   `json:"message"`
	RecommendedAction string   `json:"recommended_action"`
}

// ConflictResult aggregates the conflicts across all active goals.
type ConflictResult struct {
	OverallSeverity      Severity        `json:"overall_severity"`
	Explanation          string          `json:"explanation_text"`
	Alerts               []ConflictAlert `json:"alerts"`
	GoalConflicts        []GoalConflict  `json:"goal_conflicts"`
	OverallConflictScore float64         `json:"overall_conflict_score"`
	ConflictDetected     bool            `json:"conflict_detected"`
}

// TopGoal returns the goal conflict with the highest score, or false when none exist.
func (r *ConflictResult) TopGoal() (GoalConflict, bool) {
	if r == nil || len(r.GoalConflicts) == 0 {
		return GoalConflict{}, false
	}
	top := r.GoalConflicts[0]
	for _, gc := range r.GoalConflicts[1:] {
		if gc.ConflictScore > top.ConflictScore {
			top = gc
		}
	}
	return top, true
}

// ConflictContext carries the household figures the conflict scorer needs
// beyond the goals themselves.
type ConflictContext struct {
	MonthlySavingsCapacity float64 `json:"monthly_savings_capacity" yaml:"monthly_savings_capacity"`
}
