package engine

import (
	"github.com/Veraticus/spend-sense/internal/candidate"
	"github.com/Veraticus/spend-sense/internal/guidance"
	"github.com/Veraticus/spend-sense/internal/inference"
	"github.com/Veraticus/spend-sense/internal/model"
)

// Diagnostics records which stages ran on trained models.
type Diagnostics struct {
	CandidateMode candidate.Mode     `json:"candidate_mode"`
	Habit         model.Diagnostics  `json:"habit_model"`
	Suitability   model.Diagnostics  `json:"suitability_model"`
	Artifacts     []inference.Status `json:"artifacts"`
}

// Degraded reports whether any stage fell back to its heuristic path.
func (d Diagnostics) Degraded() bool {
	return d.Habit.Degraded || d.Suitability.Degraded
}

// Report is the full output of one evaluation.
type Report struct {
	ID                string                 `json:"id,omitempty"`
	Category          model.Category         `json:"category"`
	Nature            model.ExpenseNature    `json:"expense_nature"`
	Habit             model.HabitDetection   `json:"habit_detection"`
	Profile           model.BehaviorProfile  `json:"behavior_profile"`
	TransactionAlerts []string               `json:"transaction_alerts"`
	Conflict          model.ConflictResult   `json:"goal_conflict"`
	Recommendations   []model.Recommendation `json:"ranked_recommendations"`
	Guidance          guidance.Guidance      `json:"ai_guidance"`
	PrimaryStrategy   string                 `json:"primary_strategy"`
	InterventionLevel model.HabitIntensity   `json:"intervention_level"`
	UnifiedSummary    string                 `json:"unified_summary"`
	Diagnostics       Diagnostics            `json:"diagnostics"`
}

// TopRecommendation returns the first ranked recommendation, if any.
func (r *Report) TopRecommendation() (model.Recommendation, bool) {
	if r == nil || len(r.Recommendations) == 0 {
		return model.Recommendation{}, false
	}
	return r.Recommendations[0], true
}
