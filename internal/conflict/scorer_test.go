package conflict

import (
	"fmt"
	"testing"

	"github.com/Veraticus/spend-sense/internal/config"
	"github.com/Veraticus/spend-sense/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScorer() *Scorer {
	return NewScorer(config.DefaultTuning().Conflict)
}

func profileFor(category model.Category, f model.BehaviorFeatures, habit model.HabitDetection) model.BehaviorProfile {
	return model.NewBehaviorProfile(f, category, category.Nature(), habit, model.StyleBalanced)
}

func TestScorer_EmptyGoals(t *testing.T) {
	s := newTestScorer()
	habit := model.HabitDetection{Detected: true, Intensity: model.IntensityHigh, Confidence: 0.9}
	profile := profileFor(model.CategoryShopping, model.BehaviorFeatures{AverageSpend: 9000}, habit)

	got := s.Detect(habit, nil, profile, model.ConflictContext{MonthlySavingsCapacity: 100})

	assert.False(t, got.ConflictDetected)
	assert.Zero(t, got.OverallConflictScore)
	assert.Equal(t, model.SeverityLow, got.OverallSeverity)
	assert.Empty(t, got.Alerts)
	assert.NotNil(t, got.Alerts)
	assert.Empty(t, got.GoalConflicts)
	assert.Equal(t, NoGoalsExplanation, got.Explanation)
}

func TestScorer_HighPressureShoppingAgainstEmergencyFund(t *testing.T) {
	s := newTestScorer()
	features := model.BehaviorFeatures{
		AvgWeeklyFrequency: 6, Consistency: 0.8, AverageSpend: 3200, WeekendRatio: 0.7, NightRatio: 0.5,
	}
	habit := model.HabitDetection{Detected: true, Intensity: model.IntensityHigh, Confidence: 0.8}
	goals := []model.Goal{{
		Name:                "Emergency Fund",
		Type:                model.GoalEmergencyFund,
		TargetAmount:        12000,
		CurrentAmount:       1000,
		TimelineMonths:      8,
		Priority:            5,
		ProtectedCategories: []string{"Shopping"},
	}}

	got := s.Detect(habit, goals, profileFor(model.CategoryShopping, features, habit),
		model.ConflictContext{MonthlySavingsCapacity: 900})

	require.Len(t, got.GoalConflicts, 1)
	assert.True(t, got.ConflictDetected)
	assert.Contains(t, []model.Severity{model.SeverityHigh, model.SeverityCritical}, got.OverallSeverity)
	assert.GreaterOrEqual(t, got.OverallConflictScore, 0.62)
	assert.InDelta(t, 0.824, got.OverallConflictScore, 0.002)
	assert.Equal(t, 1375.0, got.GoalConflicts[0].MonthlyRequired)

	gc := got.GoalConflicts[0]
	assert.Equal(t, model.SeverityCritical, gc.Severity)
	assert.Equal(t, "Immediate action required: freeze non-essential shopping spends for one cycle and redirect at least 1375.00 to 'Emergency Fund'.", gc.RecommendedAction)
	assert.Contains(t, gc.Explanation, "Goal urgency and remaining funding gap are both high.")
	require.Len(t, got.Alerts, 1)
	assert.Equal(t, gc.Explanation, got.Alerts[0].Message)
	assert.Equal(t, "Critical behavior-goal conflict detected. Current shopping spending pattern creates the largest risk for goal 'Emergency Fund'.", got.Explanation)
}

func TestScorer_LowPressureTransport(t *testing.T) {
	s := newTestScorer()
	features := model.BehaviorFeatures{
		AvgWeeklyFrequency: 2, Consistency: 0.5, AverageSpend: 600, WeekendRatio: 0.2, NightRatio: 0.1,
	}
	habit := model.HabitDetection{Detected: false, Intensity: model.IntensityLow, Confidence: 0}
	goals := []model.Goal{{
		Name: "Vacation Fund", TargetAmount: 3000, CurrentAmount: 1800, TimelineMonths: 10, Priority: 2,
	}}

	got := s.Detect(habit, goals, profileFor(model.CategoryTransport, features, habit),
		model.ConflictContext{MonthlySavingsCapacity: 700})

	assert.False(t, got.ConflictDetected)
	assert.Equal(t, model.SeverityLow, got.OverallSeverity)
	assert.Less(t, got.OverallConflictScore, 0.42)
	assert.Empty(t, got.Alerts)
	assert.Equal(t, model.GoalGeneral, got.GoalConflicts[0].GoalType)
	assert.Equal(t, "Spending behavior in transport is currently aligned with your active goals. Keep tracking monthly to catch early deviations.", got.Explanation)
	assert.Equal(t, "Reallocate a fixed monthly amount of at least 120.00 toward 'Vacation Fund' and set a category cap for transport.",
		got.GoalConflicts[0].RecommendedAction)
}

func TestScorer_SortsAndCapsAlerts(t *testing.T) {
	s := newTestScorer()
	habit := model.HabitDetection{Detected: true, Intensity: model.IntensityHigh, Confidence: 0.9}
	features := model.BehaviorFeatures{AvgWeeklyFrequency: 7, Consistency: 0.9, AverageSpend: 4000, WeekendRatio: 0.8, NightRatio: 0.6}
	profile := profileFor(model.CategoryDiningOut, features, habit)

	goals := make([]model.Goal, 0, 8)
	for i := 1; i <= 8; i++ {
		goals = append(goals, model.Goal{
			Name:           fmt.Sprintf("goal-%d", i),
			Type:           model.GoalEmergencyFund,
			TargetAmount:   float64(1000 * i),
			TimelineMonths: 3 * i,
			Priority:       1 + i%5,
		})
	}

	got := s.Detect(habit, goals, profile, model.ConflictContext{MonthlySavingsCapacity: 500})

	require.Len(t, got.GoalConflicts, 8)
	for i := 1; i < len(got.GoalConflicts); i++ {
		assert.GreaterOrEqual(t, got.GoalConflicts[i-1].ConflictScore, got.GoalConflicts[i].ConflictScore)
	}
	assert.LessOrEqual(t, len(got.Alerts), 5)
	for i, alert := range got.Alerts {
		assert.NotEqual(t, model.SeverityLow, alert.Severity)
		assert.Equal(t, got.GoalConflicts[i].GoalName, alert.GoalName)
	}
	assert.Equal(t, got.GoalConflicts[0].ConflictScore, got.OverallConflictScore)
}

func TestScorer_AlignmentDiscount(t *testing.T) {
	s := newTestScorer()
	habit := model.HabitDetection{Detected: true, Intensity: model.IntensityMedium, Confidence: 0.6}
	profile := profileFor(model.CategoryTravel, model.BehaviorFeatures{AvgWeeklyFrequency: 2, AverageSpend: 1500}, habit)
	base := model.Goal{Name: "Trip", TargetAmount: 5000, TimelineMonths: 10, Priority: 3}

	travelGoal := base
	travelGoal.Type = model.GoalTravel
	generalGoal := base

	aligned := s.Detect(habit, []model.Goal{travelGoal}, profile, model.ConflictContext{MonthlySavingsCapacity: 400})
	plain := s.Detect(habit, []model.Goal{generalGoal}, profile, model.ConflictContext{MonthlySavingsCapacity: 400})

	assert.InDelta(t, plain.OverallConflictScore-0.24, aligned.OverallConflictScore, 0.002)
}

func TestScorer_CategoryConflict(t *testing.T) {
	s := newTestScorer()
	tests := []struct {
		name     string
		goal     model.Goal
		category model.Category
		want     float64
	}{
		{name: "table entry", goal: model.Goal{Type: model.GoalDebtReduction}, category: model.CategoryTravel, want: 0.28},
		{name: "default for unknown goal type", goal: model.Goal{Type: "House"}, category: model.CategoryShopping, want: 0.12},
		{name: "default for unlisted category", goal: model.Goal{Type: model.GoalInvestment}, category: model.CategoryRent, want: 0.12},
		{
			name:     "protected adds penalty",
			goal:     NormalizeGoal(model.Goal{Type: model.GoalEmergencyFund, ProtectedCategories: []string{" Dinning Out "}}),
			category: model.CategoryDiningOut,
			want:     0.55,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.CategoryConflict(tt.goal, tt.category), 1e-9)
		})
	}
}

func TestNormalizeGoal(t *testing.T) {
	got := NormalizeGoal(model.Goal{
		Name:           "  ",
		TargetAmount:   -10,
		CurrentAmount:  -5,
		TimelineMonths: 0,
		Priority:       9,
	})

	assert.Equal(t, "Unnamed Goal", got.Name)
	assert.Equal(t, model.GoalGeneral, got.Type)
	assert.Zero(t, got.TargetAmount)
	assert.Zero(t, got.CurrentAmount)
	assert.Equal(t, 1, got.TimelineMonths)
	assert.Equal(t, 5, got.Priority)

	assert.Equal(t, 3, NormalizeGoal(model.Goal{}).Priority)
	assert.Equal(t, 1, NormalizeGoal(model.Goal{Priority: -2}).Priority)
}

func TestScorer_GoalPressureEdges(t *testing.T) {
	s := newTestScorer()

	zeroTarget := NormalizeGoal(model.Goal{Name: "done", Priority: 5, TimelineMonths: 12})
	// progress is complete and nothing is required: only priority and urgency remain.
	assert.InDelta(t, 0.4+0.25*0.5, s.GoalPressure(zeroTarget, 0), 1e-9)

	noCapacity := NormalizeGoal(model.Goal{Name: "x", TargetAmount: 100, TimelineMonths: 1, Priority: 1})
	assert.InDelta(t, 0.08+0.25+0.2+0.15, s.GoalPressure(noCapacity, 0), 1e-9)
}

func TestScorer_ScoresStayBounded(t *testing.T) {
	s := newTestScorer()
	habit := model.HabitDetection{Detected: true, Intensity: model.IntensityHigh, Confidence: 1}
	profile := profileFor(model.CategoryShopping, model.BehaviorFeatures{
		AvgWeeklyFrequency: 100, Consistency: 1, AverageSpend: 1e9, WeekendRatio: 1, NightRatio: 1,
	}, habit)
	goals := []model.Goal{{Name: "g", Type: model.GoalEmergencyFund, TargetAmount: 1e9, TimelineMonths: 1, Priority: 5, ProtectedCategories: []string{"shopping"}}}

	got := s.Detect(habit, goals, profile, model.ConflictContext{})

	assert.LessOrEqual(t, got.OverallConflictScore, 1.0)
	assert.Equal(t, model.SeverityCritical, got.OverallSeverity)
	assert.InDelta(t, 1.0, s.BehaviorPressure(habit, profile), 1e-9)
}
