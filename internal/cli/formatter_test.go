package cli

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/spend-sense/internal/analysis"
	"github.com/Veraticus/spend-sense/internal/config"
	"github.com/Veraticus/spend-sense/internal/engine"
	"github.com/Veraticus/spend-sense/internal/model"
	"github.com/Veraticus/spend-sense/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evaluate(t *testing.T, req engine.Request) *engine.Report {
	t.Helper()
	report, err := engine.New(nil, config.DefaultTuning()).Evaluate(context.Background(), req)
	require.NoError(t, err)
	return report
}

func TestFormatter_Report(t *testing.T) {
	report := evaluate(t, testutil.ShoppingRequest())

	out := NewFormatter().Report(report)

	assert.Contains(t, out, "Spending evaluation: shopping (Discretionary)")
	assert.Contains(t, out, report.Habit.Category)
	assert.Contains(t, out, "Goal conflict")
	assert.Contains(t, out, "Emergency Fund")
	assert.Contains(t, out, "1. "+report.Recommendations[0].Recommendation)
	assert.Contains(t, out, "2. "+report.Recommendations[1].Recommendation)
	assert.Contains(t, out, report.Guidance.MonthlyDirection)
	assert.Contains(t, out, "Heuristic fallback in use")
}

func TestFormatter_ReportNil(t *testing.T) {
	assert.Contains(t, NewFormatter().Report(nil), "No report available")
}

func TestFormatter_Habit(t *testing.T) {
	f := NewFormatter()

	detected := f.Habit(model.HabitDetection{Detected: true, Category: "Weekend-heavy shopping spending", Intensity: model.IntensityHigh, Confidence: 0.8})
	assert.Contains(t, detected, "High intensity habit")
	assert.Contains(t, detected, "80%")

	none := f.Habit(model.HabitDetection{Category: "Recurring transport spending"})
	assert.Contains(t, none, "no habit detected")
}

func TestFormatter_Recommendations_Empty(t *testing.T) {
	assert.Contains(t, NewFormatter().Recommendations(nil), "Nothing to recommend.")
}

func TestFormatter_Categories(t *testing.T) {
	out := NewFormatter().Categories(model.AllowedCategories())

	fixed := strings.Index(out, "Fixed")
	discretionary := strings.Index(out, "Discretionary")
	require.NotEqual(t, -1, fixed)
	require.NotEqual(t, -1, discretionary)
	assert.Less(t, fixed, discretionary)
	assert.Contains(t, out, "dining out")
}

func TestFormatter_Derivation(t *testing.T) {
	f := NewFormatter()
	assert.Contains(t, f.Derivation(analysis.Derivation{}), "No matching transactions")

	out := f.Derivation(analysis.Derivation{
		Start:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2024, 1, 28, 0, 0, 0, 0, time.UTC),
		Transactions: 8,
		WeeksSpanned: 4,
		Features:     model.BehaviorFeatures{AvgWeeklyFrequency: 2, Consistency: 1, WeeksActive: 4, AverageSpend: 320},
		Stability:    analysis.Stability{Level: analysis.StabilityStable, Score: 91.5},
	})
	assert.Contains(t, out, "8 transactions from Jan 1, 2024 to Jan 28, 2024 (4 weeks)")
	assert.Contains(t, out, "Stability: stable (score 91.5)")
}

func TestFormatter_History(t *testing.T) {
	f := NewFormatter()
	assert.Contains(t, f.History(nil), "No evaluations saved yet.")

	db := testutil.SetupTestDB(t,
		testutil.SampleEvaluation("travel", time.Now().Add(-time.Hour)),
		testutil.SampleEvaluation("shopping", time.Now()),
	)
	evals := db.List(10)
	require.Len(t, evals, 2)

	out := f.History(evals)
	assert.Contains(t, out, db.Evaluations[0].ID)
	assert.Contains(t, out, "travel")
	assert.Contains(t, out, "shopping")
	assert.Contains(t, out, "yes")
	assert.Less(t, strings.Index(out, "shopping"), strings.Index(out, "travel"))
}

func TestFormatter_BatchSummary(t *testing.T) {
	f := NewFormatter()
	assert.Contains(t, f.BatchSummary(nil), "No requests to evaluate.")

	summary := &engine.BatchSummary{
		Total:     2,
		Succeeded: 1,
		Failed:    1,
		Results: []engine.BatchResult{
			{Index: 0, Report: evaluate(t, testutil.ShoppingRequest())},
			{Index: 1, Error: errors.New("unsupported category")},
		},
	}
	out := f.BatchSummary(summary)
	assert.Contains(t, out, "1 of 2 requests evaluated")
	assert.Contains(t, out, "request 2: unsupported category")
	assert.Contains(t, out, "shopping")
}

func TestScoreBar(t *testing.T) {
	tests := []struct {
		score  float64
		filled int
	}{
		{0, 0},
		{0.5, barWidth / 2},
		{1, barWidth},
		{1.7, barWidth},
		{-1, 0},
	}

	for _, tt := range tests {
		bar := scoreBar(tt.score)
		assert.Equal(t, tt.filled, strings.Count(bar, "█"))
		assert.Equal(t, barWidth, len([]rune(bar)))
	}
}
