package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/spend-sense/internal/candidate"
	"github.com/Veraticus/spend-sense/internal/common"
	"github.com/Veraticus/spend-sense/internal/config"
	"github.com/Veraticus/spend-sense/internal/inference"
	"github.com/Veraticus/spend-sense/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spyRecorder struct {
	modes      []string
	severities []model.Severity
	recs       int
	mu         sync.Mutex
}

func (s *spyRecorder) ObserveEvaluation(_ model.Category, mode string, _ bool, _ time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modes = append(s.modes, mode)
}

func (s *spyRecorder) ObserveConflict(severity model.Severity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.severities = append(s.severities, severity)
}

func (s *spyRecorder) ObserveRecommendations(recs []model.Recommendation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs += len(recs)
}

func newTestPipeline(t *testing.T) (*Pipeline, *spyRecorder) {
	t.Helper()
	spy := &spyRecorder{}
	cfg := DefaultConfig()
	cfg.Recorder = spy
	return NewWithConfig(nil, config.DefaultTuning(), cfg), spy
}

func diningRequest() Request {
	return Request{
		BehaviorFeatures: model.BehaviorFeatures{
			AvgWeeklyFrequency: 6,
			Consistency:        0.8,
			AverageSpend:       3200,
			WeeksActive:        12,
			WeekendRatio:       0.7,
			NightRatio:         0.6,
		},
		CurrentTransaction: model.CurrentTransaction{Amount: 4500, Hour: 23},
		Category:           "Dining Out",
		ActiveGoals: []model.Goal{{
			Name:                "Emergency Fund",
			Type:                model.GoalEmergencyFund,
			TargetAmount:        12000,
			CurrentAmount:       1000,
			TimelineMonths:      8,
			Priority:            5,
			ProtectedCategories: []string{"dining out"},
		}},
		MonthlySavingsCapacity: 900,
		TopK:                   3,
	}
}

func TestEvaluate_HabitualDiningAgainstEmergencyFund(t *testing.T) {
	p, spy := newTestPipeline(t)

	report, err := p.Evaluate(context.Background(), diningRequest())
	require.NoError(t, err)

	assert.Equal(t, model.CategoryDiningOut, report.Category)
	assert.Equal(t, model.NatureDiscretionary, report.Nature)
	assert.True(t, report.Habit.Detected)
	assert.Equal(t, model.IntensityHigh, report.Habit.Intensity)
	assert.Equal(t, "Late-night food spending", report.Habit.Category)
	assert.True(t, report.Habit.Diagnostics.Degraded)

	assert.True(t, report.Conflict.ConflictDetected)
	assert.Contains(t, []model.Severity{model.SeverityHigh, model.SeverityCritical}, report.Conflict.OverallSeverity)

	assert.Equal(t, candidate.ModeTemplates, report.Diagnostics.CandidateMode)
	assert.True(t, report.Diagnostics.Degraded())
	require.Len(t, report.Recommendations, 3)
	for i, rec := range report.Recommendations {
		assert.Equal(t, i+1, rec.Rank)
		assert.GreaterOrEqual(t, rec.Score, 0.55)
		assert.LessOrEqual(t, rec.Score, 0.99)
		assert.Equal(t, "Emergency Fund", rec.ImpactsGoal)
	}
	assert.Equal(t, report.Recommendations[0].Recommendation, report.PrimaryStrategy)

	require.Len(t, report.TransactionAlerts, 2)
	assert.Equal(t, model.IntensityHigh, report.InterventionLevel)
	assert.Contains(t, report.UnifiedSummary, report.PrimaryStrategy)
	require.NotNil(t, report.Guidance.PrimaryFocus.TopGoal)
	assert.Equal(t, "Emergency Fund", report.Guidance.PrimaryFocus.TopGoal.GoalName)

	assert.Equal(t, []string{"templates"}, spy.modes)
	assert.Len(t, spy.severities, 1)
	assert.Equal(t, 3, spy.recs)
}

func TestEvaluate_FixedCategoryBypassesTemplates(t *testing.T) {
	p, _ := newTestPipeline(t)
	req := diningRequest()
	req.Category = "rent"

	report, err := p.Evaluate(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, report.Habit.Detected)
	assert.Zero(t, report.Habit.Confidence)
	assert.Equal(t, candidate.ModeFixed, report.Diagnostics.CandidateMode)
	require.Len(t, report.Recommendations, 1)
	assert.Equal(t, model.TemplateStability, report.Recommendations[0].TemplateKey)
	assert.Equal(t, model.IntensityLow, report.InterventionLevel)
}

func TestEvaluate_NoHabitUsesLightTouch(t *testing.T) {
	p, _ := newTestPipeline(t)
	req := Request{
		BehaviorFeatures: model.BehaviorFeatures{AvgWeeklyFrequency: 1, Consistency: 0.3, AverageSpend: 400, WeeksActive: 2},
		Category:         "transport",
	}

	report, err := p.Evaluate(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, report.Habit.Detected)
	assert.Equal(t, candidate.ModeLightTouch, report.Diagnostics.CandidateMode)
	require.Len(t, report.Recommendations, 1)
	assert.Equal(t, model.TemplateLightTouch, report.Recommendations[0].TemplateKey)
	assert.False(t, report.Conflict.ConflictDetected)
	assert.Empty(t, report.Conflict.GoalConflicts)
}

func TestEvaluate_DefaultTopK(t *testing.T) {
	p, _ := newTestPipeline(t)
	req := diningRequest()
	req.TopK = 0

	report, err := p.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, report.Recommendations, 5)
}

func TestEvaluate_Validation(t *testing.T) {
	tests := []struct {
		mutate   func(*Request)
		sentinel error
		name     string
	}{
		{name: "unknown category", mutate: func(r *Request) { r.Category = "crypto" }, sentinel: common.ErrUnknownCategory},
		{name: "ratio above one", mutate: func(r *Request) { r.WeekendRatio = 1.2 }, sentinel: common.ErrInvalidFeatures},
		{name: "negative frequency", mutate: func(r *Request) { r.AvgWeeklyFrequency = -1 }, sentinel: common.ErrInvalidFeatures},
		{name: "negative spend", mutate: func(r *Request) { r.AverageSpend = -5 }, sentinel: common.ErrInvalidFeatures},
		{name: "hour out of range", mutate: func(r *Request) { r.Hour = 24 }, sentinel: common.ErrInvalidRequest},
		{name: "negative amount", mutate: func(r *Request) { r.Amount = -1 }, sentinel: common.ErrInvalidRequest},
		{name: "zero target", mutate: func(r *Request) { r.ActiveGoals[0].TargetAmount = 0 }, sentinel: common.ErrInvalidGoal},
		{name: "zero timeline", mutate: func(r *Request) { r.ActiveGoals[0].TimelineMonths = 0 }, sentinel: common.ErrInvalidGoal},
		{name: "blank goal name", mutate: func(r *Request) { r.ActiveGoals[0].Name = "  " }, sentinel: common.ErrInvalidGoal},
	}

	p, spy := newTestPipeline(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := diningRequest()
			tt.mutate(&req)

			report, err := p.Evaluate(context.Background(), req)
			require.Error(t, err)
			assert.Nil(t, report)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.True(t, common.IsValidation(err))
		})
	}
	assert.Empty(t, spy.modes)
}

func TestEvaluate_UnknownCategoryListsAllowedNames(t *testing.T) {
	req := diningRequest()
	req.Category = "crypto"

	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dining out")
	assert.Contains(t, err.Error(), "subscriptions")
}

func TestEvaluate_CanceledContext(t *testing.T) {
	p, _ := newTestPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Evaluate(ctx, diningRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetect(t *testing.T) {
	p, _ := newTestPipeline(t)

	got, err := p.Detect(diningRequest().BehaviorFeatures, " DINNING OUT ")
	require.NoError(t, err)
	assert.True(t, got.Detected)

	_, err = p.Detect(model.BehaviorFeatures{}, "crypto")
	assert.ErrorIs(t, err, common.ErrUnknownCategory)

	_, err = p.Detect(model.BehaviorFeatures{NightRatio: -0.1}, "shopping")
	assert.ErrorIs(t, err, common.ErrInvalidFeatures)
}

func TestDetectConflicts(t *testing.T) {
	p, spy := newTestPipeline(t)
	req := diningRequest()
	habit, err := p.Detect(req.BehaviorFeatures, req.Category)
	require.NoError(t, err)
	profile := model.NewBehaviorProfile(req.BehaviorFeatures, model.CategoryDiningOut, model.NatureDiscretionary, habit, "")

	got, err := p.DetectConflicts(habit, req.ActiveGoals, profile, model.ConflictContext{MonthlySavingsCapacity: 900})
	require.NoError(t, err)
	assert.True(t, got.ConflictDetected)
	assert.Len(t, spy.severities, 1)

	bad := []model.Goal{{Name: "x", TargetAmount: -1, TimelineMonths: 3}}
	_, err = p.DetectConflicts(habit, bad, profile, model.ConflictContext{})
	assert.ErrorIs(t, err, common.ErrInvalidGoal)
}

func TestRank_WithoutUpstream(t *testing.T) {
	p, _ := newTestPipeline(t)
	req := diningRequest()
	habit, err := p.Detect(req.BehaviorFeatures, req.Category)
	require.NoError(t, err)
	profile := model.NewBehaviorProfile(req.BehaviorFeatures, model.CategoryDiningOut, model.NatureDiscretionary, habit, model.StyleDisciplined)

	recs := p.Rank(habit, profile, model.UpstreamSignals{}, 2)

	require.Len(t, recs, 2)
	assert.Equal(t, 1, recs[0].Rank)
	assert.GreaterOrEqual(t, recs[0].Score, recs[1].Score)
}

func TestNew_ReportsArtifactStatuses(t *testing.T) {
	p := New(inference.Load(inference.Paths{Habit: "/does/not/exist.json"}), config.DefaultTuning())

	statuses := p.Statuses()
	require.Len(t, statuses, 2)
	assert.False(t, statuses[0].Loaded)
	assert.Equal(t, "artifact not found", statuses[0].Reason)
	assert.Equal(t, "no artifact configured", statuses[1].Reason)
}

func TestEvaluateBatch(t *testing.T) {
	p, _ := newTestPipeline(t)
	bad := diningRequest()
	bad.Category = "crypto"
	reqs := []Request{diningRequest(), bad, {Category: "utilities"}}

	var calls int
	summary := p.EvaluateBatch(context.Background(), reqs, func() { calls++ })

	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Degraded)
	assert.Equal(t, 1, summary.HabitsDetected)
	require.Len(t, summary.Results, 3)
	for i, r := range summary.Results {
		assert.Equal(t, i, r.Index)
	}
	assert.Equal(t, model.CategoryDiningOut, summary.Results[0].Report.Category)
	assert.ErrorIs(t, summary.Results[1].Error, common.ErrUnknownCategory)
	assert.Equal(t, model.CategoryUtilities, summary.Results[2].Report.Category)
}

func TestEvaluateBatch_Canceled(t *testing.T) {
	p, _ := newTestPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := p.EvaluateBatch(ctx, []Request{diningRequest(), diningRequest()}, nil)

	assert.Equal(t, 2, summary.Failed)
	for _, r := range summary.Results {
		assert.True(t, errors.Is(r.Error, context.Canceled))
	}
}

func TestDecodeRequests(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		categories []string
		wantErr    bool
	}{
		{
			name: "single yaml mapping",
			input: `category: shopping
avg_weekly_frequency: 4
consistency: 0.7
weekend_ratio: 0.6
transaction_amount: 120
transaction_hour: 21
active_goals:
  - goal_name: Trip
    target_amount: 2000
    timeline_months: 6
`,
			categories: []string{"shopping"},
		},
		{
			name:       "yaml list",
			input:      "- category: travel\n- category: rent\n",
			categories: []string{"travel", "rent"},
		},
		{
			name:       "requests key",
			input:      "requests:\n  - category: medical\n",
			categories: []string{"medical"},
		},
		{
			name:       "json object",
			input:      `{"category": "subscriptions", "avg_weekly_frequency": 1, "monthly_savings_capacity": 50}`,
			categories: []string{"subscriptions"},
		},
		{name: "empty", input: "  \n", wantErr: true},
		{name: "scalar", input: "just text", wantErr: true},
		{name: "malformed", input: "category: [", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqs, err := DecodeRequests(strings.NewReader(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
			require.Len(t, reqs, len(tt.categories))
			for i, c := range tt.categories {
				assert.Equal(t, c, reqs[i].Category)
			}
		})
	}
}

func TestDecodeRequests_FlatFields(t *testing.T) {
	reqs, err := DecodeRequests(strings.NewReader(`category: shopping
avg_weekly_frequency: 4
weekend_ratio: 0.6
transaction_amount: 120
transaction_hour: 21
behavior_style: conservative
active_goals:
  - goal_name: Trip
    goal_type: Travel
    target_amount: 2000
    timeline_months: 6
    protected_categories: [shopping]
`))
	require.NoError(t, err)
	require.Len(t, reqs, 1)

	req := reqs[0]
	assert.Equal(t, 4, req.AvgWeeklyFrequency)
	assert.InDelta(t, 0.6, req.WeekendRatio, 1e-9)
	assert.InDelta(t, 120.0, req.Amount, 1e-9)
	assert.Equal(t, 21, req.Hour)
	assert.Equal(t, model.StyleConservative, req.BehaviorStyle)
	require.Len(t, req.ActiveGoals, 1)
	assert.Equal(t, model.GoalTravel, req.ActiveGoals[0].Type)
	assert.Equal(t, []string{"shopping"}, req.ActiveGoals[0].ProtectedCategories)
	assert.NoError(t, req.Validate())
}

func TestLoadRequests_MissingFile(t *testing.T) {
	_, err := LoadRequests(t.TempDir() + "/missing.yaml")
	assert.Error(t, err)
}
