package analysis

import (
	"testing"
	"time"

	"github.com/Veraticus/spend-sense/internal/model"
	"github.com/stretchr/testify/assert"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return ts
}

func TestDeriveFeatures(t *testing.T) {
	txns := []model.Transaction{
		{Date: at(t, "2024-01-14 02:00"), Amount: -40},
		{Date: at(t, "2024-01-01 10:00"), Amount: -10},
		{Date: at(t, "2024-01-06 23:00"), Amount: -20},
		{Date: at(t, "2024-01-08 12:00"), Amount: -30},
	}

	got := DeriveFeatures(txns)

	assert.Equal(t, 4, got.Transactions)
	assert.Equal(t, 2, got.WeeksSpanned)
	assert.Equal(t, at(t, "2024-01-01 10:00"), got.Start)
	assert.Equal(t, model.BehaviorFeatures{
		AvgWeeklyFrequency: 2,
		Consistency:        1,
		AverageSpend:       100,
		WeeksActive:        2,
		WeekendRatio:       0.5,
		NightRatio:         0.5,
	}, got.Features)

	assert.InDelta(t, 56.57, got.Stability.CoefficientOfVariation, 0.01)
	assert.InDelta(t, 43.4, got.Stability.Score, 0.05)
	assert.Equal(t, StabilityModerate, got.Stability.Level)
}

func TestDeriveFeatures_GapsLowerConsistency(t *testing.T) {
	txns := []model.Transaction{
		{Date: at(t, "2024-03-04 12:00"), Amount: 25},
		{Date: at(t, "2024-03-25 12:00"), Amount: 25},
		{Date: at(t, "2024-04-15 12:00"), Amount: 25},
	}

	got := DeriveFeatures(txns)

	// 43 days span seven weeks, three of them active.
	assert.Equal(t, 7, got.WeeksSpanned)
	assert.Equal(t, 3, got.Features.WeeksActive)
	assert.InDelta(t, 0.429, got.Features.Consistency, 1e-9)
	assert.Equal(t, 0, got.Features.AvgWeeklyFrequency)
	assert.InDelta(t, 37.5, got.Features.AverageSpend, 1e-9)
	assert.Zero(t, got.Stability.CoefficientOfVariation)
	assert.Equal(t, StabilityStable, got.Stability.Level)
}

func TestDeriveFeatures_Empty(t *testing.T) {
	got := DeriveFeatures(nil)
	assert.Equal(t, model.BehaviorFeatures{}, got.Features)
	assert.Zero(t, got.Transactions)
}
