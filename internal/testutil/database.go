// Package testutil provides shared fixtures for tests that need a seeded
// evaluation store or realistic pipeline requests.
package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Veraticus/spend-sense/internal/storage"
)

// TestDB is a migrated store together with the evaluations seeded into it.
type TestDB struct {
	Storage     *storage.SQLiteStorage
	t           *testing.T
	Evaluations []*storage.Evaluation
}

// SetupTestDB creates a migrated in-memory store and saves evals into it.
// The store is closed when the test finishes.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.SampleEvaluation("travel", time.Now()))
func SetupTestDB(t *testing.T, evals ...*storage.Evaluation) *TestDB {
	t.Helper()

	store, err := storage.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	db := &TestDB{Storage: store, t: t}
	db.Seed(evals...)
	return db
}

// SeedFile saves evals into the database file at path and closes it again,
// leaving the file ready for code that opens it by path.
func SeedFile(t *testing.T, path string, evals ...*storage.Evaluation) {
	t.Helper()

	store, err := storage.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer func() { _ = store.Close() }()

	db := &TestDB{Storage: store, t: t}
	db.Seed(evals...)
}

// Seed saves each evaluation, failing the test on the first error.
func (db *TestDB) Seed(evals ...*storage.Evaluation) {
	db.t.Helper()
	for _, e := range evals {
		if err := db.Storage.SaveEvaluation(context.Background(), e); err != nil {
			db.t.Fatalf("failed to seed evaluation for %q: %v", e.Category, err)
		}
		db.Evaluations = append(db.Evaluations, e)
	}
}

// List returns the most recent evaluations, failing the test on error.
func (db *TestDB) List(limit int) []storage.Evaluation {
	db.t.Helper()
	evals, err := db.Storage.ListEvaluations(context.Background(), limit)
	if err != nil {
		db.t.Fatalf("failed to list evaluations: %v", err)
	}
	return evals
}

// SampleEvaluation returns a detected, critical evaluation for category.
func SampleEvaluation(category string, created time.Time) *storage.Evaluation {
	body, _ := json.Marshal(map[string]string{"category": category})
	return &storage.Evaluation{
		CreatedAt:            created,
		Category:             category,
		HabitDetected:        true,
		OverallConflictScore: 0.824,
		OverallSeverity:      "Critical",
		TopRecommendation:    "Use a 24-hour cooldown rule before non-essential purchases.",
		Report:               body,
	}
}
