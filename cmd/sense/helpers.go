package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Veraticus/spend-sense/internal/common"
	"github.com/Veraticus/spend-sense/internal/config"
	"github.com/Veraticus/spend-sense/internal/engine"
	"github.com/Veraticus/spend-sense/internal/inference"
	"github.com/Veraticus/spend-sense/internal/metrics"
	"github.com/Veraticus/spend-sense/internal/storage"
)

// Output formats accepted by --output.
const (
	outputSummary = "summary"
	outputJSON    = "json"
)

func (a *app) newPipeline() (*engine.Pipeline, error) {
	tuning, err := config.LoadTuning(a.v)
	if err != nil {
		return nil, err
	}

	artifacts := inference.Load(inference.Paths{
		Habit:       config.ExpandPath(a.v.GetString("models.habit_path")),
		Suitability: config.ExpandPath(a.v.GetString("models.suitability_path")),
	})

	cfg := engine.DefaultConfig()
	if k := a.v.GetInt("ranking.top_k"); k > 0 {
		cfg.TopK = k
	}
	if a.recorder != nil {
		cfg.Recorder = a.recorder
	} else {
		cfg.Recorder = metrics.Nop{}
	}
	return engine.NewWithConfig(artifacts, tuning, cfg), nil
}

func (a *app) openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := config.ExpandPath(a.v.GetString("database.path"))
	store, err := storage.Open(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return store, nil
}

func loadRequests(path string) ([]engine.Request, error) {
	if path == "" {
		return nil, common.NewUserError("a request file is required (use -f)", common.ErrMissingConfig)
	}
	reqs, err := engine.LoadRequests(config.ExpandPath(path))
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, common.NewUserError(fmt.Sprintf("no requests found in %s", path), common.ErrInvalidRequest)
	}
	return reqs, nil
}

func validateOutput(format string) error {
	switch format {
	case outputSummary, outputJSON:
		return nil
	default:
		return common.NewUserError(fmt.Sprintf("unknown output format %q (use summary or json)", format), common.ErrInvalidRequest)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// toEvaluation flattens a report into a history row.
func toEvaluation(report *engine.Report) (*storage.Evaluation, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	e := &storage.Evaluation{
		ID:                   report.ID,
		Category:             string(report.Category),
		HabitDetected:        report.Habit.Detected,
		OverallConflictScore: report.Conflict.OverallConflictScore,
		OverallSeverity:      string(report.Conflict.OverallSeverity),
		Report:               body,
		Degraded:             report.Diagnostics.Degraded(),
	}
	if top, ok := report.TopRecommendation(); ok {
		e.TopRecommendation = top.Recommendation
	}
	return e, nil
}

func saveReports(ctx context.Context, store *storage.SQLiteStorage, reports ...*engine.Report) ([]string, error) {
	ids := make([]string, 0, len(reports))
	for _, report := range reports {
		e, err := toEvaluation(report)
		if err != nil {
			return ids, err
		}
		if err := store.SaveEvaluation(ctx, e); err != nil {
			return ids, err
		}
		report.ID = e.ID
		ids = append(ids, e.ID)
	}
	return ids, nil
}
