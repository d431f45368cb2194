package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/spend-sense/internal/common"
	"github.com/google/uuid"
)

// DefaultListLimit caps ListEvaluations when no limit is given.
const DefaultListLimit = 20

// Evaluation is one stored report with the columns history listings need.
type Evaluation struct {
	CreatedAt            time.Time       `json:"created_at"`
	ID                   string          `json:"id"`
	Category             string          `json:"category"`
	OverallSeverity      string          `json:"overall_severity"`
	TopRecommendation    string          `json:"top_recommendation"`
	Report               json.RawMessage `json:"report,omitempty"`
	OverallConflictScore float64         `json:"overall_conflict_score"`
	HabitDetected        bool            `json:"habit_detected"`
	Degraded             bool            `json:"degraded"`
}

// SaveEvaluation inserts an evaluation. A missing ID is filled with a new
// UUID and a zero CreatedAt with the current time; both are written back.
func (s *SQLiteStorage) SaveEvaluation(ctx context.Context, e *Evaluation) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEvaluation(e); err != nil {
		return err
	}
	if !json.Valid(e.Report) {
		return fmt.Errorf("%w: report is not valid JSON", ErrInvalidEvaluation)
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO evaluations (
			id, created_at, category, habit_detected, overall_conflict_score,
			overall_severity, top_recommendation, report, degraded
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.CreatedAt,
		e.Category,
		e.HabitDetected,
		e.OverallConflictScore,
		e.OverallSeverity,
		e.TopRecommendation,
		string(e.Report),
		e.Degraded,
	)
	if err != nil {
		return fmt.Errorf("failed to save evaluation: %w", err)
	}
	return nil
}

// GetEvaluation returns the evaluation with the given ID, or an error
// wrapping common.ErrNotFound.
func (s *SQLiteStorage) GetEvaluation(ctx context.Context, id string) (*Evaluation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, category, habit_detected, overall_conflict_score,
		       overall_severity, top_recommendation, report, degraded
		FROM evaluations
		WHERE id = ?`, id)

	e, err := scanEvaluation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("evaluation %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}
	return e, nil
}

// ListEvaluations returns the most recent evaluations, newest first.
// The report body is omitted; use GetEvaluation for it.
func (s *SQLiteStorage) ListEvaluations(ctx context.Context, limit int) ([]Evaluation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, category, habit_detected, overall_conflict_score,
		       overall_severity, top_recommendation, '', degraded
		FROM evaluations
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	evaluations := make([]Evaluation, 0, limit)
	for rows.Next() {
		e, scanErr := scanEvaluation(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", scanErr)
		}
		evaluations = append(evaluations, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating evaluations: %w", err)
	}
	return evaluations, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(row scanner) (*Evaluation, error) {
	var (
		e      Evaluation
		top    sql.NullString
		report string
	)
	if err := row.Scan(
		&e.ID,
		&e.CreatedAt,
		&e.Category,
		&e.HabitDetected,
		&e.OverallConflictScore,
		&e.OverallSeverity,
		&top,
		&report,
		&e.Degraded,
	); err != nil {
		return nil, err
	}
	e.TopRecommendation = top.String
	if report != "" {
		e.Report = json.RawMessage(report)
	}
	return &e, nil
}
