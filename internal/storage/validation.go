package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Validation errors.
var (
	ErrNilContext        = errors.New("context cannot be nil")
	ErrEmptyString       = errors.New("string parameter cannot be empty")
	ErrNilParameter      = errors.New("parameter cannot be nil")
	ErrInvalidEvaluation = errors.New("invalid evaluation")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateEvaluation(e *Evaluation) error {
	if e == nil {
		return fmt.Errorf("%w: evaluation", ErrNilParameter)
	}
	if strings.TrimSpace(e.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidEvaluation)
	}
	if len(e.Report) == 0 {
		return fmt.Errorf("%w: report is required", ErrInvalidEvaluation)
	}
	return nil
}
