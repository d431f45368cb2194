package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/spend-sense/internal/common"
	"github.com/Veraticus/spend-sense/internal/model"
	"gopkg.in/yaml.v3"
)

// Request is one full evaluation: the behavior of a category, the purchase
// being looked at and the user's active goals.
type Request struct {
	model.BehaviorFeatures   `yaml:",inline"`
	model.CurrentTransaction `yaml:",inline"`

	ID                     string              `json:"id,omitempty" yaml:"id,omitempty"`
	Category               string              `json:"category" yaml:"category"`
	BehaviorStyle          model.BehaviorStyle `json:"behavior_style,omitempty" yaml:"behavior_style,omitempty"`
	ActiveGoals            []model.Goal        `json:"active_goals" yaml:"active_goals"`
	MonthlySavingsCapacity float64             `json:"monthly_savings_capacity" yaml:"monthly_savings_capacity"`
	TopK                   int                 `json:"top_k,omitempty" yaml:"top_k,omitempty"`
}

// Validate rejects structurally invalid input before any scoring happens.
// Every problem found is reported; the result unwraps to the matching
// sentinel errors from the common package.
func (r *Request) Validate() error {
	var errs []error

	if _, _, ok := model.LookupCategory(r.Category); !ok {
		errs = append(errs, unknownCategory(r.Category))
	}
	if err := ValidateFeatures(r.BehaviorFeatures); err != nil {
		errs = append(errs, err)
	}
	if !common.IsFinite(r.Amount) || r.Amount < 0 {
		errs = append(errs, common.NewValidationError(common.ErrInvalidRequest, "transaction_amount", "must be a non-negative number"))
	}
	if r.Hour < 0 || r.Hour > 23 {
		errs = append(errs, common.NewValidationError(common.ErrInvalidRequest, "transaction_hour", "must be between 0 and 23"))
	}
	if !common.IsFinite(r.MonthlySavingsCapacity) || r.MonthlySavingsCapacity < 0 {
		errs = append(errs, common.NewValidationError(common.ErrInvalidRequest, "monthly_savings_capacity", "must be a non-negative number"))
	}
	if r.TopK < 0 {
		errs = append(errs, common.NewValidationError(common.ErrInvalidRequest, "top_k", "must not be negative"))
	}
	for i, g := range r.ActiveGoals {
		if err := ValidateGoal(g); err != nil {
			errs = append(errs, fmt.Errorf("active_goals[%d]: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

// ValidateFeatures checks ranges of the behavior features.
func ValidateFeatures(f model.BehaviorFeatures) error {
	var errs []error
	if f.AvgWeeklyFrequency < 0 {
		errs = append(errs, common.NewValidationError(common.ErrInvalidFeatures, "avg_weekly_frequency", "must not be negative"))
	}
	if f.WeeksActive < 0 {
		errs = append(errs, common.NewValidationError(common.ErrInvalidFeatures, "weeks_active", "must not be negative"))
	}
	if !common.IsFinite(f.AverageSpend) || f.AverageSpend < 0 {
		errs = append(errs, common.NewValidationError(common.ErrInvalidFeatures, "average_spend", "must be a non-negative number"))
	}
	for name, v := range map[string]float64{
		"consistency":   f.Consistency,
		"weekend_ratio": f.WeekendRatio,
		"night_ratio":   f.NightRatio,
	} {
		if !common.IsFinite(v) || v < 0 || v > 1 {
			errs = append(errs, common.NewValidationError(common.ErrInvalidFeatures, name, "must be within [0, 1]"))
		}
	}
	return errors.Join(errs...)
}

// ValidateGoal rejects goals that cannot be scored. Priority is not checked;
// the conflict scorer clamps it.
func ValidateGoal(g model.Goal) error {
	var errs []error
	if strings.TrimSpace(g.Name) == "" {
		errs = append(errs, common.NewValidationError(common.ErrInvalidGoal, "goal_name", "is required"))
	}
	if !common.IsFinite(g.TargetAmount) || g.TargetAmount <= 0 {
		errs = append(errs, common.NewValidationError(common.ErrInvalidGoal, "target_amount", "must be positive"))
	}
	if !common.IsFinite(g.CurrentAmount) || g.CurrentAmount < 0 {
		errs = append(errs, common.NewValidationError(common.ErrInvalidGoal, "current_amount", "must not be negative"))
	}
	if g.TimelineMonths <= 0 {
		errs = append(errs, common.NewValidationError(common.ErrInvalidGoal, "timeline_months", "must be positive"))
	}
	return errors.Join(errs...)
}

func unknownCategory(raw string) error {
	return common.NewValidationError(common.ErrUnknownCategory, "category",
		fmt.Sprintf("%q is not one of: %s", raw, strings.Join(model.AllowedCategoryNames(), ", ")))
}

// requestFile is the batch layout: a top-level "requests" list.
type requestFile struct {
	Requests []Request `yaml:"requests"`
}

// LoadRequests reads requests from a YAML or JSON file. The file may hold a
// single request, a list of requests or a mapping with a "requests" list.
func LoadRequests(path string) ([]Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open request file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			common.LogDebug("Failed to close request file", common.Fields{"path": path, "error": closeErr})
		}
	}()
	return DecodeRequests(f)
}

// DecodeRequests parses requests in any of the layouts LoadRequests accepts.
func DecodeRequests(r io.Reader) ([]Request, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read requests: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, common.NewValidationError(common.ErrInvalidRequest, "file", "is empty")
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidRequest, err)
	}
	root := &node
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	switch {
	case root.Kind == yaml.SequenceNode:
		var reqs []Request
		if err := root.Decode(&reqs); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrInvalidRequest, err)
		}
		return reqs, nil
	case root.Kind == yaml.MappingNode && hasKey(root, "requests"):
		var file requestFile
		if err := root.Decode(&file); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrInvalidRequest, err)
		}
		return file.Requests, nil
	case root.Kind == yaml.MappingNode:
		var req Request
		if err := root.Decode(&req); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrInvalidRequest, err)
		}
		return []Request{req}, nil
	default:
		return nil, common.NewValidationError(common.ErrInvalidRequest, "file", "must contain a request mapping or list")
	}
}

func hasKey(mapping *yaml.Node, key string) bool {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return true
		}
	}
	return false
}
