package inference

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/Veraticus/spend-sense/internal/common"
	"gonum.org/v1/gonum/floats"
)

// Classifier returns the positive-class probability for a feature vector.
type Classifier interface {
	PredictProba(features []float64) (float64, error)
}

// LogisticModel is a binary logistic regression exported as JSON.
//
// Means and Scales are optional; when present each feature is standardized as
// (x - mean) / scale before the linear term is applied.
type LogisticModel struct {
	Name         string    `json:"name"`
	Features     []string  `json:"features"`
	Coefficients []float64 `json:"coefficients"`
	Means        []float64 `json:"means,omitempty"`
	Scales       []float64 `json:"scales,omitempty"`
	Intercept    float64   `json:"intercept"`
}

// LoadLogisticModel reads and validates a logistic model artifact.
func LoadLogisticModel(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrArtifactUnavailable, err)
	}

	var m LogisticModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", common.ErrArtifactInvalid, path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the artifact shape.
func (m *LogisticModel) Validate() error {
	n := len(m.Coefficients)
	if n == 0 {
		return fmt.Errorf("%w: no coefficients", common.ErrArtifactInvalid)
	}
	if len(m.Features) != 0 && len(m.Features) != n {
		return fmt.Errorf("%w: %d feature names for %d coefficients", common.ErrArtifactInvalid, len(m.Features), n)
	}
	if len(m.Means) != 0 && len(m.Means) != n {
		return fmt.Errorf("%w: %d means for %d coefficients", common.ErrArtifactInvalid, len(m.Means), n)
	}
	if len(m.Scales) != 0 && len(m.Scales) != n {
		return fmt.Errorf("%w: %d scales for %d coefficients", common.ErrArtifactInvalid, len(m.Scales), n)
	}
	for i, s := range m.Scales {
		if s == 0 || !common.IsFinite(s) {
			return fmt.Errorf("%w: scale %d is %v", common.ErrArtifactInvalid, i, s)
		}
	}
	if !common.IsFinite(m.Intercept) || !allFinite(m.Coefficients) || !allFinite(m.Means) {
		return fmt.Errorf("%w: non-finite parameter", common.ErrArtifactInvalid)
	}
	return nil
}

// PredictProba implements Classifier.
func (m *LogisticModel) PredictProba(features []float64) (float64, error) {
	if len(features) != len(m.Coefficients) {
		return 0, fmt.Errorf("%w: expected %d features, got %d", common.ErrArtifactInvalid, len(m.Coefficients), len(features))
	}

	x := make([]float64, len(features))
	copy(x, features)
	if len(m.Means) > 0 {
		floats.Sub(x, m.Means)
	}
	if len(m.Scales) > 0 {
		floats.Div(x, m.Scales)
	}

	z := m.Intercept + floats.Dot(m.Coefficients, x)
	p := 1 / (1 + math.Exp(-z))
	if !common.IsFinite(p) {
		return 0, fmt.Errorf("%w: non-finite probability", common.ErrArtifactInvalid)
	}
	return common.Clamp01(p), nil
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if !common.IsFinite(v) {
			return false
		}
	}
	return true
}
