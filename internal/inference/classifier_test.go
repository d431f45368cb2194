package inference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/spend-sense/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLogisticModel_PredictProba(t *testing.T) {
	m := &LogisticModel{Coefficients: []float64{2, -1}, Intercept: 0}

	p, err := m.PredictProba([]float64{0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-12)

	p, err = m.PredictProba([]float64{10, 0})
	require.NoError(t, err)
	assert.Greater(t, p, 0.99)

	_, err = m.PredictProba([]float64{1})
	require.ErrorIs(t, err, common.ErrArtifactInvalid)
}

func TestLogisticModel_Standardization(t *testing.T) {
	m := &LogisticModel{
		Coefficients: []float64{1},
		Means:        []float64{5},
		Scales:       []float64{2},
	}
	require.NoError(t, m.Validate())

	p, err := m.PredictProba([]float64{5})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-12)
}

func TestLoadLogisticModel(t *testing.T) {
	t.Run("valid artifact", func(t *testing.T) {
		path := writeArtifact(t, `{"name":"habit","features":["a","b"],"coefficients":[0.5,0.25],"intercept":-1}`)
		m, err := LoadLogisticModel(path)
		require.NoError(t, err)
		assert.Equal(t, "habit", m.Name)
		assert.Len(t, m.Coefficients, 2)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadLogisticModel(filepath.Join(t.TempDir(), "absent.json"))
		require.ErrorIs(t, err, common.ErrArtifactUnavailable)
	})

	t.Run("corrupt json", func(t *testing.T) {
		_, err := LoadLogisticModel(writeArtifact(t, `{"coefficients": [`))
		require.ErrorIs(t, err, common.ErrArtifactInvalid)
	})

	t.Run("shape mismatch", func(t *testing.T) {
		_, err := LoadLogisticModel(writeArtifact(t, `{"features":["a"],"coefficients":[1,2]}`))
		require.ErrorIs(t, err, common.ErrArtifactInvalid)
	})

	t.Run("zero scale", func(t *testing.T) {
		_, err := LoadLogisticModel(writeArtifact(t, `{"coefficients":[1],"scales":[0]}`))
		require.ErrorIs(t, err, common.ErrArtifactInvalid)
	})
}

func TestOpenClassifier(t *testing.T) {
	h := OpenClassifier("habit", "")
	assert.False(t, h.Available())
	assert.Equal(t, "no artifact configured", h.Status.Reason)

	h = OpenClassifier("habit", filepath.Join(t.TempDir(), "absent.json"))
	assert.False(t, h.Available())
	assert.Equal(t, "artifact not found", h.Status.Reason)
	assert.NotEmpty(t, h.Status.Path)

	h = OpenClassifier("habit", writeArtifact(t, `{"coefficients":[1,1,1,1,1,1]}`))
	assert.True(t, h.Available())
	assert.True(t, h.Status.Loaded)
}

func TestLoad_DegradesWithoutArtifacts(t *testing.T) {
	a := Load(Paths{})
	require.NotNil(t, a.Templates)
	assert.False(t, a.Habit.Available())
	assert.False(t, a.Suitability.Available())
	assert.Len(t, a.Statuses(), 2)
}
