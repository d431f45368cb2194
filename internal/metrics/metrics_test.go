package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/spend-sense/internal/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_Observe(t *testing.T) {
	p := NewPrometheus()

	p.ObserveEvaluation(model.CategoryShopping, "templates", false, 2*time.Millisecond)
	p.ObserveEvaluation(model.CategoryShopping, "templates", false, time.Millisecond)
	p.ObserveEvaluation(model.CategoryRent, "fixed", true, time.Millisecond)
	p.ObserveConflict(model.SeverityHigh)
	p.ObserveRecommendations([]model.Recommendation{
		{Tier: model.TierCritical, Score: 0.98},
		{Tier: model.TierModerate, Score: 0.6},
	})

	assert.InDelta(t, 2, testutil.ToFloat64(p.evaluations.WithLabelValues("shopping", "templates", "false")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(p.evaluations.WithLabelValues("rent", "fixed", "true")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(p.conflicts.WithLabelValues("High")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(p.recommendations.WithLabelValues("Critical")), 1e-9)
	assert.Equal(t, 1, testutil.CollectAndCount(p.scores))
}

func TestPrometheus_WriteTextfile(t *testing.T) {
	p := NewPrometheus()
	p.ObserveConflict(model.SeverityLow)

	path := filepath.Join(t.TempDir(), "sense.prom")
	require.NoError(t, p.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `sense_goal_conflicts_total{severity="Low"} 1`))
}

func TestPrometheus_WriteTextfileBadPath(t *testing.T) {
	p := NewPrometheus()
	err := p.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "sense.prom"))
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	r.ObserveEvaluation(model.CategoryShopping, "templates", false, time.Second)
	r.ObserveConflict(model.SeverityCritical)
	r.ObserveRecommendations(nil)
}
