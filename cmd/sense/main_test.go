package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/spend-sense/internal/common"
	"github.com/Veraticus/spend-sense/internal/model"
	"github.com/Veraticus/spend-sense/internal/storage"
	"github.com/Veraticus/spend-sense/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const requestYAML = `category: dining out
avg_weekly_frequency: 6
consistency: 0.8
average_spend: 3200
weeks_active: 12
weekend_ratio: 0.7
night_ratio: 0.6
transaction_amount: 4500
transaction_hour: 23
monthly_savings_capacity: 900
top_k: 3
active_goals:
  - goal_name: Emergency Fund
    goal_type: Emergency Fund
    target_amount: 12000
    current_amount: 1000
    timeline_months: 8
    priority: 5
    protected_categories: [dining out]
`

const batchYAML = `requests:
  - category: shopping
    avg_weekly_frequency: 5
    consistency: 0.7
    weeks_active: 9
  - category: crypto
  - category: rent
`

const diningOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240301090000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4000999988887777
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240201000000[0:GMT]
<DTEND>20240229000000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240203223000[0:GMT]
<TRNAMT>-38.00
<FITID>D-1
<NAME>PIZZA PALACE
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240210231000[0:GMT]
<TRNAMT>-41.50
<FITID>D-2
<NAME>PIZZA PALACE
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240212090000[0:GMT]
<TRNAMT>-55.00
<FITID>D-3
<NAME>FUEL STOP
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-134.50
<DTASOF>20240229000000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

type harness struct {
	dir string
	db  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	return &harness{dir: dir, db: filepath.Join(dir, "sense.db")}
}

func (h *harness) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--db", h.db, "--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	h := newHarness(t)
	out, err := h.run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "sense dev\n", out)
}

func TestCategoriesCmd(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "categories", "-o", "json")
	require.NoError(t, err)

	var infos []model.CategoryInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	assert.Len(t, infos, len(model.AllowedCategoryNames()))
	assert.Equal(t, model.NatureFixed, infos[0].Nature)

	summary, err := h.run(t, "categories")
	require.NoError(t, err)
	assert.Contains(t, summary, "subscriptions")

	_, err = h.run(t, "categories", "-o", "xml")
	assert.ErrorIs(t, err, common.ErrInvalidRequest)
}

func TestDetectCmd(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "detect", "-c", "dining out",
		"--frequency", "6", "--consistency", "0.8", "--weeks", "12", "--weekend", "0.7", "--night", "0.6",
		"-o", "json")
	require.NoError(t, err)

	var habit model.HabitDetection
	require.NoError(t, json.Unmarshal([]byte(out), &habit))
	assert.True(t, habit.Detected)
	assert.Equal(t, model.IntensityHigh, habit.Intensity)
	assert.True(t, habit.Diagnostics.Degraded)

	_, err = h.run(t, "detect", "-c", "crypto")
	assert.ErrorIs(t, err, common.ErrUnknownCategory)

	_, err = h.run(t, "detect")
	assert.Error(t, err)
}

func TestConflictsCmd(t *testing.T) {
	h := newHarness(t)
	path := h.write(t, "request.yaml", requestYAML)

	out, err := h.run(t, "conflicts", "-f", path, "-o", "json")
	require.NoError(t, err)

	var results []model.ConflictResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.True(t, results[0].ConflictDetected)
}

func TestEvaluateAndHistory(t *testing.T) {
	h := newHarness(t)
	path := h.write(t, "request.yaml", requestYAML)

	out, err := h.run(t, "evaluate", "-f", path, "-o", "json", "--save")
	require.NoError(t, err)

	var report struct {
		Category        string                 `json:"category"`
		Recommendations []model.Recommendation `json:"ranked_recommendations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "dining out", report.Category)
	assert.Len(t, report.Recommendations, 3)

	listed, err := h.run(t, "history", "list", "-o", "json")
	require.NoError(t, err)
	var evals []storage.Evaluation
	require.NoError(t, json.Unmarshal([]byte(listed), &evals))
	require.Len(t, evals, 1)
	assert.Equal(t, "dining out", evals[0].Category)
	assert.True(t, evals[0].HabitDetected)

	shown, err := h.run(t, "history", "show", evals[0].ID)
	require.NoError(t, err)
	assert.Contains(t, shown, "Spending evaluation: dining out")

	_, err = h.run(t, "history", "show", "missing-id")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestEvaluateCmd_Errors(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "evaluate")
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	bad := h.write(t, "bad.yaml", "category: rent\nconsistency: 2\n")
	_, err = h.run(t, "evaluate", "-f", bad)
	assert.ErrorIs(t, err, common.ErrInvalidFeatures)
}

func TestEvaluateCmd_WritesMetrics(t *testing.T) {
	h := newHarness(t)
	path := h.write(t, "request.yaml", requestYAML)
	metricsPath := filepath.Join(h.dir, "sense.prom")

	_, err := h.run(t, "--metrics-file", metricsPath, "evaluate", "-f", path)
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sense_evaluations_total")
	assert.Contains(t, string(data), `category="dining out"`)
}

func TestBatchCmd(t *testing.T) {
	h := newHarness(t)
	path := h.write(t, "batch.yaml", batchYAML)

	out, err := h.run(t, "batch", "-f", path, "-o", "json", "--save")
	require.NoError(t, err)

	var summary batchSummaryJSON
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Results, 3)
	assert.Contains(t, summary.Results[1].Error, "unsupported category")

	listed, err := h.run(t, "history", "list", "-o", "json")
	require.NoError(t, err)
	var evals []storage.Evaluation
	require.NoError(t, json.Unmarshal([]byte(listed), &evals))
	assert.Len(t, evals, 2)
}

func TestImportOFXCmd(t *testing.T) {
	h := newHarness(t)
	statement := h.write(t, "card.ofx", diningOFX)
	goals := h.write(t, "goals.yaml", "monthly_savings_capacity: 300\nactive_goals:\n  - goal_name: Trip\n    target_amount: 2000\n    timeline_months: 6\n")

	out, err := h.run(t, "import-ofx", statement, "-c", "dining out", "-m", "(?i)pizza", "--goals", goals, "-o", "json")
	require.NoError(t, err)

	var result struct {
		Derivation struct {
			Features     model.BehaviorFeatures `json:"features"`
			Transactions int                    `json:"transactions"`
		} `json:"derivation"`
		Report struct {
			Category string               `json:"category"`
			Conflict model.ConflictResult `json:"goal_conflict"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 2, result.Derivation.Transactions)
	assert.InDelta(t, 1.0, result.Derivation.Features.NightRatio, 1e-9)
	assert.Equal(t, "dining out", result.Report.Category)
	require.Len(t, result.Report.Conflict.GoalConflicts, 1)
	assert.Equal(t, "Trip", result.Report.Conflict.GoalConflicts[0].GoalName)

	_, err = h.run(t, "import-ofx", filepath.Join(h.dir, "none-*.ofx"), "-c", "dining out")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = h.run(t, "import-ofx", statement, "-c", "dining out", "-m", "(")
	assert.ErrorIs(t, err, common.ErrInvalidRequest)
}

func TestLatest(t *testing.T) {
	assert.Equal(t, model.CurrentTransaction{}, latest(nil))
}

func TestHistoryListCmd_SeededDatabase(t *testing.T) {
	h := newHarness(t)
	now := time.Now()
	testutil.SeedFile(t, h.db,
		testutil.SampleEvaluation("travel", now.Add(-2*time.Hour)),
		testutil.SampleEvaluation("shopping", now.Add(-time.Hour)),
		testutil.SampleEvaluation("dining out", now),
	)

	listed, err := h.run(t, "history", "list", "-n", "2", "-o", "json")
	require.NoError(t, err)

	var evals []storage.Evaluation
	require.NoError(t, json.Unmarshal([]byte(listed), &evals))
	require.Len(t, evals, 2)
	assert.Equal(t, "dining out", evals[0].Category)
	assert.Equal(t, "shopping", evals[1].Category)

	out, err := h.run(t, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "travel")
}
