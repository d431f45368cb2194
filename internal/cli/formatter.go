package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/spend-sense/internal/analysis"
	"github.com/Veraticus/spend-sense/internal/engine"
	"github.com/Veraticus/spend-sense/internal/guidance"
	"github.com/Veraticus/spend-sense/internal/model"
	"github.com/Veraticus/spend-sense/internal/storage"
)

const barWidth = 24

// Formatter renders pipeline results for the terminal.
type Formatter struct{}

// NewFormatter creates a new terminal formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Report renders a full evaluation.
func (f *Formatter) Report(r *engine.Report) string {
	if r == nil {
		return ErrorStyle.Render("No report available")
	}

	sections := []string{
		FormatTitle(fmt.Sprintf("Spending evaluation: %s (%s)", r.Category, r.Nature)),
		SubtleStyle.Render(r.UnifiedSummary),
		f.Habit(r.Habit),
	}
	if len(r.TransactionAlerts) > 0 {
		sections = append(sections, f.alerts(r.TransactionAlerts))
	}
	sections = append(sections,
		f.Conflict(r.Conflict),
		f.Recommendations(r.Recommendations),
		f.Guidance(r.Guidance),
	)
	if r.Diagnostics.Degraded() {
		sections = append(sections, FormatWarning(fmt.Sprintf(
			"Heuristic fallback in use (habit: %s, suitability: %s)",
			reasonOrOK(r.Diagnostics.Habit), reasonOrOK(r.Diagnostics.Suitability))))
	}

	return strings.Join(sections, "\n\n")
}

// Habit renders a habit detection.
func (f *Formatter) Habit(h model.HabitDetection) string {
	status := SubtleStyle.Render("no habit detected")
	if h.Detected {
		status = HighStyle.Render(fmt.Sprintf("%s intensity habit", h.Intensity))
	}

	lines := []string{
		SubtitleStyle.Render("Habit"),
		fmt.Sprintf("%s: %s", BoldStyle.Render(h.Category), status),
		fmt.Sprintf("Confidence %s %.0f%%", scoreBar(h.Confidence), h.Confidence*100),
		SubtleStyle.Render(fmt.Sprintf("model %.3f · rules %.3f", h.Scores.MLScore, h.Scores.RuleScore)),
	}
	return strings.Join(lines, "\n")
}

// Conflict renders the goal conflict assessment.
func (f *Formatter) Conflict(c model.ConflictResult) string {
	style := SeverityStyle(c.OverallSeverity)
	lines := []string{
		SubtitleStyle.Render(GoalIcon + " Goal conflict"),
		style.Render(fmt.Sprintf("%s (%.2f)", c.OverallSeverity, c.OverallConflictScore)),
		c.Explanation,
	}

	for _, gc := range c.GoalConflicts {
		lines = append(lines, fmt.Sprintf("  %s %-24s %s %s",
			SeverityStyle(gc.Severity).Render(fmt.Sprintf("%-8s", gc.Severity)),
			gc.GoalName,
			scoreBar(gc.ConflictScore),
			SubtleStyle.Render(fmt.Sprintf("needs %.2f/month", gc.MonthlyRequired))))
	}
	for _, a := range c.Alerts {
		lines = append(lines, FormatWarning(a.RecommendedAction))
	}
	return strings.Join(lines, "\n")
}

// Recommendations renders the ranked recommendations.
func (f *Formatter) Recommendations(recs []model.Recommendation) string {
	lines := []string{SubtitleStyle.Render(ChartIcon + " Recommendations")}
	if len(recs) == 0 {
		return strings.Join(append(lines, SubtleStyle.Render("Nothing to recommend.")), "\n")
	}

	for _, rec := range recs {
		lines = append(lines,
			fmt.Sprintf("%d. %s", rec.Rank, BoldStyle.Render(rec.Recommendation)),
			fmt.Sprintf("   %s %s %.1f%% · %s",
				TierStyle(rec.Tier).Render(fmt.Sprintf("%-8s", rec.Tier)),
				scoreBar(rec.Score),
				rec.ScorePct,
				rec.Difficulty),
			SubtleStyle.Render("   "+rec.Rationale),
		)
	}
	return strings.Join(lines, "\n")
}

// Guidance renders the month-level coaching.
func (f *Formatter) Guidance(g guidance.Guidance) string {
	lines := []string{
		g.PrimaryFocus.Message,
		g.MonthlyDirection,
	}
	for i, step := range g.Roadmap {
		lines = append(lines, fmt.Sprintf("%d) %s", i+1, step))
	}
	lines = append(lines,
		fmt.Sprintf("Alignment: %s (%.1f%%)", g.Alignment.Label, g.Alignment.ScorePct),
		fmt.Sprintf("Potential savings %.0f/month · %.1f%% of goal gap · %.1f months sooner",
			g.Impact.PotentialSavingsMonthly, g.Impact.GoalGapCoveredPct, g.Impact.TimelineReductionMonths),
	)
	return RenderBox("Guidance", strings.Join(lines, "\n"))
}

// Categories renders the supported categories grouped by nature.
func (f *Formatter) Categories(infos []model.CategoryInfo) string {
	lines := []string{FormatTitle("Supported categories")}
	var nature model.ExpenseNature
	for _, info := range infos {
		if info.Nature != nature {
			nature = info.Nature
			lines = append(lines, SubtitleStyle.Render(string(nature)))
		}
		lines = append(lines, "  "+string(info.Name))
	}
	return strings.Join(lines, "\n")
}

// Derivation renders features derived from imported transactions.
func (f *Formatter) Derivation(d analysis.Derivation) string {
	if d.Transactions == 0 {
		return FormatWarning("No matching transactions found.")
	}
	feat := d.Features
	lines := []string{
		fmt.Sprintf("%d transactions from %s to %s (%d weeks)",
			d.Transactions, d.Start.Format("Jan 2, 2006"), d.End.Format("Jan 2, 2006"), d.WeeksSpanned),
		fmt.Sprintf("Weekly frequency %d · consistency %.2f · active weeks %d",
			feat.AvgWeeklyFrequency, feat.Consistency, feat.WeeksActive),
		fmt.Sprintf("Average monthly spend %.2f · weekend %.0f%% · night %.0f%%",
			feat.AverageSpend, feat.WeekendRatio*100, feat.NightRatio*100),
		fmt.Sprintf("Stability: %s (score %.1f)", d.Stability.Level, d.Stability.Score),
	}
	return RenderBox("Derived behavior", strings.Join(lines, "\n"))
}

// History renders stored evaluations as a table.
func (f *Formatter) History(evals []storage.Evaluation) string {
	if len(evals) == 0 {
		return FormatInfo("No evaluations saved yet.")
	}

	header := fmt.Sprintf("%-36s  %-16s  %-18s  %-8s  %-6s", "ID", "When", "Category", "Severity", "Habit")
	lines := []string{
		SubtleStyle.Bold(true).Render(header),
		SubtleStyle.Render(strings.Repeat("─", len(header))),
	}
	for _, e := range evals {
		habit := "no"
		if e.HabitDetected {
			habit = "yes"
		}
		lines = append(lines, fmt.Sprintf("%-36s  %-16s  %-18s  %s  %-6s",
			e.ID,
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.Category,
			SeverityStyle(model.Severity(e.OverallSeverity)).Render(fmt.Sprintf("%-8s", e.OverallSeverity)),
			habit))
	}
	return strings.Join(lines, "\n")
}

// BatchSummary renders the outcome of a batch run.
func (f *Formatter) BatchSummary(s *engine.BatchSummary) string {
	if s == nil || s.Total == 0 {
		return FormatInfo("No requests to evaluate.")
	}

	lines := []string{
		FormatSuccess(fmt.Sprintf("%d of %d requests evaluated in %s", s.Succeeded, s.Total, s.ProcessingTime.Round(time.Millisecond))),
		fmt.Sprintf("Habits detected: %d · goal conflicts: %d · heuristic fallback: %d",
			s.HabitsDetected, s.Conflicts, s.Degraded),
	}
	for _, r := range s.Results {
		if r.Error != nil {
			lines = append(lines, FormatError(fmt.Sprintf("request %d: %v", r.Index+1, r.Error)))
			continue
		}
		top := guidance.DefaultStrategy
		if rec, ok := r.Report.TopRecommendation(); ok {
			top = rec.Recommendation
		}
		lines = append(lines, fmt.Sprintf("%3d. %-18s %s  %s",
			r.Index+1,
			r.Report.Category,
			SeverityStyle(r.Report.Conflict.OverallSeverity).Render(fmt.Sprintf("%-8s", r.Report.Conflict.OverallSeverity)),
			top))
	}
	return strings.Join(lines, "\n")
}

func (f *Formatter) alerts(alerts []string) string {
	lines := []string{SubtitleStyle.Render("Transaction")}
	for _, a := range alerts {
		lines = append(lines, FormatWarning(a))
	}
	return strings.Join(lines, "\n")
}

func reasonOrOK(d model.Diagnostics) string {
	if !d.Degraded {
		return "ok"
	}
	if d.Reason == "" {
		return "unavailable"
	}
	return d.Reason
}

// scoreBar draws a fixed-width bar for a value in [0,1].
func scoreBar(score float64) string {
	filled := int(float64(barWidth)*min(max(score, 0), 1) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}
