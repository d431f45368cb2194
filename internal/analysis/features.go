package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/Veraticus/spend-sense/internal/common"
	"github.com/Veraticus/spend-sense/internal/model"
	"gonum.org/v1/gonum/stat"
)

// StabilityLevel buckets the stability score.
type StabilityLevel string

// Stability levels.
const (
	StabilityStable   StabilityLevel = "stable"
	StabilityModerate StabilityLevel = "moderate"
	StabilityUnstable StabilityLevel = "unstable"
)

// Stability summarizes week-to-week variation of spending.
type Stability struct {
	Level                  StabilityLevel `json:"level"`
	CoefficientOfVariation float64        `json:"coefficient_of_variation"`
	Score                  float64        `json:"score"`
}

// Derivation is the result of turning a statement history into features.
type Derivation struct {
	Start        time.Time              `json:"start"`
	End          time.Time              `json:"end"`
	Stability    Stability              `json:"stability"`
	Features     model.BehaviorFeatures `json:"features"`
	Transactions int                    `json:"transactions"`
	WeeksSpanned int                    `json:"weeks_spanned"`
}

type weekKey struct {
	year int
	week int
}

// DeriveFeatures summarizes the transactions of one category. Amounts are
// taken as absolute values so statement debits and credits are treated
// alike. An empty history yields zero features.
func DeriveFeatures(txns []model.Transaction) Derivation {
	if len(txns) == 0 {
		return Derivation{Stability: Stability{Level: StabilityStable, Score: 100}}
	}

	sorted := make([]model.Transaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	start, end := sorted[0].Date, sorted[len(sorted)-1].Date
	days := int(end.Sub(start).Hours()/24) + 1
	weeksSpanned := max(int(math.Ceil(float64(days)/7)), 1)

	weekly := make(map[weekKey]float64)
	monthly := make(map[string]float64)
	var weekend, night int
	for i := range sorted {
		tx := &sorted[i]
		amount := math.Abs(tx.Amount)

		year, week := tx.Date.ISOWeek()
		weekly[weekKey{year, week}] += amount
		monthly[tx.Date.Format("2006-01")] += amount

		if tx.IsWeekend() {
			weekend++
		}
		if tx.IsNight() {
			night++
		}
	}

	weeksActive := len(weekly)
	count := float64(len(sorted))

	features := model.BehaviorFeatures{
		AvgWeeklyFrequency: int(math.Round(count / float64(weeksSpanned))),
		Consistency:        common.Round(common.Clamp01(float64(weeksActive)/float64(weeksSpanned)), 3),
		AverageSpend:       common.Round(stat.Mean(values(monthly), nil), 2),
		WeeksActive:        weeksActive,
		WeekendRatio:       common.Round(float64(weekend)/count, 3),
		NightRatio:         common.Round(float64(night)/count, 3),
	}

	return Derivation{
		Features:     features,
		Stability:    stabilityOf(values(weekly)),
		Transactions: len(sorted),
		WeeksSpanned: weeksSpanned,
		Start:        start,
		End:          end,
	}
}

func stabilityOf(totals []float64) Stability {
	cv := 0.0
	if len(totals) > 1 {
		mean, std := stat.MeanStdDev(totals, nil)
		if mean > 0 {
			cv = std / mean * 100
		}
	}
	score := math.Max(0, 100-cv)

	level := StabilityUnstable
	switch {
	case score >= 70:
		level = StabilityStable
	case score >= 40:
		level = StabilityModerate
	}

	return Stability{
		CoefficientOfVariation: common.Round(cv, 2),
		Score:                  common.Round(score, 1),
		Level:                  level,
	}
}

// values returns the map values sorted, so summation order is deterministic.
func values[K comparable](m map[K]float64) []float64 {
	out := make([]float64, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}
