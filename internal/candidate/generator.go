// Package candidate expands a detected habit into scored intervention candidates.
package candidate

import (
	"log/slog"
	"math"

	"github.com/Veraticus/spend-sense/internal/common"
	"github.com/Veraticus/spend-sense/internal/config"
	"github.com/Veraticus/spend-sense/internal/inference"
	"github.com/Veraticus/spend-sense/internal/model"
)

// Mode tells which generation path produced a result.
type Mode string

// Generation paths.
const (
	ModeTemplates  Mode = "templates"
	ModeFixed      Mode = "fixed"
	ModeLightTouch Mode = "light_touch"
)

// SuitabilityFeatureColumns names the suitability classifier inputs in order.
var SuitabilityFeatureColumns = []string{"habit_confidence", "frequency", "spend", "effort", "cost_impact"}

// Result is the generator output. Candidates is never empty.
type Result struct {
	Mode        Mode              `json:"mode"`
	Candidates  []model.Candidate `json:"candidates"`
	Diagnostics model.Diagnostics `json:"diagnostics"`
}

// Generator implements the candidate generator.
type Generator struct {
	suitability inference.Handle
	templates   *inference.TemplateRanker
	tuning      config.CandidateTuning
}

// NewGenerator creates a generator. A nil template ranker uses the default
// template phrases.
func NewGenerator(suitability inference.Handle, templates *inference.TemplateRanker, tuning config.CandidateTuning) *Generator {
	if templates == nil {
		templates = inference.NewDefaultTemplateRanker()
	}
	return &Generator{
		suitability: suitability,
		templates:   templates,
		tuning:      tuning,
	}
}

// Generate produces candidates for a profile. Fixed categories and undetected
// habits each yield exactly one bypass candidate.
func (g *Generator) Generate(habit model.HabitDetection, profile model.BehaviorProfile, topK int) Result {
	if profile.Nature == model.NatureFixed {
		return Result{
			Mode: ModeFixed,
			Candidates: []model.Candidate{{
				Recommendation: FixedRecommendation,
				TemplateKey:    model.TemplateStability,
				BaseScore:      g.tuning.FixedBaseScore,
			}},
		}
	}

	if !habit.Detected {
		return Result{
			Mode: ModeLightTouch,
			Candidates: []model.Candidate{{
				Recommendation: LightTouch(profile),
				TemplateKey:    model.TemplateLightTouch,
				BaseScore:      g.tuning.FallbackBaseScore,
			}},
		}
	}

	ranked := g.templates.Rank(habit.Category, max(topK, 1)+g.tuning.ExtraTemplates)
	multiplier := profile.Intensity.Multiplier()

	var (
		candidates = make([]model.Candidate, 0, 2*len(ranked))
		inferErr   error
	)
	for _, tmpl := range ranked {
		similarity := common.Clamp01(tmpl.Similarity)
		effort := Effort(tmpl.Key)
		costImpact := math.Min(1, (0.45+similarity)*multiplier)
		boost := Boost(tmpl.Key, profile)

		for _, suggestion := range Library[tmpl.Key] {
			suitability, err := g.suitabilityScore(profile, effort, costImpact)
			if err != nil && inferErr == nil {
				inferErr = err
				slog.Debug("Suitability inference failed, using heuristic",
					"category", profile.Category,
					"error", err)
			}
			base := g.tuning.SuitabilityWeight*suitability + g.tuning.SimilarityWeight*similarity + boost

			candidates = append(candidates, model.Candidate{
				Recommendation: suggestion,
				TemplateKey:    tmpl.Key,
				BaseScore:      common.Clamp01(base),
				Similarity:     common.Round(similarity, 4),
				Suitability:    common.Round(suitability, 4),
			})
		}
	}

	if len(candidates) == 0 {
		// Only reachable with a ranker fitted on templates missing from Library.
		return Result{
			Mode: ModeLightTouch,
			Candidates: []model.Candidate{{
				Recommendation: LightTouch(profile),
				TemplateKey:    model.TemplateLightTouch,
				BaseScore:      g.tuning.FallbackBaseScore,
			}},
			Diagnostics: g.diagnostics(inferErr),
		}
	}

	return Result{
		Mode:        ModeTemplates,
		Candidates:  candidates,
		Diagnostics: g.diagnostics(inferErr),
	}
}

// BaseRisk estimates how risky the current behavior is from the profile alone.
func BaseRisk(profile model.BehaviorProfile) float64 {
	return math.Min(1, 0.5*common.Clamp01(profile.Confidence)+0.3*(profile.Frequency/7)+0.2*(profile.Spend/1000))
}

// HeuristicSuitability is used when no suitability classifier is available.
func HeuristicSuitability(baseRisk, effort, costImpact float64) float64 {
	return common.Clamp01(0.55*baseRisk + 0.35*costImpact - 0.3*effort)
}

func (g *Generator) suitabilityScore(profile model.BehaviorProfile, effort, costImpact float64) (float64, error) {
	risk := BaseRisk(profile)
	if g.suitability.Available() {
		p, err := g.suitability.Classifier.PredictProba([]float64{risk, profile.Frequency, profile.Spend, effort, costImpact})
		if err == nil {
			return common.Clamp01(p), nil
		}
		return HeuristicSuitability(risk, effort, costImpact), err
	}
	return HeuristicSuitability(risk, effort, costImpact), nil
}

func (g *Generator) diagnostics(inferErr error) model.Diagnostics {
	diag := model.Diagnostics{ModelLoaded: g.suitability.Available()}
	switch {
	case !g.suitability.Available():
		diag.Degraded = true
		diag.Reason = g.suitability.Status.Reason
		if diag.Reason == "" {
			diag.Reason = "suitability model unavailable"
		}
	case inferErr != nil:
		diag.Degraded = true
		diag.Reason = "suitability model inference failed: " + inferErr.Error()
	}
	return diag
}
