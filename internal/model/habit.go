package model

// HabitIntensity is the discrete strength of a detected habit.
type HabitIntensity string

const (
	// IntensityLow is assigned below a blended score of 0.5.
	IntensityLow HabitIntensity = "Low"
	// IntensityMedium is assigned from 0.5.
	IntensityMedium HabitIntensity = "Medium"
	// IntensityHigh is assigned from 0.75.
	IntensityHigh HabitIntensity = "High"
)

// Score maps the intensity onto [0,1] for downstream pressure formulas.
// Unknown values score as Low.
func (i HabitIntensity) Score() float64 {
	switch i {
	case IntensityHigh:
		return 0.9
	case IntensityMedium:
		return 0.6
	default:
		return 0.3
	}
}

// Multiplier scales template cost impact by intensity.
func (i HabitIntensity) Multiplier() float64 {
	switch i {
	case IntensityHigh:
		return 1.15
	case IntensityLow:
		return 0.9
	default:
		return 1.0
	}
}

// HabitScores holds the two raw signals that feed the blended confidence.
type HabitScores struct {
	MLScore   float64 `json:"ml_score"`
	RuleScore float64 `json:"rule_score"`
}

// Diagnostics reports whether a component ran on a trained model or its heuristic fallback.
type Diagnostics struct {
	Reason      string `json:"reason,omitempty"`
	ModelLoaded bool   `json:"model_loaded"`
	Degraded    bool   `json:"degraded"`
}

// HabitDetection is the output of the habit signal detector.
type HabitDetection struct {
	Category    string         `json:"habit_category"`
	Intensity   HabitIntensity `json:"habit_intensity"`
	Diagnostics Diagnostics    `json:"diagnostics"`
	Scores      HabitScores    `json:"scores"`
	Confidence  float64        `json:"confidence"`
	Detected    bool           `json:"habit_detected"`
}
