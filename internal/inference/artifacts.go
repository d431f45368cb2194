package inference

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/Veraticus/spend-sense/internal/common"
)

// Status describes the outcome of loading one artifact.
type Status struct {
	Name   string `json:"name"`
	Path   string `json:"path,omitempty"`
	Reason string `json:"reason,omitempty"`
	Loaded bool   `json:"loaded"`
}

// Handle is a possibly-absent classifier together with its load status.
type Handle struct {
	Classifier Classifier
	Status     Status
}

// Available reports whether the handle carries a usable classifier.
func (h Handle) Available() bool {
	return h.Classifier != nil && h.Status.Loaded
}

// NewHandle wraps an already constructed classifier, typically in tests.
func NewHandle(name string, c Classifier) Handle {
	if c == nil {
		return Unavailable(name, "no classifier supplied")
	}
	return Handle{Classifier: c, Status: Status{Name: name, Loaded: true}}
}

// Unavailable returns a handle that always routes callers to their heuristic path.
func Unavailable(name, reason string) Handle {
	return Handle{Status: Status{Name: name, Reason: reason}}
}

// OpenClassifier loads a logistic model artifact. It never fails: a missing or
// invalid artifact yields an unavailable handle whose status carries the reason.
func OpenClassifier(name, path string) Handle {
	path = strings.TrimSpace(path)
	if path == "" {
		return Unavailable(name, "no artifact configured")
	}

	model, err := LoadLogisticModel(path)
	if err != nil {
		reason := err.Error()
		if errors.Is(err, common.ErrArtifactUnavailable) {
			reason = "artifact not found"
		}
		slog.Warn("Model artifact unavailable, using heuristic fallback",
			"model", name,
			"path", path,
			"error", err)
		h := Unavailable(name, reason)
		h.Status.Path = path
		return h
	}

	slog.Debug("Loaded model artifact", "model", name, "path", path, "features", len(model.Coefficients))
	return Handle{
		Classifier: model,
		Status:     Status{Name: name, Path: path, Loaded: true},
	}
}

// Artifacts bundles every model handle the pipeline consumes.
type Artifacts struct {
	Habit       Handle
	Suitability Handle
	Templates   *TemplateRanker
}

// Paths locates the artifacts on disk.
type Paths struct {
	Habit       string
	Suitability string
}

// Load opens every artifact once. Missing artifacts degrade, they do not fail.
func Load(paths Paths) *Artifacts {
	return &Artifacts{
		Habit:       OpenClassifier("habit", paths.Habit),
		Suitability: OpenClassifier("suitability", paths.Suitability),
		Templates:   NewDefaultTemplateRanker(),
	}
}

// Statuses lists the load status of each classifier artifact.
func (a *Artifacts) Statuses() []Status {
	return []Status{a.Habit.Status, a.Suitability.Status}
}
