package l4reps

import (
	"fmt"
	"math"
	"time"

	"github.com/banshee-data/motion.report/internal/config"
	"github.com/banshee-data/motion.report/internal/motion/l2angles"
)

// Form check kinds.
const (
	CheckSymmetry = "symmetry"
	CheckRange    = "range"
)

// FormCheck is a technique check evaluated on every frame of an exercise.
type FormCheck struct {
	Kind    string
	Joint   l2angles.Joint
	Pair    l2angles.Joint // symmetry only
	MaxDiff float64        // symmetry only
	Min     *float64       // range only
	Max     *float64       // range only
	Message string
}

// FormIssue is a failed form check.
type FormIssue struct {
	Joint   l2angles.Joint `json:"joint"`
	Value   float64        `json:"value"`
	Message string         `json:"message"`
}

// Evaluate returns an issue when the check fails. Checks with undefined
// inputs are skipped.
func (f FormCheck) Evaluate(angles l2angles.AngleSet) (FormIssue, bool) {
	a := angles.Get(f.Joint)
	if !a.Valid {
		return FormIssue{}, false
	}

	switch f.Kind {
	case CheckSymmetry:
		b := angles.Get(f.Pair)
		if !b.Valid {
			return FormIssue{}, false
		}
		diff := math.Abs(a.Degrees - b.Degrees)
		if diff > f.MaxDiff {
			return FormIssue{Joint: f.Joint, Value: diff, Message: f.Message}, true
		}
	case CheckRange:
		if (f.Min != nil && a.Degrees < *f.Min) || (f.Max != nil && a.Degrees > *f.Max) {
			return FormIssue{Joint: f.Joint, Value: a.Degrees, Message: f.Message}, true
		}
	}
	return FormIssue{}, false
}

// Exercise is a resolved exercise table entry.
type Exercise struct {
	Name       string
	Joint      l2angles.Joint
	Counter    CounterConfig
	FormChecks []FormCheck
}

// ResolveExercise looks name up in the tuning exercise table.
func ResolveExercise(cfg *config.TuningConfig, name string) (Exercise, error) {
	spec, ok := cfg.GetExercises()[name]
	if !ok {
		return Exercise{}, fmt.Errorf("unknown exercise %q (known: %v)", name, cfg.ExerciseNames())
	}
	return ExerciseFromSpec(name, spec)
}

// ExerciseFromSpec converts a config entry, validating joint names.
func ExerciseFromSpec(name string, spec config.ExerciseSpec) (Exercise, error) {
	joint, ok := l2angles.ParseJoint(spec.Joint)
	if !ok {
		return Exercise{}, fmt.Errorf("exercise %q: unknown joint %q", name, spec.Joint)
	}

	var dwell time.Duration
	if spec.MinDwell != "" {
		d, err := time.ParseDuration(spec.MinDwell)
		if err != nil {
			return Exercise{}, fmt.Errorf("exercise %q: invalid min_dwell: %w", name, err)
		}
		dwell = d
	}

	ex := Exercise{
		Name:  name,
		Joint: joint,
		Counter: CounterConfig{
			Low:      spec.Low,
			High:     spec.High,
			Rest:     State(spec.Rest),
			MinDwell: dwell,
		},
	}
	if err := ex.Counter.Validate(); err != nil {
		return Exercise{}, fmt.Errorf("exercise %q: %w", name, err)
	}

	for i, fc := range spec.FormChecks {
		j, ok := l2angles.ParseJoint(fc.Joint)
		if !ok {
			return Exercise{}, fmt.Errorf("exercise %q: form check %d: unknown joint %q", name, i, fc.Joint)
		}
		check := FormCheck{Kind: fc.Kind, Joint: j, MaxDiff: fc.MaxDiff, Min: fc.Min, Max: fc.Max, Message: fc.Message}
		switch fc.Kind {
		case CheckSymmetry:
			p, ok := l2angles.ParseJoint(fc.Pair)
			if !ok {
				return Exercise{}, fmt.Errorf("exercise %q: form check %d: unknown pair %q", name, i, fc.Pair)
			}
			check.Pair = p
		case CheckRange:
		default:
			return Exercise{}, fmt.Errorf("exercise %q: form check %d: unknown kind %q", name, i, fc.Kind)
		}
		ex.FormChecks = append(ex.FormChecks, check)
	}
	return ex, nil
}
