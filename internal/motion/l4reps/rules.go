package l4reps

import (
	"fmt"
	"math"

	"github.com/banshee-data/motion.report/internal/motion/l2angles"
)

// Comparator selects how a rule compares a value to its threshold.
type Comparator string

const (
	AtMost  Comparator = "le"     // value <= threshold + tolerance
	AtLeast Comparator = "ge"     // value >= threshold - tolerance
	Within  Comparator = "within" // |value - threshold| <= tolerance
)

// Rule is a posture rule on one metric.
type Rule struct {
	Name       string          `json:"name"`
	Metric     l2angles.Metric `json:"metric"`
	Comparator Comparator      `json:"comparator"`
	Threshold  float64         `json:"threshold"`
	Tolerance  float64         `json:"tolerance"`
	Message    string          `json:"message,omitempty"`
}

// Validate checks the comparator and tolerance.
func (r Rule) Validate() error {
	switch r.Comparator {
	case AtMost, AtLeast, Within:
	default:
		return fmt.Errorf("rule %q: unknown comparator %q", r.Name, r.Comparator)
	}
	if r.Tolerance < 0 {
		return fmt.Errorf("rule %q: tolerance must be non-negative", r.Name)
	}
	return nil
}

// RuleResult is the outcome of evaluating a Rule.
type RuleResult struct {
	Rule      string          `json:"rule"`
	Metric    l2angles.Metric `json:"metric"`
	Defined   bool            `json:"defined"`
	Pass      bool            `json:"pass"`
	Value     float64         `json:"value"`     // metric relative to baseline
	Deviation float64         `json:"deviation"` // Value - Threshold, signed
	Message   string          `json:"message,omitempty"`
}

// Evaluate applies r to a smoothed metric value. When hasBaseline is set
// the value is taken relative to baseline. An undefined value fails with
// Defined=false.
func (r Rule) Evaluate(v l2angles.Angle, baseline float64, hasBaseline bool) RuleResult {
	res := RuleResult{Rule: r.Name, Metric: r.Metric}
	if !v.Valid {
		return res
	}

	value := v.Degrees
	if hasBaseline {
		value -= baseline
	}

	res.Defined = true
	res.Value = value
	res.Deviation = value - r.Threshold

	switch r.Comparator {
	case AtMost:
		res.Pass = value <= r.Threshold+r.Tolerance
	case AtLeast:
		res.Pass = value >= r.Threshold-r.Tolerance
	case Within:
		res.Pass = math.Abs(res.Deviation) <= r.Tolerance
	}
	if !res.Pass {
		res.Message = r.Message
	}
	return res
}

// DefaultRules is the standard posture rule set. Thresholds are relative
// to the calibration baseline, or to an ideal upright pose without one.
func DefaultRules(tolerance float64) []Rule {
	return []Rule{
		{Name: "neck_forward", Metric: l2angles.NeckAngle, Comparator: AtMost, Threshold: 0, Tolerance: tolerance, Message: "Neck leaning forward"},
		{Name: "shoulders_level", Metric: l2angles.ShoulderTilt, Comparator: Within, Threshold: 0, Tolerance: tolerance, Message: "Shoulders uneven"},
		{Name: "back_straight", Metric: l2angles.SpineCurve, Comparator: AtMost, Threshold: 0, Tolerance: tolerance, Message: "Back not straight"},
		{Name: "body_lean", Metric: l2angles.BodyLean, Comparator: Within, Threshold: 0, Tolerance: tolerance, Message: "Leaning to one side"},
	}
}
