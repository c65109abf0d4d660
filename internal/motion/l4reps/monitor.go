package l4reps

import (
	"errors"
	"fmt"

	"github.com/banshee-data/motion.report/internal/config"
	"github.com/banshee-data/motion.report/internal/motion/l2angles"
	"github.com/banshee-data/motion.report/internal/motion/l3signal"
)

// ErrNothingToCalibrate is returned by Calibrate before any metric has
// produced a defined value.
var ErrNothingToCalibrate = errors.New("no defined posture metrics to calibrate from")

// PostureMonitor smooths posture metrics and evaluates rules against a
// calibration baseline.
type PostureMonitor struct {
	rules    []Rule
	channels map[l2angles.Metric]*l3signal.Channel
	baseline map[l2angles.Metric]float64
}

// NewPostureMonitor creates a monitor for rules. Every metric is
// smoothed so any metric can be calibrated.
func NewPostureMonitor(sig l3signal.Config, rules []Rule) (*PostureMonitor, error) {
	known := make(map[l2angles.Metric]bool, len(l2angles.Metrics))
	for _, m := range l2angles.Metrics {
		known[m] = true
	}
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if !known[r.Metric] {
			return nil, fmt.Errorf("rule %q: unknown metric %q", r.Name, r.Metric)
		}
	}

	m := &PostureMonitor{
		rules:    append([]Rule(nil), rules...),
		channels: make(map[l2angles.Metric]*l3signal.Channel, len(l2angles.Metrics)),
	}
	for _, metric := range l2angles.Metrics {
		ch, err := l3signal.NewChannel(sig)
		if err != nil {
			return nil, err
		}
		m.channels[metric] = ch
	}
	return m, nil
}

// NewDefaultPostureMonitor uses DefaultRules with the tuned tolerance.
func NewDefaultPostureMonitor(cfg *config.TuningConfig) (*PostureMonitor, error) {
	return NewPostureMonitor(l3signal.ConfigFromTuning(cfg), DefaultRules(cfg.GetPostureTolerance()))
}

// Update feeds one frame of posture metrics.
func (m *PostureMonitor) Update(metrics l2angles.PostureMetrics, tsNanos int64) {
	for metric, ch := range m.channels {
		ch.Push(metrics.Get(metric), tsNanos)
	}
}

// Smoothed returns the current smoothed value of a metric.
func (m *PostureMonitor) Smoothed(metric l2angles.Metric) l2angles.Angle {
	ch, ok := m.channels[metric]
	if !ok {
		return l2angles.Undefined
	}
	return ch.Smoothed()
}

// Calibrate stores the latest defined smoothed value of every metric as
// its baseline, replacing any previous calibration. It returns the number
// of metrics calibrated.
func (m *PostureMonitor) Calibrate() (int, error) {
	baseline := make(map[l2angles.Metric]float64)
	for metric, ch := range m.channels {
		if a := ch.Held(); a.Valid {
			baseline[metric] = a.Degrees
		}
	}
	if len(baseline) == 0 {
		opsf("calibration requested before any posture metric was defined")
		return 0, ErrNothingToCalibrate
	}
	m.baseline = baseline
	diagf("calibrated %d posture metrics", len(baseline))
	return len(baseline), nil
}

// Calibrated reports whether a baseline is stored.
func (m *PostureMonitor) Calibrated() bool {
	return m.baseline != nil
}

// Baseline returns a copy of the stored baseline.
func (m *PostureMonitor) Baseline() map[l2angles.Metric]float64 {
	out := make(map[l2angles.Metric]float64, len(m.baseline))
	for k, v := range m.baseline {
		out[k] = v
	}
	return out
}

// Evaluate applies every rule to the current smoothed metrics.
func (m *PostureMonitor) Evaluate() []RuleResult {
	out := make([]RuleResult, 0, len(m.rules))
	for _, r := range m.rules {
		base, ok := m.baseline[r.Metric]
		out = append(out, r.Evaluate(m.Smoothed(r.Metric), base, ok))
	}
	return out
}

// Reset clears smoothing state and the baseline.
func (m *PostureMonitor) Reset() {
	for _, ch := range m.channels {
		ch.Reset()
	}
	m.baseline = nil
}
