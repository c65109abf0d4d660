package l3signal

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/motion.report/internal/config"
)

// Smoother is a causal filter over a scalar signal.
type Smoother interface {
	// Update consumes v and returns the smoothed value including v.
	Update(v float64) float64
	// Value returns the last smoothed value, if any input has been seen.
	Value() (float64, bool)
	// Reset discards all state.
	Reset()
}

// SmootherConfig selects and parameterises a smoother.
type SmootherConfig struct {
	Method string  // config.SmoothingMovingAverage or config.SmoothingExponential
	Window int     // moving average length
	Alpha  float64 // exponential weight of the newest sample
}

// SmootherConfigFromTuning builds a SmootherConfig from tuning.
func SmootherConfigFromTuning(cfg *config.TuningConfig) SmootherConfig {
	return SmootherConfig{
		Method: cfg.GetSmoothingMethod(),
		Window: cfg.GetSmoothingWindow(),
		Alpha:  cfg.GetSmoothingAlpha(),
	}
}

// NewSmoother constructs the configured smoother.
func NewSmoother(cfg SmootherConfig) (Smoother, error) {
	switch cfg.Method {
	case config.SmoothingMovingAverage, "":
		if cfg.Window < 1 {
			return nil, fmt.Errorf("moving average window must be >= 1, got %d", cfg.Window)
		}
		return NewMovingAverage(cfg.Window), nil
	case config.SmoothingExponential:
		if cfg.Alpha <= 0 || cfg.Alpha > 1 {
			return nil, fmt.Errorf("exponential alpha must be in (0, 1], got %f", cfg.Alpha)
		}
		return NewExponential(cfg.Alpha), nil
	default:
		return nil, fmt.Errorf("unknown smoothing method %q", cfg.Method)
	}
}

// MovingAverage is the mean of the last N samples. Until N samples have
// arrived it averages what it has.
type MovingAverage struct {
	window []float64
	next   int
	n      int
	value  float64
}

// NewMovingAverage creates a moving average of length n.
func NewMovingAverage(n int) *MovingAverage {
	if n < 1 {
		n = 1
	}
	return &MovingAverage{window: make([]float64, n)}
}

func (m *MovingAverage) Update(v float64) float64 {
	m.window[m.next] = v
	m.next = (m.next + 1) % len(m.window)
	if m.n < len(m.window) {
		m.n++
	}
	// Order within the window does not affect the mean.
	m.value = stat.Mean(m.window[:m.n], nil)
	return m.value
}

func (m *MovingAverage) Value() (float64, bool) {
	return m.value, m.n > 0
}

func (m *MovingAverage) Reset() {
	m.next = 0
	m.n = 0
	m.value = 0
}

// Exponential is s = alpha*v + (1-alpha)*s, seeded by the first sample.
type Exponential struct {
	alpha  float64
	value  float64
	primed bool
}

// NewExponential creates an exponential smoother.
func NewExponential(alpha float64) *Exponential {
	return &Exponential{alpha: alpha}
}

func (e *Exponential) Update(v float64) float64 {
	if !e.primed {
		e.value = v
		e.primed = true
		return v
	}
	e.value = e.alpha*v + (1-e.alpha)*e.value
	return e.value
}

func (e *Exponential) Value() (float64, bool) {
	return e.value, e.primed
}

func (e *Exponential) Reset() {
	e.value = 0
	e.primed = false
}
