package l4reps

import (
	"fmt"
	"time"
)

// State is the position of the rep counter within the hysteresis band.
type State string

const (
	StateUp   State = "up"   // signal last crossed above the high threshold
	StateDown State = "down" // signal last crossed below the low threshold
)

// CounterConfig configures a Counter.
type CounterConfig struct {
	Low      float64       // DOWN is entered below this value
	High     float64       // UP is entered above this value
	Rest     State         // starting state; returning to it completes a rep
	MinDwell time.Duration // minimum time between transitions, 0 disables
}

// Validate checks the band and rest state.
func (c CounterConfig) Validate() error {
	if c.Low >= c.High {
		return fmt.Errorf("low threshold %.1f must be below high threshold %.1f", c.Low, c.High)
	}
	if c.Rest != StateUp && c.Rest != StateDown {
		return fmt.Errorf("rest state must be %q or %q, got %q", StateUp, StateDown, c.Rest)
	}
	if c.MinDwell < 0 {
		return fmt.Errorf("min dwell must be non-negative, got %v", c.MinDwell)
	}
	return nil
}

// CounterState is the observable state of a Counter.
type CounterState struct {
	State               State `json:"state"`
	Count               int   `json:"count"`
	LastTransitionNanos int64 `json:"last_transition_nanos"` // 0 until the first transition
}

// Counter is a two-state hysteresis repetition counter. Values inside
// the band [Low, High] never change state, so noise around a single
// threshold cannot produce extra reps. One rest -> away -> rest cycle
// increments Count exactly once.
type Counter struct {
	cfg   CounterConfig
	state CounterState
	moved bool
}

// NewCounter creates a Counter in its rest state.
func NewCounter(cfg CounterConfig) (*Counter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Counter{cfg: cfg, state: CounterState{State: cfg.Rest}}, nil
}

// Update feeds one value and reports whether it completed a repetition.
func (c *Counter) Update(v float64, tsNanos int64) bool {
	var next State
	switch c.state.State {
	case StateUp:
		if v >= c.cfg.Low {
			return false
		}
		next = StateDown
	case StateDown:
		if v <= c.cfg.High {
			return false
		}
		next = StateUp
	}

	if c.moved && c.cfg.MinDwell > 0 &&
		time.Duration(tsNanos-c.state.LastTransitionNanos) < c.cfg.MinDwell {
		tracef("transition %s->%s suppressed by dwell at value=%.1f", c.state.State, next, v)
		return false
	}

	tracef("transition %s->%s at value=%.1f", c.state.State, next, v)
	c.state.State = next
	c.state.LastTransitionNanos = tsNanos
	c.moved = true

	if next == c.cfg.Rest {
		c.state.Count++
		return true
	}
	return false
}

// State returns a copy of the counter state.
func (c *Counter) State() CounterState {
	return c.state
}

// Count returns the number of completed repetitions.
func (c *Counter) Count() int {
	return c.state.Count
}

// Reset returns the counter to its rest state with a zero count.
func (c *Counter) Reset() {
	c.state = CounterState{State: c.cfg.Rest}
	c.moved = false
}
