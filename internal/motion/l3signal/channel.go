package l3signal

import (
	"github.com/banshee-data/motion.report/internal/config"
	"github.com/banshee-data/motion.report/internal/motion/l2angles"
)

// Config holds per-channel signal parameters.
type Config struct {
	HistoryCapacity int
	Smoothing       SmootherConfig
}

// DefaultConfig returns the built-in signal parameters.
func DefaultConfig() Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// ConfigFromTuning builds a Config from tuning.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		HistoryCapacity: cfg.GetHistoryCapacity(),
		Smoothing:       SmootherConfigFromTuning(cfg),
	}
}

// Channel is the signal state of one tracked quantity: raw history,
// smoother and rolling statistics over the smoothed values. Not safe
// for concurrent use.
type Channel struct {
	history  *HistoryBuffer
	smoother Smoother
	stats    *RollingStats
	last     l2angles.Angle
}

// NewChannel creates a Channel.
func NewChannel(cfg Config) (*Channel, error) {
	s, err := NewSmoother(cfg.Smoothing)
	if err != nil {
		return nil, err
	}
	return &Channel{
		history:  NewHistoryBuffer(cfg.HistoryCapacity),
		smoother: s,
		stats:    NewRollingStats(cfg.HistoryCapacity),
	}, nil
}

// Push records a raw sample and returns the smoothed value. Undefined
// input is recorded in history but leaves the smoother and statistics
// untouched, and yields Undefined.
func (c *Channel) Push(a l2angles.Angle, tsNanos int64) l2angles.Angle {
	c.history.Push(Sample{Angle: a, TimestampNanos: tsNanos})
	if !a.Valid {
		c.last = l2angles.Undefined
		return c.last
	}
	v := c.smoother.Update(a.Degrees)
	c.stats.Add(v)
	c.last = l2angles.Defined(v)
	return c.last
}

// Smoothed returns the latest smoothed output, Undefined if the last
// sample was undefined.
func (c *Channel) Smoothed() l2angles.Angle {
	return c.last
}

// Held returns the most recent defined smoothed value, ignoring
// intervening undefined samples.
func (c *Channel) Held() l2angles.Angle {
	v, ok := c.smoother.Value()
	if !ok {
		return l2angles.Undefined
	}
	return l2angles.Defined(v)
}

// Stats returns rolling statistics over smoothed values.
func (c *Channel) Stats() (Stats, bool) {
	return c.stats.Snapshot()
}

// History exposes the raw sample buffer.
func (c *Channel) History() *HistoryBuffer {
	return c.history
}

// Reset clears all state.
func (c *Channel) Reset() {
	c.history.Clear()
	c.smoother.Reset()
	c.stats.Reset()
	c.last = l2angles.Undefined
}
