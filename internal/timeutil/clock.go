// Package timeutil provides a testable wall clock and helpers for the
// Unix-nanosecond frame timestamps used throughout the motion layers.
package timeutil

import (
	"sync"
	"time"
)

// Clock provides an abstraction over wall-clock time for testability.
// Frame timing never comes from a Clock; frames carry their own timestamps.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Since returns the duration since t.
	Since(t time.Time) time.Duration
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Since returns the time elapsed since t.
func (RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// MockClock is a manually controlled clock for testing.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockClock creates a new MockClock set to the given time.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

// Now returns the mocked current time.
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set sets the mock clock to a specific time.
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the mock clock forward by the given duration.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Since returns the duration since t.
func (c *MockClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// FromNanos converts a Unix-nanosecond frame timestamp to a UTC time.
func FromNanos(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}

// FromMillis converts a millisecond timestamp, as emitted by most pose
// estimators, to Unix nanoseconds.
func FromMillis(ms float64) int64 {
	return int64(ms * float64(time.Millisecond))
}

// Elapsed returns the span between two frame timestamps. A negative span
// (out-of-order frames) is reported as zero.
func Elapsed(startNanos, endNanos int64) time.Duration {
	if endNanos <= startNanos {
		return 0
	}
	return time.Duration(endNanos - startNanos)
}
