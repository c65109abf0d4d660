package l3signal

import "math"

// Stats is a snapshot of RollingStats.
type Stats struct {
	Count    int     `json:"count"`
	Current  float64 `json:"current"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"` // unbiased sample variance; 0 below two samples
}

// StdDev is the square root of Variance.
func (s Stats) StdDev() float64 {
	return math.Sqrt(s.Variance)
}

type indexed struct {
	seq   uint64
	value float64
}

// RollingStats tracks min, max, mean and variance over the last
// `window` values in O(1) amortized time per Add. Mean and variance use
// Welford's update with the matching removal step; min and max use
// monotonic deques.
type RollingStats struct {
	window int
	ring   []float64
	head   int
	count  int
	seq    uint64

	mean float64
	m2   float64

	minQ []indexed // increasing values
	maxQ []indexed // decreasing values

	current float64
}

// NewRollingStats creates statistics over a sliding window.
func NewRollingStats(window int) *RollingStats {
	if window < 1 {
		window = DefaultHistoryCapacity
	}
	return &RollingStats{window: window, ring: make([]float64, window)}
}

// Add inserts v, evicting the oldest value once the window is full.
func (r *RollingStats) Add(v float64) {
	if r.count == r.window {
		r.remove(r.ring[r.head])
	}
	r.ring[r.head] = v
	r.head = (r.head + 1) % r.window

	r.count++
	d := v - r.mean
	r.mean += d / float64(r.count)
	r.m2 += d * (v - r.mean)

	seq := r.seq
	r.seq++
	for len(r.minQ) > 0 && r.minQ[len(r.minQ)-1].value >= v {
		r.minQ = r.minQ[:len(r.minQ)-1]
	}
	r.minQ = append(r.minQ, indexed{seq, v})
	for len(r.maxQ) > 0 && r.maxQ[len(r.maxQ)-1].value <= v {
		r.maxQ = r.maxQ[:len(r.maxQ)-1]
	}
	r.maxQ = append(r.maxQ, indexed{seq, v})

	// Drop deque heads that fell out of the window.
	oldest := r.seq - uint64(r.count)
	for r.minQ[0].seq < oldest {
		r.minQ = r.minQ[1:]
	}
	for r.maxQ[0].seq < oldest {
		r.maxQ = r.maxQ[1:]
	}

	r.current = v
}

func (r *RollingStats) remove(v float64) {
	if r.count <= 1 {
		r.count = 0
		r.mean = 0
		r.m2 = 0
		return
	}
	n := float64(r.count)
	oldMean := r.mean
	r.mean = (n*oldMean - v) / (n - 1)
	r.m2 -= (v - oldMean) * (v - r.mean)
	if r.m2 < 0 {
		r.m2 = 0
	}
	r.count--
}

// Len returns the number of values in the window.
func (r *RollingStats) Len() int {
	return r.count
}

// Snapshot returns current statistics. ok is false when empty.
func (r *RollingStats) Snapshot() (s Stats, ok bool) {
	if r.count == 0 {
		return Stats{}, false
	}
	s = Stats{
		Count:   r.count,
		Current: r.current,
		Min:     r.minQ[0].value,
		Max:     r.maxQ[0].value,
		Mean:    r.mean,
	}
	if r.count > 1 {
		s.Variance = r.m2 / float64(r.count-1)
	}
	return s, true
}

// Reset discards all values.
func (r *RollingStats) Reset() {
	*r = RollingStats{window: r.window, ring: make([]float64, r.window)}
}
