package l3signal

import "github.com/banshee-data/motion.report/internal/motion/l2angles"

// DefaultHistoryCapacity is used when a non-positive capacity is requested.
const DefaultHistoryCapacity = 30

// Sample is one observation on a channel.
type Sample struct {
	Angle          l2angles.Angle
	TimestampNanos int64
}

// HistoryBuffer is a fixed-capacity ring of samples. When full, the
// oldest sample is evicted on Push.
type HistoryBuffer struct {
	samples  []Sample
	capacity int
	head     int // next write position
	size     int
}

// NewHistoryBuffer creates a buffer with the given capacity.
func NewHistoryBuffer(capacity int) *HistoryBuffer {
	if capacity < 1 {
		capacity = DefaultHistoryCapacity
	}
	return &HistoryBuffer{
		samples:  make([]Sample, capacity),
		capacity: capacity,
	}
}

// Push appends a sample, overwriting the oldest when at capacity.
func (h *HistoryBuffer) Push(s Sample) {
	h.samples[h.head] = s
	h.head = (h.head + 1) % h.capacity
	if h.size < h.capacity {
		h.size++
	}
}

// Previous returns the sample n steps back; Previous(1) is the latest.
func (h *HistoryBuffer) Previous(n int) (Sample, bool) {
	if n < 1 || n > h.size {
		return Sample{}, false
	}
	idx := (h.head - n + h.capacity) % h.capacity
	return h.samples[idx], true
}

// Latest returns the most recent sample.
func (h *HistoryBuffer) Latest() (Sample, bool) {
	return h.Previous(1)
}

// Len returns the number of stored samples.
func (h *HistoryBuffer) Len() int {
	return h.size
}

// Cap returns the buffer capacity.
func (h *HistoryBuffer) Cap() int {
	return h.capacity
}

// All returns the samples from oldest to newest.
func (h *HistoryBuffer) All() []Sample {
	if h.size == 0 {
		return nil
	}
	out := make([]Sample, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.samples[(h.head-h.size+i+h.capacity)%h.capacity]
	}
	return out
}

// Values returns the defined values from oldest to newest.
func (h *HistoryBuffer) Values() []float64 {
	out := make([]float64, 0, h.size)
	for _, s := range h.All() {
		if s.Angle.Valid {
			out = append(out, s.Angle.Degrees)
		}
	}
	return out
}

// Clear removes all samples.
func (h *HistoryBuffer) Clear() {
	for i := range h.samples {
		h.samples[i] = Sample{}
	}
	h.head = 0
	h.size = 0
}
