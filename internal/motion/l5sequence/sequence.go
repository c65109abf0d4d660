package l5sequence

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/motion.report/internal/motion/l2angles"
)

// Frame is one recorded angle set.
type Frame struct {
	Angles         l2angles.AngleSet
	TimestampNanos int64
}

// Sequence is a frozen recording. It is immutable after construction and
// safe to share between goroutines.
type Sequence struct {
	id            string
	name          string
	frames        []Frame
	longRecording bool
}

// New builds a sequence from frames, deep copying them. It assigns a
// fresh ID and does not enforce a minimum length; use a Recorder for
// that.
func New(name string, frames []Frame) *Sequence {
	return newSequence(uuid.New().String(), name, cloneFrames(frames), false)
}

func newSequence(id, name string, frames []Frame, long bool) *Sequence {
	return &Sequence{id: id, name: name, frames: frames, longRecording: long}
}

func cloneFrames(in []Frame) []Frame {
	out := make([]Frame, len(in))
	for i, f := range in {
		out[i] = Frame{Angles: f.Angles.Clone(), TimestampNanos: f.TimestampNanos}
	}
	return out
}

// ID returns the sequence identifier.
func (s *Sequence) ID() string { return s.id }

// Name returns the user-facing label.
func (s *Sequence) Name() string { return s.name }

// LongRecording reports whether the recording exceeded the soft cap.
func (s *Sequence) LongRecording() bool { return s.longRecording }

// Len returns the number of frames.
func (s *Sequence) Len() int { return len(s.frames) }

// Frame returns a copy of frame i.
func (s *Sequence) Frame(i int) Frame {
	f := s.frames[i]
	return Frame{Angles: f.Angles.Clone(), TimestampNanos: f.TimestampNanos}
}

// Frames returns a copy of every frame.
func (s *Sequence) Frames() []Frame {
	return cloneFrames(s.frames)
}

// AngleAt returns joint j at frame i without copying the frame.
func (s *Sequence) AngleAt(i int, j l2angles.Joint) l2angles.Angle {
	return s.frames[i].Angles.Get(j)
}

// TimestampAt returns the timestamp of frame i.
func (s *Sequence) TimestampAt(i int) int64 {
	return s.frames[i].TimestampNanos
}

// Offset returns the elapsed time of frame i from the first frame.
func (s *Sequence) Offset(i int) time.Duration {
	return time.Duration(s.frames[i].TimestampNanos - s.frames[0].TimestampNanos)
}

// JointSeries returns joint j across all frames, in order. Frames where
// the joint is undefined or absent keep an Undefined marker at that
// position.
func (s *Sequence) JointSeries(j l2angles.Joint) []l2angles.Angle {
	out := make([]l2angles.Angle, len(s.frames))
	for i, f := range s.frames {
		out[i] = f.Angles.Get(j)
	}
	return out
}

// Joints returns every joint that appears in any frame, sorted.
func (s *Sequence) Joints() []l2angles.Joint {
	seen := make(map[l2angles.Joint]bool)
	for _, f := range s.frames {
		for j := range f.Angles {
			seen[j] = true
		}
	}
	out := make([]l2angles.Joint, 0, len(seen))
	for j := range seen {
		out = append(out, j)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// Duration is the time between the first and last frame.
func (s *Sequence) Duration() time.Duration {
	if len(s.frames) < 2 {
		return 0
	}
	return s.Offset(len(s.frames) - 1)
}
