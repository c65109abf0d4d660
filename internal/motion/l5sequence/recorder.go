package l5sequence

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/motion.report/internal/config"
	"github.com/banshee-data/motion.report/internal/motion/l2angles"
)

// RecorderConfig holds recording limits.
type RecorderConfig struct {
	MinFrames int           // End rejects shorter recordings
	SoftCap   time.Duration // longer recordings are flagged, not rejected
}

// DefaultRecorderConfig returns the built-in limits.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfigFromTuning(config.EmptyTuningConfig())
}

// RecorderConfigFromTuning builds a RecorderConfig from tuning.
func RecorderConfigFromTuning(cfg *config.TuningConfig) RecorderConfig {
	return RecorderConfig{
		MinFrames: cfg.GetMinSequenceFrames(),
		SoftCap:   cfg.GetLongRecordingSoftCap(),
	}
}

// Recorder captures frames between Begin and End. Not safe for
// concurrent use.
type Recorder struct {
	cfg       RecorderConfig
	recording bool
	id        string
	name      string
	frames    []Frame
}

// NewRecorder creates an idle Recorder.
func NewRecorder(cfg RecorderConfig) *Recorder {
	return &Recorder{cfg: cfg}
}

// Begin opens a recording window.
func (r *Recorder) Begin(name string) error {
	if r.recording {
		return ErrAlreadyRecording
	}
	r.recording = true
	r.id = uuid.New().String()
	r.name = name
	r.frames = nil
	diagf("recording %s (%q) started", r.id, name)
	return nil
}

// Append adds one frame. The angle set is copied.
func (r *Recorder) Append(angles l2angles.AngleSet, tsNanos int64) error {
	if !r.recording {
		return ErrNotRecording
	}
	if n := len(r.frames); n > 0 && tsNanos < r.frames[n-1].TimestampNanos {
		return fmt.Errorf("%w: %d < %d", ErrTimestampRegression, tsNanos, r.frames[n-1].TimestampNanos)
	}
	r.frames = append(r.frames, Frame{Angles: angles.Clone(), TimestampNanos: tsNanos})
	tracef("recording %s: frame %d at %d", r.id, len(r.frames), tsNanos)
	return nil
}

// End closes the window and freezes the recording. A recording shorter
// than MinFrames is discarded and ErrSequenceTooShort returned; the
// recorder is idle afterwards either way.
func (r *Recorder) End() (*Sequence, error) {
	if !r.recording {
		return nil, ErrNotRecording
	}
	frames := r.frames
	r.recording = false
	r.frames = nil

	if len(frames) < r.cfg.MinFrames {
		opsf("recording %s discarded: %d frames, need %d", r.id, len(frames), r.cfg.MinFrames)
		return nil, fmt.Errorf("%w: %d frames, need at least %d", ErrSequenceTooShort, len(frames), r.cfg.MinFrames)
	}

	seq := newSequence(r.id, r.name, frames, false)
	if r.cfg.SoftCap > 0 && seq.Duration() > r.cfg.SoftCap {
		seq.longRecording = true
		diagf("recording %s is %v, longer than %v", r.id, seq.Duration(), r.cfg.SoftCap)
	}
	diagf("recording %s finished: %d frames over %v", r.id, seq.Len(), seq.Duration())
	return seq, nil
}

// Abort discards the current recording, if any.
func (r *Recorder) Abort() {
	r.recording = false
	r.frames = nil
}

// Recording reports whether a window is open.
func (r *Recorder) Recording() bool {
	return r.recording
}

// Len returns the number of frames captured so far.
func (r *Recorder) Len() int {
	return len(r.frames)
}
