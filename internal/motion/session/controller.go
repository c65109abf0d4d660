package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/motion.report/internal/config"
	"github.com/banshee-data/motion.report/internal/monitoring"
	"github.com/banshee-data/motion.report/internal/motion/l2angles"
	"github.com/banshee-data/motion.report/internal/motion/l5sequence"
	"github.com/banshee-data/motion.report/internal/motion/l6compare"
	"github.com/banshee-data/motion.report/internal/timeutil"
)

// State is the controller lifecycle state.
type State string

const (
	StateIdle               State = "idle"
	StateRecordingReference State = "recording_reference"
	StatePracticing         State = "practicing"
)

// Config holds session parameters.
type Config struct {
	Recorder l5sequence.RecorderConfig
	Compare  l6compare.Config
}

// DefaultConfig returns the built-in session parameters.
func DefaultConfig() Config {
	return Config{
		Recorder: l5sequence.DefaultRecorderConfig(),
		Compare:  l6compare.DefaultConfig(),
	}
}

// ConfigFromTuning builds a Config from tuning.
func ConfigFromTuning(cfg *config.TuningConfig) (Config, error) {
	cmp, err := l6compare.ConfigFromTuning(cfg)
	if err != nil {
		return Config{}, err
	}
	return Config{Recorder: l5sequence.RecorderConfigFromTuning(cfg), Compare: cmp}, nil
}

// Result is the outcome of a completed practice session.
type Result struct {
	SessionID          string                                   `json:"session_id"`
	ReferenceID        string                                   `json:"reference_id"`
	PracticeID         string                                   `json:"practice_id"`
	OverallScore       float64                                  `json:"overall_score"`
	ScoreSpread        float64                                  `json:"score_spread"`
	Joints             map[l2angles.Joint]l6compare.JointReport `json:"joints"`
	ComparedFrameCount int                                      `json:"compared_frame_count"`
	CompletedAt        time.Time                                `json:"completed_at"`
}

// Outcome is delivered by StopPracticeAsync.
type Outcome struct {
	Result *Result
	Err    error
}

// FrameResult is the per-frame output of ProcessFrame.
type FrameResult struct {
	State    State                   `json:"state"`
	Recorded bool                    `json:"recorded"`
	Feedback *l6compare.LiveFeedback `json:"feedback,omitempty"`
}

// Controller is the coaching session state machine:
//
//	idle -> recording_reference -> idle -> practicing -> idle
type Controller struct {
	mu sync.Mutex

	cfg      Config
	clock    timeutil.Clock
	recorder *l5sequence.Recorder
	comparer *l6compare.Comparer

	state     State
	reference *l5sequence.Sequence

	sessionID      string
	practiceStart  int64
	practiceFrames int
}

// NewController creates an idle controller. A nil clock uses wall time.
func NewController(cfg Config, clock timeutil.Clock) *Controller {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Controller{
		cfg:      cfg,
		clock:    clock,
		recorder: l5sequence.NewRecorder(cfg.Recorder),
		comparer: l6compare.NewComparer(cfg.Compare),
		state:    StateIdle,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Reference returns the active reference, or nil.
func (c *Controller) Reference() *l5sequence.Sequence {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reference
}

func (c *Controller) require(want State, op string) error {
	if c.state != want {
		return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, op, c.state)
	}
	return nil
}

// StartRecording begins capturing a new reference.
func (c *Controller) StartRecording(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.require(StateIdle, "start recording"); err != nil {
		return err
	}
	if err := c.recorder.Begin(name); err != nil {
		return err
	}
	c.state = StateRecordingReference
	return nil
}

// StopRecording freezes the capture as the new reference. A recording
// that is too short is discarded and the previous reference kept.
func (c *Controller) StopRecording() (*l5sequence.Sequence, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.require(StateRecordingReference, "stop recording"); err != nil {
		return nil, err
	}
	c.state = StateIdle

	seq, err := c.recorder.End()
	if err != nil {
		return nil, err
	}
	c.reference = seq
	monitoring.Logf("session: reference %s recorded (%d frames, %v)", seq.ID(), seq.Len(), seq.Duration())
	if seq.LongRecording() {
		monitoring.Logf("session: reference %s exceeds %v; consider a shorter clip", seq.ID(), c.cfg.Recorder.SoftCap)
	}
	return seq, nil
}

// ClearReference drops the active reference.
func (c *Controller) ClearReference() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.require(StateIdle, "clear reference"); err != nil {
		return err
	}
	c.reference = nil
	return nil
}

// LoadReference installs a previously saved sequence as the reference.
func (c *Controller) LoadReference(seq *l5sequence.Sequence) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.require(StateIdle, "load reference"); err != nil {
		return err
	}
	if seq == nil || seq.Len() < c.cfg.Recorder.MinFrames {
		n := 0
		if seq != nil {
			n = seq.Len()
		}
		return fmt.Errorf("%w: %d frames, need at least %d", l5sequence.ErrSequenceTooShort, n, c.cfg.Recorder.MinFrames)
	}
	c.reference = seq
	return nil
}

// StartPractice begins a practice run against the reference.
func (c *Controller) StartPractice() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.require(StateIdle, "start practice"); err != nil {
		return err
	}
	if c.reference == nil {
		return ErrNoReferenceAvailable
	}
	if err := c.recorder.Begin("practice"); err != nil {
		return err
	}
	c.sessionID = uuid.New().String()
	c.practiceFrames = 0
	c.state = StatePracticing
	return nil
}

// ProcessFrame feeds one frame's angles into the active recording. In
// practice it also returns live feedback against the time-matched
// reference frame. Idle frames are ignored.
func (c *Controller) ProcessFrame(angles l2angles.AngleSet, tsNanos int64) (FrameResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := FrameResult{State: c.state}
	switch c.state {
	case StateRecordingReference:
		if err := c.recorder.Append(angles, tsNanos); err != nil {
			return res, err
		}
		res.Recorded = true
	case StatePracticing:
		if err := c.recorder.Append(angles, tsNanos); err != nil {
			return res, err
		}
		res.Recorded = true
		if c.practiceFrames == 0 {
			c.practiceStart = tsNanos
		}
		c.practiceFrames++
		fb := c.comparer.LiveFeedback(c.reference, timeutil.Elapsed(c.practiceStart, tsNanos), angles)
		res.Feedback = &fb
	}
	return res, nil
}

// endPractice freezes the practice run and returns the immutable inputs
// of the comparison. Caller holds mu.
func (c *Controller) endPractice() (ref, practice *l5sequence.Sequence, sessionID string, err error) {
	if err := c.require(StatePracticing, "stop practice"); err != nil {
		return nil, nil, "", err
	}
	c.state = StateIdle
	practice, err = c.recorder.End()
	if err != nil {
		return nil, nil, "", err
	}
	return c.reference, practice, c.sessionID, nil
}

// StopPractice ends the run and scores it synchronously.
func (c *Controller) StopPractice() (*Result, error) {
	c.mu.Lock()
	ref, practice, id, err := c.endPractice()
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return c.score(id, ref, practice)
}

// StopPracticeAsync ends the run and scores it on a background
// goroutine. Both sequences are frozen, so the controller can accept new
// work while the comparison runs. The channel receives exactly one
// Outcome and is then closed.
func (c *Controller) StopPracticeAsync() (<-chan Outcome, error) {
	c.mu.Lock()
	ref, practice, id, err := c.endPractice()
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		r, err := c.score(id, ref, practice)
		out <- Outcome{Result: r, Err: err}
	}()
	return out, nil
}

func (c *Controller) score(id string, ref, practice *l5sequence.Sequence) (*Result, error) {
	start := c.clock.Now()
	rep, err := c.comparer.Compare(ref, practice)
	if err != nil {
		monitoring.Logf("session %s: comparison failed: %v", id, err)
		return nil, err
	}
	res := &Result{
		SessionID:          id,
		ReferenceID:        ref.ID(),
		PracticeID:         practice.ID(),
		OverallScore:       rep.Overall,
		ScoreSpread:        rep.Spread,
		Joints:             rep.Joints,
		ComparedFrameCount: practice.Len(),
		CompletedAt:        c.clock.Now(),
	}
	monitoring.Logf("session %s: score %.1f over %d joints in %v", id, rep.Overall, rep.Scored, c.clock.Since(start))
	return res, nil
}
