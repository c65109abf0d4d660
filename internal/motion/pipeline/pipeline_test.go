package pipeline

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/motion.report/internal/config"
	"github.com/banshee-data/motion.report/internal/motion/l1pose"
	"github.com/banshee-data/motion.report/internal/motion/l4reps"
	"github.com/banshee-data/motion.report/internal/motion/session"
	"github.com/banshee-data/motion.report/internal/testutil"
)

type memorySink struct {
	results []*session.Result
	err     error
}

func (m *memorySink) InsertResult(r *session.Result) error {
	if m.err != nil {
		return m.err
	}
	m.results = append(m.results, r)
	return nil
}

func newSquatPipeline(t *testing.T, sink ResultSink) *Pipeline {
	t.Helper()
	cfg, err := ConfigFromTuning(config.EmptyTuningConfig(), "squat")
	require.NoError(t, err)
	cfg.Results = sink
	p, err := New(cfg)
	require.NoError(t, err)
	return p
}

func TestPipeline_CountsSquats(t *testing.T) {
	t.Parallel()

	p := newSquatPipeline(t, nil)
	var last FrameReport
	for _, f := range testutil.SquatStream(4, 10) {
		last = p.Process(f)
	}

	assert.Equal(t, map[string]int{"squat": 4}, p.Counts())
	require.Len(t, last.Reps, 1)
	assert.Equal(t, 4, last.Reps[0].Count)
	assert.Equal(t, l4reps.StateUp, last.Reps[0].State)
	assert.Empty(t, last.Reps[0].Issues)
	assert.Equal(t, session.StateIdle, last.Session.State)
	assert.Len(t, last.Angles, 12)

	st := p.Stats()
	assert.Equal(t, 10+4*4*10, st.Frames)
	assert.Zero(t, st.EmptyFrames)

	p.Reset()
	assert.Equal(t, map[string]int{"squat": 0}, p.Counts())
	assert.Zero(t, p.Stats().Frames)
}

func TestPipeline_UnknownExercise(t *testing.T) {
	t.Parallel()

	_, err := NewFromTuning(config.EmptyTuningConfig(), "jumping_jack")
	assert.Error(t, err)
}

func TestPipeline_EmptyFramesNeverAbort(t *testing.T) {
	t.Parallel()

	p := newSquatPipeline(t, nil)
	rep := p.Process(l1pose.PoseFrame{TimestampNanos: 1})
	assert.Zero(t, rep.Angles.ValidCount())
	assert.Len(t, rep.Angles, 12, "undefined joints are present, not dropped")
	require.Len(t, rep.Reps, 1)
	assert.False(t, rep.Reps[0].Smoothed.Valid)
	assert.Equal(t, 1, p.Stats().EmptyFrames)

	for _, r := range rep.Rules {
		assert.False(t, r.Defined)
		assert.False(t, r.Pass)
	}
}

func TestPipeline_CalibratedPosture(t *testing.T) {
	t.Parallel()

	p := newSquatPipeline(t, nil)
	_, err := p.Calibrate()
	assert.ErrorIs(t, err, l4reps.ErrNothingToCalibrate)

	var rep FrameReport
	for i := 0; i < 10; i++ {
		rep = p.Process(testutil.StandingPose(int64(i) * testutil.FrameNanos))
	}
	n, err := p.Calibrate()
	require.NoError(t, err)
	assert.Positive(t, n)
	assert.True(t, p.Monitor().Calibrated())

	rep = p.Process(testutil.StandingPose(10 * testutil.FrameNanos))
	byName := make(map[string]l4reps.RuleResult)
	for _, r := range rep.Rules {
		byName[r.Rule] = r
		if r.Defined {
			assert.True(t, r.Pass, "%s should pass against its own baseline", r.Rule)
		}
	}
	assert.True(t, byName["shoulders_level"].Pass)
	assert.True(t, byName["body_lean"].Pass)
}

// Not parallel: swaps the package log writers.
func TestPipeline_SessionRoundTrip(t *testing.T) {
	var diag bytes.Buffer
	SetLogWriters(nil, &diag, nil)
	defer SetLogWriters(nil, nil, nil)

	sink := &memorySink{}
	p := newSquatPipeline(t, sink)
	ctl := p.Controller()
	stream := testutil.SquatStream(2, 8)

	require.NoError(t, ctl.StartRecording("squat demo"))
	for _, f := range stream {
		rep := p.Process(f)
		assert.True(t, rep.Session.Recorded)
	}
	ref, err := ctl.StopRecording()
	require.NoError(t, err)
	assert.Equal(t, len(stream), ref.Len())

	require.NoError(t, ctl.StartPractice())
	for _, f := range stream {
		rep := p.Process(f)
		require.NotNil(t, rep.Session.Feedback)
		assert.NotEqual(t, "needs_work", string(rep.Session.Feedback.Worst()))
	}
	res, err := p.StopPractice()
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.OverallScore)
	assert.Equal(t, ref.ID(), res.ReferenceID)

	require.Len(t, sink.results, 1)
	assert.Same(t, res, sink.results[0])
	assert.Contains(t, diag.String(), "result persisted")
}

// Not parallel: swaps the package log writers.
func TestPipeline_SinkFailureStillReturnsResult(t *testing.T) {
	var ops bytes.Buffer
	SetLogWriters(&ops, nil, nil)
	defer SetLogWriters(nil, nil, nil)

	p := newSquatPipeline(t, &memorySink{err: errors.New("disk full")})
	ctl := p.Controller()
	stream := testutil.SquatStream(1, 5)

	require.NoError(t, ctl.StartRecording("ref"))
	for _, f := range stream {
		p.Process(f)
	}
	_, err := ctl.StopRecording()
	require.NoError(t, err)
	require.NoError(t, ctl.StartPractice())
	for _, f := range stream {
		p.Process(f)
	}

	res, err := p.StopPractice()
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Contains(t, ops.String(), "disk full")
}

func TestPipeline_SessionErrorsAreReported(t *testing.T) {
	t.Parallel()

	p := newSquatPipeline(t, nil)
	require.NoError(t, p.Controller().StartRecording("ref"))

	p.Process(testutil.StandingPose(100))
	rep := p.Process(testutil.StandingPose(50))
	assert.NotEmpty(t, rep.SessionError)
	assert.Equal(t, 1, p.Stats().SessionErrors)
	assert.Equal(t, session.StateRecordingReference, p.Controller().State())
}

func TestPipeline_StopPracticeWithoutSession(t *testing.T) {
	t.Parallel()

	p := newSquatPipeline(t, nil)
	_, err := p.StopPractice()
	assert.ErrorIs(t, err, session.ErrInvalidTransition)
}
