package l6compare

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/motion.report/internal/config"
	"github.com/banshee-data/motion.report/internal/motion/l2angles"
	"github.com/banshee-data/motion.report/internal/motion/l5sequence"
)

const frameNanos = int64(33 * time.Millisecond)

// wave builds a sequence of n frames for the given joints, each following
// a shifted sine, with an optional constant offset and repeat factor.
func wave(n int, offset float64, repeat int, joints ...l2angles.Joint) *l5sequence.Sequence {
	var frames []l5sequence.Frame
	ts := int64(0)
	for i := 0; i < n; i++ {
		for r := 0; r < repeat; r++ {
			set := l2angles.AngleSet{}
			for k, j := range joints {
				set[j] = l2angles.Defined(120 + 40*math.Sin(float64(i)/4+float64(k)) + offset)
			}
			frames = append(frames, l5sequence.Frame{Angles: set, TimestampNanos: ts})
			ts += frameNanos
		}
	}
	return l5sequence.New("wave", frames)
}

// flat builds n frames holding joint j at a constant value.
func flat(n int, v float64, j l2angles.Joint) *l5sequence.Sequence {
	frames := make([]l5sequence.Frame, n)
	for i := range frames {
		frames[i] = l5sequence.Frame{
			Angles:         l2angles.AngleSet{j: l2angles.Defined(v)},
			TimestampNanos: int64(i) * frameNanos,
		}
	}
	return l5sequence.New("flat", frames)
}

func testComparer(joints ...l2angles.Joint) *Comparer {
	cfg := DefaultConfig()
	cfg.Joints = joints
	return NewComparer(cfg)
}

// -----------------------------------------------------------------------------
// DTW
// -----------------------------------------------------------------------------

func TestDTW_Identical(t *testing.T) {
	t.Parallel()

	s := []float64{10, 20, 30, 20, 10}
	a := DTW(s, s, 0)
	assert.Equal(t, 0.0, a.Distance)
	assert.Equal(t, 5, a.PathLength)
}

func TestDTW_HandComputed(t *testing.T) {
	t.Parallel()

	// ref   = 0 1 2
	// cand  = 0 2
	// cells: row0 = 0 2 ; row1 = 1 1 ; row2 = 3 1
	a := DTW([]float64{0, 1, 2}, []float64{0, 2}, 0)
	assert.Equal(t, 1.0, a.Distance)
	assert.Equal(t, 3, a.PathLength)
}

func TestDTW_Symmetric(t *testing.T) {
	t.Parallel()

	a := []float64{1, 5, 9, 4, 2, 8}
	b := []float64{2, 6, 3, 9}
	assert.InDelta(t, DTW(a, b, 0).Distance, DTW(b, a, 0).Distance, 1e-12)
}

func TestDTW_AbsorbsRepetition(t *testing.T) {
	t.Parallel()

	a := []float64{10, 50, 90, 50, 10}
	b := []float64{10, 10, 50, 50, 90, 90, 50, 50, 10, 10}
	assert.Equal(t, 0.0, DTW(a, b, 0).Distance)
}

func TestDTW_WindowWidensToLengthDifference(t *testing.T) {
	t.Parallel()

	a := []float64{1, 2, 3}
	b := []float64{1, 1, 1, 1, 1, 2, 3}
	got := DTW(a, b, 1)
	assert.False(t, math.IsInf(got.Distance, 1), "end cell must stay reachable")
	assert.Equal(t, DTW(a, b, 0).Distance, got.Distance)
}

func TestDTW_WindowIsUpperBoundOnFreedom(t *testing.T) {
	t.Parallel()

	a := []float64{0, 0, 0, 0, 9, 0, 0, 0}
	b := []float64{9, 0, 0, 0, 0, 0, 0, 0}
	free := DTW(a, b, 0).Distance
	banded := DTW(a, b, 1).Distance
	assert.GreaterOrEqual(t, banded, free)
}

func TestDTW_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Alignment{}, DTW(nil, []float64{1}, 0))
}

// -----------------------------------------------------------------------------
// Score curve
// -----------------------------------------------------------------------------

func TestScore_Curves(t *testing.T) {
	t.Parallel()

	for _, curve := range []string{config.ScoreCurveLinear, config.ScoreCurveExponential} {
		t.Run(curve, func(t *testing.T) {
			assert.Equal(t, 100.0, Score(0, curve, 45, 0.1))
			assert.Equal(t, 0.0, Score(45, curve, 45, 0.1))
			assert.Equal(t, 0.0, Score(90, curve, 45, 0.1))

			prev := 100.0
			for avg := 0.5; avg < 45; avg += 0.5 {
				s := Score(avg, curve, 45, 0.1)
				assert.Less(t, s, prev, "strictly decreasing at %.1f", avg)
				assert.GreaterOrEqual(t, s, 0.0)
				prev = s
			}
		})
	}

	assert.InDelta(t, 50, Score(22.5, config.ScoreCurveLinear, 45, 0.1), 1e-9)
	assert.Less(t, Score(10, config.ScoreCurveExponential, 45, 0.1), Score(10, config.ScoreCurveLinear, 45, 0.1))
}

// -----------------------------------------------------------------------------
// Compare
// -----------------------------------------------------------------------------

func TestCompare_SelfIsPerfect(t *testing.T) {
	t.Parallel()

	ref := wave(40, 0, 1, l2angles.LeftKnee, l2angles.LeftElbow)
	rep, err := testComparer().Compare(ref, ref)
	require.NoError(t, err)

	assert.Equal(t, 100.0, rep.Overall)
	assert.Equal(t, 0.0, rep.Spread)
	assert.Equal(t, 2, rep.Scored)
	for j, jr := range rep.Joints {
		assert.True(t, jr.Valid, j)
		assert.Equal(t, 0.0, jr.Distance, j)
		assert.Equal(t, 40, jr.PathLength, j)
	}
}

func TestCompare_TimeStretchIsTolerated(t *testing.T) {
	t.Parallel()

	joints := []l2angles.Joint{l2angles.LeftKnee, l2angles.RightKnee}
	ref := wave(30, 0, 1, joints...)
	cand := wave(30, 2, 1, joints...)
	slow := wave(30, 2, 2, joints...)

	c := testComparer(joints...)
	same, err := c.Compare(ref, cand)
	require.NoError(t, err)
	stretched, err := c.Compare(ref, slow)
	require.NoError(t, err)

	// The diagonal path bounds the distance, so a constant 2 degree
	// offset scores at least 100*(1-2/45) either way.
	floor := 100 * (1 - 2.0/45)
	assert.GreaterOrEqual(t, same.Overall, floor-1e-9)
	assert.GreaterOrEqual(t, stretched.Overall, floor-1e-9)
	assert.Less(t, same.Overall, 100.0)
	assert.InDelta(t, same.Overall, stretched.Overall, 5)

	// A stretched copy of the reference itself still scores perfectly.
	perfect, err := c.Compare(ref, wave(30, 0, 2, joints...))
	require.NoError(t, err)
	assert.Equal(t, 100.0, perfect.Overall)
}

func TestCompare_WorseMovementScoresLower(t *testing.T) {
	t.Parallel()

	ref := flat(30, 100, l2angles.LeftKnee)
	c := testComparer(l2angles.LeftKnee)
	near, err := c.Compare(ref, flat(30, 105, l2angles.LeftKnee))
	require.NoError(t, err)
	far, err := c.Compare(ref, flat(30, 130, l2angles.LeftKnee))
	require.NoError(t, err)
	beyond, err := c.Compare(ref, flat(40, 160, l2angles.LeftKnee))
	require.NoError(t, err)

	assert.InDelta(t, 100*(1-5.0/45), near.Overall, 1e-9)
	assert.InDelta(t, 100*(1-30.0/45), far.Overall, 1e-9)
	assert.Equal(t, 0.0, beyond.Overall, "beyond the ceiling saturates at 0")
	assert.Equal(t, 40, beyond.Joints[l2angles.LeftKnee].PathLength)
}

func TestCompare_AllJointsUndefined(t *testing.T) {
	t.Parallel()

	var frames []l5sequence.Frame
	for i := 0; i < 20; i++ {
		frames = append(frames, l5sequence.Frame{
			Angles:         l2angles.AngleSet{l2angles.LeftKnee: l2angles.Undefined, l2angles.LeftElbow: l2angles.Undefined},
			TimestampNanos: int64(i) * frameNanos,
		})
	}
	ref := l5sequence.New("blind", frames)
	cand := wave(20, 0, 1, l2angles.LeftKnee, l2angles.LeftElbow)

	rep, err := testComparer().Compare(ref, cand)
	assert.ErrorIs(t, err, ErrAllJointsUndefined)
	require.NotNil(t, rep)
	for _, jr := range rep.Joints {
		assert.False(t, jr.Valid)
	}
}

func TestCompare_SparseJointExcluded(t *testing.T) {
	t.Parallel()

	ref := wave(20, 0, 1, l2angles.LeftKnee, l2angles.LeftElbow)
	frames := wave(20, 10, 1, l2angles.LeftKnee, l2angles.LeftElbow).Frames()
	// Leave only four valid elbow samples in the candidate.
	for i := 4; i < len(frames); i++ {
		frames[i].Angles[l2angles.LeftElbow] = l2angles.Undefined
	}
	cand := l5sequence.New("sparse", frames)

	rep, err := testComparer().Compare(ref, cand)
	require.NoError(t, err)

	elbow := rep.Joints[l2angles.LeftElbow]
	assert.False(t, elbow.Valid)
	assert.Equal(t, 4, elbow.ComparablePairs)
	assert.Equal(t, 1, rep.Scored)
	assert.Equal(t, rep.Joints[l2angles.LeftKnee].Score, rep.Overall, "undefined joints do not drag the mean")
}

func TestCompare_UndefinedSamplesAreNotZeroDifference(t *testing.T) {
	t.Parallel()

	ref := wave(20, 0, 1, l2angles.LeftKnee)
	frames := ref.Frames()
	for _, i := range []int{3, 9, 15} {
		frames[i].Angles[l2angles.LeftKnee] = l2angles.Undefined
	}
	gappy := l5sequence.New("gappy", frames)

	rep, err := testComparer(l2angles.LeftKnee).Compare(ref, gappy)
	require.NoError(t, err)
	jr := rep.Joints[l2angles.LeftKnee]
	assert.Equal(t, 17, jr.ComparablePairs)
	assert.Greater(t, jr.Score, 90.0)
}

func TestCompare_RejectsShortSequences(t *testing.T) {
	t.Parallel()

	long := wave(20, 0, 1, l2angles.LeftKnee)
	short := wave(5, 0, 1, l2angles.LeftKnee)
	c := testComparer()

	_, err := c.Compare(short, long)
	assert.ErrorIs(t, err, l5sequence.ErrSequenceTooShort)
	_, err = c.Compare(long, short)
	assert.ErrorIs(t, err, l5sequence.ErrSequenceTooShort)
}

func TestCompare_SpreadAcrossJoints(t *testing.T) {
	t.Parallel()

	joints := []l2angles.Joint{l2angles.LeftKnee, l2angles.RightKnee}
	ref := wave(20, 0, 1, joints...)
	frames := ref.Frames()
	for i := range frames {
		a := frames[i].Angles[l2angles.RightKnee]
		frames[i].Angles[l2angles.RightKnee] = l2angles.Defined(a.Degrees + 9)
	}

	rep, err := testComparer(joints...).Compare(ref, l5sequence.New("lopsided", frames))
	require.NoError(t, err)
	assert.Equal(t, 100.0, rep.Joints[l2angles.LeftKnee].Score)
	assert.GreaterOrEqual(t, rep.Overall, 90.0)
	assert.Less(t, rep.Overall, 100.0)
	assert.Greater(t, rep.Spread, 0.0)
}

func TestConfigFromTuning(t *testing.T) {
	t.Parallel()

	cfg, err := ConfigFromTuning(config.EmptyTuningConfig())
	require.NoError(t, err)
	assert.Len(t, cfg.Joints, 8)
	assert.Equal(t, 5, cfg.MinComparablePairs)
	assert.Equal(t, 45.0, cfg.CeilingDegrees)

	_, err = ConfigFromTuning(&config.TuningConfig{KeyJoints: []string{"tail"}})
	assert.ErrorContains(t, err, "tail")
}

// -----------------------------------------------------------------------------
// Live feedback
// -----------------------------------------------------------------------------

func TestClassify_Tiers(t *testing.T) {
	t.Parallel()

	c := testComparer()
	assert.Equal(t, TierGood, c.Classify(0))
	assert.Equal(t, TierGood, c.Classify(14.9))
	assert.Equal(t, TierAcceptable, c.Classify(15))
	assert.Equal(t, TierAcceptable, c.Classify(30))
	assert.Equal(t, TierNeedsWork, c.Classify(30.1))
}

func TestReferenceIndexAt(t *testing.T) {
	t.Parallel()

	ref := wave(10, 0, 1, l2angles.LeftKnee)
	assert.Equal(t, 0, ReferenceIndexAt(ref, 0))
	assert.Equal(t, 0, ReferenceIndexAt(ref, -time.Second))
	assert.Equal(t, 3, ReferenceIndexAt(ref, time.Duration(3*frameNanos)))
	assert.Equal(t, 3, ReferenceIndexAt(ref, time.Duration(3*frameNanos+frameNanos/2)))
	assert.Equal(t, 9, ReferenceIndexAt(ref, time.Hour), "clamped to last frame")
}

func TestLiveFeedback(t *testing.T) {
	t.Parallel()

	ref := wave(10, 0, 1, l2angles.LeftKnee, l2angles.LeftElbow, l2angles.RightKnee)
	refFrame := ref.Frame(4)
	practice := l2angles.AngleSet{
		l2angles.LeftKnee:  l2angles.Defined(refFrame.Angles[l2angles.LeftKnee].Degrees + 5),
		l2angles.LeftElbow: l2angles.Defined(refFrame.Angles[l2angles.LeftElbow].Degrees - 40),
		l2angles.RightKnee: l2angles.Undefined,
	}

	fb := testComparer().LiveFeedback(ref, time.Duration(4*frameNanos), practice)
	assert.Equal(t, 4, fb.ReferenceIndex)
	assert.Equal(t, TierGood, fb.Joints[l2angles.LeftKnee].Tier)
	assert.InDelta(t, 5, fb.Joints[l2angles.LeftKnee].Difference, 1e-9)
	assert.Equal(t, TierNeedsWork, fb.Joints[l2angles.LeftElbow].Tier)
	assert.Equal(t, TierUnknown, fb.Joints[l2angles.RightKnee].Tier)
	assert.Equal(t, TierNeedsWork, fb.Worst())

	empty := testComparer().LiveFeedback(ref, 0, l2angles.AngleSet{})
	assert.Equal(t, TierUnknown, empty.Worst())
}
