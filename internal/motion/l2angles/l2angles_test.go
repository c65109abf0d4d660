package l2angles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/motion.report/internal/config"
	"github.com/banshee-data/motion.report/internal/motion/l1pose"
)

const eps = 1e-9

func kp(x, y float64) l1pose.Keypoint {
	return l1pose.Keypoint{X: x, Y: y, Visibility: 1, Presence: 1}
}

func frameOf(points map[l1pose.Landmark]l1pose.Keypoint) l1pose.PoseFrame {
	return l1pose.PoseFrame{Keypoints: points, Confidence: 1}
}

// uprightFrame is a standing figure facing the camera with straight
// limbs. Image y grows downward.
func uprightFrame() l1pose.PoseFrame {
	return frameOf(map[l1pose.Landmark]l1pose.Keypoint{
		l1pose.Nose:           kp(0.50, 0.10),
		l1pose.LeftEye:        kp(0.48, 0.08),
		l1pose.RightEye:       kp(0.52, 0.08),
		l1pose.LeftEar:        kp(0.46, 0.09),
		l1pose.RightEar:       kp(0.54, 0.09),
		l1pose.LeftShoulder:   kp(0.40, 0.20),
		l1pose.RightShoulder:  kp(0.60, 0.20),
		l1pose.LeftElbow:      kp(0.40, 0.35),
		l1pose.RightElbow:     kp(0.60, 0.35),
		l1pose.LeftWrist:      kp(0.40, 0.50),
		l1pose.RightWrist:     kp(0.60, 0.50),
		l1pose.LeftIndex:      kp(0.40, 0.55),
		l1pose.RightIndex:     kp(0.60, 0.55),
		l1pose.LeftHip:        kp(0.45, 0.50),
		l1pose.RightHip:       kp(0.55, 0.50),
		l1pose.LeftKnee:       kp(0.45, 0.70),
		l1pose.RightKnee:      kp(0.55, 0.70),
		l1pose.LeftAnkle:      kp(0.45, 0.90),
		l1pose.RightAnkle:     kp(0.55, 0.90),
		l1pose.LeftFootIndex:  kp(0.40, 0.92),
		l1pose.RightFootIndex: kp(0.60, 0.92),
	})
}

// -----------------------------------------------------------------------------
// AngleAt
// -----------------------------------------------------------------------------

func TestAngleAt(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		a, b, c l1pose.Vec3
		want    float64
	}{
		{"right angle", l1pose.Vec3{X: 0, Y: 0}, l1pose.Vec3{X: 1, Y: 0}, l1pose.Vec3{X: 1, Y: 1}, 90},
		{"collinear opposite", l1pose.Vec3{X: 0}, l1pose.Vec3{X: 1}, l1pose.Vec3{X: 2}, 180},
		{"collinear same side", l1pose.Vec3{X: 2}, l1pose.Vec3{X: 0}, l1pose.Vec3{X: 1}, 0},
		{"forty five", l1pose.Vec3{X: 1, Y: 1}, l1pose.Vec3{}, l1pose.Vec3{X: 1}, 45},
		{"three dimensional", l1pose.Vec3{Z: 1}, l1pose.Vec3{}, l1pose.Vec3{X: 1}, 90},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := AngleAt(tc.a, tc.b, tc.c)
			require.True(t, ok)
			assert.InDelta(t, tc.want, got, 1e-6)
		})
	}
}

func TestAngleAt_Properties(t *testing.T) {
	t.Parallel()

	pts := []l1pose.Vec3{
		{X: 0.1, Y: 0.9, Z: -0.3},
		{X: 0.7, Y: 0.2, Z: 0.4},
		{X: -0.5, Y: 0.3, Z: 0.0},
		{X: 0.33, Y: -0.8, Z: 0.9},
	}
	for i := range pts {
		for j := range pts {
			for k := range pts {
				if i == j || j == k || i == k {
					continue
				}
				a, b, c := pts[i], pts[j], pts[k]
				got, ok := AngleAt(a, b, c)
				require.True(t, ok)
				assert.GreaterOrEqual(t, got, 0.0)
				assert.LessOrEqual(t, got, 180.0)

				swapped, _ := AngleAt(c, b, a)
				assert.InDelta(t, got, swapped, eps, "symmetric in A and C")

				shift := l1pose.Vec3{X: 3, Y: -2, Z: 7}
				moved, _ := AngleAt(a.Sub(shift), b.Sub(shift), c.Sub(shift))
				assert.InDelta(t, got, moved, 1e-6, "translation invariant")

				scale := func(v l1pose.Vec3) l1pose.Vec3 { return l1pose.Vec3{X: v.X * 4, Y: v.Y * 4, Z: v.Z * 4} }
				scaled, _ := AngleAt(scale(a), scale(b), scale(c))
				assert.InDelta(t, got, scaled, 1e-6, "scale invariant")
			}
		}
	}
}

func TestAngleAt_Degenerate(t *testing.T) {
	t.Parallel()

	p := l1pose.Vec3{X: 0.5, Y: 0.5}
	_, ok := AngleAt(p, p, l1pose.Vec3{X: 1})
	assert.False(t, ok, "A coincides with vertex")
	_, ok = AngleAt(l1pose.Vec3{X: 1}, p, p)
	assert.False(t, ok, "C coincides with vertex")
}

// -----------------------------------------------------------------------------
// Joint catalogue
// -----------------------------------------------------------------------------

func TestCatalogue(t *testing.T) {
	t.Parallel()

	assert.Len(t, Catalogue, 12)
	assert.Len(t, Joints, 12)
	for _, j := range Joints {
		tr, ok := Catalogue[j]
		require.True(t, ok, j)
		assert.True(t, l1pose.Known(tr.A))
		assert.True(t, l1pose.Known(tr.Vertex))
		assert.True(t, l1pose.Known(tr.C))
	}

	j, ok := ParseJoint("left_knee")
	assert.True(t, ok)
	assert.Equal(t, LeftKnee, j)
	_, ok = ParseJoint("tail")
	assert.False(t, ok)
}

func TestEngine_JointAngles_Upright(t *testing.T) {
	t.Parallel()

	e := NewEngine(DefaultConfig())
	set := e.JointAngles(uprightFrame())

	assert.Len(t, set, 12, "every joint present")
	assert.Equal(t, 12, set.ValidCount())

	for _, j := range []Joint{LeftElbow, RightElbow, LeftKnee, RightKnee} {
		assert.InDelta(t, 180, set.Get(j).Degrees, 1e-6, j)
	}
}

func TestEngine_JointAngles_MissingKeypoints(t *testing.T) {
	t.Parallel()

	f := uprightFrame()
	delete(f.Keypoints, l1pose.LeftWrist)
	low := f.Keypoints[l1pose.RightAnkle]
	low.Visibility = 0.2
	f.Keypoints[l1pose.RightAnkle] = low

	set := NewEngine(DefaultConfig()).JointAngles(f)

	assert.False(t, set.Get(LeftElbow).Valid, "wrist missing")
	assert.False(t, set.Get(LeftWrist).Valid, "wrist is the vertex")
	assert.False(t, set.Get(RightKnee).Valid, "ankle below floor")
	assert.False(t, set.Get(RightAnkle).Valid)
	assert.True(t, set.Get(RightElbow).Valid)
	assert.Len(t, set, 12, "undefined joints are still reported")
}

func TestEngine_JointAngle_Unknown(t *testing.T) {
	t.Parallel()

	_, err := NewEngine(DefaultConfig()).JointAngle(uprightFrame(), Joint("tail"))
	assert.Error(t, err)
}

func TestEngine_PrefersWorldCoordinates(t *testing.T) {
	t.Parallel()

	// Image coordinates describe a straight arm; world coordinates a right angle.
	f := frameOf(map[l1pose.Landmark]l1pose.Keypoint{
		l1pose.LeftShoulder: {X: 0, Y: 0, Visibility: 1, World: &l1pose.Vec3{X: 0, Y: 0}},
		l1pose.LeftElbow:    {X: 1, Y: 0, Visibility: 1, World: &l1pose.Vec3{X: 1, Y: 0}},
		l1pose.LeftWrist:    {X: 2, Y: 0, Visibility: 1, World: &l1pose.Vec3{X: 1, Y: 1}},
	})

	world := NewEngine(DefaultConfig())
	a, err := world.JointAngle(f, LeftElbow)
	require.NoError(t, err)
	assert.InDelta(t, 90, a.Degrees, 1e-6)

	cfg := DefaultConfig()
	cfg.PreferWorld = false
	a, err = NewEngine(cfg).JointAngle(f, LeftElbow)
	require.NoError(t, err)
	assert.InDelta(t, 180, a.Degrees, 1e-6)

	// A single landmark without world coordinates forces image space.
	wrist := f.Keypoints[l1pose.LeftWrist]
	wrist.World = nil
	f.Keypoints[l1pose.LeftWrist] = wrist
	a, _ = world.JointAngle(f, LeftElbow)
	assert.InDelta(t, 180, a.Degrees, 1e-6)
}

func TestEngine_CustomAngle(t *testing.T) {
	t.Parallel()

	e := NewEngine(DefaultConfig())
	a := e.CustomAngle(uprightFrame(), l1pose.LeftShoulder, l1pose.LeftHip, l1pose.LeftKnee)
	require.True(t, a.Valid)
	assert.Greater(t, a.Degrees, 150.0)

	a = e.CustomAngle(uprightFrame(), l1pose.LeftShoulder, l1pose.LeftPinky, l1pose.LeftKnee)
	assert.False(t, a.Valid)
}

func TestConfigFromTuning(t *testing.T) {
	t.Parallel()

	floor := 0.8
	cfg := ConfigFromTuning(&config.TuningConfig{ConfidenceFloor: &floor})
	assert.Equal(t, 0.8, cfg.ConfidenceFloor)
	assert.True(t, cfg.PreferWorld)
	assert.Equal(t, 0.01, cfg.MinSpineExtent)
}

// -----------------------------------------------------------------------------
// Posture metrics
// -----------------------------------------------------------------------------

func TestPosture_Upright(t *testing.T) {
	t.Parallel()

	m := NewEngine(DefaultConfig()).Posture(uprightFrame())
	require.Len(t, m, len(Metrics))

	for _, metric := range Metrics {
		a := m.Get(metric)
		require.True(t, a.Valid, metric)
		assert.InDelta(t, 0, a.Degrees, 1e-6, metric)
	}
}

func TestPosture_Tilts(t *testing.T) {
	t.Parallel()

	f := uprightFrame()
	// Right shoulder lower in the image than the left.
	f.Keypoints[l1pose.RightShoulder] = kp(0.60, 0.40)

	a := NewEngine(DefaultConfig()).ShoulderTilt(f)
	require.True(t, a.Valid)
	assert.InDelta(t, 45, a.Degrees, 1e-6)

	// Swapping sides reports a tilt in (-90, 90], not near 180.
	f.Keypoints[l1pose.LeftShoulder], f.Keypoints[l1pose.RightShoulder] =
		f.Keypoints[l1pose.RightShoulder], f.Keypoints[l1pose.LeftShoulder]
	a = NewEngine(DefaultConfig()).ShoulderTilt(f)
	require.True(t, a.Valid)
	assert.Greater(t, a.Degrees, -90.0)
	assert.LessOrEqual(t, a.Degrees, 90.0)
}

func TestPosture_HeadTiltFallsBackToEars(t *testing.T) {
	t.Parallel()

	f := uprightFrame()
	delete(f.Keypoints, l1pose.LeftEye)
	f.Keypoints[l1pose.RightEar] = kp(0.54, 0.13)

	a := NewEngine(DefaultConfig()).HeadTilt(f)
	require.True(t, a.Valid)
	assert.InDelta(t, 26.565, a.Degrees, 1e-3)

	delete(f.Keypoints, l1pose.LeftEar)
	assert.False(t, NewEngine(DefaultConfig()).HeadTilt(f).Valid)
}

func TestPosture_LeanAndSpine(t *testing.T) {
	t.Parallel()

	f := uprightFrame()
	// Shift the shoulders 0.3 to the right of the hips, 0.3 above.
	f.Keypoints[l1pose.LeftShoulder] = kp(0.75, 0.20)
	f.Keypoints[l1pose.RightShoulder] = kp(0.85, 0.20)

	e := NewEngine(DefaultConfig())
	lean := e.BodyLean(f)
	require.True(t, lean.Valid)
	assert.InDelta(t, 45, lean.Degrees, 1e-6)

	spine := e.SpineCurve(f)
	require.True(t, spine.Valid)
	assert.InDelta(t, 45, spine.Degrees, 1e-6)

	// Leaning the other way flips the lean but not the spine curve.
	f.Keypoints[l1pose.LeftShoulder] = kp(0.15, 0.20)
	f.Keypoints[l1pose.RightShoulder] = kp(0.25, 0.20)
	assert.InDelta(t, -45, e.BodyLean(f).Degrees, 1e-6)
	assert.InDelta(t, 45, e.SpineCurve(f).Degrees, 1e-6)
}

func TestPosture_SpineCurveNeedsVerticalExtent(t *testing.T) {
	t.Parallel()

	f := uprightFrame()
	f.Keypoints[l1pose.LeftShoulder] = kp(0.20, 0.500)
	f.Keypoints[l1pose.RightShoulder] = kp(0.30, 0.505)

	e := NewEngine(DefaultConfig())
	assert.False(t, e.SpineCurve(f).Valid)
	assert.True(t, e.BodyLean(f).Valid, "lean is still defined for a horizontal torso")
}

func TestPosture_NeckAngle(t *testing.T) {
	t.Parallel()

	f := uprightFrame()
	// Ears forward of the shoulders by the same distance as their height.
	f.Keypoints[l1pose.LeftEar] = kp(0.56, 0.10)
	f.Keypoints[l1pose.RightEar] = kp(0.64, 0.10)

	e := NewEngine(DefaultConfig())
	a := e.NeckAngle(f)
	require.True(t, a.Valid)
	assert.InDelta(t, 45, a.Degrees, 1e-6)

	// Without ears the nose stands in.
	delete(f.Keypoints, l1pose.RightEar)
	a = e.NeckAngle(f)
	require.True(t, a.Valid)
	assert.InDelta(t, 0, a.Degrees, 1e-6)

	delete(f.Keypoints, l1pose.Nose)
	assert.False(t, e.NeckAngle(f).Valid)
}

func TestPosture_EmptyFrame(t *testing.T) {
	t.Parallel()

	m := NewEngine(DefaultConfig()).Posture(l1pose.PoseFrame{})
	for _, metric := range Metrics {
		assert.False(t, m.Get(metric).Valid, metric)
	}
}

func TestAngleSet_Helpers(t *testing.T) {
	t.Parallel()

	s := AngleSet{RightKnee: Defined(10), LeftElbow: Undefined}
	c := s.Clone()
	c[RightKnee] = Defined(99)
	assert.Equal(t, 10.0, s.Get(RightKnee).Degrees)
	assert.Equal(t, []Joint{LeftElbow, RightKnee}, s.SortedJoints())
	assert.Equal(t, 1, s.ValidCount())
	assert.False(t, s.Get(LeftAnkle).Valid)
	assert.Nil(t, AngleSet(nil).Clone())
}
