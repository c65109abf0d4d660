// Package testutil provides shared test fixtures: synthetic pose frames
// with controllable joint angles and synthetic angle sequences.
package testutil

import (
	"math"
	"testing"

	"github.com/banshee-data/motion.report/internal/motion/l1pose"
	"github.com/banshee-data/motion.report/internal/motion/l2angles"
	"github.com/banshee-data/motion.report/internal/motion/l5sequence"
)

// FrameNanos is the frame spacing of the synthetic streams (30 fps).
const FrameNanos = int64(33_333_333)

// shinLength is the hip->knee and knee->ankle length in image units.
const shinLength = 0.2

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func kp(x, y float64) l1pose.Keypoint {
	return l1pose.Keypoint{X: x, Y: y, Visibility: 1, Presence: 1}
}

// StandingPose returns an upright, camera-facing figure with straight
// limbs and level shoulders and hips. Image y grows downward.
func StandingPose(tsNanos int64) l1pose.PoseFrame {
	return l1pose.PoseFrame{
		TimestampNanos: tsNanos,
		Confidence:     1,
		Keypoints: map[l1pose.Landmark]l1pose.Keypoint{
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
		},
	}
}

// PoseWithKnees returns StandingPose with both knees bent to kneeDeg.
func PoseWithKnees(kneeDeg float64, tsNanos int64) l1pose.PoseFrame {
	f := StandingPose(tsNanos)
	rad := kneeDeg * math.Pi / 180
	for _, leg := range [][2]l1pose.Landmark{
		{l1pose.LeftKnee, l1pose.LeftAnkle},
		{l1pose.RightKnee, l1pose.RightAnkle},
	} {
		knee := f.Keypoints[leg[0]]
		f.Keypoints[leg[1]] = kp(knee.X+shinLength*math.Sin(rad), knee.Y-shinLength*math.Cos(rad))
	}
	return f
}

// SquatStream returns a stream that rests at 170 degrees, then performs
// reps full squats down to 80 degrees. Each half-rep and each rest spans
// framesPerPhase frames.
func SquatStream(reps, framesPerPhase int) []l1pose.PoseFrame {
	const top, bottom = 170.0, 80.0
	var out []l1pose.PoseFrame
	ts := int64(0)
	emit := func(deg float64) {
		out = append(out, PoseWithKnees(deg, ts))
		ts += FrameNanos
	}
	for i := 0; i < framesPerPhase; i++ {
		emit(top)
	}
	for r := 0; r < reps; r++ {
		for i := 1; i <= framesPerPhase; i++ {
			emit(top + (bottom-top)*float64(i)/float64(framesPerPhase))
		}
		for i := 0; i < framesPerPhase; i++ {
			emit(bottom)
		}
		for i := 1; i <= framesPerPhase; i++ {
			emit(bottom + (top-bottom)*float64(i)/float64(framesPerPhase))
		}
		for i := 0; i < framesPerPhase; i++ {
			emit(top)
		}
	}
	return out
}

// SineAngles returns the angle set of frame i of a smooth synthetic
// movement: each joint follows a sine of its own phase, shifted by offset
// degrees.
func SineAngles(i int, offset float64, joints ...l2angles.Joint) l2angles.AngleSet {
	set := make(l2angles.AngleSet, len(joints))
	for k, j := range joints {
		set[j] = l2angles.Defined(120 + 40*math.Sin(float64(i)/4+float64(k)) + offset)
	}
	return set
}

// SineSequence builds an n-frame sequence of SineAngles.
func SineSequence(name string, n int, offset float64, joints ...l2angles.Joint) *l5sequence.Sequence {
	frames := make([]l5sequence.Frame, n)
	for i := range frames {
		frames[i] = l5sequence.Frame{Angles: SineAngles(i, offset, joints...), TimestampNanos: int64(i) * FrameNanos}
	}
	return l5sequence.New(name, frames)
}
