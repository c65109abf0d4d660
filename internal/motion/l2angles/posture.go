package l2angles

import (
	"math"

	"github.com/banshee-data/motion.report/internal/motion/l1pose"
)

// Metric names a whole-body posture measurement.
type Metric string

const (
	HeadTilt     Metric = "head_tilt"     // eye line from horizontal, (-90, 90]
	NeckAngle    Metric = "neck_angle"    // shoulder->ear line from vertical, [0, 90]
	BodyLean     Metric = "body_lean"     // hip->shoulder line from vertical, signed, +x positive
	ShoulderTilt Metric = "shoulder_tilt" // shoulder line from horizontal, (-90, 90]
	HipTilt      Metric = "hip_tilt"      // hip line from horizontal, (-90, 90]
	SpineCurve   Metric = "spine_curve"   // hip->shoulder line from vertical, unsigned, [0, 90]
)

// Metrics lists every posture metric in a stable order.
var Metrics = []Metric{HeadTilt, NeckAngle, BodyLean, ShoulderTilt, HipTilt, SpineCurve}

// PostureMetrics maps posture metrics to their value for one frame.
type PostureMetrics map[Metric]Angle

// Get returns the value for m; a missing metric reads as Undefined.
func (p PostureMetrics) Get(m Metric) Angle {
	return p[m]
}

// pairTilt is the angle of the left->right vector from horizontal.
func (e *Engine) pairTilt(f l1pose.PoseFrame, left, right l1pose.Landmark) Angle {
	l, okL := f.Visible(left, e.cfg.ConfidenceFloor)
	r, okR := f.Visible(right, e.cfg.ConfidenceFloor)
	if !okL || !okR {
		return Undefined
	}
	dx := r.X - l.X
	dy := r.Y - l.Y
	if dx == 0 && dy == 0 {
		return Undefined
	}
	return Defined(foldHorizontal(degrees(math.Atan2(dy, dx))))
}

// midpoint returns the image-space midpoint of two visible landmarks.
func (e *Engine) midpoint(f l1pose.PoseFrame, a, b l1pose.Landmark) (l1pose.Vec3, bool) {
	ka, okA := f.Visible(a, e.cfg.ConfidenceFloor)
	kb, okB := f.Visible(b, e.cfg.ConfidenceFloor)
	if !okA || !okB {
		return l1pose.Vec3{}, false
	}
	return ka.Image().Mid(kb.Image()), true
}

// HeadTilt measures the eye line, falling back to the ears.
func (e *Engine) HeadTilt(f l1pose.PoseFrame) Angle {
	if a := e.pairTilt(f, l1pose.LeftEye, l1pose.RightEye); a.Valid {
		return a
	}
	return e.pairTilt(f, l1pose.LeftEar, l1pose.RightEar)
}

// ShoulderTilt measures the shoulder line.
func (e *Engine) ShoulderTilt(f l1pose.PoseFrame) Angle {
	return e.pairTilt(f, l1pose.LeftShoulder, l1pose.RightShoulder)
}

// HipTilt measures the hip line.
func (e *Engine) HipTilt(f l1pose.PoseFrame) Angle {
	return e.pairTilt(f, l1pose.LeftHip, l1pose.RightHip)
}

// torso returns the hip-mid -> shoulder-mid segment as (dx, up) where up
// is positive when the shoulders are above the hips.
func (e *Engine) torso(f l1pose.PoseFrame) (dx, up float64, ok bool) {
	s, okS := e.midpoint(f, l1pose.LeftShoulder, l1pose.RightShoulder)
	h, okH := e.midpoint(f, l1pose.LeftHip, l1pose.RightHip)
	if !okS || !okH {
		return 0, 0, false
	}
	return s.X - h.X, h.Y - s.Y, true
}

// BodyLean is the signed deviation of the torso from vertical.
func (e *Engine) BodyLean(f l1pose.PoseFrame) Angle {
	dx, up, ok := e.torso(f)
	if !ok || (dx == 0 && up == 0) {
		return Undefined
	}
	return Defined(degrees(math.Atan2(dx, up)))
}

// SpineCurve is the unsigned deviation of the torso from a straight
// vertical reference. Undefined when the torso is too short vertically.
func (e *Engine) SpineCurve(f l1pose.PoseFrame) Angle {
	dx, up, ok := e.torso(f)
	if !ok || math.Abs(up) < e.cfg.MinSpineExtent {
		return Undefined
	}
	return Defined(degrees(math.Atan2(math.Abs(dx), math.Abs(up))))
}

// NeckAngle is the angle between the shoulder-mid -> ear-mid vector and
// vertical, using the nose when the ears are not both visible.
func (e *Engine) NeckAngle(f l1pose.PoseFrame) Angle {
	s, ok := e.midpoint(f, l1pose.LeftShoulder, l1pose.RightShoulder)
	if !ok {
		return Undefined
	}
	head, ok := e.midpoint(f, l1pose.LeftEar, l1pose.RightEar)
	if !ok {
		nose, okN := f.Visible(l1pose.Nose, e.cfg.ConfidenceFloor)
		if !okN {
			return Undefined
		}
		head = nose.Image()
	}
	dx := head.X - s.X
	dy := s.Y - head.Y
	if dx == 0 && dy == 0 {
		return Undefined
	}
	return Defined(degrees(math.Atan2(math.Abs(dx), math.Abs(dy))))
}

// Posture computes every posture metric for the frame.
func (e *Engine) Posture(f l1pose.PoseFrame) PostureMetrics {
	return PostureMetrics{
		HeadTilt:     e.HeadTilt(f),
		NeckAngle:    e.NeckAngle(f),
		BodyLean:     e.BodyLean(f),
		ShoulderTilt: e.ShoulderTilt(f),
		HipTilt:      e.HipTilt(f),
		SpineCurve:   e.SpineCurve(f),
	}
}
