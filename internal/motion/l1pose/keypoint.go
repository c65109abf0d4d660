package l1pose

// Vec3 is a point or vector. 2D data leaves Z at zero.
type Vec3 struct {
	X, Y, Z float64
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Mid returns the midpoint of v and o.
func (v Vec3) Mid(o Vec3) Vec3 {
	return Vec3{(v.X + o.X) / 2, (v.Y + o.Y) / 2, (v.Z + o.Z) / 2}
}

// Keypoint is a single landmark detection. X and Y are normalised image
// coordinates (y grows downward); Z is estimator depth when HasZ is set.
// World holds metric world coordinates when the estimator provides them.
type Keypoint struct {
	X, Y, Z    float64
	HasZ       bool
	Visibility float64 // [0, 1]
	Presence   float64 // [0, 1]
	World      *Vec3
}

// Image returns the image-space position, zero padding Z for 2D input.
func (k Keypoint) Image() Vec3 {
	if !k.HasZ {
		return Vec3{X: k.X, Y: k.Y}
	}
	return Vec3{X: k.X, Y: k.Y, Z: k.Z}
}

// PoseFrame is one estimator output. A landmark missing from Keypoints is
// absent for this frame. Frames are read-only to the motion layers.
type PoseFrame struct {
	Keypoints      map[Landmark]Keypoint
	TimestampNanos int64
	Confidence     float64
}

// Keypoint returns the detection for l, if present.
func (f PoseFrame) Keypoint(l Landmark) (Keypoint, bool) {
	if f.Keypoints == nil {
		return Keypoint{}, false
	}
	k, ok := f.Keypoints[l]
	return k, ok
}

// Visible returns the keypoint for l only when it is present with
// visibility at or above floor.
func (f PoseFrame) Visible(l Landmark, floor float64) (Keypoint, bool) {
	k, ok := f.Keypoint(l)
	if !ok || k.Visibility < floor {
		return Keypoint{}, false
	}
	return k, true
}

// Valid reports whether the frame carries any keypoints and meets the
// overall detection confidence.
func (f PoseFrame) Valid(minConfidence float64) bool {
	return f.Confidence >= minConfidence && len(f.Keypoints) > 0
}
