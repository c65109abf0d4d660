package l2angles

import (
	"sort"

	"github.com/banshee-data/motion.report/internal/motion/l1pose"
)

// Joint names a catalogued joint angle.
type Joint string

const (
	LeftElbow     Joint = "left_elbow"
	RightElbow    Joint = "right_elbow"
	LeftShoulder  Joint = "left_shoulder"
	RightShoulder Joint = "right_shoulder"
	LeftWrist     Joint = "left_wrist"
	RightWrist    Joint = "right_wrist"
	LeftHip       Joint = "left_hip"
	RightHip      Joint = "right_hip"
	LeftKnee      Joint = "left_knee"
	RightKnee     Joint = "right_knee"
	LeftAnkle     Joint = "left_ankle"
	RightAnkle    Joint = "right_ankle"
)

// Triple is the (A, vertex, C) landmark definition of a joint angle.
type Triple struct {
	A, Vertex, C l1pose.Landmark
}

// Catalogue maps each joint to its defining landmarks.
var Catalogue = map[Joint]Triple{
	LeftElbow:     {l1pose.LeftShoulder, l1pose.LeftElbow, l1pose.LeftWrist},
	RightElbow:    {l1pose.RightShoulder, l1pose.RightElbow, l1pose.RightWrist},
	LeftShoulder:  {l1pose.LeftElbow, l1pose.LeftShoulder, l1pose.LeftHip},
	RightShoulder: {l1pose.RightElbow, l1pose.RightShoulder, l1pose.RightHip},
	LeftWrist:     {l1pose.LeftElbow, l1pose.LeftWrist, l1pose.LeftIndex},
	RightWrist:    {l1pose.RightElbow, l1pose.RightWrist, l1pose.RightIndex},
	LeftHip:       {l1pose.LeftShoulder, l1pose.LeftHip, l1pose.LeftKnee},
	RightHip:      {l1pose.RightShoulder, l1pose.RightHip, l1pose.RightKnee},
	LeftKnee:      {l1pose.LeftHip, l1pose.LeftKnee, l1pose.LeftAnkle},
	RightKnee:     {l1pose.RightHip, l1pose.RightKnee, l1pose.RightAnkle},
	LeftAnkle:     {l1pose.LeftKnee, l1pose.LeftAnkle, l1pose.LeftFootIndex},
	RightAnkle:    {l1pose.RightKnee, l1pose.RightAnkle, l1pose.RightFootIndex},
}

// Joints lists the catalogue in a stable order.
var Joints = []Joint{
	LeftElbow, RightElbow,
	LeftShoulder, RightShoulder,
	LeftWrist, RightWrist,
	LeftHip, RightHip,
	LeftKnee, RightKnee,
	LeftAnkle, RightAnkle,
}

// ParseJoint validates a joint name against the catalogue.
func ParseJoint(name string) (Joint, bool) {
	j := Joint(name)
	_, ok := Catalogue[j]
	return j, ok
}

// AngleSet maps joints to their angle for one frame. A joint whose
// landmarks were insufficient is present and Undefined.
type AngleSet map[Joint]Angle

// Get returns the angle for j; a missing joint reads as Undefined.
func (s AngleSet) Get(j Joint) Angle {
	return s[j]
}

// Clone returns an independent copy.
func (s AngleSet) Clone() AngleSet {
	if s == nil {
		return nil
	}
	out := make(AngleSet, len(s))
	for j, a := range s {
		out[j] = a
	}
	return out
}

// ValidCount returns the number of defined angles.
func (s AngleSet) ValidCount() int {
	n := 0
	for _, a := range s {
		if a.Valid {
			n++
		}
	}
	return n
}

// SortedJoints returns the joints present in s in lexical order.
func (s AngleSet) SortedJoints() []Joint {
	out := make([]Joint, 0, len(s))
	for j := range s {
		out = append(out, j)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}
