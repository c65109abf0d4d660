package l1pose

// Landmark names one anatomical keypoint in the fixed vocabulary.
type Landmark string

// The 33-point body vocabulary, in estimator output order.
const (
	Nose           Landmark = "nose"
	LeftEyeInner   Landmark = "left_eye_inner"
	LeftEye        Landmark = "left_eye"
	LeftEyeOuter   Landmark = "left_eye_outer"
	RightEyeInner  Landmark = "right_eye_inner"
	RightEye       Landmark = "right_eye"
	RightEyeOuter  Landmark = "right_eye_outer"
	LeftEar        Landmark = "left_ear"
	RightEar       Landmark = "right_ear"
	MouthLeft      Landmark = "mouth_left"
	MouthRight     Landmark = "mouth_right"
	LeftShoulder   Landmark = "left_shoulder"
	RightShoulder  Landmark = "right_shoulder"
	LeftElbow      Landmark = "left_elbow"
	RightElbow     Landmark = "right_elbow"
	LeftWrist      Landmark = "left_wrist"
	RightWrist     Landmark = "right_wrist"
	LeftPinky      Landmark = "left_pinky"
	RightPinky     Landmark = "right_pinky"
	LeftIndex      Landmark = "left_index"
	RightIndex     Landmark = "right_index"
	LeftThumb      Landmark = "left_thumb"
	RightThumb     Landmark = "right_thumb"
	LeftHip        Landmark = "left_hip"
	RightHip       Landmark = "right_hip"
	LeftKnee       Landmark = "left_knee"
	RightKnee      Landmark = "right_knee"
	LeftAnkle      Landmark = "left_ankle"
	RightAnkle     Landmark = "right_ankle"
	LeftHeel       Landmark = "left_heel"
	RightHeel      Landmark = "right_heel"
	LeftFootIndex  Landmark = "left_foot_index"
	RightFootIndex Landmark = "right_foot_index"
)

// Vocabulary lists every landmark in estimator output order.
var Vocabulary = []Landmark{
	Nose,
	LeftEyeInner, LeftEye, LeftEyeOuter,
	RightEyeInner, RightEye, RightEyeOuter,
	LeftEar, RightEar,
	MouthLeft, MouthRight,
	LeftShoulder, RightShoulder,
	LeftElbow, RightElbow,
	LeftWrist, RightWrist,
	LeftPinky, RightPinky,
	LeftIndex, RightIndex,
	LeftThumb, RightThumb,
	LeftHip, RightHip,
	LeftKnee, RightKnee,
	LeftAnkle, RightAnkle,
	LeftHeel, RightHeel,
	LeftFootIndex, RightFootIndex,
}

var known = func() map[Landmark]struct{} {
	m := make(map[Landmark]struct{}, len(Vocabulary))
	for _, l := range Vocabulary {
		m[l] = struct{}{}
	}
	return m
}()

// Known reports whether l is part of the vocabulary.
func Known(l Landmark) bool {
	_, ok := known[l]
	return ok
}
