// Package l1pose owns Layer 1 (Pose) of the motion data model.
//
// Responsibilities: the fixed landmark vocabulary, the Keypoint and
// PoseFrame input types produced by an external pose estimator, and a
// JSON-lines decoder for recorded estimator output.
// Key types: Landmark, Keypoint, PoseFrame, FrameDecoder.
//
// Dependency rule: L1 depends on nothing else in internal/motion.
package l1pose
