// Package l2angles owns Layer 2 (Angles) of the motion data model: the
// geometry engine.
//
// Responsibilities: the vertex angle of three points, the fixed catalogue
// of twelve joint definitions, and whole-body posture metrics (tilts,
// lean, spine curve, neck angle). Insufficient keypoints produce an
// explicitly undefined Angle, never a fabricated zero.
// Key types: Angle, Joint, AngleSet, Metric, PostureMetrics, Engine.
//
// Dependency rule: L2 may depend on L1 only.
package l2angles
