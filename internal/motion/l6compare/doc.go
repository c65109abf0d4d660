// Package l6compare owns Layer 6 (Comparison) of the motion data model.
//
// Responsibilities: per-joint dynamic time warping between a reference
// and a candidate sequence, mapping of the length-normalised distance to
// a bounded 0..100 score, aggregation into an overall score, and the
// cheap unaligned live feedback used while practising.
// Key types: Comparer, Report, JointReport, LiveFeedback.
//
// Dependency rule: L6 may depend on L1..L5. Input sequences are frozen
// and never modified.
package l6compare
