// Package l4reps owns Layer 4 (Interpretation) of the motion data model.
//
// Responsibilities: hysteresis repetition counting, the exercise table,
// per-exercise form checks, and posture rules evaluated against a
// calibration baseline.
// Key types: Counter, Exercise, ExerciseTracker, Rule, PostureMonitor.
//
// Dependency rule: L4 may depend on L1, L2 and L3.
package l4reps
