// Package l5sequence owns Layer 5 (Sequences) of the motion data model.
//
// Responsibilities: capturing an ordered, timestamped run of angle sets
// inside an explicit recording window, freezing it into an immutable
// Sequence, and the exact binary round-trip used for files and the
// sequence library.
// Key types: Frame, Sequence, Recorder.
//
// Dependency rule: L5 may depend on L1 and L2. Angles are stored as
// computed; smoothing (L3) is a live-only concern.
package l5sequence
