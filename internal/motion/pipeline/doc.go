// Package pipeline is the frame-driven composition root of the motion
// stack.
//
// It wires the Geometry Engine (L2), the exercise trackers and posture
// monitor (L3/L4) and the coaching session controller (L5/L6) into one
// per-frame flow. The pipeline does not own domain logic; it delegates
// to layer packages and to optional sinks.
//
// Missing or bad data never aborts processing: a frame that cannot be
// measured produces undefined angles, and session errors are logged and
// reported on the frame.
package pipeline
