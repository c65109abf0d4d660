package l5sequence

import "errors"

var (
	// ErrSequenceTooShort is returned when a recording has fewer frames
	// than the configured minimum. Sequences are never padded.
	ErrSequenceTooShort = errors.New("sequence too short")

	// ErrSerializationCorrupt is returned for any blob that fails to decode.
	ErrSerializationCorrupt = errors.New("sequence data corrupt")

	// ErrNotRecording is returned by Append and End outside a recording window.
	ErrNotRecording = errors.New("recorder is not recording")

	// ErrAlreadyRecording is returned by Begin during a recording window.
	ErrAlreadyRecording = errors.New("recorder is already recording")

	// ErrTimestampRegression is returned by Append for a frame older than
	// the previous one. The frame is dropped.
	ErrTimestampRegression = errors.New("frame timestamp before previous frame")
)
