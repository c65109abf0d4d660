package session

import "errors"

var (
	// ErrNoReferenceAvailable is returned by StartPractice before a
	// reference has been recorded or loaded.
	ErrNoReferenceAvailable = errors.New("no reference sequence available")

	// ErrInvalidTransition is returned for operations not allowed in the
	// current state.
	ErrInvalidTransition = errors.New("invalid session transition")
)
