package domain

import "errors"

var (
	// ErrNoBackgroundFrame means the capture source ended before yielding
	// the initial frame the filter needs as its reference.
	ErrNoBackgroundFrame = errors.New("capture source yielded no background frame")

	// ErrGeometryMismatch means background and current frame differ in
	// pixel count. Both always originate from the same capture session,
	// so this is an invariant violation, not a runtime condition.
	ErrGeometryMismatch = errors.New("background and current frame geometry mismatch")

	ErrSourceNotStarted = errors.New("capture source not started")
)
