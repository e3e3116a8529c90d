package errs

import "errors"

// Caller-facing error kinds. Every expected failure of a booking-engine
// operation is Marked onto exactly one of these so handlers can map the
// kind to a response without inspecting messages.
var (
	// ErrNotFound: boat, crew member or booking does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition: the requested status change is not an edge of
	// the booking state machine from the current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConflictDetected: the requested interval overlaps a non-terminal
	// booking holding the same boat or crew member.
	ErrConflictDetected = errors.New("scheduling conflict detected")

	// ErrPolicyViolation: a business rule outside the state machine was
	// violated (cancellation cutoff, capacity, start time in the past,
	// crew inactive or belonging to another merchant, rating rules).
	ErrPolicyViolation = errors.New("policy violation")

	// ErrForbidden: the caller lacks the required relationship to the
	// resource (wrong owner, merchant or crew member).
	ErrForbidden = errors.New("forbidden")
)
