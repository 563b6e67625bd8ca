package domain

import "errors"

// Failure taxonomy shared by the stores, the services and the API layer.
// Services wrap these with context via fmt.Errorf("...: %w", err); callers
// match with errors.Is.
var (
	// ErrNotFound: a referenced user, item, booking or request does not exist.
	ErrNotFound = errors.New("object not found")

	// ErrForbidden: the acting user lacks the required relationship
	// (not the owner, not the booker).
	ErrForbidden = errors.New("operation forbidden")

	// ErrInvalidRange: booking end is not strictly after its start.
	ErrInvalidRange = errors.New("invalid booking period")

	// ErrInvalidState: the action conflicts with the current state — the item
	// is unavailable, the booking is already decided, or the comment author
	// has no completed booking.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidArgument: a malformed input, e.g. an unknown state filter.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAlreadyExists: uniqueness violation, e.g. a duplicate user email.
	ErrAlreadyExists = errors.New("object already exists")
)
