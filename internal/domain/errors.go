package domain

import "errors"

// Error taxonomy for the request pipeline. Handlers wrap these with
// detail via fmt.Errorf("...: %w", ...) so callers can classify with
// errors.Is without parsing messages.
var (
	// ErrValidation marks bad or missing input. Never retried; the
	// message is reported verbatim to the caller.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a lookup miss, e.g. an unknown city.
	ErrNotFound = errors.New("not found")

	// ErrProviderUnavailable marks a transient upstream failure.
	// Not retried; callers degrade where policy allows.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrUnsafeQuery marks a synthesized SQL statement that failed the
	// safety gate. The statement is never executed.
	ErrUnsafeQuery = errors.New("unsafe query rejected")

	// ErrExecution marks a storage-level failure during a validated
	// query or insert. Fatal for the request.
	ErrExecution = errors.New("execution error")

	// ErrSlotTaken is returned by the store when an insert loses the
	// race for a (meeting_date, meeting_time) slot.
	ErrSlotTaken = errors.New("time slot already taken")
)
