package domain

import "errors"

// Sentinel errors for the sandbox core. Callers match with errors.Is;
// none of these are fatal to the process.
var (
	// ErrNotFound indicates an unknown mission, subtask, or session.
	// Recoverable: the caller should re-fetch or recreate.
	ErrNotFound = errors.New("not found")

	// ErrQuotaExceeded indicates the session is not allowed to use AI,
	// either because it never opted in or because a quota ceiling was hit.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrInvalidState indicates a policy violation, such as operating on
	// a mission owned by a different user.
	ErrInvalidState = errors.New("invalid state")
)
