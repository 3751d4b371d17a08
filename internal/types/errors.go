package types

import "errors"

// Domain error taxonomy. Handlers match these with errors.Is to pick status
// codes; everything else is treated as an internal error.
var (
	// ErrValidation indicates a malformed or missing required field.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two cases are deliberately indistinguishable to callers.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated covers missing, malformed, tampered and expired
	// tokens, and tokens that reference a user that no longer exists.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrNotFound indicates a lookup miss on a persistent record.
	ErrNotFound = errors.New("requested item not found")

	// ErrConflict indicates a unique-constraint violation (duplicate email).
	ErrConflict = errors.New("item already exists or conflict")

	// ErrStoreUnavailable indicates a transient storage failure. It is
	// propagated unchanged so operators can tell it apart from auth denials.
	ErrStoreUnavailable = errors.New("store unavailable")
)
