package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a write collides with a uniqueness
	// constraint (user email, room building+number, session token).
	ErrDuplicate = errors.New("persistence: duplicate")
	// ErrUnavailable is returned when the underlying store cannot be
	// reached or a batched write failed after rollback. Callers may retry
	// the whole request; no partial group mutation is left behind.
	ErrUnavailable = errors.New("persistence: store unavailable")
)
