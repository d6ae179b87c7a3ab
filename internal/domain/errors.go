package domain

import "errors"

// Error taxonomy surfaced by the auth core. Handlers map these to HTTP
// statuses; anything not in this list is an internal failure.
var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("authentication required")
)
