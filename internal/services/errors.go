package services

import "errors"

// Expected auth failure conditions. Handlers map these to HTTP statuses with
// errors.Is; anything else bubbling out of a service is treated as an
// internal error.
var (
	// ErrInvalidCredentials covers both unknown username and wrong
	// password. The two causes must stay indistinguishable to callers so
	// login cannot be used to enumerate usernames.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidRole is returned by Register for roles outside
	// {student, teacher}.
	ErrInvalidRole = errors.New("invalid role")
)
