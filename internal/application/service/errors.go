package service

import "errors"

var (
	// ErrInvalidCredentials is returned for a failed login. The message is
	// identical for unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccessDenied is returned when the actor's role does not permit the
	// requested operation or record.
	ErrAccessDenied = errors.New("access denied")

	// ErrUnknownRole is returned when a user is created with a role outside
	// the supported set.
	ErrUnknownRole = errors.New("unknown role")
)
