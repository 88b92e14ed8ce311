package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionInvalid     = errors.New("session invalid or expired")
	ErrSessionCreate      = errors.New("failed to create session")
	ErrWrongPassword      = errors.New("current password does not match")
)
