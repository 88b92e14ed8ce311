package clients

import "errors"

var (
	ErrUsernameTaken   = errors.New("username already in use")
	ErrClientNotFound  = errors.New("client not found")
	ErrNothingToUpdate = errors.New("nothing to update")
	ErrSelfDelete      = errors.New("cannot delete own account")
)
