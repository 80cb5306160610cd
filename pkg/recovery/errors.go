package recovery

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrTokenInvalid = errors.New("invalid recovery token")
	ErrTokenExpired = errors.New("recovery token expired")
	ErrTokenUsed    = errors.New("recovery token already used")
)
