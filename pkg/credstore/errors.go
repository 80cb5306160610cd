package credstore

import "errors"

// Expected business outcomes. Callers branch on these with errors.Is; none
// of them indicate a fault in the store itself.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("no authenticated session")
	ErrUnauthorized       = errors.New("unauthorized")
)

// MFA flow outcomes
var (
	ErrMFARequired   = errors.New("one-time code required to complete login")
	ErrMFANotEnabled = errors.New("MFA not enabled for user")
	ErrMFANotPending = errors.New("no MFA enrollment in progress")
)

// Storage errors
var (
	ErrBlobNotFound = errors.New("persisted blob not found")
	ErrStorageWrite = errors.New("failed to write persisted blob")
	ErrStorageRead  = errors.New("failed to read persisted blob")
)
