package totp

import "errors"

var (
	ErrFailedToGenerateSecret     = errors.New("failed to generate TOTP secret")
	ErrFailedToGenerateCode       = errors.New("failed to generate TOTP code")
	ErrMissingSecret              = errors.New("missing secret")
	ErrInvalidSecret              = errors.New("invalid secret")
	ErrMissingAccountName         = errors.New("missing account name")
	ErrMissingIssuer              = errors.New("missing issuer")
	ErrInvalidBackupCodeCount     = errors.New("invalid backup code count, must be greater than 0")
	ErrFailedToGenerateBackupCode = errors.New("failed to generate backup code")
)
