package secrets

import "errors"

var (
	// Key errors
	ErrInvalidKeyLength    = errors.New("invalid key length: must be 32 bytes")
	ErrKeyDerivationFailed = errors.New("key derivation failed")
	ErrFailedToGenerateKey = errors.New("failed to generate encryption key")
	ErrFailedToLoadKey     = errors.New("failed to load encryption key")
	ErrKeyNotSet           = errors.New("encryption key not set")

	// Sealing errors
	ErrEncryptionFailed  = errors.New("encryption failed")
	ErrDecryptionFailed  = errors.New("decryption failed")
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
)
