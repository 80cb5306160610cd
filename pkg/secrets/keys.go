package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the required master key size: 256 bits for AES-256.
	KeySize = 32

	// saltInfo provides domain separation for HKDF key derivation, so the
	// same master key never yields the same sealing key in another context.
	saltInfo = "identitykit-credstore-v1"
)

// deriveKey expands the master key into the AES sealing key using
// HKDF-SHA-256.
func deriveKey(masterKey []byte) ([]byte, error) {
	if len(masterKey) != KeySize {
		return nil, ErrInvalidKeyLength
	}

	hkdfReader := hkdf.New(sha256.New, masterKey, nil, []byte(saltInfo))

	derived := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdfReader, derived); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return derived, nil
}

// GenerateKey creates a new random 32-byte master key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Join(ErrFailedToGenerateKey, err)
	}
	return key, nil
}

// GenerateEncodedKey creates a new random master key as a base64-encoded
// string suitable for the SECRETS_ENCRYPTION_KEY environment variable.
func GenerateEncodedKey() (string, error) {
	key, err := GenerateKey()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// DecodeKey decodes a base64-encoded master key and validates its length.
func DecodeKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadKey, err)
	}
	if len(key) != KeySize {
		return nil, errors.Join(ErrFailedToLoadKey, ErrInvalidKeyLength)
	}
	return key, nil
}
