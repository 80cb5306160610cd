package totp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
)

// GenerateBackupCodes creates cryptographically secure single-use codes for
// users who permanently lose access to their authenticator device.
// Each code is a 16-character hexadecimal string (64 bits of entropy).
func GenerateBackupCodes(count int) ([]string, error) {
	if count < 1 {
		return nil, ErrInvalidBackupCodeCount
	}

	codes := make([]string, count)
	for i := 0; i < count; i++ {
		codeBytes := make([]byte, 8)
		if _, err := rand.Read(codeBytes); err != nil {
			return nil, errors.Join(ErrFailedToGenerateBackupCode, err)
		}
		codes[i] = fmt.Sprintf("%X", codeBytes)
	}
	return codes, nil
}

// HashBackupCode creates a SHA-256 hash for secure storage of backup codes.
func HashBackupCode(code string) string {
	hash := sha256.Sum256([]byte(code))
	return hex.EncodeToString(hash[:])
}

// VerifyBackupCode compares a presented code against its stored hash in
// constant time so comparison duration reveals nothing about the mismatch.
func VerifyBackupCode(code, hashedCode string) bool {
	computed := HashBackupCode(code)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hashedCode)) == 1
}
