package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
)

// Codec seals and opens JSON-serializable values with AES-256-GCM.
// A single Codec holds one sealing key for its lifetime; the credential
// store owns one Codec for its persisted blob.
type Codec struct {
	key []byte
}

// NewCodec derives the sealing key from the configured master key and
// returns a ready Codec. The master key must be exactly 32 bytes.
func NewCodec(masterKey []byte) (*Codec, error) {
	key, err := deriveKey(masterKey)
	if err != nil {
		return nil, err
	}
	return &Codec{key: key}, nil
}

// EncryptJSON serializes v to canonical JSON and seals it.
// Returns the nonce-prefixed ciphertext as a base64-encoded string.
func (c *Codec) EncryptJSON(v any) (string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	ciphertext := aesGCM.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptJSON opens a ciphertext produced by EncryptJSON and unmarshals the
// recovered JSON into out. Malformed or tampered input yields a sentinel
// error (ErrInvalidCiphertext or ErrDecryptionFailed), never a panic, so
// callers can treat any failure as "cannot recover" and fall back.
func (c *Codec) DecryptJSON(ciphertextBase64 string, out any) error {
	ciphertext, err := base64.StdEncoding.DecodeString(ciphertextBase64)
	if err != nil {
		return errors.Join(ErrInvalidCiphertext, err)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return errors.Join(ErrDecryptionFailed, err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return errors.Join(ErrDecryptionFailed, err)
	}

	nonceSize := aesGCM.NonceSize()
	if len(ciphertext) < nonceSize {
		return ErrInvalidCiphertext
	}
	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return errors.Join(ErrDecryptionFailed, err)
	}

	if err := json.Unmarshal(plaintext, out); err != nil {
		return errors.Join(ErrDecryptionFailed, err)
	}
	return nil
}
