// Package secrets implements the at-rest encryption codec for the credential
// store's persisted blob.
//
// A Codec seals arbitrary JSON-serializable values: the value is serialized
// to canonical JSON, sealed with AES-256-GCM, and the nonce-prefixed
// ciphertext is base64-encoded so all data needed to open it is
// self-contained in one string. Opening is the exact inverse; the round-trip
// DecryptJSON(EncryptJSON(x)) reproduces x for any JSON-serializable x.
//
// The AES sealing key is expanded from a 32-byte master key via HKDF-SHA-256
// with a fixed domain-separation string, so the raw configured key is never
// used directly as cipher material. The master key is a process-wide
// configuration value (SECRETS_ENCRYPTION_KEY, base64); cmd/keygen prints a
// fresh one.
//
// Malformed or tampered ciphertext never panics: DecryptJSON reports
// ErrInvalidCiphertext or ErrDecryptionFailed, which the credential store
// treats as "cannot recover" and falls back to an empty store. Inspect
// failures with errors.Is against the package sentinels.
package secrets
