// Package passhash implements deterministic salted password digests for the
// credential store.
//
// Passwords are digested with SHA-256 over salt||password and stored as hex.
// Verification recomputes the digest and compares in constant time; plaintext
// passwords are never persisted and digests are never reversed.
//
// The salt is a process-wide configuration value (PASSHASH_SALT). A fixed
// salt is a known weakness of this scheme and is kept as a config value with
// an override point rather than a hardcoded constant, so deployments can
// rotate it without touching code. Callers that need per-user salts can pass
// a different salt per record without breaking the Hash/Verify contract.
//
// # Usage
//
//	cfg, _ := passhash.LoadConfig()
//	digest := passhash.Hash("s3cret", cfg.Salt)
//	ok := passhash.Verify("s3cret", cfg.Salt, digest)
package passhash
