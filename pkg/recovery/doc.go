// Package recovery implements single-use, time-bounded account recovery
// tokens: the flow that lets a user replace a forgotten password without
// ever passing the password check.
//
// TokenService is the contract the login surface depends on; Service is the
// in-memory reference implementation collaborating with the credential store
// through a narrow interface. At most one unused, unexpired token exists per
// email at a time: Initiate revokes prior outstanding tokens when issuing a
// new one.
//
// Reset orders its effects deliberately: validate the token, hash the new
// password, persist the digest, and only then mark the token used. A crash
// anywhere in the sequence leaves either a still-valid token or a completed
// reset, never a burnt token with the old password still in place.
//
// Token strings are UUIDv4. Lifetime comes from RECOVERY_TOKEN_TTL
// (default 15m); CleanupExpired garbage-collects expired entries.
package recovery
