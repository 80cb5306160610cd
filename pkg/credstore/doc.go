// Package credstore implements the encrypted credential store at the heart
// of the identity subsystem: a durable mapping of email to account record
// plus a current-session pointer, persisted as a single sealed blob.
//
// # Persistence model
//
// The whole store is one unit of persistence. Every mutation loads the blob,
// mutates the snapshot in memory, re-encrypts it through the secrets codec,
// and rewrites it wholesale under one fixed storage key. There are no
// partial updates and no optimistic concurrency; the last writer wins. To
// keep that safe inside one process, every operation holds the store mutex
// across its entire load, mutate, save sequence.
//
// Storage is pluggable through the Storage interface: MemoryStorage for
// single-process use and tests, RedisStorage for deployments that outlive a
// process. Implementations only ever see opaque ciphertext.
//
// # Failure semantics
//
// Business outcomes (duplicate signup, wrong password, unknown email,
// unauthorized listing) are sentinel errors checked with errors.Is; nothing
// panics. Unknown email and wrong password both report the generic
// ErrInvalidCredentials so error shape cannot be used to enumerate accounts.
// An absent or undecipherable persisted blob is not an error: Load falls
// back to the empty store, and the undecipherable case emits a structured
// warning so operators can alert on silent data loss.
//
// # Login flow
//
// Authenticate verifies the password and, for MFA-enabled accounts, answers
// ErrMFARequired without establishing a session. The caller then presents a
// one-time code to VerifyMFA, which checks it against the account's TOTP
// secret and completes the login. MFA enrollment is a two-step handshake
// (BeginMFAEnrollment, ConfirmMFAEnrollment) so MFA can never be switched on
// before the user's authenticator demonstrably produces valid codes.
package credstore
