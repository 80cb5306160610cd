// Package totp implements the time-based one-time password second factor for
// login: secret generation, provisioning-URI formatting for authenticator
// enrollment, and time-window code verification per RFC 6238.
//
// The engine is state-free. Secrets are opaque Base32 strings owned by the
// credential store; this package only computes over values it is handed.
// Code length (6 digits) and step (30 seconds) are fixed at the standard
// values and deliberately not configurable per call: they must match what
// ProvisioningURI advertises or enrolled QR codes become unverifiable.
//
// Verification is a total boolean function. Malformed secrets and codes that
// are not exactly six digits return false before any HOTP computation, so
// callers never need to guard the verification path. Clock skew is tolerated
// by accepting codes from the previous and next 30-second steps (one step by
// default, configurable via VerifyWithWindow).
//
// # Usage
//
// Enrolling a user:
//
//	secret, _ := totp.GenerateSecret()
//	uri, _ := totp.ProvisioningURI(secret, "alice@example.com", "Acme")
//	// render uri as a QR code (pkg/qrcode), then confirm enrollment:
//	ok := totp.Verify(secret, codeFromApp)
//
// The package also provides single-use backup codes (GenerateBackupCodes,
// HashBackupCode, VerifyBackupCode) for users who lose their device.
//
// # See Also
//
//   - RFC 4226 – HMAC-Based One-Time Password (HOTP) Algorithm
//   - RFC 6238 – Time-Based One-Time Password (TOTP) Algorithm
package totp
