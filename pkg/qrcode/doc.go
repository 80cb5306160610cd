// Package qrcode renders TOTP provisioning URIs as QR codes for
// authenticator-app enrollment.
//
// The provisioning URI carries the shared secret, so it must never leave the
// device: it is rendered locally to a PNG (Image) or an embeddable data URI
// (DataURI) and shown to the user once during MFA enrollment.
package qrcode
