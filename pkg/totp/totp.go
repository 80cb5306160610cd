package totp

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	// Digits is the code length. Fixed at the RFC 6238 standard value: it
	// must match what ProvisioningURI advertises or enrolled authenticator
	// apps would generate unverifiable codes.
	Digits = 6

	// Period is the code validity step in seconds, fixed for the same reason.
	Period = 30

	// DefaultWindow is the clock-skew tolerance in steps either side of now.
	DefaultWindow = 1

	algorithm = "SHA1"
)

var (
	// secretRegex ensures Base32 format: uppercase A-Z, digits 2-7, optional padding.
	secretRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

	// codeRegex pre-rejects anything that is not exactly six digits.
	codeRegex = regexp.MustCompile(`^\d{6}$`)
)

// GenerateSecret generates a new Base32-encoded shared secret.
// The secret has no relation to any user until the caller associates it;
// regenerating a user's secret invalidates all previously issued codes.
func GenerateSecret() (string, error) {
	secret := make([]byte, 20) // 160-bit secret (RFC 4226 recommendation)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecret, err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret), nil
}

// ProvisioningURI formats the otpauth URI for authenticator-app enrollment.
// The URI follows the Key Uri Format specification:
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
// It is rendered as a QR code locally and never transmitted.
func ProvisioningURI(secret, accountName, issuer string) (string, error) {
	secret = normalizeSecret(secret)
	if secret == "" {
		return "", ErrMissingSecret
	}
	if !secretRegex.MatchString(secret) {
		return "", ErrInvalidSecret
	}
	if accountName == "" {
		return "", ErrMissingAccountName
	}
	if issuer == "" {
		return "", ErrMissingIssuer
	}

	label := fmt.Sprintf("%s:%s",
		url.PathEscape(issuer),
		url.PathEscape(accountName),
	)

	query := url.Values{}
	query.Set("secret", secret)
	query.Set("issuer", issuer)
	query.Set("algorithm", algorithm)
	query.Set("digits", fmt.Sprintf("%d", Digits))
	query.Set("period", fmt.Sprintf("%d", Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}

// Verify reports whether code is valid for secret at the current time with
// the default one-step skew tolerance.
func Verify(secret, code string) bool {
	return VerifyWithWindow(secret, code, DefaultWindow)
}

// VerifyWithWindow reports whether code matches any candidate computed for
// the current 30-second step and the window steps before and after it.
//
// The function is total: malformed secrets and codes that are not exactly
// six digits are rejected with false before any candidate is computed,
// never with a panic or an error.
func VerifyWithWindow(secret, code string, window int) bool {
	secret = normalizeSecret(secret)
	if !secretRegex.MatchString(secret) {
		return false
	}

	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret)
	if err != nil {
		return false
	}

	code = strings.TrimSpace(code)
	if !codeRegex.MatchString(code) {
		return false
	}
	if window < 0 {
		window = 0
	}

	counter := time.Now().Unix() / int64(Period)
	for i := -window; i <= window; i++ {
		if fmt.Sprintf("%06d", hotp(key, counter+int64(i), Digits)) == code {
			return true
		}
	}
	return false
}

// CurrentCode computes the six-digit code for the present 30-second step.
// Display and testing aid only; codes are never persisted.
func CurrentCode(secret string) (string, error) {
	return CodeAt(secret, time.Now())
}

// CodeAt computes the code for the 30-second step containing t.
func CodeAt(secret string, t time.Time) (string, error) {
	secret = normalizeSecret(secret)
	if !secretRegex.MatchString(secret) {
		return "", ErrInvalidSecret
	}

	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret)
	if err != nil {
		return "", errors.Join(ErrFailedToGenerateCode, err)
	}

	counter := t.Unix() / int64(Period)
	return fmt.Sprintf("%06d", hotp(key, counter, Digits)), nil
}

// SecondsUntilExpiry returns how many seconds remain before the current code
// rolls over. Always in [1, 30]. Wall-clock derived: callers must re-derive
// on demand rather than cache across operations that take wall-clock time.
func SecondsUntilExpiry() int {
	return Period - int(time.Now().Unix()%int64(Period))
}

func normalizeSecret(secret string) string {
	return strings.ToUpper(strings.TrimSpace(secret))
}
