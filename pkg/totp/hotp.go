package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"math"
)

// hotp implements the RFC 4226 HMAC-based one-time password algorithm,
// converting a counter value into a numeric code via HMAC-SHA1.
func hotp(key []byte, counter int64, digits int) int {
	// Counter is hashed as a big-endian 8-byte value (RFC 4226 requirement).
	counterBytes := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		counterBytes[i] = byte(counter & 0xff)
		counter >>= 8
	}

	mac := hmac.New(sha1.New, key)
	mac.Write(counterBytes)
	sum := mac.Sum(nil)

	// Dynamic truncation (RFC 4226): last 4 bits select the offset, then a
	// 31-bit value is extracted with the MSB cleared to stay positive.
	offset := sum[len(sum)-1] & 0x0f
	code := (int(sum[offset]&0x7f) << 24) |
		(int(sum[offset+1]&0xff) << 16) |
		(int(sum[offset+2]&0xff) << 8) |
		int(sum[offset+3]&0xff)

	return code % int(math.Pow10(digits))
}
