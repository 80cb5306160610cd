package recovery

import "time"

// Token is a single-use, time-bounded credential for resetting a password
// without knowing the old one. Used flips monotonically false to true and
// never back; ExpiresAt is always after CreatedAt.
type Token struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Used      bool      `json:"used"`
}

// Valid reports whether the token can still be redeemed at now.
func (t Token) Valid(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
