package credstore

import "time"

// Role determines what a user may do. Exactly one email, the configured
// admin address, receives RoleAdmin at signup.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// RedactedHash replaces real password hashes in administrative listings.
// Raw hashes are denied even to the admin role.
const RedactedHash = "[redacted]"

// UserRecord is a single account in the store. Email is the unique,
// case-sensitive key. PasswordHash is a salted digest, never the plaintext
// and never reversible. MFASecret is only set once MFA enrollment begins and
// is regenerated (invalidating all prior codes) on re-enrollment.
type UserRecord struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	Role         Role      `json:"role"`
	MFAEnabled   bool      `json:"mfaEnabled,omitempty"`
	MFASecret    string    `json:"mfaSecret,omitempty"`
}

// Snapshot is the persisted blob: the whole store as one unit. Every
// mutation loads it, mutates in memory, re-encrypts, and rewrites it
// wholesale. The session pointer is kept as an email identifier resolved
// against Users on read, so it can never drift out of sync with the record
// it refers to.
type Snapshot struct {
	Users        []UserRecord `json:"users"`
	CurrentEmail string       `json:"currentUser,omitempty"`
}

// emptySnapshot is the recovery default when nothing is persisted or the
// blob cannot be deciphered.
func emptySnapshot() Snapshot {
	return Snapshot{Users: []UserRecord{}}
}

// find returns a pointer into Users for the exact email, or nil.
func (s *Snapshot) find(email string) *UserRecord {
	for i := range s.Users {
		if s.Users[i].Email == email {
			return &s.Users[i]
		}
	}
	return nil
}
