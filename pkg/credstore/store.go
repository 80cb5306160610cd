package credstore

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/entauth/identitykit/pkg/logger"
	"github.com/entauth/identitykit/pkg/passhash"
	"github.com/entauth/identitykit/pkg/secrets"
	"github.com/entauth/identitykit/pkg/totp"
)

// Store owns the persisted credential blob. Every operation runs the whole
// load, mutate, save sequence under one mutex, so concurrent callers in the
// same process cannot interleave and silently drop each other's writes.
type Store struct {
	mu      sync.Mutex
	storage Storage
	codec   *secrets.Codec
	cfg     Config
	salt    string
	log     *slog.Logger
}

// Option configures a Store during construction.
type Option func(*Store)

// WithLogger sets the logger for operational diagnostics. Defaults to a
// discarding logger so logging stays opt-in.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithConfig overrides the environment-derived configuration. Mainly useful
// for tests that need isolated storage keys and admin addresses.
func WithConfig(cfg Config) Option {
	return func(s *Store) {
		s.cfg = cfg
	}
}

// WithHashSalt overrides the password hashing salt.
func WithHashSalt(salt string) Option {
	return func(s *Store) {
		s.salt = salt
	}
}

// New creates a Store persisting through storage, sealed by codec.
// Configuration defaults come from the environment.
func New(storage Storage, codec *secrets.Codec, opts ...Option) (*Store, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	hashCfg, err := passhash.LoadConfig()
	if err != nil {
		return nil, err
	}

	s := &Store{
		storage: storage,
		codec:   codec,
		cfg:     cfg,
		salt:    hashCfg.Salt,
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load reads and opens the persisted blob. An absent blob and an
// undecipherable one both yield the empty snapshot: availability is chosen
// over durability, and the undecipherable case is logged so operators can
// detect silent data loss. Only storage transport failures surface as errors.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Save seals and persists the whole snapshot, unconditionally overwriting
// prior content. Last writer wins.
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, snap)
}

// CreateUser registers a new account. The email must not exist yet
// (case-sensitive exact match). The configured admin address receives the
// admin role; everyone else is a regular user. The password is digested
// before the record is persisted.
func (s *Store) CreateUser(ctx context.Context, email, password string) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if snap.find(email) != nil {
		return nil, ErrEmailAlreadyExists
	}

	role := RoleUser
	if email == s.cfg.AdminEmail {
		role = RoleAdmin
	}

	record := UserRecord{
		Email:        email,
		PasswordHash: passhash.Hash(password, s.salt),
		CreatedAt:    time.Now().UTC(),
		Role:         role,
	}
	snap.Users = append(snap.Users, record)

	if err := s.save(ctx, snap); err != nil {
		return nil, err
	}
	return &record, nil
}

// FindUser is a pure lookup with no side effects and no persistence write.
func (s *Store) FindUser(ctx context.Context, email string) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	record := snap.find(email)
	if record == nil {
		return nil, ErrUserNotFound
	}
	out := *record
	return &out, nil
}

// Authenticate verifies the password for email. Unknown email and wrong
// password both yield ErrInvalidCredentials so responses cannot be used to
// enumerate accounts. For MFA-enabled users it returns ErrMFARequired
// without establishing a session; the caller completes login via VerifyMFA.
// On success the current session is set and persisted, so a login always
// triggers a storage write.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	record := snap.find(email)
	if record == nil || !passhash.Verify(password, s.salt, record.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if record.MFAEnabled {
		return nil, ErrMFARequired
	}

	snap.CurrentEmail = record.Email
	if err := s.save(ctx, snap); err != nil {
		return nil, err
	}
	out := *record
	return &out, nil
}

// VerifyMFA completes a login that Authenticate answered with
// ErrMFARequired. The one-time code is checked against the user's secret
// with the standard clock-skew window; a valid code establishes the session.
// A wrong code yields the same generic ErrInvalidCredentials as a wrong
// password.
func (s *Store) VerifyMFA(ctx context.Context, email, code string) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	record := snap.find(email)
	if record == nil {
		return nil, ErrInvalidCredentials
	}
	if !record.MFAEnabled {
		return nil, ErrMFANotEnabled
	}
	if !totp.Verify(record.MFASecret, code) {
		return nil, ErrInvalidCredentials
	}

	snap.CurrentEmail = record.Email
	if err := s.save(ctx, snap); err != nil {
		return nil, err
	}
	out := *record
	return &out, nil
}

// Logout clears the current session and persists.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	snap.CurrentEmail = ""
	return s.save(ctx, snap)
}

// CurrentUser resolves the session pointer against the user list.
func (s *Store) CurrentUser(ctx context.Context) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if snap.CurrentEmail == "" {
		return nil, ErrNotAuthenticated
	}
	record := snap.find(snap.CurrentEmail)
	if record == nil {
		// Stale pointer: the session's account no longer exists.
		return nil, ErrNotAuthenticated
	}
	out := *record
	return &out, nil
}

// IsAdmin reports whether the current session belongs to the admin role.
// Any failure, including the absence of a session, reads as false.
func (s *Store) IsAdmin(ctx context.Context) bool {
	record, err := s.CurrentUser(ctx)
	return err == nil && record.Role == RoleAdmin
}

// ListUsersRedacted returns every record with the password hash replaced by
// a fixed redaction marker. Non-admin sessions receive ErrUnauthorized; raw
// hashes are denied even to the admin role.
func (s *Store) ListUsersRedacted(ctx context.Context) ([]UserRecord, error) {
	if !s.IsAdmin(ctx) {
		s.log.Warn("redacted user listing denied for non-admin session",
			logger.Component("credstore"))
		return nil, ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]UserRecord, len(snap.Users))
	for i, record := range snap.Users {
		record.PasswordHash = RedactedHash
		record.MFASecret = ""
		users[i] = record
	}
	return users, nil
}

// ChangePassword replaces the password for email after verifying the old one.
func (s *Store) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	record := snap.find(email)
	if record == nil || !passhash.Verify(oldPassword, s.salt, record.PasswordHash) {
		return ErrInvalidCredentials
	}
	record.PasswordHash = passhash.Hash(newPassword, s.salt)
	return s.save(ctx, snap)
}

// SetPasswordHash overwrites the stored digest for email with an
// already-computed hash. Entry point for the recovery-token collaborator,
// which validates its token before calling.
func (s *Store) SetPasswordHash(ctx context.Context, email, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	record := snap.find(email)
	if record == nil {
		return ErrUserNotFound
	}
	record.PasswordHash = hash
	return s.save(ctx, snap)
}

// HashSalt exposes the hashing salt so collaborators producing digests on
// the store's behalf (the recovery flow) use the same parameters.
func (s *Store) HashSalt() string {
	return s.salt
}

// BeginMFAEnrollment generates a fresh TOTP secret for email and persists it
// in a pending state. The returned secret is rendered as a provisioning QR;
// enrollment only takes effect once ConfirmMFAEnrollment sees a valid code.
// Calling it again regenerates the secret, invalidating previous codes.
func (s *Store) BeginMFAEnrollment(ctx context.Context, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	record := snap.find(email)
	if record == nil {
		return "", ErrUserNotFound
	}

	secret, err := totp.GenerateSecret()
	if err != nil {
		return "", err
	}
	record.MFASecret = secret
	record.MFAEnabled = false
	if err := s.save(ctx, snap); err != nil {
		return "", err
	}
	return secret, nil
}

// ConfirmMFAEnrollment activates MFA for email once the user proves their
// authenticator produces valid codes for the pending secret.
func (s *Store) ConfirmMFAEnrollment(ctx context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	record := snap.find(email)
	if record == nil {
		return ErrUserNotFound
	}
	if record.MFASecret == "" {
		return ErrMFANotPending
	}
	if !totp.Verify(record.MFASecret, code) {
		return ErrInvalidCredentials
	}
	record.MFAEnabled = true
	return s.save(ctx, snap)
}

// DisableMFA turns MFA off for email and discards the secret.
func (s *Store) DisableMFA(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	record := snap.find(email)
	if record == nil {
		return ErrUserNotFound
	}
	record.MFAEnabled = false
	record.MFASecret = ""
	return s.save(ctx, snap)
}

// load must be called with s.mu held.
func (s *Store) load(ctx context.Context) (Snapshot, error) {
	ciphertext, err := s.storage.Get(ctx, s.cfg.StorageKey)
	if errors.Is(err, ErrBlobNotFound) {
		return emptySnapshot(), nil
	}
	if err != nil {
		return Snapshot{}, errors.Join(ErrStorageRead, err)
	}

	var snap Snapshot
	if err := s.codec.DecryptJSON(ciphertext, &snap); err != nil {
		// Availability over durability: an undecipherable blob falls back to
		// the empty store. Logged so silent data loss is observable.
		s.log.Warn("persisted blob is undecipherable, starting from empty store",
			logger.Component("credstore"),
			logger.StorageKey(s.cfg.StorageKey),
			logger.Error(err),
		)
		return emptySnapshot(), nil
	}
	if snap.Users == nil {
		snap.Users = []UserRecord{}
	}
	return snap, nil
}

// save must be called with s.mu held.
func (s *Store) save(ctx context.Context, snap Snapshot) error {
	ciphertext, err := s.codec.EncryptJSON(snap)
	if err != nil {
		return err
	}
	if err := s.storage.Set(ctx, s.cfg.StorageKey, ciphertext); err != nil {
		return errors.Join(ErrStorageWrite, err)
	}
	return nil
}
