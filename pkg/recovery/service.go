package recovery

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/entauth/identitykit/pkg/credstore"
	"github.com/entauth/identitykit/pkg/logger"
	"github.com/entauth/identitykit/pkg/passhash"
)

// TokenService is the recovery contract the login surface calls into.
type TokenService interface {
	// Initiate issues a fresh token for email. Issuing a new token
	// invalidates any prior outstanding tokens for the same email, so at
	// most one unused, unexpired token exists per address at a time.
	Initiate(ctx context.Context, email string) (*Token, error)
	// Validate reports whether a token for email exists, is unused, and has
	// not expired.
	Validate(ctx context.Context, email, token string) bool
	// Reset redeems a valid token and replaces the account password. The
	// token is marked used only after the new digest is persisted, so a
	// crash mid-operation cannot leave a used-but-ineffective token.
	Reset(ctx context.Context, email, token, newPassword string) error
	// CleanupExpired garbage-collects expired tokens and reports how many
	// were removed.
	CleanupExpired(ctx context.Context) int
}

// CredentialStore is the slice of the credential store the recovery flow
// needs: account lookup and direct digest replacement using the store's own
// hashing parameters.
type CredentialStore interface {
	FindUser(ctx context.Context, email string) (*credstore.UserRecord, error)
	SetPasswordHash(ctx context.Context, email, hash string) error
	HashSalt() string
}

// Service is an in-memory TokenService. Token state lives in the process;
// recovery links are short-lived enough that losing them on restart only
// costs the user a fresh request.
type Service struct {
	mu     sync.Mutex
	tokens map[string]*Token
	store  CredentialStore
	ttl    time.Duration
	log    *slog.Logger
	now    func() time.Time
}

// Option configures a Service during construction.
type Option func(*Service)

// WithLogger sets the logger for recovery diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithTTL overrides the configured token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source. Testing aid.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a recovery token service collaborating with store.
func NewService(store CredentialStore, opts ...Option) (*Service, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	s := &Service{
		tokens: make(map[string]*Token),
		store:  store,
		ttl:    cfg.TokenTTL,
		log:    logger.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) Initiate(ctx context.Context, email string) (*Token, error) {
	if _, err := s.store.FindUser(ctx, email); err != nil {
		return nil, ErrUserNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Single-active-token policy: issuing a new token revokes any prior
	// outstanding tokens for the same address.
	for key, tok := range s.tokens {
		if tok.Email == email && !tok.Used {
			delete(s.tokens, key)
		}
	}

	now := s.now()
	token := &Token{
		Token:     uuid.NewString(),
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.tokens[token.Token] = token

	s.log.Info("recovery token issued",
		logger.Component("recovery"),
		logger.Email(email),
		slog.Time("expires_at", token.ExpiresAt),
	)

	out := *token
	return &out, nil
}

func (s *Service) Validate(_ context.Context, email, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, ok := s.tokens[token]
	return ok && tok.Email == email && tok.Valid(s.now())
}

func (s *Service) Reset(ctx context.Context, email, token, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, ok := s.tokens[token]
	if !ok || tok.Email != email {
		return ErrTokenInvalid
	}
	if tok.Used {
		return ErrTokenUsed
	}
	if !s.now().Before(tok.ExpiresAt) {
		return ErrTokenExpired
	}

	// Hash and persist before marking the token used: a failure here leaves
	// the token redeemable for a retry instead of burnt and ineffective.
	hash := passhash.Hash(newPassword, s.store.HashSalt())
	if err := s.store.SetPasswordHash(ctx, email, hash); err != nil {
		return err
	}
	tok.Used = true

	s.log.Info("password reset via recovery token",
		logger.Component("recovery"),
		logger.Email(email),
	)
	return nil
}

func (s *Service) CleanupExpired(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, tok := range s.tokens {
		if !now.Before(tok.ExpiresAt) {
			delete(s.tokens, key)
			removed++
		}
	}
	return removed
}
