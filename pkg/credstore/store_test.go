package credstore_test

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entauth/identitykit/pkg/credstore"
	"github.com/entauth/identitykit/pkg/logger"
	"github.com/entauth/identitykit/pkg/passhash"
	"github.com/entauth/identitykit/pkg/secrets"
	"github.com/entauth/identitykit/pkg/totp"
)

const (
	testAdminEmail = "admin@x.com"
	testStorageKey = "identity_store_test"
)

func newTestCodec(t *testing.T) *secrets.Codec {
	t.Helper()
	key, err := secrets.GenerateKey()
	require.NoError(t, err)
	codec, err := secrets.NewCodec(key)
	require.NoError(t, err)
	return codec
}

func newTestStore(t *testing.T, opts ...credstore.Option) (*credstore.Store, *credstore.MemoryStorage) {
	t.Helper()
	storage := credstore.NewMemoryStorage()
	codec := newTestCodec(t)

	base := []credstore.Option{
		credstore.WithConfig(credstore.Config{
			StorageKey: testStorageKey,
			AdminEmail: testAdminEmail,
		}),
		credstore.WithHashSalt("test-salt"),
	}
	store, err := credstore.New(storage, codec, append(base, opts...)...)
	require.NoError(t, err)
	return store, storage
}

func TestCreateUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates and persists", func(t *testing.T) {
		t.Parallel()
		store, _ := newTestStore(t)

		record, err := store.CreateUser(ctx, "a@x.com", "pw1")
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", record.Email)
		assert.Equal(t, credstore.RoleUser, record.Role)
		assert.False(t, record.CreatedAt.IsZero())

		found, err := store.FindUser(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, record.Email, found.Email)
	})

	t.Run("never stores plaintext password", func(t *testing.T) {
		t.Parallel()
		store, _ := newTestStore(t)

		record, err := store.CreateUser(ctx, "a@x.com", "super-secret-pw")
		require.NoError(t, err)
		assert.NotEqual(t, "super-secret-pw", record.PasswordHash)
		assert.NotContains(t, record.PasswordHash, "super-secret-pw")
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		t.Parallel()
		store, _ := newTestStore(t)

		_, err := store.CreateUser(ctx, "a@x.com", "pw1")
		require.NoError(t, err)
		_, err = store.CreateUser(ctx, "a@x.com", "pw2")
		assert.ErrorIs(t, err, credstore.ErrEmailAlreadyExists)
	})

	t.Run("email match is case-sensitive", func(t *testing.T) {
		t.Parallel()
		store, _ := newTestStore(t)

		_, err := store.CreateUser(ctx, "a@x.com", "pw1")
		require.NoError(t, err)
		_, err = store.CreateUser(ctx, "A@x.com", "pw2")
		assert.NoError(t, err)
	})

	t.Run("admin address receives admin role", func(t *testing.T) {
		t.Parallel()
		store, _ := newTestStore(t)

		admin, err := store.CreateUser(ctx, testAdminEmail, "pw")
		require.NoError(t, err)
		assert.Equal(t, credstore.RoleAdmin, admin.Role)

		user, err := store.CreateUser(ctx, "b@x.com", "pw")
		require.NoError(t, err)
		assert.Equal(t, credstore.RoleUser, user.Role)
	})
}

func TestFindUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, storage := newTestStore(t)
	_, err := store.CreateUser(ctx, "a@x.com", "pw1")
	require.NoError(t, err)

	before, err := storage.Get(ctx, testStorageKey)
	require.NoError(t, err)

	_, err = store.FindUser(ctx, "a@x.com")
	require.NoError(t, err)
	_, err = store.FindUser(ctx, "missing@x.com")
	assert.ErrorIs(t, err, credstore.ErrUserNotFound)

	// Pure lookup: no persistence write.
	after, err := storage.Get(ctx, testStorageKey)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("correct password establishes session", func(t *testing.T) {
		t.Parallel()
		store, _ := newTestStore(t)
		created, err := store.CreateUser(ctx, "a@x.com", "pw1")
		require.NoError(t, err)

		record, err := store.Authenticate(ctx, "a@x.com", "pw1")
		require.NoError(t, err)
		assert.Equal(t, created.Email, record.Email)
		assert.Equal(t, created.PasswordHash, record.PasswordHash)

		current, err := store.CurrentUser(ctx)
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", current.Email)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		t.Parallel()
		store, _ := newTestStore(t)
		_, err := store.CreateUser(ctx, "a@x.com", "pw1")
		require.NoError(t, err)

		_, wrongPw := store.Authenticate(ctx, "a@x.com", "wrong")
		_, unknown := store.Authenticate(ctx, "ghost@x.com", "pw1")
		assert.ErrorIs(t, wrongPw, credstore.ErrInvalidCredentials)
		assert.ErrorIs(t, unknown, credstore.ErrInvalidCredentials)

		_, err = store.CurrentUser(ctx)
		assert.ErrorIs(t, err, credstore.ErrNotAuthenticated)
	})

	t.Run("login persists the session", func(t *testing.T) {
		t.Parallel()
		store, storage := newTestStore(t)
		_, err := store.CreateUser(ctx, "a@x.com", "pw1")
		require.NoError(t, err)

		before, err := storage.Get(ctx, testStorageKey)
		require.NoError(t, err)
		_, err = store.Authenticate(ctx, "a@x.com", "pw1")
		require.NoError(t, err)
		after, err := storage.Get(ctx, testStorageKey)
		require.NoError(t, err)
		assert.NotEqual(t, before, after, "login must trigger a storage write")
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, _ := newTestStore(t)
	_, err := store.CreateUser(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	_, err = store.Authenticate(ctx, "a@x.com", "pw1")
	require.NoError(t, err)

	require.NoError(t, store.Logout(ctx))
	_, err = store.CurrentUser(ctx)
	assert.ErrorIs(t, err, credstore.ErrNotAuthenticated)
}

func TestMFAFlow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("full enrollment and login", func(t *testing.T) {
		t.Parallel()
		store, _ := newTestStore(t)
		_, err := store.CreateUser(ctx, "a@x.com", "pw1")
		require.NoError(t, err)

		secret, err := store.BeginMFAEnrollment(ctx, "a@x.com")
		require.NoError(t, err)
		require.NotEmpty(t, secret)

		// Pending enrollment does not gate login yet.
		_, err = store.Authenticate(ctx, "a@x.com", "pw1")
		require.NoError(t, err)

		code, err := totp.CurrentCode(secret)
		require.NoError(t, err)
		require.NoError(t, store.ConfirmMFAEnrollment(ctx, "a@x.com", code))

		// Enabled MFA now interposes before the session is established.
		_, err = store.Authenticate(ctx, "a@x.com", "pw1")
		assert.ErrorIs(t, err, credstore.ErrMFARequired)

		code, err = totp.CurrentCode(secret)
		require.NoError(t, err)
		record, err := store.VerifyMFA(ctx, "a@x.com", code)
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", record.Email)

		current, err := store.CurrentUser(ctx)
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", current.Email)
	})

	t.Run("wrong code is generic invalid credentials", func(t *testing.T) {
		t.Parallel()
		store, _ := newTestStore(t)
		_, err := store.CreateUser(ctx, "a@x.com", "pw1")
		require.NoError(t, err)
		secret, err := store.BeginMFAEnrollment(ctx, "a@x.com")
		require.NoError(t, err)
		code, err := totp.CurrentCode(secret)
		require.NoError(t, err)
		require.NoError(t, store.ConfirmMFAEnrollment(ctx, "a@x.com", code))

		_, err = store.VerifyMFA(ctx, "a@x.com", "000000")
		if err == nil {
			t.Skip("randomly generated current code collided with 000000")
		}
		assert.ErrorIs(t, err, credstore.ErrInvalidCredentials)
	})

	t.Run("confirm without pending enrollment", func(t *testing.T) {
		t.Parallel()
		store, _ := newTestStore(t)
		_, err := store.CreateUser(ctx, "a@x.com", "pw1")
		require.NoError(t, err)

		err = store.ConfirmMFAEnrollment(ctx, "a@x.com", "123456")
		assert.ErrorIs(t, err, credstore.ErrMFANotPending)
	})

	t.Run("re-enrollment regenerates the secret", func(t *testing.T) {
		t.Parallel()
		store, _ := newTestStore(t)
		_, err := store.CreateUser(ctx, "a@x.com", "pw1")
		require.NoError(t, err)

		first, err := store.BeginMFAEnrollment(ctx, "a@x.com")
		require.NoError(t, err)
		second, err := store.BeginMFAEnrollment(ctx, "a@x.com")
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("disable clears secret and gate", func(t *testing.T) {
		t.Parallel()
		store, _ := newTestStore(t)
		_, err := store.CreateUser(ctx, "a@x.com", "pw1")
		require.NoError(t, err)
		secret, err := store.BeginMFAEnrollment(ctx, "a@x.com")
		require.NoError(t, err)
		code, err := totp.CurrentCode(secret)
		require.NoError(t, err)
		require.NoError(t, store.ConfirmMFAEnrollment(ctx, "a@x.com", code))

		require.NoError(t, store.DisableMFA(ctx, "a@x.com"))
		_, err = store.Authenticate(ctx, "a@x.com", "pw1")
		assert.NoError(t, err)
	})
}

func TestIsAdmin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, _ := newTestStore(t)
	_, err := store.CreateUser(ctx, testAdminEmail, "pw")
	require.NoError(t, err)
	_, err = store.CreateUser(ctx, "b@x.com", "pw")
	require.NoError(t, err)

	assert.False(t, store.IsAdmin(ctx), "no session")

	_, err = store.Authenticate(ctx, "b@x.com", "pw")
	require.NoError(t, err)
	assert.False(t, store.IsAdmin(ctx), "regular user session")

	_, err = store.Authenticate(ctx, testAdminEmail, "pw")
	require.NoError(t, err)
	assert.True(t, store.IsAdmin(ctx), "admin session")
}

func TestListUsersRedacted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("denied without admin session", func(t *testing.T) {
		t.Parallel()
		store, _ := newTestStore(t)
		_, err := store.CreateUser(ctx, "b@x.com", "pw")
		require.NoError(t, err)
		_, err = store.Authenticate(ctx, "b@x.com", "pw")
		require.NoError(t, err)

		_, err = store.ListUsersRedacted(ctx)
		assert.ErrorIs(t, err, credstore.ErrUnauthorized)
	})

	t.Run("admin sees redacted hashes only", func(t *testing.T) {
		t.Parallel()
		store, _ := newTestStore(t)
		admin, err := store.CreateUser(ctx, testAdminEmail, "pw")
		require.NoError(t, err)
		user, err := store.CreateUser(ctx, "b@x.com", "pw2")
		require.NoError(t, err)
		_, err = store.Authenticate(ctx, testAdminEmail, "pw")
		require.NoError(t, err)

		users, err := store.ListUsersRedacted(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		for _, record := range users {
			assert.Equal(t, credstore.RedactedHash, record.PasswordHash)
			assert.NotEqual(t, admin.PasswordHash, record.PasswordHash)
			assert.NotEqual(t, user.PasswordHash, record.PasswordHash)
			assert.Empty(t, record.MFASecret)
		}
	})
}

func TestLoadRecovery(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("absent blob yields empty store", func(t *testing.T) {
		t.Parallel()
		store, _ := newTestStore(t)
		snap, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, snap.Users)
		assert.Empty(t, snap.CurrentEmail)
	})

	t.Run("corrupted blob falls back to empty store and logs", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf))
		store, storage := newTestStore(t, credstore.WithLogger(log))

		_, err := store.CreateUser(ctx, "a@x.com", "pw1")
		require.NoError(t, err)
		require.NoError(t, storage.Set(ctx, testStorageKey, "garbage-not-ciphertext"))

		snap, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, snap.Users)
		assert.Contains(t, buf.String(), "undecipherable")
	})

	t.Run("tampered ciphertext falls back to empty store", func(t *testing.T) {
		t.Parallel()
		store, storage := newTestStore(t)
		_, err := store.CreateUser(ctx, "a@x.com", "pw1")
		require.NoError(t, err)

		blob, err := storage.Get(ctx, testStorageKey)
		require.NoError(t, err)
		tampered := []byte(blob)
		tampered[len(tampered)-5] ^= 'x'
		require.NoError(t, storage.Set(ctx, testStorageKey, string(tampered)))

		snap, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, snap.Users)
	})
}

func TestSetPasswordHash(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, _ := newTestStore(t)
	_, err := store.CreateUser(ctx, "a@x.com", "old-pw")
	require.NoError(t, err)

	err = store.SetPasswordHash(ctx, "missing@x.com", "whatever")
	assert.ErrorIs(t, err, credstore.ErrUserNotFound)

	// The recovery collaborator computes the digest with the store's salt
	// and writes it directly.
	newHash := passhash.Hash("recovered-pw", store.HashSalt())
	require.NoError(t, store.SetPasswordHash(ctx, "a@x.com", newHash))

	_, err = store.Authenticate(ctx, "a@x.com", "old-pw")
	assert.ErrorIs(t, err, credstore.ErrInvalidCredentials)
	record, err := store.Authenticate(ctx, "a@x.com", "recovered-pw")
	require.NoError(t, err)
	assert.Equal(t, newHash, record.PasswordHash)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, _ := newTestStore(t)
	_, err := store.CreateUser(ctx, "a@x.com", "old-pw")
	require.NoError(t, err)

	t.Run("wrong old password rejected", func(t *testing.T) {
		err := store.ChangePassword(ctx, "a@x.com", "wrong", "new-pw")
		assert.ErrorIs(t, err, credstore.ErrInvalidCredentials)
	})

	t.Run("changes take effect", func(t *testing.T) {
		require.NoError(t, store.ChangePassword(ctx, "a@x.com", "old-pw", "new-pw"))
		_, err := store.Authenticate(ctx, "a@x.com", "old-pw")
		assert.ErrorIs(t, err, credstore.ErrInvalidCredentials)
		_, err = store.Authenticate(ctx, "a@x.com", "new-pw")
		assert.NoError(t, err)
	})
}

func TestPersistenceAcrossInstances(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	storage := credstore.NewMemoryStorage()
	key, err := secrets.GenerateKey()
	require.NoError(t, err)
	codec, err := secrets.NewCodec(key)
	require.NoError(t, err)

	opts := []credstore.Option{
		credstore.WithConfig(credstore.Config{StorageKey: testStorageKey, AdminEmail: testAdminEmail}),
		credstore.WithHashSalt("test-salt"),
	}

	first, err := credstore.New(storage, codec, opts...)
	require.NoError(t, err)
	_, err = first.CreateUser(ctx, "a@x.com", "pw1")
	require.NoError(t, err)

	second, err := credstore.New(storage, codec, opts...)
	require.NoError(t, err)
	record, err := second.Authenticate(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", record.Email)
}

func TestConcurrentMutations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, _ := newTestStore(t)

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			_, err := store.CreateUser(ctx, fmt.Sprintf("user%d@x.com", i), "pw")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Users, n, "no concurrent mutation may be silently dropped")
}
