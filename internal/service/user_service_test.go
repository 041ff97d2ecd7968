package service_test

import (
	"context"
	"testing"

	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/service"
	"github.com/phrazzld/tasktracker/internal/service/auth"
	"github.com/phrazzld/tasktracker/internal/store"
	"github.com/phrazzld/tasktracker/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(t *testing.T) (*service.UserServiceImpl, store.Stores, *testutils.TestSlogHandler) {
	t.Helper()
	stores, tx, _ := testutils.NewSQLiteStores(t)
	logger, logs := testutils.NewTestLogger()
	svc := service.NewUserService(
		stores.Users,
		tx,
		auth.NewBcryptVerifier(bcrypt.MinCost),
		auth.PasswordPolicy{MinLength: 8},
		logger,
	)
	return svc, stores, logs
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an active regular user", func(t *testing.T) {
		svc, stores, logs := newUserService(t)

		user, err := svc.Register(ctx, "  New.User@Example.COM ", "long-enough-pw")
		require.NoError(t, err)

		assert.NotZero(t, user.ID)
		assert.Equal(t, "new.user@example.com", user.Email)
		assert.True(t, user.IsActive)
		assert.False(t, user.IsSuperuser)
		assert.Empty(t, user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("long-enough-pw")))

		stored, err := stores.Users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, stored.Email)

		assert.Len(t, logs.EntriesWithMessage("user registered"), 1)
	})

	t.Run("duplicate email differing only in case", func(t *testing.T) {
		svc, _, _ := newUserService(t)
		_, err := svc.Register(ctx, "dup@example.com", "long-enough-pw")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "DUP@example.com", "another-long-pw")
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("validation failures", func(t *testing.T) {
		svc, _, _ := newUserService(t)

		_, err := svc.Register(ctx, "not-an-email", "long-enough-pw")
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)

		_, err = svc.Register(ctx, "ok@example.com", "short")
		assert.ErrorIs(t, err, domain.ErrInvalidPassword)
		assert.ErrorIs(t, err, auth.ErrPasswordTooShort)

		_, err = svc.Register(ctx, "someone@example.com", "xxsomeone@example.comxx")
		assert.ErrorIs(t, err, auth.ErrPasswordContainsEmail)

		_, err = svc.Register(ctx, "ok@example.com", "")
		assert.ErrorIs(t, err, domain.ErrInvalidPassword)
	})
}

func TestUserService_Authenticate(t *testing.T) {
	ctx := context.Background()
	svc, stores, _ := newUserService(t)

	user, err := svc.Register(ctx, "login@example.com", "correct-password")
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, "LOGIN@example.com", "correct-password")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "login@example.com", "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "correct-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	user.IsActive = false
	require.NoError(t, stores.Users.Update(ctx, user))
	_, err = svc.Authenticate(ctx, "login@example.com", "correct-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

// recordingPasswords records every hash handed to Compare.
type recordingPasswords struct {
	*auth.BcryptVerifier
	compared []string
}

func (p *recordingPasswords) Compare(hashedPassword, password string) error {
	p.compared = append(p.compared, hashedPassword)
	return p.BcryptVerifier.Compare(hashedPassword, password)
}

func TestUserService_UnknownEmailComparesAtConfiguredCost(t *testing.T) {
	ctx := context.Background()
	const cost = bcrypt.MinCost + 1

	stores, tx, _ := testutils.NewSQLiteStores(t)
	passwords := &recordingPasswords{BcryptVerifier: auth.NewBcryptVerifier(cost)}
	svc := service.NewUserService(stores.Users, tx, passwords, auth.PasswordPolicy{MinLength: 8}, nil)

	_, err := svc.Authenticate(ctx, "nobody@example.com", "whatever-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody-else@example.com", "whatever-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	require.Len(t, passwords.compared, 2)
	assert.Equal(t, passwords.compared[0], passwords.compared[1], "dummy hash is computed once")
	got, err := bcrypt.Cost([]byte(passwords.compared[0]))
	require.NoError(t, err)
	assert.Equal(t, cost, got)
}

func TestUserService_EnsureSuperuser(t *testing.T) {
	ctx := context.Background()

	t.Run("creates once and is idempotent", func(t *testing.T) {
		svc, stores, _ := newUserService(t)

		first, err := svc.EnsureSuperuser(ctx, "admin@example.com", "bootstrap-pw")
		require.NoError(t, err)
		assert.True(t, first.IsSuperuser)
		assert.True(t, first.IsActive)

		second, err := svc.EnsureSuperuser(ctx, "Admin@Example.com", "bootstrap-pw")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		count, err := stores.Users.CountSuperusers(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("promotes an existing account", func(t *testing.T) {
		svc, stores, _ := newUserService(t)
		regular, err := svc.Register(ctx, "promote@example.com", "regular-pw-1")
		require.NoError(t, err)

		promoted, err := svc.EnsureSuperuser(ctx, "promote@example.com", "ignored-pw-2")
		require.NoError(t, err)
		assert.Equal(t, regular.ID, promoted.ID)

		stored, err := stores.Users.GetByID(ctx, regular.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsSuperuser)
	})
}

func TestUserService_Get(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newUserService(t)

	user, err := svc.Register(ctx, "get@example.com", "long-enough-pw")
	require.NoError(t, err)

	got, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "get@example.com", got.Email)

	_, err = svc.Get(ctx, user.ID+1000)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}
