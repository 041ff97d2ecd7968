package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser("test@example.com", "correct-horse-battery")
	require.NoError(t, err)

	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, "correct-horse-battery", user.Password)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsSuperuser)
	assert.False(t, user.IsVerified)
	assert.Zero(t, user.ID, "ID is assigned by the store")
	assert.False(t, user.CreatedAt.IsZero())

	_, err = NewUser("", "password")
	assert.ErrorIs(t, err, ErrEmptyEmail)

	_, err = NewUser("invalidemail", "password")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = NewUser("test@example.com", "")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestUserValidate(t *testing.T) {
	stored := User{ID: 7, Email: "stored@example.com", HashedPassword: "$2a$10$hash"}
	assert.NoError(t, stored.Validate())

	stored.HashedPassword = ""
	assert.ErrorIs(t, stored.Validate(), ErrEmptyPassword)
}

func TestUserRef(t *testing.T) {
	u := &User{ID: 3, Email: "c@example.com"}
	assert.Equal(t, UserRef{ID: 3, Email: "c@example.com"}, u.Ref())
}
