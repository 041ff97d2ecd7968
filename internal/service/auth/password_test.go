package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptVerifier(t *testing.T) {
	t.Parallel()

	v := NewBcryptVerifier(bcrypt.MinCost)
	hash, err := v.Hash("correct horse battery staple")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	assert.NoError(t, v.Compare(hash, "correct horse battery staple"))
	assert.Error(t, v.Compare(hash, "wrong"))
}

func TestNewBcryptVerifier_InvalidCostFallsBack(t *testing.T) {
	t.Parallel()
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptVerifier(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptVerifier(99).cost)
}

func TestPasswordPolicy_Validate(t *testing.T) {
	t.Parallel()

	policy := PasswordPolicy{MinLength: 8}

	tests := []struct {
		name     string
		password string
		email    string
		wantErr  error
	}{
		{name: "acceptable", password: "s3cure-enough", email: "jane@example.com"},
		{name: "too short", password: "short", email: "jane@example.com", wantErr: ErrPasswordTooShort},
		{name: "too long", password: strings.Repeat("a", 73), email: "jane@example.com", wantErr: ErrPasswordTooLong},
		{name: "exactly 72 bytes", password: strings.Repeat("a", 72), email: "jane@example.com"},
		{name: "contains email", password: "x-Jane@Example.com-x", email: "jane@example.com", wantErr: ErrPasswordContainsEmail},
		{name: "contains local part", password: "JANE12345", email: "jane@example.com", wantErr: ErrPasswordContainsEmail},
		{name: "short local part ignored", password: "abcdefgh", email: "ab@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := policy.Validate(tt.password, tt.email)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
