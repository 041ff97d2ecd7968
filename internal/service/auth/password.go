package auth

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

// PasswordVerifier defines the interface for comparing passwords.
type PasswordVerifier interface {
	// Compare compares a hashed password with its possible plaintext equivalent.
	// Returns nil on success, or an error on failure (e.g., mismatch).
	Compare(hashedPassword, password string) error
}

// PasswordHasher hashes plaintext passwords for storage.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// BcryptVerifier implements PasswordVerifier and PasswordHasher using bcrypt.
type BcryptVerifier struct {
	cost int
}

// NewBcryptVerifier creates a new BcryptVerifier. A cost outside bcrypt's
// accepted range falls back to bcrypt.DefaultCost.
func NewBcryptVerifier(cost int) *BcryptVerifier {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptVerifier{cost: cost}
}

// Compare implements the PasswordVerifier interface using bcrypt.
func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// Hash implements PasswordHasher.
func (v *BcryptVerifier) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), v.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// PasswordPolicy holds the rules a new password must satisfy.
type PasswordPolicy struct {
	MinLength int
}

// Validate checks password against the policy. The email is compared
// case-insensitively; its local part alone is enough to reject a password.
func (p PasswordPolicy) Validate(password, email string) error {
	if utf8.RuneCountInString(password) < p.MinLength {
		return fmt.Errorf("%w: minimum is %d characters", ErrPasswordTooShort, p.MinLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("%w: maximum is %d bytes", ErrPasswordTooLong, MaxPasswordBytes)
	}

	lowered := strings.ToLower(password)
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" {
		if strings.Contains(lowered, email) {
			return ErrPasswordContainsEmail
		}
		if local, _, ok := strings.Cut(email, "@"); ok && len(local) >= 3 && strings.Contains(lowered, local) {
			return ErrPasswordContainsEmail
		}
	}
	return nil
}
