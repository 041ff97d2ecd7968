package domain

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
)

// Common validation errors
var (
	ErrEmptyEmail    = errors.New("email cannot be empty")
	ErrEmptyPassword = errors.New("password cannot be empty")
)

var validate = validator.New()

// User represents a registered account. Only active users may call the task
// endpoints; superusers may act on any task.
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // Plaintext password, used temporarily during registration
	HashedPassword string    `json:"-"` // Never expose password hash in JSON
	IsActive       bool      `json:"is_active"`
	IsSuperuser    bool      `json:"is_superuser"`
	IsVerified     bool      `json:"is_verified"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UserRef is the compact form of a user embedded in task responses.
type UserRef struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// NewUser creates an active, non-superuser, unverified User. The ID is
// assigned by the store on insert.
//
// NOTE: the caller is responsible for hashing the password before storing the user.
func NewUser(email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		Email:     email,
		Password:  password,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.Email == "" {
		return ErrEmptyEmail
	}

	if err := validate.Var(u.Email, "email"); err != nil {
		return ErrInvalidEmail
	}

	// Either a plaintext password during registration, or a stored hash.
	if u.Password == "" && u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// Ref returns the compact representation of u.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Email: u.Email}
}
