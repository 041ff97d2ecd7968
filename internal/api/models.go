package api

import (
	"time"

	"github.com/phrazzld/tasktracker/internal/domain"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse is returned by the login and refresh endpoints.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	// ExpiresAt is the RFC 3339 time when the access token expires
	ExpiresAt string `json:"expires_at"`
}

// UserResponse is the public representation of a user.
type UserResponse struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateTaskRequest defines the payload for creating a task. The creator is
// always the caller.
type CreateTaskRequest struct {
	Title          string            `json:"title"           validate:"required"`
	Description    *string           `json:"description"`
	ExpirationDate *domain.Timestamp `json:"expiration_date"`
	Responsibles   []int64           `json:"responsibles"    validate:"required,min=1,dive,gt=0"`
	Auditors       []int64           `json:"auditors"        validate:"omitempty,dive,gt=0"`
}

// UserRefResponse is the compact user embedded in task responses.
type UserRefResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// TaskResponse is the public representation of a task. Null optional fields
// are omitted.
type TaskResponse struct {
	ID             int64             `json:"id"`
	Title          string            `json:"title"`
	Description    *string           `json:"description,omitempty"`
	Creator        UserRefResponse   `json:"creator"`
	Responsibles   []UserRefResponse `json:"responsibles"`
	Auditors       []UserRefResponse `json:"auditors"`
	IsActive       bool              `json:"is_active"`
	IsExpired      bool              `json:"is_expired"`
	CreateDate     time.Time         `json:"create_date"`
	UpdateDate     time.Time         `json:"update_date"`
	CloseDate      *time.Time        `json:"close_date,omitempty"`
	ExpirationDate *time.Time        `json:"expiration_date,omitempty"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		IsVerified:  u.IsVerified,
		CreatedAt:   u.CreatedAt,
	}
}

func refsToResponse(refs []domain.UserRef) []UserRefResponse {
	out := make([]UserRefResponse, 0, len(refs))
	for _, r := range refs {
		out = append(out, UserRefResponse{ID: r.ID, Email: r.Email})
	}
	return out
}

// taskToResponse renders t; now is the reference instant for is_expired.
func taskToResponse(t *domain.Task, now time.Time) TaskResponse {
	return TaskResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Creator:        UserRefResponse{ID: t.Creator.ID, Email: t.Creator.Email},
		Responsibles:   refsToResponse(t.Responsibles),
		Auditors:       refsToResponse(t.Auditors),
		IsActive:       t.IsActive,
		IsExpired:      t.IsExpired(now),
		CreateDate:     t.CreateDate,
		UpdateDate:     t.UpdateDate,
		CloseDate:      t.CloseDate,
		ExpirationDate: t.ExpirationDate,
	}
}

func tasksToResponse(tasks []*domain.Task, now time.Time) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskToResponse(t, now))
	}
	return out
}
