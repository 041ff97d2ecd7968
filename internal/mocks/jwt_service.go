package mocks

import (
	"context"

	"github.com/phrazzld/tasktracker/internal/service/auth"
	"github.com/stretchr/testify/mock"
)

// JWTService is a mock of auth.JWTService.
type JWTService struct {
	mock.Mock
}

var _ auth.JWTService = (*JWTService)(nil)

// GenerateToken is a mock implementation of auth.JWTService.GenerateToken
func (m *JWTService) GenerateToken(ctx context.Context, userID int64) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

// ValidateToken is a mock implementation of auth.JWTService.ValidateToken
func (m *JWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	args := m.Called(ctx, tokenString)
	claims, _ := args.Get(0).(*auth.Claims)
	return claims, args.Error(1)
}

// GenerateRefreshToken is a mock implementation of auth.JWTService.GenerateRefreshToken
func (m *JWTService) GenerateRefreshToken(ctx context.Context, userID int64) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

// ValidateRefreshToken is a mock implementation of auth.JWTService.ValidateRefreshToken
func (m *JWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	args := m.Called(ctx, tokenString)
	claims, _ := args.Get(0).(*auth.Claims)
	return claims, args.Error(1)
}
