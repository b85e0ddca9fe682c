package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/kippu-app/kippu-backend/pkg/db/models"
)

// LoginInput carries admin credentials.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is the issued token plus the authenticated profile.
type LoginResult struct {
	AccessToken string
	Profile     *models.UserProfile
}

// SessionOpener is the session-manager surface the login flow needs.
type SessionOpener interface {
	Open(ctx context.Context, accessID string, userID uuid.UUID) error
	Revoke(ctx context.Context, accessID string) error
}

// Service authenticates admin users for the scanning client.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Logout(ctx context.Context, accessID string) error
}
