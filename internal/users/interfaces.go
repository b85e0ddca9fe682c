package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kippu-app/kippu-backend/pkg/db/models"
)

// ProfileFields carries the mutable contact fields synced from the commerce
// platform or collected during registration.
type ProfileFields struct {
	Email     string
	Phone     *string
	FirstName string
	LastName  string
	Ethnicity *string
	Gender    *string
	Zipcode   *string
}

// Repository persists user profiles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error)
	FindByShopifyCustomerID(ctx context.Context, customerID string) (*models.UserProfile, error)
	FindByEmail(ctx context.Context, email string) (*models.UserProfile, error)
	UpdateProfileFields(ctx context.Context, id uuid.UUID, fields ProfileFields) error
	UpdateDeviceToken(ctx context.Context, id uuid.UUID, token *string) error
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
}

// Service keeps profiles in sync with the commerce platform.
type Service interface {
	SyncFromPlatform(ctx context.Context, customerID string, fields ProfileFields) (*models.UserProfile, error)
}
