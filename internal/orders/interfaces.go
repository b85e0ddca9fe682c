package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kippu-app/kippu-backend/pkg/db/models"
)

// Repository persists normalized orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByShopifyOrderID(ctx context.Context, shopifyOrderID int64) (*models.Order, error)
}

// ProfileResolver maps a platform customer ID to the owning profile.
type ProfileResolver interface {
	FindByShopifyCustomerID(ctx context.Context, customerID string) (*models.UserProfile, error)
}

// Service reconciles order payloads into exactly one row per external order.
type Service interface {
	UpsertOrder(ctx context.Context, input OrderInput) (*models.Order, error)
}
