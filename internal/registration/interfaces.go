package registration

import (
	"context"

	"github.com/google/uuid"

	"github.com/kippu-app/kippu-backend/pkg/db/models"
	"github.com/kippu-app/kippu-backend/pkg/shopify"
)

// Input is the registration/profile-update request from the mobile app.
// ShopifyCustomerID is the numeric platform customer ID created at signup.
type Input struct {
	ShopifyCustomerID int64
	UserID            uuid.UUID
	Phone             string
	FirstName         string
	LastName          string
	Ethnicity         *string
	Gender            *string
	Zipcode           *string
	DeviceToken       *string
}

// Result reports the refreshed profile and, on first registration, the
// signup bonus ledger entry.
type Result struct {
	Profile    *models.UserProfile
	BonusEvent *models.PointEvent
}

// PlatformClient is the slice of the Shopify Admin client registration needs.
type PlatformClient interface {
	UpdateCustomer(ctx context.Context, params shopify.CustomerUpdateParams) error
	SetCustomerMetafields(ctx context.Context, customerID int64, fields []shopify.MetafieldInput) error
}

// Service runs the signup-from-app flow.
type Service interface {
	Register(ctx context.Context, input Input) (*Result, error)
}
