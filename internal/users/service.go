package users

import (
	"context"
	"strings"

	"github.com/kippu-app/kippu-backend/pkg/db/models"
	pkgerrors "github.com/kippu-app/kippu-backend/pkg/errors"
	"github.com/kippu-app/kippu-backend/pkg/logger"
)

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the profile sync service.
func NewService(repo Repository, logg *logger.Logger) Service {
	return &service{repo: repo, logg: logg}
}

// SyncFromPlatform creates the profile on first sight of a customer and
// refreshes contact fields on subsequent deliveries. Points balances and
// bonus flags are never touched from here.
func (s *service) SyncFromPlatform(ctx context.Context, customerID string, fields ProfileFields) (*models.UserProfile, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	existing, err := s.repo.FindByShopifyCustomerID(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user profile")
	}

	if existing == nil {
		profile := &models.UserProfile{
			ShopifyCustomerID: customerID,
			Email:             fields.Email,
			Phone:             fields.Phone,
			FirstName:         fields.FirstName,
			LastName:          fields.LastName,
			Ethnicity:         fields.Ethnicity,
			Gender:            fields.Gender,
			Zipcode:           fields.Zipcode,
		}
		created, err := s.repo.Create(ctx, profile)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user profile")
		}
		if s.logg != nil {
			s.logg.Info(s.logg.WithUserID(ctx, created.ID.String()), "user profile created")
		}
		return created, nil
	}

	if err := s.repo.UpdateProfileFields(ctx, existing.ID, fields); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user profile")
	}
	return s.repo.FindByID(ctx, existing.ID)
}
