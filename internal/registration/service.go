package registration

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kippu-app/kippu-backend/internal/points"
	"github.com/kippu-app/kippu-backend/internal/users"
	"github.com/kippu-app/kippu-backend/pkg/db"
	pkgerrors "github.com/kippu-app/kippu-backend/pkg/errors"
	"github.com/kippu-app/kippu-backend/pkg/logger"
	"github.com/kippu-app/kippu-backend/pkg/shopify"
)

const metafieldNamespace = "custom"

type service struct {
	client   *db.Client
	profiles users.Repository
	points   points.Service
	platform PlatformClient
	logg     *logger.Logger
}

// NewService builds the signup-from-app registration service.
func NewService(client *db.Client, profiles users.Repository, pointsSvc points.Service, platform PlatformClient, logg *logger.Logger) Service {
	return &service{client: client, profiles: profiles, points: pointsSvc, platform: platform, logg: logg}
}

// Register pushes the profile fields to the commerce platform, lands them on
// the internal profile, then grants the one-time signup bonus. The platform
// call happens before the local transaction so a Shopify failure leaves the
// profile untouched.
func (s *service) Register(ctx context.Context, input Input) (*Result, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.ShopifyCustomerID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	profile, err := s.profiles.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}
	if profile == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}
	if profile.ShopifyCustomerID != fmt.Sprintf("%d", input.ShopifyCustomerID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id does not match profile")
	}

	if err := s.platform.UpdateCustomer(ctx, shopify.CustomerUpdateParams{
		CustomerID: input.ShopifyCustomerID,
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Phone:      input.Phone,
	}); err != nil {
		return nil, err
	}
	if err := s.platform.SetCustomerMetafields(ctx, input.ShopifyCustomerID, metafieldsFor(input)); err != nil {
		return nil, err
	}

	result := &Result{}
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		txProfiles := s.profiles.WithTx(tx)

		fields := users.ProfileFields{
			Email:     profile.Email,
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Ethnicity: input.Ethnicity,
			Gender:    input.Gender,
			Zipcode:   input.Zipcode,
		}
		if input.Phone != "" {
			phone := input.Phone
			fields.Phone = &phone
		}
		if err := txProfiles.UpdateProfileFields(ctx, input.UserID, fields); err != nil {
			return err
		}
		if input.DeviceToken != nil {
			if err := txProfiles.UpdateDeviceToken(ctx, input.UserID, input.DeviceToken); err != nil {
				return err
			}
		}

		bonus, err := s.points.WithTx(tx).GrantSignupBonus(ctx, input.UserID)
		if err != nil {
			return err
		}
		result.BonusEvent = bonus

		fresh, err := txProfiles.FindByID(ctx, input.UserID)
		if err != nil {
			return err
		}
		result.Profile = fresh
		return nil
	})
	if err != nil {
		if domainErr := pkgerrors.As(err); domainErr != nil {
			return nil, domainErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finalize registration")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithUserID(ctx, input.UserID.String()), "registration completed")
	}
	return result, nil
}

func metafieldsFor(input Input) []shopify.MetafieldInput {
	var fields []shopify.MetafieldInput
	add := func(key string, value *string) {
		if value == nil || *value == "" {
			return
		}
		fields = append(fields, shopify.MetafieldInput{
			Namespace: metafieldNamespace,
			Key:       key,
			Type:      "single_line_text_field",
			Value:     *value,
		})
	}
	add("ethnicity", input.Ethnicity)
	add("gender", input.Gender)
	add("zipcode", input.Zipcode)
	return fields
}
