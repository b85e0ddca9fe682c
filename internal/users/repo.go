package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kippu-app/kippu-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a user profile repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error) {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *repository) FindByShopifyCustomerID(ctx context.Context, customerID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.WithContext(ctx).Where("shopify_customer_id = ?", customerID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// UpdateProfileFields writes the provided contact fields. Empty fields are
// left untouched, so a platform payload with an absent email or name never
// blanks the stored value.
func (r *repository) UpdateProfileFields(ctx context.Context, id uuid.UUID, fields ProfileFields) error {
	updates := map[string]any{}
	if fields.Email != "" {
		updates["email"] = fields.Email
	}
	if fields.Phone != nil {
		updates["phone"] = fields.Phone
	}
	if fields.FirstName != "" {
		updates["first_name"] = fields.FirstName
	}
	if fields.LastName != "" {
		updates["last_name"] = fields.LastName
	}
	if fields.Ethnicity != nil {
		updates["ethnicity"] = fields.Ethnicity
	}
	if fields.Gender != nil {
		updates["gender"] = fields.Gender
	}
	if fields.Zipcode != nil {
		updates["zipcode"] = fields.Zipcode
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) UpdateDeviceToken(ctx context.Context, id uuid.UUID, token *string) error {
	return r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("id = ?", id).
		Update("device_token", token).Error
}

func (r *repository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("id = ?", id).
		Update("last_login_at", now).Error
}
