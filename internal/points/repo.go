package points

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kippu-app/kippu-backend/pkg/db/models"
	"github.com/kippu-app/kippu-backend/pkg/enums"
	"github.com/kippu-app/kippu-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a points repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) AddPoints(ctx context.Context, userProfileID uuid.UUID, delta int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("id = ? AND points + ? >= 0", userProfileID, delta).
		Update("points", gorm.Expr("points + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ClaimSignupBonus(ctx context.Context, userProfileID uuid.UUID, amount int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("id = ? AND signup_bonus_received = ?", userProfileID, false).
		Updates(map[string]any{
			"signup_bonus_received": true,
			"points":                gorm.Expr("points + ?", amount),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) FindProfile(ctx context.Context, userProfileID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.WithContext(ctx).Where("id = ?", userProfileID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *repository) InsertEvent(ctx context.Context, row *models.PointEvent) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) HasEventForReference(ctx context.Context, userProfileID uuid.UUID, action enums.PointAction, reference string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PointEvent{}).
		Where("user_profile_id = ? AND action = ? AND reference = ?", userProfileID, action, reference).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListEvents(ctx context.Context, userProfileID uuid.UUID, params pagination.Params) (*LedgerPage, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Where("user_profile_id = ?", userProfileID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.PointEvent
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	page := &LedgerPage{Events: rows}
	if len(rows) > limit {
		page.Events = rows[:limit]
		last := page.Events[limit-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &next
	}
	return page, nil
}
