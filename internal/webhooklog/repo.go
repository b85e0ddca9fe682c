package webhooklog

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kippu-app/kippu-backend/pkg/db/models"
	"github.com/kippu-app/kippu-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a webhook ledger repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// InsertIfNew inserts the row unless a delivery with the same ID already
// exists. Returns true when this call created the row.
func (r *repository) InsertIfNew(ctx context.Context, log *models.WebhookLog) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "delivery_id"}},
			DoNothing: true,
		}).
		Create(log)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) FindByDeliveryID(ctx context.Context, deliveryID string) (*models.WebhookLog, error) {
	var log models.WebhookLog
	err := r.db.WithContext(ctx).Where("delivery_id = ?", deliveryID).First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

// TransitionStatus moves the row from one status to another in a single
// conditional UPDATE. Returns true only when this call performed the move,
// which is what makes concurrent retries race-safe.
func (r *repository) TransitionStatus(ctx context.Context, deliveryID string, from, to enums.WebhookStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.WebhookLog{}).
		Where("delivery_id = ? AND status = ?", deliveryID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
