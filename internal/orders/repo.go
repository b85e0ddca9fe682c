package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kippu-app/kippu-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Upsert inserts the order or, when a row with the same external order ID
// exists, overwrites its mutable columns. Replayed create deliveries and
// update deliveries both land here.
func (r *repository) Upsert(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "shopify_order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"order_number",
				"user_profile_id",
				"shopify_customer_id",
				"checkout_id",
				"financial_status",
				"fulfillment_status",
				"currency",
				"subtotal_price",
				"total_price",
				"total_tax",
				"total_discounts",
				"line_items",
				"processed_at",
				"cancelled_at",
				"updated_at",
			}),
		}).
		Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByShopifyOrderID(ctx context.Context, shopifyOrderID int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("shopify_order_id = ?", shopifyOrderID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}
