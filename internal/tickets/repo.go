package tickets

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kippu-app/kippu-backend/pkg/db/models"
	"github.com/kippu-app/kippu-backend/pkg/enums"
	"github.com/kippu-app/kippu-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a tickets repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) BulkInsert(ctx context.Context, rows []models.Ticket) error {
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		if rows[i].ID == uuid.Nil {
			rows[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// BulkUpdate refreshes the descriptive columns of matched rows. Check-in
// state is owned by the scan path and is never touched here.
func (r *repository) BulkUpdate(ctx context.Context, rows []models.Ticket) error {
	for _, row := range rows {
		err := r.db.WithContext(ctx).
			Model(&models.Ticket{}).
			Where("id = ?", row.ID).
			Updates(map[string]any{
				"order_id":        row.OrderID,
				"user_profile_id": row.UserProfileID,
				"order_number":    row.OrderNumber,
				"checkout_id":     row.CheckoutID,
				"category":        row.Category,
				"title":           row.Title,
				"variant_title":   row.VariantTitle,
				"valid_date":      row.ValidDate,
				"is_early_bird":   row.IsEarlyBird,
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) ListByShopifyOrderID(ctx context.Context, shopifyOrderID int64) ([]models.Ticket, error) {
	var rows []models.Ticket
	err := r.db.WithContext(ctx).
		Where("shopify_order_id = ?", shopifyOrderID).
		Order("product_id ASC").
		Order("variant_id ASC").
		Order("unit_seq ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListByUser(ctx context.Context, userProfileID uuid.UUID, params pagination.Params) (*TicketList, error) {
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

	var rows []models.Ticket
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &TicketList{Tickets: rows}
	if len(rows) > limit {
		list.Tickets = rows[:limit]
		last := list.Tickets[limit-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.NextCursor = &next
	}
	return list, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}

// MarkUsed flips the check-in state in a single conditional UPDATE. The
// affected-row count distinguishes winning the transition from scanning an
// already-used ticket.
func (r *repository) MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("id = ? AND check_in_status = ?", id, enums.CheckInStatusNone).
		Updates(map[string]any{
			"check_in_status": enums.CheckInStatusUsed,
			"check_in_time":   at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	return count, err
}
