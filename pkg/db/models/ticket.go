package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kippu-app/kippu-backend/pkg/enums"
)

// Ticket is one purchased unit of a ticketed line item. A line item of
// quantity 3 produces 3 rows with unit_seq 1..3. The unique index on
// (shopify_order_id, product_id, variant_id, unit_seq) is what makes webhook
// re-delivery degrade to updates instead of duplicate issuance.
type Ticket struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID            `gorm:"column:order_id;type:uuid;not null;index"`
	UserProfileID  uuid.UUID            `gorm:"column:user_profile_id;type:uuid;not null;index"`
	ShopifyOrderID int64                `gorm:"column:shopify_order_id;not null;uniqueIndex:ux_tickets_order_unit,priority:1"`
	OrderNumber    int                  `gorm:"column:order_number;not null"`
	CheckoutID     string               `gorm:"column:checkout_id"`
	ProductID      int64                `gorm:"column:product_id;not null;uniqueIndex:ux_tickets_order_unit,priority:2"`
	VariantID      int64                `gorm:"column:variant_id;not null;uniqueIndex:ux_tickets_order_unit,priority:3"`
	UnitSeq        int                  `gorm:"column:unit_seq;not null;uniqueIndex:ux_tickets_order_unit,priority:4"`
	Category       enums.TicketCategory `gorm:"column:category;type:text;not null"`
	Title          string               `gorm:"column:title"`
	VariantTitle   string               `gorm:"column:variant_title"`
	ValidDate      *string              `gorm:"column:valid_date"`
	IsEarlyBird    bool                 `gorm:"column:is_early_bird;not null;default:false"`
	CheckInStatus  enums.CheckInStatus  `gorm:"column:check_in_status;type:text;not null;default:'NONE'"`
	CheckInTime    *time.Time           `gorm:"column:check_in_time"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
