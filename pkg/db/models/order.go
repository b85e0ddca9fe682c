package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kippu-app/kippu-backend/pkg/enums"
)

// Order is the normalized copy of a Shopify order. Exactly one row exists per
// external order ID; webhook re-delivery upserts instead of duplicating.
type Order struct {
	ID                uuid.UUID                    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopifyOrderID    int64                        `gorm:"column:shopify_order_id;uniqueIndex;not null"`
	OrderNumber       int                          `gorm:"column:order_number;not null"`
	UserProfileID     uuid.UUID                    `gorm:"column:user_profile_id;type:uuid;not null"`
	ShopifyCustomerID string                       `gorm:"column:shopify_customer_id;not null"`
	CheckoutID        string                       `gorm:"column:checkout_id"`
	FinancialStatus   enums.OrderFinancialStatus   `gorm:"column:financial_status;type:text;not null;default:'pending'"`
	FulfillmentStatus enums.OrderFulfillmentStatus `gorm:"column:fulfillment_status;type:text;not null;default:'unfulfilled'"`
	Currency          string                       `gorm:"column:currency;not null;default:'JPY'"`
	SubtotalPrice     decimal.Decimal              `gorm:"column:subtotal_price;type:numeric;not null"`
	TotalPrice        decimal.Decimal              `gorm:"column:total_price;type:numeric;not null"`
	TotalTax          decimal.Decimal              `gorm:"column:total_tax;type:numeric;not null"`
	TotalDiscounts    decimal.Decimal              `gorm:"column:total_discounts;type:numeric;not null"`
	LineItems         json.RawMessage              `gorm:"column:line_items;type:jsonb;not null"`
	ProcessedAt       *time.Time                   `gorm:"column:processed_at"`
	CancelledAt       *time.Time                   `gorm:"column:cancelled_at"`
	CreatedAt         time.Time                    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                    `gorm:"column:updated_at;autoUpdateTime"`
}
