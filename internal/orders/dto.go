package orders

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// OrderInput is the normalized shape handed to the reconciliation engine
// after the webhook payload has been decoded. LineItemsRaw keeps the
// platform's line items verbatim for the ticket fan-out stage.
type OrderInput struct {
	ShopifyOrderID    int64
	OrderNumber       int
	ShopifyCustomerID string
	CheckoutID        string
	FinancialStatus   string
	FulfillmentStatus string
	Currency          string
	SubtotalPrice     decimal.Decimal
	TotalPrice        decimal.Decimal
	TotalTax          decimal.Decimal
	TotalDiscounts    decimal.Decimal
	LineItemsRaw      json.RawMessage
	ProcessedAt       *time.Time
	CancelledAt       *time.Time
}
