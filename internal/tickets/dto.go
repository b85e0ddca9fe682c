package tickets

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/kippu-app/kippu-backend/pkg/db/models"
	"github.com/kippu-app/kippu-backend/pkg/enums"
)

// LineItem is the slice of a platform order line item the fan-out engine
// consumes.
type LineItem struct {
	ProductID    int64  `json:"product_id"`
	VariantID    int64  `json:"variant_id"`
	Title        string `json:"title"`
	VariantTitle string `json:"variant_title"`
	Quantity     int    `json:"quantity"`
}

// DecodeLineItems parses the raw line-items blob retained on the order row.
func DecodeLineItems(raw json.RawMessage) ([]LineItem, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var items []LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode line items: %w", err)
	}
	return items, nil
}

// FanoutInput identifies the reconciled order whose line items are being
// materialized into tickets.
type FanoutInput struct {
	OrderID        uuid.UUID
	UserProfileID  uuid.UUID
	ShopifyOrderID int64
	OrderNumber    int
	CheckoutID     string
	LineItems      []LineItem
}

// FanoutResult reports what the reconciliation pass did.
type FanoutResult struct {
	Inserted []models.Ticket
	Updated  []models.Ticket
}

// ScanOutcome is the caller-visible result of a check-in attempt.
type ScanOutcome struct {
	Status  enums.ScanResult `json:"status"`
	Message string           `json:"message"`
	Ticket  *models.Ticket   `json:"ticket,omitempty"`
}

// TicketList is one page of a user's tickets.
type TicketList struct {
	Tickets    []models.Ticket `json:"tickets"`
	NextCursor *string         `json:"next_cursor,omitempty"`
}
