package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/kippu-app/kippu-backend/pkg/enums"
)

// TicketIssuedEvent is emitted for each unit materialized from an order.
type TicketIssuedEvent struct {
	TicketID       uuid.UUID            `json:"ticket_id"`
	OrderID        uuid.UUID            `json:"order_id"`
	UserProfileID  uuid.UUID            `json:"user_profile_id"`
	ShopifyOrderID int64                `json:"shopify_order_id"`
	Category       enums.TicketCategory `json:"category"`
	ValidDate      *string              `json:"valid_date,omitempty"`
	UnitSeq        int                  `json:"unit_seq"`
}

// TicketCheckedInEvent surfaces a successful entrance scan.
type TicketCheckedInEvent struct {
	TicketID      uuid.UUID `json:"ticket_id"`
	UserProfileID uuid.UUID `json:"user_profile_id"`
	CheckInTime   time.Time `json:"check_in_time"`
}

// PointsCreditedEvent is emitted when a ledger mutation lands.
type PointsCreditedEvent struct {
	UserProfileID uuid.UUID         `json:"user_profile_id"`
	Action        enums.PointAction `json:"action"`
	Amount        int               `json:"amount"`
	BalanceAfter  int               `json:"balance_after"`
	Reference     *string           `json:"reference,omitempty"`
}

// OrderFulfilledEvent reports that an order reconciled to a fulfilled state.
type OrderFulfilledEvent struct {
	OrderID        uuid.UUID `json:"order_id"`
	ShopifyOrderID int64     `json:"shopify_order_id"`
	UserProfileID  uuid.UUID `json:"user_profile_id"`
	TicketCount    int       `json:"ticket_count"`
}
