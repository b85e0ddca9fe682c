package points

import (
	"github.com/google/uuid"

	"github.com/kippu-app/kippu-backend/pkg/db/models"
	"github.com/kippu-app/kippu-backend/pkg/enums"
)

// CreditInput describes one signed balance mutation. Amount is negative for
// debits.
type CreditInput struct {
	UserProfileID uuid.UUID
	Amount        int
	Action        enums.PointAction
	Reference     *string
}

// LedgerPage is one page of a user's point history, newest first.
type LedgerPage struct {
	Events     []models.PointEvent `json:"events"`
	NextCursor *string             `json:"next_cursor,omitempty"`
}

// Summary is the balance plus ledger view served to the mobile client.
type Summary struct {
	Balance    int                 `json:"balance"`
	Events     []models.PointEvent `json:"events"`
	NextCursor *string             `json:"next_cursor,omitempty"`
}
