package tickets

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kippu-app/kippu-backend/pkg/db/models"
	"github.com/kippu-app/kippu-backend/pkg/pagination"
)

// Repository persists tickets.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	BulkInsert(ctx context.Context, rows []models.Ticket) error
	BulkUpdate(ctx context.Context, rows []models.Ticket) error
	ListByShopifyOrderID(ctx context.Context, shopifyOrderID int64) ([]models.Ticket, error)
	ListByUser(ctx context.Context, userProfileID uuid.UUID, params pagination.Params) (*TicketList, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
	MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
}

// FanoutService materializes order line items into per-unit tickets.
type FanoutService interface {
	ReconcileTickets(ctx context.Context, input FanoutInput) (*FanoutResult, error)
}

// CheckInService runs the NONE -> USED state machine.
type CheckInService interface {
	Scan(ctx context.Context, ticketID uuid.UUID) (*ScanOutcome, error)
}

// QueryService serves read paths for the mobile client.
type QueryService interface {
	ListForUser(ctx context.Context, userProfileID uuid.UUID, params pagination.Params) (*TicketList, error)
}
