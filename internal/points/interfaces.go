package points

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kippu-app/kippu-backend/pkg/db/models"
	"github.com/kippu-app/kippu-backend/pkg/enums"
	"github.com/kippu-app/kippu-backend/pkg/pagination"
)

// Repository persists point balances and the append-only ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// AddPoints applies a signed delta in one conditional UPDATE. The
	// affected-row count is false when the profile is missing or the
	// debit would take the balance below zero.
	AddPoints(ctx context.Context, userProfileID uuid.UUID, delta int) (bool, error)
	// ClaimSignupBonus sets the bonus flag and credits the amount in one
	// statement guarded on the flag still being unset.
	ClaimSignupBonus(ctx context.Context, userProfileID uuid.UUID, amount int) (bool, error)
	FindProfile(ctx context.Context, userProfileID uuid.UUID) (*models.UserProfile, error)
	InsertEvent(ctx context.Context, row *models.PointEvent) error
	HasEventForReference(ctx context.Context, userProfileID uuid.UUID, action enums.PointAction, reference string) (bool, error)
	ListEvents(ctx context.Context, userProfileID uuid.UUID, params pagination.Params) (*LedgerPage, error)
}

// Service mutates balances and appends matching ledger entries. Callers that
// need the pair to commit atomically run the service inside a transaction
// via WithTx.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Credit(ctx context.Context, input CreditInput) (*models.PointEvent, error)
	// GrantSignupBonus credits the one-time bonus. A profile that already
	// received it returns (nil, nil).
	GrantSignupBonus(ctx context.Context, userProfileID uuid.UUID) (*models.PointEvent, error)
	// CreditOrderBonus credits the per-order bonus at most once per order
	// reference. An already-credited order returns (nil, nil).
	CreditOrderBonus(ctx context.Context, userProfileID uuid.UUID, orderRef string) (*models.PointEvent, error)
	Redeem(ctx context.Context, userProfileID uuid.UUID, amount int, reference *string) (*models.PointEvent, error)
	Summary(ctx context.Context, userProfileID uuid.UUID, params pagination.Params) (*Summary, error)
}
