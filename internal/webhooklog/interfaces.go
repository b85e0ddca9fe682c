package webhooklog

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/kippu-app/kippu-backend/pkg/db/models"
	"github.com/kippu-app/kippu-backend/pkg/enums"
)

// Repository persists the webhook delivery ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	InsertIfNew(ctx context.Context, log *models.WebhookLog) (bool, error)
	FindByDeliveryID(ctx context.Context, deliveryID string) (*models.WebhookLog, error)
	TransitionStatus(ctx context.Context, deliveryID string, from, to enums.WebhookStatus) (bool, error)
}

// Decision tells the caller what to do with an inbound delivery.
type Decision int

const (
	// DecisionProcess means this worker owns the delivery and must run the pipeline.
	DecisionProcess Decision = iota
	// DecisionSkip means the delivery already completed; acknowledge without work.
	DecisionSkip
	// DecisionInProgress means another worker holds the delivery right now.
	DecisionInProgress
)

// Service coordinates claim and release of webhook deliveries.
type Service interface {
	Claim(ctx context.Context, deliveryID string, topic enums.WebhookTopic, payload json.RawMessage) (Decision, error)
	Complete(ctx context.Context, deliveryID string) error
	Fail(ctx context.Context, deliveryID string) error
}
