package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/kippu-app/kippu-backend/pkg/enums"
)

// WebhookLog records every inbound webhook delivery by its platform-assigned
// delivery ID. At most one row exists per delivery ID; status moves
// pending -> completed|failed, and failed rows may re-enter pending for a
// retry. Rows are never deleted.
type WebhookLog struct {
	ID         uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DeliveryID string              `gorm:"column:delivery_id;uniqueIndex;not null"`
	Topic      enums.WebhookTopic  `gorm:"column:topic;type:text;not null"`
	Payload    json.RawMessage     `gorm:"column:payload;type:jsonb;not null"`
	Status     enums.WebhookStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
