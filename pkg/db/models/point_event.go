package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kippu-app/kippu-backend/pkg/enums"
)

// PointEvent is an immutable ledger entry for a point-affecting action.
// Amount is signed: redemptions and lottery entries are negative.
type PointEvent struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserProfileID uuid.UUID         `gorm:"column:user_profile_id;type:uuid;not null;index"`
	Action        enums.PointAction `gorm:"column:action;type:text;not null"`
	Amount        int               `gorm:"column:amount;not null"`
	BalanceAfter  int               `gorm:"column:balance_after;not null"`
	Reference     *string           `gorm:"column:reference"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
}
