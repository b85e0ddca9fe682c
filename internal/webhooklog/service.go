package webhooklog

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/kippu-app/kippu-backend/pkg/db/models"
	"github.com/kippu-app/kippu-backend/pkg/enums"
	pkgerrors "github.com/kippu-app/kippu-backend/pkg/errors"
	"github.com/kippu-app/kippu-backend/pkg/logger"
)

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the webhook ledger service.
func NewService(repo Repository, logg *logger.Logger) Service {
	return &service{repo: repo, logg: logg}
}

// Claim decides what to do with a delivery:
//   - first sight: record it as pending and process
//   - completed before: skip
//   - pending elsewhere: report in progress
//   - failed before: reclaim it back to pending and process
func (s *service) Claim(ctx context.Context, deliveryID string, topic enums.WebhookTopic, payload json.RawMessage) (Decision, error) {
	if strings.TrimSpace(deliveryID) == "" {
		return DecisionInProgress, pkgerrors.New(pkgerrors.CodeValidation, "delivery id is required")
	}

	row := &models.WebhookLog{
		ID:         uuid.New(),
		DeliveryID: deliveryID,
		Topic:      topic,
		Payload:    payload,
		Status:     enums.WebhookStatusPending,
	}
	inserted, err := s.repo.InsertIfNew(ctx, row)
	if err != nil {
		return DecisionInProgress, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record webhook delivery")
	}
	if inserted {
		return DecisionProcess, nil
	}

	existing, err := s.repo.FindByDeliveryID(ctx, deliveryID)
	if err != nil {
		return DecisionInProgress, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load webhook delivery")
	}
	if existing == nil {
		// Row vanished between insert and fetch; the ledger never deletes, so
		// treat it as contention and let the platform redeliver.
		return DecisionInProgress, nil
	}

	switch existing.Status {
	case enums.WebhookStatusCompleted:
		return DecisionSkip, nil

	case enums.WebhookStatusFailed:
		reclaimed, err := s.repo.TransitionStatus(ctx, deliveryID, enums.WebhookStatusFailed, enums.WebhookStatusPending)
		if err != nil {
			return DecisionInProgress, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reclaim failed delivery")
		}
		if !reclaimed {
			return DecisionInProgress, nil
		}
		if s.logg != nil {
			s.logg.Info(s.logg.WithDeliveryID(ctx, deliveryID), "failed delivery reclaimed for retry")
		}
		return DecisionProcess, nil

	default:
		return DecisionInProgress, nil
	}
}

func (s *service) Complete(ctx context.Context, deliveryID string) error {
	moved, err := s.repo.TransitionStatus(ctx, deliveryID, enums.WebhookStatusPending, enums.WebhookStatusCompleted)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "complete webhook delivery")
	}
	if !moved {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "delivery is not pending")
	}
	return nil
}

func (s *service) Fail(ctx context.Context, deliveryID string) error {
	moved, err := s.repo.TransitionStatus(ctx, deliveryID, enums.WebhookStatusPending, enums.WebhookStatusFailed)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fail webhook delivery")
	}
	if !moved {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "delivery is not pending")
	}
	return nil
}
