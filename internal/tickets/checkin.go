package tickets

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kippu-app/kippu-backend/pkg/db"
	"github.com/kippu-app/kippu-backend/pkg/db/models"
	"github.com/kippu-app/kippu-backend/pkg/enums"
	pkgerrors "github.com/kippu-app/kippu-backend/pkg/errors"
	"github.com/kippu-app/kippu-backend/pkg/logger"
	"github.com/kippu-app/kippu-backend/pkg/outbox"
	"github.com/kippu-app/kippu-backend/pkg/outbox/payloads"
)

type checkInService struct {
	client *db.Client
	repo   Repository
	events *outbox.Service
	logg   *logger.Logger
	now    func() time.Time
}

// NewCheckInService builds the admission scan service. Client and events may
// be nil; the scan then runs without outbox emission.
func NewCheckInService(client *db.Client, repo Repository, events *outbox.Service, logg *logger.Logger) CheckInService {
	return &checkInService{client: client, repo: repo, events: events, logg: logg, now: time.Now}
}

// Scan attempts the NONE to USED transition for one ticket. The transition is
// a single conditional UPDATE, so two concurrent scans of the same ticket
// resolve to exactly one Success and one Warning.
func (s *checkInService) Scan(ctx context.Context, ticketID uuid.UUID) (*ScanOutcome, error) {
	if ticketID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ticket id is required")
	}

	ticket, err := s.repo.FindByID(ctx, ticketID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find ticket")
	}
	if ticket == nil {
		return &ScanOutcome{
			Status:  enums.ScanResultError,
			Message: "Ticket not found",
		}, nil
	}

	scanTime := s.now().UTC()
	moved, err := s.markUsed(ctx, ticket, scanTime)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark ticket used")
	}

	fresh, err := s.repo.FindByID(ctx, ticketID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload ticket")
	}

	if !moved {
		return &ScanOutcome{
			Status:  enums.ScanResultWarning,
			Message: "Already checked-in",
			Ticket:  fresh,
		}, nil
	}

	if s.logg != nil {
		fields := map[string]any{"ticket_id": ticketID.String()}
		s.logg.Info(s.logg.WithFields(ctx, fields), "ticket checked in")
	}
	return &ScanOutcome{
		Status:  enums.ScanResultSuccess,
		Message: "Checked in",
		Ticket:  fresh,
	}, nil
}

// markUsed runs the state transition, and when an outbox is wired, queues the
// checked-in event in the same transaction that won the transition.
func (s *checkInService) markUsed(ctx context.Context, ticket *models.Ticket, scanTime time.Time) (bool, error) {
	if s.client == nil || s.events == nil {
		return s.repo.MarkUsed(ctx, ticket.ID, scanTime)
	}

	var moved bool
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		moved, txErr = s.repo.WithTx(tx).MarkUsed(ctx, ticket.ID, scanTime)
		if txErr != nil {
			return txErr
		}
		if !moved {
			return nil
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTicketCheckedIn,
			AggregateType: enums.AggregateTicket,
			AggregateID:   ticket.ID,
			Data: payloads.TicketCheckedInEvent{
				TicketID:      ticket.ID,
				UserProfileID: ticket.UserProfileID,
				CheckInTime:   scanTime,
			},
			Version: 1,
		})
	})
	return moved, err
}
