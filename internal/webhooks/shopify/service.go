package shopify

import (
	"context"
	"encoding/json"
	"strconv"

	"gorm.io/gorm"

	"github.com/kippu-app/kippu-backend/internal/orders"
	"github.com/kippu-app/kippu-backend/internal/points"
	"github.com/kippu-app/kippu-backend/internal/tickets"
	"github.com/kippu-app/kippu-backend/internal/users"
	"github.com/kippu-app/kippu-backend/internal/webhooklog"
	"github.com/kippu-app/kippu-backend/pkg/db"
	"github.com/kippu-app/kippu-backend/pkg/enums"
	pkgerrors "github.com/kippu-app/kippu-backend/pkg/errors"
	"github.com/kippu-app/kippu-backend/pkg/logger"
	"github.com/kippu-app/kippu-backend/pkg/outbox"
	"github.com/kippu-app/kippu-backend/pkg/outbox/payloads"
)

// Outcome tells the HTTP layer how a delivery resolved.
type Outcome int

const (
	// OutcomeProcessed means the pipeline ran to completion this call.
	OutcomeProcessed Outcome = iota
	// OutcomeAlreadyProcessed means a prior delivery completed the work.
	OutcomeAlreadyProcessed
	// OutcomeInProgress means another worker currently holds the delivery.
	OutcomeInProgress
)

// Deps wires the orchestrator. Repositories come in unbound; the service
// rebinds them per transaction.
type Deps struct {
	Client      *db.Client
	Ledger      webhooklog.Service
	OrdersRepo  orders.Repository
	UsersRepo   users.Repository
	TicketsRepo tickets.Repository
	Points      points.Service
	Outbox      *outbox.Service
	Logger      *logger.Logger
}

// Service runs the webhook fulfillment pipeline: dedup claim, order upsert,
// ticket fan-out, points credit, and outbox emission in one transaction.
type Service struct {
	deps Deps
}

// NewService builds the webhook orchestration service.
func NewService(deps Deps) *Service {
	return &Service{deps: deps}
}

// HandleOrderEvent processes an orders/create or orders/updated delivery.
// The ledger entry always leaves the pending state: completed on success,
// failed on any pipeline error so Shopify's retry can reclaim it.
func (s *Service) HandleOrderEvent(ctx context.Context, deliveryID string, topic enums.WebhookTopic, payload json.RawMessage) (Outcome, error) {
	if !topic.IsOrderTopic() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "not an order topic")
	}

	decision, err := s.deps.Ledger.Claim(ctx, deliveryID, topic, payload)
	if err != nil {
		return 0, err
	}
	switch decision {
	case webhooklog.DecisionSkip:
		return OutcomeAlreadyProcessed, nil
	case webhooklog.DecisionInProgress:
		return OutcomeInProgress, nil
	}

	if err := s.finalize(ctx, deliveryID, func() error { return s.processOrder(ctx, payload) }); err != nil {
		return 0, err
	}
	return OutcomeProcessed, nil
}

// finalize runs the pipeline and always moves the claimed ledger row out of
// pending: completed on success, failed otherwise. The transition runs in a
// defer on a context detached from the request, so a cancelled, timed-out,
// or panicking delivery still lands on failed and stays reclaimable instead
// of blocking every redelivery as in-progress.
func (s *Service) finalize(ctx context.Context, deliveryID string, fn func() error) (err error) {
	completed := false
	defer func() {
		if completed {
			return
		}
		detached := context.WithoutCancel(ctx)
		if failErr := s.deps.Ledger.Fail(detached, deliveryID); failErr != nil {
			s.log(detached, deliveryID, "release delivery to failed", failErr)
		}
	}()

	if err = fn(); err != nil {
		return err
	}
	if err = s.deps.Ledger.Complete(context.WithoutCancel(ctx), deliveryID); err != nil {
		return err
	}
	completed = true
	return nil
}

func (s *Service) processOrder(ctx context.Context, payload json.RawMessage) error {
	decoded, err := DecodeOrderPayload(payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "order payload")
	}
	input, err := decoded.ToOrderInput()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "order payload")
	}

	return s.deps.Client.WithTx(ctx, func(tx *gorm.DB) error {
		ordersSvc := orders.NewService(s.deps.OrdersRepo.WithTx(tx), s.deps.UsersRepo.WithTx(tx), s.deps.Logger)
		order, err := ordersSvc.UpsertOrder(ctx, input)
		if err != nil {
			return err
		}

		items, err := tickets.DecodeLineItems(order.LineItems)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "line items")
		}

		ticketsRepo := s.deps.TicketsRepo.WithTx(tx)
		fanoutSvc := tickets.NewFanoutService(ticketsRepo, s.deps.Logger)
		fanout, err := fanoutSvc.ReconcileTickets(ctx, tickets.FanoutInput{
			OrderID:        order.ID,
			UserProfileID:  order.UserProfileID,
			ShopifyOrderID: order.ShopifyOrderID,
			OrderNumber:    order.OrderNumber,
			CheckoutID:     order.CheckoutID,
			LineItems:      items,
		})
		if err != nil {
			return err
		}

		orderRef := strconv.FormatInt(order.ShopifyOrderID, 10)
		var bonusEvent *payloads.PointsCreditedEvent
		if len(fanout.Inserted)+len(fanout.Updated) > 0 {
			credited, err := s.deps.Points.WithTx(tx).CreditOrderBonus(ctx, order.UserProfileID, orderRef)
			if err != nil {
				return err
			}
			if credited != nil {
				bonusEvent = &payloads.PointsCreditedEvent{
					UserProfileID: credited.UserProfileID,
					Action:        credited.Action,
					Amount:        credited.Amount,
					BalanceAfter:  credited.BalanceAfter,
					Reference:     credited.Reference,
				}
			}
		}

		for _, tk := range fanout.Inserted {
			err := s.deps.Outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventTicketIssued,
				AggregateType: enums.AggregateTicket,
				AggregateID:   tk.ID,
				Version:       1,
				Data: payloads.TicketIssuedEvent{
					TicketID:       tk.ID,
					OrderID:        tk.OrderID,
					UserProfileID:  tk.UserProfileID,
					ShopifyOrderID: tk.ShopifyOrderID,
					Category:       tk.Category,
					ValidDate:      tk.ValidDate,
					UnitSeq:        tk.UnitSeq,
				},
			})
			if err != nil {
				return err
			}
		}

		if bonusEvent != nil {
			err := s.deps.Outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventPointsCredited,
				AggregateType: enums.AggregateUserProfile,
				AggregateID:   order.UserProfileID,
				Version:       1,
				Data:          *bonusEvent,
			})
			if err != nil {
				return err
			}
		}

		if order.FulfillmentStatus == enums.FulfillmentStatusFulfilled {
			count, err := ticketsRepo.CountByOrder(ctx, order.ID)
			if err != nil {
				return err
			}
			err = s.deps.Outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderFulfilled,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Version:       1,
				Data: payloads.OrderFulfilledEvent{
					OrderID:        order.ID,
					ShopifyOrderID: order.ShopifyOrderID,
					UserProfileID:  order.UserProfileID,
					TicketCount:    int(count),
				},
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// HandleCustomerEvent processes a customers/create or customers/update
// delivery. Profiles are created at app signup, so a customer with no
// matching profile is acknowledged without work.
func (s *Service) HandleCustomerEvent(ctx context.Context, deliveryID string, topic enums.WebhookTopic, payload json.RawMessage) (Outcome, error) {
	if !topic.IsCustomerTopic() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "not a customer topic")
	}

	decision, err := s.deps.Ledger.Claim(ctx, deliveryID, topic, payload)
	if err != nil {
		return 0, err
	}
	switch decision {
	case webhooklog.DecisionSkip:
		return OutcomeAlreadyProcessed, nil
	case webhooklog.DecisionInProgress:
		return OutcomeInProgress, nil
	}

	if err := s.finalize(ctx, deliveryID, func() error { return s.processCustomer(ctx, payload) }); err != nil {
		return 0, err
	}
	return OutcomeProcessed, nil
}

func (s *Service) processCustomer(ctx context.Context, payload json.RawMessage) error {
	decoded, err := DecodeCustomerPayload(payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "customer payload")
	}

	customerID := strconv.FormatInt(decoded.ID, 10)
	existing, err := s.deps.UsersRepo.FindByShopifyCustomerID(ctx, customerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}
	if existing == nil {
		if s.deps.Logger != nil {
			fields := map[string]any{"shopify_customer_id": customerID}
			s.deps.Logger.Info(s.deps.Logger.WithFields(ctx, fields), "customer webhook for unknown profile ignored")
		}
		return nil
	}

	usersSvc := users.NewService(s.deps.UsersRepo, s.deps.Logger)
	_, err = usersSvc.SyncFromPlatform(ctx, customerID, users.ProfileFields{
		Email:     decoded.Email,
		Phone:     decoded.Phone,
		FirstName: decoded.FirstName,
		LastName:  decoded.LastName,
	})
	return err
}

func (s *Service) log(ctx context.Context, deliveryID, msg string, err error) {
	if s.deps.Logger == nil {
		return
	}
	logCtx := s.deps.Logger.WithDeliveryID(ctx, deliveryID)
	s.deps.Logger.Error(logCtx, msg, err)
}
