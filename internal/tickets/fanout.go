package tickets

import (
	"context"

	"github.com/google/uuid"

	"github.com/kippu-app/kippu-backend/pkg/db/models"
	"github.com/kippu-app/kippu-backend/pkg/enums"
	pkgerrors "github.com/kippu-app/kippu-backend/pkg/errors"
	"github.com/kippu-app/kippu-backend/pkg/logger"
)

type fanoutService struct {
	repo Repository
	logg *logger.Logger
}

// NewFanoutService builds the ticket fan-out engine.
func NewFanoutService(repo Repository, logg *logger.Logger) FanoutService {
	return &fanoutService{repo: repo, logg: logg}
}

type unitKey struct {
	productID int64
	variantID int64
	unitSeq   int
}

// ReconcileTickets materializes one ticket row per purchased unit and matches
// them 1:1 against existing rows on (product_id, variant_id, unit_seq).
// Replays degrade to updates; a quantity increase inserts only the missing
// sequences. Both batches must run inside the caller's transaction.
func (s *fanoutService) ReconcileTickets(ctx context.Context, input FanoutInput) (*FanoutResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if input.UserProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user profile id is required")
	}

	candidates := s.materialize(ctx, input)
	if len(candidates) == 0 {
		return &FanoutResult{}, nil
	}

	existing, err := s.repo.ListByShopifyOrderID(ctx, input.ShopifyOrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load existing tickets")
	}
	existingByUnit := make(map[unitKey]models.Ticket, len(existing))
	for _, row := range existing {
		existingByUnit[unitKey{row.ProductID, row.VariantID, row.UnitSeq}] = row
	}

	result := &FanoutResult{}
	for _, candidate := range candidates {
		key := unitKey{candidate.ProductID, candidate.VariantID, candidate.UnitSeq}
		if prior, ok := existingByUnit[key]; ok {
			candidate.ID = prior.ID
			result.Updated = append(result.Updated, candidate)
			continue
		}
		result.Inserted = append(result.Inserted, candidate)
	}

	if err := s.repo.BulkInsert(ctx, result.Inserted); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert tickets")
	}
	if err := s.repo.BulkUpdate(ctx, result.Updated); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update tickets")
	}

	if s.logg != nil {
		fields := map[string]any{
			"shopify_order_id": input.ShopifyOrderID,
			"inserted":         len(result.Inserted),
			"updated":          len(result.Updated),
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "tickets reconciled")
	}
	return result, nil
}

func (s *fanoutService) materialize(ctx context.Context, input FanoutInput) []models.Ticket {
	var out []models.Ticket
	for _, item := range input.LineItems {
		category, ticketed := CategoryForProduct(item.ProductID)
		if !ticketed {
			continue
		}

		var validDate *string
		if category == enums.TicketCategoryAdmission {
			if date, ok := ValidDateForVariantTitle(item.VariantTitle); ok {
				validDate = &date
			} else if s.logg != nil {
				fields := map[string]any{
					"shopify_order_id": input.ShopifyOrderID,
					"variant_title":    item.VariantTitle,
				}
				s.logg.Warn(s.logg.WithFields(ctx, fields), "admission variant title matches no known event date")
			}
		}

		for seq := 1; seq <= item.Quantity; seq++ {
			out = append(out, models.Ticket{
				OrderID:        input.OrderID,
				UserProfileID:  input.UserProfileID,
				ShopifyOrderID: input.ShopifyOrderID,
				OrderNumber:    input.OrderNumber,
				CheckoutID:     input.CheckoutID,
				ProductID:      item.ProductID,
				VariantID:      item.VariantID,
				UnitSeq:        seq,
				Category:       category,
				Title:          item.Title,
				VariantTitle:   item.VariantTitle,
				ValidDate:      validDate,
				IsEarlyBird:    IsEarlyBird(item.Title),
				CheckInStatus:  enums.CheckInStatusNone,
			})
		}
	}
	return out
}
