package orders

import (
	"context"
	"fmt"

	"github.com/kippu-app/kippu-backend/pkg/db/models"
	"github.com/kippu-app/kippu-backend/pkg/enums"
	pkgerrors "github.com/kippu-app/kippu-backend/pkg/errors"
	"github.com/kippu-app/kippu-backend/pkg/logger"
)

type service struct {
	repo     Repository
	profiles ProfileResolver
	logg     *logger.Logger
}

// NewService builds the order reconciliation service.
func NewService(repo Repository, profiles ProfileResolver, logg *logger.Logger) Service {
	return &service{repo: repo, profiles: profiles, logg: logg}
}

// UpsertOrder resolves the owning profile and lands the payload as exactly
// one row keyed by the external order ID. Create and update topics share
// this path so out-of-order delivery converges on the same row.
func (s *service) UpsertOrder(ctx context.Context, input OrderInput) (*models.Order, error) {
	if input.ShopifyOrderID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if input.ShopifyCustomerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	profile, err := s.profiles.FindByShopifyCustomerID(ctx, input.ShopifyCustomerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve order customer")
	}
	if profile == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no profile for customer %s", input.ShopifyCustomerID))
	}

	financial, err := enums.ParseOrderFinancialStatus(input.FinancialStatus)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "financial status")
	}
	fulfillment, err := enums.ParseOrderFulfillmentStatus(input.FulfillmentStatus)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "fulfillment status")
	}

	currency := input.Currency
	if currency == "" {
		currency = "JPY"
	}

	order := &models.Order{
		ShopifyOrderID:    input.ShopifyOrderID,
		OrderNumber:       input.OrderNumber,
		UserProfileID:     profile.ID,
		ShopifyCustomerID: input.ShopifyCustomerID,
		CheckoutID:        input.CheckoutID,
		FinancialStatus:   financial,
		FulfillmentStatus: fulfillment,
		Currency:          currency,
		SubtotalPrice:     input.SubtotalPrice,
		TotalPrice:        input.TotalPrice,
		TotalTax:          input.TotalTax,
		TotalDiscounts:    input.TotalDiscounts,
		LineItems:         input.LineItemsRaw,
		ProcessedAt:       input.ProcessedAt,
		CancelledAt:       input.CancelledAt,
	}

	if err := s.repo.Upsert(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert order")
	}

	// Re-read so replays return the original row's internal ID rather than
	// the discarded insert candidate.
	stored, err := s.repo.FindByShopifyOrderID(ctx, input.ShopifyOrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load upserted order")
	}
	if stored == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "upserted order not found")
	}

	if s.logg != nil {
		fields := map[string]any{
			"shopify_order_id": input.ShopifyOrderID,
			"order_id":         stored.ID.String(),
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "order reconciled")
	}
	return stored, nil
}
