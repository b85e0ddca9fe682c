package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kippu-app/kippu-backend/api/responses"
	shopifyhook "github.com/kippu-app/kippu-backend/internal/webhooks/shopify"
	"github.com/kippu-app/kippu-backend/pkg/enums"
	pkgerrors "github.com/kippu-app/kippu-backend/pkg/errors"
	"github.com/kippu-app/kippu-backend/pkg/logger"
	"github.com/kippu-app/kippu-backend/pkg/metrics"
	"github.com/kippu-app/kippu-backend/pkg/shopify"
)

// ShopifyWebhookService is the orchestration surface the handler dispatches to.
type ShopifyWebhookService interface {
	HandleOrderEvent(ctx context.Context, deliveryID string, topic enums.WebhookTopic, payload json.RawMessage) (shopifyhook.Outcome, error)
	HandleCustomerEvent(ctx context.Context, deliveryID string, topic enums.WebhookTopic, payload json.RawMessage) (shopifyhook.Outcome, error)
}

// ShopifyWebhook verifies, deduplicates, and dispatches inbound Shopify
// deliveries. Signature verification runs against the raw body bytes before
// any JSON parsing and fails closed.
func ShopifyWebhook(svc ShopifyWebhookService, webhookSecret string, m *metrics.WebhookMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		start := time.Now()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		if !shopify.VerifyWebhookSignature(payload, webhookSecret, r.Header.Get(shopify.HeaderHmac)) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature"))
			return
		}

		topicHeader := strings.TrimSpace(r.Header.Get(shopify.HeaderTopic))
		topic, err := enums.ParseWebhookTopic(topicHeader)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "webhook topic"))
			return
		}

		deliveryID := strings.TrimSpace(r.Header.Get(shopify.HeaderWebhookID))
		if deliveryID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing delivery id"))
			return
		}

		if logg != nil {
			ctx = logg.WithDeliveryID(ctx, deliveryID)
			ctx = logg.WithTopic(ctx, string(topic))
		}

		var outcome shopifyhook.Outcome
		switch {
		case topic.IsOrderTopic():
			outcome, err = svc.HandleOrderEvent(ctx, deliveryID, topic, payload)
		case topic.IsCustomerTopic():
			outcome, err = svc.HandleCustomerEvent(ctx, deliveryID, topic, payload)
		default:
			err = pkgerrors.New(pkgerrors.CodeValidation, "unsupported webhook topic")
		}

		if m != nil {
			m.ObserveDuration(string(topic), time.Since(start))
		}
		if err != nil {
			if m != nil {
				m.IncDelivery(string(topic), "error")
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		switch outcome {
		case shopifyhook.OutcomeAlreadyProcessed:
			if m != nil {
				m.IncDelivery(string(topic), "duplicate")
			}
			responses.WriteSuccess(w, map[string]string{"status": "already processed"})
		case shopifyhook.OutcomeInProgress:
			if m != nil {
				m.IncDelivery(string(topic), "in_progress")
			}
			responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "in progress"})
		default:
			if m != nil {
				m.IncDelivery(string(topic), "processed")
			}
			responses.WriteSuccess(w, map[string]string{"status": "processed"})
		}
	}
}
