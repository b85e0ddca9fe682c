package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kippu-app/kippu-backend/internal/orders"
	"github.com/kippu-app/kippu-backend/internal/points"
	"github.com/kippu-app/kippu-backend/internal/tickets"
	"github.com/kippu-app/kippu-backend/internal/users"
	"github.com/kippu-app/kippu-backend/internal/webhooklog"
	"github.com/kippu-app/kippu-backend/pkg/config"
	"github.com/kippu-app/kippu-backend/pkg/db"
	"github.com/kippu-app/kippu-backend/pkg/db/models"
	"github.com/kippu-app/kippu-backend/pkg/enums"
	pkgerrors "github.com/kippu-app/kippu-backend/pkg/errors"
	"github.com/kippu-app/kippu-backend/pkg/outbox"
)

var pipelineSchemas = []string{
	`CREATE TABLE IF NOT EXISTS user_profiles (
  id TEXT PRIMARY KEY,
  shopify_customer_id TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL,
  phone TEXT,
  first_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  ethnicity TEXT,
  gender TEXT,
  zipcode TEXT,
  device_token TEXT,
  points INTEGER NOT NULL DEFAULT 0,
  signup_bonus_received INTEGER NOT NULL DEFAULT 0,
  is_admin INTEGER NOT NULL DEFAULT 0,
  password_hash TEXT,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  shopify_order_id INTEGER NOT NULL UNIQUE,
  order_number INTEGER NOT NULL,
  user_profile_id TEXT NOT NULL,
  shopify_customer_id TEXT NOT NULL,
  checkout_id TEXT NOT NULL DEFAULT '',
  financial_status TEXT NOT NULL DEFAULT 'pending',
  fulfillment_status TEXT NOT NULL DEFAULT 'unfulfilled',
  currency TEXT NOT NULL DEFAULT 'JPY',
  subtotal_price NUMERIC NOT NULL DEFAULT 0,
  total_price NUMERIC NOT NULL DEFAULT 0,
  total_tax NUMERIC NOT NULL DEFAULT 0,
  total_discounts NUMERIC NOT NULL DEFAULT 0,
  line_items TEXT NOT NULL DEFAULT '[]',
  processed_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS tickets (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  user_profile_id TEXT NOT NULL,
  shopify_order_id INTEGER NOT NULL,
  order_number INTEGER NOT NULL,
  checkout_id TEXT NOT NULL DEFAULT '',
  product_id INTEGER NOT NULL,
  variant_id INTEGER NOT NULL,
  unit_seq INTEGER NOT NULL,
  category TEXT NOT NULL,
  title TEXT NOT NULL DEFAULT '',
  variant_title TEXT NOT NULL DEFAULT '',
  valid_date TEXT,
  is_early_bird INTEGER NOT NULL DEFAULT 0,
  check_in_status TEXT NOT NULL DEFAULT 'NONE',
  check_in_time DATETIME,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (shopify_order_id, product_id, variant_id, unit_seq)
);`,
	`CREATE TABLE IF NOT EXISTS webhook_logs (
  id TEXT PRIMARY KEY,
  delivery_id TEXT NOT NULL UNIQUE,
  topic TEXT NOT NULL,
  payload TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS point_events (
  id TEXT PRIMARY KEY,
  user_profile_id TEXT NOT NULL,
  action TEXT NOT NULL,
  amount INTEGER NOT NULL,
  balance_after INTEGER NOT NULL,
  reference TEXT,
  created_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`,
}

func setupPipeline(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	for _, schema := range pipelineSchemas {
		require.NoError(t, conn.Exec(schema).Error)
	}

	client := db.FromGorm(conn)
	svc := NewService(Deps{
		Client:      client,
		Ledger:      webhooklog.NewService(webhooklog.NewRepository(conn), nil),
		OrdersRepo:  orders.NewRepository(conn),
		UsersRepo:   users.NewRepository(conn),
		TicketsRepo: tickets.NewRepository(conn),
		Points:      points.NewService(nil, points.NewRepository(conn), config.PointsConfig{SignupBonus: 500, OrderBonus: 100}, nil),
		Outbox:      outbox.NewService(outbox.NewRepository(conn), nil),
		Logger:      nil,
	})
	return svc, conn
}

func seedPipelineProfile(t *testing.T, conn *gorm.DB, customerID string) *models.UserProfile {
	t.Helper()
	profile := &models.UserProfile{
		ID:                uuid.New(),
		ShopifyCustomerID: customerID,
		Email:             "buyer@example.com",
	}
	require.NoError(t, conn.Create(profile).Error)
	return profile
}

func orderWebhookBody(orderID int64, customerID int64) json.RawMessage {
	body := fmt.Sprintf(`{
  "id": %d,
  "order_number": 1001,
  "checkout_token": "chk_1",
  "financial_status": "paid",
  "fulfillment_status": "fulfilled",
  "currency": "JPY",
  "subtotal_price": "12000.00",
  "total_price": "12000.00",
  "total_tax": "0.00",
  "total_discounts": "0.00",
  "customer": {"id": %d},
  "line_items": [
    {"product_id": 8059502919855, "variant_id": 44301267566767, "title": "Admission", "variant_title": "12/14 Saturday", "quantity": 2}
  ]
}`, orderID, customerID)
	return json.RawMessage(body)
}

func TestOrderWebhookEndToEnd(t *testing.T) {
	svc, conn := setupPipeline(t)
	ctx := context.Background()
	profile := seedPipelineProfile(t, conn, "9001")

	outcome, err := svc.HandleOrderEvent(ctx, "delivery-1", enums.TopicOrdersCreate, orderWebhookBody(555001, 9001))
	require.NoError(t, err)
	require.Equal(t, OutcomeProcessed, outcome)

	var orderCount, ticketCount int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, conn.Model(&models.Ticket{}).Count(&ticketCount).Error)
	require.EqualValues(t, 1, orderCount)
	require.EqualValues(t, 2, ticketCount)

	var ticketRows []models.Ticket
	require.NoError(t, conn.Order("unit_seq ASC").Find(&ticketRows).Error)
	for _, row := range ticketRows {
		require.Equal(t, enums.TicketCategoryAdmission, row.Category)
		require.NotNil(t, row.ValidDate)
		require.Equal(t, "2024-12-14", *row.ValidDate)
		require.Equal(t, enums.CheckInStatusNone, row.CheckInStatus)
	}

	var fresh models.UserProfile
	require.NoError(t, conn.Where("id = ?", profile.ID).First(&fresh).Error)
	require.Equal(t, 100, fresh.Points)

	var log models.WebhookLog
	require.NoError(t, conn.Where("delivery_id = ?", "delivery-1").First(&log).Error)
	require.Equal(t, enums.WebhookStatusCompleted, log.Status)

	var issued, credited, fulfilled int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Where("event_type = ?", enums.EventTicketIssued).Count(&issued).Error)
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Where("event_type = ?", enums.EventPointsCredited).Count(&credited).Error)
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Where("event_type = ?", enums.EventOrderFulfilled).Count(&fulfilled).Error)
	require.EqualValues(t, 2, issued)
	require.EqualValues(t, 1, credited)
	require.EqualValues(t, 1, fulfilled)
}

func TestOrderWebhookRedeliverySameDeliveryID(t *testing.T) {
	svc, conn := setupPipeline(t)
	ctx := context.Background()
	seedPipelineProfile(t, conn, "9001")
	body := orderWebhookBody(555001, 9001)

	first, err := svc.HandleOrderEvent(ctx, "delivery-1", enums.TopicOrdersCreate, body)
	require.NoError(t, err)
	require.Equal(t, OutcomeProcessed, first)

	second, err := svc.HandleOrderEvent(ctx, "delivery-1", enums.TopicOrdersCreate, body)
	require.NoError(t, err)
	require.Equal(t, OutcomeAlreadyProcessed, second)

	var ticketCount int64
	require.NoError(t, conn.Model(&models.Ticket{}).Count(&ticketCount).Error)
	require.EqualValues(t, 2, ticketCount)
}

func TestOrderWebhookRedeliveryNewDeliveryID(t *testing.T) {
	svc, conn := setupPipeline(t)
	ctx := context.Background()
	profile := seedPipelineProfile(t, conn, "9001")
	body := orderWebhookBody(555001, 9001)

	_, err := svc.HandleOrderEvent(ctx, "delivery-1", enums.TopicOrdersCreate, body)
	require.NoError(t, err)

	outcome, err := svc.HandleOrderEvent(ctx, "delivery-2", enums.TopicOrdersUpdated, body)
	require.NoError(t, err)
	require.Equal(t, OutcomeProcessed, outcome)

	var orderCount, ticketCount, eventCount int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, conn.Model(&models.Ticket{}).Count(&ticketCount).Error)
	require.NoError(t, conn.Model(&models.PointEvent{}).Count(&eventCount).Error)
	require.EqualValues(t, 1, orderCount)
	require.EqualValues(t, 2, ticketCount)
	require.EqualValues(t, 1, eventCount)

	var fresh models.UserProfile
	require.NoError(t, conn.Where("id = ?", profile.ID).First(&fresh).Error)
	require.Equal(t, 100, fresh.Points)

	var issued int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Where("event_type = ?", enums.EventTicketIssued).Count(&issued).Error)
	require.EqualValues(t, 2, issued)
}

func TestOrderWebhookUnknownCustomerFailsAndReclaims(t *testing.T) {
	svc, conn := setupPipeline(t)
	ctx := context.Background()
	body := orderWebhookBody(555001, 9001)

	_, err := svc.HandleOrderEvent(ctx, "delivery-1", enums.TopicOrdersCreate, body)
	require.Error(t, err)
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	require.Equal(t, pkgerrors.CodeNotFound, domainErr.Code())

	var log models.WebhookLog
	require.NoError(t, conn.Where("delivery_id = ?", "delivery-1").First(&log).Error)
	require.Equal(t, enums.WebhookStatusFailed, log.Status)

	var ticketCount int64
	require.NoError(t, conn.Model(&models.Ticket{}).Count(&ticketCount).Error)
	require.EqualValues(t, 0, ticketCount)

	// The profile appears and the same delivery ID is retried.
	seedPipelineProfile(t, conn, "9001")
	outcome, err := svc.HandleOrderEvent(ctx, "delivery-1", enums.TopicOrdersCreate, body)
	require.NoError(t, err)
	require.Equal(t, OutcomeProcessed, outcome)

	require.NoError(t, conn.Model(&models.Ticket{}).Count(&ticketCount).Error)
	require.EqualValues(t, 2, ticketCount)
}

// cancellingTicketsRepo aborts the request context on first use, the way a
// client disconnect or timeout lands mid-pipeline.
type cancellingTicketsRepo struct {
	tickets.Repository
	cancel context.CancelFunc
}

func (r *cancellingTicketsRepo) WithTx(tx *gorm.DB) tickets.Repository {
	return &cancellingTicketsRepo{Repository: r.Repository.WithTx(tx), cancel: r.cancel}
}

func (r *cancellingTicketsRepo) ListByShopifyOrderID(ctx context.Context, shopifyOrderID int64) ([]models.Ticket, error) {
	r.cancel()
	return nil, ctx.Err()
}

func TestOrderWebhookCancelledRequestReleasesDeliveryToFailed(t *testing.T) {
	working, conn := setupPipeline(t)
	seedPipelineProfile(t, conn, "9001")
	body := orderWebhookBody(555001, 9001)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	broken := NewService(Deps{
		Client:      db.FromGorm(conn),
		Ledger:      webhooklog.NewService(webhooklog.NewRepository(conn), nil),
		OrdersRepo:  orders.NewRepository(conn),
		UsersRepo:   users.NewRepository(conn),
		TicketsRepo: &cancellingTicketsRepo{Repository: tickets.NewRepository(conn), cancel: cancel},
		Points:      points.NewService(nil, points.NewRepository(conn), config.PointsConfig{SignupBonus: 500, OrderBonus: 100}, nil),
		Outbox:      outbox.NewService(outbox.NewRepository(conn), nil),
	})

	_, err := broken.HandleOrderEvent(ctx, "delivery-1", enums.TopicOrdersCreate, body)
	require.Error(t, err)

	// The row must leave pending even though the request context is dead,
	// otherwise every redelivery reports in-progress forever.
	var log models.WebhookLog
	require.NoError(t, conn.Where("delivery_id = ?", "delivery-1").First(&log).Error)
	require.Equal(t, enums.WebhookStatusFailed, log.Status)

	outcome, err := working.HandleOrderEvent(context.Background(), "delivery-1", enums.TopicOrdersCreate, body)
	require.NoError(t, err)
	require.Equal(t, OutcomeProcessed, outcome)

	var ticketCount int64
	require.NoError(t, conn.Model(&models.Ticket{}).Count(&ticketCount).Error)
	require.EqualValues(t, 2, ticketCount)
}

func TestOrderWebhookMalformedPayload(t *testing.T) {
	svc, conn := setupPipeline(t)
	ctx := context.Background()

	_, err := svc.HandleOrderEvent(ctx, "delivery-1", enums.TopicOrdersCreate, json.RawMessage(`{"id": 0}`))
	require.Error(t, err)
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	require.Equal(t, pkgerrors.CodeValidation, domainErr.Code())

	var log models.WebhookLog
	require.NoError(t, conn.Where("delivery_id = ?", "delivery-1").First(&log).Error)
	require.Equal(t, enums.WebhookStatusFailed, log.Status)
}

func TestOrderWebhookRejectsCustomerTopic(t *testing.T) {
	svc, _ := setupPipeline(t)

	_, err := svc.HandleOrderEvent(context.Background(), "delivery-1", enums.TopicCustomersCreate, json.RawMessage(`{}`))
	require.Error(t, err)
}

func TestCustomerWebhookUpdatesKnownProfile(t *testing.T) {
	svc, conn := setupPipeline(t)
	ctx := context.Background()
	profile := seedPipelineProfile(t, conn, "9001")

	body := json.RawMessage(`{"id": 9001, "email": "buyer@example.com", "first_name": "Hana", "last_name": "Sato", "phone": "+819012345678"}`)
	outcome, err := svc.HandleCustomerEvent(ctx, "delivery-c1", enums.TopicCustomersUpdate, body)
	require.NoError(t, err)
	require.Equal(t, OutcomeProcessed, outcome)

	var fresh models.UserProfile
	require.NoError(t, conn.Where("id = ?", profile.ID).First(&fresh).Error)
	require.Equal(t, "Hana", fresh.FirstName)
	require.Equal(t, "Sato", fresh.LastName)
	require.NotNil(t, fresh.Phone)
}

func TestCustomerWebhookUnknownProfileIsAcknowledged(t *testing.T) {
	svc, conn := setupPipeline(t)
	ctx := context.Background()

	body := json.RawMessage(`{"id": 4242, "email": "ghost@example.com", "first_name": "Ghost"}`)
	outcome, err := svc.HandleCustomerEvent(ctx, "delivery-c1", enums.TopicCustomersCreate, body)
	require.NoError(t, err)
	require.Equal(t, OutcomeProcessed, outcome)

	var profileCount int64
	require.NoError(t, conn.Model(&models.UserProfile{}).Count(&profileCount).Error)
	require.EqualValues(t, 0, profileCount)

	var log models.WebhookLog
	require.NoError(t, conn.Where("delivery_id = ?", "delivery-c1").First(&log).Error)
	require.Equal(t, enums.WebhookStatusCompleted, log.Status)
}
