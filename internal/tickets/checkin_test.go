package tickets

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	pkgdb "github.com/kippu-app/kippu-backend/pkg/db"
	"github.com/kippu-app/kippu-backend/pkg/enums"
	"github.com/kippu-app/kippu-backend/pkg/outbox"
)

func TestScanSucceedsOnce(t *testing.T) {
	db := setupTicketsTestDB(t)
	repo := NewRepository(db)
	ticket := seedTicket(t, db, nil)
	ctx := context.Background()

	fixed := time.Date(2024, 12, 14, 9, 30, 0, 0, time.UTC)
	svc := &checkInService{repo: repo, now: func() time.Time { return fixed }}

	outcome, err := svc.Scan(ctx, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, enums.ScanResultSuccess, outcome.Status)
	require.NotNil(t, outcome.Ticket)
	require.Equal(t, enums.CheckInStatusUsed, outcome.Ticket.CheckInStatus)
	require.NotNil(t, outcome.Ticket.CheckInTime)
	require.WithinDuration(t, fixed, *outcome.Ticket.CheckInTime, time.Second)
}

func TestScanSecondAttemptIsWarning(t *testing.T) {
	db := setupTicketsTestDB(t)
	repo := NewRepository(db)
	svc := NewCheckInService(nil, repo, nil, nil)
	ticket := seedTicket(t, db, nil)
	ctx := context.Background()

	first, err := svc.Scan(ctx, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, enums.ScanResultSuccess, first.Status)

	second, err := svc.Scan(ctx, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, enums.ScanResultWarning, second.Status)
	require.Equal(t, "Already checked-in", second.Message)
	require.NotNil(t, second.Ticket)
	require.Equal(t, first.Ticket.CheckInTime.UTC(), second.Ticket.CheckInTime.UTC())
}

func TestScanEmitsCheckedInEventOnce(t *testing.T) {
	conn := setupTicketsTestDB(t)
	require.NoError(t, conn.Exec(`CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`).Error)

	repo := NewRepository(conn)
	events := outbox.NewService(outbox.NewRepository(conn), nil)
	svc := NewCheckInService(pkgdb.FromGorm(conn), repo, events, nil)
	ticket := seedTicket(t, conn, nil)
	ctx := context.Background()

	first, err := svc.Scan(ctx, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, enums.ScanResultSuccess, first.Status)

	second, err := svc.Scan(ctx, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, enums.ScanResultWarning, second.Status)

	var count int64
	require.NoError(t, conn.Table("outbox_events").
		Where("event_type = ? AND aggregate_id = ?", enums.EventTicketCheckedIn, ticket.ID.String()).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestScanUnknownTicketIsError(t *testing.T) {
	db := setupTicketsTestDB(t)
	svc := NewCheckInService(nil, NewRepository(db), nil, nil)

	outcome, err := svc.Scan(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Equal(t, enums.ScanResultError, outcome.Status)
	require.Equal(t, "Ticket not found", outcome.Message)
	require.Nil(t, outcome.Ticket)
}

func TestScanNilIDIsValidationError(t *testing.T) {
	db := setupTicketsTestDB(t)
	svc := NewCheckInService(nil, NewRepository(db), nil, nil)

	_, err := svc.Scan(context.Background(), uuid.Nil)
	require.Error(t, err)
}
