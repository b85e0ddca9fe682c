package points

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/kippu-app/kippu-backend/pkg/config"
	pkgdb "github.com/kippu-app/kippu-backend/pkg/db"
	"github.com/kippu-app/kippu-backend/pkg/db/models"
	"github.com/kippu-app/kippu-backend/pkg/enums"
	pkgerrors "github.com/kippu-app/kippu-backend/pkg/errors"
	"github.com/kippu-app/kippu-backend/pkg/pagination"
)

func pointsTestConfig() config.PointsConfig {
	return config.PointsConfig{SignupBonus: 500, OrderBonus: 100}
}

func TestCreditAppendsLedgerEntry(t *testing.T) {
	db := setupPointsTestDB(t)
	svc := NewService(nil, NewRepository(db), pointsTestConfig(), nil)
	ctx := context.Background()
	profile := seedPointsProfile(t, db, 0)

	event, err := svc.Credit(ctx, CreditInput{
		UserProfileID: profile.ID,
		Amount:        250,
		Action:        enums.PointActionOrder,
	})
	require.NoError(t, err)
	require.Equal(t, 250, event.Amount)
	require.Equal(t, 250, event.BalanceAfter)
	require.Equal(t, enums.PointActionOrder, event.Action)

	var count int64
	require.NoError(t, db.Model(&models.PointEvent{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCreditInsufficientPointsIsConflict(t *testing.T) {
	db := setupPointsTestDB(t)
	svc := NewService(nil, NewRepository(db), pointsTestConfig(), nil)
	profile := seedPointsProfile(t, db, 10)

	_, err := svc.Credit(context.Background(), CreditInput{
		UserProfileID: profile.ID,
		Amount:        -20,
		Action:        enums.PointActionRedeem,
	})
	require.Error(t, err)
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	require.Equal(t, pkgerrors.CodeConflict, domainErr.Code())

	var count int64
	require.NoError(t, db.Model(&models.PointEvent{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestCreditUnknownProfileIsNotFound(t *testing.T) {
	db := setupPointsTestDB(t)
	svc := NewService(nil, NewRepository(db), pointsTestConfig(), nil)

	_, err := svc.Credit(context.Background(), CreditInput{
		UserProfileID: uuid.New(),
		Amount:        10,
		Action:        enums.PointActionOrder,
	})
	require.Error(t, err)
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	require.Equal(t, pkgerrors.CodeNotFound, domainErr.Code())
}

func TestGrantSignupBonusExactlyOnce(t *testing.T) {
	db := setupPointsTestDB(t)
	svc := NewService(nil, NewRepository(db), pointsTestConfig(), nil)
	ctx := context.Background()
	profile := seedPointsProfile(t, db, 0)

	event, err := svc.GrantSignupBonus(ctx, profile.ID)
	require.NoError(t, err)
	require.NotNil(t, event)
	require.Equal(t, enums.PointActionSignup, event.Action)
	require.Equal(t, 500, event.Amount)
	require.Equal(t, 500, event.BalanceAfter)

	repeat, err := svc.GrantSignupBonus(ctx, profile.ID)
	require.NoError(t, err)
	require.Nil(t, repeat)

	fresh, err := NewRepository(db).FindProfile(ctx, profile.ID)
	require.NoError(t, err)
	require.Equal(t, 500, fresh.Points)

	var count int64
	require.NoError(t, db.Model(&models.PointEvent{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCreditOrderBonusOncePerOrder(t *testing.T) {
	db := setupPointsTestDB(t)
	svc := NewService(nil, NewRepository(db), pointsTestConfig(), nil)
	ctx := context.Background()
	profile := seedPointsProfile(t, db, 0)

	event, err := svc.CreditOrderBonus(ctx, profile.ID, "order-555001")
	require.NoError(t, err)
	require.NotNil(t, event)
	require.Equal(t, 100, event.Amount)

	repeat, err := svc.CreditOrderBonus(ctx, profile.ID, "order-555001")
	require.NoError(t, err)
	require.Nil(t, repeat)

	other, err := svc.CreditOrderBonus(ctx, profile.ID, "order-555002")
	require.NoError(t, err)
	require.NotNil(t, other)
	require.Equal(t, 200, other.BalanceAfter)
}

func TestRedeemDebitsBalance(t *testing.T) {
	db := setupPointsTestDB(t)
	svc := NewService(nil, NewRepository(db), pointsTestConfig(), nil)
	ctx := context.Background()
	profile := seedPointsProfile(t, db, 300)

	ref := "prize-7"
	event, err := svc.Redeem(ctx, profile.ID, 200, &ref)
	require.NoError(t, err)
	require.Equal(t, -200, event.Amount)
	require.Equal(t, 100, event.BalanceAfter)
	require.Equal(t, enums.PointActionRedeem, event.Action)

	_, err = svc.Redeem(ctx, profile.ID, 0, nil)
	require.Error(t, err)
}

func TestRedeemRollsBackDebitWhenLedgerInsertFails(t *testing.T) {
	db := setupPointsTestDB(t)
	svc := NewService(pkgdb.FromGorm(db), NewRepository(db), pointsTestConfig(), nil)
	ctx := context.Background()
	profile := seedPointsProfile(t, db, 300)

	require.NoError(t, db.Exec("DROP TABLE point_events").Error)

	ref := "prize-9"
	_, err := svc.Redeem(ctx, profile.ID, 200, &ref)
	require.Error(t, err)

	fresh, err := NewRepository(db).FindProfile(ctx, profile.ID)
	require.NoError(t, err)
	require.Equal(t, 300, fresh.Points)
}

func TestGrantSignupBonusRollsBackClaimWhenLedgerInsertFails(t *testing.T) {
	db := setupPointsTestDB(t)
	svc := NewService(pkgdb.FromGorm(db), NewRepository(db), pointsTestConfig(), nil)
	ctx := context.Background()
	profile := seedPointsProfile(t, db, 0)

	require.NoError(t, db.Exec("DROP TABLE point_events").Error)

	_, err := svc.GrantSignupBonus(ctx, profile.ID)
	require.Error(t, err)

	fresh, err := NewRepository(db).FindProfile(ctx, profile.ID)
	require.NoError(t, err)
	require.Equal(t, 0, fresh.Points)
	require.False(t, fresh.SignupBonusReceived)
}

func TestSummaryReturnsBalanceAndLedger(t *testing.T) {
	db := setupPointsTestDB(t)
	svc := NewService(nil, NewRepository(db), pointsTestConfig(), nil)
	ctx := context.Background()
	profile := seedPointsProfile(t, db, 0)

	_, err := svc.GrantSignupBonus(ctx, profile.ID)
	require.NoError(t, err)
	_, err = svc.CreditOrderBonus(ctx, profile.ID, "order-1")
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, profile.ID, pagination.Params{})
	require.NoError(t, err)
	require.Equal(t, 600, summary.Balance)
	require.Len(t, summary.Events, 2)
}

func TestSummaryUnknownProfile(t *testing.T) {
	db := setupPointsTestDB(t)
	svc := NewService(nil, NewRepository(db), pointsTestConfig(), nil)

	_, err := svc.Summary(context.Background(), uuid.New(), pagination.Params{})
	require.Error(t, err)
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	require.Equal(t, pkgerrors.CodeNotFound, domainErr.Code())
}
