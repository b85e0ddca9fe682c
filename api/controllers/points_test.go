package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kippu-app/kippu-backend/internal/points"
	"github.com/kippu-app/kippu-backend/pkg/db/models"
	pkgerrors "github.com/kippu-app/kippu-backend/pkg/errors"
	"github.com/kippu-app/kippu-backend/pkg/pagination"
)

type fakePointsService struct {
	summary      *points.Summary
	redeemed     *models.PointEvent
	redeemErr    error
	lastUser     uuid.UUID
	lastAmount   int
	lastRef      *string
	redeemCalled bool
}

func (f *fakePointsService) WithTx(tx *gorm.DB) points.Service { return f }

func (f *fakePointsService) Credit(ctx context.Context, input points.CreditInput) (*models.PointEvent, error) {
	return nil, nil
}

func (f *fakePointsService) GrantSignupBonus(ctx context.Context, userProfileID uuid.UUID) (*models.PointEvent, error) {
	return nil, nil
}

func (f *fakePointsService) CreditOrderBonus(ctx context.Context, userProfileID uuid.UUID, orderRef string) (*models.PointEvent, error) {
	return nil, nil
}

func (f *fakePointsService) Redeem(ctx context.Context, userProfileID uuid.UUID, amount int, reference *string) (*models.PointEvent, error) {
	f.redeemCalled = true
	f.lastUser = userProfileID
	f.lastAmount = amount
	f.lastRef = reference
	return f.redeemed, f.redeemErr
}

func (f *fakePointsService) Summary(ctx context.Context, userProfileID uuid.UUID, params pagination.Params) (*points.Summary, error) {
	f.lastUser = userProfileID
	return f.summary, nil
}

func TestGetPointsReturnsSummary(t *testing.T) {
	userID := uuid.New()
	svc := &fakePointsService{summary: &points.Summary{Balance: 600}}
	handler := GetPoints(svc, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/points", nil, userID, false))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, userID, svc.lastUser)

	var envelope struct {
		Data struct {
			Balance int `json:"balance"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, 600, envelope.Data.Balance)
}

func TestGetPointsRequiresIdentity(t *testing.T) {
	handler := GetPoints(&fakePointsService{}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/points", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRedeemPointsDebitsCaller(t *testing.T) {
	userID := uuid.New()
	svc := &fakePointsService{redeemed: &models.PointEvent{ID: uuid.New(), Amount: -200}}
	handler := RedeemPoints(svc, nil)

	body, err := json.Marshal(map[string]any{"amount": 200, "reference": "raffle-42"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/points/redeem", body, userID, false))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, svc.redeemCalled)
	require.Equal(t, userID, svc.lastUser)
	require.Equal(t, 200, svc.lastAmount)
	require.NotNil(t, svc.lastRef)
	require.Equal(t, "raffle-42", *svc.lastRef)
}

func TestRedeemPointsRejectsNonPositiveAmount(t *testing.T) {
	svc := &fakePointsService{}
	handler := RedeemPoints(svc, nil)

	body := []byte(`{"amount": 0}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/points/redeem", body, uuid.New(), false))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.False(t, svc.redeemCalled)
}

func TestRedeemPointsSurfacesInsufficientBalance(t *testing.T) {
	svc := &fakePointsService{redeemErr: pkgerrors.New(pkgerrors.CodeConflict, "insufficient points")}
	handler := RedeemPoints(svc, nil)

	body := []byte(`{"amount": 9000}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/points/redeem", body, uuid.New(), false))

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "insufficient points")
}
