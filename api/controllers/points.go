package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kippu-app/kippu-backend/api/middleware"
	"github.com/kippu-app/kippu-backend/api/responses"
	"github.com/kippu-app/kippu-backend/api/validators"
	"github.com/kippu-app/kippu-backend/internal/points"
	pkgerrors "github.com/kippu-app/kippu-backend/pkg/errors"
	"github.com/kippu-app/kippu-backend/pkg/logger"
)

// GetPoints serves the caller's balance and point history.
func GetPoints(svc points.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID := middleware.UserIDFromContext(ctx)
		if userID == uuid.Nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		summary, err := svc.Summary(ctx, userID, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

type redeemRequest struct {
	Amount    int     `json:"amount" validate:"required,min=1"`
	Reference *string `json:"reference"`
}

// RedeemPoints debits the caller's balance. The conditional update keeps the
// balance at or above zero regardless of concurrent redemptions.
func RedeemPoints(svc points.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID := middleware.UserIDFromContext(ctx)
		if userID == uuid.Nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity"))
			return
		}

		var req redeemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		event, err := svc.Redeem(ctx, userID, req.Amount, req.Reference)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, event)
	}
}
