package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kippu-app/kippu-backend/api/middleware"
	"github.com/kippu-app/kippu-backend/api/responses"
	"github.com/kippu-app/kippu-backend/api/validators"
	"github.com/kippu-app/kippu-backend/internal/registration"
	pkgerrors "github.com/kippu-app/kippu-backend/pkg/errors"
	"github.com/kippu-app/kippu-backend/pkg/logger"
)

type registerRequest struct {
	ID          int64   `json:"id" validate:"required"`
	UserID      string  `json:"userId" validate:"required,uuid"`
	Phone       string  `json:"phone"`
	FirstName   string  `json:"firstName" validate:"required"`
	LastName    string  `json:"lastName" validate:"required"`
	Ethnicity   *string `json:"ethnicity"`
	Gender      *string `json:"gender"`
	Zipcode     *string `json:"zipcode"`
	DeviceToken *string `json:"deviceToken"`
}

type registerResponse struct {
	UserID       string `json:"user_id"`
	Points       int    `json:"points"`
	BonusGranted bool   `json:"bonus_granted"`
}

// Register runs the signup-from-app flow. The caller may only register the
// profile they are authenticated as.
func Register(svc registration.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req registerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "userId"))
			return
		}
		if caller := middleware.UserIDFromContext(ctx); caller != uuid.Nil && caller != userID {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "cannot register another profile"))
			return
		}

		result, err := svc.Register(ctx, registration.Input{
			ShopifyCustomerID: req.ID,
			UserID:            userID,
			Phone:             req.Phone,
			FirstName:         req.FirstName,
			LastName:          req.LastName,
			Ethnicity:         req.Ethnicity,
			Gender:            req.Gender,
			Zipcode:           req.Zipcode,
			DeviceToken:       req.DeviceToken,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, registerResponse{
			UserID:       result.Profile.ID.String(),
			Points:       result.Profile.Points,
			BonusGranted: result.BonusEvent != nil,
		})
	}
}
