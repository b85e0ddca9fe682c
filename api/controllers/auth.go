package controllers

import (
	"net/http"

	"github.com/kippu-app/kippu-backend/api/middleware"
	"github.com/kippu-app/kippu-backend/api/responses"
	"github.com/kippu-app/kippu-backend/api/validators"
	internalauth "github.com/kippu-app/kippu-backend/internal/auth"
	pkgerrors "github.com/kippu-app/kippu-backend/pkg/errors"
	"github.com/kippu-app/kippu-backend/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
}

// Login authenticates admin credentials for the scanning client.
func Login(svc internalauth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req loginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Login(ctx, internalauth.LoginInput{Email: req.Email, Password: req.Password})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, loginResponse{
			AccessToken: result.AccessToken,
			UserID:      result.Profile.ID.String(),
		})
	}
}

// Logout revokes the session behind the presented token.
func Logout(svc internalauth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenID := middleware.TokenIDFromContext(ctx)
		if tokenID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
			return
		}
		if err := svc.Logout(ctx, tokenID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}
