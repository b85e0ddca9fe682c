package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kippu-app/kippu-backend/api/middleware"
	"github.com/kippu-app/kippu-backend/api/responses"
	"github.com/kippu-app/kippu-backend/api/validators"
	"github.com/kippu-app/kippu-backend/internal/tickets"
	pkgerrors "github.com/kippu-app/kippu-backend/pkg/errors"
	"github.com/kippu-app/kippu-backend/pkg/logger"
	"github.com/kippu-app/kippu-backend/pkg/metrics"
)

// ListTickets serves the caller's tickets, newest first.
func ListTickets(svc tickets.QueryService, logg *logger.Logger) http.HandlerFunc {
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

		list, err := svc.ListForUser(ctx, userID, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type scanRequest struct {
	TicketID string `json:"ticketId" validate:"required,uuid"`
}

// ScanTicket runs the check-in state machine for one ticket. The three-way
// outcome rides a 200 response; the scanning client branches on the status
// field, not the HTTP code.
func ScanTicket(svc tickets.CheckInService, m *metrics.WebhookMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req scanRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ticketID, err := uuid.Parse(req.TicketID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "ticketId"))
			return
		}

		outcome, err := svc.Scan(ctx, ticketID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if m != nil {
			m.IncScan(string(outcome.Status))
		}
		responses.WriteSuccess(w, outcome)
	}
}
