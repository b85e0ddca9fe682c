package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kippu-app/kippu-backend/api/controllers"
	webhookcontrollers "github.com/kippu-app/kippu-backend/api/controllers/webhooks"
	"github.com/kippu-app/kippu-backend/api/middleware"
	internalauth "github.com/kippu-app/kippu-backend/internal/auth"
	"github.com/kippu-app/kippu-backend/internal/points"
	"github.com/kippu-app/kippu-backend/internal/registration"
	"github.com/kippu-app/kippu-backend/internal/tickets"
	"github.com/kippu-app/kippu-backend/pkg/auth/session"
	"github.com/kippu-app/kippu-backend/pkg/config"
	"github.com/kippu-app/kippu-backend/pkg/logger"
	"github.com/kippu-app/kippu-backend/pkg/metrics"
)

// Deps carries everything the HTTP surface needs. Nil optional fields
// (Metrics, Gatherer) disable the corresponding endpoints or counters.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	Sessions  session.AccessSessionChecker
	Readiness map[string]controllers.Pinger

	AuthService    internalauth.Service
	Registration   registration.Service
	TicketQueries  tickets.QueryService
	CheckIn        tickets.CheckInService
	Points         points.Service
	WebhookService webhookcontrollers.ShopifyWebhookService

	Metrics  *metrics.WebhookMetrics
	Gatherer prometheus.Gatherer
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(d.Logger),
		middleware.RequestID(d.Logger),
		middleware.Logging(d.Logger),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(d.Config))
		r.Get("/ready", controllers.HealthReady(d.Config, d.Logger, d.Readiness))
	})

	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks/shopify", func(r chi.Router) {
		handler := webhookcontrollers.ShopifyWebhook(d.WebhookService, d.Config.Shopify.WebhookSecret, d.Metrics, d.Logger)
		r.Post("/orders", handler)
		r.Post("/customers", handler)
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.Login(d.AuthService, d.Logger))
		r.With(middleware.Auth(d.Config.JWT, d.Sessions, d.Logger)).Post("/logout", controllers.Logout(d.AuthService, d.Logger))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(d.Config.JWT, d.Sessions, d.Logger))

		r.Post("/register", controllers.Register(d.Registration, d.Logger))
		r.Get("/tickets", controllers.ListTickets(d.TicketQueries, d.Logger))
		r.Route("/points", func(r chi.Router) {
			r.Get("/", controllers.GetPoints(d.Points, d.Logger))
			r.Post("/redeem", controllers.RedeemPoints(d.Points, d.Logger))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(d.Logger))
			r.Post("/tickets/scan", controllers.ScanTicket(d.CheckIn, d.Metrics, d.Logger))
		})
	})

	return r
}
