package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kippu-app/kippu-backend/api/controllers"
	"github.com/kippu-app/kippu-backend/api/routes"
	internalauth "github.com/kippu-app/kippu-backend/internal/auth"
	"github.com/kippu-app/kippu-backend/internal/orders"
	"github.com/kippu-app/kippu-backend/internal/points"
	"github.com/kippu-app/kippu-backend/internal/registration"
	"github.com/kippu-app/kippu-backend/internal/tickets"
	"github.com/kippu-app/kippu-backend/internal/users"
	"github.com/kippu-app/kippu-backend/internal/webhooklog"
	shopifyhook "github.com/kippu-app/kippu-backend/internal/webhooks/shopify"
	"github.com/kippu-app/kippu-backend/pkg/auth/session"
	"github.com/kippu-app/kippu-backend/pkg/config"
	"github.com/kippu-app/kippu-backend/pkg/db"
	"github.com/kippu-app/kippu-backend/pkg/logger"
	"github.com/kippu-app/kippu-backend/pkg/metrics"
	"github.com/kippu-app/kippu-backend/pkg/migrate"
	"github.com/kippu-app/kippu-backend/pkg/outbox"
	"github.com/kippu-app/kippu-backend/pkg/redis"
	"github.com/kippu-app/kippu-backend/pkg/shopify"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	shopifyClient, err := shopify.NewClient(context.Background(), cfg.Shopify, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create shopify client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	usersRepo := users.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	ticketsRepo := tickets.NewRepository(dbClient.DB())
	pointsRepo := points.NewRepository(dbClient.DB())
	pointsService := points.NewService(dbClient, pointsRepo, cfg.Points, logg)

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	webhookService := shopifyhook.NewService(shopifyhook.Deps{
		Client:      dbClient,
		Ledger:      webhooklog.NewService(webhooklog.NewRepository(dbClient.DB()), logg),
		OrdersRepo:  ordersRepo,
		UsersRepo:   usersRepo,
		TicketsRepo: ticketsRepo,
		Points:      pointsService,
		Outbox:      outboxService,
		Logger:      logg,
	})

	router := routes.NewRouter(routes.Deps{
		Config:   cfg,
		Logger:   logg,
		Sessions: sessionManager,
		Readiness: map[string]controllers.Pinger{
			"postgres": dbClient,
			"redis":    redisClient,
		},
		AuthService:    internalauth.NewService(usersRepo, sessionManager, cfg.JWT, logg),
		Registration:   registration.NewService(dbClient, usersRepo, pointsService, shopifyClient, logg),
		TicketQueries:  tickets.NewQueryService(ticketsRepo),
		CheckIn:        tickets.NewCheckInService(dbClient, ticketsRepo, outboxService, logg),
		Points:         pointsService,
		WebhookService: webhookService,
		Metrics:        webhookMetrics,
		Gatherer:       registry,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop:
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
