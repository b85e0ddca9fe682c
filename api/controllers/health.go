package controllers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/kippu-app/kippu-backend/api/responses"
	"github.com/kippu-app/kippu-backend/pkg/config"
	pkgerrors "github.com/kippu-app/kippu-backend/pkg/errors"
	"github.com/kippu-app/kippu-backend/pkg/logger"
)

// Pinger is any dependency with a liveness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Kippu-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes every backing dependency and aggregates the failures.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Kippu-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		var err error
		failed := map[string]string{}
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if pingErr := dep.Ping(ctx); pingErr != nil {
				err = multierr.Append(err, pingErr)
				failed[name] = pingErr.Error()
			}
		}
		if err != nil {
			responses.WriteError(ctx, logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, err, "readiness check").WithDetails(failed))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
