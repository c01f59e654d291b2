package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bigbestmart/catalog-backend/api/responses"
	"github.com/bigbestmart/catalog-backend/pkg/config"
	pkgerrors "github.com/bigbestmart/catalog-backend/pkg/errors"
	"github.com/bigbestmart/catalog-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is any dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Catalog-Env", cfg.App.Env)
		responses.WriteEntity(w, http.StatusOK, "status", "live")
	}
}

// HealthReady pings every named dependency; nil entries are skipped.
func HealthReady(cfg *config.Config, deps map[string]Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Catalog-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s not ready", name)))
				return
			}
		}
		responses.WriteEntity(w, http.StatusOK, "status", "ready")
	}
}
