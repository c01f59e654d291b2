package migrate

import (
	"context"
	"fmt"

	"github.com/bigbestmart/catalog-backend/pkg/config"
	"github.com/bigbestmart/catalog-backend/pkg/db"
	"github.com/bigbestmart/catalog-backend/pkg/logger"
)

// shouldAutoRun decides whether a binary migrates at boot. Production always
// migrates through cmd/migrate; sqlite databases are local and always migrate.
func shouldAutoRun(cfg *config.Config) (bool, string) {
	switch {
	case cfg.DB.IsSQLite():
		return true, "sqlite"
	case cfg.App.IsProd():
		return false, ""
	case cfg.FeatureFlags.AutoMigrate:
		return true, "feature_flag"
	default:
		return false, ""
	}
}

// AutoRun applies pending migrations at boot when shouldAutoRun allows it.
func AutoRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	run, reason := shouldAutoRun(cfg)
	if !run {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"driver": client.Dialect(), "reason": reason})
	logg.Info(ctx, "applying migrations at boot")
	if err := Run(ctx, sqlDB, client.Dialect(), "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	logg.Info(ctx, "migrations applied")
	return nil
}
