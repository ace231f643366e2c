package migrate

import (
	"context"
	"fmt"

	"github.com/goldstore/storefront/pkg/config"
	"github.com/goldstore/storefront/pkg/db"
	"github.com/goldstore/storefront/pkg/logger"
)

// MaybeRun applies the embedded migrations at startup when the auto-migrate
// flag is on and the process is either in dev or backed by sqlite, where
// there is no separate migrate step.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if client == nil || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	if !cfg.App.IsDev() && client.Driver() != config.StorageDriverSQLite {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": client.Driver()})
	logg.Info(ctx, "running Goose migrations (auto-run)")

	if err := Run(ctx, sqlDB, client.Driver(), "", "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}
