package migrate

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/partsbin-backend/pkg/config"
	"github.com/angelmondragon/partsbin-backend/pkg/db"
	"github.com/angelmondragon/partsbin-backend/pkg/db/models"
	"github.com/angelmondragon/partsbin-backend/pkg/logger"
)

// MaybeRun prepares the schema on boot. SQLite databases are always
// auto-migrated from the models; postgres runs the embedded Goose migrations
// only in dev with the feature flag enabled.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if client.Dialect() == "sqlite" {
		ctx = logg.WithField(ctx, "dialect", "sqlite")
		logg.Info(ctx, "auto-migrating sqlite schema")
		return AutoMigrate(client.DB().WithContext(ctx))
	}

	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	meta := map[string]any{"env": cfg.App.Env, "dir": EmbeddedDir}
	ctx = logg.WithFields(ctx, meta)
	logg.Info(ctx, "running Goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, EmbeddedDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}

// AutoMigrate creates the inventory schema from the gorm models.
func AutoMigrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&models.InventoryItem{},
		&models.InventoryItemSlot{},
		&models.MetadataEntry{},
		&models.Bom{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
