// Package app wires the database, redis, the DigiKey client and the import
// service from config. The API server and partsctl share it.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/angelmondragon/partsbin-backend/internal/bom"
	"github.com/angelmondragon/partsbin-backend/internal/importer"
	"github.com/angelmondragon/partsbin-backend/internal/inventory"
	"github.com/angelmondragon/partsbin-backend/internal/metadata"
	"github.com/angelmondragon/partsbin-backend/pkg/config"
	"github.com/angelmondragon/partsbin-backend/pkg/db"
	"github.com/angelmondragon/partsbin-backend/pkg/digikey"
	"github.com/angelmondragon/partsbin-backend/pkg/logger"
	"github.com/angelmondragon/partsbin-backend/pkg/metrics"
	"github.com/angelmondragon/partsbin-backend/pkg/migrate"
	"github.com/angelmondragon/partsbin-backend/pkg/redis"
)

// Deps are the long-lived resources behind the import service.
type Deps struct {
	DB      *db.Client
	Redis   *redis.Client
	Store   *inventory.Repository
	Boms    *bom.Repository
	Service *importer.Service
	Metrics *metrics.ImportMetrics
}

// Bootstrap opens every resource. reg may be nil to skip metric
// registration. On error everything opened so far is closed again.
func Bootstrap(ctx context.Context, cfg *config.Config, logg *logger.Logger, reg prometheus.Registerer) (deps *Deps, err error) {
	deps = &Deps{}
	defer func() {
		if err != nil {
			err = multierr.Append(err, deps.Close())
			deps = nil
		}
	}()

	deps.DB, err = db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return deps, fmt.Errorf("bootstrap database: %w", err)
	}
	if err = migrate.MaybeRun(ctx, cfg, logg, deps.DB); err != nil {
		return deps, fmt.Errorf("run migrations: %w", err)
	}

	locker := importer.Locker(importer.NewLocalLocker())
	if cfg.Redis.Enabled() {
		deps.Redis, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return deps, fmt.Errorf("bootstrap redis: %w", err)
		}
		locker, err = importer.NewRedisLocker(deps.Redis, cfg.Import.LockTTL, cfg.Import.LockWait)
		if err != nil {
			return deps, fmt.Errorf("build import locker: %w", err)
		}
	} else {
		logg.Warn(ctx, "redis not configured, imports lock in-process only")
	}

	vendor, err := digikey.NewFromConfig(cfg.DigiKey, cfg.App.IsTest(), metadata.NewRepository(deps.DB.DB()), logg)
	if err != nil {
		return deps, fmt.Errorf("build digikey client: %w", err)
	}

	deps.Store = inventory.NewRepository(deps.DB.DB())
	deps.Boms = bom.NewRepository(deps.DB.DB())
	deps.Metrics = metrics.NewImportMetrics(reg)
	deps.Service, err = importer.NewService(importer.ServiceParams{
		Store:               deps.Store,
		Vendor:              vendor,
		Locker:              locker,
		Logger:              logg,
		Metrics:             deps.Metrics,
		StrictOrderMatching: cfg.Import.StrictOrderMatching.Enabled(),
	})
	if err != nil {
		return deps, fmt.Errorf("build import service: %w", err)
	}
	return deps, nil
}

// RedisPinger returns redis as a Pinger, or nil when redis is disabled.
func (d *Deps) RedisPinger() redis.Pinger {
	if d.Redis == nil {
		return nil
	}
	return d.Redis
}

// IdempotencyStore returns redis as an IdempotencyStore, or nil when redis is
// disabled.
func (d *Deps) IdempotencyStore() redis.IdempotencyStore {
	if d.Redis == nil {
		return nil
	}
	return d.Redis
}

// Close releases redis and the database.
func (d *Deps) Close() error {
	if d == nil {
		return nil
	}
	var err error
	if d.Redis != nil {
		err = multierr.Append(err, d.Redis.Close())
	}
	if d.DB != nil {
		err = multierr.Append(err, d.DB.Close())
	}
	return err
}
