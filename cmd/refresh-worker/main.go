package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/partsbin-backend/internal/app"
	"github.com/angelmondragon/partsbin-backend/internal/jobs"
	"github.com/angelmondragon/partsbin-backend/pkg/config"
	"github.com/angelmondragon/partsbin-backend/pkg/logger"
	"github.com/angelmondragon/partsbin-backend/pkg/metrics"
)

func main() {
	once := flag.Bool("once", false, "run every job a single time and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "refresh-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "refresh-worker"

	logg = logger.New(logger.Options{
		ServiceName: "refresh-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})

	deps, err := app.Bootstrap(ctx, cfg, logg, prometheus.DefaultRegisterer)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap dependencies", err)
		os.Exit(1)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logg.Error(context.Background(), "error closing dependencies", err)
		}
	}()

	var lock jobs.Lock
	if deps.Redis != nil {
		lock, err = jobs.NewRedisLock(deps.Redis, cfg.App.Env, cfg.Jobs.LockTTL)
		if err != nil {
			logg.Error(ctx, "failed to create job lock", err)
			os.Exit(1)
		}
	}

	registry, err := jobs.NewRegistry(jobs.NewRefreshDetailsJob(deps.Service, logg))
	if err != nil {
		logg.Error(ctx, "failed to register jobs", err)
		os.Exit(1)
	}
	scheduler, err := jobs.NewScheduler(jobs.SchedulerParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Jobs.RefreshInterval,
	})
	if err != nil {
		logg.Error(ctx, "failed to create scheduler", err)
		os.Exit(1)
	}

	if *once {
		if err := scheduler.RunOnce(ctx); err != nil {
			logg.Error(ctx, "scheduled run failed", err)
			os.Exit(1)
		}
		return
	}

	logg.Info(ctx, "starting refresh worker")
	if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "refresh worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "refresh worker shutting down gracefully")
}
