package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/partsbin-backend/internal/app"
	"github.com/angelmondragon/partsbin-backend/internal/cli"
	"github.com/angelmondragon/partsbin-backend/pkg/config"
	"github.com/angelmondragon/partsbin-backend/pkg/logger"
)

func main() {
	cmd := cli.NewRootCommand(open)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}

// open loads config and bootstraps the import service. Logs go to stderr so
// structured output on stdout stays parseable.
func open(ctx context.Context, opts *cli.RootOptions) (*cli.App, error) {
	if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", opts.EnvFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := logger.ParseLevel("warn")
	if opts.Verbose {
		level = logger.ParseLevel("debug")
	}
	logFormat := "json"
	if opts.Format == cli.FormatText {
		logFormat = "console"
	}
	logg := logger.New(logger.Options{
		ServiceName: "partsctl",
		Level:       level,
		WarnStack:   cfg.App.LogWarnStack,
		Output:      os.Stderr,
		Format:      logFormat,
	})

	deps, err := app.Bootstrap(ctx, cfg, logg, nil)
	if err != nil {
		return nil, err
	}
	return &cli.App{
		Importer: deps.Service,
		Store:    deps.Store,
		Close:    deps.Close,
	}, nil
}
