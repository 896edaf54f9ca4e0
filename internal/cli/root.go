package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/partsbin-backend/internal/importer"
	"github.com/angelmondragon/partsbin-backend/internal/inventory"
)

// Importer is the import surface the commands drive.
type Importer interface {
	ImportByBarcode(ctx context.Context, barcode string) (*importer.Result, error)
	ImportPackList(ctx context.Context, barcode string) ([]importer.Result, error)
	ImportIntoSlots(ctx context.Context, barcode string, slots []int) (*importer.Result, error)
	RefreshDetails(ctx context.Context, id uuid.UUID) (*inventory.Item, error)
	RefreshAllDetails(ctx context.Context) (int, error)
}

// App is what a command needs once the environment is loaded.
type App struct {
	Importer Importer
	Store    inventory.Store
	Close    func() error
}

// Opener builds an App from the environment.
type Opener func(ctx context.Context, opts *RootOptions) (*App, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string
	EnvFile string

	open Opener
}

// ValidFormats defines the allowed output formats.
// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var ValidFormats = []string{FormatText, FormatJSON, FormatYAML}

// NewRootCommand creates the partsctl root command.
func NewRootCommand(open Opener) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "partsctl",
		Short: "partsctl - parts bin inventory",
		Long:  "Import distributor shipments into the parts bin inventory and look things up.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded before the environment")

	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewPackListCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewSlotCommand(opts))
	cmd.AddCommand(NewRefreshCommand(opts))

	return cmd
}

// withApp opens the App, runs fn and closes the App again.
func withApp(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, app *App, out *OutputFormatter) error) error {
	if opts.open == nil {
		return NewExitError(ExitCommandError, "no backend configured")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := opts.open(ctx, opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open inventory", err)
	}
	if app.Close != nil {
		defer func() { _ = app.Close() }()
	}
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	return fn(ctx, app, out)
}
