package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/partsbin-backend/internal/importer"
	"github.com/angelmondragon/partsbin-backend/internal/inventory"
	"github.com/angelmondragon/partsbin-backend/internal/speech"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Slots []string
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <barcode>",
		Short: "Import a scanned product label",
		Long: `Look up a product label with the distributor and merge it into the
inventory. Repeat --slot to file the item under one or more hex slot ids.

Examples:
  partsctl import 4550112345678
  partsctl import 4550112345678 --slot 1a --slot 1b --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts, args[0])
		},
	}
	cmd.Flags().StringArrayVar(&opts.Slots, "slot", nil, "hex slot id to file the item under (repeatable)")
	return cmd
}

func runImport(cmd *cobra.Command, opts *ImportOptions, barcode string) error {
	slots := make([]int, 0, len(opts.Slots))
	for _, raw := range opts.Slots {
		id, err := speech.ParseHexSlot(raw)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("invalid --slot %q", raw), err)
		}
		slots = append(slots, id)
	}

	return withApp(cmd, opts.RootOptions, func(ctx context.Context, app *App, out *OutputFormatter) error {
		var (
			result *importer.Result
			err    error
		)
		if len(slots) > 0 {
			out.VerboseLog("importing %s into slots %v", barcode, slots)
			result, err = app.Importer.ImportIntoSlots(ctx, barcode, slots)
		} else {
			out.VerboseLog("importing %s", barcode)
			result, err = app.Importer.ImportByBarcode(ctx, barcode)
		}
		if err != nil {
			return out.Fail("import failed", err)
		}
		return out.Success(result, describeResult(*result))
	})
}

// NewPackListCommand creates the pack-list command.
func NewPackListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pack-list <barcode>",
		Short: "Import every line of a scanned pack list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, app *App, out *OutputFormatter) error {
				results, err := app.Importer.ImportPackList(ctx, args[0])
				if err != nil {
					if len(results) > 0 {
						out.VerboseLog("%d line(s) imported before the failure", len(results))
					}
					return out.Fail("pack list import failed", err)
				}
				lines := make([]string, 0, len(results))
				for _, r := range results {
					lines = append(lines, describeResult(r))
				}
				return out.Success(results, strings.Join(lines, "\n"))
			})
		},
	}
}

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Limit int
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Search the inventory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Limit < 1 {
				return NewExitError(ExitCommandError, "--limit must be positive")
			}
			query := strings.Join(args, " ")
			return withApp(cmd, opts.RootOptions, func(ctx context.Context, app *App, out *OutputFormatter) error {
				items, err := app.Store.Search(ctx, query, opts.Limit)
				if err != nil {
					return out.Fail("search failed", err)
				}
				if len(items) == 0 {
					return out.Success(items, "no matches")
				}
				return out.Success(items, describeItems(items))
			})
		},
	}
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of results")
	return cmd
}

// NewSlotCommand creates the slot command.
func NewSlotCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "slot <id>...",
		Short: "List the items in a slot",
		Long: `List the items filed under a hex slot id. Spoken forms such as
"one a" are accepted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := speech.ParseSpokenSlot(strings.Join(args, " "))
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid slot", err)
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, app *App, out *OutputFormatter) error {
				items, err := app.Store.FindBySlot(ctx, slot)
				if err != nil {
					if inventory.IsNotFound(err) {
						return out.Success([]inventory.Item{}, speech.NoItemsMessage(slot))
					}
					return out.Fail("slot lookup failed", err)
				}
				return out.Success(items, speech.SlotSummary(slot, items))
			})
		},
	}
}

// RefreshOptions holds flags for the refresh command.
type RefreshOptions struct {
	*RootOptions
	All bool
}

// NewRefreshCommand creates the refresh command.
func NewRefreshCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RefreshOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "refresh [item-id]",
		Short: "Reload product details from the distributor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.All == (len(args) == 1) {
				return NewExitError(ExitCommandError, "pass exactly one of <item-id> or --all")
			}
			if opts.All {
				return withApp(cmd, opts.RootOptions, func(ctx context.Context, app *App, out *OutputFormatter) error {
					n, err := app.Importer.RefreshAllDetails(ctx)
					if err != nil {
						return out.Fail("refresh failed", err)
					}
					return out.Success(map[string]int{"refreshed": n}, fmt.Sprintf("refreshed %d item(s)", n))
				})
			}

			id, err := uuid.Parse(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid item id", err)
			}
			return withApp(cmd, opts.RootOptions, func(ctx context.Context, app *App, out *OutputFormatter) error {
				item, err := app.Importer.RefreshDetails(ctx, id)
				if err != nil {
					return out.Fail("refresh failed", err)
				}
				return out.Success(item, describeItem(*item))
			})
		},
	}
	cmd.Flags().BoolVar(&opts.All, "all", false, "refresh every item with a vendor part number")
	return cmd
}

func describeResult(r importer.Result) string {
	return fmt.Sprintf("%s: %s", r.Outcome, describeItem(r.Item))
}

func describeItem(item inventory.Item) string {
	var b strings.Builder
	b.WriteString(item.ID.String())
	if item.VendorPartNumber != nil {
		fmt.Fprintf(&b, " [%s]", *item.VendorPartNumber)
	}
	fmt.Fprintf(&b, " %s (qty %d)", item.Description, item.AvailableQuantity)
	if len(item.SlotIDs) > 0 {
		ids := make([]string, 0, len(item.SlotIDs))
		for _, s := range item.SlotIDs {
			ids = append(ids, fmt.Sprintf("%x", s))
		}
		fmt.Fprintf(&b, " slots %s", strings.Join(ids, ","))
	}
	return b.String()
}

func describeItems(items []inventory.Item) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, describeItem(item))
	}
	return strings.Join(lines, "\n")
}
