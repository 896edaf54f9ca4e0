package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/angelmondragon/partsbin-backend/internal/inventory"
	pkgerrors "github.com/angelmondragon/partsbin-backend/pkg/errors"
	"github.com/angelmondragon/partsbin-backend/pkg/logger"
)

// Outcome describes what an import did to the inventory.
type Outcome int

const (
	OutcomeNewWithoutVendorNumber Outcome = iota + 1
	OutcomeNewWithVendorNumber
	// OutcomeMergedIntoExisting increased the stock of an existing item.
	OutcomeMergedIntoExisting
	// OutcomeDuplicateOrder matched an order already on the item; stock is
	// unchanged.
	OutcomeDuplicateOrder
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNewWithoutVendorNumber:
		return "new_without_vendor_number"
	case OutcomeNewWithVendorNumber:
		return "new_with_vendor_number"
	case OutcomeMergedIntoExisting:
		return "merged_into_existing"
	case OutcomeDuplicateOrder:
		return "duplicate_order"
	default:
		return "unknown"
	}
}

// MarshalText renders the outcome name in JSON and YAML output.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText parses an outcome name written by MarshalText.
func (o *Outcome) UnmarshalText(text []byte) error {
	for _, candidate := range []Outcome{
		OutcomeNewWithoutVendorNumber,
		OutcomeNewWithVendorNumber,
		OutcomeMergedIntoExisting,
		OutcomeDuplicateOrder,
	} {
		if candidate.String() == string(text) {
			*o = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown import outcome %q", text)
}

type orderMerge int

const (
	orderMergeNone orderMerge = iota
	orderMergeNew
	orderMergeDuplicate
)

// MergeOptions tunes MergeAndImport.
type MergeOptions struct {
	// Strict requires a vendor part number and an order with an invoice id,
	// so repeated scans of one shipment are always recognised.
	Strict bool
	Logger *logger.Logger
}

var discardLogger = logger.New(logger.Options{ServiceName: "importer", Output: io.Discard})

func (o MergeOptions) logger() *logger.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return discardLogger
}

// MergeAndImport stores an incoming shipment. Records without a vendor part
// number, or with one not yet in stock, become new items. Otherwise the
// shipment is reconciled into the existing item and written back with a
// single Replace. Identity conflicts abort before anything is written.
func MergeAndImport(ctx context.Context, store inventory.Store, rec inventory.ImportRecord, opts MergeOptions) (uuid.UUID, Outcome, error) {
	logg := opts.logger()

	if rec.Order != nil {
		if err := rec.Order.Validate(); err != nil {
			return uuid.Nil, 0, err
		}
	}
	if opts.Strict {
		if err := checkStrict(rec); err != nil {
			return uuid.Nil, 0, err
		}
	}

	if !rec.HasVendorPartNumber() {
		id, err := store.Create(ctx, rec.ToNewItem())
		if err != nil {
			return uuid.Nil, 0, err
		}
		logg.Info(logg.WithItemID(ctx, id.String()), "imported new item without vendor part number")
		return id, OutcomeNewWithoutVendorNumber, nil
	}

	vendorNumber := *rec.VendorPartNumber
	ctx = logg.WithVendorNumber(ctx, vendorNumber)

	existing, err := store.FindByVendorNumber(ctx, vendorNumber)
	if err != nil {
		return uuid.Nil, 0, err
	}
	if existing == nil {
		id, err := store.Create(ctx, rec.ToNewItem())
		if err != nil {
			return uuid.Nil, 0, err
		}
		logg.Info(logg.WithItemID(ctx, id.String()), "imported new item")
		return id, OutcomeNewWithVendorNumber, nil
	}
	ctx = logg.WithItemID(ctx, existing.ID.String())

	mpn, err := reconcileManufacturerField("manufacturer_part_number", existing.ManufacturerPartNumber, rec.ManufacturerPartNumber)
	if err != nil {
		logg.WarnErr(ctx, "manufacturer part number mismatch", err)
		return uuid.Nil, 0, err
	}
	mfrName, err := reconcileManufacturerField("manufacturer_name", existing.ManufacturerName, rec.ManufacturerName)
	if err != nil {
		logg.WarnErr(ctx, "manufacturer name mismatch", err)
		return uuid.Nil, 0, err
	}

	orders, result, err := mergeOrders(existing.Orders, rec.Order)
	if err != nil {
		return uuid.Nil, 0, err
	}

	merged := *existing
	merged.Orders = orders
	merged.ManufacturerPartNumber = mpn
	merged.ManufacturerName = mfrName
	merged.Barcodes1D = inventory.UnionStrings(existing.Barcodes1D, rec.Barcode1D)
	merged.Barcodes2D = inventory.UnionStrings(existing.Barcodes2D, rec.Barcode2D)
	merged.ProductDetails = existing.ProductDetails.Merge(rec.ProductDetails)
	if existing.IsDescriptionPlaceholder {
		merged.Description = rec.Description
	}
	merged.IsDescriptionPlaceholder = existing.IsDescriptionPlaceholder && rec.IsDescriptionPlaceholder

	outcome := OutcomeMergedIntoExisting
	if result == orderMergeDuplicate {
		outcome = OutcomeDuplicateOrder
	} else {
		merged.AvailableQuantity = existing.AvailableQuantity + rec.Quantity
	}

	if err := store.Replace(ctx, merged); err != nil {
		return uuid.Nil, 0, err
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"outcome":            outcome.String(),
		"available_quantity": merged.AvailableQuantity,
		"orders":             len(merged.Orders),
	}), "merged shipment into existing stock")
	return existing.ID, outcome, nil
}

func checkStrict(rec inventory.ImportRecord) error {
	switch {
	case !rec.HasVendorPartNumber():
		return pkgerrors.New(pkgerrors.CodeValidation, "Cannot use strict order matching without a vendor part number")
	case rec.Order == nil:
		return pkgerrors.New(pkgerrors.CodeValidation, "Cannot use strict order matching without an order")
	case rec.Order.InvoiceID == nil || *rec.Order.InvoiceID <= 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "Cannot use strict order matching without an invoice id")
	}
	return nil
}

// reconcileManufacturerField keeps the existing value unless it is unknown.
// Two known values must be equal or relatively similar.
func reconcileManufacturerField(field string, existing, incoming *string) (*string, error) {
	switch {
	case existing == nil:
		return incoming, nil
	case incoming == nil:
		return existing, nil
	case *existing == *incoming || RelativelySimilar(*existing, *incoming):
		return existing, nil
	default:
		return nil, inventory.NewManufacturerMismatchError(field, *existing, *incoming)
	}
}

// mergeOrders folds an incoming order into the history. A same-invoice entry
// that agrees with it absorbs it (a duplicate scan); entries that disagree are
// kept and the incoming order is appended with its conflict mark set.
func mergeOrders(existing []inventory.OrderInfo, incoming *inventory.OrderInfo) ([]inventory.OrderInfo, orderMerge, error) {
	if incoming == nil {
		return existing, orderMergeNone, nil
	}

	out := make([]inventory.OrderInfo, 0, len(existing)+1)
	result := orderMergeNew
	found := false
	conflicts := false

	for _, order := range existing {
		if !order.SameInvoice(*incoming) {
			out = append(out, order)
			continue
		}
		if order.ConflictsWith(*incoming) {
			// Same part shipped in several bags of one order.
			conflicts = true
			out = append(out, order)
			continue
		}
		merged, err := order.Merge(*incoming)
		if err != nil {
			return nil, orderMergeNone, err
		}
		out = append(out, merged)
		result = orderMergeDuplicate
		found = true
	}

	if !found {
		added := *incoming
		added.Conflicts = conflicts
		out = append(out, added)
	}
	return out, result, nil
}
