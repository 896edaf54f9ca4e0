package importer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/partsbin-backend/internal/inventory"
	pkgerrors "github.com/angelmondragon/partsbin-backend/pkg/errors"
)

func invoiceOrder(invoice int64, qty int) *inventory.OrderInfo {
	return &inventory.OrderInfo{InvoiceID: int64Ptr(invoice), SalesOrderID: int64Ptr(invoice * 10), Quantity: qty}
}

func baseRecord(vendor string, qty int) inventory.ImportRecord {
	return inventory.ImportRecord{
		Quantity:               qty,
		Description:            "RES 10K OHM 5% 1/8W 0805",
		VendorPartNumber:       strPtr(vendor),
		ManufacturerName:       strPtr("YAGEO"),
		ManufacturerPartNumber: strPtr("RC0805JR-0710KL"),
	}
}

func mustImport(t *testing.T, store *memStore, rec inventory.ImportRecord) (uuid.UUID, Outcome) {
	t.Helper()
	id, outcome, err := MergeAndImport(context.Background(), store, rec, MergeOptions{Logger: testLogger()})
	require.NoError(t, err)
	return id, outcome
}

func TestMergeAndImportWithoutVendorNumberAlwaysCreates(t *testing.T) {
	store := newMemStore()
	rec := inventory.ImportRecord{Quantity: 3, Description: "loose resistors"}

	first, outcome := mustImport(t, store, rec)
	assert.Equal(t, OutcomeNewWithoutVendorNumber, outcome)
	second, outcome := mustImport(t, store, rec)
	assert.Equal(t, OutcomeNewWithoutVendorNumber, outcome)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, store.creates)
	assert.Zero(t, store.replaces)
}

func TestMergeAndImportNewVendorNumber(t *testing.T) {
	store := newMemStore()
	rec := baseRecord("311-10KARCT-ND", 100)
	rec.Order = invoiceOrder(1, 100)
	rec.Barcode1D = strPtr("4900000123")

	id, outcome := mustImport(t, store, rec)
	assert.Equal(t, OutcomeNewWithVendorNumber, outcome)

	item, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 100, item.AvailableQuantity)
	assert.Equal(t, []string{"4900000123"}, item.Barcodes1D)
	require.Len(t, item.Orders, 1)
	assert.Equal(t, int64(1), *item.Orders[0].InvoiceID)
	assert.Empty(t, item.SlotIDs)
	assert.Empty(t, item.Comments)
}

func TestMergeAndImportNewOrderAddsQuantity(t *testing.T) {
	store := newMemStore()
	first := baseRecord("DK-1", 100)
	first.Order = invoiceOrder(1, 100)
	id, _ := mustImport(t, store, first)

	second := baseRecord("DK-1", 50)
	second.Order = invoiceOrder(2, 50)
	mergedID, outcome := mustImport(t, store, second)

	assert.Equal(t, id, mergedID)
	assert.Equal(t, OutcomeMergedIntoExisting, outcome)
	item, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 150, item.AvailableQuantity)
	require.Len(t, item.Orders, 2)
	assert.False(t, item.Orders[1].Conflicts)
	assert.Equal(t, 1, store.replaces)
}

func TestMergeAndImportDuplicateOrderKeepsQuantity(t *testing.T) {
	store := newMemStore()
	first := baseRecord("DK-1", 100)
	first.Order = invoiceOrder(1, 100)
	id, _ := mustImport(t, store, first)

	again := baseRecord("DK-1", 100)
	again.Order = invoiceOrder(1, 100)
	again.Order.LotCode = strPtr("L42")
	_, outcome := mustImport(t, store, again)

	assert.Equal(t, OutcomeDuplicateOrder, outcome)
	item, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 100, item.AvailableQuantity)
	require.Len(t, item.Orders, 1)
	require.NotNil(t, item.Orders[0].LotCode)
	assert.Equal(t, "L42", *item.Orders[0].LotCode)
}

func TestMergeAndImportDuplicateScansWithoutInvoices(t *testing.T) {
	store := newMemStore()
	rec := baseRecord("DK-1", 10)
	rec.Order = &inventory.OrderInfo{Quantity: 10}
	id, _ := mustImport(t, store, rec)

	_, outcome := mustImport(t, store, rec)
	assert.Equal(t, OutcomeDuplicateOrder, outcome)

	item, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 10, item.AvailableQuantity)
	assert.Len(t, item.Orders, 1)
}

func TestMergeAndImportSameInvoiceDifferentBagIsAppended(t *testing.T) {
	store := newMemStore()
	first := baseRecord("DK-1", 100)
	first.Order = invoiceOrder(1, 100)
	id, _ := mustImport(t, store, first)

	bag := baseRecord("DK-1", 25)
	bag.Order = invoiceOrder(1, 25)
	_, outcome := mustImport(t, store, bag)

	assert.Equal(t, OutcomeMergedIntoExisting, outcome)
	item, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 125, item.AvailableQuantity)
	require.Len(t, item.Orders, 2)
	assert.False(t, item.Orders[0].Conflicts)
	assert.True(t, item.Orders[1].Conflicts)
	assert.Equal(t, 25, item.Orders[1].Quantity)
}

func TestMergeAndImportWithoutOrderAddsQuantity(t *testing.T) {
	store := newMemStore()
	first := baseRecord("DK-1", 100)
	first.Order = invoiceOrder(1, 100)
	id, _ := mustImport(t, store, first)

	_, outcome := mustImport(t, store, baseRecord("DK-1", 5))
	assert.Equal(t, OutcomeMergedIntoExisting, outcome)

	item, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 105, item.AvailableQuantity)
	assert.Len(t, item.Orders, 1)
}

func TestMergeAndImportManufacturerMismatchWritesNothing(t *testing.T) {
	store := newMemStore()
	id, _ := mustImport(t, store, baseRecord("DK-1", 100))

	other := baseRecord("DK-1", 10)
	other.ManufacturerName = strPtr("Texas Instruments")
	_, _, err := MergeAndImport(context.Background(), store, other, MergeOptions{})
	require.Error(t, err)

	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	var mismatch *inventory.ManufacturerMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "manufacturer_name", mismatch.Field)
	assert.Equal(t, "YAGEO", mismatch.Existing)
	assert.Equal(t, "Texas Instruments", mismatch.Incoming)

	item, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 100, item.AvailableQuantity)
	assert.Zero(t, store.replaces)
}

func TestMergeAndImportPartNumberMismatch(t *testing.T) {
	store := newMemStore()
	mustImport(t, store, baseRecord("DK-1", 100))

	other := baseRecord("DK-1", 10)
	other.ManufacturerPartNumber = strPtr("LM358DR")
	_, _, err := MergeAndImport(context.Background(), store, other, MergeOptions{})

	var mismatch *inventory.ManufacturerMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "manufacturer_part_number", mismatch.Field)
}

func TestMergeAndImportSimilarManufacturerKeepsExisting(t *testing.T) {
	store := newMemStore()
	first := baseRecord("DK-1", 100)
	first.ManufacturerName = strPtr("Texas Instruments")
	id, _ := mustImport(t, store, first)

	second := baseRecord("DK-1", 1)
	second.ManufacturerName = strPtr("texas  instruments inc")
	mustImport(t, store, second)

	item, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Texas Instruments", *item.ManufacturerName)
}

func TestMergeAndImportUnknownManufacturerTakesIncoming(t *testing.T) {
	store := newMemStore()
	first := baseRecord("DK-1", 100)
	first.ManufacturerName = nil
	first.ManufacturerPartNumber = nil
	id, _ := mustImport(t, store, first)

	mustImport(t, store, baseRecord("DK-1", 1))

	item, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "YAGEO", *item.ManufacturerName)
	assert.Equal(t, "RC0805JR-0710KL", *item.ManufacturerPartNumber)

	withoutMfr := baseRecord("DK-1", 1)
	withoutMfr.ManufacturerName = nil
	mustImport(t, store, withoutMfr)
	item, err = store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "YAGEO", *item.ManufacturerName)
}

func TestMergeAndImportPlaceholderDescription(t *testing.T) {
	store := newMemStore()
	first := baseRecord("DK-1", 1)
	first.Description = "DK-1"
	first.IsDescriptionPlaceholder = true
	id, _ := mustImport(t, store, first)

	placeholderAgain := baseRecord("DK-1", 1)
	placeholderAgain.Description = "DK-1 again"
	placeholderAgain.IsDescriptionPlaceholder = true
	mustImport(t, store, placeholderAgain)

	item, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "DK-1 again", item.Description)
	assert.True(t, item.IsDescriptionPlaceholder)

	mustImport(t, store, baseRecord("DK-1", 1))
	item, err = store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "RES 10K OHM 5% 1/8W 0805", item.Description)
	assert.False(t, item.IsDescriptionPlaceholder)

	keeper := baseRecord("DK-1", 1)
	keeper.Description = "something else"
	mustImport(t, store, keeper)
	item, err = store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "RES 10K OHM 5% 1/8W 0805", item.Description)
}

func TestMergeAndImportUnionsBarcodesAndMergesDetails(t *testing.T) {
	store := newMemStore()
	first := baseRecord("DK-1", 1)
	first.Barcode1D = strPtr("222")
	first.ProductDetails = &inventory.ProductDetails{
		ProductURL: strPtr("https://example.com/p"),
		Warnings:   []string{"old"},
	}
	id, _ := mustImport(t, store, first)

	second := baseRecord("DK-1", 1)
	second.Barcode1D = strPtr("111")
	second.Barcode2D = strPtr("[)>06P")
	second.ProductDetails = &inventory.ProductDetails{
		DatasheetURL: strPtr("https://example.com/ds.pdf"),
	}
	mustImport(t, store, second)

	third := baseRecord("DK-1", 1)
	third.Barcode1D = strPtr("222")
	mustImport(t, store, third)

	item, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"111", "222"}, item.Barcodes1D)
	assert.Equal(t, []string{"[)>06P"}, item.Barcodes2D)
	require.NotNil(t, item.ProductDetails)
	assert.Equal(t, "https://example.com/p", *item.ProductDetails.ProductURL)
	assert.Equal(t, "https://example.com/ds.pdf", *item.ProductDetails.DatasheetURL)
	assert.Equal(t, []string{"old"}, item.ProductDetails.Warnings)
}

func TestMergeAndImportKeepsSlotsAndComments(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	id, _ := mustImport(t, store, baseRecord("DK-1", 1))
	require.NoError(t, store.AddToSlot(ctx, id, 0x1a))
	require.NoError(t, store.SetComments(ctx, id, "top shelf"))

	mustImport(t, store, baseRecord("DK-1", 1))

	item, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []int{0x1a}, item.SlotIDs)
	assert.Equal(t, "top shelf", item.Comments)
}

func TestMergeAndImportStrict(t *testing.T) {
	store := newMemStore()
	strict := MergeOptions{Strict: true}

	noVendor := inventory.ImportRecord{Quantity: 1, Description: "x", Order: invoiceOrder(1, 1)}
	_, _, err := MergeAndImport(context.Background(), store, noVendor, strict)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Contains(t, err.Error(), "vendor part number")

	noOrder := baseRecord("DK-1", 1)
	_, _, err = MergeAndImport(context.Background(), store, noOrder, strict)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without an order")

	noInvoice := baseRecord("DK-1", 1)
	noInvoice.Order = &inventory.OrderInfo{Quantity: 1}
	_, _, err = MergeAndImport(context.Background(), store, noInvoice, strict)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invoice")

	assert.Zero(t, store.creates)

	ok := baseRecord("DK-1", 1)
	ok.Order = invoiceOrder(7, 1)
	_, outcome, err := MergeAndImport(context.Background(), store, ok, strict)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNewWithVendorNumber, outcome)
}

func TestMergeAndImportRejectsInvalidOrders(t *testing.T) {
	cases := map[string]*inventory.OrderInfo{
		"zero quantity":        {Quantity: 0, InvoiceID: int64Ptr(4)},
		"negative quantity":    {Quantity: -3, InvoiceID: int64Ptr(4)},
		"zero invoice":         {Quantity: 4, InvoiceID: int64Ptr(0)},
		"negative sales order": {Quantity: 4, SalesOrderID: int64Ptr(-1)},
	}
	for name, order := range cases {
		t.Run(name, func(t *testing.T) {
			for _, strict := range []bool{false, true} {
				store := newMemStore()
				rec := baseRecord("DK-1", 4)
				rec.Order = order
				_, _, err := MergeAndImport(context.Background(), store, rec, MergeOptions{Strict: strict})
				require.Error(t, err)
				assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
				assert.Zero(t, store.creates)
			}
		})
	}
}

func TestCheckStrictRejectsUnsetInvoice(t *testing.T) {
	rec := baseRecord("DK-1", 4)
	rec.Order = &inventory.OrderInfo{Quantity: 4, InvoiceID: int64Ptr(0)}
	assert.True(t, pkgerrors.IsCode(checkStrict(rec), pkgerrors.CodeValidation))

	rec.Order.InvoiceID = int64Ptr(12)
	assert.NoError(t, checkStrict(rec))
}

func TestMergeOrders(t *testing.T) {
	t.Run("nil incoming leaves history", func(t *testing.T) {
		existing := []inventory.OrderInfo{*invoiceOrder(1, 5)}
		out, result, err := mergeOrders(existing, nil)
		require.NoError(t, err)
		assert.Equal(t, orderMergeNone, result)
		assert.Equal(t, existing, out)
	})

	t.Run("empty history appends", func(t *testing.T) {
		out, result, err := mergeOrders(nil, invoiceOrder(1, 5))
		require.NoError(t, err)
		assert.Equal(t, orderMergeNew, result)
		require.Len(t, out, 1)
		assert.False(t, out[0].Conflicts)
	})

	t.Run("clean merge into a flagged sibling clears the flag", func(t *testing.T) {
		flagged := *invoiceOrder(1, 5)
		flagged.Conflicts = true
		existing := []inventory.OrderInfo{*invoiceOrder(1, 3), flagged}

		out, result, err := mergeOrders(existing, invoiceOrder(1, 5))
		require.NoError(t, err)
		assert.Equal(t, orderMergeDuplicate, result)
		require.Len(t, out, 2)
		assert.Equal(t, 3, out[0].Quantity)
		assert.Equal(t, 5, out[1].Quantity)
		assert.False(t, out[0].Conflicts)
		assert.False(t, out[1].Conflicts)
	})

	t.Run("unknown invoice does not match known", func(t *testing.T) {
		out, result, err := mergeOrders([]inventory.OrderInfo{*invoiceOrder(1, 5)}, &inventory.OrderInfo{Quantity: 5})
		require.NoError(t, err)
		assert.Equal(t, orderMergeNew, result)
		require.Len(t, out, 2)
		assert.False(t, out[1].Conflicts)
	})
}

func TestOutcomeString(t *testing.T) {
	cases := map[Outcome]string{
		OutcomeNewWithoutVendorNumber: "new_without_vendor_number",
		OutcomeNewWithVendorNumber:    "new_with_vendor_number",
		OutcomeMergedIntoExisting:     "merged_into_existing",
		OutcomeDuplicateOrder:         "duplicate_order",
		Outcome(0):                    "unknown",
	}
	for outcome, want := range cases {
		assert.Equal(t, want, outcome.String())
	}

	raw, err := json.Marshal(map[string]Outcome{"outcome": OutcomeDuplicateOrder})
	require.NoError(t, err)
	assert.JSONEq(t, `{"outcome":"duplicate_order"}`, string(raw))

	var decoded map[string]Outcome
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, OutcomeDuplicateOrder, decoded["outcome"])

	var bad Outcome
	assert.Error(t, bad.UnmarshalText([]byte("shrug")))
}
