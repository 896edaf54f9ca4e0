package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/partsbin-backend/internal/details"
	"github.com/angelmondragon/partsbin-backend/internal/inventory"
	"github.com/angelmondragon/partsbin-backend/pkg/digikey"
	pkgerrors "github.com/angelmondragon/partsbin-backend/pkg/errors"
	"github.com/angelmondragon/partsbin-backend/pkg/logger"
	"github.com/angelmondragon/partsbin-backend/pkg/metrics"
)

// VendorAPI is the subset of the DigiKey client used by imports.
type VendorAPI interface {
	GetItemBy1DBarcode(ctx context.Context, barcode string) (*digikey.ProductBarcodeResponse, error)
	GetItemBy2DBarcode(ctx context.Context, barcode string) (*digikey.Product2DBarcodeResponse, error)
	GetPackListBy1DBarcode(ctx context.Context, barcode string) (*digikey.PackListBarcodeResponse, error)
	GetPackListBy2DBarcode(ctx context.Context, barcode string) (*digikey.PackListBarcodeResponse, error)
	GetProductDetails(ctx context.Context, partNumber string) (*digikey.ProductDetails, error)
}

// ServiceParams configure the import service.
type ServiceParams struct {
	Store   inventory.Store
	Vendor  VendorAPI
	Locker  Locker
	Logger  *logger.Logger
	Metrics *metrics.ImportMetrics
	// StrictOrderMatching rejects shipments that cannot be matched to an
	// invoice.
	StrictOrderMatching bool
}

// Service runs enrichment and the merge engine for every way a shipment can
// enter the inventory.
type Service struct {
	store   inventory.Store
	vendor  VendorAPI
	locker  Locker
	logg    *logger.Logger
	metrics *metrics.ImportMetrics
	strict  bool
}

// Result is a stored item together with what the import did to it.
type Result struct {
	Item    inventory.Item `json:"item" yaml:"item"`
	Outcome Outcome        `json:"outcome" yaml:"outcome"`
}

// NewService builds an import service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("inventory store required")
	}
	if params.Vendor == nil {
		return nil, fmt.Errorf("vendor api required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	locker := params.Locker
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &Service{
		store:   params.Store,
		vendor:  params.Vendor,
		locker:  locker,
		logg:    params.Logger,
		metrics: params.Metrics,
		strict:  params.StrictOrderMatching,
	}, nil
}

// Import enriches the record from the vendor when it is incomplete and
// merges it into the inventory. Enrichment failures never block the import.
func (s *Service) Import(ctx context.Context, rec inventory.ImportRecord) (*Result, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDuration("import", time.Since(start)) }()

	rec = s.enrich(ctx, rec)

	id, outcome, err := s.merge(ctx, rec)
	if err != nil {
		s.metrics.IncFailure(string(pkgerrors.CodeOf(err)))
		return nil, err
	}
	s.metrics.IncOutcome(outcome.String())

	item, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Result{Item: *item, Outcome: outcome}, nil
}

func (s *Service) merge(ctx context.Context, rec inventory.ImportRecord) (uuid.UUID, Outcome, error) {
	if rec.HasVendorPartNumber() {
		unlock, err := s.locker.Lock(ctx, *rec.VendorPartNumber)
		if err != nil {
			return uuid.Nil, 0, err
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				s.logg.WarnErr(ctx, "failed to release import lock", err)
			}
		}()
	}
	return MergeAndImport(ctx, s.store, rec, MergeOptions{Strict: s.strict, Logger: s.logg})
}

func needsEnrichment(rec inventory.ImportRecord) bool {
	return rec.HasVendorPartNumber() && (rec.ProductDetails == nil ||
		rec.ManufacturerName == nil ||
		rec.ManufacturerPartNumber == nil ||
		rec.IsDescriptionPlaceholder)
}

// enrich fills missing fields from the vendor's product details. Present
// fields are never overwritten.
func (s *Service) enrich(ctx context.Context, rec inventory.ImportRecord) inventory.ImportRecord {
	if !needsEnrichment(rec) {
		return rec
	}
	vendorNumber := *rec.VendorPartNumber

	resp, err := s.vendor.GetProductDetails(ctx, vendorNumber)
	if err != nil {
		s.metrics.IncEnrichmentFailure(string(pkgerrors.CodeOf(err)))
		s.logg.WarnErr(s.logg.WithVendorNumber(ctx, vendorNumber), "failed to fetch product details", err)
		return rec
	}
	if resp == nil || resp.Product == nil {
		return rec
	}
	product := resp.Product

	if rec.ProductDetails == nil {
		refined := details.Refine(*product)
		rec.ProductDetails = &refined
	}
	if rec.ManufacturerName == nil && product.Manufacturer != nil {
		rec.ManufacturerName = product.Manufacturer.Name
	}
	if rec.ManufacturerPartNumber == nil {
		rec.ManufacturerPartNumber = product.ManufacturerProductNumber
	}
	if rec.IsDescriptionPlaceholder && product.Description != nil &&
		product.Description.ProductDescription != nil && *product.Description.ProductDescription != "" {
		rec.Description = *product.Description.ProductDescription
		rec.IsDescriptionPlaceholder = false
	}
	return rec
}

// ImportByBarcode looks up a product label and imports it. All-digit codes
// are 1D labels; anything else is treated as a data matrix.
func (s *Service) ImportByBarcode(ctx context.Context, barcode string) (*Result, error) {
	code := strings.TrimSpace(barcode)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode is required")
	}

	var rec inventory.ImportRecord
	if digikey.IsLinearBarcode(code) {
		resp, err := s.vendor.GetItemBy1DBarcode(ctx, code)
		if err != nil {
			return nil, err
		}
		rec = FromProductBarcode(*resp, code)
	} else {
		resp, err := s.vendor.GetItemBy2DBarcode(ctx, code)
		if err != nil {
			return nil, err
		}
		rec = FromProduct2DBarcode(*resp, code)
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"vendor_part_number": deref(rec.VendorPartNumber),
		"quantity":           rec.Quantity,
	}), "importing item by barcode")
	return s.Import(ctx, rec)
}

// ImportPackList imports every line of a pack list in order. The first
// failure stops the run; earlier lines stay imported.
func (s *Service) ImportPackList(ctx context.Context, barcode string) ([]Result, error) {
	code := strings.TrimSpace(barcode)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode is required")
	}

	var (
		resp *digikey.PackListBarcodeResponse
		err  error
	)
	if digikey.IsLinearBarcode(code) {
		resp, err = s.vendor.GetPackListBy1DBarcode(ctx, code)
	} else {
		resp, err = s.vendor.GetPackListBy2DBarcode(ctx, code)
	}
	if err != nil {
		return nil, err
	}

	records := FromPackList(*resp)
	ctx = s.logg.WithBarcode(ctx, code)
	s.logg.Info(s.logg.WithField(ctx, "lines", len(records)), "importing pack list")

	results := make([]Result, 0, len(records))
	for _, rec := range records {
		res, err := s.Import(ctx, rec)
		if err != nil {
			s.logg.Error(s.logg.WithVendorNumber(ctx, deref(rec.VendorPartNumber)), "pack list import failed", err)
			return results, err
		}
		results = append(results, *res)
	}
	return results, nil
}

// ImportIntoSlots imports a product label and files the item under each
// slot.
func (s *Service) ImportIntoSlots(ctx context.Context, barcode string, slots []int) (*Result, error) {
	for _, slot := range slots {
		if slot < 0 {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid slot id %d", slot)
		}
	}

	res, err := s.ImportByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	for _, slot := range slots {
		if err := s.store.AddToSlot(ctx, res.Item.ID, slot); err != nil {
			return nil, err
		}
	}
	if len(slots) > 0 {
		slotCtx := s.logg.WithSlots(s.logg.WithItemID(ctx, res.Item.ID.String()), slots)
		s.logg.Info(slotCtx, "item filed into slots")
	}

	item, err := s.store.Get(ctx, res.Item.ID)
	if err != nil {
		return nil, err
	}
	return &Result{Item: *item, Outcome: res.Outcome}, nil
}

// RefreshDetails replaces an item's product details with freshly refined
// vendor data. Unlike enrichment, vendor failures are returned.
func (s *Service) RefreshDetails(ctx context.Context, id uuid.UUID) (*inventory.Item, error) {
	item, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, *item); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

// RefreshAllDetails refreshes every item that has a vendor part number and
// returns how many were updated before any failure.
func (s *Service) RefreshAllDetails(ctx context.Context) (int, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDuration("refresh_all", time.Since(start)) }()

	items, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}
	s.logg.Info(s.logg.WithField(ctx, "items", len(items)), "refreshing product details")

	refreshed := 0
	for _, item := range items {
		if item.VendorPartNumber == nil || *item.VendorPartNumber == "" {
			continue
		}
		if err := s.refresh(ctx, item); err != nil {
			s.logg.Error(s.logg.WithItemID(ctx, item.ID.String()), "failed to refresh product details", err)
			return refreshed, err
		}
		refreshed++
	}
	return refreshed, nil
}

func (s *Service) refresh(ctx context.Context, item inventory.Item) error {
	if item.VendorPartNumber == nil || *item.VendorPartNumber == "" {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "item %s does not have a vendor part number", item.ID)
	}
	resp, err := s.vendor.GetProductDetails(ctx, *item.VendorPartNumber)
	if err != nil {
		return err
	}
	if resp == nil || resp.Product == nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency,
			&digikey.APIError{Message: "no product in response"},
			fmt.Sprintf("failed to fetch product details for %s", *item.VendorPartNumber))
	}
	refined := details.Refine(*resp.Product)
	return s.store.SetProductDetails(ctx, item.ID, &refined)
}

// Store exposes the underlying inventory store to adapters.
func (s *Service) Store() inventory.Store {
	return s.store
}

// IsVendorError reports whether err came from the vendor API.
func IsVendorError(err error) bool {
	return digikey.IsAPIError(err) || digikey.IsAuthError(err) || errors.Is(err, digikey.ErrNotFound)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
