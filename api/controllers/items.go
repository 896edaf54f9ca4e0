package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/partsbin-backend/api/responses"
	"github.com/angelmondragon/partsbin-backend/api/validators"
	"github.com/angelmondragon/partsbin-backend/internal/importer"
	"github.com/angelmondragon/partsbin-backend/internal/inventory"
	"github.com/angelmondragon/partsbin-backend/pkg/logger"
)

// ImportService is the import surface used by the HTTP handlers.
type ImportService interface {
	Import(ctx context.Context, rec inventory.ImportRecord) (*importer.Result, error)
	ImportByBarcode(ctx context.Context, barcode string) (*importer.Result, error)
	ImportPackList(ctx context.Context, barcode string) ([]importer.Result, error)
	ImportIntoSlots(ctx context.Context, barcode string, slots []int) (*importer.Result, error)
	RefreshDetails(ctx context.Context, id uuid.UUID) (*inventory.Item, error)
	RefreshAllDetails(ctx context.Context) (int, error)
}

type barcodeRequest struct {
	Barcode string `json:"barcode" validate:"required,barcode"`
}

type commentsRequest struct {
	Comments string `json:"comments"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0"`
}

// ListItems returns every inventory item.
func ListItems(store inventory.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := store.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, items, 0)
	}
}

// GetItem returns one item by id.
func GetItem(store inventory.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := store.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// DeleteItem removes an item and its slot assignments.
func DeleteItem(store inventory.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ImportItemByBarcode imports a scanned product label.
func ImportItemByBarcode(svc ImportService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload barcodeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ImportByBarcode(r.Context(), payload.Barcode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ImportPackList imports every line of a scanned pack list.
func ImportPackList(svc ImportService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload barcodeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		results, err := svc.ImportPackList(r.Context(), payload.Barcode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, results)
	}
}

// ImportRecord imports a manually entered shipment.
func ImportRecord(svc ImportService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload inventory.ImportRecord
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Import(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// RefreshItemDetails reloads product details for one item from the vendor.
func RefreshItemDetails(svc ImportService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.RefreshDetails(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// RefreshAllDetails reloads product details for every vendor item.
func RefreshAllDetails(svc ImportService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.RefreshAllDetails(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"refreshed": n})
	}
}

// SetItemComments replaces an item's free-text comments.
func SetItemComments(store inventory.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload commentsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.SetComments(r.Context(), id, payload.Comments); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeItem(w, r, store, logg, id)
	}
}

// SetItemQuantity overwrites an item's available quantity after a stock
// count.
func SetItemQuantity(store inventory.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload quantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.SetQuantity(r.Context(), id, *payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeItem(w, r, store, logg, id)
	}
}

func writeItem(w http.ResponseWriter, r *http.Request, store inventory.Store, logg *logger.Logger, id uuid.UUID) {
	item, err := store.Get(r.Context(), id)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, item)
}
