package controllers

import (
	"net/http"

	"github.com/angelmondragon/partsbin-backend/api/responses"
	"github.com/angelmondragon/partsbin-backend/api/validators"
	"github.com/angelmondragon/partsbin-backend/internal/inventory"
	"github.com/angelmondragon/partsbin-backend/pkg/logger"
)

type slotImportRequest struct {
	Barcode string     `json:"barcode" validate:"required,barcode"`
	SlotIDs slotIDList `json:"slot_ids" validate:"required,min=1"`
}

// ItemSlots lists the slots an item is filed under.
func ItemSlots(store inventory.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		slots, err := store.SlotsOf(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, slots)
	}
}

// AddItemToSlot files an item under a slot. Repeating it is a no-op.
func AddItemToSlot(store inventory.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		slot, err := slotIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.AddToSlot(r.Context(), id, slot); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// RemoveItemFromSlot takes an item out of a slot.
func RemoveItemFromSlot(store inventory.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		slot, err := slotIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.RemoveFromSlot(r.Context(), id, slot); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// SlotItems lists the items filed under a slot.
func SlotItems(store inventory.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slot, err := slotIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := store.FindBySlot(r.Context(), slot)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// ImportIntoSlots imports a product label and files the item under the
// given hex slot ids.
func ImportIntoSlots(svc ImportService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload slotImportRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ImportIntoSlots(r.Context(), payload.Barcode, payload.SlotIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
