package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/partsbin-backend/api/responses"
	"github.com/angelmondragon/partsbin-backend/api/validators"
	"github.com/angelmondragon/partsbin-backend/internal/inventory"
	"github.com/angelmondragon/partsbin-backend/internal/speech"
	"github.com/angelmondragon/partsbin-backend/pkg/logger"
)

// IPhoneSlotSummary answers a dictated slot id with a sentence for a voice
// assistant to read. Unparseable ids and empty slots are answered in words
// rather than with an error status.
func IPhoneSlotSummary(store inventory.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slot, err := speech.ParseSpokenSlot(chi.URLParam(r, "slot"))
		if err != nil {
			responses.WriteSuccess(w, err.Error())
			return
		}
		items, err := store.FindBySlot(r.Context(), slot)
		if err != nil {
			if errors.Is(err, inventory.ErrNotFound) {
				responses.WriteSuccess(w, speech.NoItemsMessage(slot))
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, speech.SlotSummary(slot, items))
	}
}

// IPhoneImportItem imports a product label into one or more slots and
// returns the stored item. slot_ids may be a single hex id or a list.
func IPhoneImportItem(svc ImportService, logg *logger.Logger) http.HandlerFunc {
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
		responses.WriteSuccess(w, result.Item)
	}
}
