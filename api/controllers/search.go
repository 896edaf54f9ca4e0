package controllers

import (
	"net/http"

	"github.com/angelmondragon/partsbin-backend/api/responses"
	"github.com/angelmondragon/partsbin-backend/api/validators"
	"github.com/angelmondragon/partsbin-backend/internal/inventory"
	"github.com/angelmondragon/partsbin-backend/pkg/logger"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 500
	maxQueryLength     = 200
)

// SearchItems runs a ranked text search over the inventory.
func SearchItems(store inventory.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := validators.RequiredQueryString(r, "q", maxQueryLength)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", defaultSearchLimit, 1, maxSearchLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := store.Search(r.Context(), query, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, items, limit)
	}
}
