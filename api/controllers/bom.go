package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/partsbin-backend/api/responses"
	"github.com/angelmondragon/partsbin-backend/api/validators"
	"github.com/angelmondragon/partsbin-backend/internal/bom"
	"github.com/angelmondragon/partsbin-backend/internal/inventory"
	pkgerrors "github.com/angelmondragon/partsbin-backend/pkg/errors"
	"github.com/angelmondragon/partsbin-backend/pkg/logger"
)

const textMatchLimit = 5

// BomStore is the BOM persistence used by the handlers.
type BomStore interface {
	List(ctx context.Context) ([]bom.Bom, error)
	Get(ctx context.Context, id uuid.UUID) (*bom.Bom, error)
	Create(ctx context.Context, b bom.NewBom) (uuid.UUID, error)
	Replace(ctx context.Context, b bom.Bom) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type matchEntryRequest struct {
	Entry bom.Entry `json:"entry"`
	Limit int       `json:"limit" validate:"gte=0,lte=50"`
}

func ListBoms(store BomStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		boms, err := store.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, boms, 0)
	}
}

func GetBom(store BomStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := bomIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		b, err := store.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, b)
	}
}

// CreateBom stores a new BOM and returns it with its id.
func CreateBom(store BomStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload bom.NewBom
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := store.Create(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		b, err := store.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, b)
	}
}

// UpdateBom replaces a BOM. An id in the body must match the path; an
// omitted one takes the path id.
func UpdateBom(store BomStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := bomIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload bom.Bom
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.ID == uuid.Nil {
			payload.ID = id
		}
		if payload.ID != id {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "bom id does not match path").
				WithDetails(map[string]any{"bom_id": id.String(), "body_id": payload.ID.String()}))
			return
		}
		if err := store.Replace(r.Context(), payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		b, err := store.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, b)
	}
}

func DeleteBom(store BomStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := bomIDParam(r)
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

// SearchForBomEntry is the quick lookup behind the BOM editor's search box:
// a text search capped at a handful of results.
func SearchForBomEntry(store inventory.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := validators.RequiredQueryString(r, "search", maxQueryLength)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := store.Search(r.Context(), query, textMatchLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, items, textMatchLimit)
	}
}

// MatchBomEntry suggests inventory items for a posted BOM entry, exact
// manufacturer part number matches first.
func MatchBomEntry(store inventory.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload matchEntryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit := payload.Limit
		if limit == 0 {
			limit = bom.DefaultMatchLimit
		}
		items, err := bom.Match(r.Context(), store, payload.Entry, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, items, limit)
	}
}
