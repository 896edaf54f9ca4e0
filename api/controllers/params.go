package controllers

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/partsbin-backend/internal/speech"
	pkgerrors "github.com/angelmondragon/partsbin-backend/pkg/errors"
)

func itemIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "itemId"))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id").WithDetails(map[string]any{"item_id": raw})
	}
	return id, nil
}

func bomIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "bomId"))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid bom id").WithDetails(map[string]any{"bom_id": raw})
	}
	return id, nil
}

func slotIDParam(r *http.Request) (int, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "slotId"))
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid slot id").WithDetails(map[string]any{"slot_id": raw})
	}
	return id, nil
}

// slotIDList accepts a single slot id or a list of them. Strings are hex;
// numbers are taken as already decoded.
type slotIDList []int

func (s *slotIDList) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	values, ok := raw.([]any)
	if !ok {
		values = []any{raw}
	}
	out := make(slotIDList, 0, len(values))
	for _, v := range values {
		switch t := v.(type) {
		case string:
			id, err := speech.ParseHexSlot(t)
			if err != nil {
				return err
			}
			out = append(out, id)
		case float64:
			if t < 0 || t != math.Trunc(t) || t > math.MaxInt32 {
				return fmt.Errorf("invalid slot id %v", t)
			}
			out = append(out, int(t))
		default:
			return fmt.Errorf("invalid slot id %v", v)
		}
	}
	*s = out
	return nil
}
