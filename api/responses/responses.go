package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"reflect"

	pkgerrors "github.com/angelmondragon/partsbin-backend/pkg/errors"
	"github.com/angelmondragon/partsbin-backend/pkg/logger"
	"github.com/angelmondragon/partsbin-backend/pkg/types"
)

// RequestIDHeader is set on the response by the request id middleware before
// any handler runs, so error bodies can echo it.
const RequestIDHeader = "X-Request-Id"

// Detail keys copied from error details into the request log.
var loggedDetailKeys = []string{"field", "vendor_part_number", "existing_id", "new_id", "existing", "incoming"}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data})
}

// WriteList writes a slice with its length in meta. limit is echoed when
// positive.
func WriteList(w http.ResponseWriter, items any, limit int) {
	meta := &types.ListMeta{Count: lenOf(items)}
	if limit > 0 {
		meta.Limit = limit
	}
	writeJSON(w, http.StatusOK, types.SuccessEnvelope{Data: items, Meta: meta})
}

// WriteError maps err to its HTTP status and error envelope. Client errors are
// logged at warn, server errors at error.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	if exposesMessage(typed.Code()) {
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := types.ErrorEnvelope{
		Error: types.APIError{
			Code:      string(typed.Code()),
			Message:   msg,
			RequestID: w.Header().Get(RequestIDHeader),
		},
	}
	if meta.DetailsAllowed {
		payload.Error.Details = typed.Details()
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, errorFields(err, typed))
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.WarnErr(ctx, "request.rejected", err)
		}
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

func exposesMessage(code pkgerrors.Code) bool {
	switch code {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeUnauthorized,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeConflict,
		pkgerrors.CodeStateConflict,
		pkgerrors.CodeIdempotency:
		return true
	}
	return false
}

func errorFields(err error, typed *pkgerrors.Error) map[string]any {
	dump := pkgerrors.Dump(err)
	fields := map[string]any{
		"error":       dump.TopMessage,
		"error_code":  dump.Code,
		"error_chain": dump.Chain,
	}
	if dump.PGCode != "" {
		fields["pg_code"] = dump.PGCode
		fields["pg_constraint"] = dump.PGConstraint
		fields["pg_table"] = dump.PGTable
		fields["pg_detail"] = dump.PGDetail
	}
	if dump.SQLiteCode != "" {
		fields["sqlite_code"] = dump.SQLiteCode
		fields["sqlite_extended_code"] = dump.SQLiteExtendedCode
	}
	if details, ok := typed.Details().(map[string]any); ok {
		for _, key := range loggedDetailKeys {
			if v, ok := details[key]; ok {
				fields[key] = v
			}
		}
	}
	return fields
}

func lenOf(items any) int {
	v := reflect.ValueOf(items)
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return v.Len()
	}
	return 0
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
