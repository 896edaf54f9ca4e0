package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/partsbin-backend/api/responses"
	"github.com/angelmondragon/partsbin-backend/api/validators"
	pkgerrors "github.com/angelmondragon/partsbin-backend/pkg/errors"
	"github.com/angelmondragon/partsbin-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/partsbin-backend/pkg/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
	maxKeyLength      = 128

	importReplayTTL = 24 * time.Hour
	// An import holds its key for at most this long before a retry may run it again.
	inFlightTTL = 2 * time.Minute
)

// Import routes by path. The middleware runs before chi has resolved the
// full route, so matching is on the cleaned request path.
var replayableImports = map[string]string{
	"/api/v1/items":           http.MethodPost,
	"/api/v1/items/pack-list": http.MethodPost,
	"/api/v1/items/import":    http.MethodPost,
	"/api/v1/slots/import":    http.MethodPost,
	"/api/v1/iphone/item":     http.MethodPost,
}

// importRecord is what the store holds under a key. A record with Pending
// set marks an import that has not produced a response yet.
type importRecord struct {
	Pending     bool   `json:"pending,omitempty"`
	Fingerprint string `json:"fingerprint"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Idempotency makes import routes safe to retry. The first request with a
// given Idempotency-Key claims the key, later requests with the same body get
// the stored response back, and a request that arrives while the first is
// still running is rejected as a conflict. Requests without the header, and
// all requests when store is nil, pass through.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			pattern, replayable := importPattern(r)
			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if store == nil || !replayable || clientKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(clientKey) > maxKeyLength {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "idempotency key too long").
					WithDetails(map[string]any{"field": idempotencyHeader}))
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, validators.MaxBodyBytes))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					responses.WriteError(ctx, logg, w, pkgerrors.Newf(pkgerrors.CodeValidation, "request body exceeds %d bytes", validators.MaxBodyBytes))
					return
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			fingerprint := requestFingerprint(r, body)
			key := store.IdempotencyKey(r.Method+"|"+pattern, clientKey)

			claim, _ := json.Marshal(importRecord{Pending: true, Fingerprint: fingerprint})
			claimed, err := store.SetNX(ctx, key, string(claim), inFlightTTL)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key"))
				return
			}
			if !claimed {
				replayStored(ctx, logg, store, w, key, fingerprint)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			defer func() {
				if capture.status >= http.StatusInternalServerError || capture.status == 0 {
					release(ctx, logg, store, key)
				}
			}()
			next.ServeHTTP(capture, r)

			status := capture.status
			if status == 0 {
				status = http.StatusOK
				capture.status = status
			}
			if status >= http.StatusInternalServerError {
				return
			}
			payload, _ := json.Marshal(importRecord{
				Fingerprint: fingerprint,
				Status:      status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
			})
			if err := store.Set(context.WithoutCancel(ctx), key, string(payload), importReplayTTL); err != nil && logg != nil {
				logg.WarnErr(ctx, "idempotency.store_failed", err)
			}
		})
	}
}

func replayStored(ctx context.Context, logg *logger.Logger, store pkgredis.IdempotencyStore, w http.ResponseWriter, key, fingerprint string) {
	stored, err := store.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		// The claim expired between SETNX and GET.
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "import with this idempotency key is still in progress"))
		return
	}
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idempotency record"))
		return
	}

	var record importRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode idempotency record"))
		return
	}
	switch {
	case record.Fingerprint != fingerprint:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
	case record.Pending:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "import with this idempotency key is still in progress"))
	default:
		if record.ContentType != "" {
			w.Header().Set("Content-Type", record.ContentType)
		}
		w.Header().Set(replayedHeader, "true")
		w.WriteHeader(record.Status)
		_, _ = w.Write(record.Body)
	}
}

func release(ctx context.Context, logg *logger.Logger, store pkgredis.IdempotencyStore, key string) {
	if err := store.Del(context.WithoutCancel(ctx), key); err != nil && logg != nil {
		logg.WarnErr(ctx, "idempotency.release_failed", err)
	}
}

// requestFingerprint covers the media type and the body, so a JSON import
// and a form post with identical bytes do not share a response.
func requestFingerprint(r *http.Request, body []byte) string {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	h := sha256.New()
	h.Write([]byte(mediaType))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func importPattern(r *http.Request) (string, bool) {
	pattern := path.Clean("/" + r.URL.Path)
	method, ok := replayableImports[pattern]
	return pattern, ok && method == r.Method
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
