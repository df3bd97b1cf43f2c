package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/phoolcraft/phool-backend/api/responses"
	pkgerrors "github.com/phoolcraft/phool-backend/pkg/errors"
	"github.com/phoolcraft/phool-backend/pkg/localstore"
	"github.com/phoolcraft/phool-backend/pkg/logger"
)

const (
	idempotencyHeader     = "Idempotency-Key"
	idempotencyKeyPrefix  = "idem:"
	defaultIdempotencyTTL = 24 * time.Hour
	maxIdempotencyKeyLen  = 128

	// pendingIdempotencyTTL bounds how long a crashed request keeps its key.
	pendingIdempotencyTTL = 2 * time.Minute
)

type idempotencyRecord struct {
	Status      int               `json:"status"`
	Body        string            `json:"body"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
	ExpiresAt   time.Time         `json:"expires_at"`
}

// pending records are reservations whose handler has not finished.
func (r *idempotencyRecord) pending() bool {
	return r.Status == 0
}

// Idempotency replays the stored response when an order submission is
// retried with the same Idempotency-Key. The key is claimed before the
// handler runs, so a concurrent duplicate gets 409 instead of placing a
// second order. Requests without the header pass through. Records live in
// local storage and are ignored once expired.
func Idempotency(store localstore.Store, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idempotencyKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(idempotencyKey) > maxIdempotencyKeyLen {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header too long"))
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashBody(body)
			key := idempotencyKeyPrefix + hashBody([]byte(buildScope(r)+"|"+idempotencyKey))

			reserved, existing, err := reserve(r.Context(), store, key, requestHash, logg)
			if err != nil {
				// the store is down; serve the request without replay protection
				logError(r.Context(), logg, "reserve idempotency key", err)
				next.ServeHTTP(w, r)
				return
			}
			if !reserved {
				switch {
				case existing == nil || existing.pending():
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "a request with this idempotency key is still in progress"))
				case existing.RequestHash != requestHash:
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "idempotency key reused with different request body"))
				default:
					writeStoredResponse(w, existing)
				}
				return
			}

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := defaultStatus(rec.status)
			if status >= http.StatusInternalServerError {
				if err := store.Delete(r.Context(), key); err != nil {
					logError(r.Context(), logg, "release idempotency key", err)
				}
				return
			}
			record := idempotencyRecord{
				Status:      status,
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
				RequestHash: requestHash,
				ExpiresAt:   time.Now().Add(ttl),
			}
			if ct := rec.Header().Get("Content-Type"); ct != "" {
				record.Headers = map[string]string{"Content-Type": ct}
			}

			payload, marshalErr := json.Marshal(record)
			if marshalErr != nil {
				logError(r.Context(), logg, "marshal idempotency record", marshalErr)
				return
			}
			// the key is ours since reserve, so replacing the pending record is safe
			if setErr := store.Set(r.Context(), key, payload); setErr != nil {
				logError(r.Context(), logg, "persist idempotency record", setErr)
			}
		})
	}
}

// reserve claims key with a pending record. When another request holds the
// key, its record is returned instead. An expired or unreadable record is
// cleared and the claim retried once.
func reserve(ctx context.Context, store localstore.Store, key, requestHash string, logg *logger.Logger) (bool, *idempotencyRecord, error) {
	pending, err := json.Marshal(idempotencyRecord{
		RequestHash: requestHash,
		ExpiresAt:   time.Now().Add(pendingIdempotencyTTL),
	})
	if err != nil {
		return false, nil, err
	}

	for attempt := 0; attempt < 2; attempt++ {
		ok, err := store.SetNX(ctx, key, pending)
		if err != nil || ok {
			return ok, nil, err
		}
		if existing := loadRecord(ctx, store, key, logg); existing != nil {
			return false, existing, nil
		}
	}
	return false, nil, nil
}

func loadRecord(ctx context.Context, store localstore.Store, key string, logg *logger.Logger) *idempotencyRecord {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		logError(ctx, logg, "check idempotency", err)
		return nil
	}
	if !ok {
		return nil
	}
	var record idempotencyRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		logError(ctx, logg, "decode idempotency record", err)
		if err := store.Delete(ctx, key); err != nil {
			logError(ctx, logg, "drop idempotency record", err)
		}
		return nil
	}
	if time.Now().After(record.ExpiresAt) {
		if err := store.Delete(ctx, key); err != nil {
			logError(ctx, logg, "expire idempotency record", err)
		}
		return nil
	}
	return &record
}

func buildScope(r *http.Request) string {
	parts := []string{
		BasketIDFromContext(r.Context()),
		r.Method,
		r.URL.Path,
	}
	return strings.Join(parts, "|")
}

func writeStoredResponse(w http.ResponseWriter, record *idempotencyRecord) {
	if ct, ok := record.Headers["Content-Type"]; ok && ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func defaultStatus(value int) int {
	if value == 0 {
		return http.StatusOK
	}
	return value
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
