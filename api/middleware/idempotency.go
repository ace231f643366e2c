package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/goldstore/storefront/api/responses"
	pkgerrors "github.com/goldstore/storefront/pkg/errors"
	"github.com/goldstore/storefront/pkg/logger"
	"github.com/goldstore/storefront/pkg/storage"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
	maxIdempotentBody = 1 << 20
)

// idempotencyRecord is the last response served for a route. Only one record
// per client and route is kept, which is enough to absorb double submits.
type idempotencyRecord struct {
	Key         string            `json:"key"`
	Status      int               `json:"status"`
	Body        string            `json:"body"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

// Idempotency replays the stored response when a client retries a request
// with the same Idempotency-Key. Requests without the header pass through.
// Concurrent requests carrying the same key share a single handler run; the
// ones that did not run it get the replay. It must run after ClientSession.
func Idempotency(backend storage.Storage, logg *logger.Logger) func(http.Handler) http.Handler {
	var inflight singleflight.Group

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idempotencyKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			clientID := ClientIDFromContext(r.Context())
			if idempotencyKey == "" || clientID == "" || backend == nil {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, maxIdempotentBody))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashBody(body)
			scoped := storage.Namespace(backend, clientID)
			key := recordKey(r)

			served := false
			v, err, _ := inflight.Do(clientID+"|"+key+"|"+idempotencyKey, func() (any, error) {
				var stored idempotencyRecord
				loadErr := storage.LoadJSON(r.Context(), scoped, key, &stored)
				switch {
				case loadErr == nil && stored.Key == idempotencyKey:
					return stored, nil
				case loadErr != nil && !errors.Is(loadErr, storage.ErrNotFound) && !errors.Is(loadErr, storage.ErrCorrupt):
					return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, loadErr, "check idempotency")
				}

				served = true
				record := serveAndCapture(next, w, r, idempotencyKey, requestHash)
				if record.Status < http.StatusInternalServerError {
					if err := storage.SaveJSON(r.Context(), scoped, key, record); err != nil {
						logg.Error(r.Context(), "persist idempotency record", err)
					}
				}
				return record, nil
			})
			if served {
				return
			}
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			record := v.(idempotencyRecord)
			if record.RequestHash != requestHash {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
				return
			}
			record.replay(w)
		})
	}
}

func serveAndCapture(next http.Handler, w http.ResponseWriter, r *http.Request, idempotencyKey, requestHash string) idempotencyRecord {
	var captured bytes.Buffer
	ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
	ww.Tee(&captured)
	next.ServeHTTP(ww, r)

	record := idempotencyRecord{
		Key:         idempotencyKey,
		Status:      defaultStatus(ww.Status()),
		Body:        base64.StdEncoding.EncodeToString(captured.Bytes()),
		RequestHash: requestHash,
	}
	if ct := ww.Header().Get("Content-Type"); ct != "" {
		record.Headers = map[string]string{"Content-Type": ct}
	}
	return record
}

func recordKey(r *http.Request) string {
	return "idempotency:" + r.Method + ":" + routePattern(r)
}

func (rec idempotencyRecord) replay(w http.ResponseWriter) {
	for name, value := range rec.Headers {
		w.Header().Set(name, value)
	}
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(rec.Status)
	if decoded, err := base64.StdEncoding.DecodeString(rec.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

// hashBody compares JSON bodies by value so key order and whitespace do not
// turn a genuine retry into a conflict.
func hashBody(payload []byte) string {
	var canonical any
	if err := json.Unmarshal(payload, &canonical); err == nil {
		if normalized, err := json.Marshal(canonical); err == nil {
			payload = normalized
		}
	}
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func defaultStatus(value int) int {
	if value == 0 {
		return http.StatusOK
	}
	return value
}

func routePattern(r *http.Request) string {
	if r == nil {
		return ""
	}
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		if pattern := ctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
