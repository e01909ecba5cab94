package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog"

	"github.com/iho/goticket/internal/adapter/http/dto"
	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/infrastructure/logger"
	"github.com/iho/goticket/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// ReplayHeader marks a response served from the idempotency cache.
	ReplayHeader = "X-Idempotency-Replay"
)

// cachedResponse is the stored outcome of a completed request.
type cachedResponse struct {
	Status      int    `cbor:"1,keyasint"`
	ContentType string `cbor:"2,keyasint"`
	Body        []byte `cbor:"3,keyasint"`
}

// IdempotencyMiddleware replays the first final response for a key so a
// retried purchase or sale is not executed twice. Failures that left no
// trace (rejected before settlement or fully compensated) release the key
// instead, so the client may retry them.
type IdempotencyMiddleware struct {
	store  usecase.IdempotencyStore
	ttl    time.Duration
	logger zerolog.Logger
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration, log zerolog.Logger) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl, logger: log}
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get(IdempotencyKeyHeader)
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		// Keys are scoped to the caller so users cannot read each other's replies.
		key := header
		if userID, ok := domain.UserIDFromContext(r.Context()); ok {
			key = userID + ":" + header
		}

		exists, cached, err := m.store.CheckAndSet(r.Context(), key, nil, m.ttl)
		if err != nil {
			http.Error(w, "idempotency check failed", http.StatusServiceUnavailable)
			return
		}

		if exists {
			if cached == nil || string(cached) == usecase.IdempotencyPending {
				http.Error(w, "request with this idempotency key is in progress", http.StatusConflict)
				return
			}

			var resp cachedResponse
			if err := cbor.Unmarshal(cached, &resp); err != nil {
				http.Error(w, "corrupt idempotency record", http.StatusInternalServerError)
				return
			}

			w.Header().Set("Content-Type", resp.ContentType)
			w.Header().Set(ReplayHeader, "true")
			w.WriteHeader(resp.Status)
			w.Write(resp.Body)
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		// The pipeline may outlive a cancelled caller; so must the bookkeeping.
		ctx := context.WithoutCancel(r.Context())
		log := logger.WithContext(ctx, m.logger)

		if retryable(recorder.statusCode, recorder.body.Bytes()) {
			if err := m.store.Release(ctx, key); err != nil {
				log.Warn().Err(err).Str("idempotency_key", header).Msg("failed to release idempotency key")
			}
			return
		}

		data, err := cbor.Marshal(cachedResponse{
			Status:      recorder.statusCode,
			ContentType: recorder.Header().Get("Content-Type"),
			Body:        recorder.body.Bytes(),
		})
		if err == nil {
			err = m.store.Update(ctx, key, data, m.ttl)
		}
		if err != nil {
			log.Warn().Err(err).Str("idempotency_key", header).Msg("failed to store idempotent response")
		}
	})
}

// retryable reports whether a response may be released for retry. A
// failure after settlement that was not compensated moved money, so it is
// replayed like a success rather than executed again.
func retryable(status int, body []byte) bool {
	if status >= 200 && status < 300 {
		return false
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Kind == "" {
		return true
	}

	switch domain.ErrorKind(resp.Kind) {
	case domain.KindFatal:
		return false
	case domain.KindValidation, domain.KindRaceCompensated:
		return true
	}
	if resp.Compensated {
		return true
	}

	switch domain.Stage(resp.Stage) {
	case "", domain.StageValidating, domain.StageTokenizing:
		return true
	}
	return false
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
