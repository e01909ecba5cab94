package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/infrastructure/auth"
	"github.com/iho/goticket/internal/infrastructure/metrics"
)

func echoUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := domain.UserIDFromContext(r.Context())
	_, _ = w.Write([]byte(userID))
}

func TestIdentity_HeaderMode(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	h := Identity(nil, m)(http.HandlerFunc(echoUser))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/account", nil)
	req.Header.Set(UserIDHeader, "alice")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "alice" {
		t.Fatalf("expected alice, got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/account", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if got := testutil.ToFloat64(m.AuthFailures.WithLabelValues("missing_identity")); got != 1 {
		t.Fatalf("expected auth failure to be counted, got %v", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/account", nil)
	req.Header.Set(UserIDHeader, strings.Repeat("x", domain.MaxUserIDLength+1))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected oversized id to be rejected, got %d", rec.Code)
	}
}

func TestIdentity_BearerMode(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Minute)
	token, err := manager.Generate("alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	h := Identity(manager, nil)(http.HandlerFunc(echoUser))

	tests := []struct {
		name   string
		header string
		xuser  string
		status int
		body   string
	}{
		{name: "valid token", header: "Bearer " + token, status: http.StatusOK, body: "alice"},
		{name: "header ignored", xuser: "mallory", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + token, status: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/account", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.xuser != "" {
				req.Header.Set(UserIDHeader, tt.xuser)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Fatalf("expected body %q, got %q", tt.body, rec.Body.String())
			}
		})
	}
}

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/api/v1/catalog/{event}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, event := range []string{"GameA", "GameB"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/catalog/"+event, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	counter := m.HTTPRequests.WithLabelValues(http.MethodGet, "/api/v1/catalog/{event}", "418")
	if got := testutil.ToFloat64(counter); got != 2 {
		t.Fatalf("expected 2 requests under the route pattern, got %v", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "unmatched", "404")); got != 1 {
		t.Fatalf("expected unmatched route to be counted once, got %v", got)
	}
}

func TestRateLimiterAllowsBurstPerKey(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		if ok, _ := rl.Allow(ctx, "1.2.3.4"); ok != want {
			t.Fatalf("hit %d: got %v, want %v", i, ok, want)
		}
	}
	if ok, _ := rl.Allow(ctx, "5.6.7.8"); !ok {
		t.Fatalf("other key must have its own bucket")
	}

	now = now.Add(time.Second)
	if ok, _ := rl.Allow(ctx, "1.2.3.4"); !ok {
		t.Fatalf("bucket must refill")
	}

	now = now.Add(time.Hour)
	rl.CleanupLimiters(time.Minute)
	if len(rl.limiters) != 0 {
		t.Fatalf("idle visitors must be dropped, have %d", len(rl.limiters))
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestRateLimitMiddleware(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	h := RateLimit(NewRateLimiter(1, 1), m, zerolog.Nop())(next)
	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "1.2.3.4:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("request %d: expected %d, got %d", i, want, rec.Code)
		}
	}
	if got := testutil.ToFloat64(m.RateLimitHits.WithLabelValues("1.2.3.4")); got != 1 {
		t.Fatalf("expected one counted hit, got %v", got)
	}

	open := RateLimit(failingLimiter{}, nil, zerolog.Nop())(next)
	rec := httptest.NewRecorder()
	open.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("limiter errors must fail open, got %d", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if got := clientIP(req); got != "10.0.0.1" {
		t.Fatalf("expected host without port, got %s", got)
	}

	req.Header.Set("X-Real-IP", "10.0.0.2")
	if got := clientIP(req); got != "10.0.0.2" {
		t.Fatalf("expected X-Real-IP, got %s", got)
	}

	req.Header.Set("X-Forwarded-For", "10.0.0.3, 10.0.0.4")
	if got := clientIP(req); got != "10.0.0.3" {
		t.Fatalf("expected first forwarded hop, got %s", got)
	}
}

func TestRecoveryAndLogging(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	h := NewLoggingMiddleware(log).Wrap(Recovery(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/purchases", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	out := buf.String()
	if !strings.Contains(out, "panic recovered") || !strings.Contains(out, `"status":500`) {
		t.Fatalf("expected panic and access log lines, got %s", out)
	}
}
