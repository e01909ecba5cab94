package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/infrastructure/auth"
	"github.com/iho/goticket/internal/infrastructure/metrics"
)

// UserIDHeader carries the caller identity when bearer auth is disabled.
const UserIDHeader = "X-User-ID"

// Identity resolves the caller and stores the user id on the request
// context. With a JWT manager the Authorization bearer token is required;
// without one the X-User-ID header set by the fronting identity layer is
// trusted.
func Identity(jwtManager *auth.JWTManager, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, reason := resolveUser(r, jwtManager)
			if reason != "" {
				if m != nil {
					m.AuthFailures.WithLabelValues(reason).Inc()
				}
				http.Error(w, reason, http.StatusUnauthorized)
				return
			}

			if err := domain.ValidateUserID(userID); err != nil {
				if m != nil {
					m.AuthFailures.WithLabelValues("invalid_user").Inc()
				}
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			ctx := domain.ContextWithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveUser(r *http.Request, jwtManager *auth.JWTManager) (string, string) {
	if jwtManager == nil {
		userID := r.Header.Get(UserIDHeader)
		if userID == "" {
			return "", "missing_identity"
		}
		return userID, ""
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", "missing_authorization"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "invalid_authorization_format"
	}

	claims, err := jwtManager.Verify(parts[1])
	switch {
	case errors.Is(err, auth.ErrExpiredCredentials):
		return "", "expired_token"
	case err != nil:
		return "", "invalid_token"
	}

	return claims.UserID, ""
}
