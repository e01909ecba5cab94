package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/goticket/internal/infrastructure/auth"
)

func TestJWTManagerGenerateAndVerify(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("super-secret", time.Minute)

	token, err := manager.Generate("alice")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("expected token to verify, got %v", err)
	}

	if claims.UserID != "alice" || claims.Subject != "alice" {
		t.Fatalf("expected claims to carry the user, got %+v", claims)
	}

	if _, err := manager.Generate(""); err == nil {
		t.Fatalf("expected error for empty user id")
	}
}

func TestJWTManagerVerifyErrors(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)

	expiredClaims := auth.Claims{
		UserID: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
		},
	}

	expiredToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to sign expired token: %v", err)
	}

	if _, err := manager.Verify(expiredToken); !errors.Is(err, auth.ErrExpiredCredentials) {
		t.Fatalf("expected ErrExpiredCredentials, got %v", err)
	}

	otherToken, err := auth.NewJWTManager("other-secret", time.Minute).Generate("alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := manager.Verify(otherToken); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected invalid token error, got %v", err)
	}

	anonymous, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := manager.Verify(anonymous); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected token without user_id to be rejected, got %v", err)
	}

	if _, err := manager.Verify("not-a-token"); err == nil {
		t.Fatalf("expected failure for malformed token")
	}
}
