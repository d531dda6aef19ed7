package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/news-interactions-api/internal/apperr"
	"github.com/news-interactions-api/internal/auth"
	"github.com/news-interactions-api/internal/config"
	"github.com/news-interactions-api/internal/mocks"
	"github.com/news-interactions-api/internal/models"
)

const (
	aliceID = "7b0e3a52-3c1e-4c55-9f0a-4d7f7a1c2b10"
	bobID   = "1d2f6c84-9a51-4e0b-8d8e-0b5b1f0c9e22"
)

func setup(t *testing.T) (config.AuthConfig, *mocks.MockUserRepository, *auth.JWTResolver) {
	t.Helper()
	cfg := config.AuthConfig{JWTSecret: "test-secret", Issuer: "identity"}
	users := mocks.NewMockUserRepository()
	users.Add(&models.User{ID: aliceID, Username: "alice", Role: models.RoleAdmin})
	until := time.Now().Add(time.Hour)
	users.Add(&models.User{ID: bobID, Username: "bob", Role: models.RoleUser, Status: models.UserStatusSuspended, SuspendedUntil: &until})
	return cfg, users, auth.NewJWTResolver(cfg, users)
}

func TestResolve(t *testing.T) {
	cfg, _, resolver := setup(t)
	ctx := context.Background()

	token, err := auth.NewToken(cfg, models.Identity{UserID: aliceID, Username: "stale-name", Role: models.RoleUser}, time.Hour)
	if err != nil {
		t.Fatalf("NewToken failed: %v", err)
	}

	id, err := resolver.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if id.UserID != aliceID || id.Username != "alice" || !id.IsAdmin() {
		t.Errorf("Stored account should win over claims, got %+v", id)
	}
}

func TestResolve_Rejections(t *testing.T) {
	cfg, _, resolver := setup(t)
	ctx := context.Background()

	sign := func(c config.AuthConfig, sub string, ttl time.Duration) string {
		tok, err := auth.NewToken(c, models.Identity{UserID: sub}, ttl)
		if err != nil {
			t.Fatalf("NewToken failed: %v", err)
		}
		return tok
	}

	noneToken, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": aliceID}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name     string
		token    string
		wantKind apperr.Kind
	}{
		{"empty", "", apperr.KindUnauthenticated},
		{"garbage", "not-a-token", apperr.KindUnauthenticated},
		{"wrong secret", sign(config.AuthConfig{JWTSecret: "other", Issuer: "identity"}, aliceID, time.Hour), apperr.KindUnauthenticated},
		{"wrong issuer", sign(config.AuthConfig{JWTSecret: cfg.JWTSecret, Issuer: "elsewhere"}, aliceID, time.Hour), apperr.KindUnauthenticated},
		{"expired", sign(cfg, aliceID, -time.Minute), apperr.KindUnauthenticated},
		{"alg none", noneToken, apperr.KindUnauthenticated},
		{"non uuid subject", sign(cfg, "alice", time.Hour), apperr.KindUnauthenticated},
		{"unknown account", sign(cfg, "00000000-0000-0000-0000-000000000001", time.Hour), apperr.KindUnauthenticated},
		{"suspended account", sign(cfg, bobID, time.Hour), apperr.KindForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.Resolve(ctx, tt.token)
			if err == nil {
				t.Fatal("Expected error")
			}
			if got := apperr.KindOf(err); got != tt.wantKind {
				t.Errorf("Expected kind %s, got %s (%v)", tt.wantKind, got, err)
			}
		})
	}
}

func TestResolve_StoreFailure(t *testing.T) {
	cfg, users, resolver := setup(t)
	users.GetError = errors.New("connection reset")

	token, _ := auth.NewToken(cfg, models.Identity{UserID: aliceID}, time.Hour)
	_, err := resolver.Resolve(context.Background(), token)
	if apperr.KindOf(err) != apperr.KindInternal {
		t.Errorf("Expected internal error, got %v", err)
	}
}

func TestResolve_ExpiredSuspensionAllowed(t *testing.T) {
	cfg, users, resolver := setup(t)
	past := time.Now().Add(-time.Hour)
	users.Add(&models.User{ID: bobID, Username: "bob", Role: models.RoleUser, Status: models.UserStatusSuspended, SuspendedUntil: &past})

	token, _ := auth.NewToken(cfg, models.Identity{UserID: bobID}, time.Hour)
	if _, err := resolver.Resolve(context.Background(), token); err != nil {
		t.Errorf("Expired suspension should not block, got %v", err)
	}
}
