// Package auth resolves bearer tokens issued by the identity provider into
// request identities.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/news-interactions-api/internal/apperr"
	"github.com/news-interactions-api/internal/config"
	"github.com/news-interactions-api/internal/models"
	"github.com/news-interactions-api/internal/repository"
)

// Resolver turns a bearer token into the acting identity
type Resolver interface {
	Resolve(ctx context.Context, token string) (*models.Identity, error)
}

// Claims carried by access tokens
type Claims struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTResolver verifies HS256 tokens and checks the account still may act
type JWTResolver struct {
	secret []byte
	issuer string
	users  repository.UserRepository
	now    func() time.Time
}

// NewJWTResolver creates a resolver backed by the user store
func NewJWTResolver(cfg config.AuthConfig, users repository.UserRepository) *JWTResolver {
	return &JWTResolver{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		users:  users,
		now:    time.Now,
	}
}

// Resolve validates the token signature and expiry, then loads the account.
// The stored role and username win over the claims.
func (r *JWTResolver) Resolve(ctx context.Context, tokenString string) (*models.Identity, error) {
	if tokenString == "" {
		return nil, apperr.Unauthenticated("missing bearer token")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(r.now),
	}
	if r.issuer != "" {
		opts = append(opts, jwt.WithIssuer(r.issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Unauthenticated("token expired")
		}
		return nil, apperr.Unauthenticated("invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, apperr.Unauthenticated("invalid token")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, apperr.Unauthenticated("invalid subject in token")
	}

	user, err := r.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load account")
	}
	if user == nil {
		return nil, apperr.Unauthenticated("unknown account")
	}
	if !user.CanAct(r.now()) {
		return nil, apperr.Forbidden("account is %s", user.Status)
	}

	return &models.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

// NewToken signs an access token for identity. Tokens are normally minted by
// the identity provider; this exists for operators and tests.
func NewToken(cfg config.AuthConfig, identity models.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: identity.Username,
		Role:     identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
