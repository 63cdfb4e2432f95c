// Package auth provides password hashing and JWT session tokens for the
// first-party account system.
package auth

import (
	"context"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/kangsive/ai-chat-bot/internal/config"
	"github.com/kangsive/ai-chat-bot/internal/domain/user"
	"github.com/kangsive/ai-chat-bot/internal/utils/platformerrors"
)

var jwtLeeway = 30 * time.Second

// JWTManager issues and validates HS256 tokens whose subject is the user's
// public ID.
type JWTManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

var _ user.TokenIssuer = (*JWTManager)(nil)

func NewJWTManager(cfg *config.Config) *JWTManager {
	return &JWTManager{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.JWTIssuer,
		ttl:    cfg.JWTTokenTTL,
	}
}

func (m *JWTManager) Issue(ctx context.Context, u *user.User) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   u.PublicID,
		Issuer:    m.issuer,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeInternal,
			"unable to sign token", err, "3fef6462-b36f-4d51-b22c-98229c692611")
	}
	return token, expiresAt, nil
}

// Verify parses the token and returns the user public ID it was issued for.
func (m *JWTManager) Verify(ctx context.Context, tokenString string) (string, error) {
	unauthorized := func(err error) error {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeUnauthorized,
			"invalid or expired token", err, "4b1ada88-82e8-422c-91ba-dffbd3adcae4")
	}

	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", unauthorized(nil)
	}

	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(jwtLeeway),
	)
	if err != nil || !parsed.Valid {
		return "", unauthorized(err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", unauthorized(nil)
	}
	return claims.Subject, nil
}
