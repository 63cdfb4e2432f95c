package auth

import (
	"context"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kangsive/ai-chat-bot/internal/config"
	"github.com/kangsive/ai-chat-bot/internal/domain/user"
	"github.com/kangsive/ai-chat-bot/internal/utils/platformerrors"
)

func testManager(ttl time.Duration) *JWTManager {
	return NewJWTManager(&config.Config{
		JWTSecret:   "test-secret-at-least-32-bytes-long!!",
		JWTIssuer:   "chatbot-test",
		JWTTokenTTL: ttl,
	})
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	ctx := context.Background()
	manager := testManager(time.Hour)
	u := &user.User{PublicID: "user_01HZXW0AAAAAAAAAAAAAAAAAAA"}

	token, expiresAt, err := manager.Issue(ctx, u)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	subject, err := manager.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.PublicID, subject)
}

func TestVerifyRejectsEmptyAndGarbage(t *testing.T) {
	ctx := context.Background()
	manager := testManager(time.Hour)

	for _, token := range []string{"", "   ", "not.a.token"} {
		_, err := manager.Verify(ctx, token)
		require.Error(t, err)
		assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized))
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	ctx := context.Background()
	manager := testManager(time.Hour)

	token, _, err := manager.Issue(ctx, &user.User{PublicID: "user_a"})
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "AAAA"
	_, err = manager.Verify(ctx, tampered)
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	ctx := context.Background()
	token, _, err := testManager(time.Hour).Issue(ctx, &user.User{PublicID: "user_a"})
	require.NoError(t, err)

	other := NewJWTManager(&config.Config{
		JWTSecret:   "a-completely-different-signing-key!!",
		JWTIssuer:   "chatbot-test",
		JWTTokenTTL: time.Hour,
	})
	_, err = other.Verify(ctx, token)
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized))
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	ctx := context.Background()
	manager := testManager(time.Hour)

	claims := jwt.RegisteredClaims{
		Subject:   "user_a",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("test-secret-at-least-32-bytes-long!!"))
	require.NoError(t, err)

	_, err = manager.Verify(ctx, token)
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized))
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	ctx := context.Background()
	// Expired well past the validation leeway.
	manager := testManager(-2 * time.Minute)

	token, _, err := manager.Issue(ctx, &user.User{PublicID: "user_a"})
	require.NoError(t, err)

	_, err = manager.Verify(ctx, token)
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized))
}

func TestVerifyRejectsEmptySubject(t *testing.T) {
	ctx := context.Background()
	manager := testManager(time.Hour)

	token, _, err := manager.Issue(ctx, &user.User{PublicID: ""})
	require.NoError(t, err)

	_, err = manager.Verify(ctx, token)
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized))
}
