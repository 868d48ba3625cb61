package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/llm-model-access/services"
)

const (
	testSecret = "test-secret"
	testIssuer = "https://accounts.example.com"
)

func strPtr(s string) *string { return &s }

func newTestValidator(t *testing.T, issuer string) *Validator {
	t.Helper()
	v, err := NewValidator(testSecret, issuer)
	require.NoError(t, err)
	return v
}

// signRaw signs arbitrary claims for negative cases Sign cannot produce.
func signRaw(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestNewValidator(t *testing.T) {
	_, err := NewValidator("", "")
	assert.ErrorIs(t, err, ErrNoSecret)

	v, err := NewValidator(testSecret, "")
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestValidator_ValidateToken(t *testing.T) {
	userID := uuid.New()

	t.Run("valid token round trip", func(t *testing.T) {
		token, err := Sign(testSecret, testIssuer, userID, "user@example.com", strPtr("pro"), time.Hour)
		require.NoError(t, err)

		claims, err := newTestValidator(t, testIssuer).ValidateToken(context.Background(), token)
		require.NoError(t, err)

		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, "user@example.com", claims.Email)
		require.NotNil(t, claims.PlanTier)
		assert.Equal(t, "pro", *claims.PlanTier)
		assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
	})

	t.Run("plan tier claim is optional", func(t *testing.T) {
		token, err := Sign(testSecret, "", userID, "", nil, time.Hour)
		require.NoError(t, err)

		claims, err := newTestValidator(t, "").ValidateToken(context.Background(), token)
		require.NoError(t, err)
		assert.Nil(t, claims.PlanTier)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := Sign(testSecret, testIssuer, userID, "", nil, -time.Hour)
		require.NoError(t, err)

		_, err = newTestValidator(t, testIssuer).ValidateToken(context.Background(), token)
		assert.Same(t, ErrTokenExpired, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := Sign(testSecret, "https://evil.example.com", userID, "", nil, time.Hour)
		require.NoError(t, err)

		_, err = newTestValidator(t, testIssuer).ValidateToken(context.Background(), token)
		assert.Same(t, ErrInvalidIssuer, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := Sign("other-secret", testIssuer, userID, "", nil, time.Hour)
		require.NoError(t, err)

		_, err = newTestValidator(t, testIssuer).ValidateToken(context.Background(), token)
		require.Error(t, err)
		assert.True(t, services.IsUnauthorizedError(err))
	})

	t.Run("unexpected signing method", func(t *testing.T) {
		token := signRaw(t, jwt.SigningMethodHS512, []byte(testSecret), Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   userID.String(),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})

		_, err := newTestValidator(t, "").ValidateToken(context.Background(), token)
		require.Error(t, err)
		assert.True(t, services.IsUnauthorizedError(err))
	})

	t.Run("missing expiry", func(t *testing.T) {
		token := signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
		})

		_, err := newTestValidator(t, "").ValidateToken(context.Background(), token)
		assert.Error(t, err)
	})

	t.Run("missing sub", func(t *testing.T) {
		token := signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})

		_, err := newTestValidator(t, "").ValidateToken(context.Background(), token)
		assert.Same(t, ErrMissingClaims, err)
	})

	t.Run("sub is not a uuid", func(t *testing.T) {
		token := signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-42",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})

		_, err := newTestValidator(t, "").ValidateToken(context.Background(), token)
		require.Error(t, err)
		assert.True(t, services.IsUnauthorizedError(err))
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := newTestValidator(t, "").ValidateToken(context.Background(), "not.a.token")
		require.Error(t, err)
		assert.True(t, services.IsUnauthorizedError(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestValidator(t, "").ValidateToken(ctx, "anything")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSign_RequiresSecret(t *testing.T) {
	_, err := Sign("", "", uuid.New(), "", nil, time.Hour)
	assert.ErrorIs(t, err, ErrNoSecret)
}
