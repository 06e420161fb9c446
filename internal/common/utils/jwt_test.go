// internal/common/utils/jwt_test.go

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	now := time.Now()
	claims := &JWTClaims{
		UserID:    42,
		Email:     "user@example.com",
		Role:      "user",
		Type:      "access",
		IssuedAt:  now.Unix(),
		NotBefore: now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
		Issuer:    "amoria",
		Subject:   "42",
	}

	token, err := GenerateJWT(claims, "test-secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := ValidateJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, "user@example.com", got.Email)
	assert.Equal(t, "user", got.Role)
	assert.Equal(t, "access", got.Type)
	assert.Equal(t, claims.ExpiresAt, got.ExpiresAt)
}

func TestValidateJWTWrongSecret(t *testing.T) {
	claims := &JWTClaims{
		UserID:    1,
		Type:      "access",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}

	token, err := GenerateJWT(claims, "right-secret")
	require.NoError(t, err)

	_, err = ValidateJWT(token, "wrong-secret")
	assert.Error(t, err)
}

func TestValidateJWTExpired(t *testing.T) {
	now := time.Now()
	claims := &JWTClaims{
		UserID:    1,
		Type:      "access",
		IssuedAt:  now.Add(-2 * time.Hour).Unix(),
		ExpiresAt: now.Add(-time.Hour).Unix(),
	}

	token, err := GenerateJWT(claims, "test-secret")
	require.NoError(t, err)

	_, err = ValidateJWT(token, "test-secret")
	assert.Error(t, err)
}

func TestValidateJWTGarbage(t *testing.T) {
	_, err := ValidateJWT("not-a-token", "test-secret")
	assert.Error(t, err)
}
