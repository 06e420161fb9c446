// internal/video/token_test.go

package video

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintRoomToken(t *testing.T) {
	issuer := NewTokenIssuer("api-key", "api-secret", time.Hour)

	signed, expires, err := issuer.Mint(42, "call-abc")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 2*time.Second)

	token, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		require.IsType(t, &jwt.SigningMethodHMAC{}, token.Method)
		return []byte("api-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)

	assert.Equal(t, "api-key", claims["iss"])
	assert.Equal(t, "42", claims["sub"])

	grant, ok := claims["video"].(map[string]interface{})
	require.True(t, ok, "token must carry a video grant")
	assert.Equal(t, "call-abc", grant["room"])
	assert.Equal(t, true, grant["roomJoin"])
}

func TestMintRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("api-key", "api-secret", time.Hour)

	signed, _, err := issuer.Mint(42, "call-abc")
	require.NoError(t, err)

	_, err = jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("some-other-secret"), nil
	})
	assert.Error(t, err)
}

func TestTokenTTLDefaultsToTwoHours(t *testing.T) {
	issuer := NewTokenIssuer("api-key", "api-secret", 0)

	_, expires, err := issuer.Mint(1, "call-xyz")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), expires, 2*time.Second)
}
