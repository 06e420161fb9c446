// internal/video/token.go
// Room access tokens for the media server, LiveKit-compatible: HS256
// JWTs carrying a "video" grant naming the room the holder may join.

package video

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type TokenIssuer struct {
	apiKey    string
	apiSecret string
	ttl       time.Duration
}

func NewTokenIssuer(apiKey, apiSecret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &TokenIssuer{apiKey: apiKey, apiSecret: apiSecret, ttl: ttl}
}

// Mint issues a join token for userID on room
func (t *TokenIssuer) Mint(userID int64, room string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(t.ttl)

	claims := jwt.MapClaims{
		"iss": t.apiKey,
		"sub": strconv.FormatInt(userID, 10),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": expires.Unix(),
		"video": map[string]interface{}{
			"room":     room,
			"roomJoin": true,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(t.apiSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign room token: %w", err)
	}

	return signed, expires, nil
}
