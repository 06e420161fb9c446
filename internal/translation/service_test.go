// internal/translation/service_test.go

package translation

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "short", truncate("short", maxTextLength), "under the limit stays untouched")

	ascii := strings.Repeat("a", maxTextLength+50)
	assert.Len(t, truncate(ascii, maxTextLength), maxTextLength)

	// "é" is two bytes; an odd limit would land mid-rune
	accented := strings.Repeat("é", 3)
	got := truncate(accented, 3)
	assert.Equal(t, "é", got)
	assert.True(t, utf8.ValidString(got))

	// Four-byte emoji across every cut position
	emoji := strings.Repeat("\U0001F600", 2)
	for limit := 1; limit < len(emoji); limit++ {
		got := truncate(emoji, limit)
		assert.True(t, utf8.ValidString(got), "limit %d", limit)
		assert.LessOrEqual(t, len(got), limit)
	}

	long := strings.Repeat("日本語テキスト", 400)
	got = truncate(long, maxTextLength)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), maxTextLength)
}

func TestCacheKeyIsStable(t *testing.T) {
	a := cacheKey("hello", "en", "fr")
	b := cacheKey("hello", "en", "fr")
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, cacheKey("hello", "en", "de"), "target language is part of the key")
	assert.NotEqual(t, a, cacheKey("hello", "", "fr"), "detected vs declared source differ")
	assert.NotEqual(t, a, cacheKey("goodbye", "en", "fr"))
}

func TestNoopServicePassesThrough(t *testing.T) {
	svc := NoopService{}

	text, detected, err := svc.Translate(context.Background(), "bonjour", "fr", "en")
	require.NoError(t, err)
	assert.Equal(t, "bonjour", text)
	assert.Equal(t, "fr", detected)
}

func TestNoopServiceValidation(t *testing.T) {
	svc := NoopService{}

	_, _, err := svc.Translate(context.Background(), "", "fr", "en")
	assert.ErrorIs(t, err, ErrEmptyText)

	_, _, err = svc.Translate(context.Background(), "bonjour", "fr", "")
	assert.ErrorIs(t, err, ErrMissingLanguage)
}
