// internal/translation/service.go
// Message translation backed by the Google Translate API, with a
// Redis cache in front so repeated requests for the same text are
// free. Cache keys hash the text, so message content never appears
// in Redis keys.

package translation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/api/option"
	translate "google.golang.org/api/translate/v2"
)

var (
	ErrEmptyText       = errors.New("nothing to translate")
	ErrMissingLanguage = errors.New("target language is required")
)

var (
	translationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "amoria_translations_total",
		Help: "Translation requests served",
	})
	translationCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "amoria_translation_cache_hits_total",
		Help: "Translation requests answered from cache",
	})
)

const maxTextLength = 4000

type Service interface {
	// Translate returns text in target. Empty source means
	// auto-detect; the detected language comes back with the result.
	Translate(ctx context.Context, text, source, target string) (translated, detectedSource string, err error)
}

type cached struct {
	Text     string `json:"text"`
	Detected string `json:"detected,omitempty"`
}

type googleService struct {
	api      *translate.Service
	redis    *redis.Client
	cacheTTL time.Duration
}

func NewGoogleService(ctx context.Context, apiKey string, redisClient *redis.Client, cacheTTL time.Duration) (Service, error) {
	if apiKey == "" {
		return nil, errors.New("translate API key not configured")
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * 24 * time.Hour
	}

	api, err := translate.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create translate client: %w", err)
	}

	return &googleService{api: api, redis: redisClient, cacheTTL: cacheTTL}, nil
}

func (s *googleService) Translate(ctx context.Context, text, source, target string) (string, string, error) {
	if text == "" {
		return "", "", ErrEmptyText
	}
	if target == "" {
		return "", "", ErrMissingLanguage
	}
	text = truncate(text, maxTextLength)

	key := cacheKey(text, source, target)
	if hit, ok := s.fromCache(ctx, key); ok {
		translationCacheHits.Inc()
		return hit.Text, hit.Detected, nil
	}

	call := s.api.Translations.List([]string{text}, target).Format("text")
	if source != "" {
		call = call.Source(source)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return "", "", fmt.Errorf("translation failed: %w", err)
	}
	if len(resp.Translations) == 0 {
		return "", "", errors.New("translation returned no result")
	}
	translationsTotal.Inc()

	result := cached{
		Text:     resp.Translations[0].TranslatedText,
		Detected: resp.Translations[0].DetectedSourceLanguage,
	}
	s.toCache(ctx, key, result)

	return result.Text, result.Detected, nil
}

func (s *googleService) fromCache(ctx context.Context, key string) (cached, bool) {
	raw, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return cached{}, false
	}

	var hit cached
	if err := json.Unmarshal(raw, &hit); err != nil {
		return cached{}, false
	}
	return hit, true
}

func (s *googleService) toCache(ctx context.Context, key string, result cached) {
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		log.Printf("translation: cache write: %v", err)
	}
}

// truncate cuts text to at most limit bytes without splitting a
// multi-byte rune, backing off to the previous rune boundary.
func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}

func cacheKey(text, source, target string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("translate:%s:%s:%s", hex.EncodeToString(sum[:]), source, target)
}

// NoopService passes text through untranslated. Used when no API key
// is configured, so chat keeps working in development.
type NoopService struct{}

func (NoopService) Translate(ctx context.Context, text, source, target string) (string, string, error) {
	if text == "" {
		return "", "", ErrEmptyText
	}
	if target == "" {
		return "", "", ErrMissingLanguage
	}
	return text, source, nil
}
