// internal/profile/service_test.go

package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeCompletion(t *testing.T) {
	bio := "hello"
	city := "Lisbon"
	edu := "bachelor"

	full := &Profile{
		DisplayName:     "Alice",
		Bio:             &bio,
		Photos:          []*Photo{{ID: 1}},
		Interests:       []string{"travel", "music", "food"},
		Languages:       []string{"en"},
		Education:       &edu,
		City:            &city,
		PreferredMinAge: 25,
	}

	c := computeCompletion(full)
	assert.Equal(t, 1.0, c.Score)
	assert.Empty(t, c.Missing)
}

func TestComputeCompletionMissingFields(t *testing.T) {
	c := computeCompletion(&Profile{DisplayName: "Bob"})

	assert.InDelta(t, 1.0/8.0, c.Score, 0.001)
	assert.Contains(t, c.Missing, "bio")
	assert.Contains(t, c.Missing, "photos")
	assert.Contains(t, c.Missing, "interests")
	assert.NotContains(t, c.Missing, "display_name")
}

func TestCompletionInterestThreshold(t *testing.T) {
	c := computeCompletion(&Profile{Interests: []string{"a", "b"}})
	assert.Contains(t, c.Missing, "interests", "two interests are not enough")

	c = computeCompletion(&Profile{Interests: []string{"a", "b", "c"}})
	assert.NotContains(t, c.Missing, "interests")
}

func TestNormalizeTags(t *testing.T) {
	got := normalizeTags([]string{" Travel ", "MUSIC", "travel", "", "  "})
	assert.Equal(t, []string{"travel", "music"}, got)
}

func TestNormalizeCountries(t *testing.T) {
	got := normalizeCountries([]string{"br", " us ", "JP"})
	assert.Equal(t, []string{"BR", "US", "JP"}, got)
}

func TestProfileAge(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	p := &Profile{BirthDate: time.Date(1995, 6, 14, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 30, p.Age(now))

	// Birthday tomorrow: still 29
	p = &Profile{BirthDate: time.Date(1995, 6, 16, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 29, p.Age(now))
}
