// internal/matching/scoring_test.go

package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

// birthDateForAge returns a birth date making someone exactly age years
// old at testNow.
func birthDateForAge(age int) time.Time {
	return testNow.AddDate(-age, 0, -1)
}

func perfectPair() (*CandidateProfile, *CandidateProfile) {
	a := &CandidateProfile{
		UserID:          1,
		BirthDate:       birthDateForAge(28),
		Gender:          "female",
		Country:         "BR",
		Education:       strPtr(EducationBachelor),
		Interests:       []string{"travel", "music"},
		Languages:       []string{"en", "pt"},
		PreferredMinAge: 25,
		PreferredMaxAge: 35,
		LastActive:      testNow.Add(-time.Hour),
	}
	b := &CandidateProfile{
		UserID:          2,
		BirthDate:       birthDateForAge(30),
		Gender:          "male",
		Country:         "BR",
		Education:       strPtr(EducationBachelor),
		Interests:       []string{"travel", "music"},
		Languages:       []string{"en"},
		PreferredMinAge: 25,
		PreferredMaxAge: 35,
		LastActive:      testNow.Add(-2 * time.Hour),
	}
	return a, b
}

func TestCompatibilityPerfectPair(t *testing.T) {
	engine := NewEngine()
	a, b := perfectPair()

	score, factors := engine.Compatibility(a, b, testNow)

	assert.InDelta(t, 100.0, score, 0.001)
	assert.Equal(t, 1.0, factors.AgeFit)
	assert.Equal(t, 1.0, factors.SharedInterests)
	assert.Equal(t, 1.0, factors.SharedLanguages)
	assert.Equal(t, 1.0, factors.RecentlyActive)
}

func TestCompatibilityIsSymmetric(t *testing.T) {
	engine := NewEngine()
	a, b := perfectPair()
	// Make the pairing asymmetric: b is outside a's preferred range
	a.PreferredMaxAge = 28

	ab, _ := engine.Compatibility(a, b, testNow)
	ba, _ := engine.Compatibility(b, a, testNow)

	assert.InDelta(t, ab, ba, 0.001)

	// And it really is the mean of the two directional scores
	dAB, _ := engine.Directional(a, b, testNow)
	dBA, _ := engine.Directional(b, a, testNow)
	assert.InDelta(t, (dAB+dBA)/2, ab, 0.001)
}

func TestAgeFitDecay(t *testing.T) {
	seeker := &CandidateProfile{PreferredMinAge: 25, PreferredMaxAge: 30}

	tests := []struct {
		name string
		age  int
		want float64
	}{
		{"inside range", 27, 1.0},
		{"at max", 30, 1.0},
		{"one year over", 31, 0.8},
		{"three years over", 33, 0.4},
		{"five years over", 35, 0.0},
		{"two years under", 23, 0.6},
		{"way outside clamps at zero", 50, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := &CandidateProfile{BirthDate: birthDateForAge(tt.age)}
			assert.InDelta(t, tt.want, ageFit(seeker, candidate, testNow), 0.001)
		})
	}
}

func TestAgeFitNoPreference(t *testing.T) {
	seeker := &CandidateProfile{}
	candidate := &CandidateProfile{BirthDate: birthDateForAge(60)}
	assert.Equal(t, 1.0, ageFit(seeker, candidate, testNow))
}

func TestCountryFit(t *testing.T) {
	candidate := &CandidateProfile{Country: "JP"}

	assert.Equal(t, 1.0, countryFit(&CandidateProfile{}, candidate),
		"no preference is neutral")
	assert.Equal(t, 1.0, countryFit(&CandidateProfile{PreferredCountries: []string{"KR", "JP"}}, candidate))
	assert.Equal(t, 0.0, countryFit(&CandidateProfile{PreferredCountries: []string{"US"}}, candidate))
}

func TestEducationFit(t *testing.T) {
	tests := []struct {
		name      string
		preferred *string
		education *string
		want      float64
	}{
		{"no preference", nil, strPtr(EducationHighSchool), 1.0},
		{"exact match", strPtr(EducationMaster), strPtr(EducationMaster), 1.0},
		{"adjacent level", strPtr(EducationMaster), strPtr(EducationBachelor), 0.5},
		{"adjacent above", strPtr(EducationMaster), strPtr(EducationDoctorate), 0.5},
		{"two levels apart", strPtr(EducationDoctorate), strPtr(EducationBachelor), 0.0},
		{"candidate unknown", strPtr(EducationBachelor), nil, 0.5},
		{"unranked level", strPtr("other"), strPtr(EducationBachelor), 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seeker := &CandidateProfile{PreferredEducation: tt.preferred}
			candidate := &CandidateProfile{Education: tt.education}
			assert.Equal(t, tt.want, educationFit(seeker, candidate))
		})
	}
}

func TestJaccard(t *testing.T) {
	assert.Equal(t, 0.5, jaccard(nil, []string{"a"}), "empty set is neutral")
	assert.Equal(t, 0.5, jaccard([]string{"a"}, nil), "empty set is neutral")
	assert.Equal(t, 1.0, jaccard([]string{"a", "b"}, []string{"a", "b"}))
	assert.InDelta(t, 1.0/3.0, jaccard([]string{"a", "b"}, []string{"b", "c"}), 0.001)
	assert.Equal(t, 0.0, jaccard([]string{"a"}, []string{"b"}))
}

func TestLanguageOverlap(t *testing.T) {
	assert.Equal(t, 0.5, overlap(nil, []string{"en"}), "empty set is neutral")
	assert.Equal(t, 1.0, overlap([]string{"en", "fr"}, []string{"fr"}),
		"one shared language is enough")
	assert.Equal(t, 0.0, overlap([]string{"en"}, []string{"ja"}))
}

func TestRecencyDecay(t *testing.T) {
	assert.Equal(t, 1.0, recency(testNow.Add(-time.Hour), testNow))
	assert.Equal(t, 1.0, recency(testNow.Add(-24*time.Hour), testNow))
	assert.Equal(t, 0.0, recency(testNow.Add(-30*24*time.Hour), testNow))
	assert.Equal(t, 0.0, recency(testNow.Add(-90*24*time.Hour), testNow))

	// Midway between 24h and 30d should land near 0.5
	mid := testNow.Add(-(24*time.Hour + (30*24*time.Hour-24*time.Hour)/2))
	assert.InDelta(t, 0.5, recency(mid, testNow), 0.001)
}

func TestWeightsSumToHundred(t *testing.T) {
	w := DefaultWeights
	total := w.Age + w.Country + w.Education + w.Interests + w.Languages + w.Recency
	require.Equal(t, 100.0, total)
}

func TestBuildReason(t *testing.T) {
	assert.Equal(t, "shares your interests", buildReason(&ScoreFactors{SharedInterests: 0.8}))
	assert.Equal(t, "speaks your language", buildReason(&ScoreFactors{SharedLanguages: 1.0}))
	assert.Equal(t, "recently active", buildReason(&ScoreFactors{RecentlyActive: 1.0}))
	assert.Equal(t, "", buildReason(&ScoreFactors{}))
}
