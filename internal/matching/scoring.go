// internal/matching/scoring.go
// Compatibility scoring for the discovery feed. Pure and deterministic:
// two profiles in, a 0-100 score and its factor breakdown out.

package matching

import (
	"time"
)

// ScoreFactors is the per-factor breakdown, each in 0..1
type ScoreFactors struct {
	AgeFit           float64 `json:"age_fit"`
	CountryFit       float64 `json:"country_fit"`
	EducationFit     float64 `json:"education_fit"`
	SharedInterests  float64 `json:"shared_interests"`
	SharedLanguages  float64 `json:"shared_languages"`
	RecentlyActive   float64 `json:"recently_active"`
}

// Weights for the factors. They sum to 100 so a directional score lands
// directly on the 0-100 scale.
type Weights struct {
	Age       float64
	Country   float64
	Education float64
	Interests float64
	Languages float64
	Recency   float64
}

// DefaultWeights is the production weighting
var DefaultWeights = Weights{
	Age:       20,
	Country:   15,
	Education: 10,
	Interests: 25,
	Languages: 15,
	Recency:   15,
}

const (
	recencyFullWindow = 24 * time.Hour
	recencyZeroAfter  = 30 * 24 * time.Hour
	agePenaltyPerYear = 0.2
)

var educationRank = map[string]int{
	EducationHighSchool: 1,
	EducationBachelor:   2,
	EducationMaster:     3,
	EducationDoctorate:  4,
}

// Education levels, mirrored from the profile package to keep scoring
// free of package dependencies.
const (
	EducationHighSchool = "high_school"
	EducationBachelor   = "bachelor"
	EducationMaster     = "master"
	EducationDoctorate  = "doctorate"
)

// Engine computes compatibility scores
type Engine struct {
	weights Weights
}

func NewEngine() *Engine {
	return &Engine{weights: DefaultWeights}
}

func NewEngineWithWeights(w Weights) *Engine {
	return &Engine{weights: w}
}

// Compatibility is the symmetric 0-100 score: the mean of the two
// directional scores, so a pairing only ranks high when it works for
// both sides.
func (e *Engine) Compatibility(a, b *CandidateProfile, now time.Time) (float64, *ScoreFactors) {
	sAB, fAB := e.Directional(a, b, now)
	sBA, _ := e.Directional(b, a, now)
	return (sAB + sBA) / 2, fAB
}

// Directional scores candidate against seeker's preferences
func (e *Engine) Directional(seeker, candidate *CandidateProfile, now time.Time) (float64, *ScoreFactors) {
	factors := &ScoreFactors{
		AgeFit:          ageFit(seeker, candidate, now),
		CountryFit:      countryFit(seeker, candidate),
		EducationFit:    educationFit(seeker, candidate),
		SharedInterests: jaccard(seeker.Interests, candidate.Interests),
		SharedLanguages: overlap(seeker.Languages, candidate.Languages),
		RecentlyActive:  recency(candidate.LastActive, now),
	}

	score := factors.AgeFit*e.weights.Age +
		factors.CountryFit*e.weights.Country +
		factors.EducationFit*e.weights.Education +
		factors.SharedInterests*e.weights.Interests +
		factors.SharedLanguages*e.weights.Languages +
		factors.RecentlyActive*e.weights.Recency

	return clamp(score, 0, 100), factors
}

// ageFit is 1.0 inside the seeker's preferred range and decays by
// agePenaltyPerYear for every year outside it.
func ageFit(seeker, candidate *CandidateProfile, now time.Time) float64 {
	minAge, maxAge := seeker.PreferredMinAge, seeker.PreferredMaxAge
	if minAge == 0 && maxAge == 0 {
		return 1.0 // no preference set
	}

	age := candidate.Age(now)
	switch {
	case age >= minAge && age <= maxAge:
		return 1.0
	case age < minAge:
		return clamp(1.0-float64(minAge-age)*agePenaltyPerYear, 0, 1)
	default:
		return clamp(1.0-float64(age-maxAge)*agePenaltyPerYear, 0, 1)
	}
}

// countryFit is 1.0 when the candidate's country is in the seeker's
// preferred set, or when the seeker has no country preference.
func countryFit(seeker, candidate *CandidateProfile) float64 {
	if len(seeker.PreferredCountries) == 0 {
		return 1.0
	}
	for _, c := range seeker.PreferredCountries {
		if c == candidate.Country {
			return 1.0
		}
	}
	return 0
}

// educationFit gives full credit on an exact preference match, half
// credit for an adjacent level, nothing otherwise. Unknown levels and
// absent preferences are neutral.
func educationFit(seeker, candidate *CandidateProfile) float64 {
	if seeker.PreferredEducation == nil {
		return 1.0
	}
	if candidate.Education == nil {
		return 0.5
	}

	want, wantOK := educationRank[*seeker.PreferredEducation]
	have, haveOK := educationRank[*candidate.Education]
	if !wantOK || !haveOK {
		return 0.5 // "other" on either side
	}

	switch diff := abs(want - have); diff {
	case 0:
		return 1.0
	case 1:
		return 0.5
	default:
		return 0
	}
}

// jaccard is the Jaccard similarity coefficient over tag sets
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.5 // no signal: neutral rather than punitive
	}

	set := make(map[string]bool, len(a))
	for _, tag := range a {
		set[tag] = true
	}

	matches := 0
	for _, tag := range b {
		if set[tag] {
			matches++
		}
	}

	union := len(a) + len(b) - matches
	if union == 0 {
		return 0
	}

	return float64(matches) / float64(union)
}

// overlap is 1.0 with any shared element, else 0. Used for languages:
// one common language is enough to talk.
func overlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.5
	}

	set := make(map[string]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		if set[v] {
			return 1.0
		}
	}
	return 0
}

// recency is 1.0 inside the last 24h, then decays linearly to 0 at 30
// days.
func recency(lastActive time.Time, now time.Time) float64 {
	idle := now.Sub(lastActive)
	switch {
	case idle <= recencyFullWindow:
		return 1.0
	case idle >= recencyZeroAfter:
		return 0
	default:
		span := float64(recencyZeroAfter - recencyFullWindow)
		return 1.0 - float64(idle-recencyFullWindow)/span
	}
}

// buildReason picks the strongest factor to show the user
func buildReason(f *ScoreFactors) string {
	switch {
	case f.SharedInterests > 0.6:
		return "shares your interests"
	case f.SharedLanguages >= 1.0:
		return "speaks your language"
	case f.CountryFit >= 1.0 && f.AgeFit >= 1.0:
		return "matches your preferences"
	case f.RecentlyActive >= 1.0:
		return "recently active"
	default:
		return ""
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
