// internal/matching/models.go

package matching

import (
	"time"

	"github.com/lib/pq"
)

// Swipe directions
const (
	DirectionLike = "like"
	DirectionPass = "pass"
)

// Swipe records a single discovery decision
type Swipe struct {
	ID        int64     `json:"id" db:"id"`
	SwiperID  int64     `json:"swiper_id" db:"swiper_id"`
	TargetID  int64     `json:"target_id" db:"target_id"`
	Direction string    `json:"direction" db:"direction"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Match is a mutual pairing. Exactly one row exists per unordered pair:
// user_lo < user_hi is enforced by the schema.
type Match struct {
	ID                 int64      `json:"id" db:"id"`
	UserLo             int64      `json:"user_lo" db:"user_lo"`
	UserHi             int64      `json:"user_hi" db:"user_hi"`
	CompatibilityScore float64    `json:"compatibility_score" db:"compatibility_score"`
	IsActive           bool       `json:"is_active" db:"is_active"`
	UnmatchedBy        *int64     `json:"unmatched_by,omitempty" db:"unmatched_by"`
	UnmatchedAt        *time.Time `json:"unmatched_at,omitempty" db:"unmatched_at"`
	MatchedAt          time.Time  `json:"matched_at" db:"matched_at"`

	// Joined fields
	MatchedUser *CandidateCard `json:"matched_user,omitempty"`
}

// OtherUser returns the match participant that is not userID
func (m *Match) OtherUser(userID int64) int64 {
	if m.UserLo == userID {
		return m.UserHi
	}
	return m.UserLo
}

// Involves reports whether userID participates in the match
func (m *Match) Involves(userID int64) bool {
	return m.UserLo == userID || m.UserHi == userID
}

// CandidateProfile carries everything the scoring engine needs about a
// user. Loaded by the repository with a single joined query.
type CandidateProfile struct {
	UserID      int64          `json:"user_id" db:"user_id"`
	DisplayName string         `json:"display_name" db:"display_name"`
	BirthDate   time.Time      `json:"birth_date" db:"birth_date"`
	Gender      string         `json:"gender" db:"gender"`
	Country     string         `json:"country" db:"country"`
	City        *string        `json:"city,omitempty" db:"city"`
	Bio         *string        `json:"bio,omitempty" db:"bio"`
	PhotoURL    *string        `json:"photo_url,omitempty" db:"photo_url"`
	Education   *string        `json:"education,omitempty" db:"education"`
	Interests   pq.StringArray `json:"interests" db:"interests"`
	Languages   pq.StringArray `json:"languages" db:"languages"`

	PreferredGender    *string        `json:"preferred_gender,omitempty" db:"preferred_gender"`
	PreferredMinAge    int            `json:"preferred_min_age" db:"preferred_min_age"`
	PreferredMaxAge    int            `json:"preferred_max_age" db:"preferred_max_age"`
	PreferredCountries pq.StringArray `json:"preferred_countries" db:"preferred_countries"`
	PreferredEducation *string        `json:"preferred_education,omitempty" db:"preferred_education"`

	IsVerified bool      `json:"is_verified" db:"is_verified"`
	LastActive time.Time `json:"last_active" db:"last_active"`
	Plan       string    `json:"plan" db:"plan"`
}

// Age derives the age from the birth date
func (c *CandidateProfile) Age(now time.Time) int {
	age := now.Year() - c.BirthDate.Year()
	if now.YearDay() < c.BirthDate.YearDay() {
		age--
	}
	return age
}

// CandidateCard is the public slice of a candidate shown in the feed
type CandidateCard struct {
	UserID      int64    `json:"user_id"`
	DisplayName string   `json:"display_name"`
	Age         int      `json:"age"`
	Country     string   `json:"country"`
	City        *string  `json:"city,omitempty"`
	Bio         *string  `json:"bio,omitempty"`
	PhotoURL    *string  `json:"photo_url,omitempty"`
	Interests   []string `json:"interests,omitempty"`
	Languages   []string `json:"languages,omitempty"`
	IsVerified  bool     `json:"is_verified"`
}

// ScoredCandidate is a feed entry: card + compatibility breakdown
type ScoredCandidate struct {
	Card    *CandidateCard `json:"card"`
	Score   float64        `json:"score"` // 0..100
	Factors *ScoreFactors  `json:"factors"`
	Reason  string         `json:"reason,omitempty"`
}

// SwipeRequest is the swipe payload
type SwipeRequest struct {
	TargetID  int64  `json:"target_id" validate:"required"`
	Direction string `json:"direction" validate:"required,oneof=like pass"`
}

// SwipeResult tells the client whether the swipe produced a match
type SwipeResult struct {
	Matched bool   `json:"matched"`
	Match   *Match `json:"match,omitempty"`
}

// Liker is an entry in the premium who-liked-me list
type Liker struct {
	Card    *CandidateCard `json:"card"`
	LikedAt time.Time      `json:"liked_at"`
}
