// internal/profile/models.go

package profile

import (
	"time"

	"github.com/lib/pq"
)

// Education levels accepted in profiles and preferences
const (
	EducationHighSchool = "high_school"
	EducationBachelor   = "bachelor"
	EducationMaster     = "master"
	EducationDoctorate  = "doctorate"
	EducationOther      = "other"
)

// Profile is the dating profile attached to a user account
type Profile struct {
	UserID      int64          `json:"user_id" db:"user_id"`
	DisplayName string         `json:"display_name" db:"display_name"`
	Bio         *string        `json:"bio,omitempty" db:"bio"`
	BirthDate   time.Time      `json:"birth_date" db:"birth_date"`
	Gender      string         `json:"gender" db:"gender"`
	Country     string         `json:"country" db:"country"` // ISO 3166-1 alpha-2
	City        *string        `json:"city,omitempty" db:"city"`
	Education   *string        `json:"education,omitempty" db:"education"`
	Interests   pq.StringArray `json:"interests" db:"interests"`
	Languages   pq.StringArray `json:"languages" db:"languages"` // BCP 47 tags

	// Partner preferences
	PreferredGender    *string        `json:"preferred_gender,omitempty" db:"preferred_gender"`
	PreferredMinAge    int            `json:"preferred_min_age" db:"preferred_min_age"`
	PreferredMaxAge    int            `json:"preferred_max_age" db:"preferred_max_age"`
	PreferredCountries pq.StringArray `json:"preferred_countries" db:"preferred_countries"`
	PreferredEducation *string        `json:"preferred_education,omitempty" db:"preferred_education"`

	IsVerified bool      `json:"is_verified" db:"is_verified"`
	LastActive time.Time `json:"last_active" db:"last_active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`

	// Loaded separately
	Photos []*Photo `json:"photos,omitempty"`
}

// Age derives the age from the birth date
func (p *Profile) Age(now time.Time) int {
	age := now.Year() - p.BirthDate.Year()
	if now.YearDay() < p.BirthDate.YearDay() {
		age--
	}
	return age
}

// Photo is an uploaded profile photo
type Photo struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	URL       string    `json:"url" db:"url"`
	Position  int       `json:"position" db:"position"`
	IsPrimary bool      `json:"is_primary" db:"is_primary"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UpdateProfileRequest is the setup/update payload
type UpdateProfileRequest struct {
	DisplayName string   `json:"display_name" validate:"required,min=2,max=50"`
	Bio         string   `json:"bio,omitempty" validate:"omitempty,max=500"`
	BirthDate   string   `json:"birth_date" validate:"required"` // YYYY-MM-DD
	Gender      string   `json:"gender" validate:"required,oneof=male female non_binary other"`
	Country     string   `json:"country" validate:"required,iso3166_1_alpha2"`
	City        string   `json:"city,omitempty" validate:"omitempty,max=100"`
	Education   string   `json:"education,omitempty" validate:"omitempty,oneof=high_school bachelor master doctorate other"`
	Interests   []string `json:"interests,omitempty" validate:"omitempty,max=10,dive,min=2,max=30"`
	Languages   []string `json:"languages,omitempty" validate:"omitempty,max=10,dive,bcp47_language_tag"`
}

// UpdatePreferencesRequest updates partner preferences
type UpdatePreferencesRequest struct {
	PreferredGender    string   `json:"preferred_gender,omitempty" validate:"omitempty,oneof=male female non_binary other any"`
	PreferredMinAge    int      `json:"preferred_min_age" validate:"required,min=18,max=100"`
	PreferredMaxAge    int      `json:"preferred_max_age" validate:"required,min=18,max=100,gtefield=PreferredMinAge"`
	PreferredCountries []string `json:"preferred_countries,omitempty" validate:"omitempty,max=20,dive,iso3166_1_alpha2"`
	PreferredEducation string   `json:"preferred_education,omitempty" validate:"omitempty,oneof=high_school bachelor master doctorate other"`
}

// Completion summarizes how filled-in a profile is
type Completion struct {
	Score   float64  `json:"score"` // 0..1
	Missing []string `json:"missing,omitempty"`
}
