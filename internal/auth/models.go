// internal/auth/models.go
// Data structures for the authentication system.

package auth

import (
	"time"
)

// Account status values. Moderation escalation moves accounts through
// these; auth refuses sign-in for banned accounts and discovery skips
// anything that is not active.
const (
	StatusActive          = "active"
	StatusWarned          = "warned"
	StatusUnderReview     = "under_review"
	StatusBanned          = "banned"
	StatusBannedPermanent = "banned_permanent"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account. Email and phone are both nullable because
// an account needs only one of them to sign up.
type User struct {
	ID                int64      `json:"id" db:"id"`
	Email             *string    `json:"email" db:"email"`
	Phone             *string    `json:"phone" db:"phone"`
	Username          string     `json:"username" db:"username"`
	PasswordHash      string     `json:"-" db:"password_hash"`
	Role              string     `json:"role" db:"role"`
	Status            string     `json:"status" db:"status"`
	StatusUntil       *time.Time `json:"status_until,omitempty" db:"status_until"`
	StatusReason      *string    `json:"status_reason,omitempty" db:"status_reason"`
	IsVerified        bool       `json:"is_verified" db:"is_verified"`
	IsProfileComplete bool       `json:"is_profile_complete" db:"is_profile_complete"`
	LastActive        time.Time  `json:"last_active" db:"last_active"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// Banned reports whether the account is currently barred from signing in.
// A temporary ban lapses once status_until passes.
func (u *User) Banned(now time.Time) bool {
	switch u.Status {
	case StatusBannedPermanent:
		return true
	case StatusBanned:
		return u.StatusUntil == nil || now.Before(*u.StatusUntil)
	}
	return false
}

// Session represents an active refresh-token session.
// Stored server-side for multi-device support and revocation.
type Session struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	RefreshToken string    `json:"refresh_token" db:"refresh_token"`
	DeviceInfo   *string   `json:"device_info" db:"device_info"`
	IPAddress    *string   `json:"ip_address" db:"ip_address"`
	ExpiresAt    time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// SignupRequest is what the client sends to create an account
type SignupRequest struct {
	Email           *string `json:"email" validate:"required_without=Phone,omitempty,email"`
	Phone           *string `json:"phone" validate:"required_without=Email,omitempty,e164"`
	Username        string  `json:"username" validate:"required,min=3,max=30,alphanum"`
	Password        string  `json:"password" validate:"required,min=8,max=100"`
	ConfirmPassword string  `json:"confirm_password" validate:"required,eqfield=Password"`
	AcceptTerms     bool    `json:"accept_terms" validate:"required"`
}

// SigninRequest is what the client sends to sign in
type SigninRequest struct {
	Identifier string `json:"identifier" validate:"required"` // email, phone or username
	Password   string `json:"password" validate:"required"`
	DeviceInfo string `json:"device_info,omitempty"`
}

// RefreshRequest exchanges a refresh token for a new token pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// VerifyRequest confirms an email/phone verification code
type VerifyRequest struct {
	Code string `json:"code" validate:"required,min=4,max=8,numeric"`
}

// TokenPair is the issued access/refresh token pair
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponse is returned on successful signup/signin
type AuthResponse struct {
	User   *User      `json:"user"`
	Tokens *TokenPair `json:"tokens"`
}
