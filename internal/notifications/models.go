// internal/notifications/models.go

package notifications

import (
	"encoding/json"
	"time"
)

// Notification types
const (
	TypeMatch         = "match"
	TypeLike          = "like"
	TypeMessage       = "message"
	TypeCall          = "call"
	TypeAccountStatus = "account_status"
	TypeVerification  = "verification"
)

// Notification is an inbox entry, kept regardless of whether a push
// was delivered.
type Notification struct {
	ID        int64           `json:"id" db:"id"`
	UserID    int64           `json:"user_id" db:"user_id"`
	Type      string          `json:"type" db:"type"`
	Title     string          `json:"title" db:"title"`
	Body      string          `json:"body" db:"body"`
	Data      json.RawMessage `json:"data,omitempty" db:"data"`
	ReadAt    *time.Time      `json:"read_at,omitempty" db:"read_at"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// DeviceToken is one registered push target
type DeviceToken struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	Platform  string    `json:"platform" db:"platform"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Preferences control which event types reach the user's devices.
// The inbox always records everything.
type Preferences struct {
	UserID       int64 `json:"user_id" db:"user_id"`
	PushMatches  bool  `json:"push_matches" db:"push_matches"`
	PushLikes    bool  `json:"push_likes" db:"push_likes"`
	PushMessages bool  `json:"push_messages" db:"push_messages"`
	PushCalls    bool  `json:"push_calls" db:"push_calls"`
	EmailDigests bool  `json:"email_digests" db:"email_digests"`
}

func DefaultPreferences(userID int64) *Preferences {
	return &Preferences{
		UserID:       userID,
		PushMatches:  true,
		PushLikes:    true,
		PushMessages: true,
		PushCalls:    true,
		EmailDigests: true,
	}
}

// Outbound payloads

type PushNotification struct {
	Tokens []string
	Title  string
	Body   string
	Data   map[string]string
}

type EmailNotification struct {
	To      string
	Subject string
	Body    string
	HTML    string
}

type SMSNotification struct {
	To   string
	Body string
}

// Request DTOs
type RegisterDeviceRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required,oneof=ios android web"`
}

type UpdatePreferencesRequest struct {
	PushMatches  *bool `json:"push_matches,omitempty"`
	PushLikes    *bool `json:"push_likes,omitempty"`
	PushMessages *bool `json:"push_messages,omitempty"`
	PushCalls    *bool `json:"push_calls,omitempty"`
	EmailDigests *bool `json:"email_digests,omitempty"`
}
