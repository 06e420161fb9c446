// internal/chat/models.go

package chat

import (
	"encoding/json"
	"time"
)

// Conversation is the 1:1 chat channel of a match. One conversation
// exists per match, created lazily on first open.
type Conversation struct {
	ID            int64      `json:"id" db:"id"`
	MatchID       int64      `json:"match_id" db:"match_id"`
	UserA         int64      `json:"user_a" db:"user_a"`
	UserB         int64      `json:"user_b" db:"user_b"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty" db:"last_message_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`

	// Computed fields
	PartnerID          int64    `json:"partner_id,omitempty"`
	PartnerName        string   `json:"partner_name,omitempty"`
	PartnerPhotoURL    *string  `json:"partner_photo_url,omitempty"`
	PartnerOnline      bool     `json:"partner_online"`
	UnreadCount        int      `json:"unread_count"`
	LastMessagePreview *string  `json:"last_message_preview,omitempty"`
}

// Partner returns the conversation participant that is not userID
func (c *Conversation) Partner(userID int64) int64 {
	if c.UserA == userID {
		return c.UserB
	}
	return c.UserA
}

// Involves reports whether userID participates in the conversation
func (c *Conversation) Involves(userID int64) bool {
	return c.UserA == userID || c.UserB == userID
}

// Message is a single chat message. Delivery and read state live on the
// row itself: the other participant is the only recipient.
type Message struct {
	ID             int64      `json:"id" db:"id"`
	ConversationID int64      `json:"conversation_id" db:"conversation_id"`
	SenderID       int64      `json:"sender_id" db:"sender_id"`
	Body           string     `json:"body" db:"body"`
	SourceLang     *string    `json:"source_lang,omitempty" db:"source_lang"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty" db:"delivered_at"`
	ReadAt         *time.Time `json:"read_at,omitempty" db:"read_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// TranslatedMessage pairs a message with its on-demand translation
type TranslatedMessage struct {
	MessageID      int64  `json:"message_id"`
	TargetLang     string `json:"target_lang"`
	DetectedSource string `json:"detected_source,omitempty"`
	Text           string `json:"text"`
}

// WebSocket envelope
type WSMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

type WSMessageType string

const (
	WSTypeMessage    WSMessageType = "message"
	WSTypeTyping     WSMessageType = "typing"
	WSTypeStopTyping WSMessageType = "stop_typing"
	WSTypeRead       WSMessageType = "read"
	WSTypeMatch      WSMessageType = "match"
	WSTypePresence   WSMessageType = "presence"
	WSTypeError      WSMessageType = "error"
)

// Request DTOs
type OpenConversationRequest struct {
	MatchID int64 `json:"match_id" validate:"required"`
}

type SendMessageRequest struct {
	ConversationID int64  `json:"conversation_id" validate:"required"`
	Body           string `json:"body" validate:"required,max=4000"`
}

type TypingEvent struct {
	ConversationID int64 `json:"conversation_id"`
}

type ReadEvent struct {
	ConversationID int64 `json:"conversation_id"`
}

type PresenceEvent struct {
	UserID int64  `json:"user_id"`
	Status string `json:"status"`
}
