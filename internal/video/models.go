// internal/video/models.go

package video

import "time"

// Call statuses
const (
	CallRinging  = "ringing"
	CallActive   = "active"
	CallEnded    = "ended"
	CallDeclined = "declined"
	CallMissed   = "missed"
)

// Call is one video call between two matched users
type Call struct {
	ID        int64      `json:"id" db:"id"`
	MatchID   int64      `json:"match_id" db:"match_id"`
	CallerID  int64      `json:"caller_id" db:"caller_id"`
	CalleeID  int64      `json:"callee_id" db:"callee_id"`
	Room      string     `json:"room" db:"room"`
	Status    string     `json:"status" db:"status"`
	StartedAt *time.Time `json:"started_at,omitempty" db:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty" db:"ended_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Involves reports whether userID participates in the call
func (c *Call) Involves(userID int64) bool {
	return c.CallerID == userID || c.CalleeID == userID
}

// Other returns the participant that is not userID
func (c *Call) Other(userID int64) int64 {
	if c.CallerID == userID {
		return c.CalleeID
	}
	return c.CallerID
}

// JoinGrant is the client's ticket into the media room
type JoinGrant struct {
	Call      *Call     `json:"call"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Request DTOs
type StartCallRequest struct {
	MatchID int64 `json:"match_id" validate:"required"`
}
