// internal/moderation/models.go

package moderation

import "time"

// Report categories
const (
	CategoryHarassment           = "harassment"
	CategoryFakeProfile          = "fake_profile"
	CategoryInappropriateContent = "inappropriate_content"
	CategoryScam                 = "scam"
)

// Report statuses
const (
	ReportPending   = "pending"
	ReportReviewed  = "reviewed"
	ReportActioned  = "actioned"
	ReportDismissed = "dismissed"
)

// Report is a user-filed complaint against another user
type Report struct {
	ID         int64      `json:"id" db:"id"`
	ReporterID int64      `json:"reporter_id" db:"reporter_id"`
	ReportedID int64      `json:"reported_id" db:"reported_id"`
	Category   string     `json:"category" db:"category"`
	Details    *string    `json:"details,omitempty" db:"details"`
	Status     string     `json:"status" db:"status"`
	ReviewedBy *int64     `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// Block hides two users from each other entirely
type Block struct {
	ID        int64     `json:"id" db:"id"`
	BlockerID int64     `json:"blocker_id" db:"blocker_id"`
	BlockedID int64     `json:"blocked_id" db:"blocked_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Action is an applied moderation outcome, whether automatic
// (escalation) or manual (admin).
type Action struct {
	ID          int64      `json:"id" db:"id"`
	UserID      int64      `json:"user_id" db:"user_id"`
	Action      string     `json:"action" db:"action"`
	Category    *string    `json:"category,omitempty" db:"category"`
	ReportCount int        `json:"report_count" db:"report_count"`
	Reason      *string    `json:"reason,omitempty" db:"reason"`
	Until       *time.Time `json:"until,omitempty" db:"until"`
	CreatedBy   *int64     `json:"created_by,omitempty" db:"created_by"` // nil for automatic
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// Request DTOs
type ReportRequest struct {
	ReportedID int64  `json:"reported_id" validate:"required"`
	Category   string `json:"category" validate:"required,oneof=harassment fake_profile inappropriate_content scam"`
	Details    string `json:"details" validate:"max=2000"`
}

type BlockRequest struct {
	BlockedID int64 `json:"blocked_id" validate:"required"`
}
