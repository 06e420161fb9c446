// internal/admin/models.go

package admin

import "time"

// Stats is the back-office dashboard snapshot
type Stats struct {
	TotalUsers          int64 `json:"total_users"`
	ActiveUsers         int64 `json:"active_users"`
	NewUsersToday       int64 `json:"new_users_today"`
	OnlineNow           int   `json:"online_now"`
	TotalMatches        int64 `json:"total_matches"`
	MatchesToday        int64 `json:"matches_today"`
	MessagesToday       int64 `json:"messages_today"`
	PendingReports      int64 `json:"pending_reports"`
	ActiveSubscriptions int64 `json:"active_subscriptions"`
	BannedUsers         int64 `json:"banned_users"`
}

// UserSummary is one row of the admin user list
type UserSummary struct {
	ID          int64      `json:"id" db:"id"`
	Username    string     `json:"username" db:"username"`
	Email       *string    `json:"email,omitempty" db:"email"`
	Phone       *string    `json:"phone,omitempty" db:"phone"`
	DisplayName *string    `json:"display_name,omitempty" db:"display_name"`
	Status      string     `json:"status" db:"status"`
	StatusUntil *time.Time `json:"status_until,omitempty" db:"status_until"`
	IsVerified  bool       `json:"is_verified" db:"is_verified"`
	Plan        string     `json:"plan" db:"plan"`
	LastActive  time.Time  `json:"last_active" db:"last_active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// Request DTOs
type UserActionRequest struct {
	Action string `json:"action" validate:"required,oneof=warning review temp_ban_7d temp_ban_30d permanent_ban"`
	Reason string `json:"reason" validate:"max=1000"`
}

type ReviewReportRequest struct {
	Status string `json:"status" validate:"required,oneof=reviewed dismissed"`
}
