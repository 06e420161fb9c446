// internal/billing/models.go

package billing

import "time"

// Plans
const (
	PlanFree     = "free"
	PlanPremium  = "premium"
	PlanPlatinum = "platinum"
)

// Subscription statuses, mirroring Stripe's
const (
	StatusActive   = "active"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
)

// Subscription is the billing state of one user. At most one active
// subscription exists per user.
type Subscription struct {
	ID                   int64      `json:"id" db:"id"`
	UserID               int64      `json:"user_id" db:"user_id"`
	Plan                 string     `json:"plan" db:"plan"`
	Status               string     `json:"status" db:"status"`
	StripeCustomerID     string     `json:"-" db:"stripe_customer_id"`
	StripeSubscriptionID string     `json:"-" db:"stripe_subscription_id"`
	CurrentPeriodEnd     *time.Time `json:"current_period_end,omitempty" db:"current_period_end"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}

// Entitlement summarizes what a user's plan grants right now
type Entitlement struct {
	Plan           string `json:"plan"`
	UnlimitedLikes bool   `json:"unlimited_likes"`
	LikesRemaining int    `json:"likes_remaining"` // meaningful only on the free plan
	CanSeeLikers   bool   `json:"can_see_likers"`
	VideoCalls     bool   `json:"video_calls"`
	RankBoost      bool   `json:"rank_boost"`
}

// Request DTOs
type CheckoutRequest struct {
	Plan string `json:"plan" validate:"required,oneof=premium platinum"`
}

type CheckoutResponse struct {
	URL string `json:"url"`
}
