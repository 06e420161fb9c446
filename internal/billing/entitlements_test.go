// internal/billing/entitlements_test.go

package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLikeBudgetKeyRollsOverAtUTCMidnight(t *testing.T) {
	beforeMidnight := time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC)
	afterMidnight := time.Date(2025, 6, 16, 0, 0, 1, 0, time.UTC)

	assert.Equal(t, "likes:42:2025-06-15", likeBudgetKey(42, beforeMidnight))
	assert.Equal(t, "likes:42:2025-06-16", likeBudgetKey(42, afterMidnight))
	assert.NotEqual(t, likeBudgetKey(42, beforeMidnight), likeBudgetKey(43, beforeMidnight),
		"budgets are per user")
}

func TestNextUTCMidnight(t *testing.T) {
	now := time.Date(2025, 6, 15, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), nextUTCMidnight(now))

	// Month boundary
	now = time.Date(2025, 6, 30, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), nextUTCMidnight(now))

	// Year boundary
	now = time.Date(2025, 12, 31, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), nextUTCMidnight(now))
}

func TestPlanForPrice(t *testing.T) {
	svc := &service{cfg: Config{
		PremiumPriceID:  "price_premium",
		PlatinumPriceID: "price_platinum",
	}}

	assert.Equal(t, PlanPremium, svc.planForPrice("price_premium"))
	assert.Equal(t, PlanPlatinum, svc.planForPrice("price_platinum"))
	assert.Equal(t, "", svc.planForPrice("price_unknown"))
}

func TestBillingConfigEnabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{SecretKey: "sk_test", WebhookSecret: "whsec"}.Enabled())
}
