// internal/billing/entitlements.go
// Plan entitlements. The free daily like budget lives in Redis with a
// TTL to the next UTC midnight, so every counter resets at the same
// moment worldwide.

package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type EntitlementService struct {
	repo           Repository
	redis          *redis.Client
	freeDailyLikes int
}

func NewEntitlementService(repo Repository, redisClient *redis.Client, freeDailyLikes int) *EntitlementService {
	if freeDailyLikes <= 0 {
		freeDailyLikes = 25
	}
	return &EntitlementService{
		repo:           repo,
		redis:          redisClient,
		freeDailyLikes: freeDailyLikes,
	}
}

// ConsumeLike spends one unit of the daily budget. Paid plans have no
// budget to spend; they are always allowed.
func (e *EntitlementService) ConsumeLike(ctx context.Context, userID int64) (bool, int, error) {
	plan, err := e.repo.GetActivePlan(ctx, userID)
	if err != nil {
		return false, 0, err
	}
	if plan != PlanFree {
		return true, -1, nil
	}

	key := likeBudgetKey(userID, time.Now().UTC())
	used, err := e.redis.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to consume like: %w", err)
	}
	if used == 1 {
		e.redis.ExpireAt(ctx, key, nextUTCMidnight(time.Now().UTC()))
	}

	if used > int64(e.freeDailyLikes) {
		// Went over; undo the increment so the counter stays honest
		e.redis.Decr(ctx, key)
		return false, 0, nil
	}

	return true, e.freeDailyLikes - int(used), nil
}

// RefundLike gives back a unit after a like turned out to be a no-op
func (e *EntitlementService) RefundLike(ctx context.Context, userID int64) error {
	plan, err := e.repo.GetActivePlan(ctx, userID)
	if err != nil {
		return err
	}
	if plan != PlanFree {
		return nil
	}

	key := likeBudgetKey(userID, time.Now().UTC())
	used, err := e.redis.Get(ctx, key).Int64()
	if err != nil || used <= 0 {
		return nil
	}
	return e.redis.Decr(ctx, key).Err()
}

func (e *EntitlementService) CanSeeLikers(ctx context.Context, userID int64) (bool, error) {
	plan, err := e.repo.GetActivePlan(ctx, userID)
	if err != nil {
		return false, err
	}
	return plan == PlanPremium || plan == PlanPlatinum, nil
}

func (e *EntitlementService) CanVideoCall(ctx context.Context, userID int64) (bool, error) {
	plan, err := e.repo.GetActivePlan(ctx, userID)
	if err != nil {
		return false, err
	}
	return plan == PlanPlatinum, nil
}

// Current returns the full entitlement picture for display
func (e *EntitlementService) Current(ctx context.Context, userID int64) (*Entitlement, error) {
	plan, err := e.repo.GetActivePlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	ent := &Entitlement{
		Plan:           plan,
		UnlimitedLikes: plan != PlanFree,
		CanSeeLikers:   plan == PlanPremium || plan == PlanPlatinum,
		VideoCalls:     plan == PlanPlatinum,
		RankBoost:      plan == PlanPlatinum,
	}

	if plan == PlanFree {
		key := likeBudgetKey(userID, time.Now().UTC())
		used, err := e.redis.Get(ctx, key).Int()
		if err != nil && err != redis.Nil {
			return nil, fmt.Errorf("failed to read like budget: %w", err)
		}
		remaining := e.freeDailyLikes - used
		if remaining < 0 {
			remaining = 0
		}
		ent.LikesRemaining = remaining
	} else {
		ent.LikesRemaining = -1
	}

	return ent, nil
}

func likeBudgetKey(userID int64, now time.Time) string {
	return fmt.Sprintf("likes:%d:%s", userID, now.Format("2006-01-02"))
}

func nextUTCMidnight(now time.Time) time.Time {
	next := now.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, time.UTC)
}
