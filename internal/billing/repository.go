// internal/billing/repository.go

package billing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

type Repository interface {
	GetActivePlan(ctx context.Context, userID int64) (string, error)
	GetSubscription(ctx context.Context, userID int64) (*Subscription, error)
	GetByStripeSubscription(ctx context.Context, stripeSubID string) (*Subscription, error)
	Upsert(ctx context.Context, sub *Subscription) error
	UpdateStatus(ctx context.Context, stripeSubID, status string, periodEnd *time.Time) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetActivePlan(ctx context.Context, userID int64) (string, error) {
	var plan string
	err := r.db.GetContext(ctx, &plan, `
		SELECT plan FROM subscriptions
		WHERE user_id = $1 AND status = 'active'
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return PlanFree, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get plan: %w", err)
	}
	return plan, nil
}

func (r *postgresRepository) GetSubscription(ctx context.Context, userID int64) (*Subscription, error) {
	var sub Subscription
	err := r.db.GetContext(ctx, &sub, `SELECT * FROM subscriptions WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &sub, nil
}

func (r *postgresRepository) GetByStripeSubscription(ctx context.Context, stripeSubID string) (*Subscription, error) {
	var sub Subscription
	err := r.db.GetContext(ctx, &sub,
		`SELECT * FROM subscriptions WHERE stripe_subscription_id = $1`, stripeSubID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &sub, nil
}

func (r *postgresRepository) Upsert(ctx context.Context, sub *Subscription) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO subscriptions (user_id, plan, status, stripe_customer_id, stripe_subscription_id, current_period_end)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			plan = EXCLUDED.plan,
			status = EXCLUDED.status,
			stripe_customer_id = EXCLUDED.stripe_customer_id,
			stripe_subscription_id = EXCLUDED.stripe_subscription_id,
			current_period_end = EXCLUDED.current_period_end,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, sub.UserID, sub.Plan, sub.Status, sub.StripeCustomerID,
		sub.StripeSubscriptionID, sub.CurrentPeriodEnd).
		Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, stripeSubID, status string, periodEnd *time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET status = $2, current_period_end = COALESCE($3, current_period_end), updated_at = NOW()
		WHERE stripe_subscription_id = $1
	`, stripeSubID, status, periodEnd)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}
