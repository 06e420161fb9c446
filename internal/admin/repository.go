// internal/admin/repository.go

package admin

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	GetStats(ctx context.Context) (*Stats, error)
	SearchUsers(ctx context.Context, query, status string, limit, offset int) ([]*UserSummary, error)
	GetUserSummary(ctx context.Context, userID int64) (*UserSummary, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	queries := []struct {
		dest  *int64
		query string
	}{
		{&stats.TotalUsers, `SELECT COUNT(*) FROM users`},
		{&stats.ActiveUsers, `SELECT COUNT(*) FROM users WHERE status = 'active'`},
		{&stats.NewUsersToday, `SELECT COUNT(*) FROM users WHERE created_at >= CURRENT_DATE`},
		{&stats.TotalMatches, `SELECT COUNT(*) FROM matches WHERE is_active = TRUE`},
		{&stats.MatchesToday, `SELECT COUNT(*) FROM matches WHERE matched_at >= CURRENT_DATE`},
		{&stats.MessagesToday, `SELECT COUNT(*) FROM messages WHERE created_at >= CURRENT_DATE`},
		{&stats.PendingReports, `SELECT COUNT(*) FROM reports WHERE status = 'pending'`},
		{&stats.ActiveSubscriptions, `SELECT COUNT(*) FROM subscriptions WHERE status = 'active'`},
		{&stats.BannedUsers, `SELECT COUNT(*) FROM users WHERE status IN ('banned', 'banned_permanent')`},
	}

	for _, q := range queries {
		if err := r.db.GetContext(ctx, q.dest, q.query); err != nil {
			return nil, fmt.Errorf("failed to load stats: %w", err)
		}
	}

	return stats, nil
}

const userSummaryQuery = `
	SELECT u.id, u.username, u.email, u.phone, p.display_name,
	       u.status, u.status_until, u.is_verified,
	       COALESCE(s.plan, 'free') AS plan,
	       u.last_active, u.created_at
	FROM users u
	LEFT JOIN profiles p ON p.user_id = u.id
	LEFT JOIN subscriptions s ON s.user_id = u.id AND s.status = 'active'
`

func (r *postgresRepository) SearchUsers(ctx context.Context, query, status string, limit, offset int) ([]*UserSummary, error) {
	sql := userSummaryQuery + `
		WHERE ($1 = '' OR u.username ILIKE '%' || $1 || '%'
		       OR u.email ILIKE '%' || $1 || '%'
		       OR p.display_name ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR u.status = $2)
		ORDER BY u.created_at DESC
		LIMIT $3 OFFSET $4
	`

	var users []*UserSummary
	if err := r.db.SelectContext(ctx, &users, sql, query, status, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

func (r *postgresRepository) GetUserSummary(ctx context.Context, userID int64) (*UserSummary, error) {
	var user UserSummary
	err := r.db.GetContext(ctx, &user, userSummaryQuery+` WHERE u.id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
