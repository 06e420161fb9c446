// internal/moderation/repository.go

package moderation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrAlreadyBlocked = errors.New("user already blocked")
)

type Repository interface {
	CreateReport(ctx context.Context, report *Report) error
	GetReport(ctx context.Context, id int64) (*Report, error)
	GetReportsByStatus(ctx context.Context, status string, limit, offset int) ([]*Report, error)
	GetReportsAgainst(ctx context.Context, userID int64) ([]*Report, error)
	UpdateReportStatus(ctx context.Context, id int64, status string, reviewerID *int64) error
	ResolveReports(ctx context.Context, reportedID int64, category, status string) error
	CountDistinctReporters(ctx context.Context, reportedID int64, category string, since time.Time) (int, error)

	CreateBlock(ctx context.Context, block *Block) error
	DeleteBlock(ctx context.Context, blockerID, blockedID int64) error
	IsBlockedEither(ctx context.Context, userA, userB int64) (bool, error)
	GetBlockedUsers(ctx context.Context, blockerID int64) ([]*Block, error)

	CreateAction(ctx context.Context, action *Action) error
	GetUserActions(ctx context.Context, userID int64) ([]*Action, error)

	GetUserStatus(ctx context.Context, userID int64) (status string, until *time.Time, err error)
	SetUserStatus(ctx context.Context, userID int64, status string, until *time.Time, reason *string) error
	ExpireBans(ctx context.Context, now time.Time) (int64, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateReport(ctx context.Context, report *Report) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO reports (reporter_id, reported_id, category, details)
		VALUES ($1, $2, $3, $4)
		RETURNING id, status, created_at
	`, report.ReporterID, report.ReportedID, report.Category, report.Details).
		Scan(&report.ID, &report.Status, &report.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetReport(ctx context.Context, id int64) (*Report, error) {
	var report Report
	err := r.db.GetContext(ctx, &report, `SELECT * FROM reports WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &report, nil
}

func (r *postgresRepository) GetReportsByStatus(ctx context.Context, status string, limit, offset int) ([]*Report, error) {
	var reports []*Report
	err := r.db.SelectContext(ctx, &reports, `
		SELECT * FROM reports
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get reports: %w", err)
	}
	return reports, nil
}

func (r *postgresRepository) GetReportsAgainst(ctx context.Context, userID int64) ([]*Report, error) {
	var reports []*Report
	err := r.db.SelectContext(ctx, &reports, `
		SELECT * FROM reports
		WHERE reported_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reports: %w", err)
	}
	return reports, nil
}

func (r *postgresRepository) UpdateReportStatus(ctx context.Context, id int64, status string, reviewerID *int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE reports SET status = $2, reviewed_by = $3, reviewed_at = NOW()
		WHERE id = $1
	`, id, status, reviewerID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrReportNotFound
	}
	return nil
}

// ResolveReports closes every pending report in a category after an
// automatic escalation acted on them.
func (r *postgresRepository) ResolveReports(ctx context.Context, reportedID int64, category, status string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE reports SET status = $3, reviewed_at = NOW()
		WHERE reported_id = $1 AND category = $2 AND status = 'pending'
	`, reportedID, category, status)
	return err
}

func (r *postgresRepository) CountDistinctReporters(ctx context.Context, reportedID int64, category string, since time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(DISTINCT reporter_id) FROM reports
		WHERE reported_id = $1 AND category = $2 AND created_at >= $3
	`, reportedID, category, since)
	return count, err
}

func (r *postgresRepository) CreateBlock(ctx context.Context, block *Block) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO blocks (blocker_id, blocked_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, block.BlockerID, block.BlockedID).Scan(&block.ID, &block.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadyBlocked
		}
		return fmt.Errorf("failed to create block: %w", err)
	}
	return nil
}

func (r *postgresRepository) DeleteBlock(ctx context.Context, blockerID, blockedID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM blocks WHERE blocker_id = $1 AND blocked_id = $2`,
		blockerID, blockedID)
	return err
}

func (r *postgresRepository) IsBlockedEither(ctx context.Context, userA, userB int64) (bool, error) {
	var blocked bool
	err := r.db.GetContext(ctx, &blocked, `
		SELECT EXISTS (
			SELECT 1 FROM blocks
			WHERE (blocker_id = $1 AND blocked_id = $2)
			   OR (blocker_id = $2 AND blocked_id = $1)
		)
	`, userA, userB)
	return blocked, err
}

func (r *postgresRepository) GetBlockedUsers(ctx context.Context, blockerID int64) ([]*Block, error) {
	var blocks []*Block
	err := r.db.SelectContext(ctx, &blocks, `
		SELECT * FROM blocks WHERE blocker_id = $1 ORDER BY created_at DESC
	`, blockerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get blocks: %w", err)
	}
	return blocks, nil
}

func (r *postgresRepository) CreateAction(ctx context.Context, action *Action) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO moderation_actions (user_id, action, category, report_count, reason, until, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, action.UserID, action.Action, action.Category, action.ReportCount,
		action.Reason, action.Until, action.CreatedBy).
		Scan(&action.ID, &action.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create moderation action: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetUserActions(ctx context.Context, userID int64) ([]*Action, error) {
	var actions []*Action
	err := r.db.SelectContext(ctx, &actions, `
		SELECT * FROM moderation_actions WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get moderation actions: %w", err)
	}
	return actions, nil
}

func (r *postgresRepository) GetUserStatus(ctx context.Context, userID int64) (string, *time.Time, error) {
	row := struct {
		Status      string     `db:"status"`
		StatusUntil *time.Time `db:"status_until"`
	}{}
	err := r.db.GetContext(ctx, &row, `SELECT status, status_until FROM users WHERE id = $1`, userID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get user status: %w", err)
	}
	return row.Status, row.StatusUntil, nil
}

func (r *postgresRepository) SetUserStatus(ctx context.Context, userID int64, status string, until *time.Time, reason *string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET status = $2, status_until = $3, status_reason = $4, updated_at = NOW()
		WHERE id = $1
	`, userID, status, until, reason)
	return err
}

// ExpireBans reinstates users whose temporary ban has run out
func (r *postgresRepository) ExpireBans(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET status = 'active', status_until = NULL, status_reason = NULL, updated_at = NOW()
		WHERE status = 'banned' AND status_until IS NOT NULL AND status_until <= $1
	`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
