// internal/video/repository.go

package video

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrCallNotFound = errors.New("call not found")

type Repository interface {
	CreateCall(ctx context.Context, call *Call) error
	GetCall(ctx context.Context, id int64) (*Call, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	GetUserCalls(ctx context.Context, userID int64, limit int) ([]*Call, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateCall(ctx context.Context, call *Call) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO video_calls (match_id, caller_id, callee_id, room, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, call.MatchID, call.CallerID, call.CalleeID, call.Room, call.Status).
		Scan(&call.ID, &call.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create call: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetCall(ctx context.Context, id int64) (*Call, error) {
	var call Call
	err := r.db.GetContext(ctx, &call, `SELECT * FROM video_calls WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCallNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get call: %w", err)
	}
	return &call, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	var query string
	switch status {
	case CallActive:
		query = `UPDATE video_calls SET status = $2, started_at = NOW() WHERE id = $1`
	case CallEnded, CallDeclined, CallMissed:
		query = `UPDATE video_calls SET status = $2, ended_at = NOW() WHERE id = $1`
	default:
		query = `UPDATE video_calls SET status = $2 WHERE id = $1`
	}

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrCallNotFound
	}
	return nil
}

func (r *postgresRepository) GetUserCalls(ctx context.Context, userID int64, limit int) ([]*Call, error) {
	var calls []*Call
	err := r.db.SelectContext(ctx, &calls, `
		SELECT * FROM video_calls
		WHERE caller_id = $1 OR callee_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get calls: %w", err)
	}
	return calls, nil
}
