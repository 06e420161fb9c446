// internal/notifications/repository.go

package notifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrNotificationNotFound = errors.New("notification not found")

type Repository interface {
	CreateNotification(ctx context.Context, n *Notification) error
	GetUserNotifications(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]*Notification, error)
	MarkRead(ctx context.Context, userID, notificationID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	CountUnread(ctx context.Context, userID int64) (int, error)

	UpsertDeviceToken(ctx context.Context, token *DeviceToken) error
	DeleteDeviceToken(ctx context.Context, userID int64, token string) error
	GetDeviceTokens(ctx context.Context, userID int64) ([]string, error)

	GetPreferences(ctx context.Context, userID int64) (*Preferences, error)
	UpsertPreferences(ctx context.Context, prefs *Preferences) error

	GetDisplayName(ctx context.Context, userID int64) (string, error)

	// Maintenance
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	GetDigestRecipients(ctx context.Context) ([]*DigestRecipient, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateNotification(ctx context.Context, n *Notification) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO notifications (user_id, type, title, body, data)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, n.UserID, n.Type, n.Title, n.Body, n.Data).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetUserNotifications(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]*Notification, error) {
	query := `
		SELECT * FROM notifications
		WHERE user_id = $1
	`
	if unreadOnly {
		query += ` AND read_at IS NULL`
	}
	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	var notifications []*Notification
	if err := r.db.SelectContext(ctx, &notifications, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	return notifications, nil
}

func (r *postgresRepository) MarkRead(ctx context.Context, userID, notificationID int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET read_at = NOW()
		WHERE id = $1 AND user_id = $2 AND read_at IS NULL
	`, notificationID, userID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists,
			`SELECT EXISTS (SELECT 1 FROM notifications WHERE id = $1 AND user_id = $2)`,
			notificationID, userID); err != nil {
			return err
		}
		if !exists {
			return ErrNotificationNotFound
		}
	}
	return nil
}

func (r *postgresRepository) MarkAllRead(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read_at = NOW() WHERE user_id = $1 AND read_at IS NULL`,
		userID)
	return err
}

func (r *postgresRepository) CountUnread(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read_at IS NULL`,
		userID)
	return count, err
}

func (r *postgresRepository) UpsertDeviceToken(ctx context.Context, token *DeviceToken) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO device_tokens (user_id, token, platform)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO UPDATE SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform
		RETURNING id, created_at
	`, token.UserID, token.Token, token.Platform).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (r *postgresRepository) DeleteDeviceToken(ctx context.Context, userID int64, token string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM device_tokens WHERE user_id = $1 AND token = $2`, userID, token)
	return err
}

func (r *postgresRepository) GetDeviceTokens(ctx context.Context, userID int64) ([]string, error) {
	var tokens []string
	err := r.db.SelectContext(ctx, &tokens,
		`SELECT token FROM device_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get device tokens: %w", err)
	}
	return tokens, nil
}

func (r *postgresRepository) GetPreferences(ctx context.Context, userID int64) (*Preferences, error) {
	var prefs Preferences
	err := r.db.GetContext(ctx, &prefs,
		`SELECT * FROM notification_preferences WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultPreferences(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return &prefs, nil
}

func (r *postgresRepository) UpsertPreferences(ctx context.Context, prefs *Preferences) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notification_preferences (user_id, push_matches, push_likes, push_messages, push_calls, email_digests)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			push_matches = EXCLUDED.push_matches,
			push_likes = EXCLUDED.push_likes,
			push_messages = EXCLUDED.push_messages,
			push_calls = EXCLUDED.push_calls,
			email_digests = EXCLUDED.email_digests
	`, prefs.UserID, prefs.PushMatches, prefs.PushLikes, prefs.PushMessages, prefs.PushCalls, prefs.EmailDigests)
	if err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetDisplayName(ctx context.Context, userID int64) (string, error) {
	var name string
	err := r.db.GetContext(ctx, &name,
		`SELECT display_name FROM profiles WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "Someone", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get display name: %w", err)
	}
	return name, nil
}

func (r *postgresRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune notifications: %w", err)
	}
	return result.RowsAffected()
}

func (r *postgresRepository) GetDigestRecipients(ctx context.Context) ([]*DigestRecipient, error) {
	query := `
		SELECT u.id AS user_id, u.email,
		       COALESCE(p.display_name, u.username) AS display_name,
		       COUNT(n.id) AS unread
		FROM users u
		JOIN notification_preferences np ON np.user_id = u.id AND np.email_digests = TRUE
		JOIN notifications n ON n.user_id = u.id AND n.read_at IS NULL
		LEFT JOIN profiles p ON p.user_id = u.id
		WHERE u.email IS NOT NULL AND u.status = 'active'
		GROUP BY u.id, u.email, p.display_name, u.username
	`

	var recipients []*DigestRecipient
	if err := r.db.SelectContext(ctx, &recipients, query); err != nil {
		return nil, fmt.Errorf("failed to load digest recipients: %w", err)
	}
	return recipients, nil
}
