// internal/chat/repository.go

package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
)

type Repository interface {
	GetOrCreateConversation(ctx context.Context, matchID, userA, userB int64) (*Conversation, error)
	GetConversation(ctx context.Context, id int64) (*Conversation, error)
	GetConversationByMatch(ctx context.Context, matchID int64) (*Conversation, error)
	GetUserConversations(ctx context.Context, userID int64) ([]*Conversation, error)

	CreateMessage(ctx context.Context, msg *Message) error
	GetMessage(ctx context.Context, id int64) (*Message, error)
	GetMessages(ctx context.Context, conversationID int64, before time.Time, limit int) ([]*Message, error)
	MarkDelivered(ctx context.Context, conversationID, recipientID int64) error
	MarkRead(ctx context.Context, conversationID, readerID int64) (int64, error)
	CountUnread(ctx context.Context, conversationID, userID int64) (int, error)
	GetUndelivered(ctx context.Context, recipientID int64) ([]*Message, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetOrCreateConversation(ctx context.Context, matchID, userA, userB int64) (*Conversation, error) {
	var conv Conversation
	err := r.db.GetContext(ctx, &conv, `
		INSERT INTO conversations (match_id, user_a, user_b)
		VALUES ($1, $2, $3)
		ON CONFLICT (match_id) DO UPDATE SET match_id = EXCLUDED.match_id
		RETURNING id, match_id, user_a, user_b, last_message_at, created_at
	`, matchID, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("failed to open conversation: %w", err)
	}
	return &conv, nil
}

func (r *postgresRepository) GetConversation(ctx context.Context, id int64) (*Conversation, error) {
	var conv Conversation
	err := r.db.GetContext(ctx, &conv, `
		SELECT id, match_id, user_a, user_b, last_message_at, created_at
		FROM conversations WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conv, nil
}

func (r *postgresRepository) GetConversationByMatch(ctx context.Context, matchID int64) (*Conversation, error) {
	var conv Conversation
	err := r.db.GetContext(ctx, &conv, `
		SELECT id, match_id, user_a, user_b, last_message_at, created_at
		FROM conversations WHERE match_id = $1
	`, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conv, nil
}

func (r *postgresRepository) GetUserConversations(ctx context.Context, userID int64) ([]*Conversation, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT c.id, c.match_id, c.user_a, c.user_b, c.last_message_at, c.created_at,
		       p.display_name AS partner_name,
		       ph.url AS partner_photo_url,
		       lm.body AS last_message_preview,
		       (SELECT COUNT(*) FROM messages m
		        WHERE m.conversation_id = c.id
		          AND m.sender_id != $1
		          AND m.read_at IS NULL) AS unread_count
		FROM conversations c
		JOIN matches mt ON mt.id = c.match_id AND mt.is_active = TRUE
		JOIN profiles p ON p.user_id = CASE WHEN c.user_a = $1 THEN c.user_b ELSE c.user_a END
		LEFT JOIN profile_photos ph ON ph.user_id = p.user_id AND ph.is_primary = TRUE
		LEFT JOIN LATERAL (
			SELECT body FROM messages
			WHERE conversation_id = c.id
			ORDER BY created_at DESC LIMIT 1
		) lm ON TRUE
		WHERE c.user_a = $1 OR c.user_b = $1
		ORDER BY c.last_message_at DESC NULLS LAST
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*Conversation
	for rows.Next() {
		var conv Conversation
		var partnerName string
		var partnerPhoto, preview *string
		var unread int
		if err := rows.Scan(
			&conv.ID, &conv.MatchID, &conv.UserA, &conv.UserB,
			&conv.LastMessageAt, &conv.CreatedAt,
			&partnerName, &partnerPhoto, &preview, &unread,
		); err != nil {
			return nil, err
		}

		conv.PartnerID = conv.Partner(userID)
		conv.PartnerName = partnerName
		conv.PartnerPhotoURL = partnerPhoto
		conv.LastMessagePreview = preview
		conv.UnreadCount = unread
		conversations = append(conversations, &conv)
	}

	return conversations, rows.Err()
}

func (r *postgresRepository) CreateMessage(ctx context.Context, msg *Message) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO messages (conversation_id, sender_id, body, source_lang)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, msg.ConversationID, msg.SenderID, msg.Body, msg.SourceLang).
		Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE conversations SET last_message_at = $2 WHERE id = $1`,
		msg.ConversationID, msg.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *postgresRepository) GetMessage(ctx context.Context, id int64) (*Message, error) {
	var msg Message
	err := r.db.GetContext(ctx, &msg, `SELECT * FROM messages WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return &msg, nil
}

func (r *postgresRepository) GetMessages(ctx context.Context, conversationID int64, before time.Time, limit int) ([]*Message, error) {
	var messages []*Message
	err := r.db.SelectContext(ctx, &messages, `
		SELECT * FROM messages
		WHERE conversation_id = $1 AND created_at < $2
		ORDER BY created_at DESC
		LIMIT $3
	`, conversationID, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	return messages, nil
}

func (r *postgresRepository) MarkDelivered(ctx context.Context, conversationID, recipientID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE messages SET delivered_at = NOW()
		WHERE conversation_id = $1 AND sender_id != $2 AND delivered_at IS NULL
	`, conversationID, recipientID)
	return err
}

// MarkRead marks the partner's messages read and returns how many changed
func (r *postgresRepository) MarkRead(ctx context.Context, conversationID, readerID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE messages SET read_at = NOW(), delivered_at = COALESCE(delivered_at, NOW())
		WHERE conversation_id = $1 AND sender_id != $2 AND read_at IS NULL
	`, conversationID, readerID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *postgresRepository) CountUnread(ctx context.Context, conversationID, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM messages
		WHERE conversation_id = $1 AND sender_id != $2 AND read_at IS NULL
	`, conversationID, userID)
	return count, err
}

// GetUndelivered returns messages waiting for recipientID across all
// their conversations, oldest first. Sent on websocket reconnect.
func (r *postgresRepository) GetUndelivered(ctx context.Context, recipientID int64) ([]*Message, error) {
	var messages []*Message
	err := r.db.SelectContext(ctx, &messages, `
		SELECT m.* FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE (c.user_a = $1 OR c.user_b = $1)
		  AND m.sender_id != $1
		  AND m.delivered_at IS NULL
		ORDER BY m.created_at ASC
		LIMIT 500
	`, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get undelivered messages: %w", err)
	}
	return messages, nil
}
