// cmd/api/migrations.go
// Schema migrations, applied at startup. Statements are idempotent so
// restarting against an existing database is safe.

package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email VARCHAR(255) UNIQUE,
			phone VARCHAR(20) UNIQUE,
			username VARCHAR(100) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'user',
			status VARCHAR(30) NOT NULL DEFAULT 'active',
			status_until TIMESTAMPTZ,
			status_reason TEXT,
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			is_profile_complete BOOLEAN NOT NULL DEFAULT FALSE,
			last_active TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			refresh_token VARCHAR(512) UNIQUE NOT NULL,
			device_info TEXT,
			ip_address VARCHAR(45),
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id)`,

		`CREATE TABLE IF NOT EXISTS profiles (
			user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			display_name VARCHAR(100) NOT NULL,
			bio TEXT,
			birth_date DATE NOT NULL,
			gender VARCHAR(20) NOT NULL,
			country CHAR(2) NOT NULL,
			city VARCHAR(100),
			education VARCHAR(50),
			interests TEXT[] NOT NULL DEFAULT '{}',
			languages TEXT[] NOT NULL DEFAULT '{}',
			preferred_gender VARCHAR(20),
			preferred_min_age INT NOT NULL DEFAULT 18,
			preferred_max_age INT NOT NULL DEFAULT 99,
			preferred_countries TEXT[] NOT NULL DEFAULT '{}',
			preferred_education VARCHAR(50),
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			last_active TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_country ON profiles(country)`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_last_active ON profiles(last_active DESC)`,

		`CREATE TABLE IF NOT EXISTS profile_photos (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			url TEXT NOT NULL,
			position INT NOT NULL DEFAULT 0,
			is_primary BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_profile_photos_user ON profile_photos(user_id)`,

		`CREATE TABLE IF NOT EXISTS swipes (
			id BIGSERIAL PRIMARY KEY,
			swiper_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			target_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			direction VARCHAR(10) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (swiper_id, target_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_swipes_target ON swipes(target_id, direction)`,

		`CREATE TABLE IF NOT EXISTS matches (
			id BIGSERIAL PRIMARY KEY,
			user_lo BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			user_hi BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			compatibility_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			unmatched_by BIGINT,
			unmatched_at TIMESTAMPTZ,
			matched_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_lo, user_hi),
			CHECK (user_lo < user_hi)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_user_lo ON matches(user_lo)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_user_hi ON matches(user_hi)`,

		`CREATE TABLE IF NOT EXISTS conversations (
			id BIGSERIAL PRIMARY KEY,
			match_id BIGINT UNIQUE NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
			user_a BIGINT NOT NULL,
			user_b BIGINT NOT NULL,
			last_message_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS messages (
			id BIGSERIAL PRIMARY KEY,
			conversation_id BIGINT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			sender_id BIGINT NOT NULL,
			body TEXT NOT NULL,
			source_lang VARCHAR(35),
			delivered_at TIMESTAMPTZ,
			read_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_undelivered ON messages(conversation_id) WHERE delivered_at IS NULL`,

		`CREATE TABLE IF NOT EXISTS reports (
			id BIGSERIAL PRIMARY KEY,
			reporter_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			reported_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			category VARCHAR(40) NOT NULL,
			details TEXT,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			reviewed_by BIGINT,
			reviewed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_reported ON reports(reported_id, category, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status, created_at)`,

		`CREATE TABLE IF NOT EXISTS blocks (
			id BIGSERIAL PRIMARY KEY,
			blocker_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			blocked_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (blocker_id, blocked_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_blocked ON blocks(blocked_id)`,

		`CREATE TABLE IF NOT EXISTS moderation_actions (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			action VARCHAR(30) NOT NULL,
			category VARCHAR(40),
			report_count INT NOT NULL DEFAULT 0,
			reason TEXT,
			until TIMESTAMPTZ,
			created_by BIGINT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_moderation_actions_user ON moderation_actions(user_id, created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS subscriptions (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			plan VARCHAR(20) NOT NULL,
			status VARCHAR(20) NOT NULL,
			stripe_customer_id VARCHAR(255) NOT NULL DEFAULT '',
			stripe_subscription_id VARCHAR(255) NOT NULL DEFAULT '',
			current_period_end TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_stripe ON subscriptions(stripe_subscription_id)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			type VARCHAR(30) NOT NULL,
			title VARCHAR(255) NOT NULL,
			body TEXT NOT NULL,
			data JSONB NOT NULL DEFAULT '{}',
			read_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS device_tokens (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			token TEXT UNIQUE NOT NULL,
			platform VARCHAR(10) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_device_tokens_user ON device_tokens(user_id)`,

		`CREATE TABLE IF NOT EXISTS notification_preferences (
			user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			push_matches BOOLEAN NOT NULL DEFAULT TRUE,
			push_likes BOOLEAN NOT NULL DEFAULT TRUE,
			push_messages BOOLEAN NOT NULL DEFAULT TRUE,
			push_calls BOOLEAN NOT NULL DEFAULT TRUE,
			email_digests BOOLEAN NOT NULL DEFAULT FALSE
		)`,

		`CREATE TABLE IF NOT EXISTS video_calls (
			id BIGSERIAL PRIMARY KEY,
			match_id BIGINT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
			caller_id BIGINT NOT NULL,
			callee_id BIGINT NOT NULL,
			room VARCHAR(64) NOT NULL,
			status VARCHAR(15) NOT NULL DEFAULT 'ringing',
			started_at TIMESTAMPTZ,
			ended_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_video_calls_match ON video_calls(match_id, created_at DESC)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}

	return nil
}
