// internal/matching/repository.go

package matching

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
	ErrMatchNotFound   = errors.New("match not found")
	ErrProfileNotFound = errors.New("profile not found")
)

type Repository interface {
	// Swipes. RecordSwipe is idempotent and atomic: inserting a like
	// that completes a reciprocal pair creates the match row in the
	// same transaction.
	RecordSwipe(ctx context.Context, swipe *Swipe, score float64) (inserted bool, match *Match, err error)
	HasLike(ctx context.Context, swiperID, targetID int64) (bool, error)

	// Matches
	GetMatch(ctx context.Context, id int64) (*Match, error)
	GetMatchByPair(ctx context.Context, userA, userB int64) (*Match, error)
	GetUserMatches(ctx context.Context, userID int64, active bool) ([]*Match, error)
	Unmatch(ctx context.Context, match *Match) error

	// Discovery
	GetCandidateProfile(ctx context.Context, userID int64) (*CandidateProfile, error)
	FindCandidates(ctx context.Context, seeker *CandidateProfile, limit int) ([]*CandidateProfile, error)
	GetCard(ctx context.Context, userID int64) (*CandidateCard, error)
	GetLikers(ctx context.Context, userID int64) ([]*Liker, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) RecordSwipe(ctx context.Context, swipe *Swipe, score float64) (bool, *Match, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, nil, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO swipes (swiper_id, target_id, direction)
		VALUES ($1, $2, $3)
		ON CONFLICT (swiper_id, target_id) DO NOTHING
	`, swipe.SwiperID, swipe.TargetID, swipe.Direction)
	if err != nil {
		return false, nil, fmt.Errorf("failed to record swipe: %w", err)
	}

	rows, _ := result.RowsAffected()
	inserted := rows > 0

	if !inserted || swipe.Direction != DirectionLike {
		return inserted, nil, tx.Commit()
	}

	// A reciprocal like makes a mutual match
	var reciprocal bool
	err = tx.GetContext(ctx, &reciprocal, `
		SELECT EXISTS (
			SELECT 1 FROM swipes
			WHERE swiper_id = $1 AND target_id = $2 AND direction = 'like'
		)
	`, swipe.TargetID, swipe.SwiperID)
	if err != nil {
		return false, nil, err
	}

	if !reciprocal {
		return inserted, nil, tx.Commit()
	}

	lo, hi := orderPair(swipe.SwiperID, swipe.TargetID)

	var match Match
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO matches (user_lo, user_hi, compatibility_score)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_lo, user_hi) DO NOTHING
		RETURNING id, user_lo, user_hi, compatibility_score, is_active, matched_at
	`, lo, hi, score).Scan(
		&match.ID, &match.UserLo, &match.UserHi,
		&match.CompatibilityScore, &match.IsActive, &match.MatchedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		// Pair already matched before; nothing new to report
		return inserted, nil, tx.Commit()
	}
	if err != nil {
		return false, nil, fmt.Errorf("failed to create match: %w", err)
	}

	return inserted, &match, tx.Commit()
}

func (r *postgresRepository) HasLike(ctx context.Context, swiperID, targetID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM swipes
			WHERE swiper_id = $1 AND target_id = $2 AND direction = 'like'
		)
	`, swiperID, targetID)
	return exists, err
}

func (r *postgresRepository) GetMatch(ctx context.Context, id int64) (*Match, error) {
	var match Match
	err := r.db.GetContext(ctx, &match, `SELECT * FROM matches WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return &match, nil
}

func (r *postgresRepository) GetMatchByPair(ctx context.Context, userA, userB int64) (*Match, error) {
	lo, hi := orderPair(userA, userB)

	var match Match
	err := r.db.GetContext(ctx, &match,
		`SELECT * FROM matches WHERE user_lo = $1 AND user_hi = $2`, lo, hi)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return &match, nil
}

func (r *postgresRepository) GetUserMatches(ctx context.Context, userID int64, active bool) ([]*Match, error) {
	var matches []*Match
	err := r.db.SelectContext(ctx, &matches, `
		SELECT * FROM matches
		WHERE (user_lo = $1 OR user_hi = $1) AND is_active = $2
		ORDER BY matched_at DESC
	`, userID, active)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}

	for _, m := range matches {
		card, err := r.GetCard(ctx, m.OtherUser(userID))
		if err != nil {
			continue // partner may have deleted their profile
		}
		m.MatchedUser = card
	}

	return matches, nil
}

func (r *postgresRepository) Unmatch(ctx context.Context, match *Match) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE matches
		SET is_active = FALSE, unmatched_by = $2, unmatched_at = $3
		WHERE id = $1
	`, match.ID, match.UnmatchedBy, match.UnmatchedAt)
	return err
}

const candidateColumns = `
	p.user_id, p.display_name, p.birth_date, p.gender, p.country, p.city,
	p.bio, ph.url AS photo_url,
	p.education, p.interests, p.languages,
	p.preferred_gender, p.preferred_min_age, p.preferred_max_age,
	p.preferred_countries, p.preferred_education,
	u.is_verified, u.last_active,
	COALESCE(s.plan, 'free') AS plan
`

const candidateJoins = `
	FROM profiles p
	JOIN users u ON u.id = p.user_id
	LEFT JOIN subscriptions s ON s.user_id = p.user_id AND s.status = 'active'
	LEFT JOIN profile_photos ph ON ph.user_id = p.user_id AND ph.is_primary = TRUE
`

func (r *postgresRepository) GetCandidateProfile(ctx context.Context, userID int64) (*CandidateProfile, error) {
	var profile CandidateProfile
	query := fmt.Sprintf(`SELECT %s %s WHERE p.user_id = $1`, candidateColumns, candidateJoins)

	err := r.db.GetContext(ctx, &profile, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate profile: %w", err)
	}
	return &profile, nil
}

// FindCandidates applies the hard filters in SQL; ranking happens in Go.
// Excluded: self, anyone already swiped, blocked in either direction,
// accounts that are not active, and incomplete profiles.
func (r *postgresRepository) FindCandidates(ctx context.Context, seeker *CandidateProfile, limit int) ([]*CandidateProfile, error) {
	query := fmt.Sprintf(`
		SELECT %s %s
		WHERE p.user_id != $1
		  AND u.status = 'active'
		  AND u.is_profile_complete = TRUE
		  AND ($2 = '' OR p.gender = $2)
		  AND NOT EXISTS (
			SELECT 1 FROM swipes sw
			WHERE sw.swiper_id = $1 AND sw.target_id = p.user_id
		  )
		  AND NOT EXISTS (
			SELECT 1 FROM blocks b
			WHERE (b.blocker_id = $1 AND b.blocked_id = p.user_id)
			   OR (b.blocker_id = p.user_id AND b.blocked_id = $1)
		  )
		ORDER BY u.last_active DESC
		LIMIT $3
	`, candidateColumns, candidateJoins)

	gender := ""
	if seeker.PreferredGender != nil {
		gender = *seeker.PreferredGender
	}

	var candidates []*CandidateProfile
	// Over-fetch so ranking has something to choose from
	if err := r.db.SelectContext(ctx, &candidates, query, seeker.UserID, gender, limit*4); err != nil {
		return nil, fmt.Errorf("failed to find candidates: %w", err)
	}

	return candidates, nil
}

func (r *postgresRepository) GetCard(ctx context.Context, userID int64) (*CandidateCard, error) {
	row := struct {
		UserID      int64          `db:"user_id"`
		DisplayName string         `db:"display_name"`
		BirthDate   time.Time      `db:"birth_date"`
		Country     string         `db:"country"`
		City        *string        `db:"city"`
		Bio         *string        `db:"bio"`
		PhotoURL    *string        `db:"photo_url"`
		Interests   pq.StringArray `db:"interests"`
		Languages   pq.StringArray `db:"languages"`
		IsVerified  bool           `db:"is_verified"`
	}{}

	err := r.db.GetContext(ctx, &row, `
		SELECT p.user_id, p.display_name, p.birth_date, p.country, p.city,
		       p.bio, ph.url AS photo_url, p.interests, p.languages,
		       u.is_verified
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		LEFT JOIN profile_photos ph ON ph.user_id = p.user_id AND ph.is_primary = TRUE
		WHERE p.user_id = $1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	cp := CandidateProfile{BirthDate: row.BirthDate}
	return &CandidateCard{
		UserID:      row.UserID,
		DisplayName: row.DisplayName,
		Age:         cp.Age(time.Now()),
		Country:     row.Country,
		City:        row.City,
		Bio:         row.Bio,
		PhotoURL:    row.PhotoURL,
		Interests:   row.Interests,
		Languages:   row.Languages,
		IsVerified:  row.IsVerified,
	}, nil
}

// GetLikers returns users who liked userID and have not been swiped back
func (r *postgresRepository) GetLikers(ctx context.Context, userID int64) ([]*Liker, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT sw.swiper_id, sw.created_at
		FROM swipes sw
		JOIN users u ON u.id = sw.swiper_id
		WHERE sw.target_id = $1
		  AND sw.direction = 'like'
		  AND u.status = 'active'
		  AND NOT EXISTS (
			SELECT 1 FROM swipes back
			WHERE back.swiper_id = $1 AND back.target_id = sw.swiper_id
		  )
		ORDER BY sw.created_at DESC
		LIMIT 100
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get likers: %w", err)
	}
	defer rows.Close()

	var likers []*Liker
	for rows.Next() {
		var likerID int64
		var likedAt time.Time
		if err := rows.Scan(&likerID, &likedAt); err != nil {
			return nil, err
		}

		card, err := r.GetCard(ctx, likerID)
		if err != nil {
			continue
		}
		likers = append(likers, &Liker{Card: card, LikedAt: likedAt})
	}

	return likers, rows.Err()
}

func orderPair(a, b int64) (int64, int64) {
	if a < b {
		return a, b
	}
	return b, a
}
