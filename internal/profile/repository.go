// internal/profile/repository.go

package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrPhotoNotFound   = errors.New("photo not found")
)

type Repository interface {
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	UpsertProfile(ctx context.Context, p *Profile) error
	UpdatePreferences(ctx context.Context, p *Profile) error
	MarkProfileComplete(ctx context.Context, userID int64, complete bool) error

	// Photos
	AddPhoto(ctx context.Context, photo *Photo) error
	GetPhotos(ctx context.Context, userID int64) ([]*Photo, error)
	GetPhoto(ctx context.Context, photoID int64) (*Photo, error)
	DeletePhoto(ctx context.Context, photoID int64) error
	SetPrimaryPhoto(ctx context.Context, userID, photoID int64) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	var p Profile
	query := `
		SELECT p.*, u.is_verified, u.last_active
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1
	`

	err := r.db.GetContext(ctx, &p, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	photos, err := r.GetPhotos(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.Photos = photos

	return &p, nil
}

func (r *postgresRepository) UpsertProfile(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO profiles (
			user_id, display_name, bio, birth_date, gender, country, city,
			education, interests, languages
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			bio = EXCLUDED.bio,
			birth_date = EXCLUDED.birth_date,
			gender = EXCLUDED.gender,
			country = EXCLUDED.country,
			city = EXCLUDED.city,
			education = EXCLUDED.education,
			interests = EXCLUDED.interests,
			languages = EXCLUDED.languages,
			updated_at = CURRENT_TIMESTAMP
		RETURNING created_at, updated_at
	`

	return r.db.QueryRowxContext(
		ctx, query,
		p.UserID, p.DisplayName, p.Bio, p.BirthDate, p.Gender, p.Country,
		p.City, p.Education, p.Interests, p.Languages,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *postgresRepository) UpdatePreferences(ctx context.Context, p *Profile) error {
	query := `
		UPDATE profiles SET
			preferred_gender = $2,
			preferred_min_age = $3,
			preferred_max_age = $4,
			preferred_countries = $5,
			preferred_education = $6,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1
	`

	result, err := r.db.ExecContext(
		ctx, query,
		p.UserID, p.PreferredGender, p.PreferredMinAge, p.PreferredMaxAge,
		p.PreferredCountries, p.PreferredEducation,
	)
	if err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrProfileNotFound
	}

	return nil
}

func (r *postgresRepository) MarkProfileComplete(ctx context.Context, userID int64, complete bool) error {
	query := `UPDATE users SET is_profile_complete = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, userID, complete)
	return err
}

func (r *postgresRepository) AddPhoto(ctx context.Context, photo *Photo) error {
	query := `
		INSERT INTO profile_photos (user_id, url, position, is_primary)
		VALUES ($1, $2,
			COALESCE((SELECT MAX(position) + 1 FROM profile_photos WHERE user_id = $1), 0),
			NOT EXISTS (SELECT 1 FROM profile_photos WHERE user_id = $1))
		RETURNING id, position, is_primary, created_at
	`

	return r.db.QueryRowxContext(ctx, query, photo.UserID, photo.URL).
		Scan(&photo.ID, &photo.Position, &photo.IsPrimary, &photo.CreatedAt)
}

func (r *postgresRepository) GetPhotos(ctx context.Context, userID int64) ([]*Photo, error) {
	var photos []*Photo
	query := `SELECT * FROM profile_photos WHERE user_id = $1 ORDER BY position`

	if err := r.db.SelectContext(ctx, &photos, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get photos: %w", err)
	}

	return photos, nil
}

func (r *postgresRepository) GetPhoto(ctx context.Context, photoID int64) (*Photo, error) {
	var photo Photo
	query := `SELECT * FROM profile_photos WHERE id = $1`

	err := r.db.GetContext(ctx, &photo, query, photoID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPhotoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}

	return &photo, nil
}

func (r *postgresRepository) DeletePhoto(ctx context.Context, photoID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM profile_photos WHERE id = $1`, photoID)
	return err
}

func (r *postgresRepository) SetPrimaryPhoto(ctx context.Context, userID, photoID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE profile_photos SET is_primary = FALSE WHERE user_id = $1`, userID); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE profile_photos SET is_primary = TRUE WHERE id = $1 AND user_id = $2`,
		photoID, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrPhotoNotFound
	}

	return tx.Commit()
}
