// internal/profile/service.go

package profile

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/amoria-app/amoria-backend/internal/common/utils"
)

const maxPhotos = 6

var (
	ErrTooManyPhotos   = errors.New("photo limit reached")
	ErrInvalidFileType = errors.New("only jpeg, png and webp images are allowed")
	ErrUnderage        = errors.New("must be at least 18 years old")
	ErrNotOwner        = errors.New("not the owner of this resource")
)

type Service interface {
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	GetPublicProfile(ctx context.Context, viewerID, userID int64) (*Profile, error)
	UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*Profile, error)
	UpdatePreferences(ctx context.Context, userID int64, req *UpdatePreferencesRequest) (*Profile, error)
	GetCompletion(ctx context.Context, userID int64) (*Completion, error)

	UploadPhoto(ctx context.Context, userID int64, file multipart.File, header *multipart.FileHeader) (*Photo, error)
	DeletePhoto(ctx context.Context, userID, photoID int64) error
	SetPrimaryPhoto(ctx context.Context, userID, photoID int64) error
}

// BlockChecker reports whether either user has blocked the other.
// Implemented by the moderation package.
type BlockChecker interface {
	IsBlockedEither(ctx context.Context, userA, userB int64) (bool, error)
}

type service struct {
	repo    Repository
	uploads UploadService
	blocks  BlockChecker
}

func NewService(repo Repository, uploads UploadService, blocks BlockChecker) Service {
	return &service{repo: repo, uploads: uploads, blocks: blocks}
}

func (s *service) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

// GetPublicProfile returns another user's profile, hidden when a block
// exists in either direction.
func (s *service) GetPublicProfile(ctx context.Context, viewerID, userID int64) (*Profile, error) {
	if viewerID != userID && s.blocks != nil {
		blocked, err := s.blocks.IsBlockedEither(ctx, viewerID, userID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, ErrProfileNotFound
		}
	}

	return s.repo.GetProfile(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*Profile, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		return nil, fmt.Errorf("invalid birth date: %w", err)
	}

	p := &Profile{
		UserID:      userID,
		DisplayName: req.DisplayName,
		BirthDate:   birthDate,
		Gender:      req.Gender,
		Country:     strings.ToUpper(req.Country),
		Interests:   normalizeTags(req.Interests),
		Languages:   normalizeTags(req.Languages),
	}
	if p.Age(time.Now()) < 18 {
		return nil, ErrUnderage
	}

	if req.Bio != "" {
		p.Bio = &req.Bio
	}
	if req.City != "" {
		p.City = &req.City
	}
	if req.Education != "" {
		p.Education = &req.Education
	}

	if err := s.repo.UpsertProfile(ctx, p); err != nil {
		return nil, err
	}

	s.refreshCompleteness(ctx, userID)

	return s.repo.GetProfile(ctx, userID)
}

func (s *service) UpdatePreferences(ctx context.Context, userID int64, req *UpdatePreferencesRequest) (*Profile, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	p := &Profile{
		UserID:             userID,
		PreferredMinAge:    req.PreferredMinAge,
		PreferredMaxAge:    req.PreferredMaxAge,
		PreferredCountries: normalizeCountries(req.PreferredCountries),
	}
	if req.PreferredGender != "" && req.PreferredGender != "any" {
		p.PreferredGender = &req.PreferredGender
	}
	if req.PreferredEducation != "" {
		p.PreferredEducation = &req.PreferredEducation
	}

	if err := s.repo.UpdatePreferences(ctx, p); err != nil {
		return nil, err
	}

	return s.repo.GetProfile(ctx, userID)
}

func (s *service) GetCompletion(ctx context.Context, userID int64) (*Completion, error) {
	p, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return computeCompletion(p), nil
}

func (s *service) UploadPhoto(ctx context.Context, userID int64, file multipart.File, header *multipart.FileHeader) (*Photo, error) {
	if !allowedImageType(header) {
		return nil, ErrInvalidFileType
	}

	existing, err := s.repo.GetPhotos(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(existing) >= maxPhotos {
		return nil, ErrTooManyPhotos
	}

	url, err := s.uploads.UploadFile(ctx, file, header, "photos")
	if err != nil {
		return nil, err
	}

	photo := &Photo{UserID: userID, URL: url}
	if err := s.repo.AddPhoto(ctx, photo); err != nil {
		// Best effort: don't leave orphaned objects behind
		s.uploads.DeleteFile(ctx, url)
		return nil, err
	}

	s.refreshCompleteness(ctx, userID)

	return photo, nil
}

func (s *service) DeletePhoto(ctx context.Context, userID, photoID int64) error {
	photo, err := s.repo.GetPhoto(ctx, photoID)
	if err != nil {
		return err
	}
	if photo.UserID != userID {
		return ErrNotOwner
	}

	if err := s.repo.DeletePhoto(ctx, photoID); err != nil {
		return err
	}

	return s.uploads.DeleteFile(ctx, photo.URL)
}

func (s *service) SetPrimaryPhoto(ctx context.Context, userID, photoID int64) error {
	return s.repo.SetPrimaryPhoto(ctx, userID, photoID)
}

// refreshCompleteness keeps users.is_profile_complete in sync so that
// discovery can filter on it cheaply.
func (s *service) refreshCompleteness(ctx context.Context, userID int64) {
	p, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return
	}
	completion := computeCompletion(p)
	s.repo.MarkProfileComplete(ctx, userID, completion.Score >= 0.7)
}

func computeCompletion(p *Profile) *Completion {
	type check struct {
		name string
		ok   bool
	}

	checks := []check{
		{"display_name", p.DisplayName != ""},
		{"bio", p.Bio != nil && *p.Bio != ""},
		{"photos", len(p.Photos) > 0},
		{"interests", len(p.Interests) >= 3},
		{"languages", len(p.Languages) >= 1},
		{"education", p.Education != nil},
		{"city", p.City != nil},
		{"preferences", p.PreferredMinAge > 0},
	}

	done := 0
	var missing []string
	for _, c := range checks {
		if c.ok {
			done++
		} else {
			missing = append(missing, c.name)
		}
	}

	return &Completion{
		Score:   float64(done) / float64(len(checks)),
		Missing: missing,
	}
}

func allowedImageType(header *multipart.FileHeader) bool {
	switch header.Header.Get("Content-Type") {
	case "image/jpeg", "image/png", "image/webp":
		return true
	}
	return false
}

// normalizeTags lowercases and trims interest tags so Jaccard matching in
// discovery compares like with like.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		norm := strings.ToLower(strings.TrimSpace(t))
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, norm)
	}
	return out
}

func normalizeCountries(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		out = append(out, strings.ToUpper(strings.TrimSpace(c)))
	}
	return out
}
