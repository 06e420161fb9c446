// internal/matching/service.go

package matching

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"
)

var (
	ErrSelfSwipe           = errors.New("cannot swipe on yourself")
	ErrRateLimited         = errors.New("too many swipes, slow down")
	ErrLikeBudgetExhausted = errors.New("daily like limit reached")
	ErrPremiumRequired     = errors.New("premium subscription required")
	ErrNotInMatch          = errors.New("user is not part of this match")
	ErrTargetUnavailable   = errors.New("this profile is not available")
)

// Plan names, mirrored from billing to avoid the dependency
const (
	PlanFree     = "free"
	PlanPremium  = "premium"
	PlanPlatinum = "platinum"
)

// platinumBoost is added to a platinum candidate's feed rank, capped at 100
const platinumBoost = 5.0

// Entitlements answers plan questions. Implemented by the billing package.
type Entitlements interface {
	// ConsumeLike spends one unit of the daily like budget. Unlimited
	// plans always report allowed.
	ConsumeLike(ctx context.Context, userID int64) (allowed bool, remaining int, err error)
	// RefundLike returns a unit after a swipe turned out to be a no-op
	RefundLike(ctx context.Context, userID int64) error
	CanSeeLikers(ctx context.Context, userID int64) (bool, error)
}

// Notifier fans out match events. Implemented by the notifications package.
type Notifier interface {
	MatchCreated(ctx context.Context, match *Match)
	LikeReceived(ctx context.Context, targetID, likerID int64)
}

// BlockChecker reports whether either user has blocked the other.
// Implemented by the moderation package.
type BlockChecker interface {
	IsBlockedEither(ctx context.Context, userA, userB int64) (bool, error)
}

type Service interface {
	Discover(ctx context.Context, userID int64) ([]*ScoredCandidate, error)
	Swipe(ctx context.Context, userID int64, req *SwipeRequest) (*SwipeResult, error)
	GetMatches(ctx context.Context, userID int64) ([]*Match, error)
	GetMatch(ctx context.Context, userID, matchID int64) (*Match, error)
	Unmatch(ctx context.Context, userID, matchID int64) error
	GetLikers(ctx context.Context, userID int64) ([]*Liker, error)

	// ActiveMatchBetween is used by chat and video to gate access
	ActiveMatchBetween(ctx context.Context, userA, userB int64) (*Match, error)

	// StartLimiterCleanup evicts idle per-user swipe limiters until stop
	// is closed
	StartLimiterCleanup(stop <-chan struct{})
}

type Config struct {
	FeedSize        int
	SwipesPerMinute int
}

type service struct {
	repo         Repository
	engine       *Engine
	limiter      *SwipeLimiter
	entitlements Entitlements
	notifier     Notifier
	blocks       BlockChecker
	feedSize     int
}

func NewService(repo Repository, entitlements Entitlements, notifier Notifier, blocks BlockChecker, cfg Config) Service {
	if cfg.FeedSize <= 0 {
		cfg.FeedSize = 50
	}
	if cfg.SwipesPerMinute <= 0 {
		cfg.SwipesPerMinute = 30
	}
	return &service{
		repo:         repo,
		engine:       NewEngine(),
		limiter:      NewSwipeLimiter(cfg.SwipesPerMinute),
		entitlements: entitlements,
		notifier:     notifier,
		blocks:       blocks,
		feedSize:     cfg.FeedSize,
	}
}

func (s *service) StartLimiterCleanup(stop <-chan struct{}) {
	s.limiter.StartCleanup(10*time.Minute, time.Hour, stop)
}

func (s *service) Discover(ctx context.Context, userID int64) ([]*ScoredCandidate, error) {
	seeker, err := s.repo.GetCandidateProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.repo.FindCandidates(ctx, seeker, s.feedSize)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	scored := make([]*ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		score, factors := s.engine.Compatibility(seeker, c, now)

		rank := score
		if c.Plan == PlanPlatinum {
			rank = clamp(rank+platinumBoost, 0, 100)
		}

		scored = append(scored, &ScoredCandidate{
			Card:    cardFromProfile(c, now),
			Score:   rank,
			Factors: factors,
			Reason:  buildReason(factors),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > s.feedSize {
		scored = scored[:s.feedSize]
	}

	feedSize.Observe(float64(len(scored)))
	return scored, nil
}

func (s *service) Swipe(ctx context.Context, userID int64, req *SwipeRequest) (*SwipeResult, error) {
	if req.TargetID == userID {
		return nil, ErrSelfSwipe
	}
	if !s.limiter.Allow(userID) {
		return nil, ErrRateLimited
	}

	blocked, err := s.blocks.IsBlockedEither(ctx, userID, req.TargetID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrTargetUnavailable
	}

	if req.Direction == DirectionLike {
		allowed, _, err := s.entitlements.ConsumeLike(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ErrLikeBudgetExhausted
		}
	}

	score, err := s.pairScore(ctx, userID, req.TargetID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrTargetUnavailable
		}
		return nil, err
	}

	swipe := &Swipe{SwiperID: userID, TargetID: req.TargetID, Direction: req.Direction}
	inserted, match, err := s.repo.RecordSwipe(ctx, swipe, score)
	if err != nil {
		return nil, err
	}

	if !inserted {
		// Repeated swipe: no new side effects, report the prior outcome
		if req.Direction == DirectionLike {
			if err := s.entitlements.RefundLike(ctx, userID); err != nil {
				log.Printf("matching: refund like for user %d: %v", userID, err)
			}
			if existing, err := s.repo.GetMatchByPair(ctx, userID, req.TargetID); err == nil && existing.IsActive {
				return &SwipeResult{Matched: true, Match: existing}, nil
			}
		}
		return &SwipeResult{Matched: false}, nil
	}

	swipesTotal.WithLabelValues(req.Direction).Inc()

	if match != nil {
		matchesTotal.Inc()
		matchScore.Observe(match.CompatibilityScore)
		if card, err := s.repo.GetCard(ctx, req.TargetID); err == nil {
			match.MatchedUser = card
		}
		s.notifier.MatchCreated(ctx, match)
		return &SwipeResult{Matched: true, Match: match}, nil
	}

	if req.Direction == DirectionLike {
		s.notifier.LikeReceived(ctx, req.TargetID, userID)
	}

	return &SwipeResult{Matched: false}, nil
}

func (s *service) GetMatches(ctx context.Context, userID int64) ([]*Match, error) {
	return s.repo.GetUserMatches(ctx, userID, true)
}

func (s *service) GetMatch(ctx context.Context, userID, matchID int64) (*Match, error) {
	match, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Involves(userID) {
		return nil, ErrNotInMatch
	}

	if card, err := s.repo.GetCard(ctx, match.OtherUser(userID)); err == nil {
		match.MatchedUser = card
	}
	return match, nil
}

func (s *service) Unmatch(ctx context.Context, userID, matchID int64) error {
	match, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if !match.Involves(userID) {
		return ErrNotInMatch
	}
	if !match.IsActive {
		return nil // already closed, idempotent
	}

	now := time.Now()
	match.UnmatchedBy = &userID
	match.UnmatchedAt = &now
	return s.repo.Unmatch(ctx, match)
}

func (s *service) GetLikers(ctx context.Context, userID int64) ([]*Liker, error) {
	ok, err := s.entitlements.CanSeeLikers(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPremiumRequired
	}
	return s.repo.GetLikers(ctx, userID)
}

func (s *service) ActiveMatchBetween(ctx context.Context, userA, userB int64) (*Match, error) {
	match, err := s.repo.GetMatchByPair(ctx, userA, userB)
	if err != nil {
		return nil, err
	}
	if !match.IsActive {
		return nil, ErrMatchNotFound
	}
	return match, nil
}

// pairScore computes the symmetric compatibility for a potential match
func (s *service) pairScore(ctx context.Context, userA, userB int64) (float64, error) {
	a, err := s.repo.GetCandidateProfile(ctx, userA)
	if err != nil {
		return 0, err
	}
	b, err := s.repo.GetCandidateProfile(ctx, userB)
	if err != nil {
		return 0, err
	}

	score, _ := s.engine.Compatibility(a, b, time.Now())
	return score, nil
}

func cardFromProfile(c *CandidateProfile, now time.Time) *CandidateCard {
	return &CandidateCard{
		UserID:      c.UserID,
		DisplayName: c.DisplayName,
		Age:         c.Age(now),
		Country:     c.Country,
		City:        c.City,
		Bio:         c.Bio,
		PhotoURL:    c.PhotoURL,
		Interests:   c.Interests,
		Languages:   c.Languages,
		IsVerified:  c.IsVerified,
	}
}
