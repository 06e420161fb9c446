// internal/matching/service_test.go

package matching

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository is a hand-rolled fake backed by function fields so each
// test only wires what it needs.
type mockRepository struct {
	recordSwipe         func(ctx context.Context, swipe *Swipe, score float64) (bool, *Match, error)
	getMatch            func(ctx context.Context, id int64) (*Match, error)
	getMatchByPair      func(ctx context.Context, userA, userB int64) (*Match, error)
	getCandidateProfile func(ctx context.Context, userID int64) (*CandidateProfile, error)
	findCandidates      func(ctx context.Context, seeker *CandidateProfile, limit int) ([]*CandidateProfile, error)
	unmatch             func(ctx context.Context, match *Match) error
}

func (m *mockRepository) RecordSwipe(ctx context.Context, swipe *Swipe, score float64) (bool, *Match, error) {
	return m.recordSwipe(ctx, swipe, score)
}

func (m *mockRepository) HasLike(ctx context.Context, swiperID, targetID int64) (bool, error) {
	return false, nil
}

func (m *mockRepository) GetMatch(ctx context.Context, id int64) (*Match, error) {
	return m.getMatch(ctx, id)
}

func (m *mockRepository) GetMatchByPair(ctx context.Context, userA, userB int64) (*Match, error) {
	if m.getMatchByPair == nil {
		return nil, ErrMatchNotFound
	}
	return m.getMatchByPair(ctx, userA, userB)
}

func (m *mockRepository) GetUserMatches(ctx context.Context, userID int64, active bool) ([]*Match, error) {
	return nil, nil
}

func (m *mockRepository) Unmatch(ctx context.Context, match *Match) error {
	return m.unmatch(ctx, match)
}

func (m *mockRepository) GetCandidateProfile(ctx context.Context, userID int64) (*CandidateProfile, error) {
	return m.getCandidateProfile(ctx, userID)
}

func (m *mockRepository) FindCandidates(ctx context.Context, seeker *CandidateProfile, limit int) ([]*CandidateProfile, error) {
	return m.findCandidates(ctx, seeker, limit)
}

func (m *mockRepository) GetCard(ctx context.Context, userID int64) (*CandidateCard, error) {
	return &CandidateCard{UserID: userID}, nil
}

func (m *mockRepository) GetLikers(ctx context.Context, userID int64) ([]*Liker, error) {
	return nil, nil
}

type mockEntitlements struct {
	allowed  bool
	refunded int
	likers   bool
}

func (m *mockEntitlements) ConsumeLike(ctx context.Context, userID int64) (bool, int, error) {
	return m.allowed, 10, nil
}

func (m *mockEntitlements) RefundLike(ctx context.Context, userID int64) error {
	m.refunded++
	return nil
}

func (m *mockEntitlements) CanSeeLikers(ctx context.Context, userID int64) (bool, error) {
	return m.likers, nil
}

type mockNotifier struct {
	matches int
	likes   int
}

func (m *mockNotifier) MatchCreated(ctx context.Context, match *Match)            { m.matches++ }
func (m *mockNotifier) LikeReceived(ctx context.Context, targetID, likerID int64) { m.likes++ }

type mockBlocks struct {
	blocked bool
}

func (m *mockBlocks) IsBlockedEither(ctx context.Context, userA, userB int64) (bool, error) {
	return m.blocked, nil
}

func candidateFixture(userID int64) *CandidateProfile {
	return &CandidateProfile{
		UserID:     userID,
		BirthDate:  birthDateForAge(30),
		Gender:     "female",
		Country:    "US",
		LastActive: testNow,
	}
}

func newTestService(repo *mockRepository, ent *mockEntitlements, notif *mockNotifier, blocks *mockBlocks) Service {
	return NewService(repo, ent, notif, blocks, Config{FeedSize: 10, SwipesPerMinute: 100})
}

func TestSwipeOnSelf(t *testing.T) {
	svc := newTestService(&mockRepository{}, &mockEntitlements{allowed: true}, &mockNotifier{}, &mockBlocks{})

	_, err := svc.Swipe(context.Background(), 1, &SwipeRequest{TargetID: 1, Direction: DirectionLike})
	assert.ErrorIs(t, err, ErrSelfSwipe)
}

func TestSwipeBlockedPair(t *testing.T) {
	svc := newTestService(&mockRepository{}, &mockEntitlements{allowed: true}, &mockNotifier{}, &mockBlocks{blocked: true})

	_, err := svc.Swipe(context.Background(), 1, &SwipeRequest{TargetID: 2, Direction: DirectionLike})
	assert.ErrorIs(t, err, ErrTargetUnavailable)
}

func TestSwipeBudgetExhausted(t *testing.T) {
	ent := &mockEntitlements{allowed: false}
	svc := newTestService(&mockRepository{}, ent, &mockNotifier{}, &mockBlocks{})

	_, err := svc.Swipe(context.Background(), 1, &SwipeRequest{TargetID: 2, Direction: DirectionLike})
	assert.ErrorIs(t, err, ErrLikeBudgetExhausted)
}

func TestSwipePassSkipsBudget(t *testing.T) {
	// A pass must not consume like budget even when it is exhausted
	repo := &mockRepository{
		getCandidateProfile: func(ctx context.Context, userID int64) (*CandidateProfile, error) {
			return candidateFixture(userID), nil
		},
		recordSwipe: func(ctx context.Context, swipe *Swipe, score float64) (bool, *Match, error) {
			return true, nil, nil
		},
	}
	svc := newTestService(repo, &mockEntitlements{allowed: false}, &mockNotifier{}, &mockBlocks{})

	result, err := svc.Swipe(context.Background(), 1, &SwipeRequest{TargetID: 2, Direction: DirectionPass})
	require.NoError(t, err)
	assert.False(t, result.Matched)
}

func TestSwipeLikeNotifiesTarget(t *testing.T) {
	repo := &mockRepository{
		getCandidateProfile: func(ctx context.Context, userID int64) (*CandidateProfile, error) {
			return candidateFixture(userID), nil
		},
		recordSwipe: func(ctx context.Context, swipe *Swipe, score float64) (bool, *Match, error) {
			return true, nil, nil
		},
	}
	notif := &mockNotifier{}
	svc := newTestService(repo, &mockEntitlements{allowed: true}, notif, &mockBlocks{})

	result, err := svc.Swipe(context.Background(), 1, &SwipeRequest{TargetID: 2, Direction: DirectionLike})
	require.NoError(t, err)
	assert.False(t, result.Matched)
	assert.Equal(t, 1, notif.likes)
	assert.Equal(t, 0, notif.matches)
}

func TestSwipeReciprocalLikeCreatesMatch(t *testing.T) {
	match := &Match{ID: 7, UserLo: 1, UserHi: 2, IsActive: true, CompatibilityScore: 80}
	repo := &mockRepository{
		getCandidateProfile: func(ctx context.Context, userID int64) (*CandidateProfile, error) {
			return candidateFixture(userID), nil
		},
		recordSwipe: func(ctx context.Context, swipe *Swipe, score float64) (bool, *Match, error) {
			return true, match, nil
		},
	}
	notif := &mockNotifier{}
	svc := newTestService(repo, &mockEntitlements{allowed: true}, notif, &mockBlocks{})

	result, err := svc.Swipe(context.Background(), 1, &SwipeRequest{TargetID: 2, Direction: DirectionLike})
	require.NoError(t, err)
	assert.True(t, result.Matched)
	require.NotNil(t, result.Match)
	assert.Equal(t, int64(7), result.Match.ID)
	assert.Equal(t, 1, notif.matches)
	assert.Equal(t, 0, notif.likes, "a match replaces the like notification")
}

func TestSwipeRepeatRefundsLike(t *testing.T) {
	match := &Match{ID: 7, UserLo: 1, UserHi: 2, IsActive: true}
	repo := &mockRepository{
		getCandidateProfile: func(ctx context.Context, userID int64) (*CandidateProfile, error) {
			return candidateFixture(userID), nil
		},
		recordSwipe: func(ctx context.Context, swipe *Swipe, score float64) (bool, *Match, error) {
			return false, nil, nil // duplicate
		},
		getMatchByPair: func(ctx context.Context, userA, userB int64) (*Match, error) {
			return match, nil
		},
	}
	ent := &mockEntitlements{allowed: true}
	notif := &mockNotifier{}
	svc := newTestService(repo, ent, notif, &mockBlocks{})

	result, err := svc.Swipe(context.Background(), 1, &SwipeRequest{TargetID: 2, Direction: DirectionLike})
	require.NoError(t, err)
	assert.Equal(t, 1, ent.refunded)
	assert.True(t, result.Matched, "repeat like re-reports the existing match")
	assert.Equal(t, 0, notif.matches, "no side effects on a repeat")
}

func TestSwipeRateLimited(t *testing.T) {
	repo := &mockRepository{
		getCandidateProfile: func(ctx context.Context, userID int64) (*CandidateProfile, error) {
			return candidateFixture(userID), nil
		},
		recordSwipe: func(ctx context.Context, swipe *Swipe, score float64) (bool, *Match, error) {
			return true, nil, nil
		},
	}
	svc := NewService(repo, &mockEntitlements{allowed: true}, &mockNotifier{}, &mockBlocks{},
		Config{FeedSize: 10, SwipesPerMinute: 1})

	_, err := svc.Swipe(context.Background(), 1, &SwipeRequest{TargetID: 2, Direction: DirectionPass})
	require.NoError(t, err)

	_, err = svc.Swipe(context.Background(), 1, &SwipeRequest{TargetID: 3, Direction: DirectionPass})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestDiscoverPlatinumBoost(t *testing.T) {
	seeker := candidateFixture(1)

	plain := candidateFixture(2)
	boosted := candidateFixture(3)
	boosted.Plan = PlanPlatinum

	repo := &mockRepository{
		getCandidateProfile: func(ctx context.Context, userID int64) (*CandidateProfile, error) {
			return seeker, nil
		},
		findCandidates: func(ctx context.Context, s *CandidateProfile, limit int) ([]*CandidateProfile, error) {
			return []*CandidateProfile{plain, boosted}, nil
		},
	}
	svc := newTestService(repo, &mockEntitlements{allowed: true}, &mockNotifier{}, &mockBlocks{})

	feed, err := svc.Discover(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, feed, 2)

	// Identical profiles, so the platinum subscriber ranks first
	assert.Equal(t, int64(3), feed[0].Card.UserID)
	assert.Greater(t, feed[0].Score, feed[1].Score)
}

func TestUnmatchRequiresMembership(t *testing.T) {
	repo := &mockRepository{
		getMatch: func(ctx context.Context, id int64) (*Match, error) {
			return &Match{ID: id, UserLo: 1, UserHi: 2, IsActive: true}, nil
		},
	}
	svc := newTestService(repo, &mockEntitlements{allowed: true}, &mockNotifier{}, &mockBlocks{})

	err := svc.Unmatch(context.Background(), 99, 7)
	assert.ErrorIs(t, err, ErrNotInMatch)
}

func TestUnmatchIdempotent(t *testing.T) {
	unmatched := 0
	repo := &mockRepository{
		getMatch: func(ctx context.Context, id int64) (*Match, error) {
			return &Match{ID: id, UserLo: 1, UserHi: 2, IsActive: false}, nil
		},
		unmatch: func(ctx context.Context, match *Match) error {
			unmatched++
			return nil
		},
	}
	svc := newTestService(repo, &mockEntitlements{allowed: true}, &mockNotifier{}, &mockBlocks{})

	err := svc.Unmatch(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, unmatched, "closed match is left alone")
}

func TestUnmatchStampsActor(t *testing.T) {
	var got *Match
	repo := &mockRepository{
		getMatch: func(ctx context.Context, id int64) (*Match, error) {
			return &Match{ID: id, UserLo: 1, UserHi: 2, IsActive: true}, nil
		},
		unmatch: func(ctx context.Context, match *Match) error {
			got = match
			return nil
		},
	}
	svc := newTestService(repo, &mockEntitlements{allowed: true}, &mockNotifier{}, &mockBlocks{})

	require.NoError(t, svc.Unmatch(context.Background(), 2, 7))
	require.NotNil(t, got)
	require.NotNil(t, got.UnmatchedBy)
	assert.Equal(t, int64(2), *got.UnmatchedBy)
	assert.WithinDuration(t, time.Now(), *got.UnmatchedAt, time.Second)
}

func TestGetLikersRequiresPremium(t *testing.T) {
	svc := newTestService(&mockRepository{}, &mockEntitlements{likers: false}, &mockNotifier{}, &mockBlocks{})

	_, err := svc.GetLikers(context.Background(), 1)
	assert.ErrorIs(t, err, ErrPremiumRequired)
}
