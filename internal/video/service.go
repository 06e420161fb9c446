// internal/video/service.go

package video

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ErrNotInCall        = errors.New("user is not part of this call")
	ErrNotMatched       = errors.New("video calls require an active match")
	ErrPlanRequired     = errors.New("video calls require a platinum subscription")
	ErrCallOver         = errors.New("this call has ended")
	ErrInvalidCallState = errors.New("call is not in a state that allows this")
)

var callsStarted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "amoria_video_calls_total",
	Help: "Video calls started",
})

// MatchInfo mirrors the slice of a match this package needs
type MatchInfo struct {
	ID       int64
	UserA    int64
	UserB    int64
	IsActive bool
}

// Matches resolves match membership. Implemented by the matching package.
type Matches interface {
	Lookup(ctx context.Context, matchID int64) (*MatchInfo, error)
}

// Entitlements gates calls on the caller's plan. Implemented by billing.
type Entitlements interface {
	CanVideoCall(ctx context.Context, userID int64) (bool, error)
}

// Notifier rings the callee. Implemented by the notifications package.
type Notifier interface {
	CallInvited(ctx context.Context, calleeID, callerID int64)
}

type Service interface {
	StartCall(ctx context.Context, callerID, matchID int64) (*JoinGrant, error)
	JoinCall(ctx context.Context, userID, callID int64) (*JoinGrant, error)
	DeclineCall(ctx context.Context, userID, callID int64) error
	EndCall(ctx context.Context, userID, callID int64) error
	CallHistory(ctx context.Context, userID int64) ([]*Call, error)
}

type service struct {
	repo         Repository
	issuer       *TokenIssuer
	matches      Matches
	entitlements Entitlements
	notifier     Notifier
}

func NewService(repo Repository, issuer *TokenIssuer, matches Matches, entitlements Entitlements, notifier Notifier) Service {
	return &service{
		repo:         repo,
		issuer:       issuer,
		matches:      matches,
		entitlements: entitlements,
		notifier:     notifier,
	}
}

func (s *service) StartCall(ctx context.Context, callerID, matchID int64) (*JoinGrant, error) {
	match, err := s.matches.Lookup(ctx, matchID)
	if err != nil {
		return nil, ErrNotMatched
	}
	if !match.IsActive || (match.UserA != callerID && match.UserB != callerID) {
		return nil, ErrNotMatched
	}

	allowed, err := s.entitlements.CanVideoCall(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrPlanRequired
	}

	calleeID := match.UserA
	if calleeID == callerID {
		calleeID = match.UserB
	}

	call := &Call{
		MatchID:  matchID,
		CallerID: callerID,
		CalleeID: calleeID,
		Room:     fmt.Sprintf("call-%s", uuid.NewString()),
		Status:   CallRinging,
	}
	if err := s.repo.CreateCall(ctx, call); err != nil {
		return nil, err
	}
	callsStarted.Inc()

	s.notifier.CallInvited(ctx, calleeID, callerID)

	token, expires, err := s.issuer.Mint(callerID, call.Room)
	if err != nil {
		return nil, err
	}

	return &JoinGrant{Call: call, Token: token, ExpiresAt: expires}, nil
}

func (s *service) JoinCall(ctx context.Context, userID, callID int64) (*JoinGrant, error) {
	call, err := s.repo.GetCall(ctx, callID)
	if err != nil {
		return nil, err
	}
	if !call.Involves(userID) {
		return nil, ErrNotInCall
	}

	switch call.Status {
	case CallRinging:
		if err := s.repo.UpdateStatus(ctx, call.ID, CallActive); err != nil {
			return nil, err
		}
		call.Status = CallActive
	case CallActive:
		// Rejoin after a dropped connection
	default:
		return nil, ErrCallOver
	}

	token, expires, err := s.issuer.Mint(userID, call.Room)
	if err != nil {
		return nil, err
	}

	return &JoinGrant{Call: call, Token: token, ExpiresAt: expires}, nil
}

func (s *service) DeclineCall(ctx context.Context, userID, callID int64) error {
	call, err := s.repo.GetCall(ctx, callID)
	if err != nil {
		return err
	}
	if call.CalleeID != userID {
		return ErrNotInCall
	}
	if call.Status != CallRinging {
		return ErrInvalidCallState
	}

	return s.repo.UpdateStatus(ctx, call.ID, CallDeclined)
}

func (s *service) EndCall(ctx context.Context, userID, callID int64) error {
	call, err := s.repo.GetCall(ctx, callID)
	if err != nil {
		return err
	}
	if !call.Involves(userID) {
		return ErrNotInCall
	}

	switch call.Status {
	case CallActive:
		return s.repo.UpdateStatus(ctx, call.ID, CallEnded)
	case CallRinging:
		// Caller hung up before an answer
		return s.repo.UpdateStatus(ctx, call.ID, CallMissed)
	default:
		return nil
	}
}

func (s *service) CallHistory(ctx context.Context, userID int64) ([]*Call, error) {
	return s.repo.GetUserCalls(ctx, userID, 50)
}
