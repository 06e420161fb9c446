// internal/video/service_test.go

package video

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCallRepo struct {
	call     *Call
	statuses []string
}

func (m *mockCallRepo) CreateCall(ctx context.Context, call *Call) error {
	call.ID = 1
	m.call = call
	return nil
}

func (m *mockCallRepo) GetCall(ctx context.Context, id int64) (*Call, error) {
	return m.call, nil
}

func (m *mockCallRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	m.statuses = append(m.statuses, status)
	return nil
}

func (m *mockCallRepo) GetUserCalls(ctx context.Context, userID int64, limit int) ([]*Call, error) {
	return nil, nil
}

type mockVideoMatches struct {
	match *MatchInfo
}

func (m *mockVideoMatches) Lookup(ctx context.Context, matchID int64) (*MatchInfo, error) {
	return m.match, nil
}

type mockVideoEntitlements struct {
	allowed bool
}

func (m *mockVideoEntitlements) CanVideoCall(ctx context.Context, userID int64) (bool, error) {
	return m.allowed, nil
}

type mockVideoNotifier struct {
	rung       int
	lastCallee int64
}

func (m *mockVideoNotifier) CallInvited(ctx context.Context, calleeID, callerID int64) {
	m.rung++
	m.lastCallee = calleeID
}

func newVideoFixture(repo *mockCallRepo, allowed bool) (Service, *mockVideoNotifier) {
	issuer := NewTokenIssuer("key", "secret", time.Hour)
	matches := &mockVideoMatches{match: &MatchInfo{ID: 5, UserA: 1, UserB: 2, IsActive: true}}
	notifier := &mockVideoNotifier{}
	svc := NewService(repo, issuer, matches, &mockVideoEntitlements{allowed: allowed}, notifier)
	return svc, notifier
}

func TestStartCallRequiresPlatinum(t *testing.T) {
	svc, _ := newVideoFixture(&mockCallRepo{}, false)

	_, err := svc.StartCall(context.Background(), 1, 5)
	assert.ErrorIs(t, err, ErrPlanRequired)
}

func TestStartCallRequiresMembership(t *testing.T) {
	svc, _ := newVideoFixture(&mockCallRepo{}, true)

	_, err := svc.StartCall(context.Background(), 99, 5)
	assert.ErrorIs(t, err, ErrNotMatched)
}

func TestStartCallRingsCallee(t *testing.T) {
	repo := &mockCallRepo{}
	svc, notifier := newVideoFixture(repo, true)

	grant, err := svc.StartCall(context.Background(), 1, 5)
	require.NoError(t, err)

	assert.Equal(t, CallRinging, grant.Call.Status)
	assert.Equal(t, int64(2), grant.Call.CalleeID)
	assert.True(t, strings.HasPrefix(grant.Call.Room, "call-"))
	assert.NotEmpty(t, grant.Token)
	assert.Equal(t, 1, notifier.rung)
	assert.Equal(t, int64(2), notifier.lastCallee)
}

func TestJoinCallActivatesRinging(t *testing.T) {
	repo := &mockCallRepo{call: &Call{ID: 1, CallerID: 1, CalleeID: 2, Room: "call-x", Status: CallRinging}}
	svc, _ := newVideoFixture(repo, true)

	grant, err := svc.JoinCall(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.Equal(t, CallActive, grant.Call.Status)
	assert.Equal(t, []string{CallActive}, repo.statuses)
}

func TestJoinCallRejoinWhileActive(t *testing.T) {
	repo := &mockCallRepo{call: &Call{ID: 1, CallerID: 1, CalleeID: 2, Room: "call-x", Status: CallActive}}
	svc, _ := newVideoFixture(repo, true)

	grant, err := svc.JoinCall(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Empty(t, repo.statuses, "rejoin does not touch call state")
	assert.NotEmpty(t, grant.Token)
}

func TestJoinCallOver(t *testing.T) {
	repo := &mockCallRepo{call: &Call{ID: 1, CallerID: 1, CalleeID: 2, Status: CallEnded}}
	svc, _ := newVideoFixture(repo, true)

	_, err := svc.JoinCall(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrCallOver)
}

func TestDeclineCallCalleeOnly(t *testing.T) {
	repo := &mockCallRepo{call: &Call{ID: 1, CallerID: 1, CalleeID: 2, Status: CallRinging}}
	svc, _ := newVideoFixture(repo, true)

	err := svc.DeclineCall(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrNotInCall, "caller cannot decline their own call")

	require.NoError(t, svc.DeclineCall(context.Background(), 2, 1))
	assert.Equal(t, []string{CallDeclined}, repo.statuses)
}

func TestEndCallBeforeAnswerIsMissed(t *testing.T) {
	repo := &mockCallRepo{call: &Call{ID: 1, CallerID: 1, CalleeID: 2, Status: CallRinging}}
	svc, _ := newVideoFixture(repo, true)

	require.NoError(t, svc.EndCall(context.Background(), 1, 1))
	assert.Equal(t, []string{CallMissed}, repo.statuses)
}

func TestEndActiveCall(t *testing.T) {
	repo := &mockCallRepo{call: &Call{ID: 1, CallerID: 1, CalleeID: 2, Status: CallActive}}
	svc, _ := newVideoFixture(repo, true)

	require.NoError(t, svc.EndCall(context.Background(), 2, 1))
	assert.Equal(t, []string{CallEnded}, repo.statuses)
}
