// internal/notifications/service_test.go

package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockNotifRepo struct {
	prefs  *Preferences
	tokens []string
	stored []*Notification
}

func (m *mockNotifRepo) CreateNotification(ctx context.Context, n *Notification) error {
	n.ID = int64(len(m.stored) + 1)
	n.CreatedAt = time.Now()
	m.stored = append(m.stored, n)
	return nil
}

func (m *mockNotifRepo) GetUserNotifications(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]*Notification, error) {
	return m.stored, nil
}

func (m *mockNotifRepo) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return nil
}

func (m *mockNotifRepo) MarkAllRead(ctx context.Context, userID int64) error { return nil }

func (m *mockNotifRepo) CountUnread(ctx context.Context, userID int64) (int, error) {
	return len(m.stored), nil
}

func (m *mockNotifRepo) UpsertDeviceToken(ctx context.Context, token *DeviceToken) error { return nil }

func (m *mockNotifRepo) DeleteDeviceToken(ctx context.Context, userID int64, token string) error {
	return nil
}

func (m *mockNotifRepo) GetDeviceTokens(ctx context.Context, userID int64) ([]string, error) {
	return m.tokens, nil
}

func (m *mockNotifRepo) GetPreferences(ctx context.Context, userID int64) (*Preferences, error) {
	if m.prefs != nil {
		return m.prefs, nil
	}
	return DefaultPreferences(userID), nil
}

func (m *mockNotifRepo) UpsertPreferences(ctx context.Context, prefs *Preferences) error {
	m.prefs = prefs
	return nil
}

func (m *mockNotifRepo) GetDisplayName(ctx context.Context, userID int64) (string, error) {
	return "Ada", nil
}

func (m *mockNotifRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (m *mockNotifRepo) GetDigestRecipients(ctx context.Context) ([]*DigestRecipient, error) {
	return nil, nil
}

type mockPush struct {
	sent []*PushNotification
}

func (m *mockPush) SendPush(ctx context.Context, n *PushNotification) error {
	m.sent = append(m.sent, n)
	return nil
}

type mockEmail struct{}

func (mockEmail) SendEmail(ctx context.Context, n *EmailNotification) error { return nil }

type mockSMS struct{}

func (mockSMS) SendSMS(ctx context.Context, n *SMSNotification) error { return nil }

func TestCallInvitedPushesToCallee(t *testing.T) {
	repo := &mockNotifRepo{tokens: []string{"device-1"}}
	push := &mockPush{}
	svc := NewService(repo, push, mockEmail{}, mockSMS{})

	svc.CallInvited(context.Background(), 2, 1)

	require.Len(t, repo.stored, 1)
	assert.Equal(t, TypeCall, repo.stored[0].Type)
	assert.Equal(t, int64(2), repo.stored[0].UserID)
	assert.Equal(t, "Incoming video call", repo.stored[0].Title)

	require.Len(t, push.sent, 1)
	assert.Equal(t, "call", push.sent[0].Data["type"])
	assert.Contains(t, push.sent[0].Body, "Ada")
}

func TestCallInvitedHonorsCallPreference(t *testing.T) {
	prefs := DefaultPreferences(2)
	prefs.PushCalls = false
	repo := &mockNotifRepo{prefs: prefs, tokens: []string{"device-1"}}
	push := &mockPush{}
	svc := NewService(repo, push, mockEmail{}, mockSMS{})

	svc.CallInvited(context.Background(), 2, 1)

	// Inbox always records the invite; the push is what the
	// preference suppresses, independent of push_messages.
	require.Len(t, repo.stored, 1)
	assert.Empty(t, push.sent)

	prefs.PushCalls = true
	prefs.PushMessages = false
	svc.CallInvited(context.Background(), 2, 1)
	assert.Len(t, push.sent, 1)
}

func TestUpdatePreferencesPatchesOnlyProvidedFields(t *testing.T) {
	repo := &mockNotifRepo{}
	svc := NewService(repo, &mockPush{}, mockEmail{}, mockSMS{})

	off := false
	updated, err := svc.UpdatePreferences(context.Background(), 2, &UpdatePreferencesRequest{PushCalls: &off})
	require.NoError(t, err)

	assert.False(t, updated.PushCalls)
	assert.True(t, updated.PushMatches)
	assert.True(t, updated.PushMessages)
}
