// internal/chat/service_test.go

package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChatRepo struct {
	conversation *Conversation
	created      *Message
	delivered    int
}

func (m *mockChatRepo) GetOrCreateConversation(ctx context.Context, matchID, userA, userB int64) (*Conversation, error) {
	return m.conversation, nil
}

func (m *mockChatRepo) GetConversation(ctx context.Context, id int64) (*Conversation, error) {
	return m.conversation, nil
}

func (m *mockChatRepo) GetConversationByMatch(ctx context.Context, matchID int64) (*Conversation, error) {
	return m.conversation, nil
}

func (m *mockChatRepo) GetUserConversations(ctx context.Context, userID int64) ([]*Conversation, error) {
	return nil, nil
}

func (m *mockChatRepo) CreateMessage(ctx context.Context, msg *Message) error {
	msg.ID = 100
	msg.CreatedAt = time.Now()
	m.created = msg
	return nil
}

func (m *mockChatRepo) GetMessage(ctx context.Context, id int64) (*Message, error) {
	return m.created, nil
}

func (m *mockChatRepo) GetMessages(ctx context.Context, conversationID int64, before time.Time, limit int) ([]*Message, error) {
	return nil, nil
}

func (m *mockChatRepo) MarkDelivered(ctx context.Context, conversationID, recipientID int64) error {
	m.delivered++
	return nil
}

func (m *mockChatRepo) MarkRead(ctx context.Context, conversationID, readerID int64) (int64, error) {
	return 0, nil
}

func (m *mockChatRepo) CountUnread(ctx context.Context, conversationID, userID int64) (int, error) {
	return 0, nil
}

func (m *mockChatRepo) GetUndelivered(ctx context.Context, recipientID int64) ([]*Message, error) {
	return nil, nil
}

type mockMatches struct {
	match *MatchInfo
}

func (m *mockMatches) Lookup(ctx context.Context, matchID int64) (*MatchInfo, error) {
	return m.match, nil
}

type mockChatNotifier struct {
	pushed int
}

func (m *mockChatNotifier) MessageReceived(ctx context.Context, recipientID, senderID int64, preview string) {
	m.pushed++
}

type passthroughTranslator struct{}

func (passthroughTranslator) Translate(ctx context.Context, text, source, target string) (string, string, error) {
	return text, source, nil
}

func newChatFixture(repo *mockChatRepo, notif *mockChatNotifier) Service {
	// Hub is never Run in tests, so every recipient counts as offline
	hub := NewHub()
	matches := &mockMatches{match: &MatchInfo{ID: 5, UserA: 1, UserB: 2, IsActive: true}}
	return NewService(repo, hub, matches, notif, passthroughTranslator{})
}

func TestSendMessageRequiresParticipation(t *testing.T) {
	repo := &mockChatRepo{conversation: &Conversation{ID: 9, MatchID: 5, UserA: 1, UserB: 2}}
	svc := newChatFixture(repo, &mockChatNotifier{})

	_, err := svc.SendMessage(context.Background(), 99, &SendMessageRequest{ConversationID: 9, Body: "hi"})
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestSendMessageRejectsInactiveMatch(t *testing.T) {
	repo := &mockChatRepo{conversation: &Conversation{ID: 9, MatchID: 5, UserA: 1, UserB: 2}}
	hub := NewHub()
	matches := &mockMatches{match: &MatchInfo{ID: 5, UserA: 1, UserB: 2, IsActive: false}}
	svc := NewService(repo, hub, matches, &mockChatNotifier{}, passthroughTranslator{})

	_, err := svc.SendMessage(context.Background(), 1, &SendMessageRequest{ConversationID: 9, Body: "hi"})
	assert.ErrorIs(t, err, ErrMatchInactive)
}

func TestSendMessageOfflineRecipientGetsPush(t *testing.T) {
	repo := &mockChatRepo{conversation: &Conversation{ID: 9, MatchID: 5, UserA: 1, UserB: 2}}
	notif := &mockChatNotifier{}
	svc := newChatFixture(repo, notif)

	msg, err := svc.SendMessage(context.Background(), 1, &SendMessageRequest{ConversationID: 9, Body: "hello there"})
	require.NoError(t, err)

	assert.Equal(t, int64(100), msg.ID)
	assert.Equal(t, int64(1), msg.SenderID)
	assert.Equal(t, 1, notif.pushed, "offline recipient falls back to a push notification")
	assert.Equal(t, 0, repo.delivered, "nothing was delivered over the socket")
}

func TestPreviewTruncation(t *testing.T) {
	assert.Equal(t, "short", preview("short"))

	exactly := strings.Repeat("a", 80)
	assert.Equal(t, exactly, preview(exactly))

	long := strings.Repeat("a", 81)
	got := preview(long)
	assert.Equal(t, 81, len([]rune(got)), "80 runes plus ellipsis")
	assert.Equal(t, "…", string([]rune(got)[80]))

	// Multibyte text truncates on rune boundaries, not bytes
	kana := strings.Repeat("あ", 100)
	got = preview(kana)
	assert.Equal(t, strings.Repeat("あ", 80)+"…", got)
}

func TestConversationPartner(t *testing.T) {
	conv := &Conversation{UserA: 1, UserB: 2}
	assert.Equal(t, int64(2), conv.Partner(1))
	assert.Equal(t, int64(1), conv.Partner(2))
	assert.True(t, conv.Involves(1))
	assert.True(t, conv.Involves(2))
	assert.False(t, conv.Involves(3))
}
