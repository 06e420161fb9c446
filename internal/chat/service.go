// internal/chat/service.go

package chat

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ErrNotParticipant = errors.New("user is not part of this conversation")
	ErrMatchInactive  = errors.New("this match is no longer active")
)

var messagesSent = promauto.NewCounter(prometheus.CounterOpts{
	Name: "amoria_chat_messages_total",
	Help: "Total chat messages sent",
})

// MatchInfo is the slice of a match the chat layer needs
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

// Notifier pushes a notification to an offline recipient. Implemented
// by the notifications package.
type Notifier interface {
	MessageReceived(ctx context.Context, recipientID, senderID int64, preview string)
}

// Translator translates message text on demand. Implemented by the
// translation package. An empty source means auto-detect.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (translated, detectedSource string, err error)
}

type Service interface {
	OpenConversation(ctx context.Context, userID, matchID int64) (*Conversation, error)
	GetConversations(ctx context.Context, userID int64) ([]*Conversation, error)
	GetMessages(ctx context.Context, userID, conversationID int64, before time.Time, limit int) ([]*Message, error)
	SendMessage(ctx context.Context, userID int64, req *SendMessageRequest) (*Message, error)
	MarkRead(ctx context.Context, userID, conversationID int64) error
	RelayTyping(ctx context.Context, userID, conversationID int64, typing bool)
	TranslateMessage(ctx context.Context, userID, messageID int64, targetLang string) (*TranslatedMessage, error)

	// Hub hooks
	PendingMessages(ctx context.Context, userID int64) ([]*Message, error)
	ConversationPartners(ctx context.Context, userID int64) ([]int64, error)
}

type service struct {
	repo       Repository
	hub        *Hub
	matches    Matches
	notifier   Notifier
	translator Translator
}

func NewService(repo Repository, hub *Hub, matches Matches, notifier Notifier, translator Translator) Service {
	s := &service{
		repo:       repo,
		hub:        hub,
		matches:    matches,
		notifier:   notifier,
		translator: translator,
	}
	hub.Bind(s)
	return s
}

func (s *service) OpenConversation(ctx context.Context, userID, matchID int64) (*Conversation, error) {
	match, err := s.matches.Lookup(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.UserA != userID && match.UserB != userID {
		return nil, ErrNotParticipant
	}
	if !match.IsActive {
		return nil, ErrMatchInactive
	}

	conv, err := s.repo.GetOrCreateConversation(ctx, match.ID, match.UserA, match.UserB)
	if err != nil {
		return nil, err
	}

	conv.PartnerID = conv.Partner(userID)
	conv.PartnerOnline = s.hub.IsUserOnline(conv.PartnerID)
	return conv, nil
}

func (s *service) GetConversations(ctx context.Context, userID int64) ([]*Conversation, error) {
	conversations, err := s.repo.GetUserConversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, conv := range conversations {
		conv.PartnerOnline = s.hub.IsUserOnline(conv.PartnerID)
	}
	return conversations, nil
}

func (s *service) GetMessages(ctx context.Context, userID, conversationID int64, before time.Time, limit int) ([]*Message, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.Involves(userID) {
		return nil, ErrNotParticipant
	}

	if before.IsZero() {
		before = time.Now()
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	messages, err := s.repo.GetMessages(ctx, conversationID, before, limit)
	if err != nil {
		return nil, err
	}

	// Fetching history counts as delivery
	if err := s.repo.MarkDelivered(ctx, conversationID, userID); err != nil {
		log.Printf("chat: mark delivered: %v", err)
	}

	return messages, nil
}

func (s *service) SendMessage(ctx context.Context, userID int64, req *SendMessageRequest) (*Message, error) {
	conv, err := s.repo.GetConversation(ctx, req.ConversationID)
	if err != nil {
		return nil, err
	}
	if !conv.Involves(userID) {
		return nil, ErrNotParticipant
	}

	// Sending requires the underlying match to still be active
	match, err := s.matches.Lookup(ctx, conv.MatchID)
	if err != nil {
		return nil, err
	}
	if !match.IsActive {
		return nil, ErrMatchInactive
	}

	msg := &Message{
		ConversationID: conv.ID,
		SenderID:       userID,
		Body:           req.Body,
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	messagesSent.Inc()

	recipientID := conv.Partner(userID)
	if s.hub.SendToUser(recipientID, NewWSMessage(WSTypeMessage, msg)) {
		if err := s.repo.MarkDelivered(ctx, conv.ID, recipientID); err != nil {
			log.Printf("chat: mark delivered: %v", err)
		}
	} else {
		s.notifier.MessageReceived(ctx, recipientID, userID, preview(msg.Body))
	}

	return msg, nil
}

func (s *service) MarkRead(ctx context.Context, userID, conversationID int64) error {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.Involves(userID) {
		return ErrNotParticipant
	}

	changed, err := s.repo.MarkRead(ctx, conversationID, userID)
	if err != nil {
		return err
	}

	if changed > 0 {
		s.hub.SendToUser(conv.Partner(userID), NewWSMessage(WSTypeRead, ReadEvent{
			ConversationID: conversationID,
		}))
	}
	return nil
}

func (s *service) RelayTyping(ctx context.Context, userID, conversationID int64, typing bool) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil || !conv.Involves(userID) {
		return
	}

	msgType := WSTypeStopTyping
	if typing {
		msgType = WSTypeTyping
	}
	s.hub.SendToUser(conv.Partner(userID), NewWSMessage(msgType, TypingEvent{
		ConversationID: conversationID,
	}))
}

func (s *service) TranslateMessage(ctx context.Context, userID, messageID int64, targetLang string) (*TranslatedMessage, error) {
	msg, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}

	conv, err := s.repo.GetConversation(ctx, msg.ConversationID)
	if err != nil {
		return nil, err
	}
	if !conv.Involves(userID) {
		return nil, ErrNotParticipant
	}

	source := ""
	if msg.SourceLang != nil {
		source = *msg.SourceLang
	}

	translated, detected, err := s.translator.Translate(ctx, msg.Body, source, targetLang)
	if err != nil {
		return nil, err
	}

	return &TranslatedMessage{
		MessageID:      msg.ID,
		TargetLang:     targetLang,
		DetectedSource: detected,
		Text:           translated,
	}, nil
}

func (s *service) PendingMessages(ctx context.Context, userID int64) ([]*Message, error) {
	return s.repo.GetUndelivered(ctx, userID)
}

func (s *service) ConversationPartners(ctx context.Context, userID int64) ([]int64, error) {
	conversations, err := s.repo.GetUserConversations(ctx, userID)
	if err != nil {
		return nil, err
	}

	partners := make([]int64, 0, len(conversations))
	for _, conv := range conversations {
		partners = append(partners, conv.PartnerID)
	}
	return partners, nil
}

func preview(body string) string {
	const max = 80
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	return string(runes[:max]) + "…"
}
