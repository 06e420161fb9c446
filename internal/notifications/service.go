// internal/notifications/service.go
// Event fan-out: every event lands in the inbox; pushes, emails and
// SMS go out according to the user's preferences and channels.

package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/amoria-app/amoria-backend/internal/auth"
	"github.com/amoria-app/amoria-backend/internal/matching"
)

var notificationsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "amoria_notifications_total",
	Help: "Notifications delivered, by type and channel",
}, []string{"type", "channel"})

type Service interface {
	// Event hooks, satisfied against the other packages' interfaces
	MatchCreated(ctx context.Context, match *matching.Match)
	LikeReceived(ctx context.Context, targetID, likerID int64)
	MessageReceived(ctx context.Context, recipientID, senderID int64, preview string)
	CallInvited(ctx context.Context, calleeID, callerID int64)
	AccountStatusChanged(ctx context.Context, userID int64, status, action string)
	SendVerificationCode(ctx context.Context, user *auth.User, code string) error

	// Inbox
	GetNotifications(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]*Notification, error)
	MarkRead(ctx context.Context, userID, notificationID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	UnreadCount(ctx context.Context, userID int64) (int, error)

	// Devices and preferences
	RegisterDevice(ctx context.Context, userID int64, req *RegisterDeviceRequest) (*DeviceToken, error)
	UnregisterDevice(ctx context.Context, userID int64, token string) error
	GetPreferences(ctx context.Context, userID int64) (*Preferences, error)
	UpdatePreferences(ctx context.Context, userID int64, req *UpdatePreferencesRequest) (*Preferences, error)

	// StartMaintenance prunes old notifications and sends unread digests
	// on a ticker until ctx is cancelled
	StartMaintenance(ctx context.Context, interval time.Duration)
}

type service struct {
	repo  Repository
	push  PushService
	email EmailService
	sms   SMSService
}

func NewService(repo Repository, push PushService, email EmailService, sms SMSService) Service {
	return &service{repo: repo, push: push, email: email, sms: sms}
}

func (s *service) MatchCreated(ctx context.Context, match *matching.Match) {
	for _, pair := range [][2]int64{{match.UserLo, match.UserHi}, {match.UserHi, match.UserLo}} {
		userID, partnerID := pair[0], pair[1]

		name, err := s.repo.GetDisplayName(ctx, partnerID)
		if err != nil {
			log.Printf("notifications: display name for %d: %v", partnerID, err)
			name = "Someone"
		}

		s.deliver(ctx, userID, TypeMatch,
			"It's a match!",
			fmt.Sprintf("You and %s liked each other", name),
			map[string]string{
				"match_id":   strconv.FormatInt(match.ID, 10),
				"partner_id": strconv.FormatInt(partnerID, 10),
			},
			func(p *Preferences) bool { return p.PushMatches })
	}
}

func (s *service) LikeReceived(ctx context.Context, targetID, likerID int64) {
	s.deliver(ctx, targetID, TypeLike,
		"Someone likes you",
		"Open the app to find out who",
		nil,
		func(p *Preferences) bool { return p.PushLikes })
}

func (s *service) MessageReceived(ctx context.Context, recipientID, senderID int64, preview string) {
	name, err := s.repo.GetDisplayName(ctx, senderID)
	if err != nil {
		name = "Someone"
	}

	s.deliver(ctx, recipientID, TypeMessage,
		name,
		preview,
		map[string]string{"sender_id": strconv.FormatInt(senderID, 10)},
		func(p *Preferences) bool { return p.PushMessages })
}

func (s *service) CallInvited(ctx context.Context, calleeID, callerID int64) {
	name, err := s.repo.GetDisplayName(ctx, callerID)
	if err != nil {
		name = "Someone"
	}

	s.deliver(ctx, calleeID, TypeCall,
		"Incoming video call",
		fmt.Sprintf("%s is calling you", name),
		map[string]string{"caller_id": strconv.FormatInt(callerID, 10)},
		func(p *Preferences) bool { return p.PushCalls })
}

func (s *service) AccountStatusChanged(ctx context.Context, userID int64, status, action string) {
	var title, body string
	switch status {
	case auth.StatusWarned:
		title = "Community guidelines warning"
		body = "Your account received a warning. Repeated reports may lead to suspension."
	case auth.StatusUnderReview:
		title = "Account under review"
		body = "Your account is being reviewed by our moderation team."
	case auth.StatusBanned:
		title = "Account suspended"
		body = "Your account has been temporarily suspended."
	case auth.StatusBannedPermanent:
		title = "Account banned"
		body = "Your account has been permanently banned."
	case auth.StatusActive:
		title = "Account reinstated"
		body = "Your account is active again."
	default:
		return
	}

	// Status changes always push, regardless of preferences
	s.deliver(ctx, userID, TypeAccountStatus, title, body,
		map[string]string{"status": status, "action": action},
		func(*Preferences) bool { return true })
}

// SendVerificationCode picks the channel the user signed up with
func (s *service) SendVerificationCode(ctx context.Context, user *auth.User, code string) error {
	switch {
	case user.Email != nil:
		err := s.email.SendEmail(ctx, &EmailNotification{
			To:      *user.Email,
			Subject: "Your Amoria verification code",
			Body:    fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code),
		})
		if err == nil {
			notificationsDelivered.WithLabelValues(TypeVerification, "email").Inc()
		}
		return err

	case user.Phone != nil:
		err := s.sms.SendSMS(ctx, &SMSNotification{
			To:   *user.Phone,
			Body: fmt.Sprintf("Your Amoria verification code is %s", code),
		})
		if err == nil {
			notificationsDelivered.WithLabelValues(TypeVerification, "sms").Inc()
		}
		return err

	default:
		return fmt.Errorf("user %d has no email or phone", user.ID)
	}
}

// deliver stores the inbox entry and pushes when the preference allows
func (s *service) deliver(ctx context.Context, userID int64, notifType, title, body string, data map[string]string, allowed func(*Preferences) bool) {
	var raw json.RawMessage
	if data != nil {
		raw, _ = json.Marshal(data)
	}

	n := &Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   raw,
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		log.Printf("notifications: store for user %d: %v", userID, err)
	} else {
		notificationsDelivered.WithLabelValues(notifType, "inbox").Inc()
	}

	prefs, err := s.repo.GetPreferences(ctx, userID)
	if err != nil {
		log.Printf("notifications: preferences for user %d: %v", userID, err)
		return
	}
	if !allowed(prefs) {
		return
	}

	tokens, err := s.repo.GetDeviceTokens(ctx, userID)
	if err != nil {
		log.Printf("notifications: tokens for user %d: %v", userID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	if data == nil {
		data = map[string]string{}
	}
	data["type"] = notifType

	if err := s.push.SendPush(ctx, &PushNotification{
		Tokens: tokens,
		Title:  title,
		Body:   body,
		Data:   data,
	}); err != nil {
		log.Printf("notifications: push for user %d: %v", userID, err)
		return
	}
	notificationsDelivered.WithLabelValues(notifType, "push").Inc()
}

func (s *service) GetNotifications(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]*Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.GetUserNotifications(ctx, userID, unreadOnly, limit, offset)
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return s.repo.MarkRead(ctx, userID, notificationID)
}

func (s *service) MarkAllRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *service) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *service) RegisterDevice(ctx context.Context, userID int64, req *RegisterDeviceRequest) (*DeviceToken, error) {
	token := &DeviceToken{
		UserID:   userID,
		Token:    req.Token,
		Platform: req.Platform,
	}
	if err := s.repo.UpsertDeviceToken(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *service) UnregisterDevice(ctx context.Context, userID int64, token string) error {
	return s.repo.DeleteDeviceToken(ctx, userID, token)
}

func (s *service) GetPreferences(ctx context.Context, userID int64) (*Preferences, error) {
	return s.repo.GetPreferences(ctx, userID)
}

func (s *service) UpdatePreferences(ctx context.Context, userID int64, req *UpdatePreferencesRequest) (*Preferences, error) {
	prefs, err := s.repo.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.PushMatches != nil {
		prefs.PushMatches = *req.PushMatches
	}
	if req.PushLikes != nil {
		prefs.PushLikes = *req.PushLikes
	}
	if req.PushMessages != nil {
		prefs.PushMessages = *req.PushMessages
	}
	if req.PushCalls != nil {
		prefs.PushCalls = *req.PushCalls
	}
	if req.EmailDigests != nil {
		prefs.EmailDigests = *req.EmailDigests
	}

	if err := s.repo.UpsertPreferences(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}
