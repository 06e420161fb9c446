// internal/notifications/push.go

package notifications

import (
	"context"
	"errors"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type PushService interface {
	SendPush(ctx context.Context, notification *PushNotification) error
}

// FCMPushService delivers pushes through Firebase Cloud Messaging
type FCMPushService struct {
	client *messaging.Client
}

func NewFCMPushService(ctx context.Context, credentialsPath, credentialsJSON string) (PushService, error) {
	var opt option.ClientOption
	switch {
	case credentialsPath != "":
		opt = option.WithCredentialsFile(credentialsPath)
	case credentialsJSON != "":
		opt = option.WithCredentialsJSON([]byte(credentialsJSON))
	default:
		return nil, errors.New("firebase credentials not configured")
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	return &FCMPushService{client: client}, nil
}

func (s *FCMPushService) SendPush(ctx context.Context, notification *PushNotification) error {
	if len(notification.Tokens) == 0 {
		return nil
	}

	base := &messaging.Notification{
		Title: notification.Title,
		Body:  notification.Body,
	}
	android := &messaging.AndroidConfig{
		Priority: "high",
		Notification: &messaging.AndroidNotification{
			Sound: "default",
		},
	}
	apns := &messaging.APNSConfig{
		Headers: map[string]string{"apns-priority": "10"},
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{
				Alert: &messaging.ApsAlert{
					Title: notification.Title,
					Body:  notification.Body,
				},
				Sound: "default",
			},
		},
	}

	messages := make([]*messaging.Message, 0, len(notification.Tokens))
	for _, token := range notification.Tokens {
		messages = append(messages, &messaging.Message{
			Token:        token,
			Notification: base,
			Data:         notification.Data,
			Android:      android,
			APNS:         apns,
		})
	}

	if len(messages) == 1 {
		if _, err := s.client.Send(ctx, messages[0]); err != nil {
			return fmt.Errorf("failed to send push: %w", err)
		}
		return nil
	}

	batch, err := s.client.SendAll(ctx, messages)
	if err != nil {
		return fmt.Errorf("failed to send pushes: %w", err)
	}
	if batch.FailureCount > 0 {
		for i, resp := range batch.Responses {
			if resp.Error != nil {
				log.Printf("notifications: push to token %q failed: %v", notification.Tokens[i], resp.Error)
			}
		}
	}
	return nil
}

// MockPushService records pushes instead of sending them
type MockPushService struct {
	Sent []*PushNotification
}

func NewMockPushService() *MockPushService {
	return &MockPushService{}
}

func (m *MockPushService) SendPush(ctx context.Context, notification *PushNotification) error {
	m.Sent = append(m.Sent, notification)
	log.Printf("notifications: mock push to %d devices: %s", len(notification.Tokens), notification.Title)
	return nil
}
