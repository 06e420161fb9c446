// internal/notifications/sms.go

package notifications

import (
	"context"
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type SMSService interface {
	SendSMS(ctx context.Context, notification *SMSNotification) error
}

// TwilioSMSService sends SMS through the Twilio API
type TwilioSMSService struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSMSService(accountSID, authToken, from string) (SMSService, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("incomplete Twilio configuration")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSMSService{client: client, from: from}, nil
}

func (s *TwilioSMSService) SendSMS(ctx context.Context, notification *SMSNotification) error {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(notification.To)
	params.SetFrom(s.from)
	params.SetBody(notification.Body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	return nil
}

// MockSMSService records SMS instead of sending them
type MockSMSService struct {
	Sent []*SMSNotification
}

func NewMockSMSService() *MockSMSService {
	return &MockSMSService{}
}

func (m *MockSMSService) SendSMS(ctx context.Context, notification *SMSNotification) error {
	m.Sent = append(m.Sent, notification)
	log.Printf("notifications: mock sms to %s", notification.To)
	return nil
}
