// internal/notifications/scheduler.go
// Inbox maintenance: prune old notifications and send daily unread
// digests to users who opted in.

package notifications

import (
	"context"
	"fmt"
	"log"
	"time"
)

const inboxRetention = 30 * 24 * time.Hour

// DigestRecipient is one user due an unread digest email
type DigestRecipient struct {
	UserID      int64  `db:"user_id"`
	Email       string `db:"email"`
	DisplayName string `db:"display_name"`
	Unread      int    `db:"unread"`
}

func (s *service) StartMaintenance(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.runMaintenance(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *service) runMaintenance(ctx context.Context) {
	pruned, err := s.repo.DeleteOlderThan(ctx, time.Now().Add(-inboxRetention))
	if err != nil {
		log.Printf("notifications: prune inbox: %v", err)
	} else if pruned > 0 {
		log.Printf("notifications: pruned %d old notifications", pruned)
	}

	s.sendDigests(ctx)
}

func (s *service) sendDigests(ctx context.Context) {
	recipients, err := s.repo.GetDigestRecipients(ctx)
	if err != nil {
		log.Printf("notifications: digest recipients: %v", err)
		return
	}

	for _, r := range recipients {
		body := fmt.Sprintf(
			"Hi %s,\n\nYou have %d unread notifications waiting for you on Amoria.",
			r.DisplayName, r.Unread,
		)
		err := s.email.SendEmail(ctx, &EmailNotification{
			To:      r.Email,
			Subject: "You have unread activity on Amoria",
			Body:    body,
		})
		if err != nil {
			log.Printf("notifications: digest to user %d: %v", r.UserID, err)
		}
	}

	if len(recipients) > 0 {
		log.Printf("notifications: sent %d digest emails", len(recipients))
	}
}
