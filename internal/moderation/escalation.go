// internal/moderation/escalation.go
// Automatic escalation: distinct reporters within the rolling window
// trigger actions per category. Status changes only ever move up in
// severity; a later, milder tier never undoes a harsher one.

package moderation

import (
	"time"

	"github.com/amoria-app/amoria-backend/internal/auth"
)

// Escalation actions
const (
	ActionWarning      = "warning"
	ActionReview       = "review"
	ActionTempBan7d    = "temp_ban_7d"
	ActionTempBan30d   = "temp_ban_30d"
	ActionPermanentBan = "permanent_ban"
)

type tier struct {
	Reporters int
	Action    string
}

// escalationTiers per category, mildest first. The highest tier whose
// threshold is met wins.
var escalationTiers = map[string][]tier{
	CategoryHarassment: {
		{Reporters: 3, Action: ActionWarning},
		{Reporters: 5, Action: ActionTempBan7d},
		{Reporters: 8, Action: ActionPermanentBan},
	},
	CategoryFakeProfile: {
		{Reporters: 3, Action: ActionReview},
		{Reporters: 6, Action: ActionTempBan7d},
	},
	CategoryInappropriateContent: {
		{Reporters: 2, Action: ActionWarning},
		{Reporters: 4, Action: ActionReview},
		{Reporters: 7, Action: ActionTempBan30d},
	},
	CategoryScam: {
		{Reporters: 2, Action: ActionReview},
		{Reporters: 4, Action: ActionPermanentBan},
	},
}

// escalationFor returns the action warranted by reporters distinct
// complainants in category, or "" when below every threshold.
func escalationFor(category string, reporters int) string {
	action := ""
	for _, t := range escalationTiers[category] {
		if reporters >= t.Reporters {
			action = t.Action
		}
	}
	return action
}

// statusFor maps an action to the resulting account status and, for
// temporary bans, its expiry.
func statusFor(action string, now time.Time) (status string, until *time.Time) {
	switch action {
	case ActionWarning:
		return auth.StatusWarned, nil
	case ActionReview:
		return auth.StatusUnderReview, nil
	case ActionTempBan7d:
		t := now.Add(7 * 24 * time.Hour)
		return auth.StatusBanned, &t
	case ActionTempBan30d:
		t := now.Add(30 * 24 * time.Hour)
		return auth.StatusBanned, &t
	case ActionPermanentBan:
		return auth.StatusBannedPermanent, nil
	default:
		return "", nil
	}
}

// severity orders statuses so escalation never downgrades
var severity = map[string]int{
	auth.StatusActive:          0,
	auth.StatusWarned:          1,
	auth.StatusUnderReview:     2,
	auth.StatusBanned:          3,
	auth.StatusBannedPermanent: 4,
}

// isUpgrade reports whether moving from current to next raises severity
func isUpgrade(current, next string) bool {
	return severity[next] > severity[current]
}
