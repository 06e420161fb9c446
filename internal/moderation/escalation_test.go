// internal/moderation/escalation_test.go

package moderation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amoria-app/amoria-backend/internal/auth"
)

func TestEscalationThresholds(t *testing.T) {
	tests := []struct {
		category  string
		reporters int
		want      string
	}{
		{CategoryHarassment, 2, ""},
		{CategoryHarassment, 3, ActionWarning},
		{CategoryHarassment, 4, ActionWarning},
		{CategoryHarassment, 5, ActionTempBan7d},
		{CategoryHarassment, 7, ActionTempBan7d},
		{CategoryHarassment, 8, ActionPermanentBan},
		{CategoryHarassment, 20, ActionPermanentBan},

		{CategoryFakeProfile, 2, ""},
		{CategoryFakeProfile, 3, ActionReview},
		{CategoryFakeProfile, 6, ActionTempBan7d},

		{CategoryInappropriateContent, 1, ""},
		{CategoryInappropriateContent, 2, ActionWarning},
		{CategoryInappropriateContent, 4, ActionReview},
		{CategoryInappropriateContent, 7, ActionTempBan30d},

		{CategoryScam, 1, ""},
		{CategoryScam, 2, ActionReview},
		{CategoryScam, 4, ActionPermanentBan},
	}

	for _, tt := range tests {
		got := escalationFor(tt.category, tt.reporters)
		assert.Equal(t, tt.want, got, "%s with %d reporters", tt.category, tt.reporters)
	}
}

func TestEscalationUnknownCategory(t *testing.T) {
	assert.Equal(t, "", escalationFor("jaywalking", 100))
}

func TestStatusForAction(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	status, until := statusFor(ActionWarning, now)
	assert.Equal(t, auth.StatusWarned, status)
	assert.Nil(t, until)

	status, until = statusFor(ActionReview, now)
	assert.Equal(t, auth.StatusUnderReview, status)
	assert.Nil(t, until)

	status, until = statusFor(ActionTempBan7d, now)
	assert.Equal(t, auth.StatusBanned, status)
	require.NotNil(t, until)
	assert.Equal(t, now.Add(7*24*time.Hour), *until)

	status, until = statusFor(ActionTempBan30d, now)
	assert.Equal(t, auth.StatusBanned, status)
	require.NotNil(t, until)
	assert.Equal(t, now.Add(30*24*time.Hour), *until)

	status, until = statusFor(ActionPermanentBan, now)
	assert.Equal(t, auth.StatusBannedPermanent, status)
	assert.Nil(t, until)

	status, _ = statusFor("unknown", now)
	assert.Equal(t, "", status)
}

func TestStatusNeverDowngrades(t *testing.T) {
	assert.True(t, isUpgrade(auth.StatusActive, auth.StatusWarned))
	assert.True(t, isUpgrade(auth.StatusWarned, auth.StatusBanned))
	assert.True(t, isUpgrade(auth.StatusBanned, auth.StatusBannedPermanent))

	assert.False(t, isUpgrade(auth.StatusBanned, auth.StatusWarned))
	assert.False(t, isUpgrade(auth.StatusBannedPermanent, auth.StatusBanned))
	assert.False(t, isUpgrade(auth.StatusWarned, auth.StatusWarned), "same severity is not an upgrade")
}
