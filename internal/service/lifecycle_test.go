package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/model"
)

func TestDecidePayment_Transitions(t *testing.T) {
	cases := []struct {
		name    string
		status  model.MembershipStatus
		success bool
		want    paymentAction
	}{
		{"pending payment success activates", model.StatusPendingPayment, true, actionActivate},
		{"pending payment failure marks failed", model.StatusPendingPayment, false, actionMarkFailed},
		{"active absorbs duplicate success", model.StatusActive, true, actionNoop},
		{"active absorbs duplicate failure", model.StatusActive, false, actionNoop},
		{"expired absorbs late callback", model.StatusExpired, true, actionNoop},
		{"revoked absorbs late callback", model.StatusRevoked, false, actionNoop},
		{"pending approval rejects payment", model.StatusPendingApproval, true, actionConflict},
		{"unknown status rejects", model.MembershipStatus("BOGUS"), true, actionConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, decidePayment(tc.status, tc.success))
		})
	}
}

func TestActivationWindow(t *testing.T) {
	now := time.Date(2025, 4, 10, 9, 30, 0, 0, time.UTC)
	start, end := activationWindow(now, 365)
	assert.Equal(t, now, start)
	assert.Equal(t, now.Add(365*24*time.Hour), end)

	// Local times normalize to UTC.
	ist := time.FixedZone("UTC+5:30", 5*3600+1800)
	start, end = activationWindow(now.In(ist), 30)
	assert.Equal(t, time.UTC, start.Location())
	assert.True(t, start.Equal(now))
	assert.True(t, end.Equal(now.Add(30*24*time.Hour)))
}

func TestMembershipStatusTerminal(t *testing.T) {
	assert.True(t, model.StatusExpired.Terminal())
	assert.True(t, model.StatusRevoked.Terminal())
	assert.False(t, model.StatusActive.Terminal())
	assert.False(t, model.StatusPendingPayment.Terminal())
	assert.False(t, model.StatusPendingApproval.Terminal())
}
