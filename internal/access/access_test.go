package access

import (
	"testing"
	"time"

	"cod_confirm/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		status     string
		createdAgo time.Duration
		zeroTime   bool
		accessible bool
		reason     Reason
	}{
		{
			name:       "pending_fresh",
			status:     model.StatusPending,
			createdAgo: time.Hour,
			accessible: true,
			reason:     ReasonNone,
		},
		{
			name:       "pending_at_window_boundary",
			status:     model.StatusPending,
			createdAgo: ExpiryWindow, // 恰好 48h：严格大于才过期
			accessible: true,
			reason:     ReasonNone,
		},
		{
			name:       "pending_expired",
			status:     model.StatusPending,
			createdAgo: 49 * time.Hour,
			accessible: false,
			reason:     ReasonExpired,
		},
		{
			name:       "confirmed",
			status:     model.StatusConfirmed,
			createdAgo: time.Hour,
			accessible: false,
			reason:     ReasonAlreadyConfirmed,
		},
		{
			name:       "confirmed_and_expired_reports_confirmed",
			status:     model.StatusConfirmed,
			createdAgo: 100 * time.Hour,
			accessible: false,
			reason:     ReasonAlreadyConfirmed,
		},
		{
			name:       "cancelled",
			status:     model.StatusCancelled,
			createdAgo: time.Hour,
			accessible: false,
			reason:     ReasonNotPending,
		},
		{
			name:       "unknown_status",
			status:     "weird",
			createdAgo: time.Hour,
			accessible: false,
			reason:     ReasonNotPending,
		},
		{
			name:       "missing_created_at_fails_closed",
			status:     model.StatusPending,
			zeroTime:   true,
			accessible: false,
			reason:     ReasonExpired,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := model.Order{CheckoutToken: "T1", Status: tc.status}
			if !tc.zeroTime {
				o.CreatedAt = now.Add(-tc.createdAgo)
			}

			v := Evaluate(o, now)
			assert.Equal(t, tc.accessible, v.Accessible)
			assert.Equal(t, tc.reason, v.Reason)
		})
	}
}

func TestEvaluateAfterConfirmStaysTerminal(t *testing.T) {
	now := time.Now()
	o := model.Order{
		CheckoutToken: "T1",
		Status:        model.StatusConfirmed,
		CreatedAt:     now.Add(-time.Minute),
	}

	// 确认后无论再裁决多少次、时间推进多久，都是同一个终态
	for _, at := range []time.Time{now, now.Add(time.Hour), now.Add(100 * time.Hour)} {
		v := Evaluate(o, at)
		assert.False(t, v.Accessible)
		assert.Equal(t, ReasonAlreadyConfirmed, v.Reason)
	}
}

func TestEvaluateWithWindow(t *testing.T) {
	now := time.Now()
	o := model.Order{
		CheckoutToken: "T1",
		Status:        model.StatusPending,
		CreatedAt:     now.Add(-2 * time.Hour),
	}

	assert.True(t, EvaluateWithWindow(o, now, 3*time.Hour).Accessible)
	assert.False(t, EvaluateWithWindow(o, now, time.Hour).Accessible)
}
