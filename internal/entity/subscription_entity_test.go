package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscription_TransitionTo(t *testing.T) {
	cases := []struct {
		from SubscriptionStatus
		to   SubscriptionStatus
		ok   bool
	}{
		{SubscriptionStatusPendingPayment, SubscriptionStatusActive, true},
		{SubscriptionStatusPendingPayment, SubscriptionStatusPaymentFailed, true},
		{SubscriptionStatusActive, SubscriptionStatusCancelled, true},
		{SubscriptionStatusActive, SubscriptionStatusExpired, true},
		{SubscriptionStatusExpired, SubscriptionStatusActive, true},
		{SubscriptionStatusCancelled, SubscriptionStatusExpired, false},
		{SubscriptionStatusPaymentFailed, SubscriptionStatusExpired, false},
		{SubscriptionStatusExpired, SubscriptionStatusCancelled, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			sub := &Subscription{Status: tc.from, AutoRenew: true}
			err := sub.TransitionTo(tc.to)
			if !tc.ok {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, tc.from, sub.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.to, sub.Status)
			assert.Equal(t, tc.to == SubscriptionStatusActive, sub.IsActive)
		})
	}
}

func TestSubscription_CanRenew(t *testing.T) {
	cases := map[SubscriptionStatus]bool{
		SubscriptionStatusActive:         true,
		SubscriptionStatusCancelled:      true,
		SubscriptionStatusExpired:        true,
		SubscriptionStatusPendingPayment: false,
		SubscriptionStatusPaymentFailed:  false,
	}
	for status, want := range cases {
		sub := &Subscription{Status: status}
		assert.Equal(t, want, sub.CanRenew(), string(status))
	}
}

func TestSubscription_CancelClearsAutoRenew(t *testing.T) {
	sub := &Subscription{Status: SubscriptionStatusActive, IsActive: true, AutoRenew: true}
	require.NoError(t, sub.TransitionTo(SubscriptionStatusCancelled))
	assert.False(t, sub.AutoRenew)
	assert.False(t, sub.IsActive)
}

func TestSubscription_SameStatusIsNoop(t *testing.T) {
	sub := &Subscription{Status: SubscriptionStatusCancelled}
	assert.NoError(t, sub.TransitionTo(SubscriptionStatusCancelled))
}

func TestSubscription_ForceStatusBypassesTable(t *testing.T) {
	sub := &Subscription{Status: SubscriptionStatusCancelled}
	sub.ForceStatus(SubscriptionStatusPaymentFailed)
	assert.Equal(t, SubscriptionStatusPaymentFailed, sub.Status)
	assert.False(t, sub.IsActive)
}

func TestSubscription_ExpireIfLapsed(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	gatewayId := "sub_123"

	t.Run("lapsed without auto renew", func(t *testing.T) {
		sub := &Subscription{Status: SubscriptionStatusActive, IsActive: true, EndDate: now.Add(-time.Hour)}
		assert.True(t, sub.ExpireIfLapsed(now))
		assert.Equal(t, SubscriptionStatusExpired, sub.Status)
		assert.False(t, sub.IsActive)
		assert.Contains(t, sub.ExpiryMessage, "expired")
	})

	t.Run("still in term", func(t *testing.T) {
		sub := &Subscription{Status: SubscriptionStatusActive, EndDate: now.Add(time.Hour)}
		assert.False(t, sub.ExpireIfLapsed(now))
	})

	t.Run("gateway renews it", func(t *testing.T) {
		sub := &Subscription{
			Status:                SubscriptionStatusActive,
			EndDate:               now.Add(-time.Hour),
			AutoRenew:             true,
			GatewaySubscriptionId: &gatewayId,
		}
		assert.False(t, sub.ExpireIfLapsed(now))
		assert.Equal(t, SubscriptionStatusActive, sub.Status)
	})

	t.Run("not active", func(t *testing.T) {
		sub := &Subscription{Status: SubscriptionStatusCancelled, EndDate: now.Add(-time.Hour)}
		assert.False(t, sub.ExpireIfLapsed(now))
	})
}
