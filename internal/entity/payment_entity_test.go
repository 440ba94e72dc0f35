package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayment_Complete(t *testing.T) {
	settle := time.Now()
	p := &Payment{Status: PaymentStatusPending, FailureReason: "old", SettleAfter: &settle}
	now := time.Now()

	require.NoError(t, p.Complete(now))
	assert.Equal(t, PaymentStatusCompleted, p.Status)
	assert.Equal(t, &now, p.PaidAt)
	assert.Empty(t, p.FailureReason)
	assert.Nil(t, p.SettleAfter)

	assert.ErrorIs(t, p.Complete(now), ErrInvalidTransition)
}

func TestPayment_FailDefaultsReason(t *testing.T) {
	p := &Payment{Status: PaymentStatusPending}
	require.NoError(t, p.Fail(""))
	assert.Equal(t, PaymentStatusFailed, p.Status)
	assert.Equal(t, "Payment failed", p.FailureReason)

	assert.ErrorIs(t, p.Fail("again"), ErrInvalidTransition)
}

func TestPayment_RefundOnlyCompleted(t *testing.T) {
	p := &Payment{Status: PaymentStatusPending}
	assert.ErrorIs(t, p.Refund(), ErrInvalidTransition)

	p.Status = PaymentStatusCompleted
	require.NoError(t, p.Refund())
	assert.Equal(t, PaymentStatusRefunded, p.Status)
}

func TestPayment_CancelOnlyPending(t *testing.T) {
	p := &Payment{Status: PaymentStatusCompleted}
	assert.ErrorIs(t, p.Cancel("x"), ErrInvalidTransition)

	p.Status = PaymentStatusPending
	require.NoError(t, p.Cancel("superseded"))
	assert.Equal(t, PaymentStatusCancelled, p.Status)
	assert.Equal(t, "superseded", p.FailureReason)
}

func TestPaymentEnumValidation(t *testing.T) {
	assert.True(t, IsValidPaymentStatus("completed"))
	assert.False(t, IsValidPaymentStatus("success"))
	assert.True(t, IsValidPaymentPurpose("renewal"))
	assert.False(t, IsValidPaymentPurpose("donation"))
	assert.True(t, IsValidPaymentGateway("stripe"))
	assert.False(t, IsValidPaymentGateway("midtrans"))
}
