package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"podcast-be/internal/dto"
	"podcast-be/internal/entity"
	"podcast-be/internal/model"
	"podcast-be/internal/pkg/apperror"
	"podcast-be/internal/pkg/logger"
	"podcast-be/internal/repository/specification"
	"podcast-be/internal/testutil"
	"podcast-be/pkg/gateway"
	"podcast-be/pkg/idempotency"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test_secret"

type webhookFixture struct {
	*subscriptionFixture
	webhooks IWebhookService
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	f := newSubscriptionFixture(t)
	nop := logger.NewNopLogger()
	return &webhookFixture{
		subscriptionFixture: f,
		webhooks: NewWebhookService(
			gateway.NewStripeClient("", testWebhookSecret),
			f.service,
			idempotency.NewMemoryStore(time.Hour),
			time.Hour,
			nop,
			nop,
		),
	}
}

func stripeEvent(t *testing.T, id, eventType string, object interface{}) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"id":     id,
		"object": "event",
		"type":   eventType,
		"data":   map[string]interface{}{"object": object},
	})
	require.NoError(t, err)
	return payload
}

func (f *webhookFixture) deliver(t *testing.T, payload []byte) error {
	t.Helper()
	return f.webhooks.HandleStripe(context.Background(), payload, testutil.SignStripePayload(testWebhookSecret, payload, time.Now()))
}

func (f *webhookFixture) pendingPayment(t *testing.T, userId uuid.UUID, plan *entity.Plan, txn string) *entity.Payment {
	t.Helper()
	payment := &entity.Payment{
		Id:            uuid.New(),
		UserId:        userId,
		PlanId:        plan.Id,
		Amount:        plan.Price,
		Currency:      plan.Currency,
		Gateway:       entity.PaymentGatewayStripe,
		Status:        entity.PaymentStatusPending,
		TransactionId: txn,
		Purpose:       entity.PaymentPurposeSubscription,
		PaymentDate:   time.Now(),
	}
	ctx := context.Background()
	require.NoError(t, f.uowFactory.NewUnitOfWork(ctx).PaymentRepository().Create(ctx, payment))
	return payment
}

func TestHandleStripe_RejectsBadSignature(t *testing.T) {
	f := newWebhookFixture(t)
	payload := stripeEvent(t, "evt_bad", gateway.EventPaymentIntentPaymentFailed, map[string]interface{}{"id": "pi_1"})

	err := f.webhooks.HandleStripe(context.Background(), payload, testutil.SignStripePayload("whsec_other", payload, time.Now()))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Contains(t, err.Error(), "Webhook Error")

	err = f.webhooks.HandleStripe(context.Background(), payload, "")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestHandleStripe_UnknownPaymentIntentIsNoop(t *testing.T) {
	f := newWebhookFixture(t)
	payload := stripeEvent(t, "evt_unknown", gateway.EventPaymentIntentPaymentFailed, map[string]interface{}{
		"id":                 "pi_does_not_exist",
		"last_payment_error": map[string]interface{}{"message": "Your card was declined."},
	})

	require.NoError(t, f.deliver(t, payload))

	var count int64
	require.NoError(t, f.db.Model(&model.Payment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestHandleStripe_UnmatchedCheckoutIsNoop(t *testing.T) {
	f := newWebhookFixture(t)
	basic := testutil.CreatePlan(t, f.db, "Basic", 999, 30)
	user := testutil.CreateUser(t, f.db, "stranger")
	other := f.pendingPayment(t, user.Id, basic, "cs_someone_else")

	payload := stripeEvent(t, "evt_cs_unknown", gateway.EventCheckoutSessionCompleted, map[string]interface{}{
		"id":             "cs_unknown",
		"payment_intent": "pi_unknown",
		"customer":       "cus_unknown",
		"subscription":   "sub_unknown",
	})
	require.NoError(t, f.deliver(t, payload))

	assert.Equal(t, entity.PaymentStatusPending, f.payment(t, other.TransactionId).Status)
	var subs int64
	require.NoError(t, f.db.Model(&model.Subscription{}).Count(&subs).Error)
	assert.Zero(t, subs)
}

func TestHandleStripe_PaymentIntentFailureFailsPayment(t *testing.T) {
	f := newWebhookFixture(t)
	basic := testutil.CreatePlan(t, f.db, "Basic", 1000, 30)
	user := testutil.CreateUser(t, f.db, "declinedcard")
	sub := testutil.CreateSubscription(t, f.db, user.Id, basic, entity.SubscriptionStatusPendingPayment, time.Now().Add(10*day))
	f.pendingPayment(t, user.Id, basic, "pi_declined")

	payload := stripeEvent(t, "evt_pi_failed", gateway.EventPaymentIntentPaymentFailed, map[string]interface{}{
		"id":                 "pi_declined",
		"last_payment_error": map[string]interface{}{"message": "Card declined"},
	})
	require.NoError(t, f.deliver(t, payload))

	payment := f.payment(t, "pi_declined")
	assert.Equal(t, entity.PaymentStatusFailed, payment.Status)
	assert.Equal(t, "Card declined", payment.FailureReason)
	assert.Equal(t, entity.SubscriptionStatusPaymentFailed, f.subscription(t, sub.Id).Status)
}

func TestHandleStripe_UnhandledEventAcknowledged(t *testing.T) {
	f := newWebhookFixture(t)
	payload := stripeEvent(t, "evt_other", "customer.created", map[string]interface{}{"id": "cus_1"})

	assert.NoError(t, f.deliver(t, payload))
}

func TestHandleStripe_RenewalExtendsFromCurrentEnd(t *testing.T) {
	ctx := context.Background()
	f := newWebhookFixture(t)
	basic := testutil.CreatePlan(t, f.db, "Basic", 999, 30)
	user := testutil.CreateUser(t, f.db, "renewal")
	end := time.Now().Add(3 * day).Truncate(time.Second)
	sub := testutil.CreateSubscription(t, f.db, user.Id, basic, entity.SubscriptionStatusActive, end)
	require.NoError(t, f.db.Model(&model.Subscription{}).Where("id = ?", sub.Id).
		Update("gateway_customer_id", "cus_renew").Error)

	payload := stripeEvent(t, "evt_renew", gateway.EventInvoicePaymentSucceeded, map[string]interface{}{
		"id":             "in_1",
		"customer":       "cus_renew",
		"subscription":   map[string]interface{}{"id": "sub_renew", "object": "subscription"},
		"payment_intent": "pi_renew",
		"billing_reason": "subscription_cycle",
		"amount_paid":    999,
		"currency":       "usd",
	})

	require.NoError(t, f.deliver(t, payload))
	// Replays are swallowed by the idempotency store.
	require.NoError(t, f.deliver(t, payload))

	updated := f.subscription(t, sub.Id)
	assert.Equal(t, entity.SubscriptionStatusActive, updated.Status)
	assert.WithinDuration(t, end.AddDate(0, 0, 30), updated.EndDate, time.Second)
	require.NotNil(t, updated.GatewaySubscriptionId)
	assert.Equal(t, "sub_renew", *updated.GatewaySubscriptionId)

	payments, err := f.uowFactory.NewUnitOfWork(ctx).PaymentRepository().FindAll(ctx, specification.UserOwnedBy{UserID: user.Id})
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "pi_renew", payments[0].TransactionId)
	assert.Equal(t, entity.PaymentStatusCompleted, payments[0].Status)
	assert.Equal(t, entity.PaymentPurposeRenewal, payments[0].Purpose)
	assert.Equal(t, "USD", payments[0].Currency)
	assert.EqualValues(t, 999, payments[0].Amount)
}

func TestHandleStripe_FirstInvoiceSkipped(t *testing.T) {
	f := newWebhookFixture(t)
	basic := testutil.CreatePlan(t, f.db, "Basic", 999, 30)
	user := testutil.CreateUser(t, f.db, "firstinvoice")
	end := time.Now().Add(30 * day).Truncate(time.Second)
	sub := testutil.CreateSubscription(t, f.db, user.Id, basic, entity.SubscriptionStatusActive, end)
	require.NoError(t, f.db.Model(&model.Subscription{}).Where("id = ?", sub.Id).
		Update("gateway_customer_id", "cus_first").Error)

	payload := stripeEvent(t, "evt_first", gateway.EventInvoicePaymentSucceeded, map[string]interface{}{
		"id":             "in_first",
		"customer":       "cus_first",
		"billing_reason": gateway.BillingReasonSubscriptionCreate,
		"amount_paid":    999,
	})
	require.NoError(t, f.deliver(t, payload))

	assert.WithinDuration(t, end, f.subscription(t, sub.Id).EndDate, time.Second)
}

func TestHandleStripe_CheckoutCompletionActivates(t *testing.T) {
	ctx := context.Background()
	f := newWebhookFixture(t)
	premium := testutil.CreatePlan(t, f.db, "Premium", 2499, 30)
	user := testutil.CreateUser(t, f.db, "checkout")

	res, err := f.service.CreateCheckoutSession(ctx, user.Id, &dto.CheckoutSessionRequest{PlanId: premium.Id})
	require.NoError(t, err)
	assert.Equal(t, res.SessionId, res.TransactionId)
	assert.Empty(t, f.settlement.scheduled)

	payload := stripeEvent(t, "evt_checkout", gateway.EventCheckoutSessionCompleted, map[string]interface{}{
		"id":             res.SessionId,
		"payment_intent": nil,
		"customer":       "cus_test",
		"subscription":   "sub_checkout",
	})
	require.NoError(t, f.deliver(t, payload))

	payment := f.payment(t, res.SessionId)
	assert.Equal(t, entity.PaymentStatusCompleted, payment.Status)
	require.NotNil(t, payment.SubscriptionId)

	sub := f.subscription(t, *payment.SubscriptionId)
	assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, premium.Id, sub.PlanId)
	assert.True(t, sub.AutoRenew)
	require.NotNil(t, sub.GatewaySubscriptionId)
	assert.Equal(t, "sub_checkout", *sub.GatewaySubscriptionId)
	require.NotNil(t, sub.GatewayCustomerId)
	assert.Equal(t, "cus_test", *sub.GatewayCustomerId)
}

func TestHandleStripe_SubscriptionDeletedCancels(t *testing.T) {
	f := newWebhookFixture(t)
	basic := testutil.CreatePlan(t, f.db, "Basic", 999, 30)
	user := testutil.CreateUser(t, f.db, "deleted")
	sub := testutil.CreateSubscription(t, f.db, user.Id, basic, entity.SubscriptionStatusActive, time.Now().Add(10*day))
	require.NoError(t, f.db.Model(&model.Subscription{}).Where("id = ?", sub.Id).
		Updates(map[string]interface{}{"gateway_subscription_id": "sub_gone", "auto_renew": true}).Error)

	endedAt := time.Now().Add(-time.Minute).Truncate(time.Second)
	payload := stripeEvent(t, "evt_deleted", gateway.EventCustomerSubscriptionDeleted, map[string]interface{}{
		"id":       "sub_gone",
		"customer": "cus_x",
		"ended_at": endedAt.Unix(),
	})
	require.NoError(t, f.deliver(t, payload))

	updated := f.subscription(t, sub.Id)
	assert.Equal(t, entity.SubscriptionStatusCancelled, updated.Status)
	assert.False(t, updated.AutoRenew)
	assert.WithinDuration(t, endedAt, updated.EndDate, time.Second)
}

func TestHandleStripe_InvoiceFailureMarksPaymentFailed(t *testing.T) {
	f := newWebhookFixture(t)
	basic := testutil.CreatePlan(t, f.db, "Basic", 999, 30)
	user := testutil.CreateUser(t, f.db, "dunning")
	sub := testutil.CreateSubscription(t, f.db, user.Id, basic, entity.SubscriptionStatusActive, time.Now().Add(day))
	require.NoError(t, f.db.Model(&model.Subscription{}).Where("id = ?", sub.Id).
		Update("gateway_customer_id", "cus_dunning").Error)
	f.pendingPayment(t, user.Id, basic, "pi_dunning")

	payload := stripeEvent(t, "evt_inv_failed", gateway.EventInvoicePaymentFailed, map[string]interface{}{
		"id":                   "in_failed",
		"customer":             map[string]interface{}{"id": "cus_dunning", "object": "customer"},
		"payment_intent":       "pi_dunning",
		"last_payment_failure": map[string]interface{}{"message": "Insufficient funds"},
	})
	require.NoError(t, f.deliver(t, payload))

	payment := f.payment(t, "pi_dunning")
	assert.Equal(t, entity.PaymentStatusFailed, payment.Status)
	assert.Equal(t, "Insufficient funds", payment.FailureReason)

	updated := f.subscription(t, sub.Id)
	assert.Equal(t, entity.SubscriptionStatusPaymentFailed, updated.Status)
	assert.False(t, updated.IsActive)
}
