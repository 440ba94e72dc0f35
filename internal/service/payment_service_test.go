package service

import (
	"context"
	"testing"
	"time"

	"podcast-be/internal/dto"
	"podcast-be/internal/entity"
	"podcast-be/internal/pkg/apperror"
	"podcast-be/internal/pkg/logger"
	"podcast-be/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(v int64) *int64 { return &v }

func TestPaymentRecord(t *testing.T) {
	ctx := context.Background()
	f := newSubscriptionFixture(t)
	payments := NewPaymentService(f.uowFactory, f.settlement, nil, logger.NewNopLogger())
	plan := testutil.CreatePlan(t, f.db, "Basic", 999, 30)
	user := testutil.CreateUser(t, f.db, "ledger")

	t.Run("defaults to pending with generated id", func(t *testing.T) {
		res, err := payments.Record(ctx, user.Id, false, &dto.CreatePaymentRequest{
			PlanId:  plan.Id,
			Amount:  amount(999),
			Purpose: string(entity.PaymentPurposeOneTime),
		})
		require.NoError(t, err)
		assert.Equal(t, string(entity.PaymentStatusPending), res.Status)
		assert.Equal(t, "USD", res.Currency)
		assert.Equal(t, string(entity.PaymentGatewayStripe), res.Gateway)
		assert.Equal(t, user.Id, res.UserId)
		assert.Regexp(t, `^txn_\d+_[0-9a-z]{9}$`, res.TransactionId)
	})

	t.Run("unknown purpose names accepted values", func(t *testing.T) {
		_, err := payments.Record(ctx, user.Id, false, &dto.CreatePaymentRequest{
			PlanId:  plan.Id,
			Amount:  amount(1),
			Purpose: "donation",
		})
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, apperror.KindValidation, appErr.Kind)
		assert.Contains(t, appErr.Fields["purpose"], "one_time")
	})

	t.Run("settled status is admin only", func(t *testing.T) {
		_, err := payments.Record(ctx, user.Id, false, &dto.CreatePaymentRequest{
			PlanId:  plan.Id,
			Amount:  amount(999),
			Purpose: string(entity.PaymentPurposeOneTime),
			Status:  string(entity.PaymentStatusCompleted),
		})
		assert.True(t, apperror.Is(err, apperror.KindForbidden))

		res, err := payments.Record(ctx, uuid.New(), true, &dto.CreatePaymentRequest{
			UserId:  &user.Id,
			PlanId:  plan.Id,
			Amount:  amount(999),
			Purpose: string(entity.PaymentPurposeOneTime),
			Status:  string(entity.PaymentStatusCompleted),
		})
		require.NoError(t, err)
		assert.Equal(t, user.Id, res.UserId)
		assert.NotNil(t, res.PaidAt)
	})

	t.Run("duplicate transaction id conflicts", func(t *testing.T) {
		req := &dto.CreatePaymentRequest{
			PlanId:        plan.Id,
			Amount:        amount(999),
			Purpose:       string(entity.PaymentPurposeOneTime),
			TransactionId: "txn_fixed",
		}
		_, err := payments.Record(ctx, user.Id, false, req)
		require.NoError(t, err)
		_, err = payments.Record(ctx, user.Id, false, req)
		assert.True(t, apperror.Is(err, apperror.KindConflict))
	})

	t.Run("unknown plan", func(t *testing.T) {
		_, err := payments.Record(ctx, user.Id, false, &dto.CreatePaymentRequest{
			PlanId:  uuid.New(),
			Amount:  amount(1),
			Purpose: string(entity.PaymentPurposeOneTime),
		})
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
	})
}

func TestPaymentRefund(t *testing.T) {
	ctx := context.Background()
	f := newSubscriptionFixture(t)
	payments := NewPaymentService(f.uowFactory, f.settlement, nil, logger.NewNopLogger())
	plan := testutil.CreatePlan(t, f.db, "Basic", 999, 30)
	user := testutil.CreateUser(t, f.db, "refund")

	pending, err := payments.Record(ctx, user.Id, false, &dto.CreatePaymentRequest{
		PlanId: plan.Id, Amount: amount(999), Purpose: string(entity.PaymentPurposeOneTime),
	})
	require.NoError(t, err)
	_, err = payments.Refund(ctx, pending.TransactionId)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	completed, err := payments.Record(ctx, uuid.New(), true, &dto.CreatePaymentRequest{
		UserId: &user.Id, PlanId: plan.Id, Amount: amount(999),
		Purpose: string(entity.PaymentPurposeOneTime), Status: string(entity.PaymentStatusCompleted),
	})
	require.NoError(t, err)
	res, err := payments.Refund(ctx, completed.TransactionId)
	require.NoError(t, err)
	assert.Equal(t, string(entity.PaymentStatusRefunded), res.Status)

	_, err = payments.Refund(ctx, "txn_missing")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestPaymentCancel_FailsWaitingSubscription(t *testing.T) {
	ctx := context.Background()
	f := newSubscriptionFixture(t)
	payments := NewPaymentService(f.uowFactory, f.settlement, nil, logger.NewNopLogger())
	basic := testutil.CreatePlan(t, f.db, "Basic", 1000, 30)
	pro := testutil.CreatePlan(t, f.db, "Pro", 2000, 30)
	user := testutil.CreateUser(t, f.db, "cancelpay")
	sub := testutil.CreateSubscription(t, f.db, user.Id, basic, entity.SubscriptionStatusActive, time.Now().Add(10*day))

	upgrade, err := f.service.InitiateUpgrade(ctx, user.Id, &dto.UpgradeSubscriptionRequest{PlanId: pro.Id})
	require.NoError(t, err)

	res, err := payments.Cancel(ctx, upgrade.TransactionId, "")
	require.NoError(t, err)
	assert.Equal(t, string(entity.PaymentStatusCancelled), res.Status)
	assert.Equal(t, "Cancelled by admin", res.FailureReason)

	assert.Equal(t, entity.SubscriptionStatusPaymentFailed, f.subscription(t, sub.Id).Status)
	payment := f.payment(t, upgrade.TransactionId)
	assert.Contains(t, f.settlement.cancelled, payment.Id)

	_, err = payments.Cancel(ctx, upgrade.TransactionId, "again")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestPaymentFindByTransactionId_Ownership(t *testing.T) {
	ctx := context.Background()
	f := newSubscriptionFixture(t)
	payments := NewPaymentService(f.uowFactory, f.settlement, nil, logger.NewNopLogger())
	plan := testutil.CreatePlan(t, f.db, "Basic", 999, 30)
	owner := testutil.CreateUser(t, f.db, "payowner")

	rec, err := payments.Record(ctx, owner.Id, false, &dto.CreatePaymentRequest{
		PlanId: plan.Id, Amount: amount(999), Purpose: string(entity.PaymentPurposeOneTime),
	})
	require.NoError(t, err)

	_, err = payments.FindByTransactionId(ctx, uuid.New(), false, rec.TransactionId)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	found, err := payments.FindByTransactionId(ctx, owner.Id, false, rec.TransactionId)
	require.NoError(t, err)
	assert.Equal(t, rec.Id, found.Id)

	history, err := payments.HistoryForUser(ctx, owner.Id)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestPaymentAnalytics_RejectsInvertedRange(t *testing.T) {
	f := newSubscriptionFixture(t)
	payments := NewPaymentService(f.uowFactory, f.settlement, nil, logger.NewNopLogger())
	from := time.Now()
	to := from.Add(-day)

	_, err := payments.Analytics(context.Background(), &from, &to)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = payments.ListAll(context.Background(), "bogus", 1, 10)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}
