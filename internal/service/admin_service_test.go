package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"podcast-be/internal/dto"
	"podcast-be/internal/entity"
	"podcast-be/internal/pkg/apperror"
	"podcast-be/internal/pkg/logger"
	"podcast-be/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminDashboardStats(t *testing.T) {
	ctx := context.Background()
	f := newSubscriptionFixture(t)
	basic := testutil.CreatePlan(t, f.db, "Basic", 1000, 30)
	pro := testutil.CreatePlan(t, f.db, "Pro", 2000, 30)
	alice := testutil.CreateUser(t, f.db, "alice")
	testutil.CreateUser(t, f.db, "bob")
	testutil.CreateSubscription(t, f.db, alice.Id, basic, entity.SubscriptionStatusActive, time.Now().Add(15*day))

	upgrade, err := f.service.InitiateUpgrade(ctx, alice.Id, &dto.UpgradeSubscriptionRequest{PlanId: pro.Id})
	require.NoError(t, err)

	admin := NewAdminService(f.uowFactory, logger.NewNopLogger(), logger.NewNopLogger())
	stats, err := admin.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalUsers)
	assert.EqualValues(t, 2, stats.VerifiedUsers)
	assert.EqualValues(t, 0, stats.ActiveSubscriptions)
	assert.EqualValues(t, 1, stats.PendingPayments)
	assert.EqualValues(t, 0, stats.TotalRevenue)
	require.Len(t, stats.RecentPayments, 1)
	assert.Equal(t, upgrade.TransactionId, stats.RecentPayments[0].TransactionId)

	payment := f.payment(t, upgrade.TransactionId)
	require.NoError(t, f.service.SettlePayment(ctx, payment.Id, true, ""))

	stats, err = admin.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.ActiveSubscriptions)
	assert.EqualValues(t, 0, stats.PendingPayments)
	assert.EqualValues(t, 1500, stats.TotalRevenue)
}

func TestAdminLogs(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	appLog := logger.NewIsolatedLogger(filepath.Join(dir, "app.log"))
	webhookLog := logger.NewIsolatedLogger(filepath.Join(dir, "webhooks.log"))

	appLog.Info("PLAN", "Plan created", map[string]interface{}{"name": "Basic"})
	appLog.Error("PAYMENT", "Settlement failed", map[string]interface{}{"error": "boom"})
	webhookLog.Info(moduleWebhook, "Delivery received", map[string]interface{}{"event_id": "evt_1"})
	require.NoError(t, appLog.Sync())
	require.NoError(t, webhookLog.Sync())

	admin := NewAdminService(nil, appLog, webhookLog)

	logs, err := admin.GetSystemLogs(ctx, LogSourceApp, 1, 10, "")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "Settlement failed", logs[0].Message)
	assert.Equal(t, "PAYMENT", logs[0].Module)

	errorsOnly, err := admin.GetSystemLogs(ctx, "", 1, 10, "error")
	require.NoError(t, err)
	require.Len(t, errorsOnly, 1)

	detail, err := admin.GetLogDetail(ctx, LogSourceApp, logs[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "boom", detail.Details["error"])

	hooks, err := admin.GetSystemLogs(ctx, LogSourceWebhooks, 1, 10, "")
	require.NoError(t, err)
	require.Len(t, hooks, 1)
	assert.Equal(t, "Delivery received", hooks[0].Message)

	_, err = admin.GetLogDetail(ctx, LogSourceApp, "missing")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = admin.GetSystemLogs(ctx, "kernel", 1, 10, "")
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}
