// Package testutil provides an isolated SQLite database and fixtures for
// package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"podcast-be/internal/entity"
	"podcast-be/internal/mapper"
	"podcast-be/internal/model"
	"podcast-be/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens a private in-memory database with the full schema. Each test
// gets its own named database so parallel packages do not share rows.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])

	db, err := database.Open(database.Options{
		Dialect:  database.DialectSQLite,
		DSN:      dsn,
		LogLevel: gormlogger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func CreatePlan(t *testing.T, db *gorm.DB, name string, price int64, durationDays int) *entity.Plan {
	t.Helper()
	m := &model.Plan{
		Name:           name,
		Description:    name + " plan",
		Price:          price,
		Currency:       "USD",
		DurationDays:   durationDays,
		Features:       datatypes.JSONSlice[string]{"public_sessions"},
		StorageQuotaMB: 100,
		IsActive:       true,
	}
	require.NoError(t, db.Create(m).Error)
	return mapper.NewPlanMapper().ToEntity(m)
}

func CreateUser(t *testing.T, db *gorm.DB, userName string) *entity.User {
	t.Helper()
	m := &model.User{
		UserName:     userName,
		Name:         "Test " + userName,
		Email:        userName + "@example.com",
		PasswordHash: "not-a-real-hash",
		Role:         string(entity.UserRoleUser),
		Verified:     true,
	}
	require.NoError(t, db.Create(m).Error)
	return mapper.NewUserMapper().ToEntity(m)
}

// CreateSubscription inserts a subscription row directly, bypassing the
// lifecycle rules.
func CreateSubscription(t *testing.T, db *gorm.DB, userId uuid.UUID, plan *entity.Plan, status entity.SubscriptionStatus, endDate time.Time) *entity.Subscription {
	t.Helper()
	m := &model.Subscription{
		UserId:    userId,
		PlanId:    plan.Id,
		Status:    string(status),
		StartDate: time.Now().Add(-time.Hour),
		EndDate:   endDate,
		IsActive:  status == entity.SubscriptionStatusActive,
		Amount:    plan.Price,
	}
	require.NoError(t, db.Create(m).Error)
	sub := mapper.NewSubscriptionMapper().ToEntity(m)
	sub.Plan = plan
	return sub
}

// SignStripePayload builds a Stripe-Signature header for payload.
func SignStripePayload(secret string, payload []byte, at time.Time) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: at,
	}).Header
}
