package implementation_test

import (
	"context"
	"testing"
	"time"

	"podcast-be/internal/entity"
	"podcast-be/internal/repository/contract"
	"podcast-be/internal/repository/implementation"
	"podcast-be/internal/repository/specification"
	"podcast-be/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionRepository_OnePerUser(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := implementation.NewSubscriptionRepository(db)
	user := testutil.CreateUser(t, db, "erin")
	plan := testutil.CreatePlan(t, db, "Free", 0, 7)

	newSub := func() *entity.Subscription {
		sub := &entity.Subscription{
			Id:        uuid.New(),
			UserId:    user.Id,
			PlanId:    plan.Id,
			StartDate: time.Now(),
			EndDate:   time.Now().AddDate(0, 0, 7),
		}
		sub.ForceStatus(entity.SubscriptionStatusActive)
		return sub
	}

	require.NoError(t, repo.Create(ctx, newSub()))
	assert.ErrorIs(t, repo.Create(ctx, newSub()), contract.ErrDuplicate)
}

func TestSubscriptionRepository_VersionedUpdate(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := implementation.NewSubscriptionRepository(db)
	user := testutil.CreateUser(t, db, "frank")
	plan := testutil.CreatePlan(t, db, "Pro", 1000, 30)
	created := testutil.CreateSubscription(t, db, user.Id, plan, entity.SubscriptionStatusActive, time.Now().AddDate(0, 0, 10))

	a, err := repo.FindOne(ctx, specification.ByID{ID: created.Id})
	require.NoError(t, err)
	b, err := repo.FindOne(ctx, specification.ByID{ID: created.Id})
	require.NoError(t, err)
	require.NotNil(t, a.Plan)
	assert.Equal(t, "Pro", a.Plan.Name)

	a.AutoRenew = true
	require.NoError(t, repo.Update(ctx, a))
	assert.Equal(t, created.Version+1, a.Version)

	require.NoError(t, b.TransitionTo(entity.SubscriptionStatusCancelled))
	assert.ErrorIs(t, repo.Update(ctx, b), contract.ErrStaleVersion)

	stored, err := repo.FindOne(ctx, specification.UserOwnedBy{UserID: user.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionStatusActive, stored.Status)
	assert.True(t, stored.AutoRenew)
}

func TestSubscriptionRepository_UpdatePersistsFalseValues(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := implementation.NewSubscriptionRepository(db)
	user := testutil.CreateUser(t, db, "gina")
	plan := testutil.CreatePlan(t, db, "Pro", 1000, 30)
	created := testutil.CreateSubscription(t, db, user.Id, plan, entity.SubscriptionStatusActive, time.Now().AddDate(0, 0, 10))

	sub, err := repo.FindOne(ctx, specification.ByID{ID: created.Id})
	require.NoError(t, err)
	require.NoError(t, sub.TransitionTo(entity.SubscriptionStatusExpired))
	require.NoError(t, repo.Update(ctx, sub))

	stored, err := repo.FindOne(ctx, specification.ByID{ID: created.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionStatusExpired, stored.Status)
	assert.False(t, stored.IsActive)
}
