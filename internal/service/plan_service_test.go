package service

import (
	"context"
	"testing"

	"podcast-be/internal/dto"
	"podcast-be/internal/pkg/apperror"
	"podcast-be/internal/pkg/logger"
	"podcast-be/internal/repository/unitofwork"
	"podcast-be/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanCatalog(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	plans := NewPlanService(unitofwork.NewRepositoryFactory(db), logger.NewNopLogger(), "USD")

	price := int64(2499)
	premium, err := plans.Create(ctx, &dto.CreatePlanRequest{
		Name:         " Premium ",
		Description:  "Everything",
		Price:        &price,
		DurationDays: 30,
		Features:     []string{"hd_audio", "private_sessions"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Premium", premium.Name)
	assert.Equal(t, "USD", premium.Currency)
	assert.True(t, premium.IsActive)

	free := int64(0)
	_, err = plans.Create(ctx, &dto.CreatePlanRequest{Name: "Free", Description: "Trial", Price: &free, DurationDays: 7, Currency: "eur"})
	require.NoError(t, err)

	_, err = plans.Create(ctx, &dto.CreatePlanRequest{Name: "Premium", Description: "Again", Price: &price, DurationDays: 30})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	active, err := plans.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Free", active[0].Name)
	assert.Equal(t, "EUR", active[0].Currency)

	byName, err := plans.GetByName(ctx, "Premium")
	require.NoError(t, err)
	assert.Equal(t, premium.Id, byName.Id)

	require.NoError(t, plans.Deactivate(ctx, premium.Id))
	active, err = plans.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := plans.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cheaper := int64(1999)
	updated, err := plans.Update(ctx, premium.Id, &dto.UpdatePlanRequest{Price: &cheaper})
	require.NoError(t, err)
	assert.EqualValues(t, 1999, updated.Price)
	assert.False(t, updated.IsActive)

	_, err = plans.Get(ctx, uuid.New())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.True(t, apperror.Is(plans.Deactivate(ctx, uuid.New()), apperror.KindNotFound))
}
