package implementation

import (
	"context"
	"errors"
	"time"

	"podcast-be/internal/entity"
	"podcast-be/internal/mapper"
	"podcast-be/internal/model"
	"podcast-be/internal/repository/contract"
	"podcast-be/internal/repository/specification"

	"gorm.io/gorm"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SubscriptionMapper
}

func NewSubscriptionRepository(db *gorm.DB) contract.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSubscriptionMapper(),
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, sub *entity.Subscription) error {
	m := r.mapper.ToModel(sub)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	plan := sub.Plan
	*sub = *r.mapper.ToEntity(m)
	sub.Plan = plan
	return nil
}

func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, sub *entity.Subscription) error {
	m := r.mapper.ToModel(sub)
	m.Version = sub.Version + 1
	m.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ? AND version = ?", sub.Id, sub.Version).
		Select("*").
		Omit("id", "created_at", "Plan").
		Updates(m)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return contract.ErrStaleVersion
	}

	sub.Version = m.Version
	sub.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *SubscriptionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error) {
	var m model.Subscription
	query := applySpecifications(r.db.WithContext(ctx).Preload("Plan"), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SubscriptionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	var models []*model.Subscription
	query := applySpecifications(r.db.WithContext(ctx).Preload("Plan"), specs...)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	subs := make([]*entity.Subscription, 0, len(models))
	for _, m := range models {
		subs = append(subs, r.mapper.ToEntity(m))
	}
	return subs, nil
}

func (r *SubscriptionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Subscription{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
