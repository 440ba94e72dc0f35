package implementation

import (
	"context"
	"errors"

	"podcast-be/internal/entity"
	"podcast-be/internal/mapper"
	"podcast-be/internal/model"
	"podcast-be/internal/repository/contract"
	"podcast-be/internal/repository/specification"

	"gorm.io/gorm"
)

type PlanRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PlanMapper
}

func NewPlanRepository(db *gorm.DB) contract.PlanRepository {
	return &PlanRepositoryImpl{
		db:     db,
		mapper: mapper.NewPlanMapper(),
	}
}

func (r *PlanRepositoryImpl) Create(ctx context.Context, plan *entity.Plan) error {
	m := r.mapper.ToModel(plan)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*plan = *r.mapper.ToEntity(m)
	return nil
}

func (r *PlanRepositoryImpl) Update(ctx context.Context, plan *entity.Plan) error {
	m := r.mapper.ToModel(plan)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return translateError(err)
	}
	*plan = *r.mapper.ToEntity(m)
	return nil
}

func (r *PlanRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Plan, error) {
	var m model.Plan
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PlanRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Plan, error) {
	var models []*model.Plan
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	plans := make([]*entity.Plan, 0, len(models))
	for _, m := range models {
		plans = append(plans, r.mapper.ToEntity(m))
	}
	return plans, nil
}
