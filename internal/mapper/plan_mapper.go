package mapper

import (
	"podcast-be/internal/entity"
	"podcast-be/internal/model"
)

type PlanMapper struct{}

func NewPlanMapper() *PlanMapper {
	return &PlanMapper{}
}

func (m *PlanMapper) ToEntity(p *model.Plan) *entity.Plan {
	if p == nil {
		return nil
	}
	features := []string(p.Features)
	if features == nil {
		features = []string{}
	}
	return &entity.Plan{
		Id:             p.Id,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		Currency:       p.Currency,
		DurationDays:   p.DurationDays,
		Features:       features,
		StorageQuotaMB: p.StorageQuotaMB,
		MaxPodcasts:    p.MaxPodcasts,
		IsActive:       p.IsActive,
		StripePriceId:  p.StripePriceId,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (m *PlanMapper) ToModel(p *entity.Plan) *model.Plan {
	if p == nil {
		return nil
	}
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return &model.Plan{
		Id:             p.Id,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		Currency:       p.Currency,
		DurationDays:   p.DurationDays,
		Features:       features,
		StorageQuotaMB: p.StorageQuotaMB,
		MaxPodcasts:    p.MaxPodcasts,
		IsActive:       p.IsActive,
		StripePriceId:  p.StripePriceId,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
