package mapper

import (
	"podcast-be/internal/entity"
	"podcast-be/internal/model"
)

type SubscriptionMapper struct {
	planMapper *PlanMapper
}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{
		planMapper: NewPlanMapper(),
	}
}

func (m *SubscriptionMapper) ToEntity(s *model.Subscription) *entity.Subscription {
	if s == nil {
		return nil
	}
	return &entity.Subscription{
		Id:                    s.Id,
		UserId:                s.UserId,
		PlanId:                s.PlanId,
		Plan:                  m.planMapper.ToEntity(s.Plan),
		Status:                entity.SubscriptionStatus(s.Status),
		StartDate:             s.StartDate,
		EndDate:               s.EndDate,
		IsActive:              s.IsActive,
		AutoRenew:             s.AutoRenew,
		Amount:                s.Amount,
		ExpiryMessage:         s.ExpiryMessage,
		PaymentId:             s.PaymentId,
		GatewaySubscriptionId: s.GatewaySubscriptionId,
		GatewayCustomerId:     s.GatewayCustomerId,
		Version:               s.Version,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
}

// ToModel leaves the Plan association empty so writes never cascade into
// the catalog.
func (m *SubscriptionMapper) ToModel(s *entity.Subscription) *model.Subscription {
	if s == nil {
		return nil
	}
	return &model.Subscription{
		Id:                    s.Id,
		UserId:                s.UserId,
		PlanId:                s.PlanId,
		Status:                string(s.Status),
		StartDate:             s.StartDate,
		EndDate:               s.EndDate,
		IsActive:              s.IsActive,
		AutoRenew:             s.AutoRenew,
		Amount:                s.Amount,
		ExpiryMessage:         s.ExpiryMessage,
		PaymentId:             s.PaymentId,
		GatewaySubscriptionId: s.GatewaySubscriptionId,
		GatewayCustomerId:     s.GatewayCustomerId,
		Version:               s.Version,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
}
