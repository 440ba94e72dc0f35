package mapper

import (
	"podcast-be/internal/entity"
	"podcast-be/internal/model"
)

type PaymentMapper struct{}

func NewPaymentMapper() *PaymentMapper {
	return &PaymentMapper{}
}

func (m *PaymentMapper) ToEntity(p *model.Payment) *entity.Payment {
	if p == nil {
		return nil
	}
	return &entity.Payment{
		Id:             p.Id,
		UserId:         p.UserId,
		PlanId:         p.PlanId,
		SubscriptionId: p.SubscriptionId,
		Amount:         p.Amount,
		Currency:       p.Currency,
		Gateway:        entity.PaymentGateway(p.Gateway),
		Status:         entity.PaymentStatus(p.Status),
		TransactionId:  p.TransactionId,
		Purpose:        entity.PaymentPurpose(p.Purpose),
		PaymentDate:    p.PaymentDate,
		PaidAt:         p.PaidAt,
		FailureReason:  p.FailureReason,
		SettleAfter:    p.SettleAfter,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (m *PaymentMapper) ToModel(p *entity.Payment) *model.Payment {
	if p == nil {
		return nil
	}
	return &model.Payment{
		Id:             p.Id,
		UserId:         p.UserId,
		PlanId:         p.PlanId,
		SubscriptionId: p.SubscriptionId,
		Amount:         p.Amount,
		Currency:       p.Currency,
		Gateway:        string(p.Gateway),
		Status:         string(p.Status),
		TransactionId:  p.TransactionId,
		Purpose:        string(p.Purpose),
		PaymentDate:    p.PaymentDate,
		PaidAt:         p.PaidAt,
		FailureReason:  p.FailureReason,
		SettleAfter:    p.SettleAfter,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
