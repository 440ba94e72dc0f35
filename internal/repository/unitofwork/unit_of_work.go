package unitofwork

import (
	"context"

	"podcast-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	PlanRepository() contract.PlanRepository
	SubscriptionRepository() contract.SubscriptionRepository
	PaymentRepository() contract.PaymentRepository
	UserRepository() contract.UserRepository
	SessionRepository() contract.SessionRepository
}
