package contract

import (
	"context"
	"time"

	"podcast-be/internal/entity"
	"podcast-be/internal/repository/specification"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	// Transition persists the mutable fields of payment (status, failure
	// reason, paid-at, settlement schedule, subscription link) only while
	// the stored status is still from. Returns ErrStaleVersion when another
	// writer moved the payment first.
	Transition(ctx context.Context, payment *entity.Payment, from entity.PaymentStatus) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Payment, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Payment, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	Analytics(ctx context.Context, from, to *time.Time) (*entity.PaymentAnalytics, error)
}
