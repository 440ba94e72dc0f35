package contract

import (
	"context"

	"podcast-be/internal/entity"
	"podcast-be/internal/repository/specification"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *entity.Subscription) error
	// Update writes sub only if its Version still matches the stored row and
	// bumps Version on success. Returns ErrStaleVersion otherwise.
	Update(ctx context.Context, sub *entity.Subscription) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
