package contract

import (
	"context"

	"podcast-be/internal/entity"
	"podcast-be/internal/repository/specification"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.LiveSession) error
	Update(ctx context.Context, session *entity.LiveSession) error
	// FindOne preloads participants.
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.LiveSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LiveSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	AddParticipant(ctx context.Context, participant *entity.SessionParticipant) error
}
