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
	"gorm.io/gorm/clause"
)

type SessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewSessionRepository(db *gorm.DB) contract.SessionRepository {
	return &SessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *SessionRepositoryImpl) Create(ctx context.Context, session *entity.LiveSession) error {
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return translateError(err)
	}
	*session = *r.mapper.ToEntity(m)
	return nil
}

func (r *SessionRepositoryImpl) Update(ctx context.Context, session *entity.LiveSession) error {
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(m).Error; err != nil {
		return translateError(err)
	}
	participants := session.Participants
	*session = *r.mapper.ToEntity(m)
	session.Participants = participants
	return nil
}

func (r *SessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.LiveSession, error) {
	var m model.LiveSession
	query := applySpecifications(r.db.WithContext(ctx).Preload("Participants"), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LiveSession, error) {
	var models []*model.LiveSession
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	sessions := make([]*entity.LiveSession, 0, len(models))
	for _, m := range models {
		sessions = append(sessions, r.mapper.ToEntity(m))
	}
	return sessions, nil
}

func (r *SessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.LiveSession{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SessionRepositoryImpl) AddParticipant(ctx context.Context, participant *entity.SessionParticipant) error {
	m := r.mapper.ParticipantToModel(participant)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*participant = *r.mapper.ParticipantToEntity(m)
	return nil
}
