package service

import (
	"context"
	"math"
	"time"

	"podcast-be/internal/dto"
	"podcast-be/internal/entity"
	"podcast-be/internal/pkg/apperror"
	"podcast-be/internal/pkg/logger"
	"podcast-be/internal/repository/specification"
	"podcast-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const (
	defaultSessionCategory    = "podcast"
	defaultSessionAccessLevel = "public"
	defaultMaxParticipants    = 100
)

type ISessionService interface {
	Create(ctx context.Context, hostId uuid.UUID, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	List(ctx context.Context, query dto.SessionListQuery) (*dto.PageResponse[dto.SessionResponse], error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error)
	Update(ctx context.Context, userId uuid.UUID, isAdmin bool, id uuid.UUID, req *dto.UpdateSessionRequest) (*dto.SessionResponse, error)
	Cancel(ctx context.Context, userId uuid.UUID, isAdmin bool, id uuid.UUID) error
	Join(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.JoinSessionRequest) (*dto.SessionResponse, error)
	Start(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.SessionResponse, error)
	End(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.SessionResponse, error)
}

type sessionService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewSessionService(uowFactory unitofwork.RepositoryFactory, logger logger.ILogger) ISessionService {
	return &sessionService{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

func (s *sessionService) Create(ctx context.Context, hostId uuid.UUID, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	if !req.ScheduledStart.Before(req.ScheduledEnd) {
		return nil, apperror.Validation("scheduled end must be after scheduled start")
	}
	if !req.ScheduledStart.After(time.Now()) {
		return nil, apperror.Validation("scheduled start must be in the future")
	}

	session := &entity.LiveSession{
		Id:                   uuid.New(),
		HostId:               hostId,
		Title:                req.Title,
		Description:          req.Description,
		ScheduledStart:       req.ScheduledStart,
		ScheduledEnd:         req.ScheduledEnd,
		StreamPlatform:       req.StreamPlatform,
		StreamURL:            req.StreamURL,
		ThumbnailURL:         req.ThumbnailURL,
		MaxParticipants:      req.MaxParticipants,
		Category:             req.Category,
		Tags:                 req.Tags,
		AccessLevel:          req.AccessLevel,
		RequiresRegistration: req.RequiresRegistration,
		ChatEnabled:          true,
		RecordingEnabled:     true,
		Settings:             entity.SessionSettings{AllowQuestions: true},
	}
	if session.MaxParticipants == 0 {
		session.MaxParticipants = defaultMaxParticipants
	}
	if session.Category == "" {
		session.Category = defaultSessionCategory
	}
	if session.AccessLevel == "" {
		session.AccessLevel = defaultSessionAccessLevel
	}
	if session.Tags == nil {
		session.Tags = []string{}
	}
	if req.Settings != nil {
		session.Settings = entity.SessionSettings{
			AllowQuestions:   req.Settings.AllowQuestions,
			AllowScreenShare: req.Settings.AllowScreenShare,
			AutoRecord:       req.Settings.AutoRecord,
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SessionRepository().Create(ctx, session); err != nil {
		return nil, apperror.Internal(err)
	}

	s.logger.Info(moduleSession, "Session scheduled", map[string]interface{}{
		"session_id": session.Id.String(),
		"host_id":    hostId.String(),
		"start":      session.ScheduledStart,
	})
	res := toSessionResponse(session)
	return &res, nil
}

// List returns non-cancelled sessions, soonest first.
func (s *sessionService) List(ctx context.Context, query dto.SessionListQuery) (*dto.PageResponse[dto.SessionResponse], error) {
	page, limit := normalizePaging(query.Page, query.Limit)

	filters := []specification.Specification{specification.NotCancelled{}}
	if query.Category != "" {
		filters = append(filters, specification.Filter("category", query.Category))
	}
	if query.AccessLevel != "" {
		filters = append(filters, specification.Filter("access_level", query.AccessLevel))
	}
	if query.UpcomingOnly {
		filters = append(filters, specification.StartsAfter{Time: time.Now()})
	}
	if query.Search != "" {
		filters = append(filters, specification.SessionSearch{Query: query.Search})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	total, err := uow.SessionRepository().Count(ctx, filters...)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	specs := append(filters,
		specification.OrderBy{Field: "scheduled_start"},
		specification.Page(page, limit),
	)
	sessions, err := uow.SessionRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	items := make([]dto.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, toSessionResponse(session))
	}
	res := dto.NewPage(items, total, page, limit)
	return &res, nil
}

func (s *sessionService) Get(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.find(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	res := toSessionResponse(session)
	return &res, nil
}

// Update edits a session. While live, the schedule and platform are frozen
// and changes to them are dropped.
func (s *sessionService) Update(ctx context.Context, userId uuid.UUID, isAdmin bool, id uuid.UUID, req *dto.UpdateSessionRequest) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.findOwned(ctx, uow, userId, isAdmin, id)
	if err != nil {
		return nil, err
	}

	if !session.IsLive {
		if req.ScheduledStart != nil {
			session.ScheduledStart = *req.ScheduledStart
		}
		if req.ScheduledEnd != nil {
			session.ScheduledEnd = *req.ScheduledEnd
		}
		if req.StreamPlatform != nil {
			session.StreamPlatform = *req.StreamPlatform
		}
		if !session.ScheduledStart.Before(session.ScheduledEnd) {
			return nil, apperror.Validation("scheduled end must be after scheduled start")
		}
	}
	if req.Title != nil {
		session.Title = *req.Title
	}
	if req.Description != nil {
		session.Description = *req.Description
	}
	if req.StreamURL != nil {
		session.StreamURL = *req.StreamURL
	}
	if req.ThumbnailURL != nil {
		session.ThumbnailURL = *req.ThumbnailURL
	}
	if req.RecordingURL != nil {
		session.RecordingURL = req.RecordingURL
		session.IsRecorded = true
	}
	if req.Category != nil {
		session.Category = *req.Category
	}
	if req.Tags != nil {
		session.Tags = req.Tags
	}
	if req.AccessLevel != nil {
		session.AccessLevel = *req.AccessLevel
	}
	if req.MaxParticipants != nil {
		if *req.MaxParticipants < len(session.Participants) {
			return nil, apperror.Validation("max participants is below the current participant count")
		}
		session.MaxParticipants = *req.MaxParticipants
	}
	if req.RequiresRegistration != nil {
		session.RequiresRegistration = *req.RequiresRegistration
	}
	if req.ChatEnabled != nil {
		session.ChatEnabled = *req.ChatEnabled
	}
	if req.RecordingEnabled != nil {
		session.RecordingEnabled = *req.RecordingEnabled
	}
	if req.MonetizationEnabled != nil {
		session.MonetizationEnabled = *req.MonetizationEnabled
	}
	if req.Settings != nil {
		session.Settings = entity.SessionSettings{
			AllowQuestions:   req.Settings.AllowQuestions,
			AllowScreenShare: req.Settings.AllowScreenShare,
			AutoRecord:       req.Settings.AutoRecord,
		}
	}

	if err := uow.SessionRepository().Update(ctx, session); err != nil {
		return nil, apperror.Internal(err)
	}
	res := toSessionResponse(session)
	return &res, nil
}

// Cancel is a soft delete. Live sessions must be ended first.
func (s *sessionService) Cancel(ctx context.Context, userId uuid.UUID, isAdmin bool, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.findOwned(ctx, uow, userId, isAdmin, id)
	if err != nil {
		return err
	}
	if session.IsLive {
		return apperror.Validation("cannot cancel a live session")
	}
	if session.IsCancelled {
		return nil
	}
	session.IsCancelled = true
	if err := uow.SessionRepository().Update(ctx, session); err != nil {
		return apperror.Internal(err)
	}
	s.logger.Info(moduleSession, "Session cancelled", map[string]interface{}{"session_id": id.String()})
	return nil
}

func (s *sessionService) Join(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.JoinSessionRequest) (*dto.SessionResponse, error) {
	role := entity.ParticipantRoleListener
	if req != nil && req.Role != "" {
		role = req.Role
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Internal(err)
	}
	defer uow.Rollback()

	session, err := s.find(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	if session.IsCancelled {
		return nil, apperror.Validation("session has been cancelled")
	}
	if session.HasParticipant(userId) {
		return nil, apperror.Validation("already joined this session")
	}
	if len(session.Participants) >= session.MaxParticipants {
		return nil, apperror.Validation("session is full")
	}

	participant := &entity.SessionParticipant{
		Id:        uuid.New(),
		SessionId: session.Id,
		UserId:    userId,
		Role:      role,
		JoinedAt:  time.Now(),
	}
	if err := uow.SessionRepository().AddParticipant(ctx, participant); err != nil {
		return nil, persistenceError(err, "already joined this session")
	}
	session.Participants = append(session.Participants, *participant)
	session.RegistrationCount = len(session.Participants)
	if err := uow.SessionRepository().Update(ctx, session); err != nil {
		return nil, apperror.Internal(err)
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.Internal(err)
	}

	res := toSessionResponse(session)
	return &res, nil
}

func (s *sessionService) Start(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.findOwned(ctx, uow, userId, false, id)
	if err != nil {
		return nil, err
	}
	if session.IsCancelled {
		return nil, apperror.Validation("session has been cancelled")
	}
	if session.IsLive {
		return nil, apperror.Validation("session is already live")
	}

	now := time.Now()
	session.IsLive = true
	session.ActualStartTime = &now
	session.ActualEndTime = nil
	if err := uow.SessionRepository().Update(ctx, session); err != nil {
		return nil, apperror.Internal(err)
	}

	s.logger.Info(moduleSession, "Session started", map[string]interface{}{"session_id": id.String()})
	res := toSessionResponse(session)
	return &res, nil
}

func (s *sessionService) End(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.findOwned(ctx, uow, userId, false, id)
	if err != nil {
		return nil, err
	}
	if !session.IsLive {
		return nil, apperror.Validation("session is not live")
	}

	now := time.Now()
	session.IsLive = false
	session.ActualEndTime = &now
	if session.ActualStartTime != nil {
		session.DurationMinutes = int(math.Round(now.Sub(*session.ActualStartTime).Minutes()))
	}
	if err := uow.SessionRepository().Update(ctx, session); err != nil {
		return nil, apperror.Internal(err)
	}

	s.logger.Info(moduleSession, "Session ended", map[string]interface{}{
		"session_id": id.String(),
		"duration":   session.DurationMinutes,
	})
	res := toSessionResponse(session)
	return &res, nil
}

func (s *sessionService) find(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*entity.LiveSession, error) {
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if session == nil {
		return nil, apperror.NotFound("session not found")
	}
	return session, nil
}

func (s *sessionService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, isAdmin bool, id uuid.UUID) (*entity.LiveSession, error) {
	session, err := s.find(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && session.HostId != userId {
		return nil, apperror.Forbidden("only the host can manage this session")
	}
	return session, nil
}
