package service

import (
	"context"
	"errors"

	"podcast-be/internal/dto"
	"podcast-be/internal/pkg/apperror"
	"podcast-be/internal/pkg/logger"
	"podcast-be/internal/repository/unitofwork"
	"podcast-be/pkg/admin/dashboard"
)

const (
	LogSourceApp      = "app"
	LogSourceWebhooks = "webhooks"
)

type IAdminService interface {
	// Dashboard
	GetDashboardStats(ctx context.Context) (*dto.AdminDashboardStats, error)

	// Logs. source selects the application log or the webhook audit log.
	GetSystemLogs(ctx context.Context, source string, page, limit int, level string) ([]dto.LogListResponse, error)
	GetLogDetail(ctx context.Context, source, logId string) (*dto.LogDetailResponse, error)
}

type adminService struct {
	uowFactory          unitofwork.RepositoryFactory
	dashboardAggregator *dashboard.Aggregator
	logger              logger.ILogger
	webhookLogger       logger.ILogger
}

func NewAdminService(
	uowFactory unitofwork.RepositoryFactory,
	logger logger.ILogger,
	webhookLogger logger.ILogger,
) IAdminService {
	return &adminService{
		uowFactory:          uowFactory,
		dashboardAggregator: dashboard.NewAggregator(logger),
		logger:              logger,
		webhookLogger:       webhookLogger,
	}
}

func (s *adminService) GetDashboardStats(ctx context.Context) (*dto.AdminDashboardStats, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	stats, err := s.dashboardAggregator.GetStats(ctx, uow)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return stats, nil
}

func (s *adminService) GetSystemLogs(ctx context.Context, source string, page, limit int, level string) ([]dto.LogListResponse, error) {
	src, err := s.logSource(source)
	if err != nil {
		return nil, err
	}
	page, limit = normalizePaging(page, limit)
	logs, err := s.dashboardAggregator.GetSystemLogs(ctx, src, page, limit, level)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return logs, nil
}

func (s *adminService) GetLogDetail(ctx context.Context, source, logId string) (*dto.LogDetailResponse, error) {
	src, err := s.logSource(source)
	if err != nil {
		return nil, err
	}
	entry, err := s.dashboardAggregator.GetLogDetail(ctx, src, logId)
	if errors.Is(err, logger.ErrLogNotFound) {
		return nil, apperror.NotFound("log not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return entry, nil
}

func (s *adminService) logSource(source string) (logger.ILogger, error) {
	switch source {
	case "", LogSourceApp:
		return s.logger, nil
	case LogSourceWebhooks:
		return s.webhookLogger, nil
	}
	return nil, apperror.Validation("unknown log source: " + source)
}
