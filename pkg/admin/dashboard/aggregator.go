package dashboard

import (
	"context"
	"time"

	"podcast-be/internal/dto"
	"podcast-be/internal/entity"
	"podcast-be/internal/pkg/logger"
	"podcast-be/internal/repository/specification"
	"podcast-be/internal/repository/unitofwork"
)

// Aggregator handles dashboard statistics
type Aggregator struct {
	logger logger.ILogger
}

// NewAggregator creates a new dashboard aggregator
func NewAggregator(logger logger.ILogger) *Aggregator {
	return &Aggregator{
		logger: logger,
	}
}

// GetStats retrieves dashboard statistics
func (a *Aggregator) GetStats(ctx context.Context, uow unitofwork.UnitOfWork) (*dto.AdminDashboardStats, error) {
	totalUsers, err := uow.UserRepository().Count(ctx)
	if err != nil {
		return nil, err
	}

	verifiedUsers, err := uow.UserRepository().Count(ctx, specification.Filter("verified", true))
	if err != nil {
		return nil, err
	}

	activeSubs, err := uow.SubscriptionRepository().Count(ctx, specification.ByStatus{Status: string(entity.SubscriptionStatusActive)})
	if err != nil {
		return nil, err
	}

	pendingPayments, err := uow.PaymentRepository().Count(ctx, specification.ByStatus{Status: string(entity.PaymentStatusPending)})
	if err != nil {
		return nil, err
	}

	analytics, err := uow.PaymentRepository().Analytics(ctx, nil, nil)
	if err != nil {
		return nil, err
	}

	upcoming, err := uow.SessionRepository().Count(ctx,
		specification.NotCancelled{},
		specification.StartsAfter{Time: time.Now()},
	)
	if err != nil {
		return nil, err
	}

	// Recent payments are best effort; the counters above are what matter.
	recent, err := uow.PaymentRepository().FindAll(ctx,
		specification.OrderBy{Field: "payment_date", Desc: true},
		specification.Pagination{Limit: 5},
	)
	recentDtos := make([]dto.RecentPayment, 0, len(recent))
	if err != nil {
		a.logger.Warn("ADMIN", "Failed to load recent payments", map[string]interface{}{"error": err.Error()})
	}
	for _, p := range recent {
		recentDtos = append(recentDtos, dto.RecentPayment{
			TransactionId: p.TransactionId,
			UserId:        p.UserId,
			Amount:        p.Amount,
			Currency:      p.Currency,
			Status:        string(p.Status),
			Purpose:       string(p.Purpose),
			PaymentDate:   p.PaymentDate,
		})
	}

	return &dto.AdminDashboardStats{
		TotalUsers:          totalUsers,
		VerifiedUsers:       verifiedUsers,
		ActiveSubscriptions: activeSubs,
		PendingPayments:     pendingPayments,
		TotalRevenue:        analytics.TotalRevenue,
		UpcomingSessions:    upcoming,
		RecentPayments:      recentDtos,
	}, nil
}

// GetSystemLogs retrieves a page of log entries, newest first
func (a *Aggregator) GetSystemLogs(ctx context.Context, loggerSvc logger.ILogger, page, limit int, level string) ([]dto.LogListResponse, error) {
	logs, err := loggerSvc.GetLogs(level, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	res := make([]dto.LogListResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, toLogListResponse(l))
	}
	return res, nil
}

// GetLogDetail retrieves a single log entry
func (a *Aggregator) GetLogDetail(ctx context.Context, loggerSvc logger.ILogger, logId string) (*dto.LogDetailResponse, error) {
	l, err := loggerSvc.GetLogById(logId)
	if err != nil {
		return nil, err
	}

	return &dto.LogDetailResponse{
		LogListResponse: toLogListResponse(*l),
		Details:         l.Details,
	}, nil
}

func toLogListResponse(l logger.LogEntry) dto.LogListResponse {
	return dto.LogListResponse{
		Id:        l.Id,
		Level:     l.Level,
		Module:    l.Module,
		Message:   l.Message,
		Timestamp: l.Timestamp,
	}
}
