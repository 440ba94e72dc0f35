package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"podcast-be/internal/dto"
	"podcast-be/internal/entity"
	"podcast-be/internal/pkg/apperror"
	"podcast-be/internal/pkg/logger"
	"podcast-be/internal/repository/contract"
	"podcast-be/internal/repository/specification"
	"podcast-be/internal/repository/unitofwork"
	"podcast-be/pkg/events"

	"github.com/google/uuid"
)

// IPaymentService is the payment ledger. Rows are append-only apart from
// their status transitions.
type IPaymentService interface {
	Record(ctx context.Context, userId uuid.UUID, isAdmin bool, req *dto.CreatePaymentRequest) (*dto.PaymentResponse, error)
	FindByTransactionId(ctx context.Context, userId uuid.UUID, isAdmin bool, transactionId string) (*dto.PaymentResponse, error)
	HistoryForUser(ctx context.Context, userId uuid.UUID) ([]dto.PaymentResponse, error)
	ListAll(ctx context.Context, status string, page, limit int) (*dto.PageResponse[dto.PaymentResponse], error)
	Analytics(ctx context.Context, from, to *time.Time) (*dto.PaymentAnalyticsResponse, error)
	Refund(ctx context.Context, transactionId string) (*dto.PaymentResponse, error)
	Cancel(ctx context.Context, transactionId, reason string) (*dto.PaymentResponse, error)
}

type paymentService struct {
	uowFactory     unitofwork.RepositoryFactory
	settlement     ISettlementService
	eventPublisher events.Publisher
	logger         logger.ILogger
}

func NewPaymentService(
	uowFactory unitofwork.RepositoryFactory,
	settlement ISettlementService,
	eventPublisher events.Publisher,
	logger logger.ILogger,
) IPaymentService {
	return &paymentService{
		uowFactory:     uowFactory,
		settlement:     settlement,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Record stores a ledger entry as given. Non-admins always record against
// themselves.
func (s *paymentService) Record(ctx context.Context, userId uuid.UUID, isAdmin bool, req *dto.CreatePaymentRequest) (*dto.PaymentResponse, error) {
	if !entity.IsValidPaymentPurpose(req.Purpose) {
		return nil, apperror.ValidationFields("validation failed", map[string]string{
			"purpose": "must be one of subscription, one_time, upgrade, renewal",
		})
	}
	status := entity.PaymentStatusPending
	if req.Status != "" {
		if !isAdmin {
			return nil, apperror.Forbidden("only admins can record a settled payment")
		}
		if !entity.IsValidPaymentStatus(req.Status) {
			return nil, apperror.ValidationFields("validation failed", map[string]string{
				"status": "must be one of pending, completed, failed, refunded, cancelled",
			})
		}
		status = entity.PaymentStatus(req.Status)
	}
	gw := entity.PaymentGatewayStripe
	if req.Gateway != "" {
		if !entity.IsValidPaymentGateway(req.Gateway) {
			return nil, apperror.ValidationFields("validation failed", map[string]string{
				"gateway": "must be one of stripe, paypal, razorpay, square",
			})
		}
		gw = entity.PaymentGateway(req.Gateway)
	}

	owner := userId
	if isAdmin && req.UserId != nil {
		owner = *req.UserId
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	plan, err := uow.PlanRepository().FindOne(ctx, specification.ByID{ID: req.PlanId})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if plan == nil {
		return nil, apperror.NotFound("plan not found")
	}

	now := time.Now()
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = plan.Currency
	}
	txn := req.TransactionId
	if txn == "" {
		generated, err := generateTransactionId("txn", now)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		txn = generated
	}

	payment := &entity.Payment{
		Id:             uuid.New(),
		UserId:         owner,
		PlanId:         plan.Id,
		SubscriptionId: req.SubscriptionId,
		Amount:         *req.Amount,
		Currency:       currency,
		Gateway:        gw,
		Status:         status,
		TransactionId:  txn,
		Purpose:        entity.PaymentPurpose(req.Purpose),
		PaymentDate:    now,
	}
	if status == entity.PaymentStatusCompleted {
		payment.PaidAt = &now
	}

	if err := uow.PaymentRepository().Create(ctx, payment); err != nil {
		return nil, persistenceError(err, "transaction id already exists")
	}

	s.logger.Info(modulePayment, "Payment recorded", map[string]interface{}{
		"transaction_id": payment.TransactionId,
		"user_id":        owner.String(),
		"amount":         payment.Amount,
		"status":         string(payment.Status),
	})
	res := toPaymentResponse(payment)
	return &res, nil
}

func (s *paymentService) FindByTransactionId(ctx context.Context, userId uuid.UUID, isAdmin bool, transactionId string) (*dto.PaymentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	payment, err := s.find(ctx, uow, transactionId)
	if err != nil {
		return nil, err
	}
	if !isAdmin && payment.UserId != userId {
		return nil, apperror.Forbidden("you do not have access to this payment")
	}
	res := toPaymentResponse(payment)
	return &res, nil
}

func (s *paymentService) HistoryForUser(ctx context.Context, userId uuid.UUID) ([]dto.PaymentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	payments, err := uow.PaymentRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "payment_date", Desc: true},
	)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	res := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		res = append(res, toPaymentResponse(p))
	}
	return res, nil
}

func (s *paymentService) ListAll(ctx context.Context, status string, page, limit int) (*dto.PageResponse[dto.PaymentResponse], error) {
	if status != "" && !entity.IsValidPaymentStatus(status) {
		return nil, apperror.Validation("invalid payment status: " + status)
	}
	page, limit = normalizePaging(page, limit)

	var filters []specification.Specification
	if status != "" {
		filters = append(filters, specification.ByStatus{Status: status})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	total, err := uow.PaymentRepository().Count(ctx, filters...)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	specs := append(filters,
		specification.OrderBy{Field: "payment_date", Desc: true},
		specification.Page(page, limit),
	)
	payments, err := uow.PaymentRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	items := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		items = append(items, toPaymentResponse(p))
	}
	res := dto.NewPage(items, total, page, limit)
	return &res, nil
}

func (s *paymentService) Analytics(ctx context.Context, from, to *time.Time) (*dto.PaymentAnalyticsResponse, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, apperror.Validation("start date must not be after end date")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	stats, err := uow.PaymentRepository().Analytics(ctx, from, to)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	res := &dto.PaymentAnalyticsResponse{
		From:         stats.From,
		To:           stats.To,
		TotalRevenue: stats.TotalRevenue,
		ByStatus:     make([]dto.PaymentStatusStat, 0, len(stats.ByStatus)),
		ByPlan:       make([]dto.PlanRevenueStat, 0, len(stats.ByPlan)),
	}
	for _, st := range stats.ByStatus {
		res.ByStatus = append(res.ByStatus, dto.PaymentStatusStat{
			Status: string(st.Status),
			Count:  st.Count,
			Total:  st.Total,
		})
	}
	for _, pl := range stats.ByPlan {
		res.ByPlan = append(res.ByPlan, dto.PlanRevenueStat{
			PlanId:   pl.PlanId,
			PlanName: pl.PlanName,
			Count:    pl.Count,
			Revenue:  pl.Revenue,
		})
	}
	return res, nil
}

// Refund marks a completed payment refunded. Money movement happens at the
// gateway; this only records it.
func (s *paymentService) Refund(ctx context.Context, transactionId string) (*dto.PaymentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	payment, err := s.find(ctx, uow, transactionId)
	if err != nil {
		return nil, err
	}
	if err := payment.Refund(); err != nil {
		return nil, transitionError(err)
	}
	if err := uow.PaymentRepository().Transition(ctx, payment, entity.PaymentStatusCompleted); err != nil {
		return nil, s.transitionConflict(err)
	}

	s.logger.Info(modulePayment, "Payment refunded", map[string]interface{}{
		"transaction_id": transactionId,
		"amount":         payment.Amount,
	})
	publishEvent(ctx, s.eventPublisher, s.logger, events.PaymentRefunded, paymentEventData(payment))

	res := toPaymentResponse(payment)
	return &res, nil
}

// Cancel voids a pending payment and its scheduled settlement. A
// subscription that was switched ahead of this payment becomes
// payment_failed.
func (s *paymentService) Cancel(ctx context.Context, transactionId, reason string) (*dto.PaymentResponse, error) {
	if reason == "" {
		reason = "Cancelled by admin"
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Internal(err)
	}
	defer uow.Rollback()

	payment, err := s.find(ctx, uow, transactionId)
	if err != nil {
		return nil, err
	}
	if err := payment.Cancel(reason); err != nil {
		return nil, transitionError(err)
	}
	if err := uow.PaymentRepository().Transition(ctx, payment, entity.PaymentStatusPending); err != nil {
		return nil, s.transitionConflict(err)
	}

	if payment.SubscriptionId != nil {
		sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: *payment.SubscriptionId})
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if sub != nil && sub.Status == entity.SubscriptionStatusPendingPayment &&
			sub.PaymentId != nil && *sub.PaymentId == payment.TransactionId {
			if err := sub.TransitionTo(entity.SubscriptionStatusPaymentFailed); err != nil {
				return nil, transitionError(err)
			}
			if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
				return nil, persistenceError(err, staleWriteMessage)
			}
			user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: sub.UserId})
			if err != nil {
				return nil, apperror.Internal(err)
			}
			if user != nil {
				user.ApplySubscription(sub, sub.Plan)
				if err := uow.UserRepository().Update(ctx, user); err != nil {
					return nil, apperror.Internal(err)
				}
			}
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Internal(err)
	}
	if s.settlement != nil {
		s.settlement.Cancel(payment.Id)
	}

	s.logger.Info(modulePayment, "Payment cancelled", map[string]interface{}{
		"transaction_id": transactionId,
		"reason":         reason,
	})
	res := toPaymentResponse(payment)
	return &res, nil
}

func (s *paymentService) find(ctx context.Context, uow unitofwork.UnitOfWork, transactionId string) (*entity.Payment, error) {
	payment, err := uow.PaymentRepository().FindOne(ctx, specification.ByTransactionID{TransactionID: transactionId})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if payment == nil {
		return nil, apperror.NotFound("payment not found")
	}
	return payment, nil
}

func (s *paymentService) transitionConflict(err error) error {
	if errors.Is(err, contract.ErrStaleVersion) {
		return apperror.Conflict("payment status changed concurrently, please retry")
	}
	return apperror.Internal(err)
}
