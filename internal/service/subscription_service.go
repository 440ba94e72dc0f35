package service

import (
	"context"
	"errors"
	"time"

	"podcast-be/internal/dto"
	"podcast-be/internal/entity"
	"podcast-be/internal/pkg/apperror"
	"podcast-be/internal/pkg/logger"
	"podcast-be/internal/repository/contract"
	"podcast-be/internal/repository/specification"
	"podcast-be/internal/repository/unitofwork"
	"podcast-be/pkg/events"
	"podcast-be/pkg/gateway"

	"github.com/google/uuid"
)

const defaultRenewalDays = 30

type ISubscriptionService interface {
	CreateFreeSubscription(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionResponse, error)
	GetUserSubscription(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionResponse, error)
	GetById(ctx context.Context, userId uuid.UUID, isAdmin bool, id uuid.UUID) (*dto.SubscriptionResponse, error)
	ListAll(ctx context.Context, status string, page, limit int) (*dto.PageResponse[dto.SubscriptionResponse], error)
	Update(ctx context.Context, userId uuid.UUID, isAdmin bool, id uuid.UUID, req *dto.UpdateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	Cancel(ctx context.Context, userId uuid.UUID, isAdmin bool, id uuid.UUID) (*dto.SubscriptionResponse, error)
	Renew(ctx context.Context, userId uuid.UUID, isAdmin bool, id uuid.UUID, req *dto.RenewSubscriptionRequest) (*dto.SubscriptionResponse, error)
	Activate(ctx context.Context, id uuid.UUID) (*dto.SubscriptionResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*dto.SubscriptionResponse, error)

	// Paid flows, see subscription_payment.go.
	InitiateUpgrade(ctx context.Context, userId uuid.UUID, req *dto.UpgradeSubscriptionRequest) (*dto.UpgradeSubscriptionResponse, error)
	ProcessSubscription(ctx context.Context, userId uuid.UUID, req *dto.ProcessSubscriptionRequest) (*dto.ProcessSubscriptionResponse, error)
	CreateCheckoutSession(ctx context.Context, userId uuid.UUID, req *dto.CheckoutSessionRequest) (*dto.CheckoutSessionResponse, error)
	SettlePayment(ctx context.Context, paymentId uuid.UUID, success bool, reason string) error

	// Gateway-reported outcomes, see subscription_gateway.go.
	CompleteCheckout(ctx context.Context, c CheckoutCompletion) error
	RecordRenewal(ctx context.Context, inv InvoiceOutcome) error
	RecordRenewalFailure(ctx context.Context, inv InvoiceOutcome) error
	MarkGatewayCancelled(ctx context.Context, c GatewayCancellation) error
	FailPaymentByTransaction(ctx context.Context, transactionId, reason string) error
}

type SubscriptionOptions struct {
	FreePlanName    string
	FreeTrialDays   int
	SettlementDelay time.Duration
	SuccessURL      string
	CancelURL       string
}

type subscriptionService struct {
	uowFactory     unitofwork.RepositoryFactory
	settlement     ISettlementService
	gateway        gateway.Client
	eventPublisher events.Publisher
	logger         logger.ILogger
	opts           SubscriptionOptions
}

func NewSubscriptionService(
	uowFactory unitofwork.RepositoryFactory,
	settlement ISettlementService,
	gatewayClient gateway.Client,
	eventPublisher events.Publisher,
	logger logger.ILogger,
	opts SubscriptionOptions,
) ISubscriptionService {
	if opts.FreeTrialDays <= 0 {
		opts.FreeTrialDays = 7
	}
	return &subscriptionService{
		uowFactory:     uowFactory,
		settlement:     settlement,
		gateway:        gatewayClient,
		eventPublisher: eventPublisher,
		logger:         logger,
		opts:           opts,
	}
}

// CreateFreeSubscription starts the trial plan. The unique index on
// subscriptions.user_id turns a concurrent second attempt into a conflict.
func (s *subscriptionService) CreateFreeSubscription(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Internal(err)
	}
	defer uow.Rollback()

	plan, err := uow.PlanRepository().FindOne(ctx, specification.ByName{Name: s.opts.FreePlanName})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if plan == nil || !plan.IsActive {
		return nil, apperror.NotFound("free plan is not available")
	}

	existing, err := uow.SubscriptionRepository().FindOne(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if existing != nil {
		return nil, apperror.Conflict("user already has a subscription")
	}

	now := time.Now()
	sub := &entity.Subscription{
		Id:        uuid.New(),
		UserId:    userId,
		PlanId:    plan.Id,
		Plan:      plan,
		StartDate: now,
		EndDate:   now.AddDate(0, 0, s.opts.FreeTrialDays),
		AutoRenew: false,
		Amount:    0,
	}
	sub.ForceStatus(entity.SubscriptionStatusActive)

	if err := uow.SubscriptionRepository().Create(ctx, sub); err != nil {
		return nil, persistenceError(err, "user already has a subscription")
	}
	if err := s.syncUser(ctx, uow, sub); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.Internal(err)
	}

	s.logger.Info(moduleSubscription, "Free subscription created", map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"user_id":         userId.String(),
		"end_date":        sub.EndDate,
	})
	publishEvent(ctx, s.eventPublisher, s.logger, events.SubscriptionCreated, subscriptionEventData(sub))

	res := toSubscriptionResponse(sub)
	return &res, nil
}

func (s *subscriptionService) GetUserSubscription(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if sub == nil {
		return nil, apperror.NotFound("no subscription found")
	}
	s.expireIfLapsed(ctx, uow, sub)

	res := toSubscriptionResponse(sub)
	return &res, nil
}

func (s *subscriptionService) GetById(ctx context.Context, userId uuid.UUID, isAdmin bool, id uuid.UUID) (*dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sub, err := s.findAccessible(ctx, uow, userId, isAdmin, id)
	if err != nil {
		return nil, err
	}
	s.expireIfLapsed(ctx, uow, sub)

	res := toSubscriptionResponse(sub)
	return &res, nil
}

func (s *subscriptionService) ListAll(ctx context.Context, status string, page, limit int) (*dto.PageResponse[dto.SubscriptionResponse], error) {
	if status != "" && !entity.IsValidSubscriptionStatus(status) {
		return nil, apperror.Validation("invalid subscription status: " + status)
	}
	page, limit = normalizePaging(page, limit)

	var filters []specification.Specification
	if status != "" {
		filters = append(filters, specification.ByStatus{Status: status})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	total, err := uow.SubscriptionRepository().Count(ctx, filters...)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	specs := append(filters,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Page(page, limit),
	)
	subs, err := uow.SubscriptionRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	items := make([]dto.SubscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		s.expireIfLapsed(ctx, uow, sub)
		items = append(items, toSubscriptionResponse(sub))
	}
	res := dto.NewPage(items, total, page, limit)
	return &res, nil
}

// Update lets owners toggle auto-renew. Only admins may move the end date.
func (s *subscriptionService) Update(ctx context.Context, userId uuid.UUID, isAdmin bool, id uuid.UUID, req *dto.UpdateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if req.EndDate != nil && !isAdmin {
		return nil, apperror.Forbidden("only admins can change the end date")
	}

	return s.mutate(ctx, userId, isAdmin, id, func(sub *entity.Subscription) error {
		if req.AutoRenew != nil {
			sub.AutoRenew = *req.AutoRenew
		}
		if req.EndDate != nil {
			sub.EndDate = *req.EndDate
		}
		return nil
	})
}

// Cancel asks the gateway to stop billing first. A gateway failure is
// logged and the local cancellation still goes through.
func (s *subscriptionService) Cancel(ctx context.Context, userId uuid.UUID, isAdmin bool, id uuid.UUID) (*dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	current, err := s.findAccessible(ctx, uow, userId, isAdmin, id)
	if err != nil {
		return nil, err
	}
	if current.GatewaySubscriptionId != nil && s.gateway != nil {
		if err := s.gateway.CancelSubscription(ctx, *current.GatewaySubscriptionId); err != nil {
			s.logger.Warn(moduleGateway, "Gateway cancellation failed, cancelling locally", map[string]interface{}{
				"subscription_id":         id.String(),
				"gateway_subscription_id": *current.GatewaySubscriptionId,
				"error":                   err.Error(),
			})
		}
	}

	var superseded []uuid.UUID
	res, err := s.mutateTx(ctx, userId, isAdmin, id, func(uow unitofwork.UnitOfWork, sub *entity.Subscription) error {
		if err := sub.TransitionTo(entity.SubscriptionStatusCancelled); err != nil {
			return transitionError(err)
		}
		ids, err := s.supersedePending(ctx, uow, sub.UserId, "subscription cancelled")
		superseded = ids
		return err
	})
	if err != nil {
		return nil, err
	}
	s.cancelSettlements(superseded)

	s.logger.Info(moduleSubscription, "Subscription cancelled", map[string]interface{}{
		"subscription_id": id.String(),
		"by_admin":        isAdmin,
	})
	publishEvent(ctx, s.eventPublisher, s.logger, events.SubscriptionCancelled, map[string]interface{}{
		"subscription_id": res.Id.String(),
		"user_id":         res.UserId.String(),
	})
	return res, nil
}

// Renew reactivates the subscription until endDate, or for a default term
// when no date is given.
func (s *subscriptionService) Renew(ctx context.Context, userId uuid.UUID, isAdmin bool, id uuid.UUID, req *dto.RenewSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	now := time.Now()
	endDate := now.AddDate(0, 0, defaultRenewalDays)
	if req != nil && req.EndDate != nil {
		if !req.EndDate.After(now) {
			return nil, apperror.Validation("end_date must be in the future")
		}
		endDate = *req.EndDate
	}

	res, err := s.mutate(ctx, userId, isAdmin, id, func(sub *entity.Subscription) error {
		if !sub.CanRenew() {
			return apperror.Validation("cannot renew a subscription in status " + string(sub.Status))
		}
		if err := sub.TransitionTo(entity.SubscriptionStatusActive); err != nil {
			return transitionError(err)
		}
		sub.EndDate = endDate
		sub.ExpiryMessage = ""
		return nil
	})
	if err != nil {
		return nil, err
	}
	publishEvent(ctx, s.eventPublisher, s.logger, events.SubscriptionRenewed, map[string]interface{}{
		"subscription_id": res.Id.String(),
		"user_id":         res.UserId.String(),
		"end_date":        res.EndDate,
	})
	return res, nil
}

func (s *subscriptionService) Activate(ctx context.Context, id uuid.UUID) (*dto.SubscriptionResponse, error) {
	res, err := s.mutate(ctx, uuid.Nil, true, id, func(sub *entity.Subscription) error {
		if err := sub.TransitionTo(entity.SubscriptionStatusActive); err != nil {
			return transitionError(err)
		}
		sub.ExpiryMessage = ""
		return nil
	})
	if err != nil {
		return nil, err
	}
	publishEvent(ctx, s.eventPublisher, s.logger, events.SubscriptionActivated, map[string]interface{}{
		"subscription_id": res.Id.String(),
		"user_id":         res.UserId.String(),
	})
	return res, nil
}

func (s *subscriptionService) Deactivate(ctx context.Context, id uuid.UUID) (*dto.SubscriptionResponse, error) {
	return s.mutate(ctx, uuid.Nil, true, id, func(sub *entity.Subscription) error {
		if err := sub.TransitionTo(entity.SubscriptionStatusExpired); err != nil {
			return transitionError(err)
		}
		return nil
	})
}

func (s *subscriptionService) mutate(ctx context.Context, userId uuid.UUID, isAdmin bool, id uuid.UUID, apply func(sub *entity.Subscription) error) (*dto.SubscriptionResponse, error) {
	return s.mutateTx(ctx, userId, isAdmin, id, func(_ unitofwork.UnitOfWork, sub *entity.Subscription) error {
		return apply(sub)
	})
}

// mutateTx loads the subscription, applies the change and persists it with
// the version check inside one transaction.
func (s *subscriptionService) mutateTx(ctx context.Context, userId uuid.UUID, isAdmin bool, id uuid.UUID, apply func(uow unitofwork.UnitOfWork, sub *entity.Subscription) error) (*dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Internal(err)
	}
	defer uow.Rollback()

	sub, err := s.findAccessible(ctx, uow, userId, isAdmin, id)
	if err != nil {
		return nil, err
	}
	if err := apply(uow, sub); err != nil {
		return nil, err
	}
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return nil, persistenceError(err, staleWriteMessage)
	}
	if err := s.syncUser(ctx, uow, sub); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.Internal(err)
	}

	res := toSubscriptionResponse(sub)
	return &res, nil
}

func (s *subscriptionService) findAccessible(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, isAdmin bool, id uuid.UUID) (*entity.Subscription, error) {
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if sub == nil {
		return nil, apperror.NotFound("subscription not found")
	}
	if !isAdmin && !sub.IsOwnedBy(userId) {
		return nil, apperror.Forbidden("you do not have access to this subscription")
	}
	return sub, nil
}

// expireIfLapsed persists a lazy expiry outside any transaction. A lost race
// with a concurrent writer is fine; the next read retries.
func (s *subscriptionService) expireIfLapsed(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription) {
	if !sub.ExpireIfLapsed(time.Now()) {
		return
	}
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		if !errors.Is(err, contract.ErrStaleVersion) {
			s.logger.Error(moduleSubscription, "Failed to persist expiry", map[string]interface{}{
				"subscription_id": sub.Id.String(),
				"error":           err.Error(),
			})
		}
		return
	}
	if err := s.syncUser(ctx, uow, sub); err != nil {
		s.logger.Warn(moduleSubscription, "Failed to refresh user after expiry", map[string]interface{}{
			"user_id": sub.UserId.String(),
			"error":   err.Error(),
		})
	}
	s.logger.Info(moduleSubscription, "Subscription expired", map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"end_date":        sub.EndDate,
	})
}

// syncUser refreshes the subscription summary cached on the user row.
func (s *subscriptionService) syncUser(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription) error {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: sub.UserId})
	if err != nil {
		return apperror.Internal(err)
	}
	if user == nil {
		return nil
	}
	plan := sub.Plan
	if plan == nil || plan.Id != sub.PlanId {
		plan, err = uow.PlanRepository().FindOne(ctx, specification.ByID{ID: sub.PlanId})
		if err != nil {
			return apperror.Internal(err)
		}
		sub.Plan = plan
	}
	user.ApplySubscription(sub, plan)
	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// supersedePending cancels the user's scheduled payments that have not been
// settled yet. The caller cancels their timers after commit.
func (s *subscriptionService) supersedePending(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, reason string) ([]uuid.UUID, error) {
	pending, err := uow.PaymentRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.AwaitingSettlement{},
	)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	ids := make([]uuid.UUID, 0, len(pending))
	for _, p := range pending {
		if err := p.Cancel(reason); err != nil {
			continue
		}
		if err := uow.PaymentRepository().Transition(ctx, p, entity.PaymentStatusPending); err != nil {
			if errors.Is(err, contract.ErrStaleVersion) {
				continue
			}
			return nil, apperror.Internal(err)
		}
		ids = append(ids, p.Id)
	}
	return ids, nil
}

func (s *subscriptionService) cancelSettlements(ids []uuid.UUID) {
	if s.settlement == nil {
		return
	}
	for _, id := range ids {
		s.settlement.Cancel(id)
	}
}

func subscriptionEventData(sub *entity.Subscription) map[string]interface{} {
	return map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"user_id":         sub.UserId.String(),
		"plan_id":         sub.PlanId.String(),
		"status":          string(sub.Status),
		"end_date":        sub.EndDate,
	}
}

func paymentEventData(p *entity.Payment) map[string]interface{} {
	data := map[string]interface{}{
		"payment_id":     p.Id.String(),
		"transaction_id": p.TransactionId,
		"user_id":        p.UserId.String(),
		"plan_id":        p.PlanId.String(),
		"amount":         p.Amount,
		"currency":       p.Currency,
		"purpose":        string(p.Purpose),
		"status":         string(p.Status),
	}
	if p.FailureReason != "" {
		data["reason"] = p.FailureReason
	}
	return data
}
