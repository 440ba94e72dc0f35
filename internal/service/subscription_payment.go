package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"podcast-be/internal/dto"
	"podcast-be/internal/entity"
	"podcast-be/internal/pkg/apperror"
	"podcast-be/internal/repository/contract"
	"podcast-be/internal/repository/specification"
	"podcast-be/internal/repository/unitofwork"
	"podcast-be/pkg/events"
	"podcast-be/pkg/gateway"

	"github.com/google/uuid"
)

var errAlreadySettled = errors.New("payment already settled")

// InitiateUpgrade switches the subscription to the new plan pending payment.
// The unused value of the current term is credited against the new price.
func (s *subscriptionService) InitiateUpgrade(ctx context.Context, userId uuid.UUID, req *dto.UpgradeSubscriptionRequest) (*dto.UpgradeSubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Internal(err)
	}
	defer uow.Rollback()

	plan, err := s.purchasablePlan(ctx, uow, req.PlanId)
	if err != nil {
		return nil, err
	}

	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if sub == nil {
		return nil, apperror.NotFound("no existing subscription found")
	}
	if sub.PlanId == plan.Id && sub.Status == entity.SubscriptionStatusActive {
		return nil, apperror.Validation("already subscribed to this plan")
	}

	now := time.Now()
	proration := ComputeProration(sub.Plan, sub.EndDate, plan, now)

	superseded, err := s.supersedePending(ctx, uow, userId, "superseded by a newer upgrade")
	if err != nil {
		return nil, err
	}

	txn, err := generateTransactionId("upgrade", now)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	payment := s.newPendingPayment(userId, plan, &sub.Id, proration.FinalAmount, entity.PaymentGatewayStripe, entity.PaymentPurposeUpgrade, txn, now)
	if err := uow.PaymentRepository().Create(ctx, payment); err != nil {
		return nil, persistenceError(err, "transaction id already exists")
	}

	if err := sub.TransitionTo(entity.SubscriptionStatusPendingPayment); err != nil {
		return nil, transitionError(err)
	}
	sub.PlanId = plan.Id
	sub.Plan = plan
	sub.Amount = plan.Price
	sub.PaymentId = &txn
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return nil, persistenceError(err, staleWriteMessage)
	}
	if err := s.syncUser(ctx, uow, sub); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.Internal(err)
	}

	s.cancelSettlements(superseded)
	s.settlement.Schedule(payment)

	s.logger.Info(moduleSubscription, "Upgrade initiated", map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"plan_id":         plan.Id.String(),
		"transaction_id":  payment.TransactionId,
		"refund":          proration.Refund,
		"final_amount":    proration.FinalAmount,
	})

	return &dto.UpgradeSubscriptionResponse{
		Subscription:  toSubscriptionResponse(sub),
		TransactionId: payment.TransactionId,
		Proration:     toProrationResponse(proration),
	}, nil
}

// ProcessSubscription records a pending purchase of plan and schedules its
// settlement. The subscription itself changes only when the payment settles.
func (s *subscriptionService) ProcessSubscription(ctx context.Context, userId uuid.UUID, req *dto.ProcessSubscriptionRequest) (*dto.ProcessSubscriptionResponse, error) {
	method := entity.PaymentGatewayStripe
	if req.PaymentMethod != "" {
		method = entity.PaymentGateway(req.PaymentMethod)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Internal(err)
	}
	defer uow.Rollback()

	plan, err := s.purchasablePlan(ctx, uow, req.PlanId)
	if err != nil {
		return nil, err
	}

	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, apperror.Internal(err)
	}

	now := time.Now()
	purpose := entity.PaymentPurposeSubscription
	var proration Proration
	var subId *uuid.UUID
	if sub != nil {
		purpose = entity.PaymentPurposeUpgrade
		proration = ComputeProration(sub.Plan, sub.EndDate, plan, now)
		subId = &sub.Id
	} else {
		proration = ComputeProration(nil, now, plan, now)
	}

	superseded, err := s.supersedePending(ctx, uow, userId, "superseded by a newer payment")
	if err != nil {
		return nil, err
	}

	txn, err := generateTransactionId("txn", now)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	payment := s.newPendingPayment(userId, plan, subId, proration.FinalAmount, method, purpose, txn, now)
	if err := uow.PaymentRepository().Create(ctx, payment); err != nil {
		return nil, persistenceError(err, "transaction id already exists")
	}

	// Bumping the version serializes concurrent purchases for one user.
	if sub != nil {
		if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
			return nil, persistenceError(err, staleWriteMessage)
		}
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.Internal(err)
	}

	s.cancelSettlements(superseded)
	s.settlement.Schedule(payment)

	s.logger.Info(modulePayment, "Subscription payment initiated", map[string]interface{}{
		"transaction_id": payment.TransactionId,
		"user_id":        userId.String(),
		"plan_id":        plan.Id.String(),
		"amount":         payment.Amount,
		"purpose":        string(purpose),
	})

	return &dto.ProcessSubscriptionResponse{
		TransactionId: payment.TransactionId,
		Status:        string(payment.Status),
		Amount:        payment.Amount,
		PlanName:      plan.Name,
		RefundAmount:  proration.Refund,
		FinalAmount:   proration.FinalAmount,
	}, nil
}

// CreateCheckoutSession opens a hosted checkout for a recurring plan. The
// pending payment is keyed on the gateway session id and is settled by the
// checkout.session.completed webhook.
func (s *subscriptionService) CreateCheckoutSession(ctx context.Context, userId uuid.UUID, req *dto.CheckoutSessionRequest) (*dto.CheckoutSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	plan, err := s.purchasablePlan(ctx, uow, req.PlanId)
	if err != nil {
		return nil, err
	}
	if plan.IsFree() {
		return nil, apperror.Validation("the free plan does not require checkout")
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}

	if user.StripeCustomerId == nil {
		customerId, err := s.gateway.CreateCustomer(ctx, gateway.CustomerParams{
			Email:  user.Email,
			Name:   user.Name,
			UserId: user.Id.String(),
		})
		if err != nil {
			return nil, s.gatewayError("create customer", err)
		}
		user.StripeCustomerId = &customerId
		if err := uow.UserRepository().Update(ctx, user); err != nil {
			return nil, apperror.Internal(err)
		}
	}

	now := time.Now()
	reference, err := generateTransactionId("chk", now)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	session, err := s.gateway.CreateCheckoutSession(ctx, gateway.CheckoutParams{
		CustomerId:   *user.StripeCustomerId,
		Reference:    reference,
		PlanName:     plan.Name,
		PriceId:      plan.StripePriceId,
		Amount:       plan.Price,
		Currency:     strings.ToLower(plan.Currency),
		IntervalDays: plan.DurationDays,
		SuccessURL:   s.opts.SuccessURL,
		CancelURL:    s.opts.CancelURL,
		Metadata: map[string]string{
			"user_id":   userId.String(),
			"plan_id":   plan.Id.String(),
			"reference": reference,
		},
	})
	if err != nil {
		return nil, s.gatewayError("create checkout session", err)
	}

	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	purpose := entity.PaymentPurposeSubscription
	var subId *uuid.UUID
	if sub != nil {
		purpose = entity.PaymentPurposeUpgrade
		subId = &sub.Id
	}

	payment := s.newPendingPayment(userId, plan, subId, plan.Price, entity.PaymentGatewayStripe, purpose, session.Id, now)
	payment.SettleAfter = nil
	if err := uow.PaymentRepository().Create(ctx, payment); err != nil {
		return nil, persistenceError(err, "transaction id already exists")
	}

	s.logger.Info(moduleGateway, "Checkout session created", map[string]interface{}{
		"session_id": session.Id,
		"user_id":    userId.String(),
		"plan_id":    plan.Id.String(),
	})

	return &dto.CheckoutSessionResponse{
		SessionId:     session.Id,
		URL:           session.URL,
		TransactionId: payment.TransactionId,
	}, nil
}

// SettlePayment applies the outcome of a scheduled settlement. Payments that
// are no longer pending are left alone.
func (s *subscriptionService) SettlePayment(ctx context.Context, paymentId uuid.UUID, success bool, reason string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	payment, err := uow.PaymentRepository().FindOne(ctx, specification.ByID{ID: paymentId})
	if err != nil {
		return err
	}
	if payment == nil || !payment.IsPending() {
		s.logger.Debug(moduleSettlement, "Nothing to settle", map[string]interface{}{
			"payment_id": paymentId.String(),
		})
		return nil
	}

	outcome, err := s.settle(ctx, uow, payment, success, reason, gatewayRefs{})
	if errors.Is(err, errAlreadySettled) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.announce(ctx, outcome)
	return nil
}

type gatewayRefs struct {
	CustomerId     string
	SubscriptionId string
}

type settlementOutcome struct {
	payment      *entity.Payment
	subscription *entity.Subscription
	created      bool
}

// settle completes or fails a pending payment and moves its subscription
// accordingly. It must run inside uow's transaction.
func (s *subscriptionService) settle(ctx context.Context, uow unitofwork.UnitOfWork, payment *entity.Payment, success bool, reason string, refs gatewayRefs) (*settlementOutcome, error) {
	now := time.Now()
	outcome := &settlementOutcome{payment: payment}

	if success {
		plan, err := uow.PlanRepository().FindOne(ctx, specification.ByID{ID: payment.PlanId})
		if err != nil {
			return nil, err
		}
		if plan == nil {
			success, reason = false, "Plan no longer exists"
		} else {
			if err := payment.Complete(now); err != nil {
				return nil, errAlreadySettled
			}
			sub, created, err := s.activateForPayment(ctx, uow, payment, plan, now, refs)
			if err != nil {
				return nil, err
			}
			outcome.subscription, outcome.created = sub, created
		}
	}

	if !success {
		if err := payment.Fail(reason); err != nil {
			return nil, errAlreadySettled
		}
		sub, err := s.failWaitingSubscription(ctx, uow, payment.UserId)
		if err != nil {
			return nil, err
		}
		outcome.subscription = sub
	}

	if err := uow.PaymentRepository().Transition(ctx, payment, entity.PaymentStatusPending); err != nil {
		if errors.Is(err, contract.ErrStaleVersion) {
			return nil, errAlreadySettled
		}
		return nil, err
	}
	if outcome.subscription != nil {
		if err := s.syncUser(ctx, uow, outcome.subscription); err != nil {
			return nil, err
		}
	}
	return outcome, nil
}

// activateForPayment upserts the user's subscription onto the paid plan for
// a full term starting now.
func (s *subscriptionService) activateForPayment(ctx context.Context, uow unitofwork.UnitOfWork, payment *entity.Payment, plan *entity.Plan, now time.Time, refs gatewayRefs) (*entity.Subscription, bool, error) {
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.UserOwnedBy{UserID: payment.UserId})
	if err != nil {
		return nil, false, err
	}

	txn := payment.TransactionId
	created := sub == nil
	if created {
		sub = &entity.Subscription{
			Id:        uuid.New(),
			UserId:    payment.UserId,
			StartDate: now,
		}
		sub.ForceStatus(entity.SubscriptionStatusActive)
	} else if err := sub.TransitionTo(entity.SubscriptionStatusActive); err != nil {
		return nil, false, err
	}

	sub.PlanId = plan.Id
	sub.Plan = plan
	sub.EndDate = now.AddDate(0, 0, plan.DurationDays)
	sub.Amount = plan.Price
	sub.ExpiryMessage = ""
	sub.PaymentId = &txn
	if refs.CustomerId != "" {
		sub.GatewayCustomerId = &refs.CustomerId
	}
	if refs.SubscriptionId != "" {
		sub.GatewaySubscriptionId = &refs.SubscriptionId
		sub.AutoRenew = true
	}

	if created {
		err = uow.SubscriptionRepository().Create(ctx, sub)
	} else {
		err = uow.SubscriptionRepository().Update(ctx, sub)
	}
	if err != nil {
		return nil, false, err
	}
	payment.SubscriptionId = &sub.Id
	return sub, created, nil
}

// failWaitingSubscription marks the user's subscription payment_failed when
// it was switched to a new plan ahead of this payment. A subscription still
// running on its paid term is left untouched.
func (s *subscriptionService) failWaitingSubscription(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.Subscription, error) {
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.Status != entity.SubscriptionStatusPendingPayment {
		return nil, nil
	}
	if err := sub.TransitionTo(entity.SubscriptionStatusPaymentFailed); err != nil {
		return nil, err
	}
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *subscriptionService) announce(ctx context.Context, o *settlementOutcome) {
	p := o.payment
	details := map[string]interface{}{
		"payment_id":     p.Id.String(),
		"transaction_id": p.TransactionId,
		"status":         string(p.Status),
	}

	if p.Status == entity.PaymentStatusCompleted {
		s.logger.Info(moduleSettlement, "Payment settled", details)
		publishEvent(ctx, s.eventPublisher, s.logger, events.PaymentCompleted, paymentEventData(p))
		if o.subscription != nil {
			eventType := events.SubscriptionActivated
			if o.created {
				eventType = events.SubscriptionCreated
			}
			publishEvent(ctx, s.eventPublisher, s.logger, eventType, subscriptionEventData(o.subscription))
		}
		return
	}

	details["reason"] = p.FailureReason
	s.logger.Warn(moduleSettlement, "Payment failed", details)
	publishEvent(ctx, s.eventPublisher, s.logger, events.PaymentFailed, paymentEventData(p))
}

func (s *subscriptionService) purchasablePlan(ctx context.Context, uow unitofwork.UnitOfWork, planId uuid.UUID) (*entity.Plan, error) {
	plan, err := uow.PlanRepository().FindOne(ctx, specification.ByID{ID: planId})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if plan == nil {
		return nil, apperror.NotFound("plan not found")
	}
	if !plan.IsActive {
		return nil, apperror.Validation("plan is no longer available")
	}
	return plan, nil
}

func (s *subscriptionService) newPendingPayment(userId uuid.UUID, plan *entity.Plan, subId *uuid.UUID, amount int64, gw entity.PaymentGateway, purpose entity.PaymentPurpose, txn string, now time.Time) *entity.Payment {
	settleAfter := now.Add(s.opts.SettlementDelay)
	return &entity.Payment{
		Id:             uuid.New(),
		UserId:         userId,
		PlanId:         plan.Id,
		SubscriptionId: subId,
		Amount:         amount,
		Currency:       plan.Currency,
		Gateway:        gw,
		Status:         entity.PaymentStatusPending,
		TransactionId:  txn,
		Purpose:        purpose,
		PaymentDate:    now,
		SettleAfter:    &settleAfter,
	}
}

func (s *subscriptionService) gatewayError(op string, err error) error {
	s.logger.Error(moduleGateway, "Gateway call failed", map[string]interface{}{
		"operation": op,
		"error":     err.Error(),
	})
	if errors.Is(err, gateway.ErrNotConfigured) {
		return apperror.Validation("online checkout is not available")
	}
	return apperror.Internal(err)
}

func toProrationResponse(p Proration) dto.ProrationResponse {
	return dto.ProrationResponse{
		RemainingDays: p.RemainingDays,
		RefundAmount:  p.Refund,
		FinalAmount:   p.FinalAmount,
	}
}
