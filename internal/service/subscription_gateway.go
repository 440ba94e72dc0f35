package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"podcast-be/internal/entity"
	"podcast-be/internal/repository/contract"
	"podcast-be/internal/repository/specification"
	"podcast-be/internal/repository/unitofwork"
	"podcast-be/pkg/events"

	"github.com/google/uuid"
)

type CheckoutCompletion struct {
	SessionId             string
	PaymentIntentId       string
	CustomerId            string
	GatewaySubscriptionId string
}

type InvoiceOutcome struct {
	InvoiceId             string
	PaymentIntentId       string
	CustomerId            string
	GatewaySubscriptionId string
	AmountPaid            int64
	Currency              string
	FailureReason         string
}

type GatewayCancellation struct {
	GatewaySubscriptionId string
	EndedAt               *time.Time
}

// CompleteCheckout settles the payment opened by a hosted checkout. It is
// matched on the payment intent first and on the session id otherwise.
func (s *subscriptionService) CompleteCheckout(ctx context.Context, c CheckoutCompletion) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	payment, err := s.findPaymentByReference(ctx, uow, c.PaymentIntentId, c.SessionId)
	if err != nil {
		return err
	}
	if payment == nil {
		s.logger.Info(moduleWebhook, "No payment matches completed checkout", map[string]interface{}{
			"session_id":     c.SessionId,
			"payment_intent": c.PaymentIntentId,
		})
		return nil
	}
	if !payment.IsPending() {
		return nil
	}

	outcome, err := s.settle(ctx, uow, payment, true, "", gatewayRefs{
		CustomerId:     c.CustomerId,
		SubscriptionId: c.GatewaySubscriptionId,
	})
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

// RecordRenewal extends the subscription by one plan term from its current
// end date and books the invoice as a completed renewal payment.
func (s *subscriptionService) RecordRenewal(ctx context.Context, inv InvoiceOutcome) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	sub, err := s.findGatewaySubscription(ctx, uow, inv.CustomerId, inv.GatewaySubscriptionId)
	if err != nil {
		return err
	}
	if sub == nil {
		s.logger.Info(moduleWebhook, "No subscription matches renewal invoice", map[string]interface{}{
			"invoice_id": inv.InvoiceId,
			"customer":   inv.CustomerId,
		})
		return nil
	}

	txn := inv.PaymentIntentId
	if txn == "" {
		txn = inv.InvoiceId
	}
	payment, err := uow.PaymentRepository().FindOne(ctx, specification.ByTransactionID{TransactionID: txn})
	if err != nil {
		return err
	}
	if payment != nil && !payment.IsPending() {
		// Already booked by an earlier delivery.
		return nil
	}

	plan := sub.Plan
	if plan == nil {
		if plan, err = uow.PlanRepository().FindOne(ctx, specification.ByID{ID: sub.PlanId}); err != nil {
			return err
		}
		if plan == nil {
			return errors.New("subscription plan not found")
		}
		sub.Plan = plan
	}

	now := time.Now()
	sub.EndDate = sub.EndDate.AddDate(0, 0, plan.DurationDays)
	sub.ForceStatus(entity.SubscriptionStatusActive)
	sub.ExpiryMessage = ""
	sub.PaymentId = &txn
	if sub.GatewaySubscriptionId == nil && inv.GatewaySubscriptionId != "" {
		sub.GatewaySubscriptionId = &inv.GatewaySubscriptionId
	}

	if payment != nil {
		if err := payment.Complete(now); err != nil {
			return nil
		}
		payment.SubscriptionId = &sub.Id
		if err := uow.PaymentRepository().Transition(ctx, payment, entity.PaymentStatusPending); err != nil {
			if errors.Is(err, contract.ErrStaleVersion) {
				return nil
			}
			return err
		}
	} else {
		currency := strings.ToUpper(inv.Currency)
		if currency == "" {
			currency = plan.Currency
		}
		payment = &entity.Payment{
			Id:             uuid.New(),
			UserId:         sub.UserId,
			PlanId:         sub.PlanId,
			SubscriptionId: &sub.Id,
			Amount:         inv.AmountPaid,
			Currency:       currency,
			Gateway:        entity.PaymentGatewayStripe,
			Status:         entity.PaymentStatusCompleted,
			TransactionId:  txn,
			Purpose:        entity.PaymentPurposeRenewal,
			PaymentDate:    now,
			PaidAt:         &now,
		}
		if err := uow.PaymentRepository().Create(ctx, payment); err != nil {
			if errors.Is(err, contract.ErrDuplicate) {
				return nil
			}
			return err
		}
	}

	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return err
	}
	if err := s.syncUser(ctx, uow, sub); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Info(moduleSubscription, "Subscription renewed by gateway", map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"transaction_id":  txn,
		"end_date":        sub.EndDate,
	})
	publishEvent(ctx, s.eventPublisher, s.logger, events.PaymentCompleted, paymentEventData(payment))
	publishEvent(ctx, s.eventPublisher, s.logger, events.SubscriptionRenewed, subscriptionEventData(sub))
	return nil
}

// RecordRenewalFailure fails the invoice's payment, when one is booked, and
// marks the subscription payment_failed.
func (s *subscriptionService) RecordRenewalFailure(ctx context.Context, inv InvoiceOutcome) error {
	reason := inv.FailureReason
	if reason == "" {
		reason = "Payment failed"
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	failed, err := s.failPending(ctx, uow, inv.PaymentIntentId, reason)
	if err != nil {
		return err
	}

	sub, err := s.findGatewaySubscription(ctx, uow, inv.CustomerId, inv.GatewaySubscriptionId)
	if err != nil {
		return err
	}
	if sub != nil {
		sub.ForceStatus(entity.SubscriptionStatusPaymentFailed)
		if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
			return err
		}
		if err := s.syncUser(ctx, uow, sub); err != nil {
			return err
		}
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if failed != nil {
		publishEvent(ctx, s.eventPublisher, s.logger, events.PaymentFailed, paymentEventData(failed))
	}
	if sub != nil {
		s.logger.Warn(moduleSubscription, "Renewal payment failed", map[string]interface{}{
			"subscription_id": sub.Id.String(),
			"reason":          reason,
		})
	}
	return nil
}

// MarkGatewayCancelled mirrors a subscription the gateway has ended.
func (s *subscriptionService) MarkGatewayCancelled(ctx context.Context, c GatewayCancellation) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByGatewaySubscriptionID{SubscriptionID: c.GatewaySubscriptionId})
	if err != nil {
		return err
	}
	if sub == nil {
		s.logger.Info(moduleWebhook, "No subscription matches gateway cancellation", map[string]interface{}{
			"gateway_subscription_id": c.GatewaySubscriptionId,
		})
		return nil
	}

	sub.ForceStatus(entity.SubscriptionStatusCancelled)
	if c.EndedAt != nil {
		sub.EndDate = *c.EndedAt
	} else {
		sub.EndDate = time.Now()
	}
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return err
	}
	if err := s.syncUser(ctx, uow, sub); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	publishEvent(ctx, s.eventPublisher, s.logger, events.SubscriptionCancelled, subscriptionEventData(sub))
	return nil
}

// FailPaymentByTransaction fails a pending payment reported as declined by
// the gateway. Unknown or already settled payments are ignored.
func (s *subscriptionService) FailPaymentByTransaction(ctx context.Context, transactionId, reason string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	failed, err := s.failPending(ctx, uow, transactionId, reason)
	if err != nil {
		return err
	}
	if failed == nil {
		return nil
	}
	sub, err := s.failWaitingSubscription(ctx, uow, failed.UserId)
	if err != nil {
		return err
	}
	if sub != nil {
		if err := s.syncUser(ctx, uow, sub); err != nil {
			return err
		}
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.announce(ctx, &settlementOutcome{payment: failed, subscription: sub})
	return nil
}

func (s *subscriptionService) failPending(ctx context.Context, uow unitofwork.UnitOfWork, transactionId, reason string) (*entity.Payment, error) {
	if transactionId == "" {
		return nil, nil
	}
	payment, err := uow.PaymentRepository().FindOne(ctx, specification.ByTransactionID{TransactionID: transactionId})
	if err != nil || payment == nil {
		return nil, err
	}
	if err := payment.Fail(reason); err != nil {
		return nil, nil
	}
	if err := uow.PaymentRepository().Transition(ctx, payment, entity.PaymentStatusPending); err != nil {
		if errors.Is(err, contract.ErrStaleVersion) {
			return nil, nil
		}
		return nil, err
	}
	return payment, nil
}

func (s *subscriptionService) findPaymentByReference(ctx context.Context, uow unitofwork.UnitOfWork, refs ...string) (*entity.Payment, error) {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		payment, err := uow.PaymentRepository().FindOne(ctx, specification.ByTransactionID{TransactionID: ref})
		if err != nil {
			return nil, err
		}
		if payment != nil {
			return payment, nil
		}
	}
	return nil, nil
}

func (s *subscriptionService) findGatewaySubscription(ctx context.Context, uow unitofwork.UnitOfWork, customerId, gatewaySubscriptionId string) (*entity.Subscription, error) {
	if customerId != "" {
		sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByGatewayCustomerID{CustomerID: customerId})
		if err != nil || sub != nil {
			return sub, err
		}
	}
	if gatewaySubscriptionId != "" {
		return uow.SubscriptionRepository().FindOne(ctx, specification.ByGatewaySubscriptionID{SubscriptionID: gatewaySubscriptionId})
	}
	return nil, nil
}
