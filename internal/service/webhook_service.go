package service

import (
	"context"
	"time"

	"podcast-be/internal/pkg/apperror"
	"podcast-be/internal/pkg/logger"
	"podcast-be/pkg/gateway"
	"podcast-be/pkg/idempotency"
)

// IWebhookService reconciles gateway notifications into the ledger and the
// subscription lifecycle. A verified delivery is always acknowledged, even
// when handling it fails, so the gateway does not retry forever.
type IWebhookService interface {
	HandleStripe(ctx context.Context, payload []byte, signature string) error
}

type webhookService struct {
	gateway       gateway.Client
	subscriptions ISubscriptionService
	idempotency   idempotency.Store
	window        time.Duration
	logger        logger.ILogger
	auditLogger   logger.ILogger
}

func NewWebhookService(
	gatewayClient gateway.Client,
	subscriptions ISubscriptionService,
	store idempotency.Store,
	window time.Duration,
	logger logger.ILogger,
	auditLogger logger.ILogger,
) IWebhookService {
	return &webhookService{
		gateway:       gatewayClient,
		subscriptions: subscriptions,
		idempotency:   store,
		window:        window,
		logger:        logger,
		auditLogger:   auditLogger,
	}
}

func (s *webhookService) HandleStripe(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.VerifyWebhook(payload, signature)
	if err != nil {
		s.auditLogger.Warn(moduleWebhook, "Rejected delivery", map[string]interface{}{
			"error": err.Error(),
			"bytes": len(payload),
		})
		return apperror.Validation("Webhook Error: " + err.Error())
	}

	details := map[string]interface{}{
		"event_id":   event.Id,
		"event_type": event.Type,
	}

	claimed, err := s.idempotency.Claim(ctx, "stripe:"+event.Id, s.window)
	if err != nil {
		s.logger.Warn(moduleWebhook, "Idempotency store unavailable, processing anyway", map[string]interface{}{
			"event_id": event.Id,
			"error":    err.Error(),
		})
		claimed = true
	}
	if !claimed {
		details["outcome"] = "duplicate"
		s.auditLogger.Info(moduleWebhook, "Delivery received", details)
		return nil
	}

	handled, err := s.dispatch(ctx, event)
	switch {
	case err != nil:
		details["outcome"] = "error"
		details["error"] = err.Error()
		s.logger.Error(moduleWebhook, "Failed to handle gateway event", details)
		if relErr := s.idempotency.Release(ctx, "stripe:"+event.Id); relErr != nil {
			s.logger.Warn(moduleWebhook, "Failed to release idempotency key", map[string]interface{}{
				"event_id": event.Id,
				"error":    relErr.Error(),
			})
		}
	case !handled:
		details["outcome"] = "ignored"
	default:
		details["outcome"] = "processed"
	}
	s.auditLogger.Info(moduleWebhook, "Delivery received", details)
	return nil
}

func (s *webhookService) dispatch(ctx context.Context, event *gateway.Event) (bool, error) {
	switch event.Type {
	case gateway.EventCheckoutSessionCompleted:
		obj, err := event.CheckoutCompleted()
		if err != nil {
			return true, err
		}
		return true, s.subscriptions.CompleteCheckout(ctx, CheckoutCompletion{
			SessionId:             obj.SessionId,
			PaymentIntentId:       obj.PaymentIntentId,
			CustomerId:            obj.CustomerId,
			GatewaySubscriptionId: obj.SubscriptionId,
		})

	case gateway.EventInvoicePaymentSucceeded:
		obj, err := event.Invoice()
		if err != nil {
			return true, err
		}
		if obj.BillingReason == gateway.BillingReasonSubscriptionCreate {
			return false, nil
		}
		return true, s.subscriptions.RecordRenewal(ctx, invoiceOutcome(obj))

	case gateway.EventInvoicePaymentFailed:
		obj, err := event.Invoice()
		if err != nil {
			return true, err
		}
		return true, s.subscriptions.RecordRenewalFailure(ctx, invoiceOutcome(obj))

	case gateway.EventCustomerSubscriptionDeleted:
		obj, err := event.SubscriptionEnded()
		if err != nil {
			return true, err
		}
		c := GatewayCancellation{GatewaySubscriptionId: obj.SubscriptionId}
		if obj.EndedAt > 0 {
			endedAt := time.Unix(obj.EndedAt, 0)
			c.EndedAt = &endedAt
		}
		return true, s.subscriptions.MarkGatewayCancelled(ctx, c)

	case gateway.EventPaymentIntentPaymentFailed:
		obj, err := event.PaymentIntentFailure()
		if err != nil {
			return true, err
		}
		reason := obj.FailureMessage
		if reason == "" {
			reason = "Payment failed"
		}
		return true, s.subscriptions.FailPaymentByTransaction(ctx, obj.PaymentIntentId, reason)
	}

	s.logger.Debug(moduleWebhook, "Unhandled event type", map[string]interface{}{
		"event_type": event.Type,
	})
	return false, nil
}

func invoiceOutcome(obj *gateway.Invoice) InvoiceOutcome {
	return InvoiceOutcome{
		InvoiceId:             obj.Id,
		PaymentIntentId:       obj.PaymentIntentId,
		CustomerId:            obj.CustomerId,
		GatewaySubscriptionId: obj.SubscriptionId,
		AmountPaid:            obj.AmountPaid,
		Currency:              obj.Currency,
		FailureReason:         obj.FailureMessage,
	}
}
