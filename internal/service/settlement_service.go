package service

import (
	"context"
	"encoding/json"
	"time"

	"podcast-be/internal/entity"
	"podcast-be/internal/pkg/logger"
	"podcast-be/internal/repository/specification"
	"podcast-be/internal/repository/unitofwork"
	"podcast-be/pkg/scheduler"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const (
	SettlementTopic = "payments.settle"

	simulatedFailureReason = "Simulated payment failure"
	maxSettlementAttempts  = 3
)

// PaymentSettler applies the outcome of a settlement attempt.
type PaymentSettler interface {
	SettlePayment(ctx context.Context, paymentId uuid.UUID, success bool, reason string) error
}

type settlementMessage struct {
	PaymentId uuid.UUID `json:"payment_id"`
	Attempt   int       `json:"attempt"`
}

// ISettlementService confirms simulated payments a fixed delay after they are
// created. Timers only publish to the settlement topic; the consumer does
// the database work.
type ISettlementService interface {
	Schedule(payment *entity.Payment)
	Cancel(paymentId uuid.UUID)
	// Rehydrate re-arms timers for pending payments left over from a
	// previous run.
	Rehydrate(ctx context.Context) (int, error)
	Consume(ctx context.Context, settler PaymentSettler) error
	Stop()
}

type settlementService struct {
	pubSub          *gochannel.GoChannel
	scheduler       *scheduler.Scheduler
	uowFactory      unitofwork.RepositoryFactory
	logger          logger.ILogger
	delay           time.Duration
	simulateFailure bool
}

func NewSettlementService(
	pubSub *gochannel.GoChannel,
	sched *scheduler.Scheduler,
	uowFactory unitofwork.RepositoryFactory,
	logger logger.ILogger,
	delay time.Duration,
	simulateFailure bool,
) ISettlementService {
	return &settlementService{
		pubSub:          pubSub,
		scheduler:       sched,
		uowFactory:      uowFactory,
		logger:          logger,
		delay:           delay,
		simulateFailure: simulateFailure,
	}
}

func (s *settlementService) Schedule(payment *entity.Payment) {
	delay := s.delay
	if payment.SettleAfter != nil {
		delay = time.Until(*payment.SettleAfter)
	}
	s.arm(payment.Id, delay, 1)
}

func (s *settlementService) arm(paymentId uuid.UUID, delay time.Duration, attempt int) {
	if delay < 0 {
		delay = 0
	}
	s.scheduler.Schedule(paymentId.String(), delay, func() {
		s.publish(settlementMessage{PaymentId: paymentId, Attempt: attempt})
	})
}

func (s *settlementService) publish(m settlementMessage) {
	payload, err := json.Marshal(m)
	if err != nil {
		s.logger.Error(moduleSettlement, "Failed to encode settlement message", map[string]interface{}{
			"payment_id": m.PaymentId.String(),
			"error":      err.Error(),
		})
		return
	}
	if err := s.pubSub.Publish(SettlementTopic, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		s.logger.Error(moduleSettlement, "Failed to publish settlement message", map[string]interface{}{
			"payment_id": m.PaymentId.String(),
			"error":      err.Error(),
		})
	}
}

func (s *settlementService) Cancel(paymentId uuid.UUID) {
	if s.scheduler.Cancel(paymentId.String()) {
		s.logger.Debug(moduleSettlement, "Settlement cancelled", map[string]interface{}{
			"payment_id": paymentId.String(),
		})
	}
}

func (s *settlementService) Rehydrate(ctx context.Context) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	payments, err := uow.PaymentRepository().FindAll(ctx, specification.AwaitingSettlement{})
	if err != nil {
		return 0, err
	}
	for _, p := range payments {
		s.Schedule(p)
	}
	if len(payments) > 0 {
		s.logger.Info(moduleSettlement, "Re-armed pending settlements", map[string]interface{}{
			"count": len(payments),
		})
	}
	return len(payments), nil
}

func (s *settlementService) Consume(ctx context.Context, settler PaymentSettler) error {
	messages, err := s.pubSub.Subscribe(ctx, SettlementTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, settler, msg)
		}
	}()

	return nil
}

func (s *settlementService) processMessage(ctx context.Context, settler PaymentSettler, msg *message.Message) {
	// Retries go back through the scheduler; a Nack on gochannel would
	// redeliver immediately.
	defer msg.Ack()

	var m settlementMessage
	if err := json.Unmarshal(msg.Payload, &m); err != nil || m.PaymentId == uuid.Nil {
		s.logger.Error(moduleSettlement, "Dropping malformed settlement message", map[string]interface{}{
			"message_id": msg.UUID,
		})
		return
	}

	success, reason := !s.simulateFailure, ""
	if !success {
		reason = simulatedFailureReason
	}

	if err := settler.SettlePayment(ctx, m.PaymentId, success, reason); err != nil {
		details := map[string]interface{}{
			"payment_id": m.PaymentId.String(),
			"attempt":    m.Attempt,
			"error":      err.Error(),
		}
		if m.Attempt >= maxSettlementAttempts {
			s.logger.Error(moduleSettlement, "Settlement abandoned after retries", details)
			return
		}
		s.logger.Warn(moduleSettlement, "Settlement failed, retrying", details)
		s.arm(m.PaymentId, s.delay, m.Attempt+1)
	}
}

func (s *settlementService) Stop() {
	s.scheduler.Stop()
}
