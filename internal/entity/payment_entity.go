package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string
type PaymentPurpose string
type PaymentGateway string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
	PaymentStatusCancelled PaymentStatus = "cancelled"

	PaymentPurposeSubscription PaymentPurpose = "subscription"
	PaymentPurposeOneTime      PaymentPurpose = "one_time"
	PaymentPurposeUpgrade      PaymentPurpose = "upgrade"
	PaymentPurposeRenewal      PaymentPurpose = "renewal"

	PaymentGatewayStripe   PaymentGateway = "stripe"
	PaymentGatewayPaypal   PaymentGateway = "paypal"
	PaymentGatewayRazorpay PaymentGateway = "razorpay"
	PaymentGatewaySquare   PaymentGateway = "square"
)

var (
	PaymentStatuses = []PaymentStatus{
		PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed,
		PaymentStatusRefunded, PaymentStatusCancelled,
	}
	PaymentPurposes = []PaymentPurpose{
		PaymentPurposeSubscription, PaymentPurposeOneTime,
		PaymentPurposeUpgrade, PaymentPurposeRenewal,
	}
	PaymentGateways = []PaymentGateway{
		PaymentGatewayStripe, PaymentGatewayPaypal,
		PaymentGatewayRazorpay, PaymentGatewaySquare,
	}
)

func IsValidPaymentStatus(s string) bool {
	for _, v := range PaymentStatuses {
		if string(v) == s {
			return true
		}
	}
	return false
}

func IsValidPaymentPurpose(s string) bool {
	for _, v := range PaymentPurposes {
		if string(v) == s {
			return true
		}
	}
	return false
}

func IsValidPaymentGateway(s string) bool {
	for _, v := range PaymentGateways {
		if string(v) == s {
			return true
		}
	}
	return false
}

// Payment is a ledger row. Only status, failure reason, paid-at and the
// settlement schedule change after creation.
type Payment struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	PlanId         uuid.UUID
	SubscriptionId *uuid.UUID
	Amount         int64
	Currency       string
	Gateway        PaymentGateway
	Status         PaymentStatus
	TransactionId  string
	Purpose        PaymentPurpose
	PaymentDate    time.Time
	PaidAt         *time.Time
	FailureReason  string
	SettleAfter    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (p *Payment) IsPending() bool {
	return p.Status == PaymentStatusPending
}

func (p *Payment) Complete(now time.Time) error {
	if p.Status != PaymentStatusPending {
		return fmt.Errorf("%w: payment %s is %s", ErrInvalidTransition, p.TransactionId, p.Status)
	}
	p.Status = PaymentStatusCompleted
	p.PaidAt = &now
	p.FailureReason = ""
	p.SettleAfter = nil
	return nil
}

func (p *Payment) Fail(reason string) error {
	if p.Status != PaymentStatusPending {
		return fmt.Errorf("%w: payment %s is %s", ErrInvalidTransition, p.TransactionId, p.Status)
	}
	if reason == "" {
		reason = "Payment failed"
	}
	p.Status = PaymentStatusFailed
	p.FailureReason = reason
	p.SettleAfter = nil
	return nil
}

func (p *Payment) Refund() error {
	if p.Status != PaymentStatusCompleted {
		return fmt.Errorf("%w: only completed payments can be refunded", ErrInvalidTransition)
	}
	p.Status = PaymentStatusRefunded
	return nil
}

func (p *Payment) Cancel(reason string) error {
	if p.Status != PaymentStatusPending {
		return fmt.Errorf("%w: only pending payments can be cancelled", ErrInvalidTransition)
	}
	p.Status = PaymentStatusCancelled
	p.FailureReason = reason
	p.SettleAfter = nil
	return nil
}

// PaymentAnalytics is a read-only reporting view over the ledger.
type PaymentAnalytics struct {
	From         *time.Time
	To           *time.Time
	TotalRevenue int64
	ByStatus     []PaymentStatusStat
	ByPlan       []PlanRevenueStat
}

type PaymentStatusStat struct {
	Status PaymentStatus
	Count  int64
	Total  int64
}

type PlanRevenueStat struct {
	PlanId   uuid.UUID
	PlanName string
	Count    int64
	Revenue  int64
}
