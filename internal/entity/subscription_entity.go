package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionStatusPendingPayment SubscriptionStatus = "pending_payment"
	SubscriptionStatusActive         SubscriptionStatus = "active"
	SubscriptionStatusExpired        SubscriptionStatus = "expired"
	SubscriptionStatusCancelled      SubscriptionStatus = "cancelled"
	SubscriptionStatusPaymentFailed  SubscriptionStatus = "payment_failed"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// Permitted lifecycle transitions. Gateway-reported changes bypass this table
// through ForceStatus.
var subscriptionTransitions = map[SubscriptionStatus][]SubscriptionStatus{
	SubscriptionStatusPendingPayment: {
		SubscriptionStatusActive,
		SubscriptionStatusPaymentFailed,
		SubscriptionStatusCancelled,
		SubscriptionStatusPendingPayment,
	},
	SubscriptionStatusActive: {
		SubscriptionStatusCancelled,
		SubscriptionStatusExpired,
		SubscriptionStatusPendingPayment,
		SubscriptionStatusPaymentFailed,
	},
	SubscriptionStatusPaymentFailed: {
		SubscriptionStatusActive,
		SubscriptionStatusPendingPayment,
		SubscriptionStatusCancelled,
	},
	SubscriptionStatusCancelled: {
		SubscriptionStatusActive,
		SubscriptionStatusPendingPayment,
	},
	SubscriptionStatusExpired: {
		SubscriptionStatusActive,
		SubscriptionStatusPendingPayment,
	},
}

func IsValidSubscriptionStatus(s string) bool {
	_, ok := subscriptionTransitions[SubscriptionStatus(s)]
	return ok
}

func CanTransition(from, to SubscriptionStatus) bool {
	for _, allowed := range subscriptionTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type Subscription struct {
	Id                    uuid.UUID
	UserId                uuid.UUID
	PlanId                uuid.UUID
	Plan                  *Plan
	Status                SubscriptionStatus
	StartDate             time.Time
	EndDate               time.Time
	IsActive              bool
	AutoRenew             bool
	Amount                int64
	ExpiryMessage         string
	PaymentId             *string
	GatewaySubscriptionId *string
	GatewayCustomerId     *string
	Version               int64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// TransitionTo moves the subscription along the lifecycle table. IsActive is
// derived from the status and never set independently.
func (s *Subscription) TransitionTo(next SubscriptionStatus) error {
	if s.Status == next && next != SubscriptionStatusPendingPayment {
		return nil
	}
	if !CanTransition(s.Status, next) {
		return fmt.Errorf("%w: subscription %s -> %s", ErrInvalidTransition, s.Status, next)
	}
	s.setStatus(next)
	return nil
}

// CanRenew reports whether a caller may reactivate or extend the term. A
// subscription waiting on a payment only becomes active through settlement.
func (s *Subscription) CanRenew() bool {
	switch s.Status {
	case SubscriptionStatusCancelled, SubscriptionStatusExpired, SubscriptionStatusActive:
		return true
	}
	return false
}

// ForceStatus applies a state reported by the payment gateway, which is
// authoritative over local bookkeeping.
func (s *Subscription) ForceStatus(next SubscriptionStatus) {
	s.setStatus(next)
}

func (s *Subscription) setStatus(next SubscriptionStatus) {
	s.Status = next
	s.IsActive = next == SubscriptionStatusActive
	if next == SubscriptionStatusCancelled {
		s.AutoRenew = false
	}
}

// ExpireIfLapsed expires an active subscription whose term has ended and
// which nothing will renew. Returns true when the status changed.
func (s *Subscription) ExpireIfLapsed(now time.Time) bool {
	if s.Status != SubscriptionStatusActive || !now.After(s.EndDate) {
		return false
	}
	if s.AutoRenew && s.GatewaySubscriptionId != nil {
		return false
	}
	s.setStatus(SubscriptionStatusExpired)
	s.ExpiryMessage = fmt.Sprintf("Subscription expired on %s", s.EndDate.UTC().Format(time.RFC3339))
	return true
}

func (s *Subscription) IsOwnedBy(userId uuid.UUID) bool {
	return s.UserId == userId
}
