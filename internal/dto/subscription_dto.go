package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionResponse struct {
	Id                    uuid.UUID     `json:"id"`
	UserId                uuid.UUID     `json:"user_id"`
	PlanId                uuid.UUID     `json:"plan_id"`
	Plan                  *PlanResponse `json:"plan,omitempty"`
	Status                string        `json:"status"`
	StartDate             time.Time     `json:"start_date"`
	EndDate               time.Time     `json:"end_date"`
	IsActive              bool          `json:"is_active"`
	AutoRenew             bool          `json:"auto_renew"`
	Amount                int64         `json:"amount"`
	ExpiryMessage         string        `json:"expiry_message,omitempty"`
	PaymentId             *string       `json:"payment_id,omitempty"`
	GatewaySubscriptionId *string       `json:"gateway_subscription_id,omitempty"`
	GatewayCustomerId     *string       `json:"gateway_customer_id,omitempty"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

type UpgradeSubscriptionRequest struct {
	PlanId uuid.UUID `json:"plan_id" validate:"required"`
}

type RenewSubscriptionRequest struct {
	EndDate *time.Time `json:"end_date"`
}

// EndDate is honoured for admins only.
type UpdateSubscriptionRequest struct {
	AutoRenew *bool      `json:"auto_renew"`
	EndDate   *time.Time `json:"end_date"`
}

type ProrationResponse struct {
	RemainingDays int64 `json:"remaining_days"`
	RefundAmount  int64 `json:"refund_amount"`
	FinalAmount   int64 `json:"final_amount"`
}

type UpgradeSubscriptionResponse struct {
	Subscription  SubscriptionResponse `json:"subscription"`
	TransactionId string               `json:"transaction_id"`
	Proration     ProrationResponse    `json:"proration"`
}
