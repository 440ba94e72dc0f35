package dto

import (
	"time"

	"github.com/google/uuid"
)

type PaymentResponse struct {
	Id             uuid.UUID  `json:"id"`
	UserId         uuid.UUID  `json:"user_id"`
	PlanId         uuid.UUID  `json:"plan_id"`
	SubscriptionId *uuid.UUID `json:"subscription_id,omitempty"`
	Amount         int64      `json:"amount"`
	Currency       string     `json:"currency"`
	Gateway        string     `json:"gateway"`
	Status         string     `json:"status"`
	TransactionId  string     `json:"transaction_id"`
	Purpose        string     `json:"purpose"`
	PaymentDate    time.Time  `json:"payment_date"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	FailureReason  string     `json:"failure_reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// CreatePaymentRequest records a ledger entry directly. Purpose is checked
// by the ledger so the error names the accepted values.
type CreatePaymentRequest struct {
	UserId         *uuid.UUID `json:"user_id"`
	PlanId         uuid.UUID  `json:"plan_id" validate:"required"`
	SubscriptionId *uuid.UUID `json:"subscription_id"`
	Amount         *int64     `json:"amount" validate:"required,min=0"`
	Currency       string     `json:"currency" validate:"omitempty,currency"`
	Gateway        string     `json:"gateway" validate:"omitempty"`
	Purpose        string     `json:"purpose" validate:"required"`
	Status         string     `json:"status" validate:"omitempty"`
	TransactionId  string     `json:"transaction_id" validate:"omitempty,max=255"`
}

type ProcessSubscriptionRequest struct {
	PlanId        uuid.UUID `json:"plan_id" validate:"required"`
	PaymentMethod string    `json:"payment_method" validate:"omitempty,oneof=stripe paypal razorpay square"`
}

type ProcessSubscriptionResponse struct {
	TransactionId string `json:"transaction_id"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
	PlanName      string `json:"plan_name"`
	RefundAmount  int64  `json:"refund_amount"`
	FinalAmount   int64  `json:"final_amount"`
}

type CheckoutSessionRequest struct {
	PlanId uuid.UUID `json:"plan_id" validate:"required"`
}

type CheckoutSessionResponse struct {
	SessionId     string `json:"session_id"`
	URL           string `json:"url"`
	TransactionId string `json:"transaction_id"`
}

type CancelPaymentRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type PaymentStatusStat struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
	Total  int64  `json:"total"`
}

type PlanRevenueStat struct {
	PlanId   uuid.UUID `json:"plan_id"`
	PlanName string    `json:"plan_name"`
	Count    int64     `json:"count"`
	Revenue  int64     `json:"revenue"`
}

type PaymentAnalyticsResponse struct {
	From         *time.Time          `json:"from,omitempty"`
	To           *time.Time          `json:"to,omitempty"`
	TotalRevenue int64               `json:"total_revenue"`
	ByStatus     []PaymentStatusStat `json:"by_status"`
	ByPlan       []PlanRevenueStat   `json:"by_plan"`
}
