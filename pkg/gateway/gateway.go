// Package gateway abstracts the external payment processor.
package gateway

import (
	"context"
	"errors"
)

var (
	ErrNotConfigured    = errors.New("payment gateway is not configured")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

type Client interface {
	CreateCustomer(ctx context.Context, params CustomerParams) (string, error)
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	CancelSubscription(ctx context.Context, subscriptionId string) error
	// VerifyWebhook checks the signature header against the raw body and
	// decodes the event envelope. Returns ErrInvalidSignature on mismatch.
	VerifyWebhook(payload []byte, signatureHeader string) (*Event, error)
}

type CustomerParams struct {
	Email  string
	Name   string
	UserId string
}

// CheckoutParams describes a recurring checkout. When PriceId is set the
// gateway's catalog price is used, otherwise an inline price is built from
// Amount, Currency and IntervalDays.
type CheckoutParams struct {
	CustomerId   string
	Reference    string
	PlanName     string
	PriceId      *string
	Amount       int64
	Currency     string
	IntervalDays int
	SuccessURL   string
	CancelURL    string
	Metadata     map[string]string
}

type CheckoutSession struct {
	Id  string
	URL string
}
