package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

type StripeClient struct {
	api           *client.API
	webhookSecret string
}

// NewStripeClient builds a client with its own backends so that no global
// stripe.Key is touched. An empty secretKey leaves API calls disabled while
// webhook verification keeps working.
func NewStripeClient(secretKey, webhookSecret string) *StripeClient {
	c := &StripeClient{webhookSecret: webhookSecret}
	if secretKey != "" {
		c.api = client.New(secretKey, nil)
	}
	return c
}

func (c *StripeClient) CreateCustomer(ctx context.Context, params CustomerParams) (string, error) {
	if c.api == nil {
		return "", ErrNotConfigured
	}
	p := &stripe.CustomerParams{
		Email: stripe.String(params.Email),
		Name:  stripe.String(params.Name),
	}
	p.Context = ctx
	p.AddMetadata("user_id", params.UserId)

	cus, err := c.api.Customers.New(p)
	if err != nil {
		return "", fmt.Errorf("stripe: create customer: %w", err)
	}
	return cus.ID, nil
}

func (c *StripeClient) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	if c.api == nil {
		return nil, ErrNotConfigured
	}

	item := &stripe.CheckoutSessionLineItemParams{Quantity: stripe.Int64(1)}
	if params.PriceId != nil && *params.PriceId != "" {
		item.Price = params.PriceId
	} else {
		item.PriceData = &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(strings.ToLower(params.Currency)),
			UnitAmount: stripe.Int64(params.Amount),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(params.PlanName),
			},
			Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
				Interval:      stripe.String(string(stripe.PriceRecurringIntervalDay)),
				IntervalCount: stripe.Int64(int64(params.IntervalDays)),
			},
		}
	}

	p := &stripe.CheckoutSessionParams{
		Customer:          stripe.String(params.CustomerId),
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems:         []*stripe.CheckoutSessionLineItemParams{item},
		SuccessURL:        stripe.String(params.SuccessURL),
		CancelURL:         stripe.String(params.CancelURL),
		ClientReferenceID: stripe.String(params.Reference),
	}
	p.Context = ctx
	for k, v := range params.Metadata {
		p.AddMetadata(k, v)
	}

	sess, err := c.api.CheckoutSessions.New(p)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return &CheckoutSession{Id: sess.ID, URL: sess.URL}, nil
}

func (c *StripeClient) CancelSubscription(ctx context.Context, subscriptionId string) error {
	if c.api == nil {
		return ErrNotConfigured
	}
	p := &stripe.SubscriptionCancelParams{}
	p.Context = ctx
	if _, err := c.api.Subscriptions.Cancel(subscriptionId, p); err != nil {
		return fmt.Errorf("stripe: cancel subscription %s: %w", subscriptionId, err)
	}
	return nil
}

// VerifyWebhook checks the signature within the default tolerance and
// decodes the event. The account's API version may differ from the one this
// client was built against.
func (c *StripeClient) VerifyWebhook(payload []byte, signatureHeader string) (*Event, error) {
	if c.webhookSecret == "" || signatureHeader == "" {
		return nil, ErrInvalidSignature
	}
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, c.webhookSecret, webhook.ConstructEventOptions{
		Tolerance:                webhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return newEvent(event), nil
}
