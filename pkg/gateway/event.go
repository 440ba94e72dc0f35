package gateway

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v76"
)

const (
	EventCheckoutSessionCompleted    = "checkout.session.completed"
	EventInvoicePaymentSucceeded     = "invoice.payment_succeeded"
	EventInvoicePaymentFailed        = "invoice.payment_failed"
	EventCustomerSubscriptionDeleted = "customer.subscription.deleted"
	EventPaymentIntentPaymentFailed  = "payment_intent.payment_failed"

	// BillingReasonSubscriptionCreate marks the first invoice of a
	// subscription, which is settled through checkout completion instead.
	BillingReasonSubscriptionCreate = "subscription_create"
)

var errNoEventData = errors.New("event carries no data object")

// Event is a verified gateway notification.
type Event struct {
	Id   string
	Type string
	raw  json.RawMessage
}

func newEvent(e stripe.Event) *Event {
	ev := &Event{Id: e.ID, Type: string(e.Type)}
	if e.Data != nil {
		ev.raw = e.Data.Raw
	}
	return ev
}

func (e *Event) decode(dst interface{}) error {
	if len(e.raw) == 0 {
		return errNoEventData
	}
	return json.Unmarshal(e.raw, dst)
}

type CheckoutCompleted struct {
	SessionId       string
	PaymentIntentId string
	CustomerId      string
	SubscriptionId  string
}

func (e *Event) CheckoutCompleted() (*CheckoutCompleted, error) {
	var cs stripe.CheckoutSession
	if err := e.decode(&cs); err != nil {
		return nil, err
	}
	out := &CheckoutCompleted{SessionId: cs.ID}
	if cs.PaymentIntent != nil {
		out.PaymentIntentId = cs.PaymentIntent.ID
	}
	if cs.Customer != nil {
		out.CustomerId = cs.Customer.ID
	}
	if cs.Subscription != nil {
		out.SubscriptionId = cs.Subscription.ID
	}
	return out, nil
}

type Invoice struct {
	Id              string
	CustomerId      string
	SubscriptionId  string
	PaymentIntentId string
	BillingReason   string
	AmountPaid      int64
	Currency        string
	FailureMessage  string
}

// Invoice decodes an invoice event. Besides Stripe's finalization error, a
// top-level last_payment_failure message is honoured when present.
func (e *Event) Invoice() (*Invoice, error) {
	var inv stripe.Invoice
	if err := e.decode(&inv); err != nil {
		return nil, err
	}
	var extra struct {
		LastPaymentFailure *stripe.Error `json:"last_payment_failure"`
	}
	if err := e.decode(&extra); err != nil {
		return nil, err
	}

	out := &Invoice{
		Id:            inv.ID,
		BillingReason: string(inv.BillingReason),
		AmountPaid:    inv.AmountPaid,
		Currency:      strings.ToUpper(string(inv.Currency)),
	}
	if inv.Customer != nil {
		out.CustomerId = inv.Customer.ID
	}
	if inv.Subscription != nil {
		out.SubscriptionId = inv.Subscription.ID
	}
	if inv.PaymentIntent != nil {
		out.PaymentIntentId = inv.PaymentIntent.ID
	}
	out.FailureMessage = firstMessage(inv.LastFinalizationError, extra.LastPaymentFailure)
	if out.FailureMessage == "" && inv.PaymentIntent != nil {
		out.FailureMessage = firstMessage(inv.PaymentIntent.LastPaymentError)
	}
	return out, nil
}

type SubscriptionEnded struct {
	SubscriptionId string
	CustomerId     string
	EndedAt        int64
}

func (e *Event) SubscriptionEnded() (*SubscriptionEnded, error) {
	var sub stripe.Subscription
	if err := e.decode(&sub); err != nil {
		return nil, err
	}
	out := &SubscriptionEnded{SubscriptionId: sub.ID, EndedAt: sub.EndedAt}
	if out.EndedAt == 0 {
		out.EndedAt = sub.CanceledAt
	}
	if sub.Customer != nil {
		out.CustomerId = sub.Customer.ID
	}
	return out, nil
}

type PaymentIntentFailure struct {
	PaymentIntentId string
	CustomerId      string
	FailureMessage  string
}

func (e *Event) PaymentIntentFailure() (*PaymentIntentFailure, error) {
	var pi stripe.PaymentIntent
	if err := e.decode(&pi); err != nil {
		return nil, err
	}
	out := &PaymentIntentFailure{
		PaymentIntentId: pi.ID,
		FailureMessage:  firstMessage(pi.LastPaymentError),
	}
	if pi.Customer != nil {
		out.CustomerId = pi.Customer.ID
	}
	return out, nil
}

func firstMessage(errs ...*stripe.Error) string {
	for _, e := range errs {
		if e != nil && e.Msg != "" {
			return e.Msg
		}
	}
	return ""
}
