package events

import (
	"context"
	"time"
)

// Domain event codes. Published on subject "events.<code>".
const (
	SubscriptionCreated   = "SUBSCRIPTION_CREATED"
	SubscriptionActivated = "SUBSCRIPTION_ACTIVATED"
	SubscriptionCancelled = "SUBSCRIPTION_CANCELLED"
	SubscriptionRenewed   = "SUBSCRIPTION_RENEWED"
	PaymentCompleted      = "PAYMENT_COMPLETED"
	PaymentFailed         = "PAYMENT_FAILED"
	PaymentRefunded       = "PAYMENT_REFUNDED"
	UserRegistered        = "USER_REGISTERED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "PAYMENT_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Publisher is satisfied by the NATS publisher. Callers treat a nil
// Publisher as "events disabled".
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

// Payload includes the event type and timestamp so consumers do not depend
// on the subject for them.
func (e BaseEvent) Payload() map[string]interface{} {
	out := make(map[string]interface{}, len(e.Data)+2)
	for k, v := range e.Data {
		out[k] = v
	}
	out["event_type"] = e.Type
	out["occurred_at"] = e.OccurredAt.UTC().Format(time.RFC3339)
	return out
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
