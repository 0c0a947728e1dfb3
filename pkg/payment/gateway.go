package payment

import (
	"context"
	"errors"
	"time"
)

// EventType is a provider-neutral billing lifecycle event.
type EventType string

const (
	EventCheckoutCompleted    EventType = "checkout-completed"
	EventInvoicePaid          EventType = "invoice-paid"
	EventInvoicePaymentFailed EventType = "invoice-payment-failed"
	EventSubscriptionUpdated  EventType = "subscription-updated"
	EventSubscriptionDeleted  EventType = "subscription-deleted"
	EventUnhandled            EventType = "unhandled"
)

var (
	// ErrInvalidSignature means the webhook payload could not be authenticated.
	ErrInvalidSignature = errors.New("payment: invalid webhook signature")
	// ErrMalformedEvent means the payload was authentic but its object could not be decoded.
	ErrMalformedEvent = errors.New("payment: malformed event object")
)

// Subscription is the subset of a provider subscription the app cares about.
type Subscription struct {
	ID               string
	CustomerID       string
	PriceID          string
	Status           string
	CurrentPeriodEnd time.Time
}

// Event is a verified webhook event translated out of provider types.
type Event struct {
	ID             string
	Type           EventType
	ProviderType   string
	UserID         string // checkout metadata
	CustomerID     string
	SubscriptionID string
	Subscription   *Subscription // set when the event carries the full subscription
}

// CheckoutParams describes a subscription checkout session.
type CheckoutParams struct {
	PriceID    string
	UserID     string
	Email      string
	SuccessURL string
	CancelURL  string
}

// Gateway defines the interface for billing providers.
type Gateway interface {
	// CreateCheckout creates a hosted checkout session and returns its URL.
	CreateCheckout(ctx context.Context, p CheckoutParams) (string, error)
	// CreatePortal creates a self-service billing portal session and returns its URL.
	CreatePortal(ctx context.Context, customerID, returnURL string) (string, error)
	// RetrieveSubscription fetches the current state of a subscription.
	RetrieveSubscription(ctx context.Context, id string) (*Subscription, error)
	// ParseEvent verifies the signature and translates the payload.
	ParseEvent(payload []byte, signature string) (*Event, error)
}
