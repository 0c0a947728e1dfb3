package domain

// CheckoutRequest is the POST body for starting a subscription checkout.
type CheckoutRequest struct {
	PlanKey string `json:"planKey" validate:"required"`
}

// SessionResponse carries the hosted provider page the client should redirect to.
type SessionResponse struct {
	URL string `json:"url"`
}

// WebhookAck is the acknowledgment body for every processed billing event.
type WebhookAck struct {
	Received bool `json:"received"`
}
