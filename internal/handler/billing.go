package handler

import (
	"io"
	"net/http"

	"github.com/capitalstack/directory/internal/domain"
)

// maxWebhookBody is the largest event payload accepted from the billing provider.
const maxWebhookBody = 65536

// BillingHandler serves checkout, portal and provider webhook endpoints.
type BillingHandler struct {
	billing Billing
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(billing Billing) *BillingHandler {
	return &BillingHandler{billing: billing}
}

// Checkout handles POST /api/billing/checkout.
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckoutRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	resp, err := h.billing.CreateCheckout(r.Context(), callerFrom(r), &req)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

// Portal handles POST /api/billing/portal.
func (h *BillingHandler) Portal(w http.ResponseWriter, r *http.Request) {
	resp, err := h.billing.CreatePortal(r.Context(), callerFrom(r))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, resp)
}

// Webhook handles POST /api/webhooks/stripe. The body must be read raw:
// the signature covers the exact bytes sent.
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		Error(w, domain.ErrBadRequest("failed to read request body"))
		return
	}

	if err := h.billing.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, domain.WebhookAck{Received: true})
}
