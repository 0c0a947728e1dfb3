package service

import (
	"context"
	"errors"
	"strings"

	"github.com/capitalstack/directory/internal/domain"
	"github.com/capitalstack/directory/internal/metrics"
	"github.com/capitalstack/directory/pkg/notify"
	"github.com/capitalstack/directory/pkg/payment"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Webhook outcomes recorded in metrics.
const (
	outcomeApplied  = "applied"
	outcomeIgnored  = "ignored"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

// BillingService keeps user plan state in step with the billing provider
// and opens hosted checkout and portal sessions.
type BillingService struct {
	gateway  payment.Gateway
	users    UserStore
	catalog  *domain.Catalog
	notifier notify.Notifier
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
	appURL   string
	validate *validator.Validate
}

// NewBillingService creates a new BillingService.
func NewBillingService(
	gateway payment.Gateway,
	users UserStore,
	catalog *domain.Catalog,
	notifier notify.Notifier,
	m *metrics.Metrics,
	log logrus.FieldLogger,
	appURL string,
) *BillingService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &BillingService{
		gateway:  gateway,
		users:    users,
		catalog:  catalog,
		notifier: notifier,
		metrics:  m,
		log:      log,
		appURL:   strings.TrimRight(appURL, "/"),
		validate: newValidator(),
	}
}

// CreateCheckout opens a subscription checkout for a purchasable plan.
func (s *BillingService) CreateCheckout(ctx context.Context, caller domain.Caller, req *domain.CheckoutRequest) (*domain.SessionResponse, error) {
	ctx, span := otel.Tracer("BillingService").Start(ctx, "CreateCheckout", trace.WithAttributes(
		attribute.String("plan.key", req.PlanKey),
	))
	defer span.End()

	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(formatValidationErrors(err))
	}

	plan, ok := s.catalog.Plan(domain.ParsePlanID(req.PlanKey))
	if !ok || !plan.Purchasable() {
		return nil, domain.ErrBadRequest("invalid plan selected")
	}

	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, domain.ErrInternal("failed to find user", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user not found")
	}

	url, err := s.gateway.CreateCheckout(ctx, payment.CheckoutParams{
		PriceID:    plan.PriceRef,
		UserID:     user.ID,
		Email:      user.Email,
		SuccessURL: s.appURL + "/dashboard?success=true",
		CancelURL:  s.appURL + "/pricing?canceled=true",
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "checkout failed")
		return nil, domain.ErrUpstream("failed to create checkout session", err)
	}

	return &domain.SessionResponse{URL: url}, nil
}

// CreatePortal opens the provider's self-service billing portal.
func (s *BillingService) CreatePortal(ctx context.Context, caller domain.Caller) (*domain.SessionResponse, error) {
	ctx, span := otel.Tracer("BillingService").Start(ctx, "CreatePortal")
	defer span.End()

	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, domain.ErrInternal("failed to find user", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user not found")
	}
	if user.CustomerRef == nil || *user.CustomerRef == "" {
		return nil, domain.ErrBadRequest("no active subscription")
	}

	url, err := s.gateway.CreatePortal(ctx, *user.CustomerRef, s.appURL+"/settings/billing")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "portal failed")
		return nil, domain.ErrUpstream("failed to create portal session", err)
	}

	return &domain.SessionResponse{URL: url}, nil
}

// HandleWebhook verifies and applies one billing event. Every mutation is an
// update keyed by an external reference, so replays and reordering converge.
// A nil return means the event should be acknowledged.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	evt, err := s.gateway.ParseEvent(payload, signature)
	if err != nil {
		s.record("unknown", outcomeRejected)
		if errors.Is(err, payment.ErrInvalidSignature) {
			s.log.WithError(err).Warn("webhook signature verification failed")
			return domain.ErrSignatureInvalid(err)
		}
		s.log.WithError(err).Warn("webhook payload rejected")
		return domain.ErrValidation("malformed webhook event")
	}

	ctx, span := otel.Tracer("BillingService").Start(ctx, "HandleWebhook", trace.WithAttributes(
		attribute.String("event.id", evt.ID),
		attribute.String("event.type", evt.ProviderType),
	))
	defer span.End()

	log := s.log.WithFields(logrus.Fields{
		"event":        evt.ProviderType,
		"eventId":      evt.ID,
		"subscription": evt.SubscriptionID,
	})

	outcome, err := s.apply(ctx, evt, log)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "webhook processing failed")
		log.WithError(err).Error("webhook handler error")
		s.record(string(evt.Type), outcomeFailed)
		return domain.ErrInternal("webhook handler error", err)
	}
	s.record(string(evt.Type), outcome)
	return nil
}

func (s *BillingService) apply(ctx context.Context, evt *payment.Event, log logrus.FieldLogger) (string, error) {
	switch evt.Type {
	case payment.EventCheckoutCompleted:
		if evt.UserID == "" {
			log.Error("no userId in checkout metadata")
			return outcomeIgnored, nil
		}
		if evt.SubscriptionID == "" {
			log.WithField("userId", evt.UserID).Warn("checkout completed without subscription")
			return outcomeIgnored, nil
		}
		sub, err := s.gateway.RetrieveSubscription(ctx, evt.SubscriptionID)
		if err != nil {
			return "", err
		}
		state := s.stateFor(sub)
		if evt.CustomerID != "" {
			state.CustomerRef = evt.CustomerID
		}
		n, err := s.users.ApplyCheckout(ctx, evt.UserID, state)
		if err != nil {
			return "", err
		}
		if n == 0 {
			log.WithField("userId", evt.UserID).Warn("checkout for unknown user")
			return outcomeIgnored, nil
		}
		log.WithFields(logrus.Fields{"userId": evt.UserID, "plan": state.Plan}).Info("user subscribed")
		return outcomeApplied, nil

	case payment.EventInvoicePaid:
		if evt.SubscriptionID == "" {
			return outcomeIgnored, nil
		}
		sub, err := s.gateway.RetrieveSubscription(ctx, evt.SubscriptionID)
		if err != nil {
			return "", err
		}
		return s.updateSubscription(ctx, sub, log, "invoice paid")

	case payment.EventInvoicePaymentFailed:
		log.Error("payment failed for subscription")
		s.notifyPaymentFailed(ctx, evt.SubscriptionID, log)
		return outcomeIgnored, nil

	case payment.EventSubscriptionUpdated:
		if evt.Subscription == nil {
			return outcomeIgnored, nil
		}
		return s.updateSubscription(ctx, evt.Subscription, log, "subscription updated")

	case payment.EventSubscriptionDeleted:
		n, err := s.users.ClearSubscription(ctx, evt.SubscriptionID)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return outcomeIgnored, nil
		}
		log.Info("subscription cancelled")
		return outcomeApplied, nil

	default:
		log.Info("unhandled event type")
		return outcomeIgnored, nil
	}
}

func (s *BillingService) updateSubscription(ctx context.Context, sub *payment.Subscription, log logrus.FieldLogger, msg string) (string, error) {
	state := s.stateFor(sub)
	n, err := s.users.UpdateBySubscription(ctx, state)
	if err != nil {
		return "", err
	}
	if n == 0 {
		log.Debug("no local user for subscription")
		return outcomeIgnored, nil
	}
	log.WithField("plan", state.Plan).Info(msg)
	return outcomeApplied, nil
}

func (s *BillingService) stateFor(sub *payment.Subscription) domain.BillingState {
	state := domain.BillingState{
		CustomerRef:     sub.CustomerID,
		SubscriptionRef: sub.ID,
		PriceRef:        sub.PriceID,
		Plan:            s.catalog.PlanForPrice(sub.PriceID),
	}
	if !sub.CurrentPeriodEnd.IsZero() {
		end := sub.CurrentPeriodEnd
		state.PeriodEnd = &end
	}
	return state
}

// notifyPaymentFailed emails the subscriber. Failures are logged only.
func (s *BillingService) notifyPaymentFailed(ctx context.Context, subscriptionRef string, log logrus.FieldLogger) {
	if subscriptionRef == "" {
		return
	}
	user, err := s.users.FindBySubscription(ctx, subscriptionRef)
	if err != nil {
		log.WithError(err).Warn("failed to look up subscriber for payment notice")
		return
	}
	if user == nil {
		return
	}
	name := ""
	if user.Name != nil {
		name = *user.Name
	}
	if err := s.notifier.PaymentFailed(ctx, user.Email, name); err != nil {
		log.WithError(err).WithField("userId", user.ID).Warn("failed to send payment notice")
	}
}

func (s *BillingService) record(event, outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.WebhookEventsTotal.WithLabelValues(event, outcome).Inc()
}
