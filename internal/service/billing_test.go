package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/capitalstack/directory/internal/domain"
	"github.com/capitalstack/directory/internal/metrics"
	"github.com/capitalstack/directory/pkg/notify"
	"github.com/capitalstack/directory/pkg/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79/webhook"
)

var testPrices = domain.PriceRefs{
	Starter:      "price_starter",
	Professional: "price_pro",
	Enterprise:   "price_ent",
}

func subscribedUser() *domain.User {
	end := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	return &domain.User{
		ID:              "u1",
		Email:           "ada@x.test",
		Name:            strPtr("Ada"),
		Role:            "user",
		Plan:            domain.PlanProfessional,
		CustomerRef:     strPtr("cus_1"),
		SubscriptionRef: strPtr("sub_1"),
		PriceRef:        strPtr("price_pro"),
		PeriodEnd:       &end,
	}
}

func newBilling(gw *MockGateway, users UserStore, n *MockNotifier) *BillingService {
	var notifier notify.Notifier
	if n != nil {
		notifier = n
	}
	return NewBillingService(gw, users, domain.NewCatalog(testPrices), notifier, metrics.Discard(), quietLogger(), "https://app.test/")
}

func TestHandleWebhook_InvalidSignatureMutatesNothing(t *testing.T) {
	gw := new(MockGateway)
	users := newMemUsers(subscribedUser())
	svc := newBilling(gw, users, nil)

	before := users.get("u1")
	gw.On("ParseEvent", []byte("{}"), "bad").Return(nil, payment.ErrInvalidSignature)

	err := svc.HandleWebhook(context.Background(), []byte("{}"), "bad")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindSignatureInvalid))

	appErr, _ := domain.AsAppError(err)
	assert.Equal(t, 400, appErr.Code)
	assert.Equal(t, before, users.get("u1"))
	assert.Zero(t, users.writes)
	gw.AssertNotCalled(t, "RetrieveSubscription", mock.Anything, mock.Anything)
}

func TestHandleWebhook_MalformedEventIsBadRequest(t *testing.T) {
	gw := new(MockGateway)
	svc := newBilling(gw, newMemUsers(), nil)

	gw.On("ParseEvent", mock.Anything, mock.Anything).Return(nil, payment.ErrMalformedEvent)

	err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestHandleWebhook_CheckoutCompleted(t *testing.T) {
	gw := new(MockGateway)
	users := newMemUsers(&domain.User{ID: "u1", Email: "ada@x.test", Plan: domain.PlanFree})
	svc := newBilling(gw, users, nil)

	end := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	gw.On("ParseEvent", mock.Anything, "sig").Return(&payment.Event{
		ID: "evt_1", Type: payment.EventCheckoutCompleted, ProviderType: "checkout.session.completed",
		UserID: "u1", CustomerID: "cus_9", SubscriptionID: "sub_9",
	}, nil)
	gw.On("RetrieveSubscription", mock.Anything, "sub_9").Return(&payment.Subscription{
		ID: "sub_9", CustomerID: "cus_9", PriceID: "price_starter", CurrentPeriodEnd: end,
	}, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))

	u := users.get("u1")
	assert.Equal(t, domain.PlanStarter, u.Plan)
	assert.Equal(t, "cus_9", *u.CustomerRef)
	assert.Equal(t, "sub_9", *u.SubscriptionRef)
	assert.Equal(t, "price_starter", *u.PriceRef)
	assert.Equal(t, end, *u.PeriodEnd)
}

func TestHandleWebhook_CheckoutWithoutUserIsAcknowledged(t *testing.T) {
	gw := new(MockGateway)
	users := newMemUsers()
	svc := newBilling(gw, users, nil)

	gw.On("ParseEvent", mock.Anything, mock.Anything).Return(&payment.Event{
		Type: payment.EventCheckoutCompleted, SubscriptionID: "sub_9",
	}, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), nil, "sig"))
	gw.AssertNotCalled(t, "RetrieveSubscription", mock.Anything, mock.Anything)
}

func TestHandleWebhook_UnknownPriceFallsBackToFree(t *testing.T) {
	gw := new(MockGateway)
	users := newMemUsers(subscribedUser())
	svc := newBilling(gw, users, nil)

	gw.On("ParseEvent", mock.Anything, mock.Anything).Return(&payment.Event{
		Type: payment.EventSubscriptionUpdated, SubscriptionID: "sub_1",
		Subscription: &payment.Subscription{ID: "sub_1", PriceID: "price_legacy", CurrentPeriodEnd: time.Now()},
	}, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), nil, "sig"))
	assert.Equal(t, domain.PlanFree, users.get("u1").Plan)
}

func TestHandleWebhook_InvoicePaidRefreshesPlan(t *testing.T) {
	gw := new(MockGateway)
	users := newMemUsers(subscribedUser())
	svc := newBilling(gw, users, nil)

	end := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	gw.On("ParseEvent", mock.Anything, mock.Anything).Return(&payment.Event{
		Type: payment.EventInvoicePaid, SubscriptionID: "sub_1",
	}, nil)
	gw.On("RetrieveSubscription", mock.Anything, "sub_1").Return(&payment.Subscription{
		ID: "sub_1", PriceID: "price_ent", CurrentPeriodEnd: end,
	}, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), nil, "sig"))
	u := users.get("u1")
	assert.Equal(t, domain.PlanEnterprise, u.Plan)
	assert.Equal(t, end, *u.PeriodEnd)
}

func TestHandleWebhook_RetrieveFailureAsksForRetry(t *testing.T) {
	gw := new(MockGateway)
	users := newMemUsers(subscribedUser())
	svc := newBilling(gw, users, nil)

	gw.On("ParseEvent", mock.Anything, mock.Anything).Return(&payment.Event{
		Type: payment.EventInvoicePaid, SubscriptionID: "sub_1",
	}, nil)
	gw.On("RetrieveSubscription", mock.Anything, "sub_1").Return(nil, errors.New("provider timeout"))

	err := svc.HandleWebhook(context.Background(), nil, "sig")
	require.Error(t, err)
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 500, appErr.Code)
	assert.Zero(t, users.writes)
}

func TestHandleWebhook_SubscriptionDeletedReplayIsIdempotent(t *testing.T) {
	gw := new(MockGateway)
	users := newMemUsers(subscribedUser())
	svc := newBilling(gw, users, nil)

	gw.On("ParseEvent", mock.Anything, mock.Anything).Return(&payment.Event{
		ID: "evt_del", Type: payment.EventSubscriptionDeleted, SubscriptionID: "sub_1",
		Subscription: &payment.Subscription{ID: "sub_1"},
	}, nil)

	for i := 0; i < 2; i++ {
		require.NoError(t, svc.HandleWebhook(context.Background(), nil, "sig"))
		u := users.get("u1")
		assert.Equal(t, domain.PlanFree, u.Plan)
		assert.Nil(t, u.SubscriptionRef)
		assert.Nil(t, u.PriceRef)
		assert.Nil(t, u.PeriodEnd)
		assert.Equal(t, "cus_1", *u.CustomerRef)
	}
}

func TestHandleWebhook_UnmatchedSubscriptionIsAcknowledged(t *testing.T) {
	gw := new(MockGateway)
	users := newMemUsers(subscribedUser())
	svc := newBilling(gw, users, nil)

	gw.On("ParseEvent", mock.Anything, mock.Anything).Return(&payment.Event{
		Type: payment.EventSubscriptionUpdated, SubscriptionID: "sub_other",
		Subscription: &payment.Subscription{ID: "sub_other", PriceID: "price_starter"},
	}, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), nil, "sig"))
	assert.Equal(t, domain.PlanProfessional, users.get("u1").Plan)
}

func TestHandleWebhook_PaymentFailedNotifiesWithoutMutation(t *testing.T) {
	gw := new(MockGateway)
	n := new(MockNotifier)
	users := newMemUsers(subscribedUser())
	svc := newBilling(gw, users, n)

	gw.On("ParseEvent", mock.Anything, mock.Anything).Return(&payment.Event{
		Type: payment.EventInvoicePaymentFailed, SubscriptionID: "sub_1",
	}, nil)
	n.On("PaymentFailed", mock.Anything, "ada@x.test", "Ada").Return(errors.New("sendgrid down"))

	require.NoError(t, svc.HandleWebhook(context.Background(), nil, "sig"))
	assert.Zero(t, users.writes)
	n.AssertExpectations(t)
}

func TestHandleWebhook_UnhandledTypeIsAcknowledged(t *testing.T) {
	gw := new(MockGateway)
	svc := newBilling(gw, newMemUsers(), nil)

	gw.On("ParseEvent", mock.Anything, mock.Anything).Return(&payment.Event{
		Type: payment.EventUnhandled, ProviderType: "customer.created",
	}, nil)

	assert.NoError(t, svc.HandleWebhook(context.Background(), nil, "sig"))
}

func TestCreateCheckout(t *testing.T) {
	gw := new(MockGateway)
	users := newMemUsers(&domain.User{ID: "u1", Email: "ada@x.test", Plan: domain.PlanFree})
	svc := newBilling(gw, users, nil)
	ctx := context.Background()

	gw.On("CreateCheckout", mock.Anything, payment.CheckoutParams{
		PriceID:    "price_pro",
		UserID:     "u1",
		Email:      "ada@x.test",
		SuccessURL: "https://app.test/dashboard?success=true",
		CancelURL:  "https://app.test/pricing?canceled=true",
	}).Return("https://checkout.test/s/1", nil)

	resp, err := svc.CreateCheckout(ctx, caller(domain.PlanFree), &domain.CheckoutRequest{PlanKey: "professional"})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.test/s/1", resp.URL)

	_, err = svc.CreateCheckout(ctx, caller(domain.PlanFree), &domain.CheckoutRequest{PlanKey: "FREE"})
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = svc.CreateCheckout(ctx, caller(domain.PlanFree), &domain.CheckoutRequest{})
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = svc.CreateCheckout(ctx, domain.Caller{UserID: "ghost", Plan: domain.PlanFree}, &domain.CheckoutRequest{PlanKey: "STARTER"})
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestCreateCheckout_UpstreamFailure(t *testing.T) {
	gw := new(MockGateway)
	users := newMemUsers(&domain.User{ID: "u1", Email: "ada@x.test", Plan: domain.PlanFree})
	svc := newBilling(gw, users, nil)

	gw.On("CreateCheckout", mock.Anything, mock.Anything).Return("", errors.New("stripe 502"))

	_, err := svc.CreateCheckout(context.Background(), caller(domain.PlanFree), &domain.CheckoutRequest{PlanKey: "STARTER"})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindUpstream))
	assert.Zero(t, users.writes)
}

func TestCreatePortal(t *testing.T) {
	gw := new(MockGateway)
	users := newMemUsers(subscribedUser(), &domain.User{ID: "u2", Email: "free@x.test", Plan: domain.PlanFree})
	svc := newBilling(gw, users, nil)
	ctx := context.Background()

	gw.On("CreatePortal", mock.Anything, "cus_1", "https://app.test/settings/billing").Return("https://portal.test/p/1", nil)

	resp, err := svc.CreatePortal(ctx, caller(domain.PlanProfessional))
	require.NoError(t, err)
	assert.Equal(t, "https://portal.test/p/1", resp.URL)

	_, err = svc.CreatePortal(ctx, domain.Caller{UserID: "u2", Plan: domain.PlanFree})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestHandleWebhook_UnsetSecretRejectsForgedEvent(t *testing.T) {
	users := newMemUsers(subscribedUser())
	svc := NewBillingService(payment.NewStripeGateway("sk_test", ""), users, domain.NewCatalog(testPrices),
		nil, metrics.Discard(), quietLogger(), "https://app.test/")

	forged := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(`{"id":"evt_f","object":"event","type":"customer.subscription.deleted","data":{"object":{"id":"sub_1","object":"subscription"}}}`),
		Secret:    "",
		Timestamp: time.Now(),
	})

	err := svc.HandleWebhook(context.Background(), forged.Payload, forged.Header)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindSignatureInvalid))
	assert.Zero(t, users.writes)
	assert.Equal(t, domain.PlanProfessional, users.get("u1").Plan)
}

func TestHandleWebhook_MissingPeriodEndStoresNull(t *testing.T) {
	gw := new(MockGateway)
	users := newMemUsers(subscribedUser())
	svc := newBilling(gw, users, nil)

	gw.On("ParseEvent", mock.Anything, mock.Anything).Return(&payment.Event{
		Type: payment.EventSubscriptionUpdated, SubscriptionID: "sub_1",
		Subscription: &payment.Subscription{ID: "sub_1", PriceID: "price_starter"},
	}, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), nil, "sig"))
	u := users.get("u1")
	assert.Equal(t, domain.PlanStarter, u.Plan)
	assert.Nil(t, u.PeriodEnd)
}
