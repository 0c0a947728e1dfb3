package handler

import (
	"context"
	"net/http"

	"github.com/capitalstack/directory/internal/contextkeys"
	"github.com/capitalstack/directory/internal/domain"
	"github.com/capitalstack/directory/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockDirectory struct{ mock.Mock }

func (m *MockDirectory) AuthorizeBuyers(caller domain.Caller) error {
	return m.Called(caller).Error(0)
}

func (m *MockDirectory) AuthorizeContacts(caller domain.Caller) error {
	return m.Called(caller).Error(0)
}

func (m *MockDirectory) ListBuyers(ctx context.Context, caller domain.Caller, f domain.BuyerFilter, p domain.Page) (*domain.BuyerPage, error) {
	args := m.Called(ctx, caller, f, p)
	page, _ := args.Get(0).(*domain.BuyerPage)
	return page, args.Error(1)
}

func (m *MockDirectory) ListContacts(ctx context.Context, caller domain.Caller, f domain.ContactFilter, p domain.Page) (*domain.ContactPage, error) {
	args := m.Called(ctx, caller, f, p)
	page, _ := args.Get(0).(*domain.ContactPage)
	return page, args.Error(1)
}

func (m *MockDirectory) ExportBuyers(ctx context.Context, caller domain.Caller, f domain.BuyerFilter) (*domain.Export, error) {
	args := m.Called(ctx, caller, f)
	export, _ := args.Get(0).(*domain.Export)
	return export, args.Error(1)
}

func (m *MockDirectory) ExportContacts(ctx context.Context, caller domain.Caller, f domain.ContactFilter) (*domain.Export, error) {
	args := m.Called(ctx, caller, f)
	export, _ := args.Get(0).(*domain.Export)
	return export, args.Error(1)
}

type MockSaved struct{ mock.Mock }

func (m *MockSaved) ToggleBuyer(ctx context.Context, caller domain.Caller, req *domain.SaveBuyerRequest) (*domain.SaveResponse, error) {
	args := m.Called(ctx, caller, req)
	resp, _ := args.Get(0).(*domain.SaveResponse)
	return resp, args.Error(1)
}

func (m *MockSaved) ToggleContact(ctx context.Context, caller domain.Caller, req *domain.SaveContactRequest) (*domain.SaveResponse, error) {
	args := m.Called(ctx, caller, req)
	resp, _ := args.Get(0).(*domain.SaveResponse)
	return resp, args.Error(1)
}

func (m *MockSaved) ListBuyers(ctx context.Context, caller domain.Caller) ([]domain.SavedBuyer, error) {
	args := m.Called(ctx, caller)
	items, _ := args.Get(0).([]domain.SavedBuyer)
	return items, args.Error(1)
}

func (m *MockSaved) ListContacts(ctx context.Context, caller domain.Caller) ([]domain.SavedContact, error) {
	args := m.Called(ctx, caller)
	items, _ := args.Get(0).([]domain.SavedContact)
	return items, args.Error(1)
}

type MockBilling struct{ mock.Mock }

func (m *MockBilling) CreateCheckout(ctx context.Context, caller domain.Caller, req *domain.CheckoutRequest) (*domain.SessionResponse, error) {
	args := m.Called(ctx, caller, req)
	resp, _ := args.Get(0).(*domain.SessionResponse)
	return resp, args.Error(1)
}

func (m *MockBilling) CreatePortal(ctx context.Context, caller domain.Caller) (*domain.SessionResponse, error) {
	args := m.Called(ctx, caller)
	resp, _ := args.Get(0).(*domain.SessionResponse)
	return resp, args.Error(1)
}

func (m *MockBilling) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return m.Called(ctx, payload, signature).Error(0)
}

type MockSystem struct{ mock.Mock }

func (m *MockSystem) Health(ctx context.Context) (service.HealthReport, bool) {
	args := m.Called(ctx)
	return args.Get(0).(service.HealthReport), args.Bool(1)
}

func (m *MockSystem) AdminStats(ctx context.Context) (*service.AdminStats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*service.AdminStats)
	return stats, args.Error(1)
}

func withCaller(r *http.Request, caller domain.Caller) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), contextkeys.Caller, caller))
}
