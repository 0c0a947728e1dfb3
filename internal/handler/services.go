package handler

import (
	"context"

	"github.com/capitalstack/directory/internal/domain"
	"github.com/capitalstack/directory/internal/service"
)

// The handlers depend on these narrow views of the services so they can be
// exercised without a database.

// Directory serves buyer and contact listings and exports.
type Directory interface {
	AuthorizeBuyers(caller domain.Caller) error
	AuthorizeContacts(caller domain.Caller) error
	ListBuyers(ctx context.Context, caller domain.Caller, f domain.BuyerFilter, p domain.Page) (*domain.BuyerPage, error)
	ListContacts(ctx context.Context, caller domain.Caller, f domain.ContactFilter, p domain.Page) (*domain.ContactPage, error)
	ExportBuyers(ctx context.Context, caller domain.Caller, f domain.BuyerFilter) (*domain.Export, error)
	ExportContacts(ctx context.Context, caller domain.Caller, f domain.ContactFilter) (*domain.Export, error)
}

// SavedItems is the caller's bookmark ledger.
type SavedItems interface {
	ToggleBuyer(ctx context.Context, caller domain.Caller, req *domain.SaveBuyerRequest) (*domain.SaveResponse, error)
	ToggleContact(ctx context.Context, caller domain.Caller, req *domain.SaveContactRequest) (*domain.SaveResponse, error)
	ListBuyers(ctx context.Context, caller domain.Caller) ([]domain.SavedBuyer, error)
	ListContacts(ctx context.Context, caller domain.Caller) ([]domain.SavedContact, error)
}

// Billing creates provider sessions and consumes provider events.
type Billing interface {
	CreateCheckout(ctx context.Context, caller domain.Caller, req *domain.CheckoutRequest) (*domain.SessionResponse, error)
	CreatePortal(ctx context.Context, caller domain.Caller) (*domain.SessionResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// Accounts is the caller's profile and usage.
type Accounts interface {
	Profile(ctx context.Context, caller domain.Caller) (*domain.UserResponse, error)
	UpdateProfile(ctx context.Context, caller domain.Caller, req *domain.UpdateProfileRequest) (*domain.UserResponse, error)
	Usage(ctx context.Context, caller domain.Caller) (*domain.UsageReport, error)
}

// Authenticator registers and logs in users.
type Authenticator interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.LoginResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	ListUsers(ctx context.Context) ([]domain.UserResponse, error)
}

// System reports store health and aggregate counts.
type System interface {
	Health(ctx context.Context) (service.HealthReport, bool)
	AdminStats(ctx context.Context) (*service.AdminStats, error)
}

var (
	_ Directory     = (*service.DirectoryService)(nil)
	_ SavedItems    = (*service.SavedService)(nil)
	_ Billing       = (*service.BillingService)(nil)
	_ Accounts      = (*service.UserService)(nil)
	_ Authenticator = (*service.AuthService)(nil)
	_ System        = (*service.SystemService)(nil)
)
