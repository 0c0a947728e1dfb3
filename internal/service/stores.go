package service

import (
	"context"
	"time"

	"github.com/capitalstack/directory/internal/domain"
	"github.com/capitalstack/directory/internal/repository"
)

// UserStore is the user persistence used by auth, profile and billing.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindBySubscription(ctx context.Context, subscriptionRef string) (*domain.User, error)
	Exists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id string, req domain.UpdateProfileRequest) (*domain.User, error)
	ApplyCheckout(ctx context.Context, userID string, s domain.BillingState) (int64, error)
	UpdateBySubscription(ctx context.Context, s domain.BillingState) (int64, error)
	ClearSubscription(ctx context.Context, subscriptionRef string) (int64, error)
	ListAll(ctx context.Context) ([]*domain.User, error)
}

// BuyerStore reads and writes the buyer dataset.
type BuyerStore interface {
	List(ctx context.Context, f domain.BuyerFilter, p domain.Page, withContact bool) ([]domain.Buyer, error)
	ListAll(ctx context.Context, f domain.BuyerFilter) ([]domain.Buyer, error)
	Count(ctx context.Context, f domain.BuyerFilter) (int, error)
	Upsert(ctx context.Context, b *domain.Buyer) error
	Companies(ctx context.Context) ([]repository.BuyerCompany, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// ContactStore reads and writes the contact dataset.
type ContactStore interface {
	List(ctx context.Context, f domain.ContactFilter, p domain.Page) ([]domain.Contact, error)
	ListAll(ctx context.Context, f domain.ContactFilter) ([]domain.Contact, error)
	Count(ctx context.Context, f domain.ContactFilter) (int, error)
	Create(ctx context.Context, c *domain.Contact) error
	DeleteAll(ctx context.Context) (int64, error)
}

// SavedStore persists bookmarks.
type SavedStore interface {
	SaveBuyer(ctx context.Context, userID, buyerID string, notes *string) error
	UnsaveBuyer(ctx context.Context, userID, buyerID string) error
	SaveContact(ctx context.Context, userID, contactID string, notes *string) error
	UnsaveContact(ctx context.Context, userID, contactID string) error
	ListBuyers(ctx context.Context, userID string, withContact bool) ([]domain.SavedBuyer, error)
	ListContacts(ctx context.Context, userID string, withContact bool) ([]domain.SavedContact, error)
	DeleteAllBuyers(ctx context.Context) (int64, error)
	DeleteAllContacts(ctx context.Context) (int64, error)
}

// AuditStore appends and counts history rows.
type AuditStore interface {
	RecordSearch(ctx context.Context, rec domain.SearchRecord) error
	RecordExport(ctx context.Context, rec domain.ExportRecord) error
	CountSince(ctx context.Context, userID string, since time.Time) (searches, exports int, err error)
}

// StatsStore reads aggregate counts.
type StatsStore interface {
	Ping(ctx context.Context) error
	Counts(ctx context.Context) (repository.DirectoryStats, error)
	UsersByPlan(ctx context.Context) (map[string]int, error)
}

var (
	_ UserStore    = (*repository.UserRepository)(nil)
	_ BuyerStore   = (*repository.BuyerRepository)(nil)
	_ ContactStore = (*repository.ContactRepository)(nil)
	_ SavedStore   = (*repository.SavedRepository)(nil)
	_ AuditStore   = (*repository.AuditRepository)(nil)
	_ StatsStore   = (*repository.StatsRepository)(nil)
)
