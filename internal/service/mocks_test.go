package service

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/capitalstack/directory/internal/domain"
	"github.com/capitalstack/directory/internal/repository"
	"github.com/capitalstack/directory/pkg/payment"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// MockBuyerStore is a mock implementation of BuyerStore.
type MockBuyerStore struct {
	mock.Mock
}

func (m *MockBuyerStore) List(ctx context.Context, f domain.BuyerFilter, p domain.Page, withContact bool) ([]domain.Buyer, error) {
	args := m.Called(ctx, f, p, withContact)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Buyer), args.Error(1)
}

func (m *MockBuyerStore) ListAll(ctx context.Context, f domain.BuyerFilter) ([]domain.Buyer, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Buyer), args.Error(1)
}

func (m *MockBuyerStore) Count(ctx context.Context, f domain.BuyerFilter) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

func (m *MockBuyerStore) Upsert(ctx context.Context, b *domain.Buyer) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBuyerStore) Companies(ctx context.Context) ([]repository.BuyerCompany, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.BuyerCompany), args.Error(1)
}

func (m *MockBuyerStore) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return int64(args.Int(0)), args.Error(1)
}

// MockContactStore is a mock implementation of ContactStore.
type MockContactStore struct {
	mock.Mock
}

func (m *MockContactStore) List(ctx context.Context, f domain.ContactFilter, p domain.Page) ([]domain.Contact, error) {
	args := m.Called(ctx, f, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Contact), args.Error(1)
}

func (m *MockContactStore) ListAll(ctx context.Context, f domain.ContactFilter) ([]domain.Contact, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Contact), args.Error(1)
}

func (m *MockContactStore) Count(ctx context.Context, f domain.ContactFilter) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

func (m *MockContactStore) Create(ctx context.Context, c *domain.Contact) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContactStore) DeleteAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return int64(args.Int(0)), args.Error(1)
}

// MockAuditStore is a mock implementation of AuditStore.
type MockAuditStore struct {
	mock.Mock
}

func (m *MockAuditStore) RecordSearch(ctx context.Context, rec domain.SearchRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockAuditStore) RecordExport(ctx context.Context, rec domain.ExportRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockAuditStore) CountSince(ctx context.Context, userID string, since time.Time) (int, int, error) {
	args := m.Called(ctx, userID, since)
	return args.Int(0), args.Int(1), args.Error(2)
}

// MockGateway is a mock implementation of payment.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCheckout(ctx context.Context, p payment.CheckoutParams) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) CreatePortal(ctx context.Context, customerID, returnURL string) (string, error) {
	args := m.Called(ctx, customerID, returnURL)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) RetrieveSubscription(ctx context.Context, id string) (*payment.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Subscription), args.Error(1)
}

func (m *MockGateway) ParseEvent(payload []byte, signature string) (*payment.Event, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Event), args.Error(1)
}

// MockNotifier records payment notices.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) PaymentFailed(ctx context.Context, toEmail, toName string) error {
	args := m.Called(ctx, toEmail, toName)
	return args.Error(0)
}

// memUsers is an in-memory UserStore with the same keyed-update semantics as
// the SQL repository.
type memUsers struct {
	mu     sync.Mutex
	byID   map[string]*domain.User
	writes int
}

func newMemUsers(users ...*domain.User) *memUsers {
	m := &memUsers{byID: make(map[string]*domain.User)}
	for _, u := range users {
		m.byID[u.ID] = u
	}
	return m
}

func (m *memUsers) get(id string) domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.byID[id]
}

func (m *memUsers) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.byID[u.ID] = u
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindBySubscription(_ context.Context, ref string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.SubscriptionRef != nil && *u.SubscriptionRef == ref {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) Exists(ctx context.Context, email string) (bool, error) {
	u, _ := m.FindByEmail(ctx, email)
	return u != nil, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id string, req domain.UpdateProfileRequest) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	m.writes++
	if req.Name != nil && *req.Name != "" {
		u.Name = req.Name
	}
	if req.Company != nil && *req.Company != "" {
		u.Company = req.Company
	}
	if req.Phone != nil && *req.Phone != "" {
		u.Phone = req.Phone
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) ApplyCheckout(_ context.Context, userID string, s domain.BillingState) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return 0, nil
	}
	m.writes++
	u.CustomerRef, u.SubscriptionRef, u.PriceRef = &s.CustomerRef, &s.SubscriptionRef, &s.PriceRef
	u.PeriodEnd = s.PeriodEnd
	u.Plan = s.Plan
	return 1, nil
}

func (m *memUsers) UpdateBySubscription(_ context.Context, s domain.BillingState) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.byID {
		if u.SubscriptionRef != nil && *u.SubscriptionRef == s.SubscriptionRef {
			m.writes++
			price := s.PriceRef
			u.PriceRef, u.PeriodEnd, u.Plan = &price, s.PeriodEnd, s.Plan
			n++
		}
	}
	return n, nil
}

func (m *memUsers) ClearSubscription(_ context.Context, ref string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.byID {
		if u.SubscriptionRef != nil && *u.SubscriptionRef == ref {
			m.writes++
			u.SubscriptionRef, u.PriceRef, u.PeriodEnd = nil, nil, nil
			u.Plan = domain.PlanFree
			n++
		}
	}
	return n, nil
}

func (m *memUsers) ListAll(_ context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.User, 0, len(m.byID))
	for _, u := range m.byID {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type savedKey struct{ user, item string }

// memSaved is an in-memory SavedStore keyed like the unique constraint.
type memSaved struct {
	mu       sync.Mutex
	known    map[string]bool
	buyers   map[savedKey]*string
	contacts map[savedKey]*string
}

func newMemSaved(knownIDs ...string) *memSaved {
	m := &memSaved{
		known:    make(map[string]bool),
		buyers:   make(map[savedKey]*string),
		contacts: make(map[savedKey]*string),
	}
	for _, id := range knownIDs {
		m.known[id] = true
	}
	return m
}

func (m *memSaved) SaveBuyer(_ context.Context, userID, buyerID string, notes *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.known[buyerID] {
		return repository.ErrReferenceNotFound
	}
	m.buyers[savedKey{userID, buyerID}] = notes
	return nil
}

func (m *memSaved) UnsaveBuyer(_ context.Context, userID, buyerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.buyers, savedKey{userID, buyerID})
	return nil
}

func (m *memSaved) SaveContact(_ context.Context, userID, contactID string, notes *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.known[contactID] {
		return repository.ErrReferenceNotFound
	}
	m.contacts[savedKey{userID, contactID}] = notes
	return nil
}

func (m *memSaved) UnsaveContact(_ context.Context, userID, contactID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.contacts, savedKey{userID, contactID})
	return nil
}

func (m *memSaved) ListBuyers(_ context.Context, userID string, _ bool) ([]domain.SavedBuyer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.SavedBuyer, 0)
	for k, notes := range m.buyers {
		if k.user == userID {
			out = append(out, domain.SavedBuyer{Buyer: domain.Buyer{ID: k.item}, Notes: notes})
		}
	}
	return out, nil
}

func (m *memSaved) ListContacts(_ context.Context, userID string, withContact bool) ([]domain.SavedContact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.SavedContact, 0)
	for k, notes := range m.contacts {
		if k.user == userID {
			c := domain.Contact{ID: k.item}
			if withContact {
				c.Email, c.Phone = strPtr(k.item+"@x.test"), strPtr("555-0100")
			}
			out = append(out, domain.SavedContact{Contact: c, Notes: notes})
		}
	}
	return out, nil
}

func (m *memSaved) DeleteAllBuyers(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.buyers))
	m.buyers = make(map[savedKey]*string)
	return n, nil
}

func (m *memSaved) DeleteAllContacts(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.contacts))
	m.contacts = make(map[savedKey]*string)
	return n, nil
}

func strPtr(s string) *string { return &s }
