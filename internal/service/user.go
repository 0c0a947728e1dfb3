package service

import (
	"context"
	"time"

	"github.com/capitalstack/directory/internal/domain"
	"github.com/go-playground/validator/v10"
)

// UserService serves the caller's own profile and usage.
type UserService struct {
	users    UserStore
	audit    AuditStore
	validate *validator.Validate
	now      func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, audit AuditStore) *UserService {
	return &UserService{users: users, audit: audit, validate: newValidator(), now: time.Now}
}

// Profile returns the caller's account.
func (s *UserService) Profile(ctx context.Context, caller domain.Caller) (*domain.UserResponse, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrAuthenticationRequired("unauthorized")
	}
	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, domain.ErrInternal("failed to find user", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user not found")
	}
	resp := domain.NewUserResponse(user)
	return &resp, nil
}

// UpdateProfile writes name, company and phone. Email is immutable.
func (s *UserService) UpdateProfile(ctx context.Context, caller domain.Caller, req *domain.UpdateProfileRequest) (*domain.UserResponse, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrAuthenticationRequired("unauthorized")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(formatValidationErrors(err))
	}

	user, err := s.users.UpdateProfile(ctx, caller.UserID, *req)
	if err != nil {
		return nil, domain.ErrInternal("failed to update user", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user not found")
	}
	resp := domain.NewUserResponse(user)
	return &resp, nil
}

// Usage reports this calendar month's metered activity against plan limits.
// View counts are not metered and always report zero used.
func (s *UserService) Usage(ctx context.Context, caller domain.Caller) (*domain.UsageReport, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrAuthenticationRequired("unauthorized")
	}

	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	searches, exports, err := s.audit.CountSince(ctx, caller.UserID, start)
	if err != nil {
		return nil, domain.ErrInternal("failed to load usage", err)
	}

	used := map[domain.LimitKind]int{
		domain.LimitBuyerViews:   0,
		domain.LimitContactViews: 0,
		domain.LimitExports:      exports,
		domain.LimitSearches:     searches,
	}
	remaining := make(map[domain.LimitKind]domain.Remaining, len(used))
	for _, kind := range domain.LimitKinds() {
		remaining[kind] = domain.RemainingUsage(caller.Plan, kind, used[kind])
	}

	return &domain.UsageReport{
		Plan:        caller.Plan,
		PeriodStart: start,
		PeriodEnd:   start.AddDate(0, 1, 0),
		Used:        used,
		Remaining:   remaining,
	}, nil
}
