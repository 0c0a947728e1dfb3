package service

import (
	"context"
	"errors"
	"strings"

	"github.com/capitalstack/directory/internal/domain"
	"github.com/capitalstack/directory/internal/repository"
	"github.com/go-playground/validator/v10"
)

// SavedService is the per-user bookmark ledger. Saving is an upsert and
// unsaving a delete, so repeated calls converge on the same state.
type SavedService struct {
	saved    SavedStore
	validate *validator.Validate
}

// NewSavedService creates a new SavedService.
func NewSavedService(saved SavedStore) *SavedService {
	return &SavedService{saved: saved, validate: newValidator()}
}

// ToggleBuyer saves or unsaves a buyer for the caller.
func (s *SavedService) ToggleBuyer(ctx context.Context, caller domain.Caller, req *domain.SaveBuyerRequest) (*domain.SaveResponse, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrAuthenticationRequired("unauthorized")
	}
	req.BuyerID = strings.TrimSpace(req.BuyerID)
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(formatValidationErrors(err))
	}

	var err error
	if req.Saved {
		err = s.saved.SaveBuyer(ctx, caller.UserID, req.BuyerID, emptyToNil(req.Notes))
	} else {
		err = s.saved.UnsaveBuyer(ctx, caller.UserID, req.BuyerID)
	}
	if err != nil {
		return nil, savedError("buyer", err)
	}
	return &domain.SaveResponse{Success: true, Saved: req.Saved}, nil
}

// ToggleContact saves or unsaves a contact for the caller.
func (s *SavedService) ToggleContact(ctx context.Context, caller domain.Caller, req *domain.SaveContactRequest) (*domain.SaveResponse, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrAuthenticationRequired("unauthorized")
	}
	req.ContactID = strings.TrimSpace(req.ContactID)
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(formatValidationErrors(err))
	}

	var err error
	if req.Saved {
		err = s.saved.SaveContact(ctx, caller.UserID, req.ContactID, emptyToNil(req.Notes))
	} else {
		err = s.saved.UnsaveContact(ctx, caller.UserID, req.ContactID)
	}
	if err != nil {
		return nil, savedError("contact", err)
	}
	return &domain.SaveResponse{Success: true, Saved: req.Saved}, nil
}

// ListBuyers returns the caller's saved buyers, newest first.
// Contact fields follow the same plan rule as the buyer listing.
func (s *SavedService) ListBuyers(ctx context.Context, caller domain.Caller) ([]domain.SavedBuyer, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrAuthenticationRequired("unauthorized")
	}
	saved, err := s.saved.ListBuyers(ctx, caller.UserID, caller.Can(domain.PlanStarter))
	if err != nil {
		return nil, domain.ErrInternal("failed to get saved buyers", err)
	}
	return saved, nil
}

// ListContacts returns the caller's saved contacts, newest first.
// Email and phone require STARTER, as on the contact listing.
func (s *SavedService) ListContacts(ctx context.Context, caller domain.Caller) ([]domain.SavedContact, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrAuthenticationRequired("unauthorized")
	}
	saved, err := s.saved.ListContacts(ctx, caller.UserID, caller.Can(domain.PlanStarter))
	if err != nil {
		return nil, domain.ErrInternal("failed to get saved contacts", err)
	}
	return saved, nil
}

func savedError(kind string, err error) error {
	if errors.Is(err, repository.ErrReferenceNotFound) {
		return domain.ErrNotFound(kind + " not found")
	}
	return domain.ErrInternal("failed to save "+kind, err)
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
