package service

import (
	"context"
	"testing"

	"github.com/capitalstack/directory/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleBuyer_DoubleSaveKeepsLatestNote(t *testing.T) {
	store := newMemSaved("acme")
	svc := NewSavedService(store)
	ctx := context.Background()
	c := caller(domain.PlanFree)

	_, err := svc.ToggleBuyer(ctx, c, &domain.SaveBuyerRequest{BuyerID: "acme", Saved: true, Notes: strPtr("first")})
	require.NoError(t, err)
	resp, err := svc.ToggleBuyer(ctx, c, &domain.SaveBuyerRequest{BuyerID: "acme", Saved: true, Notes: strPtr("second")})
	require.NoError(t, err)
	assert.Equal(t, &domain.SaveResponse{Success: true, Saved: true}, resp)

	saved, err := svc.ListBuyers(ctx, c)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "second", *saved[0].Notes)
}

func TestToggleBuyer_UnsaveNeverSavedIsNoop(t *testing.T) {
	store := newMemSaved("acme")
	svc := NewSavedService(store)
	ctx := context.Background()
	c := caller(domain.PlanFree)

	resp, err := svc.ToggleBuyer(ctx, c, &domain.SaveBuyerRequest{BuyerID: "acme", Saved: false})
	require.NoError(t, err)
	assert.False(t, resp.Saved)

	saved, err := svc.ListBuyers(ctx, c)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestToggleBuyer_Validation(t *testing.T) {
	svc := NewSavedService(newMemSaved())

	_, err := svc.ToggleBuyer(context.Background(), caller(domain.PlanFree), &domain.SaveBuyerRequest{BuyerID: "  ", Saved: true})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Contains(t, err.Error(), "buyerId is required")

	_, err = svc.ToggleBuyer(context.Background(), domain.Caller{}, &domain.SaveBuyerRequest{BuyerID: "acme", Saved: true})
	assert.True(t, domain.IsKind(err, domain.KindAuthenticationRequired))
}

func TestToggleContact_UnknownIDIsNotFound(t *testing.T) {
	svc := NewSavedService(newMemSaved())

	_, err := svc.ToggleContact(context.Background(), caller(domain.PlanStarter), &domain.SaveContactRequest{ContactID: "missing", Saved: true})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestToggleContact_SaveThenUnsave(t *testing.T) {
	svc := NewSavedService(newMemSaved("c1"))
	ctx := context.Background()
	c := caller(domain.PlanStarter)

	_, err := svc.ToggleContact(ctx, c, &domain.SaveContactRequest{ContactID: "c1", Saved: true, Notes: strPtr("")})
	require.NoError(t, err)
	saved, err := svc.ListContacts(ctx, c)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Nil(t, saved[0].Notes)

	_, err = svc.ToggleContact(ctx, c, &domain.SaveContactRequest{ContactID: "c1", Saved: false})
	require.NoError(t, err)
	saved, err = svc.ListContacts(ctx, c)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestListContacts_RedactedBelowStarter(t *testing.T) {
	svc := NewSavedService(newMemSaved("c1"))
	ctx := context.Background()

	_, err := svc.ToggleContact(ctx, caller(domain.PlanStarter), &domain.SaveContactRequest{ContactID: "c1", Saved: true})
	require.NoError(t, err)

	saved, err := svc.ListContacts(ctx, caller(domain.PlanStarter))
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "c1@x.test", *saved[0].Email)

	// Downgraded to FREE: the bookmark stays, the contact details do not.
	saved, err = svc.ListContacts(ctx, caller(domain.PlanFree))
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Nil(t, saved[0].Email)
	assert.Nil(t, saved[0].Phone)
}
