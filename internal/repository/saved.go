package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/capitalstack/directory/internal/domain"
)

// SavedRepository persists per-user bookmarks of buyers and contacts.
type SavedRepository struct {
	db DB
}

// NewSavedRepository creates a new SavedRepository.
func NewSavedRepository(db DB) *SavedRepository {
	return &SavedRepository{db: db}
}

// SaveBuyer bookmarks a buyer, or replaces the notes of an existing bookmark.
func (r *SavedRepository) SaveBuyer(ctx context.Context, userID, buyerID string, notes *string) error {
	query := `
		INSERT INTO saved_buyers (user_id, buyer_id, notes)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, buyer_id) DO UPDATE SET notes = EXCLUDED.notes
	`
	if _, err := r.db.Exec(ctx, query, userID, buyerID, notes); err != nil {
		if isForeignKeyViolation(err) {
			return ErrReferenceNotFound
		}
		return fmt.Errorf("failed to save buyer: %w", err)
	}
	return nil
}

// UnsaveBuyer removes a bookmark. Removing an absent bookmark is not an error.
func (r *SavedRepository) UnsaveBuyer(ctx context.Context, userID, buyerID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM saved_buyers WHERE user_id = $1 AND buyer_id = $2`, userID, buyerID)
	if err != nil {
		return fmt.Errorf("failed to unsave buyer: %w", err)
	}
	return nil
}

// SaveContact bookmarks a contact, or replaces the notes of an existing bookmark.
func (r *SavedRepository) SaveContact(ctx context.Context, userID, contactID string, notes *string) error {
	query := `
		INSERT INTO saved_contacts (user_id, contact_id, notes)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, contact_id) DO UPDATE SET notes = EXCLUDED.notes
	`
	if _, err := r.db.Exec(ctx, query, userID, contactID, notes); err != nil {
		if isForeignKeyViolation(err) {
			return ErrReferenceNotFound
		}
		return fmt.Errorf("failed to save contact: %w", err)
	}
	return nil
}

// UnsaveContact removes a bookmark. Removing an absent bookmark is not an error.
func (r *SavedRepository) UnsaveContact(ctx context.Context, userID, contactID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM saved_contacts WHERE user_id = $1 AND contact_id = $2`, userID, contactID)
	if err != nil {
		return fmt.Errorf("failed to unsave contact: %w", err)
	}
	return nil
}

// ListBuyers returns the user's saved buyers, newest first.
func (r *SavedRepository) ListBuyers(ctx context.Context, userID string, withContact bool) ([]domain.SavedBuyer, error) {
	cols := append(buyerColumns("b", withContact), "s.created_at", "s.notes")
	query := `SELECT ` + strings.Join(cols, ", ") + `
		FROM saved_buyers s
		JOIN buyers b ON b.id = s.buyer_id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved buyers: %w", err)
	}
	defer rows.Close()

	saved := make([]domain.SavedBuyer, 0)
	for rows.Next() {
		var sb domain.SavedBuyer
		dest := append(buyerDest(&sb.Buyer, withContact), &sb.SavedAt, &sb.Notes)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan saved buyer: %w", err)
		}
		saved = append(saved, sb)
	}
	return saved, rows.Err()
}

// ListContacts returns the user's saved contacts, newest first. Email and
// phone are projected only when withContact is set.
func (r *SavedRepository) ListContacts(ctx context.Context, userID string, withContact bool) ([]domain.SavedContact, error) {
	cols := append(contactColumns("c", withContact), "s.created_at", "s.notes")
	query := `SELECT ` + strings.Join(cols, ", ") + `
		FROM saved_contacts s
		JOIN contacts c ON c.id = s.contact_id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved contacts: %w", err)
	}
	defer rows.Close()

	saved := make([]domain.SavedContact, 0)
	for rows.Next() {
		var sc domain.SavedContact
		dest := append(contactDest(&sc.Contact, withContact), &sc.SavedAt, &sc.Notes)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan saved contact: %w", err)
		}
		saved = append(saved, sc)
	}
	return saved, rows.Err()
}

// DeleteAllBuyers removes every buyer bookmark for every user.
func (r *SavedRepository) DeleteAllBuyers(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM saved_buyers`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete saved buyers: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteAllContacts removes every contact bookmark for every user.
func (r *SavedRepository) DeleteAllContacts(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM saved_contacts`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete saved contacts: %w", err)
	}
	return tag.RowsAffected(), nil
}
