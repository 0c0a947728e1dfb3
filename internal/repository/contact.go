package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/capitalstack/directory/internal/domain"
)

// ContactRepository handles database operations for contacts.
type ContactRepository struct {
	db DB
}

// NewContactRepository creates a new ContactRepository.
func NewContactRepository(db DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// contactColumns is the projection for a contact row. Email and phone are
// only selected when withContact is set.
func contactColumns(prefix string, withContact bool) []string {
	cols := []string{"id", "first_name", "last_name", "full_name"}
	if withContact {
		cols = append(cols, "email", "phone")
	}
	cols = append(cols, "title", "linkedin", "company", "buyer_id", "verified")
	if prefix == "" {
		return cols
	}
	for i, c := range cols {
		cols[i] = prefix + "." + c
	}
	return cols
}

func contactDest(c *domain.Contact, withContact bool) []any {
	dest := []any{&c.ID, &c.FirstName, &c.LastName, &c.FullName}
	if withContact {
		dest = append(dest, &c.Email, &c.Phone)
	}
	return append(dest, &c.Title, &c.LinkedIn, &c.Company, &c.BuyerID, &c.Verified)
}

func (r *ContactRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]domain.Contact, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build contact query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]domain.Contact, 0)
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(contactDest(&c, true)...); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// List returns one page of contacts ordered by last then first name.
func (r *ContactRepository) List(ctx context.Context, f domain.ContactFilter, p domain.Page) ([]domain.Contact, error) {
	q := psql.Select(contactColumns("", true)...).
		From("contacts").
		Where(contactPredicate(f)).
		OrderBy("last_name ASC", "first_name ASC").
		Limit(uint64(p.Limit)).
		Offset(uint64(p.Offset))
	return r.query(ctx, q)
}

// ListAll returns every matching contact, for export.
func (r *ContactRepository) ListAll(ctx context.Context, f domain.ContactFilter) ([]domain.Contact, error) {
	q := psql.Select(contactColumns("", true)...).
		From("contacts").
		Where(contactPredicate(f)).
		OrderBy("last_name ASC", "first_name ASC")
	return r.query(ctx, q)
}

// Count returns the number of contacts matching the filter.
func (r *ContactRepository) Count(ctx context.Context, f domain.ContactFilter) (int, error) {
	query, args, err := psql.Select("COUNT(*)").From("contacts").Where(contactPredicate(f)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build contact count: %w", err)
	}
	var n int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count contacts: %w", err)
	}
	return n, nil
}

// Create inserts a new contact.
func (r *ContactRepository) Create(ctx context.Context, c *domain.Contact) error {
	query := `
		INSERT INTO contacts (id, first_name, last_name, full_name, email, phone, title,
			linkedin, company, buyer_id, verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		c.ID, c.FirstName, c.LastName, c.FullName, c.Email, c.Phone, c.Title,
		c.LinkedIn, c.Company, c.BuyerID, c.Verified,
	)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// DeleteAll removes every contact.
func (r *ContactRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM contacts`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete contacts: %w", err)
	}
	return tag.RowsAffected(), nil
}
