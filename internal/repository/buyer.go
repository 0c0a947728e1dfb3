package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/capitalstack/directory/internal/domain"
)

// BuyerRepository handles database operations for buyers.
type BuyerRepository struct {
	db DB
}

// NewBuyerRepository creates a new BuyerRepository.
func NewBuyerRepository(db DB) *BuyerRepository {
	return &BuyerRepository{db: db}
}

// buyerColumns is the projection for a buyer row. Contact columns are only
// selected when the caller is entitled to them, so redacted values never
// leave the database.
func buyerColumns(prefix string, withContact bool) []string {
	cols := []string{"id", "company", "category", "buy_box", "markets", "deal_size", "submit_deal"}
	if withContact {
		cols = append(cols, "email", "phone")
	}
	cols = append(cols, "hq", "source_url", "verified")
	if prefix == "" {
		return cols
	}
	for i, c := range cols {
		cols[i] = prefix + "." + c
	}
	return cols
}

func buyerDest(b *domain.Buyer, withContact bool) []any {
	dest := []any{&b.ID, &b.Company, &b.Category, &b.BuyBox, &b.Markets, &b.DealSize, &b.SubmitDeal}
	if withContact {
		dest = append(dest, &b.Email, &b.Phone)
	}
	return append(dest, &b.HQ, &b.SourceURL, &b.Verified)
}

func (r *BuyerRepository) query(ctx context.Context, q squirrel.SelectBuilder, withContact bool) ([]domain.Buyer, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build buyer query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list buyers: %w", err)
	}
	defer rows.Close()

	buyers := make([]domain.Buyer, 0)
	for rows.Next() {
		var b domain.Buyer
		if err := rows.Scan(buyerDest(&b, withContact)...); err != nil {
			return nil, fmt.Errorf("failed to scan buyer: %w", err)
		}
		buyers = append(buyers, b)
	}
	return buyers, rows.Err()
}

// List returns one page of buyers ordered by company name.
func (r *BuyerRepository) List(ctx context.Context, f domain.BuyerFilter, p domain.Page, withContact bool) ([]domain.Buyer, error) {
	q := psql.Select(buyerColumns("", withContact)...).
		From("buyers").
		Where(buyerPredicate(f)).
		OrderBy("company ASC").
		Limit(uint64(p.Limit)).
		Offset(uint64(p.Offset))
	return r.query(ctx, q, withContact)
}

// ListAll returns every matching buyer with contact fields, for export.
func (r *BuyerRepository) ListAll(ctx context.Context, f domain.BuyerFilter) ([]domain.Buyer, error) {
	q := psql.Select(buyerColumns("", true)...).
		From("buyers").
		Where(buyerPredicate(f)).
		OrderBy("company ASC")
	return r.query(ctx, q, true)
}

// Count returns the number of buyers matching the filter.
func (r *BuyerRepository) Count(ctx context.Context, f domain.BuyerFilter) (int, error) {
	query, args, err := psql.Select("COUNT(*)").From("buyers").Where(buyerPredicate(f)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build buyer count: %w", err)
	}
	var n int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count buyers: %w", err)
	}
	return n, nil
}

// Upsert inserts a buyer or refreshes the row with the same id.
func (r *BuyerRepository) Upsert(ctx context.Context, b *domain.Buyer) error {
	query := `
		INSERT INTO buyers (id, company, category, buy_box, markets, deal_size, submit_deal,
			email, phone, hq, source_url, verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			company = EXCLUDED.company,
			category = EXCLUDED.category,
			buy_box = EXCLUDED.buy_box,
			markets = EXCLUDED.markets,
			deal_size = EXCLUDED.deal_size,
			submit_deal = EXCLUDED.submit_deal,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			hq = EXCLUDED.hq,
			source_url = EXCLUDED.source_url,
			verified = EXCLUDED.verified,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query,
		b.ID, b.Company, b.Category, b.BuyBox, b.Markets, b.DealSize, b.SubmitDeal,
		b.Email, b.Phone, b.HQ, b.SourceURL, b.Verified,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert buyer %s: %w", b.ID, err)
	}
	return nil
}

// BuyerCompany is a buyer's id paired with its company name.
type BuyerCompany struct {
	ID      string
	Company string
}

// Companies returns every buyer's id and company name ordered by company,
// used to link contacts at import.
func (r *BuyerRepository) Companies(ctx context.Context) ([]BuyerCompany, error) {
	rows, err := r.db.Query(ctx, `SELECT id, company FROM buyers ORDER BY company ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list buyer companies: %w", err)
	}
	defer rows.Close()

	var out []BuyerCompany
	for rows.Next() {
		var c BuyerCompany
		if err := rows.Scan(&c.ID, &c.Company); err != nil {
			return nil, fmt.Errorf("failed to scan buyer company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteAll removes every buyer.
func (r *BuyerRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM buyers`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete buyers: %w", err)
	}
	return tag.RowsAffected(), nil
}
