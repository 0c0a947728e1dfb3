package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/capitalstack/directory/internal/domain"
)

// AuditRepository appends search and export history rows.
type AuditRepository struct {
	db DB
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// RecordSearch appends a search history row.
func (r *AuditRepository) RecordSearch(ctx context.Context, rec domain.SearchRecord) error {
	filters, err := json.Marshal(rec.Filters)
	if err != nil {
		return fmt.Errorf("failed to encode search filters: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO search_history (user_id, query, filters, results) VALUES ($1, $2, $3, $4)`,
		rec.UserID, rec.Query, filters, rec.Results,
	)
	if err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}

// RecordExport appends an export history row.
func (r *AuditRepository) RecordExport(ctx context.Context, rec domain.ExportRecord) error {
	filters, err := json.Marshal(rec.Filters)
	if err != nil {
		return fmt.Errorf("failed to encode export filters: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO export_history (user_id, type, count, filters) VALUES ($1, $2, $3, $4)`,
		rec.UserID, string(rec.Kind), rec.Count, filters,
	)
	if err != nil {
		return fmt.Errorf("failed to record export: %w", err)
	}
	return nil
}

// CountSince returns the user's search and export counts since the given instant.
func (r *AuditRepository) CountSince(ctx context.Context, userID string, since time.Time) (searches, exports int, err error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM search_history WHERE user_id = $1 AND created_at >= $2),
			(SELECT COUNT(*) FROM export_history WHERE user_id = $1 AND created_at >= $2)
	`
	if err := r.db.QueryRow(ctx, query, userID, since).Scan(&searches, &exports); err != nil {
		return 0, 0, fmt.Errorf("failed to count usage: %w", err)
	}
	return searches, exports, nil
}
