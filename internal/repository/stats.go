package repository

import (
	"context"
	"fmt"

	"github.com/capitalstack/directory/internal/domain"
)

// DirectoryStats are the row counts reported by health and admin endpoints.
type DirectoryStats struct {
	Buyers   int            `json:"buyers"`
	Contacts int            `json:"contacts"`
	Users    int            `json:"users"`
	ByPlan   map[string]int `json:"byPlan,omitempty"`
}

// StatsRepository reads aggregate counts.
type StatsRepository struct {
	db DB
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(db DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Ping checks database connectivity.
func (r *StatsRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// Counts returns the number of buyers, contacts and users.
func (r *StatsRepository) Counts(ctx context.Context) (DirectoryStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM buyers),
			(SELECT COUNT(*) FROM contacts),
			(SELECT COUNT(*) FROM users)
	`
	var s DirectoryStats
	if err := r.db.QueryRow(ctx, query).Scan(&s.Buyers, &s.Contacts, &s.Users); err != nil {
		return DirectoryStats{}, fmt.Errorf("failed to count rows: %w", err)
	}
	return s, nil
}

// UsersByPlan returns the number of users on each plan. Every known plan is present.
func (r *StatsRepository) UsersByPlan(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `SELECT plan, COUNT(*) FROM users GROUP BY plan`)
	if err != nil {
		return nil, fmt.Errorf("failed to count users by plan: %w", err)
	}
	defer rows.Close()

	out := map[string]int{
		string(domain.PlanFree):         0,
		string(domain.PlanStarter):      0,
		string(domain.PlanProfessional): 0,
		string(domain.PlanEnterprise):   0,
	}
	for rows.Next() {
		var (
			plan string
			n    int
		)
		if err := rows.Scan(&plan, &n); err != nil {
			return nil, fmt.Errorf("failed to scan plan count: %w", err)
		}
		out[plan] = n
	}
	return out, rows.Err()
}
