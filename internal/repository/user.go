package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/capitalstack/directory/internal/domain"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, name, email, password, role, company, phone, plan,
	stripe_customer_id, stripe_subscription_id, stripe_price_id, stripe_current_period_end,
	created_at, updated_at`

// UserRepository handles database operations for users.
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		plan string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.Company, &u.Phone, &plan,
		&u.CustomerRef, &u.SubscriptionRef, &u.PriceRef, &u.PeriodEnd,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Plan = domain.ParsePlanID(plan)
	return &u, nil
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where+` = $1`, arg)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return u, nil
}

// Create inserts a new user into the database.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, name, email, password, role, company, plan, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		u.ID, u.Name, u.Email, u.Password, u.Role, u.Company, string(u.Plan), u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByEmail returns a user by email address, or nil if none exists.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email", email)
}

// FindByID returns a user by ID, or nil if none exists.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "id", id)
}

// FindBySubscription returns the user holding a provider subscription, or nil.
func (r *UserRepository) FindBySubscription(ctx context.Context, subscriptionRef string) (*domain.User, error) {
	return r.findOne(ctx, "stripe_subscription_id", subscriptionRef)
}

// Exists checks if a user with the given email already exists.
func (r *UserRepository) Exists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// UpdateProfile writes the non-empty profile fields and returns the updated user.
// Nil or blank fields are left unchanged.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, req domain.UpdateProfileRequest) (*domain.User, error) {
	q := psql.Update("users").Set("updated_at", time.Now().UTC())
	if req.Name != nil && *req.Name != "" {
		q = q.Set("name", *req.Name)
	}
	if req.Company != nil && *req.Company != "" {
		q = q.Set("company", *req.Company)
	}
	if req.Phone != nil && *req.Phone != "" {
		q = q.Set("phone", *req.Phone)
	}
	query, args, err := q.Where("id = ?", id).Suffix("RETURNING " + userColumns).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build profile update: %w", err)
	}

	u, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

// ApplyCheckout links a completed checkout to the user by ID.
// It returns the number of rows changed.
func (r *UserRepository) ApplyCheckout(ctx context.Context, userID string, s domain.BillingState) (int64, error) {
	query := `
		UPDATE users SET
			stripe_customer_id = $2,
			stripe_subscription_id = $3,
			stripe_price_id = $4,
			stripe_current_period_end = $5,
			plan = $6,
			updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		userID, s.CustomerRef, s.SubscriptionRef, s.PriceRef, s.PeriodEnd, string(s.Plan),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to apply checkout: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UpdateBySubscription refreshes price, period end and plan for the user
// holding the given subscription.
func (r *UserRepository) UpdateBySubscription(ctx context.Context, s domain.BillingState) (int64, error) {
	query := `
		UPDATE users SET
			stripe_price_id = $2,
			stripe_current_period_end = $3,
			plan = $4,
			updated_at = NOW()
		WHERE stripe_subscription_id = $1
	`
	tag, err := r.db.Exec(ctx, query, s.SubscriptionRef, s.PriceRef, s.PeriodEnd, string(s.Plan))
	if err != nil {
		return 0, fmt.Errorf("failed to update subscription: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ClearSubscription drops the billing linkage and downgrades the holder to FREE.
func (r *UserRepository) ClearSubscription(ctx context.Context, subscriptionRef string) (int64, error) {
	query := `
		UPDATE users SET
			stripe_subscription_id = NULL,
			stripe_price_id = NULL,
			stripe_current_period_end = NULL,
			plan = $2,
			updated_at = NOW()
		WHERE stripe_subscription_id = $1
	`
	tag, err := r.db.Exec(ctx, query, subscriptionRef, string(domain.PlanFree))
	if err != nil {
		return 0, fmt.Errorf("failed to clear subscription: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListAll returns all users ordered by creation date.
func (r *UserRepository) ListAll(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
