package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user and their billing linkage.
type User struct {
	ID       string  `json:"id"`
	Name     *string `json:"name,omitempty"`
	Email    string  `json:"email"`
	Password string  `json:"-"` // bcrypt hash, never serialized
	Role     string  `json:"role"`
	Company  *string `json:"company,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Plan     PlanID  `json:"plan"`

	CustomerRef     *string    `json:"-"`
	SubscriptionRef *string    `json:"-"`
	PriceRef        *string    `json:"-"`
	PeriodEnd       *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BillingDesynced reports a paid plan without a subscription reference.
func (u *User) BillingDesynced() bool {
	return u.Plan != PlanFree && (u.SubscriptionRef == nil || *u.SubscriptionRef == "")
}

// Caller returns the entitlement identity for this user.
func (u *User) Caller() Caller {
	plan := u.Plan
	if plan == "" {
		plan = PlanFree
	}
	return Caller{UserID: u.ID, Email: u.Email, Role: u.Role, Plan: plan}
}

// BillingState is the set of billing fields written by the synchronizer.
type BillingState struct {
	CustomerRef     string
	SubscriptionRef string
	PriceRef        string
	PeriodEnd       *time.Time // nil when the provider reported no period end
	Plan            PlanID
}

// LoginRequest is the validated input for logging in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// RegisterRequest is the validated input for creating an account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"omitempty,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Company  string `json:"company" validate:"omitempty,max=200"`
}

// LoginResponse is the API response after successful login.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// JWTClaims represents the JWT payload.
type JWTClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UpdateProfileRequest is the PATCH body for the profile. Email is immutable and not accepted.
type UpdateProfileRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=200"`
	Company *string `json:"company" validate:"omitempty,max=200"`
	Phone   *string `json:"phone" validate:"omitempty,max=50"`
}

// UserResponse is the safe API response for a user.
type UserResponse struct {
	ID                 string     `json:"id"`
	Name               *string    `json:"name"`
	Email              string     `json:"email"`
	Company            *string    `json:"company"`
	Phone              *string    `json:"phone"`
	Role               string     `json:"role"`
	Plan               PlanID     `json:"plan"`
	SubscriptionActive bool       `json:"subscriptionActive"`
	PeriodEnd          *time.Time `json:"currentPeriodEnd,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// NewUserResponse projects a user into its API shape.
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		Company:            u.Company,
		Phone:              u.Phone,
		Role:               u.Role,
		Plan:               u.Plan,
		SubscriptionActive: IsSubscriptionActive(u.PeriodEnd),
		PeriodEnd:          u.PeriodEnd,
		CreatedAt:          u.CreatedAt,
	}
}

// NewID generates a new random identifier.
func NewID() string {
	return uuid.New().String()
}
