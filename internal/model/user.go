package model

import "time"

// Plan identifiers control how much shopping history a user can see.
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// RetentionDays returns the shopping-history retention window for a plan.
// Unknown plans fall back to the free window.
func RetentionDays(plan string) int {
	if plan == PlanPro {
		return 90
	}
	return 7
}

type User struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Plan             string    `json:"plan"`
	StripeCustomerID *string   `json:"stripe_customer_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Session struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
