package model

import "time"

// ShoppingStatus tracks a shopping item's lifecycle. SYNCED is reached
// only through the fridge-sync operation.
type ShoppingStatus string

const (
	ShoppingTodo   ShoppingStatus = "TODO"
	ShoppingSkip   ShoppingStatus = "SKIP"
	ShoppingSynced ShoppingStatus = "SYNCED"
)

// ShoppingItem is a durable to-buy entry, created in bulk when a draft
// session is applied or singly by hand.
type ShoppingItem struct {
	ID               int64          `json:"id"`
	UserID           int64          `json:"user_id"`
	Name             string         `json:"name"`
	Memo             string         `json:"memo"`
	Sources          []Source       `json:"sources"`
	CategoryID       string         `json:"category_id"`
	CategoryLabel    string         `json:"category_label"`
	CustomExpireDays *int           `json:"custom_expire_days,omitempty"`
	Skip             bool           `json:"skip"`
	Purchased        bool           `json:"purchased"`
	PurchasedAt      *time.Time     `json:"purchased_at,omitempty"`
	Status           ShoppingStatus `json:"status"`
	SkippedAt        *time.Time     `json:"skipped_at,omitempty"`
	SyncedAt         *time.Time     `json:"synced_at,omitempty"`
	SyncedToFridge   bool           `json:"synced_to_fridge"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}
