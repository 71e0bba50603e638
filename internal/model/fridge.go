package model

import "time"

// StockState is the coarse quantity left in a fridge lot.
type StockState string

const (
	StockNone StockState = "NONE"
	StockFew  StockState = "FEW"
	StockHave StockState = "HAVE"

	// StockUnknown is never stored on a lot; it marks a draft item whose
	// name matched nothing in the fridge.
	StockUnknown StockState = "UNKNOWN"
)

// NormalizeStockState maps a stored token to the canonical enum.
// "LITTLE" is a legacy alias for FEW that older clients still send;
// it is accepted on the way in and never written back out.
func NormalizeStockState(s string) (StockState, bool) {
	switch StockState(s) {
	case StockNone, StockFew, StockHave:
		return StockState(s), true
	}
	if s == "LITTLE" {
		return StockFew, true
	}
	return "", false
}

// Rank orders stock states NONE < FEW < HAVE for picking the
// best-stocked lot when several share a name. UNKNOWN ranks below NONE.
func (s StockState) Rank() int {
	switch s {
	case StockNone:
		return 1
	case StockFew:
		return 2
	case StockHave:
		return 3
	}
	return 0
}

// ExpireSource records where a lot's expire_at came from.
type ExpireSource string

const (
	ExpireFromCategory ExpireSource = "CATEGORY"
	ExpireFromUser     ExpireSource = "USER"
)

// FridgeLot is one discrete inventory entry with its own expiration.
// ExpireAt is derived once at creation and never recomputed.
type FridgeLot struct {
	ID                int64        `json:"id"`
	UserID            int64        `json:"user_id"`
	FoodName          string       `json:"food_name"`
	CategoryID        string       `json:"category_id"`
	CategoryLabel     string       `json:"category_label"`
	State             StockState   `json:"state"`
	BoughtAt          time.Time    `json:"bought_at"`
	ExpireAt          time.Time    `json:"expire_at"`
	ExpireSource      ExpireSource `json:"expire_source"`
	CustomExpireDays  *int         `json:"custom_expire_days,omitempty"`
	Memo              string       `json:"memo"`
	IsNew             bool         `json:"is_new"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}
