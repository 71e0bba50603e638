package model

import "time"

// DraftStatus progresses one way: DRAFT -> APPLIED -> ARCHIVED.
type DraftStatus string

const (
	DraftStatusDraft    DraftStatus = "DRAFT"
	DraftStatusApplied  DraftStatus = "APPLIED"
	DraftStatusArchived DraftStatus = "ARCHIVED"
)

// DraftSession is an immutable point-in-time shopping proposal derived
// from the meal plan. Regenerating creates a fresh session; it never
// touches an earlier one.
type DraftSession struct {
	ID         int64       `json:"id"`
	UserID     int64       `json:"user_id"`
	Status     DraftStatus `json:"status"`
	RangeDays  int         `json:"range_days"`
	StartDay   string      `json:"start_day"`
	EndDay     string      `json:"end_day"`
	CreatedAt  time.Time   `json:"created_at"`
	AppliedAt  *time.Time  `json:"applied_at,omitempty"`
	ArchivedAt *time.Time  `json:"archived_at,omitempty"`
}

// Source records where one ingredient occurrence came from: which day,
// meal, slot and recipe, plus the raw quantity text the author wrote.
type Source struct {
	DayKey     string  `json:"day_key"`
	Meal       MealKey `json:"meal"`
	Slot       SlotKey `json:"slot"`
	RecipeID   int64   `json:"recipe_id"`
	RecipeName string  `json:"recipe_name"`
	RawText    string  `json:"raw_text"`
}

// DraftItem is one aggregated shopping line inside a draft session.
// FridgeState is computed once at generation time and never refreshed.
type DraftItem struct {
	ID               int64      `json:"id"`
	SessionID        int64      `json:"session_id"`
	Name             string     `json:"name"`
	Sources          []Source   `json:"sources"`
	FridgeState      StockState `json:"fridge_state"`
	Skip             bool       `json:"skip"`
	CategoryID       string     `json:"category_id,omitempty"`
	CategoryLabel    string     `json:"category_label,omitempty"`
	CustomExpireDays *int       `json:"custom_expire_days,omitempty"`
	Memo             string     `json:"memo"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
