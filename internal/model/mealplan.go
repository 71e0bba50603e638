package model

import "time"

// MealKey identifies one of the three daily meals.
type MealKey string

const (
	MealBreakfast MealKey = "breakfast"
	MealLunch     MealKey = "lunch"
	MealDinner    MealKey = "dinner"
)

// MealOrder lists meals in the order the draft generator walks them.
var MealOrder = []MealKey{MealBreakfast, MealLunch, MealDinner}

// SlotKey identifies one of the four component roles within a meal.
type SlotKey string

const (
	SlotStaple SlotKey = "staple"
	SlotMain   SlotKey = "main"
	SlotSide   SlotKey = "side"
	SlotSoup   SlotKey = "soup"
)

// SlotOrder lists slots in the order the draft generator walks them.
var SlotOrder = []SlotKey{SlotStaple, SlotMain, SlotSide, SlotSoup}

// ValidMeal reports whether s is a known meal key.
func ValidMeal(s string) bool {
	switch MealKey(s) {
	case MealBreakfast, MealLunch, MealDinner:
		return true
	}
	return false
}

// ValidSlot reports whether s is a known slot key.
func ValidSlot(s string) bool {
	switch SlotKey(s) {
	case SlotStaple, SlotMain, SlotSide, SlotSoup:
		return true
	}
	return false
}

// DayKeyLayout is the calendar-date key format for meal plan days.
const DayKeyLayout = "2006-01-02"

// DayKey formats t as a plan day key in t's location.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// PlanSlot is a single recipe assignment within a planned day.
type PlanSlot struct {
	Meal       MealKey `json:"meal"`
	Slot       SlotKey `json:"slot"`
	RecipeID   int64   `json:"recipe_id"`
	RecipeName string  `json:"recipe_name,omitempty"`
}

// MealPlanDay holds everything planned for one calendar date.
// Any slot may be empty; Slots contains only the assigned ones.
type MealPlanDay struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	DayKey    string     `json:"day_key"`
	Memo      string     `json:"memo"`
	Slots     []PlanSlot `json:"slots"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// DailySet is a reusable bundle of one recipe per slot, applied to a
// day/meal as a convenience. It is not read by the draft generator.
type DailySet struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	StapleID  *int64    `json:"staple_id"`
	MainID    *int64    `json:"main_id"`
	SideID    *int64    `json:"side_id"`
	SoupID    *int64    `json:"soup_id"`
	Memo      string    `json:"memo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SlotAssignments returns the set's non-empty slot assignments.
func (d *DailySet) SlotAssignments() map[SlotKey]int64 {
	out := make(map[SlotKey]int64, 4)
	if d.StapleID != nil {
		out[SlotStaple] = *d.StapleID
	}
	if d.MainID != nil {
		out[SlotMain] = *d.MainID
	}
	if d.SideID != nil {
		out[SlotSide] = *d.SideID
	}
	if d.SoupID != nil {
		out[SlotSoup] = *d.SoupID
	}
	return out
}
