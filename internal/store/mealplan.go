package store

import (
	"database/sql"
	"fmt"

	"github.com/kondate-app/kondate/internal/model"
)

type MealPlanStore struct {
	db DBTX
}

func NewMealPlanStore(db DBTX) *MealPlanStore {
	return &MealPlanStore{db: db}
}

// GetDay returns the planned day for (userID, dayKey) with its slot
// assignments, or nil if nothing is planned for that date.
func (s *MealPlanStore) GetDay(userID int64, dayKey string) (*model.MealPlanDay, error) {
	row := s.db.QueryRow(
		`SELECT id, user_id, day_key, memo, created_at, updated_at
		 FROM meal_plan_days WHERE user_id = ? AND day_key = ?`,
		userID, dayKey,
	)
	day, err := scanPlanDay(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get plan day: %w", err)
	}
	if err := s.loadSlots(day); err != nil {
		return nil, err
	}
	return day, nil
}

// DaysInRange returns planned days with startKey <= day_key <= endKey,
// ordered by date. Day keys sort lexicographically.
func (s *MealPlanStore) DaysInRange(userID int64, startKey, endKey string) ([]model.MealPlanDay, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, day_key, memo, created_at, updated_at
		 FROM meal_plan_days WHERE user_id = ? AND day_key >= ? AND day_key <= ?
		 ORDER BY day_key ASC`,
		userID, startKey, endKey,
	)
	if err != nil {
		return nil, fmt.Errorf("list plan days: %w", err)
	}
	defer rows.Close()

	var days []model.MealPlanDay
	for rows.Next() {
		day, err := scanPlanDay(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan day: %w", err)
		}
		days = append(days, *day)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range days {
		if err := s.loadSlots(&days[i]); err != nil {
			return nil, err
		}
	}
	return days, nil
}

func scanPlanDay(scanner interface{ Scan(...any) error }) (*model.MealPlanDay, error) {
	var d model.MealPlanDay
	err := scanner.Scan(&d.ID, &d.UserID, &d.DayKey, &d.Memo, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *MealPlanStore) loadSlots(day *model.MealPlanDay) error {
	rows, err := s.db.Query(
		`SELECT ps.meal, ps.slot, ps.recipe_id, r.title
		 FROM meal_plan_slots ps JOIN recipes r ON r.id = ps.recipe_id
		 WHERE ps.day_id = ?`,
		day.ID,
	)
	if err != nil {
		return fmt.Errorf("load plan slots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var slot model.PlanSlot
		var meal, slotKey string
		if err := rows.Scan(&meal, &slotKey, &slot.RecipeID, &slot.RecipeName); err != nil {
			return fmt.Errorf("scan plan slot: %w", err)
		}
		slot.Meal = model.MealKey(meal)
		slot.Slot = model.SlotKey(slotKey)
		day.Slots = append(day.Slots, slot)
	}
	return rows.Err()
}

// ensureDay creates the day row if it does not exist and returns its id.
func (s *MealPlanStore) ensureDay(userID int64, dayKey string) (int64, error) {
	var id int64
	err := s.db.QueryRow(
		`SELECT id FROM meal_plan_days WHERE user_id = ? AND day_key = ?`,
		userID, dayKey,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("lookup plan day: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO meal_plan_days (user_id, day_key) VALUES (?, ?)`,
		userID, dayKey,
	)
	if err != nil {
		return 0, fmt.Errorf("insert plan day: %w", err)
	}
	id, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// AssignSlot sets the recipe for one (day, meal, slot), replacing any
// previous assignment.
func (s *MealPlanStore) AssignSlot(userID int64, dayKey string, meal model.MealKey, slot model.SlotKey, recipeID int64) (*model.MealPlanDay, error) {
	dayID, err := s.ensureDay(userID, dayKey)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(
		`INSERT INTO meal_plan_slots (day_id, meal, slot, recipe_id) VALUES (?, ?, ?, ?)
		 ON CONFLICT(day_id, meal, slot) DO UPDATE SET recipe_id = excluded.recipe_id`,
		dayID, string(meal), string(slot), recipeID,
	)
	if err != nil {
		return nil, fmt.Errorf("assign slot: %w", err)
	}

	if _, err := s.db.Exec(
		`UPDATE meal_plan_days SET updated_at = datetime('now') WHERE id = ?`, dayID,
	); err != nil {
		return nil, fmt.Errorf("touch plan day: %w", err)
	}
	return s.GetDay(userID, dayKey)
}

// ClearSlot removes the assignment for one (day, meal, slot). Clearing
// an empty slot is a no-op.
func (s *MealPlanStore) ClearSlot(userID int64, dayKey string, meal model.MealKey, slot model.SlotKey) (*model.MealPlanDay, error) {
	day, err := s.GetDay(userID, dayKey)
	if err != nil {
		return nil, err
	}
	if day == nil {
		return nil, nil
	}

	_, err = s.db.Exec(
		`DELETE FROM meal_plan_slots WHERE day_id = ? AND meal = ? AND slot = ?`,
		day.ID, string(meal), string(slot),
	)
	if err != nil {
		return nil, fmt.Errorf("clear slot: %w", err)
	}
	return s.GetDay(userID, dayKey)
}

func (s *MealPlanStore) SetMemo(userID int64, dayKey, memo string) (*model.MealPlanDay, error) {
	dayID, err := s.ensureDay(userID, dayKey)
	if err != nil {
		return nil, err
	}
	_, err = s.db.Exec(
		`UPDATE meal_plan_days SET memo = ?, updated_at = datetime('now') WHERE id = ?`,
		memo, dayID,
	)
	if err != nil {
		return nil, fmt.Errorf("set plan memo: %w", err)
	}
	return s.GetDay(userID, dayKey)
}
