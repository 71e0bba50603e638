package draft

import (
	"fmt"
	"strings"
	"time"

	"github.com/kondate-app/kondate/internal/model"
)

// Result is a freshly generated session with its items.
type Result struct {
	Session *model.DraftSession `json:"session"`
	Items   []model.DraftItem   `json:"items"`
}

// Generate scans rangeDays of planned meals starting tomorrow and
// persists a new draft session. Today is excluded: today's meals are
// assumed already shopped for. A window with nothing planned still
// yields a session, just with zero items.
//
// Each call creates a fresh session; earlier sessions are never touched.
func (s *Service) Generate(userID int64, rangeDays int, now time.Time) (*Result, error) {
	if rangeDays < 1 {
		return nil, ErrInvalidRange
	}

	keys := make([]string, rangeDays)
	for i := range keys {
		keys[i] = model.DayKey(now.AddDate(0, 0, i+1))
	}

	groups, order, err := s.collectIngredients(userID, keys)
	if err != nil {
		return nil, err
	}

	stock, err := s.fridgeStock(userID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin generate tx: %w", err)
	}
	defer tx.Rollback()

	drafts := s.drafts.WithTx(tx)
	session, err := drafts.CreateSession(userID, rangeDays, keys[0], keys[len(keys)-1])
	if err != nil {
		return nil, err
	}

	items := make([]model.DraftItem, 0, len(order))
	for _, key := range order {
		g := groups[key]
		state, ok := stock[key]
		if !ok {
			state = model.StockUnknown
		}

		item, err := drafts.InsertItem(&model.DraftItem{
			SessionID:   session.ID,
			Name:        g.name,
			Sources:     g.sources,
			FridgeState: state,
			Skip:        state == model.StockHave,
		})
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit generate tx: %w", err)
	}

	s.logger.Info("draft generated",
		"user_id", userID, "session_id", session.ID,
		"range_days", rangeDays, "items", len(items))

	return &Result{Session: session, Items: items}, nil
}

type ingredientGroup struct {
	name    string // display name from the first occurrence
	sources []model.Source
}

// collectIngredients walks the window in canonical order — date
// ascending, breakfast<lunch<dinner, staple<main<side<soup — and groups
// every recipe ingredient by normalized name. Seasonings are not
// shopped for and stay out of the aggregation.
func (s *Service) collectIngredients(userID int64, keys []string) (map[string]*ingredientGroup, []string, error) {
	days, err := s.plans.DaysInRange(userID, keys[0], keys[len(keys)-1])
	if err != nil {
		return nil, nil, err
	}

	byKey := make(map[string]*model.MealPlanDay, len(days))
	for i := range days {
		byKey[days[i].DayKey] = &days[i]
	}

	recipeCache := make(map[int64]*model.Recipe)
	groups := make(map[string]*ingredientGroup)
	var order []string

	for _, dayKey := range keys {
		day := byKey[dayKey]
		if day == nil {
			continue
		}

		assigned := make(map[model.MealKey]map[model.SlotKey]model.PlanSlot, 3)
		for _, slot := range day.Slots {
			if assigned[slot.Meal] == nil {
				assigned[slot.Meal] = make(map[model.SlotKey]model.PlanSlot, 4)
			}
			assigned[slot.Meal][slot.Slot] = slot
		}

		for _, meal := range model.MealOrder {
			for _, slotKey := range model.SlotOrder {
				slot, ok := assigned[meal][slotKey]
				if !ok {
					continue
				}

				recipe := recipeCache[slot.RecipeID]
				if recipe == nil {
					recipe, err = s.recipes.GetByID(slot.RecipeID)
					if err != nil {
						return nil, nil, err
					}
					if recipe == nil {
						// Assignment outlived its recipe; nothing to shop for.
						continue
					}
					recipeCache[slot.RecipeID] = recipe
				}

				for _, line := range recipe.Ingredients {
					key := s.names.Normalize(line.Name)
					if key == "" {
						continue
					}

					g := groups[key]
					if g == nil {
						g = &ingredientGroup{name: strings.TrimSpace(line.Name)}
						groups[key] = g
						order = append(order, key)
					}
					g.sources = append(g.sources, model.Source{
						DayKey:     dayKey,
						Meal:       meal,
						Slot:       slotKey,
						RecipeID:   recipe.ID,
						RecipeName: recipe.Title,
						RawText:    line.Quantity,
					})
				}
			}
		}
	}

	return groups, order, nil
}

// fridgeStock maps normalized lot names to the best state on hand.
// Several lots sharing a name collapse to the highest-stocked one.
func (s *Service) fridgeStock(userID int64) (map[string]model.StockState, error) {
	lots, err := s.fridge.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	stock := make(map[string]model.StockState, len(lots))
	for _, lot := range lots {
		key := s.names.Normalize(lot.FoodName)
		if cur, ok := stock[key]; !ok || lot.State.Rank() > cur.Rank() {
			stock[key] = lot.State
		}
	}
	return stock, nil
}
