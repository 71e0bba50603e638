package draft

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/kondate-app/kondate/internal/database"
	"github.com/kondate-app/kondate/internal/expire"
	"github.com/kondate-app/kondate/internal/model"
	"github.com/kondate-app/kondate/internal/store"
)

type fixture struct {
	svc      *Service
	users    *store.UserStore
	recipes  *store.RecipeStore
	plans    *store.MealPlanStore
	fridge   *store.FridgeStore
	shopping *store.ShoppingStore
	drafts   *store.DraftStore
	policy   *expire.Policy
	userID   int64
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	rules, err := store.NewExpireRuleStore(db).List()
	if err != nil {
		t.Fatalf("list rules: %v", err)
	}
	policy := expire.NewPolicy(rules)

	f := &fixture{
		users:    store.NewUserStore(db),
		recipes:  store.NewRecipeStore(db),
		plans:    store.NewMealPlanStore(db),
		fridge:   store.NewFridgeStore(db),
		shopping: store.NewShoppingStore(db),
		drafts:   store.NewDraftStore(db),
		policy:   policy,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewService(db, f.drafts, f.shopping, f.fridge, f.plans, f.recipes, policy, nil, logger)

	user, err := f.users.Create("test@example.com", "Test", "x")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	f.userID = user.ID
	return f
}

func (f *fixture) addRecipe(t *testing.T, title string, ingredients ...model.IngredientLine) *model.Recipe {
	t.Helper()
	r, err := f.recipes.Create(&model.Recipe{
		AuthorID:    f.userID,
		Title:       title,
		Category:    "main",
		Ingredients: ingredients,
	})
	if err != nil {
		t.Fatalf("create recipe %q: %v", title, err)
	}
	return r
}

func (f *fixture) plan(t *testing.T, dayKey string, meal model.MealKey, slot model.SlotKey, recipeID int64) {
	t.Helper()
	if _, err := f.plans.AssignSlot(f.userID, dayKey, meal, slot, recipeID); err != nil {
		t.Fatalf("assign slot: %v", err)
	}
}

func (f *fixture) addLot(t *testing.T, name string, state model.StockState) {
	t.Helper()
	now := time.Now().UTC()
	_, err := f.fridge.Create(&model.FridgeLot{
		UserID:        f.userID,
		FoodName:      name,
		CategoryID:    "other",
		CategoryLabel: "Other",
		State:         state,
		BoughtAt:      now,
		ExpireAt:      now.AddDate(0, 0, 7),
		ExpireSource:  model.ExpireFromCategory,
	})
	if err != nil {
		t.Fatalf("create lot %q: %v", name, err)
	}
}

// now is fixed so "tomorrow" is deterministic in every test.
var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestGenerateEmptyWindow(t *testing.T) {
	f := setup(t)

	result, err := f.svc.Generate(f.userID, 2, testNow)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.Session == nil {
		t.Fatal("expected a session even with nothing planned")
	}
	if result.Session.Status != model.DraftStatusDraft {
		t.Errorf("status = %q, want DRAFT", result.Session.Status)
	}
	if len(result.Items) != 0 {
		t.Errorf("items = %d, want 0", len(result.Items))
	}
	if result.Session.StartDay != "2026-03-11" || result.Session.EndDay != "2026-03-12" {
		t.Errorf("window = %s..%s, want 2026-03-11..2026-03-12", result.Session.StartDay, result.Session.EndDay)
	}
}

func TestGenerateInvalidRange(t *testing.T) {
	f := setup(t)

	if _, err := f.svc.Generate(f.userID, 0, testNow); err != ErrInvalidRange {
		t.Errorf("err = %v, want ErrInvalidRange", err)
	}
}

func TestGenerateExcludesToday(t *testing.T) {
	f := setup(t)
	today := f.addRecipe(t, "今日のカレー", model.IngredientLine{Name: "じゃがいも", Quantity: "3個"})
	tomorrow := f.addRecipe(t, "明日の肉じゃが", model.IngredientLine{Name: "たまねぎ", Quantity: "1個"})

	f.plan(t, "2026-03-10", model.MealDinner, model.SlotMain, today.ID)
	f.plan(t, "2026-03-11", model.MealDinner, model.SlotMain, tomorrow.ID)

	result, err := f.svc.Generate(f.userID, 2, testNow)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(result.Items))
	}
	if result.Items[0].Name != "たまねぎ" {
		t.Errorf("item name = %q, want たまねぎ", result.Items[0].Name)
	}
}

func TestGenerateAggregatesByName(t *testing.T) {
	f := setup(t)
	omelet := f.addRecipe(t, "オムレツ", model.IngredientLine{Name: "たまご", Quantity: "2個"})
	soup := f.addRecipe(t, "かきたま汁", model.IngredientLine{Name: "たまご", Quantity: "1個"})

	f.plan(t, "2026-03-11", model.MealBreakfast, model.SlotMain, omelet.ID)
	f.plan(t, "2026-03-11", model.MealDinner, model.SlotSoup, soup.ID)

	result, err := f.svc.Generate(f.userID, 2, testNow)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(result.Items))
	}

	item := result.Items[0]
	if item.Name != "たまご" {
		t.Errorf("name = %q, want たまご", item.Name)
	}
	if len(item.Sources) != 2 {
		t.Fatalf("sources = %d, want 2", len(item.Sources))
	}
	if item.Sources[0].Meal != model.MealBreakfast || item.Sources[1].Meal != model.MealDinner {
		t.Errorf("source order = %s, %s; want breakfast, dinner", item.Sources[0].Meal, item.Sources[1].Meal)
	}
	if item.Sources[0].RawText != "2個" {
		t.Errorf("raw text = %q, want 2個", item.Sources[0].RawText)
	}
	if item.Sources[0].RecipeName != "オムレツ" {
		t.Errorf("recipe name = %q, want オムレツ", item.Sources[0].RecipeName)
	}
}

func TestGenerateAggregationIsCaseInsensitive(t *testing.T) {
	f := setup(t)
	a := f.addRecipe(t, "Pasta", model.IngredientLine{Name: "Tomato", Quantity: "2"})
	b := f.addRecipe(t, "Salad", model.IngredientLine{Name: "  tomato ", Quantity: "1"})

	f.plan(t, "2026-03-11", model.MealLunch, model.SlotMain, a.ID)
	f.plan(t, "2026-03-11", model.MealDinner, model.SlotSide, b.ID)

	result, err := f.svc.Generate(f.userID, 2, testNow)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(result.Items))
	}
	if got := result.Items[0].Name; got != "Tomato" {
		t.Errorf("display name = %q, want first-encountered %q", got, "Tomato")
	}
	if len(result.Items[0].Sources) != 2 {
		t.Errorf("sources = %d, want 2", len(result.Items[0].Sources))
	}
}

func TestGenerateSlotOrderWithinMeal(t *testing.T) {
	f := setup(t)
	rice := f.addRecipe(t, "ごはん", model.IngredientLine{Name: "米", Quantity: "2合"})
	stew := f.addRecipe(t, "シチュー", model.IngredientLine{Name: "にんじん", Quantity: "1本"})

	// Assigned side first, staple second; encounter order must still be
	// staple before side.
	f.plan(t, "2026-03-11", model.MealDinner, model.SlotSide, stew.ID)
	f.plan(t, "2026-03-11", model.MealDinner, model.SlotStaple, rice.ID)

	result, err := f.svc.Generate(f.userID, 2, testNow)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(result.Items))
	}
	if result.Items[0].Name != "米" || result.Items[1].Name != "にんじん" {
		t.Errorf("order = %q, %q; want 米, にんじん", result.Items[0].Name, result.Items[1].Name)
	}
}

func TestGenerateSeasoningsExcluded(t *testing.T) {
	f := setup(t)
	r, err := f.recipes.Create(&model.Recipe{
		AuthorID:    f.userID,
		Title:       "焼き魚",
		Category:    "main",
		Ingredients: []model.IngredientLine{{Name: "さけ", Quantity: "2切れ"}},
		Seasonings:  []model.IngredientLine{{Name: "塩", Quantity: "少々"}},
	})
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	f.plan(t, "2026-03-11", model.MealDinner, model.SlotMain, r.ID)

	result, err := f.svc.Generate(f.userID, 2, testNow)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("items = %d, want 1 (seasonings must not be shopped)", len(result.Items))
	}
	if result.Items[0].Name != "さけ" {
		t.Errorf("item = %q, want さけ", result.Items[0].Name)
	}
}

func TestGenerateFridgeCrossReference(t *testing.T) {
	f := setup(t)
	r := f.addRecipe(t, "オムレツ",
		model.IngredientLine{Name: "たまご", Quantity: "2個"},
		model.IngredientLine{Name: "牛乳", Quantity: "50ml"},
		model.IngredientLine{Name: "バター", Quantity: "10g"},
	)
	f.plan(t, "2026-03-11", model.MealBreakfast, model.SlotMain, r.ID)

	f.addLot(t, "たまご", model.StockHave)
	f.addLot(t, "牛乳", model.StockFew)

	result, err := f.svc.Generate(f.userID, 2, testNow)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	byName := map[string]model.DraftItem{}
	for _, item := range result.Items {
		byName[item.Name] = item
	}

	egg := byName["たまご"]
	if egg.FridgeState != model.StockHave {
		t.Errorf("たまご state = %q, want HAVE", egg.FridgeState)
	}
	if !egg.Skip {
		t.Error("たまご should be pre-skipped when the fridge has it")
	}

	milk := byName["牛乳"]
	if milk.FridgeState != model.StockFew {
		t.Errorf("牛乳 state = %q, want FEW", milk.FridgeState)
	}
	if milk.Skip {
		t.Error("牛乳 should not be skipped at FEW")
	}

	butter := byName["バター"]
	if butter.FridgeState != model.StockUnknown {
		t.Errorf("バター state = %q, want UNKNOWN", butter.FridgeState)
	}
	if butter.Skip {
		t.Error("バター should not be skipped when unknown")
	}
}

func TestGenerateMultipleLotsTakeHighestState(t *testing.T) {
	f := setup(t)
	r := f.addRecipe(t, "オムレツ", model.IngredientLine{Name: "たまご", Quantity: "2個"})
	f.plan(t, "2026-03-11", model.MealBreakfast, model.SlotMain, r.ID)

	f.addLot(t, "たまご", model.StockNone)
	f.addLot(t, "たまご", model.StockHave)
	f.addLot(t, "たまご", model.StockFew)

	result, err := f.svc.Generate(f.userID, 2, testNow)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got := result.Items[0].FridgeState; got != model.StockHave {
		t.Errorf("state = %q, want HAVE (highest of the matching lots)", got)
	}
}

func TestGenerateLeavesPriorSessionsAlone(t *testing.T) {
	f := setup(t)
	r := f.addRecipe(t, "オムレツ", model.IngredientLine{Name: "たまご", Quantity: "2個"})
	f.plan(t, "2026-03-11", model.MealBreakfast, model.SlotMain, r.ID)

	first, err := f.svc.Generate(f.userID, 2, testNow)
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}
	second, err := f.svc.Generate(f.userID, 3, testNow)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if first.Session.ID == second.Session.ID {
		t.Fatal("regeneration must create a fresh session")
	}

	got, err := f.drafts.GetSession(first.Session.ID)
	if err != nil {
		t.Fatalf("get first session: %v", err)
	}
	if got.Status != model.DraftStatusDraft {
		t.Errorf("first session status = %q, want untouched DRAFT", got.Status)
	}
	items, err := f.drafts.ListItems(first.Session.ID)
	if err != nil {
		t.Fatalf("list first session items: %v", err)
	}
	if len(items) != len(first.Items) {
		t.Errorf("first session items = %d, want %d", len(items), len(first.Items))
	}
}
