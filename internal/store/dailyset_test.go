package store

import (
	"testing"

	"github.com/kondate-app/kondate/internal/model"
)

func TestDailySetCRUD(t *testing.T) {
	db := testDB(t)
	ds := NewDailySetStore(db)
	user := testUser(t, db, "sets@example.com")
	rice := testRecipe(t, db, user.ID, "Rice")
	curry := testRecipe(t, db, user.ID, "Curry")
	soup := testRecipe(t, db, user.ID, "Miso Soup")

	set, err := ds.Create(&model.DailySet{
		UserID:   user.ID,
		Name:     "Curry Night",
		StapleID: &rice.ID,
		MainID:   &curry.ID,
		Memo:     "Friday favorite",
	})
	if err != nil {
		t.Fatalf("create set: %v", err)
	}
	if set.StapleID == nil || *set.StapleID != rice.ID {
		t.Errorf("staple_id = %v, want %d", set.StapleID, rice.ID)
	}
	if set.SideID != nil || set.SoupID != nil {
		t.Error("unassigned slots should be nil")
	}

	assignments := set.SlotAssignments()
	if len(assignments) != 2 {
		t.Errorf("assignments = %v, want 2 entries", assignments)
	}
	if assignments[model.SlotMain] != curry.ID {
		t.Errorf("main = %d, want %d", assignments[model.SlotMain], curry.ID)
	}

	set.SoupID = &soup.ID
	set.Memo = "now with soup"
	updated, err := ds.Update(set)
	if err != nil {
		t.Fatalf("update set: %v", err)
	}
	if updated.SoupID == nil || *updated.SoupID != soup.ID {
		t.Errorf("soup_id = %v, want %d", updated.SoupID, soup.ID)
	}

	if err := ds.Delete(set.ID); err != nil {
		t.Fatalf("delete set: %v", err)
	}
	got, err := ds.GetByID(set.ID)
	if err != nil {
		t.Fatalf("get deleted set: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestDailySetListByUser(t *testing.T) {
	db := testDB(t)
	ds := NewDailySetStore(db)
	alice := testUser(t, db, "alice-sets@example.com")
	bob := testUser(t, db, "bob-sets@example.com")

	for _, name := range []string{"Washoku", "Breakfast"} {
		if _, err := ds.Create(&model.DailySet{UserID: alice.ID, Name: name}); err != nil {
			t.Fatalf("create set: %v", err)
		}
	}
	if _, err := ds.Create(&model.DailySet{UserID: bob.ID, Name: "Bob's"}); err != nil {
		t.Fatalf("create set: %v", err)
	}

	sets, err := ds.ListByUser(alice.ID)
	if err != nil {
		t.Fatalf("list sets: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("len = %d, want 2", len(sets))
	}
	if sets[0].Name != "Breakfast" || sets[1].Name != "Washoku" {
		t.Errorf("names = %q, %q, want alphabetical", sets[0].Name, sets[1].Name)
	}
}

func TestDailySetRecipeDeletionNullsSlot(t *testing.T) {
	db := testDB(t)
	ds := NewDailySetStore(db)
	rs := NewRecipeStore(db)
	user := testUser(t, db, "nulled@example.com")
	salad := testRecipe(t, db, user.ID, "Salad")

	set, err := ds.Create(&model.DailySet{
		UserID: user.ID,
		Name:   "Light Lunch",
		SideID: &salad.ID,
	})
	if err != nil {
		t.Fatalf("create set: %v", err)
	}

	if err := rs.Delete(salad.ID); err != nil {
		t.Fatalf("delete recipe: %v", err)
	}

	got, err := ds.GetByID(set.ID)
	if err != nil {
		t.Fatalf("get set: %v", err)
	}
	if got.SideID != nil {
		t.Errorf("side_id = %v, want nil after recipe deletion", got.SideID)
	}
}
