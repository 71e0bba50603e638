package store

import (
	"testing"
	"time"

	"github.com/kondate-app/kondate/internal/model"
)

func testShoppingItem(t *testing.T, ss *ShoppingStore, userID int64, name string) *model.ShoppingItem {
	t.Helper()
	item, err := ss.Create(&model.ShoppingItem{
		UserID:     userID,
		Name:       name,
		CategoryID: "other",
	})
	if err != nil {
		t.Fatalf("create shopping item: %v", err)
	}
	return item
}

func TestShoppingCreateDefaults(t *testing.T) {
	db := testDB(t)
	ss := NewShoppingStore(db)
	user := testUser(t, db, "shop@example.com")

	item := testShoppingItem(t, ss, user.ID, "soy sauce")
	if item.Status != model.ShoppingTodo {
		t.Errorf("status = %q, want TODO", item.Status)
	}
	if item.Skip || item.Purchased || item.SyncedToFridge {
		t.Error("new item should carry no flags")
	}
	if len(item.Sources) != 0 {
		t.Errorf("sources = %v, want empty", item.Sources)
	}
}

func TestShoppingRetentionWindow(t *testing.T) {
	db := testDB(t)
	ss := NewShoppingStore(db)
	user := testUser(t, db, "retention@example.com")

	now := time.Now().UTC()
	todo := testShoppingItem(t, ss, user.ID, "rice")
	recent := testShoppingItem(t, ss, user.ID, "milk")
	old := testShoppingItem(t, ss, user.ID, "flour")

	if err := ss.MarkSynced(recent.ID, now.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	if err := ss.MarkSynced(old.ID, now.AddDate(0, 0, -30)); err != nil {
		t.Fatalf("mark synced: %v", err)
	}

	// Free plan: synced history older than a week fades out.
	freeCutoff := now.AddDate(0, 0, -model.RetentionDays(model.PlanFree))
	items, err := ss.List(user.ID, freeCutoff)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("free plan len = %d, want 2", len(items))
	}
	ids := map[int64]bool{}
	for _, it := range items {
		ids[it.ID] = true
	}
	if !ids[todo.ID] || !ids[recent.ID] {
		t.Errorf("expected todo and recently synced items, got %v", ids)
	}

	// Pro plan: the 90-day window keeps the old row visible.
	proCutoff := now.AddDate(0, 0, -model.RetentionDays(model.PlanPro))
	items, err = ss.List(user.ID, proCutoff)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("pro plan len = %d, want 3", len(items))
	}
}

func TestShoppingSkipLifecycle(t *testing.T) {
	db := testDB(t)
	ss := NewShoppingStore(db)
	user := testUser(t, db, "skip@example.com")

	item := testShoppingItem(t, ss, user.ID, "natto")
	now := time.Now().UTC()

	item, err := ss.SetSkip(item.ID, true, now)
	if err != nil {
		t.Fatalf("set skip: %v", err)
	}
	if !item.Skip || item.Status != model.ShoppingSkip {
		t.Errorf("skip = %v status = %q, want skipped", item.Skip, item.Status)
	}
	if item.SkippedAt == nil {
		t.Error("skipped_at should be set")
	}

	item, err = ss.SetSkip(item.ID, false, now)
	if err != nil {
		t.Fatalf("unset skip: %v", err)
	}
	if item.Skip || item.Status != model.ShoppingTodo {
		t.Errorf("skip = %v status = %q, want TODO", item.Skip, item.Status)
	}
	if item.SkippedAt != nil {
		t.Error("skipped_at should be cleared")
	}
}

func TestShoppingSkipGuardedAfterSync(t *testing.T) {
	db := testDB(t)
	ss := NewShoppingStore(db)
	user := testUser(t, db, "guard@example.com")

	item := testShoppingItem(t, ss, user.ID, "pork")
	now := time.Now().UTC()
	if err := ss.MarkSynced(item.ID, now); err != nil {
		t.Fatalf("mark synced: %v", err)
	}

	item, err := ss.SetSkip(item.ID, true, now)
	if err != nil {
		t.Fatalf("set skip: %v", err)
	}
	if item.Skip || item.Status != model.ShoppingSynced {
		t.Errorf("synced item mutated: skip = %v status = %q", item.Skip, item.Status)
	}
}

func TestShoppingPurchasedAndMemo(t *testing.T) {
	db := testDB(t)
	ss := NewShoppingStore(db)
	user := testUser(t, db, "bought@example.com")

	item := testShoppingItem(t, ss, user.ID, "onion")
	now := time.Now().UTC()

	item, err := ss.SetPurchased(item.ID, true, now)
	if err != nil {
		t.Fatalf("set purchased: %v", err)
	}
	if !item.Purchased || item.PurchasedAt == nil {
		t.Error("expected purchased with timestamp")
	}

	item, err = ss.SetPurchased(item.ID, false, now)
	if err != nil {
		t.Fatalf("unset purchased: %v", err)
	}
	if item.Purchased || item.PurchasedAt != nil {
		t.Error("expected purchase cleared")
	}

	item, err = ss.SetMemo(item.ID, "the big bag")
	if err != nil {
		t.Fatalf("set memo: %v", err)
	}
	if item.Memo != "the big bag" {
		t.Errorf("memo = %q", item.Memo)
	}
}

func TestShoppingSetCategory(t *testing.T) {
	db := testDB(t)
	ss := NewShoppingStore(db)
	user := testUser(t, db, "cat@example.com")

	item := testShoppingItem(t, ss, user.ID, "salmon")
	days := 4

	item, err := ss.SetCategory(item.ID, "custom", "Custom", &days)
	if err != nil {
		t.Fatalf("set category: %v", err)
	}
	if item.CategoryID != "custom" || item.CategoryLabel != "Custom" {
		t.Errorf("category = %q/%q, want custom/Custom", item.CategoryID, item.CategoryLabel)
	}
	if item.CustomExpireDays == nil || *item.CustomExpireDays != days {
		t.Errorf("custom_expire_days = %v, want %d", item.CustomExpireDays, days)
	}

	item, err = ss.SetCategory(item.ID, "seafood", "Seafood", nil)
	if err != nil {
		t.Fatalf("set category: %v", err)
	}
	if item.CustomExpireDays != nil {
		t.Errorf("custom_expire_days = %v, want nil", item.CustomExpireDays)
	}
}

func TestShoppingMarkSynced(t *testing.T) {
	db := testDB(t)
	ss := NewShoppingStore(db)
	user := testUser(t, db, "synced@example.com")

	item := testShoppingItem(t, ss, user.ID, "cabbage")
	now := time.Now().UTC()

	if err := ss.MarkSynced(item.ID, now); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	got, err := ss.GetByID(item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got.Status != model.ShoppingSynced || !got.SyncedToFridge {
		t.Errorf("status = %q synced = %v, want SYNCED", got.Status, got.SyncedToFridge)
	}
	if got.SyncedAt == nil {
		t.Error("synced_at should be set")
	}
}
