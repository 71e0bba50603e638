package store

import "testing"

func TestSettingsGetSet(t *testing.T) {
	db := testDB(t)
	ss := NewSettingsStore(db)

	missing, err := ss.Get("no_such_key")
	if err != nil {
		t.Fatalf("get unset key: %v", err)
	}
	if missing != "" {
		t.Errorf("unset key = %q, want empty", missing)
	}

	if err := ss.Set("greeting", "hello"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := ss.Get("greeting")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "hello" {
		t.Errorf("value = %q, want hello", got)
	}

	if err := ss.Set("greeting", "konnichiwa"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ = ss.Get("greeting")
	if got != "konnichiwa" {
		t.Errorf("value = %q, want konnichiwa", got)
	}
}

func TestSettingsSeededDisclaimer(t *testing.T) {
	db := testDB(t)
	ss := NewSettingsStore(db)

	text, err := ss.Get("fridge_disclaimer")
	if err != nil {
		t.Fatalf("get disclaimer: %v", err)
	}
	if text == "" {
		t.Error("expected seeded disclaimer text")
	}
}

func TestExpireRulesSeeded(t *testing.T) {
	db := testDB(t)
	rs := NewExpireRuleStore(db)

	rules, err := rs.List()
	if err != nil {
		t.Fatalf("list rules: %v", err)
	}
	if len(rules) != 13 {
		t.Fatalf("len = %d, want 13 seeded rules", len(rules))
	}
	// sort_order puts vegetables first and custom last.
	if rules[0].ID != "vegetable" {
		t.Errorf("first rule = %q, want vegetable", rules[0].ID)
	}
	if rules[len(rules)-1].ID != "custom" {
		t.Errorf("last rule = %q, want custom", rules[len(rules)-1].ID)
	}

	meat, err := rs.GetByID("meat")
	if err != nil {
		t.Fatalf("get rule: %v", err)
	}
	if meat == nil || meat.DefaultExpireDays != 3 {
		t.Errorf("meat rule = %+v, want 3 day default", meat)
	}

	missing, err := rs.GetByID("cheese")
	if err != nil {
		t.Fatalf("get unknown rule: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown rule, got %+v", missing)
	}
}
