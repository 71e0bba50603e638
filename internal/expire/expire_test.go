package expire

import (
	"errors"
	"testing"
	"time"

	"github.com/kondate-app/kondate/internal/model"
)

func testPolicy() *Policy {
	return NewPolicy([]model.ExpireRule{
		{ID: "vegetable", Label: "Vegetables", DefaultExpireDays: 7},
		{ID: "seafood", Label: "Seafood", DefaultExpireDays: 2},
		{ID: "custom", Label: "Custom", DefaultExpireDays: 0},
	})
}

func TestResolveKnownCategory(t *testing.T) {
	p := testPolicy()

	rule, err := p.Resolve("vegetable")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if rule.DefaultExpireDays != 7 {
		t.Errorf("default days = %d, want 7", rule.DefaultExpireDays)
	}
	if rule.Label != "Vegetables" {
		t.Errorf("label = %q, want %q", rule.Label, "Vegetables")
	}
}

func TestResolveUnknownCategory(t *testing.T) {
	p := testPolicy()

	_, err := p.Resolve("spacefood")
	if !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("err = %v, want ErrUnknownCategory", err)
	}
}

func TestComputeExpireAtFromRule(t *testing.T) {
	p := testPolicy()
	boughtAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := p.ComputeExpireAt(boughtAt, "seafood", nil)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	want := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expire at = %v, want %v", got, want)
	}
}

func TestComputeExpireAtCustom(t *testing.T) {
	p := testPolicy()
	boughtAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	days := 3

	got, err := p.ComputeExpireAt(boughtAt, "custom", &days)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	want := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expire at = %v, want %v", got, want)
	}
}

func TestComputeExpireAtCustomInvalid(t *testing.T) {
	p := testPolicy()
	boughtAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	zero := 0
	negative := -1
	for _, days := range []*int{nil, &zero, &negative} {
		_, err := p.ComputeExpireAt(boughtAt, "custom", days)
		if !errors.Is(err, ErrInvalidCustomDuration) {
			t.Errorf("days = %v: err = %v, want ErrInvalidCustomDuration", days, err)
		}
	}
}

func TestComputeExpireAtUnknownCategory(t *testing.T) {
	p := testPolicy()

	_, err := p.ComputeExpireAt(time.Now(), "spacefood", nil)
	if !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("err = %v, want ErrUnknownCategory", err)
	}
}

func TestSource(t *testing.T) {
	if Source("custom") != model.ExpireFromUser {
		t.Error("custom should resolve to USER source")
	}
	if Source("vegetable") != model.ExpireFromCategory {
		t.Error("vegetable should resolve to CATEGORY source")
	}
}
