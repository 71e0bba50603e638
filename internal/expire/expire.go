// Package expire resolves food categories to shelf-life estimates.
package expire

import (
	"errors"
	"fmt"
	"time"

	"github.com/kondate-app/kondate/internal/model"
)

var (
	// ErrUnknownCategory means the category id has no matching rule.
	ErrUnknownCategory = errors.New("unknown expire category")

	// ErrInvalidCustomDuration means the "custom" category was used
	// without a positive remaining-days value.
	ErrInvalidCustomDuration = errors.New("custom expire days must be a positive integer")
)

// Policy answers shelf-life questions from the immutable rule set.
// Build one at startup from the expire_rules table and share it; it is
// read-only and safe for concurrent use.
type Policy struct {
	rules map[string]model.ExpireRule
}

func NewPolicy(rules []model.ExpireRule) *Policy {
	m := make(map[string]model.ExpireRule, len(rules))
	for _, r := range rules {
		m[r.ID] = r
	}
	return &Policy{rules: m}
}

// Resolve returns the rule for a category id. The "custom" rule
// resolves like any other, but its day count is meaningless: callers
// must collect remaining days from the user and use ComputeExpireAt.
func (p *Policy) Resolve(categoryID string) (model.ExpireRule, error) {
	r, ok := p.rules[categoryID]
	if !ok {
		return model.ExpireRule{}, fmt.Errorf("%w: %q", ErrUnknownCategory, categoryID)
	}
	return r, nil
}

// ComputeExpireAt derives the expiration date for food bought at
// boughtAt. For the "custom" category, customDays must be present and
// positive; for every other category the rule's default applies and
// customDays is ignored.
func (p *Policy) ComputeExpireAt(boughtAt time.Time, categoryID string, customDays *int) (time.Time, error) {
	if categoryID == model.CategoryCustom {
		if customDays == nil || *customDays <= 0 {
			return time.Time{}, ErrInvalidCustomDuration
		}
		return boughtAt.AddDate(0, 0, *customDays), nil
	}

	rule, err := p.Resolve(categoryID)
	if err != nil {
		return time.Time{}, err
	}
	return boughtAt.AddDate(0, 0, rule.DefaultExpireDays), nil
}

// Source reports where the expiration for a category comes from:
// the rule table, or a user-supplied custom duration.
func Source(categoryID string) model.ExpireSource {
	if categoryID == model.CategoryCustom {
		return model.ExpireFromUser
	}
	return model.ExpireFromCategory
}
