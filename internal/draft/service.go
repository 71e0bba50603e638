// Package draft turns planned meals into shopping lists and closes the
// loop back into the fridge.
package draft

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/kondate-app/kondate/internal/expire"
	"github.com/kondate-app/kondate/internal/store"
)

var (
	ErrNotFound        = errors.New("draft: not found")
	ErrForbidden       = errors.New("draft: not owned by caller")
	ErrAlreadyApplied  = errors.New("draft: session already applied")
	ErrSessionArchived = errors.New("draft: session archived")
	ErrAlreadySynced   = errors.New("draft: item already synced to fridge")
	ErrItemSkipped     = errors.New("draft: item is skipped")
	ErrInvalidRange    = errors.New("draft: range days must be positive")
)

// Service owns draft generation, apply, and fridge sync. Batch writes
// run inside a single transaction: either the whole batch lands or none
// of it does.
type Service struct {
	db       *sql.DB
	drafts   *store.DraftStore
	shopping *store.ShoppingStore
	fridge   *store.FridgeStore
	plans    *store.MealPlanStore
	recipes  *store.RecipeStore
	policy   *expire.Policy
	names    Normalizer
	logger   *slog.Logger
}

func NewService(
	db *sql.DB,
	drafts *store.DraftStore,
	shopping *store.ShoppingStore,
	fridge *store.FridgeStore,
	plans *store.MealPlanStore,
	recipes *store.RecipeStore,
	policy *expire.Policy,
	names Normalizer,
	logger *slog.Logger,
) *Service {
	if names == nil {
		names = FoldNormalizer{}
	}
	return &Service{
		db:       db,
		drafts:   drafts,
		shopping: shopping,
		fridge:   fridge,
		plans:    plans,
		recipes:  recipes,
		policy:   policy,
		names:    names,
		logger:   logger,
	}
}
