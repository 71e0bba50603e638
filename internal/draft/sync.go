package draft

import (
	"fmt"
	"time"

	"github.com/kondate-app/kondate/internal/expire"
	"github.com/kondate-app/kondate/internal/model"
)

// SyncToFridge converts purchased shopping items into fridge lots.
// Every item is re-validated here — ownership, not skipped, not yet
// synced — rather than trusting the caller's filter. The batch runs in
// one transaction: a bad item aborts the whole sync.
func (s *Service) SyncToFridge(userID int64, itemIDs []int64, now time.Time) ([]model.FridgeLot, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin sync tx: %w", err)
	}
	defer tx.Rollback()

	shopping := s.shopping.WithTx(tx)
	fridge := s.fridge.WithTx(tx)

	lots := make([]model.FridgeLot, 0, len(itemIDs))
	for _, id := range itemIDs {
		item, err := shopping.GetByID(id)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, fmt.Errorf("%w: shopping item %d", ErrNotFound, id)
		}
		if item.UserID != userID {
			return nil, ErrForbidden
		}
		if item.SyncedToFridge || item.Status == model.ShoppingSynced {
			return nil, fmt.Errorf("%w: shopping item %d", ErrAlreadySynced, id)
		}
		if item.Skip {
			return nil, fmt.Errorf("%w: shopping item %d", ErrItemSkipped, id)
		}

		categoryID := item.CategoryID
		if categoryID == "" {
			categoryID = model.CategoryOther
		}
		expireAt, err := s.policy.ComputeExpireAt(now, categoryID, item.CustomExpireDays)
		if err != nil {
			return nil, err
		}

		categoryLabel := item.CategoryLabel
		if categoryLabel == "" {
			if rule, err := s.policy.Resolve(categoryID); err == nil {
				categoryLabel = rule.Label
			}
		}

		lot, err := fridge.Create(&model.FridgeLot{
			UserID:           userID,
			FoodName:         item.Name,
			CategoryID:       categoryID,
			CategoryLabel:    categoryLabel,
			State:            model.StockHave,
			BoughtAt:         now,
			ExpireAt:         expireAt,
			ExpireSource:     expire.Source(categoryID),
			CustomExpireDays: item.CustomExpireDays,
			Memo:             item.Memo,
			IsNew:            true,
		})
		if err != nil {
			return nil, err
		}

		if err := shopping.MarkSynced(id, now); err != nil {
			return nil, err
		}
		lots = append(lots, *lot)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit sync tx: %w", err)
	}

	s.logger.Info("shopping synced to fridge",
		"user_id", userID, "lots", len(lots))
	return lots, nil
}
