package draft

import (
	"fmt"
	"time"

	"github.com/kondate-app/kondate/internal/model"
)

// Apply promotes a session's non-skipped items into the durable
// shopping list and marks the session APPLIED. Skipped items are
// dropped entirely. The whole batch is one transaction; a session is
// never left half-applied.
func (s *Service) Apply(userID, sessionID int64, now time.Time) (int, error) {
	session, err := s.drafts.GetSession(sessionID)
	if err != nil {
		return 0, err
	}
	if session == nil {
		return 0, ErrNotFound
	}
	if session.UserID != userID {
		return 0, ErrForbidden
	}
	switch session.Status {
	case model.DraftStatusApplied:
		return 0, ErrAlreadyApplied
	case model.DraftStatusArchived:
		return 0, ErrSessionArchived
	}

	items, err := s.drafts.ListItems(sessionID)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin apply tx: %w", err)
	}
	defer tx.Rollback()

	shopping := s.shopping.WithTx(tx)
	created := 0
	for _, item := range items {
		if item.Skip {
			continue
		}

		categoryID, categoryLabel := item.CategoryID, item.CategoryLabel
		if categoryID == "" {
			// Never edited — give it a safe default so a later fridge
			// sync does not have to re-ask the user.
			categoryID = model.CategoryOther
			if rule, err := s.policy.Resolve(categoryID); err == nil {
				categoryLabel = rule.Label
			}
		}

		if _, err := shopping.Create(&model.ShoppingItem{
			UserID:           userID,
			Name:             item.Name,
			Memo:             item.Memo,
			Sources:          item.Sources,
			CategoryID:       categoryID,
			CategoryLabel:    categoryLabel,
			CustomExpireDays: item.CustomExpireDays,
			Status:           model.ShoppingTodo,
		}); err != nil {
			return 0, err
		}
		created++
	}

	if err := s.drafts.WithTx(tx).MarkApplied(sessionID, now); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit apply tx: %w", err)
	}

	s.logger.Info("draft applied",
		"user_id", userID, "session_id", sessionID, "created", created)
	return created, nil
}

// Archive retires a session. Both fresh and applied sessions can be
// archived; the transition is one-way.
func (s *Service) Archive(userID, sessionID int64, now time.Time) error {
	session, err := s.drafts.GetSession(sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrNotFound
	}
	if session.UserID != userID {
		return ErrForbidden
	}
	if session.Status == model.DraftStatusArchived {
		return ErrSessionArchived
	}
	return s.drafts.MarkArchived(sessionID, now)
}
