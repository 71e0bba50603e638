package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/kondate-app/kondate/internal/model"
)

type ShoppingStore struct {
	db DBTX
}

func NewShoppingStore(db DBTX) *ShoppingStore {
	return &ShoppingStore{db: db}
}

// WithTx returns a copy of the store bound to the given transaction.
func (s *ShoppingStore) WithTx(tx *sql.Tx) *ShoppingStore {
	return &ShoppingStore{db: tx}
}

func scanShoppingItem(scanner interface{ Scan(...any) error }) (*model.ShoppingItem, error) {
	var item model.ShoppingItem
	var sources, status string
	var skip, purchased, synced int
	var customDays sql.NullInt64
	var purchasedAt, skippedAt, syncedAt sql.NullTime

	err := scanner.Scan(
		&item.ID, &item.UserID, &item.Name, &item.Memo, &sources,
		&item.CategoryID, &item.CategoryLabel, &customDays,
		&skip, &purchased, &purchasedAt, &status, &skippedAt, &syncedAt, &synced,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := decodeJSON(sources, &item.Sources); err != nil {
		return nil, fmt.Errorf("shopping item %d sources: %w", item.ID, err)
	}
	item.CustomExpireDays = intPtr(customDays)
	item.Skip = skip != 0
	item.Purchased = purchased != 0
	item.SyncedToFridge = synced != 0
	item.Status = model.ShoppingStatus(status)
	if purchasedAt.Valid {
		item.PurchasedAt = &purchasedAt.Time
	}
	if skippedAt.Valid {
		item.SkippedAt = &skippedAt.Time
	}
	if syncedAt.Valid {
		item.SyncedAt = &syncedAt.Time
	}
	return &item, nil
}

const shoppingCols = `id, user_id, name, memo, sources, category_id, category_label, custom_expire_days, skip, purchased, purchased_at, status, skipped_at, synced_at, synced_to_fridge, created_at, updated_at`

func (s *ShoppingStore) Create(item *model.ShoppingItem) (*model.ShoppingItem, error) {
	sources, err := encodeJSON(item.Sources)
	if err != nil {
		return nil, err
	}
	if item.Status == "" {
		item.Status = model.ShoppingTodo
	}

	result, err := s.db.Exec(
		`INSERT INTO shopping_items (user_id, name, memo, sources, category_id, category_label, custom_expire_days, skip, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.UserID, item.Name, item.Memo, sources, item.CategoryID, item.CategoryLabel,
		nullInt(item.CustomExpireDays), boolInt(item.Skip), string(item.Status),
	)
	if err != nil {
		return nil, fmt.Errorf("insert shopping item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ShoppingStore) GetByID(id int64) (*model.ShoppingItem, error) {
	row := s.db.QueryRow(`SELECT `+shoppingCols+` FROM shopping_items WHERE id = ?`, id)
	item, err := scanShoppingItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping item: %w", err)
	}
	return item, nil
}

// List returns a user's shopping items. Synced history fades out by
// plan: SYNCED items with synced_at before the cutoff are filtered from
// the result, not deleted.
func (s *ShoppingStore) List(userID int64, syncedVisibleAfter time.Time) ([]model.ShoppingItem, error) {
	rows, err := s.db.Query(
		`SELECT `+shoppingCols+` FROM shopping_items
		 WHERE user_id = ? AND (status != 'SYNCED' OR synced_at >= ?)
		 ORDER BY status ASC, created_at ASC, id ASC`,
		userID, syncedVisibleAfter,
	)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}
	defer rows.Close()

	var items []model.ShoppingItem
	for rows.Next() {
		item, err := scanShoppingItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *ShoppingStore) SetSkip(id int64, skip bool, at time.Time) (*model.ShoppingItem, error) {
	var err error
	if skip {
		_, err = s.db.Exec(
			`UPDATE shopping_items SET skip = 1, status = 'SKIP', skipped_at = ?, updated_at = datetime('now')
			 WHERE id = ? AND status != 'SYNCED'`,
			at, id,
		)
	} else {
		_, err = s.db.Exec(
			`UPDATE shopping_items SET skip = 0, status = 'TODO', skipped_at = NULL, updated_at = datetime('now')
			 WHERE id = ? AND status != 'SYNCED'`,
			id,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("set skip: %w", err)
	}
	return s.GetByID(id)
}

func (s *ShoppingStore) SetPurchased(id int64, purchased bool, at time.Time) (*model.ShoppingItem, error) {
	var err error
	if purchased {
		_, err = s.db.Exec(
			`UPDATE shopping_items SET purchased = 1, purchased_at = ?, updated_at = datetime('now') WHERE id = ?`,
			at, id,
		)
	} else {
		_, err = s.db.Exec(
			`UPDATE shopping_items SET purchased = 0, purchased_at = NULL, updated_at = datetime('now') WHERE id = ?`,
			id,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("set purchased: %w", err)
	}
	return s.GetByID(id)
}

func (s *ShoppingStore) SetMemo(id int64, memo string) (*model.ShoppingItem, error) {
	_, err := s.db.Exec(
		`UPDATE shopping_items SET memo = ?, updated_at = datetime('now') WHERE id = ?`,
		memo, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set memo: %w", err)
	}
	return s.GetByID(id)
}

// SetCategory updates the category carried to the fridge at sync time.
func (s *ShoppingStore) SetCategory(id int64, categoryID, categoryLabel string, customDays *int) (*model.ShoppingItem, error) {
	_, err := s.db.Exec(
		`UPDATE shopping_items SET category_id = ?, category_label = ?, custom_expire_days = ?, updated_at = datetime('now')
		 WHERE id = ?`,
		categoryID, categoryLabel, nullInt(customDays), id,
	)
	if err != nil {
		return nil, fmt.Errorf("set category: %w", err)
	}
	return s.GetByID(id)
}

// MarkSynced stamps an item as pushed into the fridge.
func (s *ShoppingStore) MarkSynced(id int64, at time.Time) error {
	_, err := s.db.Exec(
		`UPDATE shopping_items SET status = 'SYNCED', synced_at = ?, synced_to_fridge = 1, updated_at = datetime('now')
		 WHERE id = ?`,
		at, id,
	)
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}

func (s *ShoppingStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM shopping_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete shopping item: %w", err)
	}
	return nil
}
