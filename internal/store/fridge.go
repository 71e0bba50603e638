package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/kondate-app/kondate/internal/model"
)

type FridgeStore struct {
	db DBTX
}

func NewFridgeStore(db DBTX) *FridgeStore {
	return &FridgeStore{db: db}
}

// WithTx returns a copy of the store bound to the given transaction.
func (s *FridgeStore) WithTx(tx *sql.Tx) *FridgeStore {
	return &FridgeStore{db: tx}
}

func scanLot(scanner interface{ Scan(...any) error }) (*model.FridgeLot, error) {
	var lot model.FridgeLot
	var state string
	var customDays sql.NullInt64
	var isNew int

	err := scanner.Scan(
		&lot.ID, &lot.UserID, &lot.FoodName, &lot.CategoryID, &lot.CategoryLabel,
		&state, &lot.BoughtAt, &lot.ExpireAt, &lot.ExpireSource, &customDays,
		&lot.Memo, &isNew, &lot.CreatedAt, &lot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Older rows may carry the legacy LITTLE token.
	normalized, ok := model.NormalizeStockState(state)
	if !ok {
		return nil, fmt.Errorf("lot %d: bad stock state %q", lot.ID, state)
	}
	lot.State = normalized
	lot.CustomExpireDays = intPtr(customDays)
	lot.IsNew = isNew != 0
	return &lot, nil
}

const lotCols = `id, user_id, food_name, category_id, category_label, state, bought_at, expire_at, expire_source, custom_expire_days, memo, is_new, created_at, updated_at`

func (s *FridgeStore) Create(lot *model.FridgeLot) (*model.FridgeLot, error) {
	result, err := s.db.Exec(
		`INSERT INTO fridge_lots
		 (user_id, food_name, category_id, category_label, state, bought_at, expire_at, expire_source, custom_expire_days, memo, is_new)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lot.UserID, lot.FoodName, lot.CategoryID, lot.CategoryLabel, string(lot.State),
		lot.BoughtAt, lot.ExpireAt, string(lot.ExpireSource), nullInt(lot.CustomExpireDays), lot.Memo, boolInt(lot.IsNew),
	)
	if err != nil {
		return nil, fmt.Errorf("insert lot: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *FridgeStore) GetByID(id int64) (*model.FridgeLot, error) {
	row := s.db.QueryRow(`SELECT `+lotCols+` FROM fridge_lots WHERE id = ?`, id)
	lot, err := scanLot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return lot, nil
}

// ListByUser returns all of a user's lots ordered soonest-expiring first.
func (s *FridgeStore) ListByUser(userID int64) ([]model.FridgeLot, error) {
	rows, err := s.db.Query(
		`SELECT `+lotCols+` FROM fridge_lots WHERE user_id = ? ORDER BY expire_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()

	var lots []model.FridgeLot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		lots = append(lots, *lot)
	}
	return lots, rows.Err()
}

// ListExpiringBefore returns lots across all users whose expire_at falls
// before the cutoff and that still have stock. Used by the reminder
// scheduler.
func (s *FridgeStore) ListExpiringBefore(cutoff time.Time) ([]model.FridgeLot, error) {
	rows, err := s.db.Query(
		`SELECT `+lotCols+` FROM fridge_lots WHERE expire_at <= ? AND state != 'NONE' ORDER BY user_id ASC, expire_at ASC`,
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("list expiring lots: %w", err)
	}
	defer rows.Close()

	var lots []model.FridgeLot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		lots = append(lots, *lot)
	}
	return lots, rows.Err()
}

func (s *FridgeStore) UpdateState(id int64, state model.StockState) (*model.FridgeLot, error) {
	_, err := s.db.Exec(
		`UPDATE fridge_lots SET state = ?, updated_at = datetime('now') WHERE id = ?`,
		string(state), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update lot state: %w", err)
	}
	return s.GetByID(id)
}

func (s *FridgeStore) UpdateMemo(id int64, memo string) (*model.FridgeLot, error) {
	_, err := s.db.Exec(
		`UPDATE fridge_lots SET memo = ?, updated_at = datetime('now') WHERE id = ?`,
		memo, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update lot memo: %w", err)
	}
	return s.GetByID(id)
}

// MarkSeen clears the is_new flag on all of a user's lots.
func (s *FridgeStore) MarkSeen(userID int64) error {
	_, err := s.db.Exec(
		`UPDATE fridge_lots SET is_new = 0 WHERE user_id = ? AND is_new = 1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("mark lots seen: %w", err)
	}
	return nil
}

func (s *FridgeStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM fridge_lots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete lot: %w", err)
	}
	return nil
}
