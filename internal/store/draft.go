package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/kondate-app/kondate/internal/model"
)

type DraftStore struct {
	db DBTX
}

func NewDraftStore(db DBTX) *DraftStore {
	return &DraftStore{db: db}
}

// WithTx returns a copy of the store bound to the given transaction.
func (s *DraftStore) WithTx(tx *sql.Tx) *DraftStore {
	return &DraftStore{db: tx}
}

// --- Session methods ---

func scanDraftSession(scanner interface{ Scan(...any) error }) (*model.DraftSession, error) {
	var d model.DraftSession
	var status string
	var appliedAt, archivedAt sql.NullTime

	err := scanner.Scan(
		&d.ID, &d.UserID, &status, &d.RangeDays, &d.StartDay, &d.EndDay,
		&d.CreatedAt, &appliedAt, &archivedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Status = model.DraftStatus(status)
	if appliedAt.Valid {
		d.AppliedAt = &appliedAt.Time
	}
	if archivedAt.Valid {
		d.ArchivedAt = &archivedAt.Time
	}
	return &d, nil
}

const draftSessionCols = `id, user_id, status, range_days, start_day, end_day, created_at, applied_at, archived_at`

func (s *DraftStore) CreateSession(userID int64, rangeDays int, startDay, endDay string) (*model.DraftSession, error) {
	result, err := s.db.Exec(
		`INSERT INTO draft_sessions (user_id, range_days, start_day, end_day) VALUES (?, ?, ?, ?)`,
		userID, rangeDays, startDay, endDay,
	)
	if err != nil {
		return nil, fmt.Errorf("insert draft session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetSession(id)
}

func (s *DraftStore) GetSession(id int64) (*model.DraftSession, error) {
	row := s.db.QueryRow(`SELECT `+draftSessionCols+` FROM draft_sessions WHERE id = ?`, id)
	d, err := scanDraftSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get draft session: %w", err)
	}
	return d, nil
}

func (s *DraftStore) ListSessions(userID int64) ([]model.DraftSession, error) {
	rows, err := s.db.Query(
		`SELECT `+draftSessionCols+` FROM draft_sessions WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list draft sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.DraftSession
	for rows.Next() {
		d, err := scanDraftSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan draft session: %w", err)
		}
		sessions = append(sessions, *d)
	}
	return sessions, rows.Err()
}

func (s *DraftStore) MarkApplied(id int64, at time.Time) error {
	_, err := s.db.Exec(
		`UPDATE draft_sessions SET status = ?, applied_at = ? WHERE id = ?`,
		string(model.DraftStatusApplied), at, id,
	)
	if err != nil {
		return fmt.Errorf("mark session applied: %w", err)
	}
	return nil
}

func (s *DraftStore) MarkArchived(id int64, at time.Time) error {
	_, err := s.db.Exec(
		`UPDATE draft_sessions SET status = ?, archived_at = ? WHERE id = ?`,
		string(model.DraftStatusArchived), at, id,
	)
	if err != nil {
		return fmt.Errorf("mark session archived: %w", err)
	}
	return nil
}

// --- Item methods ---

func scanDraftItem(scanner interface{ Scan(...any) error }) (*model.DraftItem, error) {
	var item model.DraftItem
	var sources, state string
	var skip int
	var customDays sql.NullInt64

	err := scanner.Scan(
		&item.ID, &item.SessionID, &item.Name, &sources, &state, &skip,
		&item.CategoryID, &item.CategoryLabel, &customDays, &item.Memo,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := decodeJSON(sources, &item.Sources); err != nil {
		return nil, fmt.Errorf("draft item %d sources: %w", item.ID, err)
	}
	item.FridgeState = model.StockState(state)
	item.Skip = skip != 0
	item.CustomExpireDays = intPtr(customDays)
	return &item, nil
}

const draftItemCols = `id, session_id, name, sources, fridge_state, skip, category_id, category_label, custom_expire_days, memo, created_at, updated_at`

func (s *DraftStore) InsertItem(item *model.DraftItem) (*model.DraftItem, error) {
	sources, err := encodeJSON(item.Sources)
	if err != nil {
		return nil, err
	}

	result, err := s.db.Exec(
		`INSERT INTO draft_items (session_id, name, sources, fridge_state, skip, category_id, category_label, custom_expire_days, memo)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.SessionID, item.Name, sources, string(item.FridgeState), boolInt(item.Skip),
		item.CategoryID, item.CategoryLabel, nullInt(item.CustomExpireDays), item.Memo,
	)
	if err != nil {
		return nil, fmt.Errorf("insert draft item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetItem(id)
}

func (s *DraftStore) GetItem(id int64) (*model.DraftItem, error) {
	row := s.db.QueryRow(`SELECT `+draftItemCols+` FROM draft_items WHERE id = ?`, id)
	item, err := scanDraftItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get draft item: %w", err)
	}
	return item, nil
}

// ListItems returns a session's items in insertion order, which is the
// generator's encounter order.
func (s *DraftStore) ListItems(sessionID int64) ([]model.DraftItem, error) {
	rows, err := s.db.Query(
		`SELECT `+draftItemCols+` FROM draft_items WHERE session_id = ? ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list draft items: %w", err)
	}
	defer rows.Close()

	var items []model.DraftItem
	for rows.Next() {
		item, err := scanDraftItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan draft item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem persists the user-editable fields of a draft item: skip,
// memo, and the category carried forward to the fridge later.
func (s *DraftStore) UpdateItem(id int64, skip bool, memo, categoryID, categoryLabel string, customDays *int) (*model.DraftItem, error) {
	_, err := s.db.Exec(
		`UPDATE draft_items SET skip = ?, memo = ?, category_id = ?, category_label = ?, custom_expire_days = ?,
		 updated_at = datetime('now') WHERE id = ?`,
		boolInt(skip), memo, categoryID, categoryLabel, nullInt(customDays), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update draft item: %w", err)
	}
	return s.GetItem(id)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
