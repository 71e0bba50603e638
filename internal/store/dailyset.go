package store

import (
	"database/sql"
	"fmt"

	"github.com/kondate-app/kondate/internal/model"
)

type DailySetStore struct {
	db DBTX
}

func NewDailySetStore(db DBTX) *DailySetStore {
	return &DailySetStore{db: db}
}

func scanDailySet(scanner interface{ Scan(...any) error }) (*model.DailySet, error) {
	var d model.DailySet
	var staple, main, side, soup sql.NullInt64

	err := scanner.Scan(
		&d.ID, &d.UserID, &d.Name, &staple, &main, &side, &soup,
		&d.Memo, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if staple.Valid {
		d.StapleID = &staple.Int64
	}
	if main.Valid {
		d.MainID = &main.Int64
	}
	if side.Valid {
		d.SideID = &side.Int64
	}
	if soup.Valid {
		d.SoupID = &soup.Int64
	}
	return &d, nil
}

const dailySetCols = `id, user_id, name, staple_id, main_id, side_id, soup_id, memo, created_at, updated_at`

func nullID(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func (s *DailySetStore) Create(d *model.DailySet) (*model.DailySet, error) {
	result, err := s.db.Exec(
		`INSERT INTO daily_sets (user_id, name, staple_id, main_id, side_id, soup_id, memo)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.UserID, d.Name, nullID(d.StapleID), nullID(d.MainID), nullID(d.SideID), nullID(d.SoupID), d.Memo,
	)
	if err != nil {
		return nil, fmt.Errorf("insert daily set: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *DailySetStore) GetByID(id int64) (*model.DailySet, error) {
	row := s.db.QueryRow(`SELECT `+dailySetCols+` FROM daily_sets WHERE id = ?`, id)
	d, err := scanDailySet(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get daily set: %w", err)
	}
	return d, nil
}

func (s *DailySetStore) ListByUser(userID int64) ([]model.DailySet, error) {
	rows, err := s.db.Query(
		`SELECT `+dailySetCols+` FROM daily_sets WHERE user_id = ? ORDER BY name ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list daily sets: %w", err)
	}
	defer rows.Close()

	var sets []model.DailySet
	for rows.Next() {
		d, err := scanDailySet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan daily set: %w", err)
		}
		sets = append(sets, *d)
	}
	return sets, rows.Err()
}

func (s *DailySetStore) Update(d *model.DailySet) (*model.DailySet, error) {
	_, err := s.db.Exec(
		`UPDATE daily_sets SET name = ?, staple_id = ?, main_id = ?, side_id = ?, soup_id = ?, memo = ?,
		 updated_at = datetime('now') WHERE id = ?`,
		d.Name, nullID(d.StapleID), nullID(d.MainID), nullID(d.SideID), nullID(d.SoupID), d.Memo, d.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update daily set: %w", err)
	}
	return s.GetByID(d.ID)
}

func (s *DailySetStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM daily_sets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete daily set: %w", err)
	}
	return nil
}
