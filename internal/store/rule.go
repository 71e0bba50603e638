package store

import (
	"database/sql"
	"fmt"

	"github.com/kondate-app/kondate/internal/model"
)

type ExpireRuleStore struct {
	db DBTX
}

func NewExpireRuleStore(db DBTX) *ExpireRuleStore {
	return &ExpireRuleStore{db: db}
}

func scanRule(scanner interface{ Scan(...any) error }) (*model.ExpireRule, error) {
	var r model.ExpireRule
	err := scanner.Scan(&r.ID, &r.Label, &r.DefaultExpireDays, &r.Basis, &r.SortOrder, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

const ruleCols = `id, label, default_expire_days, basis, sort_order, created_at`

func (s *ExpireRuleStore) List() ([]model.ExpireRule, error) {
	rows, err := s.db.Query(`SELECT ` + ruleCols + ` FROM expire_rules ORDER BY sort_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("list expire rules: %w", err)
	}
	defer rows.Close()

	var rules []model.ExpireRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expire rule: %w", err)
		}
		rules = append(rules, *r)
	}
	return rules, rows.Err()
}

func (s *ExpireRuleStore) GetByID(id string) (*model.ExpireRule, error) {
	row := s.db.QueryRow(`SELECT `+ruleCols+` FROM expire_rules WHERE id = ?`, id)
	r, err := scanRule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get expire rule: %w", err)
	}
	return r, nil
}
