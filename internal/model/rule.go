package model

import "time"

// CategoryCustom is the reserved rule id whose shelf life the user supplies.
const CategoryCustom = "custom"

// CategoryOther is the fallback category assigned when a shopping item
// reaches the fridge without the user ever picking one.
const CategoryOther = "other"

// ExpireRule is immutable reference data mapping a food category to a
// default shelf life in days. Loaded at startup, never mutated.
type ExpireRule struct {
	ID                string    `json:"id"`
	Label             string    `json:"label"`
	DefaultExpireDays int       `json:"default_expire_days"`
	Basis             string    `json:"basis"`
	SortOrder         int       `json:"sort_order"`
	CreatedAt         time.Time `json:"created_at"`
}
