package model

import "time"

// IngredientLine is one free-text ingredient or seasoning entry.
// Quantity is whatever the author typed ("2個", "大さじ1", "a pinch").
type IngredientLine struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

type Recipe struct {
	ID          int64            `json:"id"`
	AuthorID    int64            `json:"author_id"`
	Title       string           `json:"title"`
	ImageURL    string           `json:"image_url"`
	Category    string           `json:"category"` // staple/main/side/soup
	Ingredients []IngredientLine `json:"ingredients"`
	Seasonings  []IngredientLine `json:"seasonings"`
	CookingTime int              `json:"cooking_time"`
	Calories    int              `json:"calories"`
	Tags        []string         `json:"tags"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
