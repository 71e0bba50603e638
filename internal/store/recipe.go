package store

import (
	"database/sql"
	"fmt"

	"github.com/kondate-app/kondate/internal/model"
)

type RecipeStore struct {
	db DBTX
}

func NewRecipeStore(db DBTX) *RecipeStore {
	return &RecipeStore{db: db}
}

func scanRecipe(scanner interface{ Scan(...any) error }) (*model.Recipe, error) {
	var r model.Recipe
	var ingredients, seasonings, tags string

	err := scanner.Scan(
		&r.ID, &r.AuthorID, &r.Title, &r.ImageURL, &r.Category,
		&ingredients, &seasonings, &r.CookingTime, &r.Calories, &tags,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := decodeJSON(ingredients, &r.Ingredients); err != nil {
		return nil, fmt.Errorf("recipe %d ingredients: %w", r.ID, err)
	}
	if err := decodeJSON(seasonings, &r.Seasonings); err != nil {
		return nil, fmt.Errorf("recipe %d seasonings: %w", r.ID, err)
	}
	if err := decodeJSON(tags, &r.Tags); err != nil {
		return nil, fmt.Errorf("recipe %d tags: %w", r.ID, err)
	}
	return &r, nil
}

const recipeCols = `id, author_id, title, image_url, category, ingredients, seasonings, cooking_time, calories, tags, created_at, updated_at`

func (s *RecipeStore) Create(r *model.Recipe) (*model.Recipe, error) {
	ingredients, err := encodeJSON(r.Ingredients)
	if err != nil {
		return nil, err
	}
	seasonings, err := encodeJSON(r.Seasonings)
	if err != nil {
		return nil, err
	}
	tags, err := encodeJSON(r.Tags)
	if err != nil {
		return nil, err
	}

	result, err := s.db.Exec(
		`INSERT INTO recipes (author_id, title, image_url, category, ingredients, seasonings, cooking_time, calories, tags)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.AuthorID, r.Title, r.ImageURL, r.Category, ingredients, seasonings, r.CookingTime, r.Calories, tags,
	)
	if err != nil {
		return nil, fmt.Errorf("insert recipe: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *RecipeStore) GetByID(id int64) (*model.Recipe, error) {
	row := s.db.QueryRow(`SELECT `+recipeCols+` FROM recipes WHERE id = ?`, id)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return r, nil
}

// List returns every recipe. Recipes are readable by anyone for
// planning; only the author may edit.
func (s *RecipeStore) List() ([]model.Recipe, error) {
	rows, err := s.db.Query(`SELECT ` + recipeCols + ` FROM recipes ORDER BY title ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()
	return collectRecipes(rows)
}

func (s *RecipeStore) ListByAuthor(authorID int64) ([]model.Recipe, error) {
	rows, err := s.db.Query(
		`SELECT `+recipeCols+` FROM recipes WHERE author_id = ? ORDER BY title ASC, id ASC`,
		authorID,
	)
	if err != nil {
		return nil, fmt.Errorf("list recipes by author: %w", err)
	}
	defer rows.Close()
	return collectRecipes(rows)
}

func collectRecipes(rows *sql.Rows) ([]model.Recipe, error) {
	var recipes []model.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, *r)
	}
	return recipes, rows.Err()
}

func (s *RecipeStore) Update(r *model.Recipe) (*model.Recipe, error) {
	ingredients, err := encodeJSON(r.Ingredients)
	if err != nil {
		return nil, err
	}
	seasonings, err := encodeJSON(r.Seasonings)
	if err != nil {
		return nil, err
	}
	tags, err := encodeJSON(r.Tags)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(
		`UPDATE recipes SET title = ?, image_url = ?, category = ?, ingredients = ?, seasonings = ?,
		 cooking_time = ?, calories = ?, tags = ?, updated_at = datetime('now') WHERE id = ?`,
		r.Title, r.ImageURL, r.Category, ingredients, seasonings, r.CookingTime, r.Calories, tags, r.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	return s.GetByID(r.ID)
}

func (s *RecipeStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}
