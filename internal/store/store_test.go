package store

import (
	"database/sql"
	"testing"

	"github.com/kondate-app/kondate/internal/database"
	"github.com/kondate-app/kondate/internal/model"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testUser(t *testing.T, db *sql.DB, email string) *model.User {
	t.Helper()
	u, err := NewUserStore(db).Create(email, "Test User", "hash")
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return u
}

func testRecipe(t *testing.T, db *sql.DB, authorID int64, title string) *model.Recipe {
	t.Helper()
	r, err := NewRecipeStore(db).Create(&model.Recipe{
		AuthorID: authorID,
		Title:    title,
		Category: "main",
		Ingredients: []model.IngredientLine{
			{Name: title + " base", Quantity: "1"},
		},
	})
	if err != nil {
		t.Fatalf("create test recipe: %v", err)
	}
	return r
}
