package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kondate-app/kondate/internal/auth"
	"github.com/kondate-app/kondate/internal/model"
	"github.com/kondate-app/kondate/internal/store"
)

type RecipeHandler struct {
	recipeStore *store.RecipeStore
	logger      *slog.Logger
}

func NewRecipeHandler(rs *store.RecipeStore, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{recipeStore: rs, logger: logger}
}

type recipeRequest struct {
	Title       string                 `json:"title"`
	ImageURL    string                 `json:"image_url"`
	Category    string                 `json:"category"`
	Ingredients []model.IngredientLine `json:"ingredients"`
	Seasonings  []model.IngredientLine `json:"seasonings"`
	CookingTime int                    `json:"cooking_time"`
	Calories    int                    `json:"calories"`
	Tags        []string               `json:"tags"`
}

func (req *recipeRequest) validate() string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required"
	}
	if req.Category != "" && !model.ValidSlot(req.Category) {
		return "category must be staple, main, side, or soup"
	}
	for i := range req.Ingredients {
		req.Ingredients[i].Name = strings.TrimSpace(req.Ingredients[i].Name)
		if req.Ingredients[i].Name == "" {
			return "ingredient names must not be empty"
		}
	}
	return ""
}

func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	recipe, err := h.recipeStore.Create(&model.Recipe{
		AuthorID:    auth.UserID(r.Context()),
		Title:       req.Title,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		Ingredients: req.Ingredients,
		Seasonings:  req.Seasonings,
		CookingTime: req.CookingTime,
		Calories:    req.Calories,
		Tags:        req.Tags,
	})
	if err != nil {
		h.logger.Error("create recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create recipe")
		return
	}
	writeJSON(w, http.StatusCreated, recipe)
}

// List returns the whole catalog. Recipes are shared reading; the
// catalog is not scoped per user.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		recipes []model.Recipe
		err     error
	)
	if r.URL.Query().Get("mine") == "true" {
		recipes, err = h.recipeStore.ListByAuthor(auth.UserID(r.Context()))
	} else {
		recipes, err = h.recipeStore.List()
	}
	if err != nil {
		h.logger.Error("list recipes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list recipes")
		return
	}
	if recipes == nil {
		recipes = []model.Recipe{}
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	recipe, err := h.recipeStore.GetByID(id)
	if err != nil {
		h.logger.Error("get recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get recipe")
		return
	}
	if recipe == nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// authoredRecipe loads a recipe and enforces that the caller wrote it.
func (h *RecipeHandler) authoredRecipe(w http.ResponseWriter, r *http.Request) *model.Recipe {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil
	}

	recipe, err := h.recipeStore.GetByID(id)
	if err != nil {
		h.logger.Error("get recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get recipe")
		return nil
	}
	if recipe == nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return nil
	}
	if recipe.AuthorID != auth.UserID(r.Context()) {
		writeError(w, http.StatusForbidden, "only the author can modify a recipe")
		return nil
	}
	return recipe
}

func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	recipe := h.authoredRecipe(w, r)
	if recipe == nil {
		return
	}

	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	recipe.Title = req.Title
	recipe.ImageURL = req.ImageURL
	recipe.Category = req.Category
	recipe.Ingredients = req.Ingredients
	recipe.Seasonings = req.Seasonings
	recipe.CookingTime = req.CookingTime
	recipe.Calories = req.Calories
	recipe.Tags = req.Tags

	updated, err := h.recipeStore.Update(recipe)
	if err != nil {
		h.logger.Error("update recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update recipe")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	recipe := h.authoredRecipe(w, r)
	if recipe == nil {
		return
	}

	if err := h.recipeStore.Delete(recipe.ID); err != nil {
		h.logger.Error("delete recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete recipe")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
