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

type DailySetHandler struct {
	setStore    *store.DailySetStore
	planStore   *store.MealPlanStore
	recipeStore *store.RecipeStore
	logger      *slog.Logger
}

func NewDailySetHandler(ds *store.DailySetStore, ps *store.MealPlanStore, rs *store.RecipeStore, logger *slog.Logger) *DailySetHandler {
	return &DailySetHandler{
		setStore:    ds,
		planStore:   ps,
		recipeStore: rs,
		logger:      logger,
	}
}

type dailySetRequest struct {
	Name     string `json:"name"`
	StapleID *int64 `json:"staple_id"`
	MainID   *int64 `json:"main_id"`
	SideID   *int64 `json:"side_id"`
	SoupID   *int64 `json:"soup_id"`
	Memo     string `json:"memo"`
}

// checkRecipes verifies every referenced recipe exists.
func (h *DailySetHandler) checkRecipes(ids ...*int64) (bool, error) {
	for _, id := range ids {
		if id == nil {
			continue
		}
		recipe, err := h.recipeStore.GetByID(*id)
		if err != nil {
			return false, err
		}
		if recipe == nil {
			return false, nil
		}
	}
	return true, nil
}

func (h *DailySetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dailySetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	ok, err := h.checkRecipes(req.StapleID, req.MainID, req.SideID, req.SoupID)
	if err != nil {
		h.logger.Error("check recipes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to validate recipes")
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "referenced recipe does not exist")
		return
	}

	set, err := h.setStore.Create(&model.DailySet{
		UserID:   auth.UserID(r.Context()),
		Name:     req.Name,
		StapleID: req.StapleID,
		MainID:   req.MainID,
		SideID:   req.SideID,
		SoupID:   req.SoupID,
		Memo:     req.Memo,
	})
	if err != nil {
		h.logger.Error("create daily set", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create set")
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (h *DailySetHandler) List(w http.ResponseWriter, r *http.Request) {
	sets, err := h.setStore.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list daily sets", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list sets")
		return
	}
	if sets == nil {
		sets = []model.DailySet{}
	}
	writeJSON(w, http.StatusOK, sets)
}

func (h *DailySetHandler) ownedSet(w http.ResponseWriter, r *http.Request) *model.DailySet {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil
	}

	set, err := h.setStore.GetByID(id)
	if err != nil {
		h.logger.Error("get daily set", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get set")
		return nil
	}
	if set == nil {
		writeError(w, http.StatusNotFound, "set not found")
		return nil
	}
	if set.UserID != auth.UserID(r.Context()) {
		writeError(w, http.StatusForbidden, "not your set")
		return nil
	}
	return set
}

func (h *DailySetHandler) Get(w http.ResponseWriter, r *http.Request) {
	set := h.ownedSet(w, r)
	if set == nil {
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (h *DailySetHandler) Update(w http.ResponseWriter, r *http.Request) {
	set := h.ownedSet(w, r)
	if set == nil {
		return
	}

	var req dailySetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	ok, err := h.checkRecipes(req.StapleID, req.MainID, req.SideID, req.SoupID)
	if err != nil {
		h.logger.Error("check recipes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to validate recipes")
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "referenced recipe does not exist")
		return
	}

	set.Name = req.Name
	set.StapleID = req.StapleID
	set.MainID = req.MainID
	set.SideID = req.SideID
	set.SoupID = req.SoupID
	set.Memo = req.Memo

	updated, err := h.setStore.Update(set)
	if err != nil {
		h.logger.Error("update daily set", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update set")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *DailySetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	set := h.ownedSet(w, r)
	if set == nil {
		return
	}

	if err := h.setStore.Delete(set.ID); err != nil {
		h.logger.Error("delete daily set", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete set")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type applySetRequest struct {
	DayKey string `json:"day_key"`
	Meal   string `json:"meal"`
}

// ApplyToDay copies the set's slot assignments onto one meal of a
// planned day, overwriting whatever was there.
func (h *DailySetHandler) ApplyToDay(w http.ResponseWriter, r *http.Request) {
	set := h.ownedSet(w, r)
	if set == nil {
		return
	}

	var req applySetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !validDayKey(req.DayKey) {
		writeError(w, http.StatusBadRequest, "day_key must be YYYY-MM-DD")
		return
	}
	if !model.ValidMeal(req.Meal) {
		writeError(w, http.StatusBadRequest, "invalid meal")
		return
	}

	userID := auth.UserID(r.Context())
	var day *model.MealPlanDay
	for slot, recipeID := range set.SlotAssignments() {
		d, err := h.planStore.AssignSlot(userID, req.DayKey, model.MealKey(req.Meal), slot, recipeID)
		if err != nil {
			h.logger.Error("apply set slot", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to apply set")
			return
		}
		day = d
	}
	if day == nil {
		// Empty set: nothing to assign, return the day as-is
		d, err := h.planStore.GetDay(userID, req.DayKey)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load day")
			return
		}
		day = d
	}
	writeJSON(w, http.StatusOK, day)
}
