package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/kondate-app/kondate/internal/auth"
	"github.com/kondate-app/kondate/internal/model"
	"github.com/kondate-app/kondate/internal/store"
	"github.com/kondate-app/kondate/internal/websocket"
)

type MealPlanHandler struct {
	planStore   *store.MealPlanStore
	recipeStore *store.RecipeStore
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewMealPlanHandler(ps *store.MealPlanStore, rs *store.RecipeStore, hub *websocket.Hub, logger *slog.Logger) *MealPlanHandler {
	return &MealPlanHandler{
		planStore:   ps,
		recipeStore: rs,
		hub:         hub,
		logger:      logger,
	}
}

func validDayKey(s string) bool {
	_, err := time.Parse(model.DayKeyLayout, s)
	return err == nil
}

// GetDay returns one planned day. An unplanned date is an empty day,
// not a 404.
func (h *MealPlanHandler) GetDay(w http.ResponseWriter, r *http.Request) {
	dayKey := r.PathValue("day")
	if !validDayKey(dayKey) {
		writeError(w, http.StatusBadRequest, "day must be YYYY-MM-DD")
		return
	}

	userID := auth.UserID(r.Context())
	day, err := h.planStore.GetDay(userID, dayKey)
	if err != nil {
		h.logger.Error("get plan day", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get day")
		return
	}
	if day == nil {
		day = &model.MealPlanDay{UserID: userID, DayKey: dayKey, Slots: []model.PlanSlot{}}
	}
	writeJSON(w, http.StatusOK, day)
}

// Range returns the planned days between from and to inclusive.
func (h *MealPlanHandler) Range(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if !validDayKey(from) || !validDayKey(to) {
		writeError(w, http.StatusBadRequest, "from and to must be YYYY-MM-DD")
		return
	}
	if from > to {
		writeError(w, http.StatusBadRequest, "from must not be after to")
		return
	}

	days, err := h.planStore.DaysInRange(auth.UserID(r.Context()), from, to)
	if err != nil {
		h.logger.Error("list plan days", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list days")
		return
	}
	if days == nil {
		days = []model.MealPlanDay{}
	}
	writeJSON(w, http.StatusOK, days)
}

type assignSlotRequest struct {
	Meal     string `json:"meal"`
	Slot     string `json:"slot"`
	RecipeID int64  `json:"recipe_id"`
}

func (h *MealPlanHandler) AssignSlot(w http.ResponseWriter, r *http.Request) {
	dayKey := r.PathValue("day")
	if !validDayKey(dayKey) {
		writeError(w, http.StatusBadRequest, "day must be YYYY-MM-DD")
		return
	}

	var req assignSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !model.ValidMeal(req.Meal) {
		writeError(w, http.StatusBadRequest, "invalid meal")
		return
	}
	if !model.ValidSlot(req.Slot) {
		writeError(w, http.StatusBadRequest, "invalid slot")
		return
	}

	recipe, err := h.recipeStore.GetByID(req.RecipeID)
	if err != nil {
		h.logger.Error("get recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to validate recipe")
		return
	}
	if recipe == nil {
		writeError(w, http.StatusBadRequest, "recipe does not exist")
		return
	}

	userID := auth.UserID(r.Context())
	day, err := h.planStore.AssignSlot(userID, dayKey, model.MealKey(req.Meal), model.SlotKey(req.Slot), req.RecipeID)
	if err != nil {
		h.logger.Error("assign slot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to assign slot")
		return
	}

	h.hub.Notify(userID, websocket.NewMessage("meal_plan", "updated", day.ID, map[string]any{"day_key": dayKey}))
	writeJSON(w, http.StatusOK, day)
}

type clearSlotRequest struct {
	Meal string `json:"meal"`
	Slot string `json:"slot"`
}

func (h *MealPlanHandler) ClearSlot(w http.ResponseWriter, r *http.Request) {
	dayKey := r.PathValue("day")
	if !validDayKey(dayKey) {
		writeError(w, http.StatusBadRequest, "day must be YYYY-MM-DD")
		return
	}

	var req clearSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !model.ValidMeal(req.Meal) {
		writeError(w, http.StatusBadRequest, "invalid meal")
		return
	}
	if !model.ValidSlot(req.Slot) {
		writeError(w, http.StatusBadRequest, "invalid slot")
		return
	}

	userID := auth.UserID(r.Context())
	day, err := h.planStore.ClearSlot(userID, dayKey, model.MealKey(req.Meal), model.SlotKey(req.Slot))
	if err != nil {
		h.logger.Error("clear slot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear slot")
		return
	}
	if day == nil {
		day = &model.MealPlanDay{UserID: userID, DayKey: dayKey, Slots: []model.PlanSlot{}}
	}

	h.hub.Notify(userID, websocket.NewMessage("meal_plan", "updated", day.ID, map[string]any{"day_key": dayKey}))
	writeJSON(w, http.StatusOK, day)
}

func (h *MealPlanHandler) SetMemo(w http.ResponseWriter, r *http.Request) {
	dayKey := r.PathValue("day")
	if !validDayKey(dayKey) {
		writeError(w, http.StatusBadRequest, "day must be YYYY-MM-DD")
		return
	}

	var req memoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	userID := auth.UserID(r.Context())
	day, err := h.planStore.SetMemo(userID, dayKey, req.Memo)
	if err != nil {
		h.logger.Error("set plan memo", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set memo")
		return
	}

	h.hub.Notify(userID, websocket.NewMessage("meal_plan", "updated", day.ID, map[string]any{"day_key": dayKey}))
	writeJSON(w, http.StatusOK, day)
}
