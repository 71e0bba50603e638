package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kondate-app/kondate/internal/auth"
	"github.com/kondate-app/kondate/internal/expire"
	"github.com/kondate-app/kondate/internal/model"
	"github.com/kondate-app/kondate/internal/store"
	"github.com/kondate-app/kondate/internal/websocket"
)

type FridgeHandler struct {
	fridgeStore *store.FridgeStore
	policy      *expire.Policy
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewFridgeHandler(fs *store.FridgeStore, policy *expire.Policy, hub *websocket.Hub, logger *slog.Logger) *FridgeHandler {
	return &FridgeHandler{
		fridgeStore: fs,
		policy:      policy,
		hub:         hub,
		logger:      logger,
	}
}

func (h *FridgeHandler) List(w http.ResponseWriter, r *http.Request) {
	lots, err := h.fridgeStore.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list fridge lots", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list fridge")
		return
	}
	if lots == nil {
		lots = []model.FridgeLot{}
	}
	writeJSON(w, http.StatusOK, lots)
}

type createLotRequest struct {
	FoodName         string     `json:"food_name"`
	CategoryID       string     `json:"category_id"`
	CustomExpireDays *int       `json:"custom_expire_days"`
	State            string     `json:"state"`
	Memo             string     `json:"memo"`
	BoughtAt         *time.Time `json:"bought_at"`
}

func (h *FridgeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.FoodName = strings.TrimSpace(req.FoodName)
	if req.FoodName == "" {
		writeError(w, http.StatusBadRequest, "food_name is required")
		return
	}

	state := model.StockHave
	if req.State != "" {
		s, ok := model.NormalizeStockState(req.State)
		if !ok || s == model.StockUnknown {
			writeError(w, http.StatusBadRequest, "invalid state")
			return
		}
		state = s
	}

	categoryID := req.CategoryID
	if categoryID == "" {
		categoryID = model.CategoryOther
	}
	rule, err := h.policy.Resolve(categoryID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}

	boughtAt := time.Now().UTC()
	if req.BoughtAt != nil {
		boughtAt = req.BoughtAt.UTC()
	}

	expireAt, err := h.policy.ComputeExpireAt(boughtAt, categoryID, req.CustomExpireDays)
	if err != nil {
		if errors.Is(err, expire.ErrInvalidCustomDuration) {
			writeError(w, http.StatusBadRequest, "custom category requires a positive expire duration")
			return
		}
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}

	lot, err := h.fridgeStore.Create(&model.FridgeLot{
		UserID:           auth.UserID(r.Context()),
		FoodName:         req.FoodName,
		CategoryID:       categoryID,
		CategoryLabel:    rule.Label,
		State:            state,
		BoughtAt:         boughtAt,
		ExpireAt:         expireAt,
		ExpireSource:     expire.Source(categoryID),
		CustomExpireDays: req.CustomExpireDays,
		Memo:             req.Memo,
		IsNew:            false,
	})
	if err != nil {
		h.logger.Error("create fridge lot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create lot")
		return
	}

	h.hub.Notify(lot.UserID, websocket.NewMessage("fridge_lot", "created", lot.ID, nil))
	writeJSON(w, http.StatusCreated, lot)
}

// ownedLot loads a lot and enforces ownership. Writes the error response
// itself and returns nil when the caller should stop.
func (h *FridgeHandler) ownedLot(w http.ResponseWriter, r *http.Request) *model.FridgeLot {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil
	}

	lot, err := h.fridgeStore.GetByID(id)
	if err != nil {
		h.logger.Error("get fridge lot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get lot")
		return nil
	}
	if lot == nil {
		writeError(w, http.StatusNotFound, "lot not found")
		return nil
	}
	if lot.UserID != auth.UserID(r.Context()) {
		writeError(w, http.StatusForbidden, "not your fridge")
		return nil
	}
	return lot
}

type updateStateRequest struct {
	State string `json:"state"`
}

func (h *FridgeHandler) UpdateState(w http.ResponseWriter, r *http.Request) {
	lot := h.ownedLot(w, r)
	if lot == nil {
		return
	}

	var req updateStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	state, ok := model.NormalizeStockState(req.State)
	if !ok || state == model.StockUnknown {
		writeError(w, http.StatusBadRequest, "invalid state")
		return
	}

	updated, err := h.fridgeStore.UpdateState(lot.ID, state)
	if err != nil {
		h.logger.Error("update lot state", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update state")
		return
	}

	h.hub.Notify(lot.UserID, websocket.NewMessage("fridge_lot", "updated", lot.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

type memoRequest struct {
	Memo string `json:"memo"`
}

func (h *FridgeHandler) UpdateMemo(w http.ResponseWriter, r *http.Request) {
	lot := h.ownedLot(w, r)
	if lot == nil {
		return
	}

	var req memoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	updated, err := h.fridgeStore.UpdateMemo(lot.ID, req.Memo)
	if err != nil {
		h.logger.Error("update lot memo", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update memo")
		return
	}

	h.hub.Notify(lot.UserID, websocket.NewMessage("fridge_lot", "updated", lot.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

// MarkSeen clears the new-arrival badge on everything synced in from
// shopping since the user last looked.
func (h *FridgeHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	if err := h.fridgeStore.MarkSeen(auth.UserID(r.Context())); err != nil {
		h.logger.Error("mark lots seen", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to mark seen")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FridgeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	lot := h.ownedLot(w, r)
	if lot == nil {
		return
	}

	if err := h.fridgeStore.Delete(lot.ID); err != nil {
		h.logger.Error("delete fridge lot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete lot")
		return
	}

	h.hub.Notify(lot.UserID, websocket.NewMessage("fridge_lot", "deleted", lot.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}
