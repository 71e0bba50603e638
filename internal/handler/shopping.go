package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kondate-app/kondate/internal/auth"
	"github.com/kondate-app/kondate/internal/draft"
	"github.com/kondate-app/kondate/internal/expire"
	"github.com/kondate-app/kondate/internal/model"
	"github.com/kondate-app/kondate/internal/store"
	"github.com/kondate-app/kondate/internal/websocket"
)

type ShoppingHandler struct {
	shoppingStore *store.ShoppingStore
	service       *draft.Service
	policy        *expire.Policy
	hub           *websocket.Hub
	logger        *slog.Logger
}

func NewShoppingHandler(ss *store.ShoppingStore, svc *draft.Service, policy *expire.Policy, hub *websocket.Hub, logger *slog.Logger) *ShoppingHandler {
	return &ShoppingHandler{
		shoppingStore: ss,
		service:       svc,
		policy:        policy,
		hub:           hub,
		logger:        logger,
	}
}

// List returns the caller's shopping list. Synced history older than
// the plan's retention window is hidden, not deleted; upgrading to PRO
// makes the older rows visible again.
func (h *ShoppingHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	cutoff := time.Now().UTC().AddDate(0, 0, -model.RetentionDays(ac.Plan))

	items, err := h.shoppingStore.List(ac.UserID, cutoff)
	if err != nil {
		h.logger.Error("list shopping items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.ShoppingItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

type createShoppingRequest struct {
	Name             string `json:"name"`
	Memo             string `json:"memo"`
	CategoryID       string `json:"category_id"`
	CustomExpireDays *int   `json:"custom_expire_days"`
}

// Create adds a manual item alongside the draft-applied ones.
func (h *ShoppingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createShoppingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
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
	if categoryID == model.CategoryCustom && (req.CustomExpireDays == nil || *req.CustomExpireDays <= 0) {
		writeError(w, http.StatusBadRequest, "custom category requires a positive expire duration")
		return
	}

	userID := auth.UserID(r.Context())
	item, err := h.shoppingStore.Create(&model.ShoppingItem{
		UserID:           userID,
		Name:             req.Name,
		Memo:             req.Memo,
		CategoryID:       rule.ID,
		CategoryLabel:    rule.Label,
		CustomExpireDays: req.CustomExpireDays,
		Status:           model.ShoppingTodo,
	})
	if err != nil {
		h.logger.Error("create shopping item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	h.hub.Notify(userID, websocket.NewMessage("shopping_item", "created", item.ID, nil))
	writeJSON(w, http.StatusCreated, item)
}

func (h *ShoppingHandler) ownedItem(w http.ResponseWriter, r *http.Request) *model.ShoppingItem {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil
	}

	item, err := h.shoppingStore.GetByID(id)
	if err != nil {
		h.logger.Error("get shopping item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return nil
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return nil
	}
	if item.UserID != auth.UserID(r.Context()) {
		writeError(w, http.StatusForbidden, "not your item")
		return nil
	}
	return item
}

type skipRequest struct {
	Skip bool `json:"skip"`
}

func (h *ShoppingHandler) SetSkip(w http.ResponseWriter, r *http.Request) {
	item := h.ownedItem(w, r)
	if item == nil {
		return
	}
	if item.Status == model.ShoppingSynced {
		writeError(w, http.StatusConflict, "item already synced to fridge")
		return
	}

	var req skipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	updated, err := h.shoppingStore.SetSkip(item.ID, req.Skip, time.Now().UTC())
	if err != nil {
		h.logger.Error("set skip", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	h.hub.Notify(item.UserID, websocket.NewMessage("shopping_item", "updated", item.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

type purchasedRequest struct {
	Purchased bool `json:"purchased"`
}

func (h *ShoppingHandler) SetPurchased(w http.ResponseWriter, r *http.Request) {
	item := h.ownedItem(w, r)
	if item == nil {
		return
	}

	var req purchasedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	updated, err := h.shoppingStore.SetPurchased(item.ID, req.Purchased, time.Now().UTC())
	if err != nil {
		h.logger.Error("set purchased", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	h.hub.Notify(item.UserID, websocket.NewMessage("shopping_item", "updated", item.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

func (h *ShoppingHandler) SetMemo(w http.ResponseWriter, r *http.Request) {
	item := h.ownedItem(w, r)
	if item == nil {
		return
	}

	var req memoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	updated, err := h.shoppingStore.SetMemo(item.ID, req.Memo)
	if err != nil {
		h.logger.Error("set memo", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type categoryRequest struct {
	CategoryID       string `json:"category_id"`
	CustomExpireDays *int   `json:"custom_expire_days"`
}

// SetCategory picks the category the fridge will use when this item is
// synced. Must happen before sync; synced items are immutable.
func (h *ShoppingHandler) SetCategory(w http.ResponseWriter, r *http.Request) {
	item := h.ownedItem(w, r)
	if item == nil {
		return
	}
	if item.Status == model.ShoppingSynced {
		writeError(w, http.StatusConflict, "item already synced to fridge")
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	rule, err := h.policy.Resolve(req.CategoryID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}
	if req.CategoryID == model.CategoryCustom && (req.CustomExpireDays == nil || *req.CustomExpireDays <= 0) {
		writeError(w, http.StatusBadRequest, "custom category requires a positive expire duration")
		return
	}

	updated, err := h.shoppingStore.SetCategory(item.ID, rule.ID, rule.Label, req.CustomExpireDays)
	if err != nil {
		h.logger.Error("set category", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ShoppingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item := h.ownedItem(w, r)
	if item == nil {
		return
	}

	if err := h.shoppingStore.Delete(item.ID); err != nil {
		h.logger.Error("delete shopping item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	h.hub.Notify(item.UserID, websocket.NewMessage("shopping_item", "deleted", item.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

type syncRequest struct {
	ItemIDs []int64 `json:"item_ids"`
}

// Sync pushes bought items into the fridge as stocked lots. The whole
// batch lands or none of it does.
func (h *ShoppingHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.ItemIDs) == 0 {
		writeError(w, http.StatusBadRequest, "item_ids is required")
		return
	}

	userID := auth.UserID(r.Context())
	lots, err := h.service.SyncToFridge(userID, req.ItemIDs, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, draft.ErrNotFound):
			writeError(w, http.StatusNotFound, "item not found")
		case errors.Is(err, draft.ErrForbidden):
			writeError(w, http.StatusForbidden, "not your item")
		case errors.Is(err, draft.ErrAlreadySynced):
			writeError(w, http.StatusConflict, "item already synced")
		case errors.Is(err, draft.ErrItemSkipped):
			writeError(w, http.StatusConflict, "skipped items cannot be synced")
		case errors.Is(err, expire.ErrInvalidCustomDuration):
			writeError(w, http.StatusBadRequest, "custom category requires a positive expire duration")
		default:
			h.logger.Error("sync to fridge", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to sync")
		}
		return
	}

	h.hub.Notify(userID, websocket.NewMessage("fridge_lot", "synced", 0, map[string]any{"count": len(lots)}))
	writeJSON(w, http.StatusOK, map[string]any{"lots": lots})
}
