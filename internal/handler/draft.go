package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/kondate-app/kondate/internal/auth"
	"github.com/kondate-app/kondate/internal/draft"
	"github.com/kondate-app/kondate/internal/expire"
	"github.com/kondate-app/kondate/internal/model"
	"github.com/kondate-app/kondate/internal/store"
	"github.com/kondate-app/kondate/internal/websocket"
)

type DraftHandler struct {
	service    *draft.Service
	draftStore *store.DraftStore
	policy     *expire.Policy
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewDraftHandler(svc *draft.Service, ds *store.DraftStore, policy *expire.Policy, hub *websocket.Hub, logger *slog.Logger) *DraftHandler {
	return &DraftHandler{
		service:    svc,
		draftStore: ds,
		policy:     policy,
		hub:        hub,
		logger:     logger,
	}
}

type generateRequest struct {
	RangeDays int `json:"range_days"`
}

func (h *DraftHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	userID := auth.UserID(r.Context())
	result, err := h.service.Generate(userID, req.RangeDays, time.Now().UTC())
	if err != nil {
		if errors.Is(err, draft.ErrInvalidRange) {
			writeError(w, http.StatusBadRequest, "range_days must be positive")
			return
		}
		h.logger.Error("generate draft", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate draft")
		return
	}

	h.hub.Notify(userID, websocket.NewMessage("draft_session", "created", result.Session.ID, nil))
	writeJSON(w, http.StatusCreated, result)
}

func (h *DraftHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.draftStore.ListSessions(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list draft sessions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []model.DraftSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *DraftHandler) ownedSession(w http.ResponseWriter, r *http.Request) *model.DraftSession {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil
	}

	sess, err := h.draftStore.GetSession(id)
	if err != nil {
		h.logger.Error("get draft session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get session")
		return nil
	}
	if sess == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return nil
	}
	if sess.UserID != auth.UserID(r.Context()) {
		writeError(w, http.StatusForbidden, "not your session")
		return nil
	}
	return sess
}

func (h *DraftHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess := h.ownedSession(w, r)
	if sess == nil {
		return
	}

	items, err := h.draftStore.ListItems(sess.ID)
	if err != nil {
		h.logger.Error("list draft items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.DraftItem{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session": sess,
		"items":   items,
	})
}

type updateDraftItemRequest struct {
	Skip             *bool   `json:"skip"`
	Memo             *string `json:"memo"`
	CategoryID       *string `json:"category_id"`
	CustomExpireDays *int    `json:"custom_expire_days"`
}

// UpdateItem edits a draft line before apply: toggle skip, set a memo,
// or pick the category the fridge will use later.
func (h *DraftHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	item, err := h.draftStore.GetItem(id)
	if err != nil {
		h.logger.Error("get draft item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	sess, err := h.draftStore.GetSession(item.SessionID)
	if err != nil || sess == nil {
		writeError(w, http.StatusInternalServerError, "failed to get session")
		return
	}
	if sess.UserID != auth.UserID(r.Context()) {
		writeError(w, http.StatusForbidden, "not your session")
		return
	}
	if sess.Status != model.DraftStatusDraft {
		writeError(w, http.StatusConflict, "session is no longer editable")
		return
	}

	var req updateDraftItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	skip := item.Skip
	if req.Skip != nil {
		skip = *req.Skip
	}
	memo := item.Memo
	if req.Memo != nil {
		memo = *req.Memo
	}
	categoryID := item.CategoryID
	categoryLabel := item.CategoryLabel
	customDays := item.CustomExpireDays
	if req.CategoryID != nil {
		rule, err := h.policy.Resolve(*req.CategoryID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown category")
			return
		}
		categoryID = rule.ID
		categoryLabel = rule.Label
	}
	if req.CustomExpireDays != nil {
		customDays = req.CustomExpireDays
	}
	if categoryID == model.CategoryCustom && (customDays == nil || *customDays <= 0) {
		writeError(w, http.StatusBadRequest, "custom category requires a positive expire duration")
		return
	}

	updated, err := h.draftStore.UpdateItem(id, skip, memo, categoryID, categoryLabel, customDays)
	if err != nil {
		h.logger.Error("update draft item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type applyResponse struct {
	Created int `json:"created"`
}

func (h *DraftHandler) Apply(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	userID := auth.UserID(r.Context())
	created, err := h.service.Apply(userID, id, time.Now().UTC())
	if err != nil {
		h.writeDraftError(w, err, "apply draft")
		return
	}

	h.hub.Notify(userID, websocket.NewMessage("draft_session", "applied", id, map[string]any{"created": created}))
	writeJSON(w, http.StatusOK, applyResponse{Created: created})
}

func (h *DraftHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	userID := auth.UserID(r.Context())
	if err := h.service.Archive(userID, id, time.Now().UTC()); err != nil {
		h.writeDraftError(w, err, "archive draft")
		return
	}

	h.hub.Notify(userID, websocket.NewMessage("draft_session", "archived", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *DraftHandler) writeDraftError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, draft.ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, draft.ErrForbidden):
		writeError(w, http.StatusForbidden, "not your session")
	case errors.Is(err, draft.ErrAlreadyApplied):
		writeError(w, http.StatusConflict, "session already applied")
	case errors.Is(err, draft.ErrSessionArchived):
		writeError(w, http.StatusConflict, "session archived")
	default:
		h.logger.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
