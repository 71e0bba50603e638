package handler

import (
	"log/slog"
	"net/http"

	"github.com/kondate-app/kondate/internal/model"
	"github.com/kondate-app/kondate/internal/store"
)

// ConfigHandler serves the static reference data clients need to render
// forms: the food category list and the fridge estimate disclaimer.
type ConfigHandler struct {
	ruleStore     *store.ExpireRuleStore
	settingsStore *store.SettingsStore
	logger        *slog.Logger
}

func NewConfigHandler(rs *store.ExpireRuleStore, ss *store.SettingsStore, logger *slog.Logger) *ConfigHandler {
	return &ConfigHandler{
		ruleStore:     rs,
		settingsStore: ss,
		logger:        logger,
	}
}

func (h *ConfigHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	rules, err := h.ruleStore.List()
	if err != nil {
		h.logger.Error("list expire rules", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	if rules == nil {
		rules = []model.ExpireRule{}
	}
	writeJSON(w, http.StatusOK, rules)
}

func (h *ConfigHandler) GetDisclaimer(w http.ResponseWriter, r *http.Request) {
	text, err := h.settingsStore.Get("fridge_disclaimer")
	if err != nil {
		h.logger.Error("get disclaimer", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get disclaimer")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"disclaimer": text})
}
