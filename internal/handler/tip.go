package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/tipline/internal/store"
)

type TipHandler struct {
	tipStore *store.TipStore
	logger   *slog.Logger
}

func NewTipHandler(ts *store.TipStore, logger *slog.Logger) *TipHandler {
	return &TipHandler{tipStore: ts, logger: logger}
}

type createTipRequest struct {
	Category string `json:"category"`
	Tip      string `json:"tip"`
	URL      string `json:"url"`
}

// Create handles POST /api/tips. A successful insert triggers fanout
// through the store's insert hook.
func (h *TipHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Category == "" || req.Tip == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category and tip are required"})
		return
	}

	tip, err := h.tipStore.Insert(req.Category, req.Tip, req.URL)
	if err != nil {
		h.logger.Error("create tip", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save tip"})
		return
	}

	writeJSON(w, http.StatusCreated, tip)
}

// List handles GET /api/tips.
func (h *TipHandler) List(w http.ResponseWriter, r *http.Request) {
	tips, err := h.tipStore.ListAll()
	if err != nil {
		h.logger.Error("list tips", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list tips"})
		return
	}
	if tips == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, tips)
}
