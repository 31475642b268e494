package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/tipline/internal/intent"
)

type WebhookHandler struct {
	router *intent.Router
	logger *slog.Logger
}

func NewWebhookHandler(router *intent.Router, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{router: router, logger: logger}
}

// Handle handles POST /webhook: one intent invocation in, one reply
// descriptor out. Handler faults never surface as HTTP errors; the
// router answers with an apology utterance so the platform always has
// something to say.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req intent.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Intent == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "intent is required"})
		return
	}

	resp := h.router.Dispatch(r.Context(), &req)
	writeJSON(w, http.StatusOK, resp)
}
