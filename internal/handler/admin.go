package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/tipline/internal/backup"
	"github.com/dukerupert/tipline/internal/feed"
	"github.com/dukerupert/tipline/internal/seed"
	"github.com/dukerupert/tipline/internal/store"
)

type AdminHandler struct {
	tipStore     *store.TipStore
	consentStore *store.ConsentStore
	loader       *seed.Loader
	backups      *backup.Manager // nil when backups are not configured
	hub          *feed.Hub
	logger       *slog.Logger
}

func NewAdminHandler(ts *store.TipStore, cs *store.ConsentStore, loader *seed.Loader, backups *backup.Manager, hub *feed.Hub, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		tipStore:     ts,
		consentStore: cs,
		loader:       loader,
		backups:      backups,
		hub:          hub,
		logger:       logger,
	}
}

// Reset handles POST /admin/reset: fetch the fixed external tip list,
// then replace every stored tip with it in one transaction. The bulk
// write bypasses insert hooks, so a reseed does not trigger fanout.
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	tips, err := h.loader.Fetch(r.Context())
	if err != nil {
		h.logger.Error("fetch seed list", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to fetch seed list"})
		return
	}

	if err := h.tipStore.ReplaceAll(tips); err != nil {
		h.logger.Error("replace tips", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to reseed tips"})
		return
	}

	h.logger.Info("tips reseeded", "count", len(tips))
	h.hub.Publish(feed.KindTipsReseeded, map[string]any{"count": len(tips)})
	writeJSON(w, http.StatusOK, map[string]int{"seeded": len(tips)})
}

// Backup handles POST /admin/backup: encrypted database snapshot to S3.
func (h *AdminHandler) Backup(w http.ResponseWriter, r *http.Request) {
	if h.backups == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "backups not configured"})
		return
	}

	key, err := h.backups.RunNow(r.Context())
	if err != nil {
		h.logger.Error("backup", "error", err)
		h.hub.Publish(feed.KindBackupFailed, map[string]any{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "backup failed"})
		return
	}

	h.hub.Publish(feed.KindBackupCompleted, map[string]any{"key": key})
	writeJSON(w, http.StatusOK, map[string]string{"key": key})
}

// DeleteConsent handles DELETE /admin/consents/{id}. The only way a
// consent record leaves the store.
func (h *AdminHandler) DeleteConsent(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.consentStore.Delete(id); err != nil {
		h.logger.Error("delete consent", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete consent"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
