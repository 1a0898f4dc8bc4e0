package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/ladle/internal/backup"
	"github.com/dukerupert/ladle/internal/model"
	"github.com/dukerupert/ladle/internal/store"
)

type BackupHandler struct {
	manager *backup.Manager
	backups *store.BackupStore
	logger  *slog.Logger
}

func NewBackupHandler(m *backup.Manager, bs *store.BackupStore, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: m, backups: bs, logger: logger}
}

// Trigger handles POST /api/backups
func (h *BackupHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if !h.manager.Configured() {
		writeError(w, http.StatusConflict, "backups are not configured")
		return
	}

	record, err := h.manager.RunOnce(r.Context())
	if err != nil {
		h.logger.Error("manual backup", "error", err)
		writeError(w, http.StatusInternalServerError, "backup failed")
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// List handles GET /api/backups
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	history, err := h.backups.List(50)
	if err != nil {
		h.logger.Error("list backups", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list backups")
		return
	}
	if history == nil {
		history = []model.Backup{}
	}
	writeJSON(w, http.StatusOK, history)
}
