package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/ladle/internal/auth"
	"github.com/dukerupert/ladle/internal/model"
	"github.com/dukerupert/ladle/internal/store"
)

type AccountHandler struct {
	accounts *store.AccountStore
	profiles *store.ProfileStore
	logger   *slog.Logger
}

func NewAccountHandler(as *store.AccountStore, ps *store.ProfileStore, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accounts: as, profiles: ps, logger: logger}
}

type meResponse struct {
	Account *model.Account `json:"account"`
	Profile *model.Profile `json:"profile"`
	// Provisioned is false while the background family setup is pending.
	Provisioned bool `json:"provisioned"`
}

// Me handles GET /api/me
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.GetByID(auth.AccountID(r.Context()))
	if err != nil {
		h.logger.Error("get account", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load account")
		return
	}
	if account == nil {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}

	resp := meResponse{Account: account, Provisioned: account.FamilyID != nil}
	if account.ProfileID != nil {
		profile, err := h.profiles.GetByID(*account.ProfileID)
		if err != nil {
			h.logger.Error("get selected profile", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load profile")
			return
		}
		resp.Profile = profile
	}

	writeJSON(w, http.StatusOK, resp)
}
