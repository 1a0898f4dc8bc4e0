package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"

	"github.com/dukerupert/ladle/internal/auth"
	"github.com/dukerupert/ladle/internal/model"
	"github.com/dukerupert/ladle/internal/store"
	"github.com/dukerupert/ladle/internal/websocket"
)

type ProfileHandler struct {
	profiles *store.ProfileStore
	accounts *store.AccountStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewProfileHandler(ps *store.ProfileStore, as *store.AccountStore, hub *websocket.Hub, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: ps, accounts: as, hub: hub, logger: logger}
}

// List handles GET /api/profiles
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.ListByFamily(auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("list profiles", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list profiles")
		return
	}
	if profiles == nil {
		profiles = []model.Profile{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"profiles":    profiles,
		"selected_id": auth.ProfileID(r.Context()),
	})
}

type profileRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func validateProfileName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "name is required"
	}
	if len(name) > model.MaxProfileNameLen {
		return "", "name must be 50 characters or fewer"
	}
	return name, ""
}

// Create handles POST /api/profiles
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())
	if familyID == 0 {
		// Provisioning has not assigned a family yet.
		writeError(w, http.StatusForbidden, "account setup is still in progress")
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var name string
	if req.Name != nil {
		name = *req.Name
	}
	name, msg := validateProfileName(name)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	color := model.AvatarColors[rand.Intn(len(model.AvatarColors))]
	if req.Color != nil && *req.Color != "" {
		if !model.ValidAvatarColor(*req.Color) {
			writeError(w, http.StatusBadRequest, "color must be one of the avatar palette")
			return
		}
		color = *req.Color
	}

	profile, err := h.profiles.Create(familyID, name, color)
	if err != nil {
		h.logger.Error("create profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create profile")
		return
	}

	h.hub.Broadcast(profile.FamilyID, websocket.NewMessage("profile", "created", profile.ID, nil))
	writeJSON(w, http.StatusCreated, profile)
}

// Update handles PUT /api/profiles/{id}
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.familyProfile(w, r)
	if !ok {
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	// Nothing to change; leave updated_at alone.
	if req.Name == nil && req.Color == nil {
		writeJSON(w, http.StatusOK, profile)
		return
	}

	name := profile.Name
	if req.Name != nil {
		var msg string
		name, msg = validateProfileName(*req.Name)
		if msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
	}

	color := profile.Color
	if req.Color != nil {
		if !model.ValidAvatarColor(*req.Color) {
			writeError(w, http.StatusBadRequest, "color must be one of the avatar palette")
			return
		}
		color = *req.Color
	}

	updated, err := h.profiles.Update(profile.ID, name, color)
	if err != nil {
		h.logger.Error("update profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	h.hub.Broadcast(updated.FamilyID, websocket.NewMessage("profile", "updated", updated.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/profiles/{id}
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.familyProfile(w, r)
	if !ok {
		return
	}

	familyID := auth.FamilyID(r.Context())
	err := h.profiles.DeleteWithReassign(profile.ID, familyID, auth.AccountID(r.Context()))
	if errors.Is(err, store.ErrLastProfile) {
		writeError(w, http.StatusBadRequest, "a family must keep at least one profile")
		return
	}
	if err != nil {
		h.logger.Error("delete profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete profile")
		return
	}

	h.hub.Broadcast(familyID, websocket.NewMessage("profile", "deleted", profile.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Select handles POST /api/profiles/{id}/select
func (h *ProfileHandler) Select(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.familyProfile(w, r)
	if !ok {
		return
	}

	if err := h.accounts.SetProfile(auth.AccountID(r.Context()), profile.ID); err != nil {
		h.logger.Error("select profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to select profile")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// ClearSelection handles DELETE /api/profiles/selection
func (h *ProfileHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.ClearProfile(auth.AccountID(r.Context())); err != nil {
		h.logger.Error("clear profile selection", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear selection")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// familyProfile resolves the {id} path param to a profile in the caller's
// family. A profile in another family gets the same 404 as a missing one.
func (h *ProfileHandler) familyProfile(w http.ResponseWriter, r *http.Request) (*model.Profile, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	profile, err := h.profiles.GetByID(id)
	if err != nil {
		h.logger.Error("get profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get profile")
		return nil, false
	}
	if profile == nil || profile.FamilyID != auth.FamilyID(r.Context()) {
		writeError(w, http.StatusNotFound, "profile not found in your family")
		return nil, false
	}
	return profile, true
}
