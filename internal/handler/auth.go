package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/dukerupert/ladle/internal/auth"
	"github.com/dukerupert/ladle/internal/middleware"
	"github.com/dukerupert/ladle/internal/store"
)

const minPasswordLen = 8

// Notifier wakes the provisioning worker after a task is enqueued.
// *provision.Worker satisfies this.
type Notifier interface {
	Notify()
}

type AuthHandler struct {
	accounts  *store.AccountStore
	sessions  *store.SessionStore
	tasks     *store.TaskStore
	notifier  Notifier
	sanitizer *auth.Sanitizer
	logger    *slog.Logger
}

func NewAuthHandler(
	as *store.AccountStore,
	ss *store.SessionStore,
	ts *store.TaskStore,
	n Notifier,
	sanitizer *auth.Sanitizer,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		accounts:  as,
		sessions:  ss,
		tasks:     ts,
		notifier:  n,
		sanitizer: sanitizer,
		logger:    logger,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(req.Password) < minPasswordLen {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	existing, err := h.accounts.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("register lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusBadRequest, h.sanitizer.Sanitize(auth.ErrEmailExists, auth.ContextSignup))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	account, err := h.accounts.Create(req.Email, hash, req.Name)
	if err != nil {
		// A concurrent registration can still trip the unique index.
		writeError(w, http.StatusBadRequest, h.sanitizer.Sanitize(err, auth.ContextSignup))
		return
	}

	// Family and profile setup happens in the background; the account is
	// usable for login immediately.
	if _, err := h.tasks.Enqueue(account.ID); err != nil {
		h.logger.Error("enqueue provision task", "account_id", account.ID, "error", err)
	} else if h.notifier != nil {
		h.notifier.Notify()
	}

	sess, err := h.sessions.Create(account.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	setSessionCookie(w, r, sess.Token)

	writeJSON(w, http.StatusCreated, account)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	account, err := h.accounts.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if account == nil {
		writeError(w, http.StatusUnauthorized, h.sanitizer.Sanitize(auth.ErrAccountNotFound, auth.ContextLogin))
		return
	}
	if !auth.VerifyPassword(account.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, h.sanitizer.Sanitize(auth.ErrIncorrectPassword, auth.ContextLogin))
		return
	}

	sess, err := h.sessions.Create(account.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	setSessionCookie(w, r, sess.Token)

	writeJSON(w, http.StatusOK, account)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if ac, ok := auth.FromContext(r.Context()); ok {
		if err := h.sessions.Delete(ac.SessionID); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   90 * 24 * 60 * 60, // matches the session TTL
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
