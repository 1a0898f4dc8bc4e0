package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/dukerupert/ladle/internal/auth"
	"github.com/dukerupert/ladle/internal/store"
)

// SessionCookieName is the cookie carrying the session token. The auth
// handler sets it; RequireAuth reads it.
const SessionCookieName = "ladle_session"

// RequireAuth validates the session cookie and populates AuthContext.
// Clients are an API consumer, so failures are JSON 401s, never
// redirects.
func RequireAuth(sessions *store.SessionStore, accounts *store.AccountStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			sess, err := sessions.GetByToken(cookie.Value)
			if err != nil || sess == nil {
				unauthorized(w)
				return
			}

			account, err := accounts.GetByID(sess.AccountID)
			if err != nil || account == nil {
				unauthorized(w)
				return
			}

			ac := auth.AuthContext{
				AccountID: account.ID,
				SessionID: sess.ID,
			}
			if account.FamilyID != nil {
				ac.FamilyID = *account.FamilyID
			}
			if account.ProfileID != nil {
				ac.ProfileID = *account.ProfileID
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireProfile gates the second stage: authenticated requests that
// have not picked a profile get a 403 with a machine-readable code so
// the client can route to the picker.
func RequireProfile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac, ok := auth.FromContext(r.Context())
		if !ok {
			unauthorized(w)
			return
		}
		if ac.FamilyID == 0 {
			errorJSON(w, http.StatusForbidden, "provisioning", "Account setup in progress")
			return
		}
		if ac.ProfileID == 0 {
			errorJSON(w, http.StatusForbidden, "profile_required", "Select a profile first")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	errorJSON(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
}

func errorJSON(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"code": code, "error": message})
}
