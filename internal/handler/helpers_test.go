package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/ladle/internal/auth"
	"github.com/dukerupert/ladle/internal/database"
	"github.com/dukerupert/ladle/internal/provision"
	"github.com/dukerupert/ladle/internal/store"
	"github.com/dukerupert/ladle/internal/websocket"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testHub() *websocket.Hub {
	return websocket.NewHub(testLogger())
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	return db
}

// provisionedAccount registers an account and runs the provisioner on it,
// returning the refreshed account with family and profile populated.
func provisionedAccount(t *testing.T, db *sql.DB, email, name string) (accountID, familyID, profileID int64) {
	t.Helper()
	accounts := store.NewAccountStore(db)

	account, err := accounts.Create(email, "hash", name)
	if err != nil {
		t.Fatalf("failed to create account: %v", err)
	}
	if err := provision.NewProvisioner(db).Provision(account.ID); err != nil {
		t.Fatalf("failed to provision account: %v", err)
	}

	account, err = accounts.GetByID(account.ID)
	if err != nil || account == nil {
		t.Fatalf("failed to reload account: %v", err)
	}
	return account.ID, *account.FamilyID, *account.ProfileID
}

// authedRequest builds a request carrying a resolved AuthContext, the way
// the middleware would after session validation.
func authedRequest(method, target string, body any, ac auth.AuthContext) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(auth.WithAuth(req.Context(), ac))
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}
