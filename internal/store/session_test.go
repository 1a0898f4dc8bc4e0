package store

import (
	"database/sql"
	"testing"

	"github.com/dukerupert/ladle/internal/database"
)

func setupSessionTestDB(t *testing.T) (*SessionStore, *AccountStore, *sql.DB) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSessionStore(db), NewAccountStore(db), db
}

func TestSessionCreateAndGetByToken(t *testing.T) {
	ss, as, _ := setupSessionTestDB(t)

	account, err := as.Create("alice@example.com", "hash", "Alice")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	sess, err := ss.Create(account.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(sess.Token))
	}
	if sess.AccountID != account.ID {
		t.Errorf("account_id = %d, want %d", sess.AccountID, account.ID)
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got == nil {
		t.Fatal("expected session for valid token")
	}
	if got.ID != sess.ID {
		t.Errorf("id = %d, want %d", got.ID, sess.ID)
	}
}

func TestSessionGetByTokenNotFound(t *testing.T) {
	ss, _, _ := setupSessionTestDB(t)

	got, err := ss.GetByToken("no-such-token")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got != nil {
		t.Error("expected nil for unknown token")
	}
}

func TestSessionExpiredNotReturned(t *testing.T) {
	ss, as, db := setupSessionTestDB(t)

	account, _ := as.Create("alice@example.com", "hash", "Alice")
	sess, _ := ss.Create(account.ID)

	if _, err := db.Exec(
		`UPDATE sessions SET expires_at = datetime('now', '-1 hour') WHERE id = ?`, sess.ID,
	); err != nil {
		t.Fatalf("expire session: %v", err)
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got != nil {
		t.Error("expected nil for expired session")
	}
}

func TestSessionDelete(t *testing.T) {
	ss, as, _ := setupSessionTestDB(t)

	account, _ := as.Create("alice@example.com", "hash", "Alice")
	sess, _ := ss.Create(account.ID)

	if err := ss.Delete(sess.ID); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	got, _ := ss.GetByToken(sess.Token)
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestSessionDeleteExpired(t *testing.T) {
	ss, as, db := setupSessionTestDB(t)

	account, _ := as.Create("alice@example.com", "hash", "Alice")
	live, _ := ss.Create(account.ID)
	stale, _ := ss.Create(account.ID)

	db.Exec(`UPDATE sessions SET expires_at = datetime('now', '-1 day') WHERE id = ?`, stale.ID)

	count, err := ss.DeleteExpired()
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if count != 1 {
		t.Errorf("deleted = %d, want 1", count)
	}

	got, _ := ss.GetByToken(live.Token)
	if got == nil {
		t.Error("live session should survive cleanup")
	}
}

func TestSessionDeleteByAccountID(t *testing.T) {
	ss, as, _ := setupSessionTestDB(t)

	alice, _ := as.Create("alice@example.com", "hash", "Alice")
	bob, _ := as.Create("bob@example.com", "hash", "Bob")

	aliceSess, _ := ss.Create(alice.ID)
	ss.Create(alice.ID)
	bobSess, _ := ss.Create(bob.ID)

	if err := ss.DeleteByAccountID(alice.ID); err != nil {
		t.Fatalf("delete by account: %v", err)
	}

	if got, _ := ss.GetByToken(aliceSess.Token); got != nil {
		t.Error("alice's sessions should all be gone")
	}
	if got, _ := ss.GetByToken(bobSess.Token); got == nil {
		t.Error("bob's session should be untouched")
	}
}

func TestSessionTokensUnique(t *testing.T) {
	ss, as, _ := setupSessionTestDB(t)

	account, _ := as.Create("alice@example.com", "hash", "Alice")

	a, _ := ss.Create(account.ID)
	b, _ := ss.Create(account.ID)
	if a.Token == b.Token {
		t.Error("two sessions share a token")
	}
}
