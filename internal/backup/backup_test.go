package backup

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dukerupert/ladle/internal/database"
	"github.com/dukerupert/ladle/internal/model"
	"github.com/dukerupert/ladle/internal/store"
)

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	delErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.delErr != nil {
		return nil, m.delErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (m *mockS3Client) object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupBackupTest(t *testing.T) (*Manager, *mockS3Client, *store.BackupStore, *sql.DB) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "ladle.db")
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	backups := store.NewBackupStore(db)
	m := NewManager(Config{
		S3:            S3Config{Bucket: "test-bucket", Region: "auto", AccessKey: "key", SecretKey: "secret"},
		DBPath:        dbPath,
		Passphrase:    "test-passphrase",
		Hour:          3,
		RetentionDays: 30,
	}, db, backups, testLogger())

	mock := newMockS3()
	m.client = mock
	return m, mock, backups, db
}

func TestRunOnceUploadsEncryptedSnapshot(t *testing.T) {
	m, mock, _, _ := setupBackupTest(t)

	record, err := m.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if record.Status != model.BackupStatusCompleted {
		t.Errorf("Status = %q, want %q", record.Status, model.BackupStatusCompleted)
	}
	if !strings.HasPrefix(record.ObjectKey, "backups/ladle-") {
		t.Errorf("ObjectKey = %q, want backups/ladle- prefix", record.ObjectKey)
	}
	if record.SizeBytes == 0 {
		t.Error("SizeBytes = 0, want > 0")
	}

	data, ok := mock.object(record.ObjectKey)
	if !ok {
		t.Fatalf("object %q not uploaded", record.ObjectKey)
	}
	if int64(len(data)) != record.SizeBytes {
		t.Errorf("uploaded %d bytes, record says %d", len(data), record.SizeBytes)
	}

	// A SQLite file starts with this magic string; the upload must not.
	if bytes.HasPrefix(data, []byte("SQLite format 3")) {
		t.Error("uploaded object is an unencrypted database")
	}
	plain, err := Decrypt(data, "test-passphrase")
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.HasPrefix(plain, []byte("SQLite format 3")) {
		t.Error("decrypted snapshot is not a SQLite database")
	}
}

func TestRunOnceRecordsFailure(t *testing.T) {
	m, mock, backups, _ := setupBackupTest(t)
	mock.putErr = errors.New("bucket unavailable")

	record, err := m.RunOnce(context.Background())
	if err == nil {
		t.Fatal("expected error when upload fails")
	}
	if record == nil {
		t.Fatal("expected a failure record")
	}
	if record.Status != model.BackupStatusFailed {
		t.Errorf("Status = %q, want %q", record.Status, model.BackupStatusFailed)
	}
	if !strings.Contains(record.Error, "bucket unavailable") {
		t.Errorf("Error = %q, want upload failure message", record.Error)
	}

	history, err := backups.List(10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("len(history) = %d, want 1", len(history))
	}
}

func TestRunOnceUnconfigured(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ladle.db")
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m := NewManager(Config{DBPath: dbPath}, db, store.NewBackupStore(db), testLogger())
	if m.Configured() {
		t.Error("Configured() = true without S3 credentials")
	}
	if _, err := m.RunOnce(context.Background()); err == nil {
		t.Error("expected error from unconfigured RunOnce")
	}

	// Start is a no-op when disabled and Stop must not block.
	m.Start(context.Background())
	m.Stop()
}

func TestCleanupPrunesOldBackups(t *testing.T) {
	m, mock, backups, db := setupBackupTest(t)

	old, err := backups.Create("backups/ladle-old.db.enc", 42, model.BackupStatusCompleted, "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := db.Exec(`UPDATE backups SET created_at = datetime('now', '-60 days') WHERE id = ?`, old.ID); err != nil {
		t.Fatalf("backdate record: %v", err)
	}
	mock.objects[old.ObjectKey] = []byte("stale")

	recent, err := backups.Create("backups/ladle-recent.db.enc", 42, model.BackupStatusCompleted, "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	mock.objects[recent.ObjectKey] = []byte("fresh")

	if err := m.Cleanup(context.Background()); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}

	if _, ok := mock.object(old.ObjectKey); ok {
		t.Error("stale object was not deleted")
	}
	if _, ok := mock.object(recent.ObjectKey); !ok {
		t.Error("recent object was deleted")
	}

	history, err := backups.List(10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(history) != 1 || history[0].ID != recent.ID {
		t.Errorf("history = %+v, want only the recent record", history)
	}
}

func TestTickHourGateAndDailyDedup(t *testing.T) {
	m, _, backups, _ := setupBackupTest(t)
	ctx := context.Background()

	wrongHour := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	m.tick(ctx, wrongHour)

	history, err := backups.List(10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("backup ran outside the configured hour")
	}

	nightly := time.Date(2026, 8, 28, 3, 5, 0, 0, time.UTC)
	m.tick(ctx, nightly)
	m.tick(ctx, nightly.Add(10*time.Minute))

	history, err = backups.List(10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(history) != 1 {
		t.Errorf("len(history) = %d, want 1 run per day", len(history))
	}
}

func TestStartStopSafety(t *testing.T) {
	m, _, _, _ := setupBackupTest(t)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()
	m.Stop()

	// Double stop should not panic.
	m.Stop()
}
