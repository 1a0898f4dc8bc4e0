package backup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dukerupert/ladle/internal/model"
	"github.com/dukerupert/ladle/internal/store"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds backup manager configuration.
type Config struct {
	S3            S3Config
	DBPath        string
	Passphrase    string
	Hour          int // local hour for the nightly run
	RetentionDays int
}

// Manager snapshots the database nightly, encrypts the snapshot, and
// uploads it to S3-compatible storage. Disabled when S3 credentials or
// the passphrase are missing.
type Manager struct {
	mu      sync.Mutex
	cfg     Config
	db      *sql.DB
	backups *store.BackupStore
	client  s3Client
	logger  *slog.Logger

	lastRun string // date of the last nightly run, YYYY-MM-DD

	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(cfg Config, db *sql.DB, backups *store.BackupStore, logger *slog.Logger) *Manager {
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 30
	}
	m := &Manager{
		cfg:     cfg,
		db:      db,
		backups: backups,
		logger:  logger.With("component", "backup"),
	}
	if cfg.S3.Bucket != "" && cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" && cfg.Passphrase != "" {
		m.client = newS3Client(cfg.S3)
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Configured reports whether the manager can actually run backups.
func (m *Manager) Configured() bool {
	return m.client != nil
}

// Start begins the nightly backup loop.
func (m *Manager) Start(ctx context.Context) {
	if !m.Configured() {
		m.logger.Info("backups disabled, missing S3 credentials or passphrase")
		return
	}

	m.mu.Lock()
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.tick(ctx, time.Now())
			}
		}
	}()
}

// Stop gracefully stops the backup loop.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (m *Manager) tick(ctx context.Context, now time.Time) {
	if now.Hour() != m.cfg.Hour {
		return
	}

	today := now.Format("2006-01-02")
	m.mu.Lock()
	ran := m.lastRun == today
	if !ran {
		m.lastRun = today
	}
	m.mu.Unlock()
	if ran {
		return
	}

	if _, err := m.RunOnce(ctx); err != nil {
		m.logger.Error("nightly backup failed", "error", err)
	}
	if err := m.Cleanup(ctx); err != nil {
		m.logger.Error("backup cleanup failed", "error", err)
	}
}

// RunOnce takes a snapshot, encrypts it, and uploads it. A history row is
// recorded whether the run succeeds or fails.
func (m *Manager) RunOnce(ctx context.Context) (*model.Backup, error) {
	if !m.Configured() {
		return nil, fmt.Errorf("backup not configured")
	}

	key := fmt.Sprintf("backups/ladle-%s.db.enc", time.Now().UTC().Format("20060102-150405"))

	record, err := m.runBackup(ctx, key)
	if err != nil {
		if rec, rerr := m.backups.Create(key, 0, model.BackupStatusFailed, err.Error()); rerr == nil {
			record = rec
		}
		return record, err
	}

	m.logger.Info("backup uploaded", "key", key, "size_bytes", record.SizeBytes)
	return record, nil
}

func (m *Manager) runBackup(ctx context.Context, key string) (*model.Backup, error) {
	tmpDir := os.TempDir()
	snapshot := filepath.Join(tmpDir, fmt.Sprintf("ladle-snapshot-%d.db", time.Now().UnixNano()))
	encrypted := snapshot + ".enc"
	defer os.Remove(snapshot)
	defer os.Remove(encrypted)

	// VACUUM INTO writes a consistent copy without blocking writers for
	// the whole duration.
	if _, err := m.db.ExecContext(ctx, `VACUUM INTO ?`, snapshot); err != nil {
		return nil, fmt.Errorf("snapshot database: %w", err)
	}

	if err := EncryptFile(snapshot, encrypted, m.cfg.Passphrase); err != nil {
		return nil, fmt.Errorf("encrypt snapshot: %w", err)
	}

	f, err := os.Open(encrypted)
	if err != nil {
		return nil, fmt.Errorf("open encrypted snapshot: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat encrypted snapshot: %w", err)
	}

	if _, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.cfg.S3.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(stat.Size()),
	}); err != nil {
		return nil, fmt.Errorf("upload to s3: %w", err)
	}

	record, err := m.backups.Create(key, stat.Size(), model.BackupStatusCompleted, "")
	if err != nil {
		return nil, fmt.Errorf("record backup: %w", err)
	}
	return record, nil
}

// Cleanup prunes history rows and stored objects beyond the retention window.
func (m *Manager) Cleanup(ctx context.Context) error {
	if !m.Configured() {
		return nil
	}

	keys, err := m.backups.DeleteOlderThan(m.cfg.RetentionDays)
	if err != nil {
		return fmt.Errorf("prune backup history: %w", err)
	}

	for _, key := range keys {
		if _, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(m.cfg.S3.Bucket),
			Key:    aws.String(key),
		}); err != nil {
			m.logger.Warn("failed to delete stored backup", "key", key, "error", err)
		}
	}
	return nil
}
