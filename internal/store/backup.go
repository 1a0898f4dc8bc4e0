package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/ladle/internal/model"
)

type BackupStore struct {
	db *sql.DB
}

func NewBackupStore(db *sql.DB) *BackupStore {
	return &BackupStore{db: db}
}

const backupCols = `id, object_key, size_bytes, status, error, created_at`

func scanBackup(scanner interface{ Scan(...any) error }) (*model.Backup, error) {
	var b model.Backup
	err := scanner.Scan(&b.ID, &b.ObjectKey, &b.SizeBytes, &b.Status, &b.Error, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *BackupStore) Create(objectKey string, sizeBytes int64, status model.BackupStatus, errMsg string) (*model.Backup, error) {
	result, err := s.db.Exec(
		`INSERT INTO backups (object_key, size_bytes, status, error) VALUES (?, ?, ?, ?)`,
		objectKey, sizeBytes, status, errMsg,
	)
	if err != nil {
		return nil, fmt.Errorf("create backup record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get backup id: %w", err)
	}
	return s.GetByID(id)
}

func (s *BackupStore) GetByID(id int64) (*model.Backup, error) {
	row := s.db.QueryRow(`SELECT `+backupCols+` FROM backups WHERE id = ?`, id)
	b, err := scanBackup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get backup: %w", err)
	}
	return b, nil
}

func (s *BackupStore) List(limit int) ([]model.Backup, error) {
	rows, err := s.db.Query(
		`SELECT `+backupCols+` FROM backups ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	var backups []model.Backup
	for rows.Next() {
		b, err := scanBackup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		backups = append(backups, *b)
	}
	return backups, rows.Err()
}

// DeleteOlderThan prunes history rows beyond the retention window and
// returns the object keys of the pruned backups so the caller can remove
// the stored objects too.
func (s *BackupStore) DeleteOlderThan(days int) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT object_key FROM backups WHERE created_at < datetime('now', ? || ' days')`, -days,
	)
	if err != nil {
		return nil, fmt.Errorf("list old backups: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan object key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := s.db.Exec(
		`DELETE FROM backups WHERE created_at < datetime('now', ? || ' days')`, -days,
	); err != nil {
		return nil, fmt.Errorf("prune backups: %w", err)
	}
	return keys, nil
}
