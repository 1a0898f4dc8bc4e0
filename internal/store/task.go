package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/ladle/internal/model"
)

// maxTaskAttempts bounds retries before a provision task is parked as failed.
const maxTaskAttempts = 5

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.ProvisionTask, error) {
	var t model.ProvisionTask
	var processedAt sql.NullTime
	err := scanner.Scan(
		&t.ID, &t.AccountID, &t.Status, &t.Attempts, &t.LastError,
		&t.CreatedAt, &processedAt,
	)
	if err != nil {
		return nil, err
	}
	if processedAt.Valid {
		t.ProcessedAt = &processedAt.Time
	}
	return &t, nil
}

const taskCols = `id, account_id, status, attempts, last_error, created_at, processed_at`

// Enqueue records that accountID still needs provisioning.
func (s *TaskStore) Enqueue(accountID int64) (*model.ProvisionTask, error) {
	result, err := s.db.Exec(
		`INSERT INTO provision_tasks (account_id) VALUES (?)`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert provision task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.ProvisionTask, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM provision_tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get provision task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) ListPending(limit int) ([]model.ProvisionTask, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM provision_tasks WHERE status = ? ORDER BY created_at ASC LIMIT ?`,
		model.TaskPending, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.ProvisionTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) MarkDone(id int64) error {
	_, err := s.db.Exec(
		`UPDATE provision_tasks SET status = ?, processed_at = datetime('now') WHERE id = ?`,
		model.TaskDone, id,
	)
	if err != nil {
		return fmt.Errorf("mark task done: %w", err)
	}
	return nil
}

// MarkFailed records a failed attempt. The task stays pending until it
// has exhausted its retries, then parks as failed.
func (s *TaskStore) MarkFailed(id int64, errMsg string) error {
	_, err := s.db.Exec(
		`UPDATE provision_tasks
		 SET attempts = attempts + 1,
		     last_error = ?,
		     status = CASE WHEN attempts + 1 >= ? THEN ? ELSE ? END,
		     processed_at = datetime('now')
		 WHERE id = ?`,
		errMsg, maxTaskAttempts, model.TaskFailed, model.TaskPending, id,
	)
	if err != nil {
		return fmt.Errorf("mark task failed: %w", err)
	}
	return nil
}
