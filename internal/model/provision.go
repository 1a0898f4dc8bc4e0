package model

import "time"

// Provision task statuses.
const (
	TaskPending = "pending"
	TaskDone    = "done"
	TaskFailed  = "failed"
)

// ProvisionTask is a durable record that a newly registered account
// still needs its family and default profile created.
type ProvisionTask struct {
	ID          int64      `json:"id"`
	AccountID   int64      `json:"account_id"`
	Status      string     `json:"status"`
	Attempts    int        `json:"attempts"`
	LastError   string     `json:"last_error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}
