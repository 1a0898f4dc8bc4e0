package provision

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/ladle/internal/store"
)

const batchSize = 25

// Worker drains the provisioning queue in the background. Besides the
// periodic sweep it can be woken immediately after an enqueue via
// Notify, so new accounts rarely wait a full interval.
type Worker struct {
	mu          sync.RWMutex
	provisioner *Provisioner
	tasks       *store.TaskStore
	interval    time.Duration
	notify      chan struct{}
	logger      *slog.Logger
	cancel      context.CancelFunc
	done        chan struct{}
}

func NewWorker(p *Provisioner, tasks *store.TaskStore, logger *slog.Logger) *Worker {
	return &Worker{
		provisioner: p,
		tasks:       tasks,
		interval:    30 * time.Second,
		notify:      make(chan struct{}, 1),
		logger:      logger.With("component", "provision"),
	}
}

// Notify wakes the worker loop. Safe to call from any goroutine; a wake
// already pending is enough, extra calls are dropped.
func (w *Worker) Notify() {
	select {
	case w.notify <- struct{}{}:
	default:
	}
}

// Start begins the worker loop.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.mu.Unlock()

	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		// Drain anything left over from before the last shutdown.
		w.drain()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.drain()
			case <-w.notify:
				w.drain()
			}
		}
	}()
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	w.mu.RLock()
	cancel := w.cancel
	done := w.done
	w.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (w *Worker) drain() {
	for {
		tasks, err := w.tasks.ListPending(batchSize)
		if err != nil {
			w.logger.Error("list pending tasks", "error", err)
			return
		}
		if len(tasks) == 0 {
			return
		}

		progressed := false
		for _, task := range tasks {
			if err := w.provisioner.Provision(task.AccountID); err != nil {
				w.logger.Error("provision account", "account_id", task.AccountID, "error", err)
				if err := w.tasks.MarkFailed(task.ID, err.Error()); err != nil {
					w.logger.Error("mark task failed", "task_id", task.ID, "error", err)
				}
				continue
			}
			if err := w.tasks.MarkDone(task.ID); err != nil {
				w.logger.Error("mark task done", "task_id", task.ID, "error", err)
				continue
			}
			progressed = true
			w.logger.Info("account provisioned", "account_id", task.AccountID)
		}

		// A batch of nothing but failures stays pending; bail instead
		// of spinning on it.
		if !progressed {
			return
		}
	}
}
