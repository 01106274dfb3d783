package session

import (
	"context"
	"sync"
	"time"
)

// TaskStatus represents the status of a load task
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// IsTerminal reports whether the task has finished.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// LoadTask is the future of one background load. It resolves exactly once.
type LoadTask struct {
	id         string
	source     string
	generation uint64
	createdAt  time.Time
	done       chan struct{}

	mu          sync.RWMutex
	status      TaskStatus
	startedAt   *time.Time
	completedAt *time.Time
	dataset     *Dataset
	err         error
}

// TaskSnapshot is a point-in-time copy of a task for reporting.
type TaskSnapshot struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Status      TaskStatus `json:"status"`
	Error       string     `json:"error,omitempty"`
	DatasetID   string     `json:"dataset_id,omitempty"`
	Rows        int        `json:"rows,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func newLoadTask(id, source string, generation uint64) *LoadTask {
	return &LoadTask{
		id:         id,
		source:     source,
		generation: generation,
		createdAt:  time.Now(),
		done:       make(chan struct{}),
		status:     TaskStatusPending,
	}
}

// ID returns the task identifier.
func (t *LoadTask) ID() string { return t.id }

// Source returns the path being loaded.
func (t *LoadTask) Source() string { return t.source }

// Done is closed once the task has completed or failed.
func (t *LoadTask) Done() <-chan struct{} { return t.done }

// Status returns the current status.
func (t *LoadTask) Status() TaskStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Wait blocks until the task resolves or ctx ends.
func (t *LoadTask) Wait(ctx context.Context) (*Dataset, error) {
	select {
	case <-t.done:
		t.mu.RLock()
		defer t.mu.RUnlock()
		return t.dataset, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Snapshot copies the task state.
func (t *LoadTask) Snapshot() TaskSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := TaskSnapshot{
		ID:          t.id,
		Source:      t.source,
		Status:      t.status,
		CreatedAt:   t.createdAt,
		StartedAt:   t.startedAt,
		CompletedAt: t.completedAt,
	}
	if t.err != nil {
		snap.Error = t.err.Error()
	}
	if t.dataset != nil {
		snap.DatasetID = t.dataset.ID
		snap.Rows = t.dataset.Table.Len()
	}
	return snap
}

func (t *LoadTask) markRunning() {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	t.status = TaskStatusRunning
	t.startedAt = &now
}

func (t *LoadTask) resolve(ds *Dataset, err error) {
	t.mu.Lock()
	now := time.Now()
	t.completedAt = &now
	t.dataset = ds
	t.err = err
	if err != nil {
		t.status = TaskStatusFailed
	} else {
		t.status = TaskStatusCompleted
	}
	t.mu.Unlock()
	close(t.done)
}
