// Package session holds the dataset currently being explored and runs
// background loads that replace it.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/dataprocessing"
	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/domain"
)

// Dataset is an immutable snapshot: a table together with its classification.
type Dataset struct {
	ID             string
	Source         string
	Name           string
	Table          *domain.Table
	Classification domain.ColumnClassification
	LoadedAt       time.Time
	Generation     uint64
}

// Loader reads a dataset file into a table.
type Loader interface {
	LoadFile(ctx context.Context, path string) (*domain.Table, error)
}

// EventType names a load lifecycle transition.
type EventType string

const (
	EventLoadStarted   EventType = "started"
	EventLoadCompleted EventType = "completed"
	EventLoadFailed    EventType = "failed"
)

// Event is delivered to listeners as a load progresses.
type Event struct {
	Type    EventType
	Task    TaskSnapshot
	Dataset *Dataset
	Err     error
}

// Listener receives load events. It is called from the load goroutine and
// must not block.
type Listener func(Event)

// Config bounds the session.
type Config struct {
	MaxConcurrentLoads int64
	MaxTasks           int
	Identifiers        []string
}

// DefaultConfig returns the default limits.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentLoads: 1,
		MaxTasks:           32,
		Identifiers:        dataprocessing.DefaultIdentifierColumns(),
	}
}

// Session owns the current Dataset. Readers always see a table and the
// classification computed from it, never a mix of two loads.
type Session struct {
	mu        sync.RWMutex
	current   *Dataset
	committed uint64

	generation atomic.Uint64
	loader     Loader
	sem        *semaphore.Weighted
	cfg        Config
	logger     *slog.Logger
	wg         sync.WaitGroup

	tasksMu sync.Mutex
	tasks   map[string]*LoadTask
	order   []string

	listenersMu sync.RWMutex
	listeners   []Listener
}

// New creates an empty session.
func New(loader Loader, cfg Config, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxConcurrentLoads <= 0 {
		cfg.MaxConcurrentLoads = 1
	}
	if cfg.MaxTasks <= 0 {
		cfg.MaxTasks = DefaultConfig().MaxTasks
	}
	return &Session{
		loader: loader,
		sem:    semaphore.NewWeighted(cfg.MaxConcurrentLoads),
		cfg:    cfg,
		logger: logger.With(slog.String("component", "session")),
		tasks:  make(map[string]*LoadTask),
	}
}

// Subscribe registers a listener for load events.
func (s *Session) Subscribe(l Listener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Current returns the loaded dataset or ErrNoDataset.
func (s *Session) Current() (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoDataset
	}
	return s.current, nil
}

// Replace classifies table and installs it as the current dataset.
func (s *Session) Replace(source string, table *domain.Table) *Dataset {
	ds, _ := s.commit(s.generation.Add(1), source, table)
	return ds
}

// Load reads path in the background and returns its future. Loads beyond
// MaxConcurrentLoads wait their turn. The current dataset only changes when a
// load succeeds and no newer load has been committed first.
func (s *Session) Load(ctx context.Context, path string) *LoadTask {
	task := newLoadTask(uuid.NewString(), path, s.generation.Add(1))
	s.register(task)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx, task)
	}()
	return task
}

func (s *Session) run(ctx context.Context, task *LoadTask) {
	logger := s.logger.With(
		slog.String("task_id", task.ID()),
		slog.String("source", task.Source()))

	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.fail(ctx, logger, task, err)
		return
	}
	defer s.sem.Release(1)

	task.markRunning()
	s.notify(Event{Type: EventLoadStarted, Task: task.Snapshot()})
	logger.InfoContext(ctx, "dataset load started")

	table, err := s.loader.LoadFile(ctx, task.Source())
	if err != nil {
		s.fail(ctx, logger, task, err)
		return
	}

	ds, err := s.commit(task.generation, task.Source(), table)
	if err != nil {
		s.fail(ctx, logger, task, err)
		return
	}

	task.resolve(ds, nil)
	logger.InfoContext(ctx, "dataset load completed",
		slog.String("dataset_id", ds.ID),
		slog.Int("rows", table.Len()))
	s.notify(Event{Type: EventLoadCompleted, Task: task.Snapshot(), Dataset: ds})
}

func (s *Session) fail(ctx context.Context, logger *slog.Logger, task *LoadTask, err error) {
	task.resolve(nil, err)
	logger.WarnContext(ctx, "dataset load failed", slog.String("error", err.Error()))
	s.notify(Event{Type: EventLoadFailed, Task: task.Snapshot(), Err: err})
}

// commit swaps in a new snapshot unless a later generation is already current.
func (s *Session) commit(gen uint64, source string, table *domain.Table) (*Dataset, error) {
	ds := &Dataset{
		ID:             uuid.NewString(),
		Source:         source,
		Name:           filepath.Base(source),
		Table:          table,
		Classification: dataprocessing.ClassifyWith(table, s.cfg.Identifiers...),
		LoadedAt:       time.Now(),
		Generation:     gen,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.committed {
		return nil, fmt.Errorf("generation %d behind %d: %w", gen, s.committed, ErrSuperseded)
	}
	s.current = ds
	s.committed = gen
	return ds, nil
}

// Task looks up a task by id.
func (s *Session) Task(id string) (*LoadTask, error) {
	s.tasksMu.Lock()
	defer s.tasksMu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// Tasks returns snapshots of the tracked tasks, oldest first.
func (s *Session) Tasks() []TaskSnapshot {
	s.tasksMu.Lock()
	defer s.tasksMu.Unlock()
	out := make([]TaskSnapshot, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tasks[id].Snapshot())
	}
	return out
}

// register tracks a task, evicting the oldest finished tasks past MaxTasks.
func (s *Session) register(task *LoadTask) {
	s.tasksMu.Lock()
	defer s.tasksMu.Unlock()

	s.tasks[task.ID()] = task
	s.order = append(s.order, task.ID())

	for i := 0; len(s.order) > s.cfg.MaxTasks && i < len(s.order); {
		id := s.order[i]
		if !s.tasks[id].Status().IsTerminal() {
			i++
			continue
		}
		delete(s.tasks, id)
		s.order = append(s.order[:i], s.order[i+1:]...)
	}
}

func (s *Session) notify(ev Event) {
	s.listenersMu.RLock()
	defer s.listenersMu.RUnlock()
	for _, l := range s.listeners {
		l(ev)
	}
}

// Stop waits for in-flight loads to finish.
func (s *Session) Stop(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		s.logger.Warn("session stop timeout exceeded")
		return fmt.Errorf("timeout waiting for dataset loads to finish")
	}
}
