package run

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Store persists finished runs. Get returns nil, nil when id is unknown.
type Store interface {
	Save(ctx context.Context, run *Run) error
	Get(ctx context.Context, id int) (*Run, error)
	List(ctx context.Context) ([]RunSummary, error)
}

// MemoryStore keeps runs in process memory. It backs the server when no
// database is configured, and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	runs   map[int]*Run
	nextID int
	logger *slog.Logger
}

func NewMemoryStore(logger *slog.Logger) *MemoryStore {
	logger.Debug("Initializing in-memory run store")

	return &MemoryStore{
		runs:   make(map[int]*Run),
		nextID: 1,
		logger: logger,
	}
}

func (s *MemoryStore) Save(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run.ID = s.nextID
	run.CreatedAt = time.Now().UTC()
	s.nextID++

	stored := *run
	s.runs[run.ID] = &stored

	s.logger.Debug("Run stored in memory", "component", "memory_store", "run_id", run.ID)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id int) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, nil
	}
	found := *run
	return &found, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]RunSummary, 0, len(s.runs))
	for _, run := range s.runs {
		summaries = append(summaries, run.Summarize())
	}
	// Newest first, as the database store orders them.
	slices.SortFunc(summaries, func(a, b RunSummary) int { return b.ID - a.ID })
	return summaries, nil
}
