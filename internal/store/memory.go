package store

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/JonMunkholm/sheetcheck/internal/core"
)

// DefaultMemoryCapacity is the number of runs Memory keeps by default.
const DefaultMemoryCapacity = 100

// Memory is a bounded in-process RunStore. When full, saving a run evicts the
// oldest one.
type Memory struct {
	mu       sync.RWMutex
	capacity int
	runs     map[uuid.UUID]core.Run
	order    []uuid.UUID // oldest first
}

// NewMemory creates a Memory store holding up to capacity runs.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &Memory{
		capacity: capacity,
		runs:     make(map[uuid.UUID]core.Run, capacity),
	}
}

// SaveRun records run, evicting the oldest run once capacity is exceeded.
func (m *Memory) SaveRun(ctx context.Context, run core.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	run.Report.Errors = slices.Clone(run.Report.Errors)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.runs[run.ID]; !exists {
		m.order = append(m.order, run.ID)
	}
	m.runs[run.ID] = run

	for len(m.order) > m.capacity {
		delete(m.runs, m.order[0])
		m.order = m.order[1:]
	}
	return nil
}

// GetRun returns the run with id, or ErrRunNotFound if it was never saved
// or has been evicted.
func (m *Memory) GetRun(ctx context.Context, id uuid.UUID) (core.Run, error) {
	if err := ctx.Err(); err != nil {
		return core.Run{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[id]
	if !ok {
		return core.Run{}, ErrRunNotFound
	}
	run.Report.Errors = slices.Clone(run.Report.Errors)
	return run, nil
}

// ListRuns returns up to limit runs, newest first.
func (m *Memory) ListRuns(ctx context.Context, limit int) ([]core.RunSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = normalizeLimit(limit)

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.RunSummary, 0, min(limit, len(m.order)))
	for i := len(m.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[m.order[i]].Summary())
	}
	return out, nil
}

// Len returns the number of stored runs.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}
