package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/classroom-sim/pkg/runlog"
)

// MockStorage is an in-memory Store for tests and the "none" backend.
type MockStorage struct {
	mu         sync.RWMutex
	summaries  map[uuid.UUID]*runlog.Summary
	byScenario map[string][]uuid.UUID
	saveError  error
	pingError  error
}

// Ensure MockStorage implements Store interface
var _ Store = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		summaries:  make(map[uuid.UUID]*runlog.Summary),
		byScenario: make(map[string][]uuid.UUID),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail on save with the given error
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// Save keeps a copy of the summary in memory
func (m *MockStorage) Save(ctx context.Context, summary *runlog.Summary) error {
	if summary == nil {
		return errors.New("summary cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}

	cp := *summary
	cp.Selections = append([]runlog.Selection(nil), summary.Selections...)
	if summary.Score != nil {
		cp.Score = summary.Score.Clone()
	}
	if _, exists := m.summaries[summary.RunID]; !exists {
		m.byScenario[summary.ScenarioID] = append(m.byScenario[summary.ScenarioID], summary.RunID)
	}
	m.summaries[summary.RunID] = &cp
	return nil
}

// Load returns a saved summary, nil if not found
func (m *MockStorage) Load(ctx context.Context, runID uuid.UUID) (*runlog.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, exists := m.summaries[runID]
	if !exists {
		return nil, nil
	}
	return s, nil
}

// List returns run IDs saved for a scenario in save order
func (m *MockStorage) List(ctx context.Context, scenarioID string) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]uuid.UUID, len(m.byScenario[scenarioID]))
	copy(out, m.byScenario[scenarioID])
	return out, nil
}

// Count returns the number of saved summaries
func (m *MockStorage) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.summaries)
}
