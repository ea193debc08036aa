package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/smallnest/formgraph/store"
)

// MemoryCheckpointStore keeps checkpoints in process memory.
type MemoryCheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[string]*store.Checkpoint
	runs        map[string][]string
}

var _ store.CheckpointStore = (*MemoryCheckpointStore)(nil)

// NewMemoryCheckpointStore creates an empty in-memory store
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{
		checkpoints: make(map[string]*store.Checkpoint),
		runs:        make(map[string][]string),
	}
}

// Save stores a checkpoint
func (m *MemoryCheckpointStore) Save(_ context.Context, checkpoint *store.Checkpoint) error {
	if checkpoint == nil || checkpoint.ID == "" {
		return fmt.Errorf("checkpoint id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *checkpoint
	if old, ok := m.checkpoints[cp.ID]; ok {
		if old.RunID == cp.RunID {
			m.checkpoints[cp.ID] = &cp
			return nil
		}
		m.unindex(old.RunID, old.ID)
	}
	m.runs[cp.RunID] = append(m.runs[cp.RunID], cp.ID)
	m.checkpoints[cp.ID] = &cp
	return nil
}

// Load retrieves a checkpoint by ID
func (m *MemoryCheckpointStore) Load(_ context.Context, checkpointID string) (*store.Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cp, ok := m.checkpoints[checkpointID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, checkpointID)
	}
	out := *cp
	return &out, nil
}

// List returns the checkpoints of a run ordered by version
func (m *MemoryCheckpointStore) List(_ context.Context, runID string) ([]*store.Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.runs[runID]
	out := make([]*store.Checkpoint, 0, len(ids))
	for _, id := range ids {
		if cp, ok := m.checkpoints[id]; ok {
			c := *cp
			out = append(out, &c)
		}
	}
	store.SortByVersion(out)
	return out, nil
}

// Delete removes a checkpoint
func (m *MemoryCheckpointStore) Delete(_ context.Context, checkpointID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp, ok := m.checkpoints[checkpointID]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrNotFound, checkpointID)
	}
	delete(m.checkpoints, checkpointID)
	m.unindex(cp.RunID, checkpointID)
	return nil
}

// Clear removes all checkpoints of a run
func (m *MemoryCheckpointStore) Clear(_ context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.runs[runID] {
		delete(m.checkpoints, id)
	}
	delete(m.runs, runID)
	return nil
}

func (m *MemoryCheckpointStore) unindex(runID, id string) {
	ids := m.runs[runID]
	for i, v := range ids {
		if v == id {
			m.runs[runID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(m.runs[runID]) == 0 {
		delete(m.runs, runID)
	}
}
