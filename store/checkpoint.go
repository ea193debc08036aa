package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"
)

// ErrNotFound is returned when a checkpoint or run has no stored record.
var ErrNotFound = errors.New("checkpoint not found")

// Checkpoint is a snapshot of a pipeline run taken after one stage finished.
type Checkpoint struct {
	ID        string          `json:"id"`
	RunID     string          `json:"run_id"`
	NodeName  string          `json:"node_name"`
	State     json.RawMessage `json:"state"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Version   int             `json:"version"`
}

// CheckpointStore defines the interface for checkpoint persistence
type CheckpointStore interface {
	// Save stores a checkpoint, replacing any checkpoint with the same ID
	Save(ctx context.Context, checkpoint *Checkpoint) error

	// Load retrieves a checkpoint by ID
	Load(ctx context.Context, checkpointID string) (*Checkpoint, error)

	// List returns all checkpoints of a run ordered by version
	List(ctx context.Context, runID string) ([]*Checkpoint, error)

	// Delete removes a checkpoint
	Delete(ctx context.Context, checkpointID string) error

	// Clear removes all checkpoints of a run
	Clear(ctx context.Context, runID string) error
}

// SortByVersion orders checkpoints by version, then by timestamp.
func SortByVersion(cps []*Checkpoint) {
	sort.SliceStable(cps, func(i, j int) bool {
		if cps[i].Version != cps[j].Version {
			return cps[i].Version < cps[j].Version
		}
		return cps[i].Timestamp.Before(cps[j].Timestamp)
	})
}
