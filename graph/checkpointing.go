package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/smallnest/formgraph/log"
	"github.com/smallnest/formgraph/store"
)

// StateEncoder turns a state into the JSON stored in a checkpoint.
type StateEncoder[S any] func(state S) ([]byte, error)

// CheckpointListener saves a checkpoint of the merged state after every step.
// The run ID comes from the invocation Config.
type CheckpointListener[S any] struct {
	store  store.CheckpointStore
	encode StateEncoder[S]
	// OnError is called when a checkpoint cannot be written. Defaults to a warning log.
	OnError func(ctx context.Context, nodeName string, err error)
}

var _ StepListener[struct{}] = (*CheckpointListener[struct{}])(nil)

// NewCheckpointListener creates a listener writing to s. A nil encoder uses json.Marshal.
func NewCheckpointListener[S any](s store.CheckpointStore, encode StateEncoder[S]) *CheckpointListener[S] {
	if encode == nil {
		encode = func(state S) ([]byte, error) { return json.Marshal(state) }
	}
	return &CheckpointListener[S]{
		store:  s,
		encode: encode,
		OnError: func(_ context.Context, nodeName string, err error) {
			log.Warn("checkpoint after %s failed: %v", nodeName, err)
		},
	}
}

// OnNodeEvent implements NodeListener; checkpoints are only taken per step.
func (cl *CheckpointListener[S]) OnNodeEvent(context.Context, NodeEvent, string, S, error) {}

// OnGraphStep is called after a step in the graph has completed and the state has been merged.
func (cl *CheckpointListener[S]) OnGraphStep(ctx context.Context, nodeName string, state S) {
	if err := cl.saveCheckpoint(ctx, nodeName, state); err != nil && cl.OnError != nil {
		cl.OnError(ctx, nodeName, err)
	}
}

func (cl *CheckpointListener[S]) saveCheckpoint(ctx context.Context, nodeName string, state S) error {
	config := GetConfig(ctx)
	if config == nil || config.RunID == "" {
		return fmt.Errorf("no run id in context")
	}

	data, err := cl.encode(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	version := 1
	if existing, err := cl.store.List(ctx, config.RunID); err == nil && len(existing) > 0 {
		version = existing[len(existing)-1].Version + 1
	}

	metadata := map[string]any{"event": "step"}
	maps.Copy(metadata, config.Metadata)
	if len(config.Tags) > 0 {
		metadata["tags"] = config.Tags
	}

	return cl.store.Save(ctx, &store.Checkpoint{
		ID:        uuid.NewString(),
		RunID:     config.RunID,
		NodeName:  nodeName,
		State:     data,
		Metadata:  metadata,
		Timestamp: time.Now(),
		Version:   version,
	})
}
