package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/smallnest/formgraph/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkpoint(id, runID string, version int) *store.Checkpoint {
	return &store.Checkpoint{
		ID:        id,
		RunID:     runID,
		NodeName:  "validate",
		State:     json.RawMessage(`{"stage":"validate"}`),
		Timestamp: time.Now(),
		Version:   version,
	}
}

func TestMemoryCheckpointStore_SaveLoad(t *testing.T) {
	ms := NewMemoryCheckpointStore()
	ctx := context.Background()

	require.NoError(t, ms.Save(ctx, checkpoint("cp-1", "run-1", 1)))

	loaded, err := ms.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", loaded.RunID)
	assert.JSONEq(t, `{"stage":"validate"}`, string(loaded.State))

	_, err = ms.Load(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemoryCheckpointStore_ListOrdersByVersion(t *testing.T) {
	ms := NewMemoryCheckpointStore()
	ctx := context.Background()

	require.NoError(t, ms.Save(ctx, checkpoint("cp-3", "run-1", 3)))
	require.NoError(t, ms.Save(ctx, checkpoint("cp-1", "run-1", 1)))
	require.NoError(t, ms.Save(ctx, checkpoint("cp-2", "run-1", 2)))
	require.NoError(t, ms.Save(ctx, checkpoint("other", "run-2", 1)))

	list, err := ms.List(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"cp-1", "cp-2", "cp-3"}, []string{list[0].ID, list[1].ID, list[2].ID})

	empty, err := ms.List(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryCheckpointStore_SaveTwiceDoesNotDuplicate(t *testing.T) {
	ms := NewMemoryCheckpointStore()
	ctx := context.Background()

	require.NoError(t, ms.Save(ctx, checkpoint("cp-1", "run-1", 1)))
	require.NoError(t, ms.Save(ctx, checkpoint("cp-1", "run-1", 1)))

	list, err := ms.List(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMemoryCheckpointStore_DeleteAndClear(t *testing.T) {
	ms := NewMemoryCheckpointStore()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, ms.Save(ctx, checkpoint(fmt.Sprintf("cp-%d", i), "run-1", i)))
	}

	require.NoError(t, ms.Delete(ctx, "cp-2"))
	list, _ := ms.List(ctx, "run-1")
	assert.Len(t, list, 2)
	assert.ErrorIs(t, ms.Delete(ctx, "cp-2"), store.ErrNotFound)

	require.NoError(t, ms.Clear(ctx, "run-1"))
	list, _ = ms.List(ctx, "run-1")
	assert.Empty(t, list)
	_, err := ms.Load(ctx, "cp-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemoryCheckpointStore_ThreadSafety(t *testing.T) {
	ms := NewMemoryCheckpointStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = ms.Save(ctx, checkpoint(fmt.Sprintf("cp-%d", i), "run-1", i))
			_, _ = ms.List(ctx, "run-1")
		}(i)
	}
	wg.Wait()

	list, err := ms.List(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, list, 50)
}
