package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/smallnest/formgraph/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SqliteCheckpointStore {
	t.Helper()
	s, err := NewSqliteCheckpointStore(context.Background(), SqliteOptions{
		Path: filepath.Join(t.TempDir(), "audit.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSqliteCheckpointStore_SaveLoadList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	for v := 3; v >= 1; v-- {
		cp := &store.Checkpoint{
			ID:        "cp-" + string(rune('0'+v)),
			RunID:     "run-1",
			NodeName:  "extract_info",
			State:     json.RawMessage(`{"filled":{"a":"b"}}`),
			Metadata:  map[string]any{"event": "step"},
			Timestamp: now,
			Version:   v,
		}
		require.NoError(t, s.Save(ctx, cp))
	}

	loaded, err := s.Load(ctx, "cp-2")
	require.NoError(t, err)
	assert.Equal(t, "run-1", loaded.RunID)
	assert.Equal(t, 2, loaded.Version)
	assert.Equal(t, "step", loaded.Metadata["event"])
	assert.JSONEq(t, `{"filled":{"a":"b"}}`, string(loaded.State))

	list, err := s.List(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 1, list[0].Version)
	assert.Equal(t, 3, list[2].Version)
}

func TestSqliteCheckpointStore_Upsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cp := &store.Checkpoint{ID: "cp-1", RunID: "run-1", NodeName: "analyze", State: json.RawMessage(`{}`), Timestamp: time.Now(), Version: 1}
	require.NoError(t, s.Save(ctx, cp))
	cp.NodeName = "validate"
	require.NoError(t, s.Save(ctx, cp))

	list, err := s.List(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "validate", list[0].NodeName)
}

func TestSqliteCheckpointStore_DeleteClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Load(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Save(ctx, &store.Checkpoint{ID: "cp-1", RunID: "run-1", NodeName: "a", Timestamp: time.Now(), Version: 1}))
	require.NoError(t, s.Save(ctx, &store.Checkpoint{ID: "cp-2", RunID: "run-1", NodeName: "b", Timestamp: time.Now(), Version: 2}))

	require.NoError(t, s.Delete(ctx, "cp-1"))
	assert.ErrorIs(t, s.Delete(ctx, "cp-1"), store.ErrNotFound)

	require.NoError(t, s.Clear(ctx, "run-1"))
	list, err := s.List(ctx, "run-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}
