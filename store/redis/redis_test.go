package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/smallnest/formgraph/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) (*RedisCheckpointStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s := NewRedisCheckpointStore(RedisOptions{Addr: mr.Addr(), TTL: ttl})
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisCheckpointStore(t *testing.T) {
	s, _ := newTestStore(t, 0)
	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))

	cp := &store.Checkpoint{
		ID:        "cp-1",
		RunID:     "run-123",
		NodeName:  "analyze",
		State:     json.RawMessage(`{"message":"hi"}`),
		Timestamp: time.Now().UTC(),
		Version:   1,
	}
	require.NoError(t, s.Save(ctx, cp))

	loaded, err := s.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, cp.ID, loaded.ID)
	assert.Equal(t, cp.NodeName, loaded.NodeName)
	assert.JSONEq(t, `{"message":"hi"}`, string(loaded.State))

	list, err := s.List(ctx, "run-123")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, cp.ID, list[0].ID)

	require.NoError(t, s.Delete(ctx, "cp-1"))
	_, err = s.Load(ctx, "cp-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	list, err = s.List(ctx, "run-123")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRedisCheckpointStore_ListOrderAndClear(t *testing.T) {
	s, _ := newTestStore(t, 0)
	ctx := context.Background()

	for _, v := range []int{3, 1, 2} {
		cp := &store.Checkpoint{
			ID:      "cp-" + string(rune('0'+v)),
			RunID:   "run-1",
			State:   json.RawMessage(`{}`),
			Version: v,
		}
		require.NoError(t, s.Save(ctx, cp))
	}

	list, err := s.List(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 1, list[0].Version)
	assert.Equal(t, 3, list[2].Version)

	require.NoError(t, s.Clear(ctx, "run-1"))
	list, err = s.List(ctx, "run-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRedisCheckpointStore_TTL(t *testing.T) {
	s, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &store.Checkpoint{ID: "cp-1", RunID: "run-1", State: json.RawMessage(`{}`), Version: 1}))
	assert.True(t, mr.Exists("formgraph:checkpoint:cp-1"))

	mr.FastForward(2 * time.Minute)

	_, err := s.Load(ctx, "cp-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	list, err := s.List(ctx, "run-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}
