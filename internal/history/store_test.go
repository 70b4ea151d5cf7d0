package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := store.Record(ctx, Execution{
			QueryHash:  "aabbccdd",
			Text:       "MATCH (p:Person) RETURN p",
			Latency:    time.Duration(i+1) * time.Millisecond,
			TraceID:    "trace-1",
			RecordedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	got, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Newest first.
	assert.Equal(t, 3*time.Millisecond, got[0].Latency)
	assert.Equal(t, "aabbccdd", got[0].QueryHash)
	assert.Equal(t, "MATCH (p:Person) RETURN p", got[0].Text)
	assert.Equal(t, "trace-1", got[0].TraceID)
	assert.True(t, got[0].RecordedAt.Equal(base.Add(2*time.Minute)))

	limited, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestByHash(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Record(ctx, Execution{
		QueryHash: "11111111", Text: "RETURN 1", Latency: time.Millisecond, RecordedAt: now,
	}))
	require.NoError(t, store.Record(ctx, Execution{
		QueryHash: "22222222", Text: "RETURN 2", Latency: time.Millisecond, RecordedAt: now,
	}))

	got, err := store.ByHash(ctx, "11111111", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "RETURN 1", got[0].Text)

	none, err := store.ByHash(ctx, "deadbeef", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	for _, latency := range []time.Duration{10 * time.Millisecond, 30 * time.Millisecond} {
		require.NoError(t, store.Record(ctx, Execution{
			QueryHash: "aaaa0000", Text: "MATCH (n) RETURN n", Latency: latency, RecordedAt: now,
		}))
	}
	require.NoError(t, store.Record(ctx, Execution{
		QueryHash: "bbbb0000", Text: "RETURN 1", Latency: 5 * time.Millisecond, RecordedAt: now,
	}))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	// Most executed digest first.
	assert.Equal(t, "aaaa0000", stats[0].QueryHash)
	assert.Equal(t, int64(2), stats[0].Count)
	assert.Equal(t, 20*time.Millisecond, stats[0].AvgLatency)
	assert.Equal(t, 30*time.Millisecond, stats[0].MaxLatency)

	assert.Equal(t, "bbbb0000", stats[1].QueryHash)
	assert.Equal(t, int64(1), stats[1].Count)
}

func TestStatsEmpty(t *testing.T) {
	store := openTestStore(t)
	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stats)
}
