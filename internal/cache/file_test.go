package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/xtreamr/internal/storage"
)

func newTestFileStore(t *testing.T, threshold time.Duration, opts ...FileOption) (*FileStore, *storage.Sandbox) {
	t.Helper()
	sb, err := storage.NewSandbox(t.TempDir())
	require.NoError(t, err)
	return NewFileStore(sb, "Acme TV", threshold, opts...), sb
}

func TestFileStore_RoundTrip(t *testing.T) {
	store, sb := newTestFileStore(t, 0)
	ctx := context.Background()

	payload := json.RawMessage(`[{"category_id":"1","category_name":"News"}]`)
	require.True(t, store.Save(ctx, GroupsKey("Live"), payload))

	got, ok := store.Load(ctx, GroupsKey("Live"))
	require.True(t, ok)
	assert.JSONEq(t, string(payload), string(got))

	_, err := os.Stat(filepath.Join(sb.BaseDir(), "acme tv-all_groups_Live.json"))
	assert.NoError(t, err, "file name is scoped by provider slug")
}

func TestFileStore_Miss(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero bytes", ""},
		{"whitespace", "  \n"},
		{"null", "null"},
		{"empty array", "[]"},
		{"empty object", "{}"},
		{"empty string", `""`},
		{"unparsable", `[{"category_id":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, sb := newTestFileStore(t, 0)
			require.NoError(t, sb.AtomicWrite(storage.ScopedName("Acme TV", StreamsKey("VOD")), []byte(tt.content)))

			_, ok := store.Load(context.Background(), StreamsKey("VOD"))
			assert.False(t, ok)
		})
	}

	t.Run("absent", func(t *testing.T) {
		store, _ := newTestFileStore(t, 0)
		_, ok := store.Load(context.Background(), StreamsKey("Series"))
		assert.False(t, ok)
	})
}

func TestFileStore_Threshold(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	clock := func() time.Time { return now }

	t.Run("fresh file hits", func(t *testing.T) {
		store, _ := newTestFileStore(t, time.Hour, WithClock(clock))
		require.True(t, store.Save(ctx, "k.json", json.RawMessage(`[1]`)))
		_, ok := store.Load(ctx, "k.json")
		assert.True(t, ok)
	})

	t.Run("stale file misses", func(t *testing.T) {
		store, _ := newTestFileStore(t, time.Hour, WithClock(func() time.Time { return now.Add(2 * time.Hour) }))
		require.True(t, store.Save(ctx, "k.json", json.RawMessage(`[1]`)))
		_, ok := store.Load(ctx, "k.json")
		assert.False(t, ok)
	})

	t.Run("non-positive threshold never expires", func(t *testing.T) {
		store, _ := newTestFileStore(t, -1, WithClock(func() time.Time { return now.Add(24 * 365 * time.Hour) }))
		require.True(t, store.Save(ctx, "k.json", json.RawMessage(`[1]`)))
		_, ok := store.Load(ctx, "k.json")
		assert.True(t, ok)
	})
}

func TestFileStore_SaveFailureKeepsExisting(t *testing.T) {
	store, _ := newTestFileStore(t, 0)
	ctx := context.Background()

	require.True(t, store.Save(ctx, "k.json", json.RawMessage(`[1]`)))
	assert.False(t, store.Save(ctx, "k.json", json.RawMessage(`[1,`)))

	got, ok := store.Load(ctx, "k.json")
	require.True(t, ok)
	assert.Equal(t, `[1]`, string(got))
}

func TestFileStore_SaveOutsideSandbox(t *testing.T) {
	store, _ := newTestFileStore(t, 0)
	assert.False(t, store.Save(context.Background(), "../../escape.json", json.RawMessage(`[1]`)))
}

func TestRefreshing(t *testing.T) {
	store, _ := newTestFileStore(t, 0)
	ctx := context.Background()
	require.True(t, store.Save(ctx, "k.json", json.RawMessage(`[1]`)))

	r := Refreshing(store)
	_, ok := r.Load(ctx, "k.json")
	assert.False(t, ok, "refreshing store always misses")

	require.True(t, r.Save(ctx, "k.json", json.RawMessage(`[2]`)))
	got, ok := store.Load(ctx, "k.json")
	require.True(t, ok)
	assert.Equal(t, `[2]`, string(got))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "all_groups_Live.json", GroupsKey("Live"))
	assert.Equal(t, "all_stream_VOD.json", StreamsKey("VOD"))
}
