package persist

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innerlevel/internal/player"
)

func sampleState(userID string) player.State {
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	s := player.New(userID, "sage", 100, 10, now)
	s.Experience = 250
	return player.Normalize(s)
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	st, err := NewFileStore(dir)
	require.NoError(t, err)

	_, ok, err := st.Load(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	want := sampleState("u1")
	require.NoError(t, st.Save(ctx, "u1", want))

	// Re-open from disk.
	st2, err := NewFileStore(dir)
	require.NoError(t, err)
	got, ok, err := st2.Load(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Experience, got.Experience)
	assert.Equal(t, want.Level, got.Level)
}

func TestFileStore_CorruptFileIsInvalidSnapshot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "snapshots.json"), []byte("{not json"), 0o644))

	_, err := NewFileStore(dir)
	require.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestSQLiteStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	st, err := OpenSQLite(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	defer st.Close()

	_, ok, err := st.Load(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	want := sampleState("u1")
	require.NoError(t, st.Save(ctx, "u1", want))

	// Overwrite wins.
	want.Experience = 900
	require.NoError(t, st.Save(ctx, "u1", player.Normalize(want)))

	got, ok, err := st.Load(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 900, got.Experience)
	assert.Equal(t, 4, got.Level)
}

// recordingStore counts writes for debounce assertions.
type recordingStore struct {
	mu     sync.Mutex
	writes []string
	last   map[string]player.State
}

func (r *recordingStore) Save(_ context.Context, userID string, s player.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, userID)
	if r.last == nil {
		r.last = map[string]player.State{}
	}
	r.last[userID] = s
	return nil
}

func (r *recordingStore) Load(context.Context, string) (player.State, bool, error) {
	return player.State{}, false, nil
}

func (r *recordingStore) Close() error { return nil }

func (r *recordingStore) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.writes)
}

func TestSaver_CoalescesBursts(t *testing.T) {
	store := &recordingStore{}
	sv := NewSaver(store, 50*time.Millisecond)
	defer sv.Close()

	s := sampleState("u1")
	for i := 0; i < 10; i++ {
		s.Experience += 10
		sv.Queue("u1", player.Normalize(s))
	}

	require.Eventually(t, func() bool { return store.count() == 1 }, time.Second, 5*time.Millisecond)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, 350, store.last["u1"].Experience, "last queued snapshot wins")
}

func TestSaver_FlushWritesImmediately(t *testing.T) {
	store := &recordingStore{}
	sv := NewSaver(store, time.Hour)

	sv.Queue("u1", sampleState("u1"))
	assert.Equal(t, 0, store.count())

	sv.Flush()
	assert.Equal(t, 1, store.count())

	sv.Close()
	sv.Queue("u1", sampleState("u1"))
	sv.Flush()
	assert.Equal(t, 1, store.count(), "closed saver drops writes")
}
