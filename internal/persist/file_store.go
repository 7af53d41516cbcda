package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"innerlevel/internal/player"
)

type fileState struct {
	Users map[string]player.State `json:"users"`
}

// FileStore keeps every user's snapshot in a single JSON file. Writes go
// through a temp file and rename so a crash mid-save never truncates the
// store.
type FileStore struct {
	mu   sync.RWMutex
	path string
	s    fileState
}

func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	st := &FileStore{
		path: filepath.Join(dataDir, "snapshots.json"),
		s:    fileState{Users: map[string]player.State{}},
	}
	if err := st.load(); err != nil {
		return nil, err
	}
	return st, nil
}

func (f *FileStore) load() error {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSnapshot, f.path, err)
	}
	if loaded.Users == nil {
		loaded.Users = map[string]player.State{}
	}
	f.s = loaded
	return nil
}

func (f *FileStore) Save(ctx context.Context, userID string, s player.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.s.Users[userID] = s

	b, err := json.MarshalIndent(f.s, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Load(ctx context.Context, userID string) (player.State, bool, error) {
	if err := ctx.Err(); err != nil {
		return player.State{}, false, err
	}

	f.mu.RLock()
	s, ok := f.s.Users[userID]
	f.mu.RUnlock()

	if !ok {
		return player.State{}, false, nil
	}
	return player.Normalize(s), true, nil
}

func (f *FileStore) Close() error { return nil }
