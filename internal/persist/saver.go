package persist

import (
	"context"
	"sync"
	"time"

	"innerlevel/internal/player"
)

// Saver debounces snapshot writes: bursts of state changes coalesce into
// one write after a quiet period, and a newer pending snapshot always
// supersedes an older one. The timer is owned by the Saver instance, not
// package state, so independent sessions and tests never interfere.
//
// Writes are fire-and-forget from the engine's perspective; the engine
// never waits on durability before returning a new in-memory state.
type Saver struct {
	store Store
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]player.State
	closed  bool

	// OnError observes background write failures; nil means drop them.
	OnError func(userID string, err error)
}

func NewSaver(store Store, delay time.Duration) *Saver {
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Saver{
		store:   store,
		delay:   delay,
		pending: map[string]player.State{},
	}
}

// Queue schedules a snapshot write. Each call replaces any pending
// snapshot for the user and restarts the quiet-period timer, so the timer
// can never fire twice for one burst.
func (sv *Saver) Queue(userID string, s player.State) {
	sv.mu.Lock()
	defer sv.mu.Unlock()

	if sv.closed {
		return
	}
	sv.pending[userID] = s

	if sv.timer != nil {
		sv.timer.Stop()
	}
	sv.timer = time.AfterFunc(sv.delay, sv.flushPending)
}

// Flush writes everything pending immediately, cancelling the timer.
func (sv *Saver) Flush() {
	sv.mu.Lock()
	if sv.timer != nil {
		sv.timer.Stop()
		sv.timer = nil
	}
	sv.mu.Unlock()
	sv.flushPending()
}

// Close flushes and stops accepting new writes.
func (sv *Saver) Close() {
	sv.mu.Lock()
	sv.closed = true
	if sv.timer != nil {
		sv.timer.Stop()
		sv.timer = nil
	}
	sv.mu.Unlock()
	sv.flushPending()
}

func (sv *Saver) flushPending() {
	sv.mu.Lock()
	batch := sv.pending
	sv.pending = map[string]player.State{}
	sv.mu.Unlock()

	for userID, s := range batch {
		if err := sv.store.Save(context.Background(), userID, s); err != nil && sv.OnError != nil {
			sv.OnError(userID, err)
		}
	}
}
