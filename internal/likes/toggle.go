// Package likes implements the optimistic like button on listings.
package likes

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/erazemk/swycle/internal/api"
	"github.com/erazemk/swycle/internal/model"
)

// ErrInFlight is returned when a listing's like toggle is still waiting
// for the server.
var ErrInFlight = errors.New("like toggle already in flight")

// Backend is the part of the API the toggle uses. *api.Client satisfies it.
type Backend interface {
	ToggleLike(ctx context.Context, id int64) (*api.LikeState, error)
}

// State is the like flag and count shown for one listing.
type State struct {
	Liked     bool
	LikeCount int
}

// Toggle tracks like state per listing.
type Toggle struct {
	// RollbackOnError restores the previous state when the request fails.
	// By default the optimistic state stays applied.
	RollbackOnError bool

	backend Backend

	mu       sync.Mutex
	states   map[int64]State
	inflight map[int64]bool
}

// NewToggle returns a toggle with no known listings.
func NewToggle(backend Backend) *Toggle {
	return &Toggle{
		backend:  backend,
		states:   make(map[int64]State),
		inflight: make(map[int64]bool),
	}
}

// Seed records the server's like state for listings. Listings with a toggle
// in flight keep their optimistic state.
func (t *Toggle) Seed(listings ...model.Listing) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, l := range listings {
		if !t.inflight[l.ID] {
			t.states[l.ID] = State{Liked: l.Liked, LikeCount: l.LikeCount}
		}
	}
}

// State returns the current state of a listing.
func (t *Toggle) State(id int64) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[id]
}

// Pending reports whether a toggle for id is waiting for the server.
func (t *Toggle) Pending(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inflight[id]
}

// Click flips the like state of a listing. The new state is visible
// immediately; once the server answers it is replaced by the server's
// values where the response carries them.
func (t *Toggle) Click(ctx context.Context, id int64) (State, error) {
	t.mu.Lock()
	if t.inflight[id] {
		t.mu.Unlock()
		return t.State(id), ErrInFlight
	}
	prev := t.states[id]
	next := State{Liked: !prev.Liked, LikeCount: prev.LikeCount + 1}
	if prev.Liked {
		next.LikeCount = max(prev.LikeCount-1, 0)
	}
	t.states[id] = next
	t.inflight[id] = true
	t.mu.Unlock()

	resp, err := t.backend.ToggleLike(ctx, id)

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inflight, id)

	if err != nil {
		slog.Warn("like toggle failed", "item_id", id, "rollback", t.RollbackOnError, "error", err)
		if t.RollbackOnError {
			t.states[id] = prev
		}
		return t.states[id], err
	}

	s := t.states[id]
	if resp != nil {
		if resp.Liked != nil {
			s.Liked = *resp.Liked
		}
		if resp.LikeCount != nil {
			s.LikeCount = *resp.LikeCount
		}
	}
	t.states[id] = s
	return s, nil
}
