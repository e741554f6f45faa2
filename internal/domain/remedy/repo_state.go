package remedy

import (
	"context"
	"fmt"
	"sync"

	"github.com/clinicdesk/clinicdesk/internal/platform/state"
)

// StateRepo keeps the catalog in memory and mirrors it into the embedded
// state store under a fixed key, so a restarted desk starts with the last
// synced catalog. The in-memory slice is swapped wholesale under a write
// lock and never mutated in place, so readers always see a full catalog.
type StateRepo struct {
	store *state.Store

	mu       sync.RWMutex
	remedies []Remedy
}

// NewStateRepo builds a repo warmed from the persisted cache, if present.
func NewStateRepo(store *state.Store) (*StateRepo, error) {
	r := &StateRepo{store: store}
	var cached []Remedy
	ok, err := store.GetJSON(state.RemedyCacheKey, &cached)
	if err != nil {
		return nil, fmt.Errorf("load remedy cache: %w", err)
	}
	if ok {
		r.remedies = cached
	}
	return r, nil
}

func (r *StateRepo) Replace(_ context.Context, remedies []Remedy) error {
	if err := r.store.PutJSON(state.RemedyCacheKey, remedies); err != nil {
		return fmt.Errorf("persist remedy cache: %w", err)
	}
	r.mu.Lock()
	r.remedies = remedies
	r.mu.Unlock()
	return nil
}

func (r *StateRepo) All(_ context.Context) ([]Remedy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.remedies, nil
}

func (r *StateRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.remedies), nil
}

func (r *StateRepo) SheetURL(_ context.Context) (string, bool, error) {
	return r.store.GetString(state.SheetURLKey)
}

func (r *StateRepo) SetSheetURL(_ context.Context, url string) error {
	return r.store.PutString(state.SheetURLKey, url)
}
