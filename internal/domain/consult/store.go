package consult

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned for workspace IDs that do not exist or have been
// discarded.
var ErrNotFound = errors.New("workspace not found")

// Store keeps live consultation workspaces.
type Store interface {
	Create(ctx context.Context, ws *Workspace) error
	Get(ctx context.Context, id string) (*Workspace, error)
	Update(ctx context.Context, ws *Workspace) error
	Delete(ctx context.Context, id string) error
}

// InMemoryStore is a thread-safe, in-memory Store. Workspaces are session
// state and do not survive a restart. Get and Update exchange copies, so
// concurrent operations on one workspace resolve last-write-wins.
type InMemoryStore struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace
}

// NewInMemoryStore creates a new empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{workspaces: make(map[string]*Workspace)}
}

func (s *InMemoryStore) Create(_ context.Context, ws *Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces[ws.ID] = ws.clone()
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ws, ok := s.workspaces[id]
	if !ok {
		return nil, fmt.Errorf("workspace %s: %w", id, ErrNotFound)
	}
	return ws.clone(), nil
}

func (s *InMemoryStore) Update(_ context.Context, ws *Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workspaces[ws.ID]; !ok {
		return fmt.Errorf("workspace %s: %w", ws.ID, ErrNotFound)
	}
	s.workspaces[ws.ID] = ws.clone()
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workspaces[id]; !ok {
		return fmt.Errorf("workspace %s: %w", id, ErrNotFound)
	}
	delete(s.workspaces, id)
	return nil
}

// Count reports the number of live workspaces.
func (s *InMemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workspaces)
}
