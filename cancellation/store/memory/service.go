// Package memory provides an in-process cancellation entry store. Two
// registries sharing one Service observe each other's cancellations, which
// makes it the store of choice for tests and single-process deployments.
package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/viant/nimbus/cancellation"
)

type entry struct {
	cancelled atomic.Bool
}

func (e *entry) IsCancelled(_ context.Context) (bool, error) {
	return e.cancelled.Load(), nil
}

func (e *entry) Cancel(_ context.Context) error {
	e.cancelled.Store(true)
	return nil
}

// Service implements an in-memory, thread-safe cancellation.EntryStore.
type Service struct {
	entries map[string]*entry
	mux     sync.RWMutex
}

var _ cancellation.EntryStore = (*Service)(nil)

// Create allocates an entry for id.
func (s *Service) Create(_ context.Context, id string) (cancellation.Entry, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if _, ok := s.entries[id]; ok {
		return nil, cancellation.ErrEntryExists
	}
	e := &entry{}
	s.entries[id] = e
	return e, nil
}

// Open binds to an existing entry.
func (s *Service) Open(_ context.Context, id string) (cancellation.Entry, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, cancellation.ErrEntryNotFound
	}
	return e, nil
}

// New creates an empty store.
func New() *Service {
	return &Service{entries: map[string]*entry{}}
}
