// Package memory provides in-process implementations of the assembly
// collaborator contracts. The store counts upload attempts per artifact so
// tests can verify upload idempotence.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/nimbus/assembly"
	"github.com/viant/nimbus/model"
)

// Store implements an in-memory, thread-safe assembly.Store.
type Store struct {
	artifacts map[string]*assembly.Artifact
	attempts  map[string]int
	mux       sync.RWMutex
}

var _ assembly.Store = (*Store)(nil)

// Upload stores each artifact once; re-uploading an already-present id is a
// no-op beyond bumping the attempt counter.
func (s *Store) Upload(_ context.Context, artifacts ...*assembly.Artifact) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	for _, artifact := range artifacts {
		if artifact == nil || artifact.ID == "" {
			return fmt.Errorf("artifact id cannot be empty")
		}
		s.attempts[artifact.ID]++
		if _, ok := s.artifacts[artifact.ID]; ok {
			continue
		}
		s.artifacts[artifact.ID] = artifact
	}
	return nil
}

// Exists reports whether an artifact id has been stored.
func (s *Store) Exists(_ context.Context, id string) (bool, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	_, ok := s.artifacts[id]
	return ok, nil
}

// Stored returns the number of stored copies for id (0 or 1).
func (s *Store) Stored(id string) int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	if _, ok := s.artifacts[id]; ok {
		return 1
	}
	return 0
}

// UploadAttempts returns how many times id was offered for upload.
func (s *Store) UploadAttempts(id string) int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.attempts[id]
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		artifacts: map[string]*assembly.Artifact{},
		attempts:  map[string]int{},
	}
}

// Resolver maps module names to artifact sequences registered up front.
type Resolver struct {
	modules map[string][]*assembly.Artifact
	mux     sync.RWMutex
}

var _ assembly.Resolver = (*Resolver)(nil)

// Register associates a module name with its artifacts.
func (r *Resolver) Register(module string, artifacts ...*assembly.Artifact) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.modules[module] = append(r.modules[module], artifacts...)
}

// ComputeDependencies returns the ordered closure of the descriptor's
// modules, de-duplicated by artifact identity.
func (r *Resolver) ComputeDependencies(_ context.Context, descriptor *model.Descriptor) ([]*assembly.Artifact, error) {
	if descriptor == nil {
		return nil, nil
	}
	r.mux.RLock()
	defer r.mux.RUnlock()

	var ret []*assembly.Artifact
	seen := map[string]bool{}
	for _, module := range descriptor.Modules {
		artifacts, ok := r.modules[module]
		if !ok {
			return nil, fmt.Errorf("%w: %s", assembly.ErrUnknownModule, module)
		}
		for _, artifact := range artifacts {
			if seen[artifact.ID] {
				continue
			}
			seen[artifact.ID] = true
			ret = append(ret, artifact)
		}
	}
	return ret, nil
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{modules: map[string][]*assembly.Artifact{}}
}
