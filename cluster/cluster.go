// Package cluster defines the worker-directory contract consumed from the
// external scheduler, together with a static in-memory directory used by
// tests and single-process deployments.
package cluster

import (
	"context"
	"sync"
)

// Worker references one execution-side worker process.
type Worker struct {
	ID       string `json:"id"`
	Endpoint string `json:"endpoint,omitempty"`
}

// Directory lists the workers currently available to run computations.
type Directory interface {
	ListWorkers(ctx context.Context) ([]*Worker, error)
}

// Static is a fixed, thread-safe worker directory.
type Static struct {
	workers []*Worker
	mux     sync.RWMutex
}

var _ Directory = (*Static)(nil)

// Register adds workers to the directory.
func (s *Static) Register(workers ...*Worker) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.workers = append(s.workers, workers...)
}

// ListWorkers returns a copy of the registered workers.
func (s *Static) ListWorkers(_ context.Context) ([]*Worker, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return append([]*Worker(nil), s.workers...), nil
}

// NewStatic creates a directory pre-populated with workers.
func NewStatic(workers ...*Worker) *Static {
	ret := &Static{}
	ret.Register(workers...)
	return ret
}
