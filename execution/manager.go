package execution

import (
	"context"
	"errors"
	"sync"
)

// Common registry errors.
var (
	// ErrNotFound is returned when the requested process is not registered.
	ErrNotFound = errors.New("execution: process not found")

	// ErrProcessExists is returned when registering under a taken id. Ids
	// are freshly generated per submission, so a collision is a defect.
	ErrProcessExists = errors.New("execution: process already registered")

	// ErrProcessActive is returned when clearing a process that has not yet
	// reached a terminal state. Cancel it first; bookkeeping calls never
	// tear down an in-flight computation implicitly.
	ErrProcessActive = errors.New("execution: process still active")
)

// Manager owns registered processes, keyed by process id. Entries are
// created on submission and removed on explicit clear, never silently
// expired.
type Manager struct {
	processes map[string]Handle
	mux       sync.RWMutex
}

// NewManager creates an empty registry.
func NewManager() *Manager {
	return &Manager{processes: map[string]Handle{}}
}

// Register adds a process to the registry.
func (m *Manager) Register(h Handle) error {
	m.mux.Lock()
	defer m.mux.Unlock()
	if _, ok := m.processes[h.ProcessID()]; ok {
		return ErrProcessExists
	}
	m.processes[h.ProcessID()] = h
	return nil
}

// Get returns the process registered under id.
func (m *Manager) Get(id string) (Handle, error) {
	m.mux.RLock()
	defer m.mux.RUnlock()
	h, ok := m.processes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return h, nil
}

// All returns every registered process.
func (m *Manager) All() []Handle {
	m.mux.RLock()
	defer m.mux.RUnlock()
	ret := make([]Handle, 0, len(m.processes))
	for _, h := range m.processes {
		ret = append(ret, h)
	}
	return ret
}

// Clear releases the server-side bookkeeping of a terminal process and
// removes it from the registry. Clearing a still-active process is rejected
// with ErrProcessActive.
func (m *Manager) Clear(ctx context.Context, id string) error {
	m.mux.Lock()
	h, ok := m.processes[id]
	m.mux.Unlock()
	if !ok {
		return ErrNotFound
	}
	if h.ProcessState() == StatePending {
		return ErrProcessActive
	}
	if err := h.discard(ctx); err != nil {
		return err
	}
	m.mux.Lock()
	delete(m.processes, id)
	m.mux.Unlock()
	return nil
}

// ClearAll clears every terminal process, skipping active ones, and returns
// the number of processes cleared.
func (m *Manager) ClearAll(ctx context.Context) (int, error) {
	cleared := 0
	for _, h := range m.All() {
		err := m.Clear(ctx, h.ProcessID())
		switch {
		case err == nil:
			cleared++
		case errors.Is(err, ErrProcessActive), errors.Is(err, ErrNotFound):
			continue
		default:
			return cleared, err
		}
	}
	return cleared, nil
}
