package cancellation

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/viant/nimbus/internal/idgen"
)

// node is one arena slot. Parents are recorded as ids; they always reference
// tokens created before this one, so the graph is acyclic by construction.
type node struct {
	id      string
	parents []string
	entry   Entry // non-nil only for elevated tokens

	local     atomic.Bool
	cancelled atomic.Bool // memoized: monotonic cancellation makes this sound
}

// Registry is the arena owning cancellation nodes of one process.
type Registry struct {
	store EntryStore
	mux   sync.RWMutex
	nodes map[string]*node
}

// RegistryOption customises a registry.
type RegistryOption func(r *Registry)

// WithStore attaches the durable entry store used for elevated tokens.
func WithStore(store EntryStore) RegistryOption {
	return func(r *Registry) {
		r.store = store
	}
}

// NewRegistry creates an empty token arena.
func NewRegistry(options ...RegistryOption) *Registry {
	ret := &Registry{nodes: map[string]*node{}}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Token is a lightweight reference into the arena.
type Token struct {
	id       string
	registry *Registry
}

// ID returns the token identifier. Possessing the id is sufficient for a
// second process to adopt an elevated token.
func (t *Token) ID() string {
	return t.id
}

// Option customises token creation.
type Option func(o *createOptions)

type createOptions struct {
	parents []*Token
	elevate bool
}

// WithParents roots the new token under the supplied tokens. Cancellation of
// any parent cancels the child; the child never cancels a parent.
func WithParents(parents ...*Token) Option {
	return func(o *createOptions) {
		o.parents = append(o.parents, parents...)
	}
}

// WithElevation persists the token's cancel state in the registry's entry
// store, making it observable across process boundaries. Purely local scopes
// skip this cost.
func WithElevation() Option {
	return func(o *createOptions) {
		o.elevate = true
	}
}

// Create allocates a token with a unique id. Parent tokens must belong to
// this registry; adopt remote tokens first.
func (r *Registry) Create(ctx context.Context, options ...Option) (*Token, error) {
	var opts createOptions
	for _, option := range options {
		option(&opts)
	}

	n := &node{id: idgen.New()}
	for _, parent := range opts.parents {
		if parent == nil {
			continue
		}
		n.parents = append(n.parents, parent.id)
	}
	if opts.elevate {
		if r.store == nil {
			return nil, ErrNoStore
		}
		entry, err := r.store.Create(ctx, n.id)
		if err != nil {
			return nil, err
		}
		n.entry = entry
	}

	r.mux.Lock()
	r.nodes[n.id] = n
	r.mux.Unlock()
	return &Token{id: n.id, registry: r}, nil
}

// Adopt binds to an elevated token created elsewhere, identified by id. The
// returned token observes cancellation performed by any process sharing the
// entry store.
func (r *Registry) Adopt(ctx context.Context, id string) (*Token, error) {
	r.mux.RLock()
	_, ok := r.nodes[id]
	r.mux.RUnlock()
	if ok {
		return &Token{id: id, registry: r}, nil
	}
	if r.store == nil {
		return nil, ErrNoStore
	}
	entry, err := r.store.Open(ctx, id)
	if err != nil {
		return nil, err
	}

	r.mux.Lock()
	defer r.mux.Unlock()
	if _, ok := r.nodes[id]; !ok {
		r.nodes[id] = &node{id: id, entry: entry}
	}
	return &Token{id: id, registry: r}, nil
}

func (r *Registry) node(id string) *node {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return r.nodes[id]
}

// Cancel sets the token cancelled. It is idempotent; cancelling an already
// cancelled token changes nothing and raises no error. For elevated tokens
// the durable entry is marked as well.
func (t *Token) Cancel(ctx context.Context) error {
	n := t.registry.node(t.id)
	if n == nil {
		return nil
	}
	n.local.Store(true)
	n.cancelled.Store(true)
	if n.entry != nil {
		return n.entry.Cancel(ctx)
	}
	return nil
}

// IsCancelled reports whether the token or any of its parents, transitively,
// has been cancelled. For elevated tokens the durable entry is the
// authoritative source, so cancellation performed by a different process
// becomes visible here. The check is cheap: once true it is memoized.
func (t *Token) IsCancelled(ctx context.Context) (bool, error) {
	return t.registry.isCancelled(ctx, t.id)
}

func (r *Registry) isCancelled(ctx context.Context, id string) (bool, error) {
	n := r.node(id)
	if n == nil {
		return false, nil
	}
	if n.cancelled.Load() {
		return true, nil
	}
	if n.local.Load() {
		n.cancelled.Store(true)
		return true, nil
	}
	if n.entry != nil {
		cancelled, err := n.entry.IsCancelled(ctx)
		if err != nil {
			return false, err
		}
		if cancelled {
			n.cancelled.Store(true)
			return true, nil
		}
	}
	for _, parent := range n.parents {
		cancelled, err := r.isCancelled(ctx, parent)
		if err != nil {
			return false, err
		}
		if cancelled {
			n.cancelled.Store(true)
			return true, nil
		}
	}
	return false, nil
}
