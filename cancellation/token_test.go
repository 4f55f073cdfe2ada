package cancellation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/nimbus/cancellation"
	"github.com/viant/nimbus/cancellation/store/memory"
)

func TestMultiParentCancellation(t *testing.T) {
	ctx := context.Background()
	registry := cancellation.NewRegistry()

	parentA, err := registry.Create(ctx)
	assert.NoError(t, err)
	parentB, err := registry.Create(ctx)
	assert.NoError(t, err)
	child, err := registry.Create(ctx, cancellation.WithParents(parentA, parentB))
	assert.NoError(t, err)

	// Nothing cancelled yet.
	cancelled, err := child.IsCancelled(ctx)
	assert.NoError(t, err)
	assert.False(t, cancelled)

	// Cancelling one parent alone cancels the child (OR semantics).
	assert.NoError(t, parentA.Cancel(ctx))
	cancelled, err = child.IsCancelled(ctx)
	assert.NoError(t, err)
	assert.True(t, cancelled)

	// The sibling parent is untouched.
	cancelled, err = parentB.IsCancelled(ctx)
	assert.NoError(t, err)
	assert.False(t, cancelled)
}

func TestCancellationNeverPropagatesUpward(t *testing.T) {
	ctx := context.Background()
	registry := cancellation.NewRegistry()

	parent, err := registry.Create(ctx)
	assert.NoError(t, err)
	child, err := registry.Create(ctx, cancellation.WithParents(parent))
	assert.NoError(t, err)

	assert.NoError(t, child.Cancel(ctx))

	cancelled, err := child.IsCancelled(ctx)
	assert.NoError(t, err)
	assert.True(t, cancelled)

	cancelled, err = parent.IsCancelled(ctx)
	assert.NoError(t, err)
	assert.False(t, cancelled)
}

func TestCancelIsIdempotent(t *testing.T) {
	ctx := context.Background()
	registry := cancellation.NewRegistry()

	token, err := registry.Create(ctx)
	assert.NoError(t, err)

	assert.NoError(t, token.Cancel(ctx))
	// The second cancel is a no-op, not an error.
	assert.NoError(t, token.Cancel(ctx))

	cancelled, err := token.IsCancelled(ctx)
	assert.NoError(t, err)
	assert.True(t, cancelled)
}

func TestElevatedTokenCrossesRegistries(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	// Two registries sharing one entry store stand in for two processes.
	local := cancellation.NewRegistry(cancellation.WithStore(store))
	remote := cancellation.NewRegistry(cancellation.WithStore(store))

	token, err := local.Create(ctx, cancellation.WithElevation())
	assert.NoError(t, err)

	adopted, err := remote.Adopt(ctx, token.ID())
	assert.NoError(t, err)

	cancelled, err := adopted.IsCancelled(ctx)
	assert.NoError(t, err)
	assert.False(t, cancelled)

	assert.NoError(t, token.Cancel(ctx))

	// The other process, holding only the id, observes the cancellation.
	cancelled, err = adopted.IsCancelled(ctx)
	assert.NoError(t, err)
	assert.True(t, cancelled)
}

func TestElevationRequiresStore(t *testing.T) {
	ctx := context.Background()
	registry := cancellation.NewRegistry()

	_, err := registry.Create(ctx, cancellation.WithElevation())
	assert.ErrorIs(t, err, cancellation.ErrNoStore)
}

func TestAdoptUnknownEntry(t *testing.T) {
	ctx := context.Background()
	registry := cancellation.NewRegistry(cancellation.WithStore(memory.New()))

	_, err := registry.Adopt(ctx, "no-such-token")
	assert.ErrorIs(t, err, cancellation.ErrEntryNotFound)
}

func TestElevatedParentCancelsLocalChild(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	registry := cancellation.NewRegistry(cancellation.WithStore(store))

	parent, err := registry.Create(ctx, cancellation.WithElevation())
	assert.NoError(t, err)
	child, err := registry.Create(ctx, cancellation.WithParents(parent))
	assert.NoError(t, err)

	// Cancel through the durable entry, as another process would.
	entry, err := store.Open(ctx, parent.ID())
	assert.NoError(t, err)
	assert.NoError(t, entry.Cancel(ctx))

	cancelled, err := child.IsCancelled(ctx)
	assert.NoError(t, err)
	assert.True(t, cancelled)
}
