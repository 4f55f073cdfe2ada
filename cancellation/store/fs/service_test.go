package fs

import (
	"context"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/nimbus/cancellation"
)

func TestEntrySurvivesAcrossStores(t *testing.T) {
	ctx := context.Background()
	basePath := path.Join(t.TempDir(), "tokens")

	first, err := New(basePath)
	assert.NoError(t, err)

	entry, err := first.Create(ctx, "token-1")
	assert.NoError(t, err)

	cancelled, err := entry.IsCancelled(ctx)
	assert.NoError(t, err)
	assert.False(t, cancelled)

	assert.NoError(t, entry.Cancel(ctx))

	// A fresh store over the same location stands in for another process.
	second, err := New(basePath)
	assert.NoError(t, err)
	adopted, err := second.Open(ctx, "token-1")
	assert.NoError(t, err)

	cancelled, err = adopted.IsCancelled(ctx)
	assert.NoError(t, err)
	assert.True(t, cancelled)
}

func TestCancelIsIdempotent(t *testing.T) {
	ctx := context.Background()
	service, err := New(path.Join(t.TempDir(), "tokens"))
	assert.NoError(t, err)

	entry, err := service.Create(ctx, "token-1")
	assert.NoError(t, err)
	assert.NoError(t, entry.Cancel(ctx))
	assert.NoError(t, entry.Cancel(ctx))

	cancelled, err := entry.IsCancelled(ctx)
	assert.NoError(t, err)
	assert.True(t, cancelled)
}

func TestCreateRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	service, err := New(path.Join(t.TempDir(), "tokens"))
	assert.NoError(t, err)

	_, err = service.Create(ctx, "token-1")
	assert.NoError(t, err)
	_, err = service.Create(ctx, "token-1")
	assert.ErrorIs(t, err, cancellation.ErrEntryExists)
}

func TestOpenMissingEntry(t *testing.T) {
	ctx := context.Background()
	service, err := New(path.Join(t.TempDir(), "tokens"))
	assert.NoError(t, err)

	_, err = service.Open(ctx, "missing")
	assert.ErrorIs(t, err, cancellation.ErrEntryNotFound)
}
