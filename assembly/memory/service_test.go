package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/nimbus/assembly"
	"github.com/viant/nimbus/model"
)

func TestUploadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	artifact := assembly.NewArtifact("core.lib", []byte("payload"))

	assert.NoError(t, store.Upload(ctx, artifact))
	assert.NoError(t, store.Upload(ctx, artifact))

	// Two upload attempts, exactly one stored copy.
	assert.Equal(t, 2, store.UploadAttempts(artifact.ID))
	assert.Equal(t, 1, store.Stored(artifact.ID))

	exists, err := store.Exists(ctx, artifact.ID)
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestArtifactIdentityIsStable(t *testing.T) {
	a := assembly.NewArtifact("core.lib", []byte("payload"))
	b := assembly.NewArtifact("core.lib", []byte("payload"))
	c := assembly.NewArtifact("core.lib", []byte("other payload"))

	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestResolverComputesOrderedClosure(t *testing.T) {
	ctx := context.Background()
	resolver := NewResolver()

	shared := assembly.NewArtifact("shared.lib", []byte("shared"))
	resolver.Register("numerics", shared, assembly.NewArtifact("numerics.lib", []byte("num")))
	resolver.Register("plotting", shared, assembly.NewArtifact("plotting.lib", []byte("plot")))

	artifacts, err := resolver.ComputeDependencies(ctx, &model.Descriptor{
		Modules: []string{"numerics", "plotting"},
	})
	assert.NoError(t, err)

	// Order follows the module sequence; the shared artifact appears once.
	names := make([]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		names = append(names, artifact.Name)
	}
	assert.Equal(t, []string{"shared.lib", "numerics.lib", "plotting.lib"}, names)
}

func TestResolverUnknownModule(t *testing.T) {
	resolver := NewResolver()
	_, err := resolver.ComputeDependencies(context.Background(), &model.Descriptor{
		Modules: []string{"missing"},
	})
	assert.ErrorIs(t, err, assembly.ErrUnknownModule)
}
