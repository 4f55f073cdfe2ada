package assembly

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/viant/nimbus/model"
)

// ErrUnknownModule is returned by a resolver asked about a module it has no
// artifacts for.
var ErrUnknownModule = errors.New("assembly: unknown module")

// Artifact is one element of a computation's dependency closure. Its ID is a
// stable identity derived from the artifact content, so re-uploading the same
// artifact is detectable and a no-op.
type Artifact struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Data []byte `json:"data,omitempty"`
}

// NewArtifact builds an artifact with its content-derived identity.
func NewArtifact(name string, data []byte) *Artifact {
	return &Artifact{ID: Checksum(name, data), Name: name, Data: data}
}

// Checksum derives the stable identity of an artifact from its name and
// content.
func Checksum(name string, data []byte) string {
	digest := sha256.New()
	digest.Write([]byte(name))
	digest.Write(data)
	return hex.EncodeToString(digest.Sum(nil))
}

// Resolver computes a computation's code/dependency closure as an ordered
// sequence of artifacts with stable identity.
type Resolver interface {
	ComputeDependencies(ctx context.Context, descriptor *model.Descriptor) ([]*Artifact, error)
}

// Store ships artifacts to the execution side. Upload is idempotent per
// artifact id: an already-present artifact is skipped, not rewritten.
type Store interface {
	Upload(ctx context.Context, artifacts ...*Artifact) error
	Exists(ctx context.Context, id string) (bool, error)
}

// IDs projects the stable identities of an artifact sequence, preserving
// order.
func IDs(artifacts []*Artifact) []string {
	ret := make([]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		ret = append(ret, artifact.ID)
	}
	return ret
}
