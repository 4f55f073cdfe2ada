// Package fs provides a filesystem-backed artifact store on top of the afs
// abstract file system. Artifacts are addressed by their stable identity, so
// uploads are naturally idempotent: a present artifact is never rewritten.
package fs

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/nimbus/assembly"
)

// Service implements assembly.Store over afs.
type Service struct {
	basePath string
	fs       afs.Service
}

var _ assembly.Store = (*Service)(nil)

// Upload ships each artifact unless its id is already present.
func (s *Service) Upload(ctx context.Context, artifacts ...*assembly.Artifact) error {
	for _, artifact := range artifacts {
		if artifact == nil || artifact.ID == "" {
			return fmt.Errorf("artifact id cannot be empty")
		}
		filePath := s.artifactPath(artifact.ID)
		exists, err := s.fs.Exists(ctx, filePath)
		if err != nil {
			return fmt.Errorf("failed to check artifact %s: %w", artifact.ID, err)
		}
		if exists {
			continue
		}
		if err := s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(artifact.Data)); err != nil {
			return fmt.Errorf("failed to upload artifact %s: %w", artifact.ID, err)
		}
	}
	return nil
}

// Exists reports whether an artifact id has been shipped.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	return s.fs.Exists(ctx, s.artifactPath(id))
}

// artifactPath returns the file location for an artifact id.
func (s *Service) artifactPath(id string) string {
	return path.Join(s.basePath, id)
}

// New creates a filesystem artifact store rooted at basePath.
func New(basePath string) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	fs := afs.New()
	ctx := context.Background()
	if exists, _ := fs.Exists(ctx, basePath); !exists {
		if err := fs.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}
	return &Service{
		basePath: url.Normalize(basePath, file.Scheme),
		fs:       fs,
	}, nil
}
