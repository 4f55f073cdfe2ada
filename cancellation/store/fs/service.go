// Package fs provides a filesystem-backed cancellation entry store. Entries
// are JSON documents under a base location, so any process pointed at the
// same location (local disk, NFS, cloud storage through afs) observes the
// same cancel state.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/nimbus/cancellation"
)

// record is the durable representation of a cancellation entry.
type record struct {
	ID        string `json:"id"`
	Cancelled bool   `json:"cancelled"`
}

// Service implements cancellation.EntryStore on top of the afs abstract file
// system.
type Service struct {
	basePath string
	fs       afs.Service
}

var _ cancellation.EntryStore = (*Service)(nil)

type entry struct {
	service *Service
	id      string
}

// IsCancelled reads the durable record. The read happens on every call;
// cancellation writes are monotonic so a briefly stale result is harmless.
func (e *entry) IsCancelled(ctx context.Context) (bool, error) {
	rec, err := e.service.load(ctx, e.id)
	if err != nil {
		return false, err
	}
	return rec.Cancelled, nil
}

// Cancel marks the record cancelled. Re-cancelling rewrites the same state
// and is therefore a no-op in effect.
func (e *entry) Cancel(ctx context.Context) error {
	return e.service.save(ctx, &record{ID: e.id, Cancelled: true})
}

// Create allocates a durable entry for id.
func (s *Service) Create(ctx context.Context, id string) (cancellation.Entry, error) {
	exists, err := s.fs.Exists(ctx, s.entryPath(id))
	if err != nil {
		return nil, fmt.Errorf("failed to check entry %s: %w", id, err)
	}
	if exists {
		return nil, cancellation.ErrEntryExists
	}
	if err := s.save(ctx, &record{ID: id}); err != nil {
		return nil, err
	}
	return &entry{service: s, id: id}, nil
}

// Open binds to an existing entry by id.
func (s *Service) Open(ctx context.Context, id string) (cancellation.Entry, error) {
	exists, err := s.fs.Exists(ctx, s.entryPath(id))
	if err != nil {
		return nil, fmt.Errorf("failed to check entry %s: %w", id, err)
	}
	if !exists {
		return nil, cancellation.ErrEntryNotFound
	}
	return &entry{service: s, id: id}, nil
}

func (s *Service) save(ctx context.Context, rec *record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	filePath := s.entryPath(rec.ID)
	if err := s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save entry to %s: %w", filePath, err)
	}
	return nil
}

func (s *Service) load(ctx context.Context, id string) (*record, error) {
	filePath := s.entryPath(id)
	data, err := s.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %s: %w", filePath, err)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry %s: %w", filePath, err)
	}
	return &rec, nil
}

// entryPath returns the file location for an entry id.
func (s *Service) entryPath(id string) string {
	return path.Join(s.basePath, fmt.Sprintf("%s.json", id))
}

// New creates a filesystem entry store rooted at basePath.
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
