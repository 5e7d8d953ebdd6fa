package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pagepack/pagepack/pkg/doc"
	"github.com/pagepack/pagepack/pkg/docio"
	"github.com/pagepack/pagepack/pkg/observability"
)

// FileStore keeps documents as JSON files in a directory, one file per
// document ID. Suitable for CLI use and single-instance servers.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store rooted at baseDir. If baseDir
// is empty, it defaults to ~/.local/share/pagepack/documents. The
// directory is created if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".local", "share", "pagepack", "documents")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

// Get retrieves a document by ID.
func (s *FileStore) Get(ctx context.Context, id string) (d *doc.Document, err error) {
	defer func() { observability.Store().OnLoad(ctx, "file", id, err == nil, err) }()

	if err = ValidateID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, readErr := os.ReadFile(s.path(id))
	if os.IsNotExist(readErr) {
		err = ErrNotFound
		return nil, err
	}
	if readErr != nil {
		err = fmt.Errorf("read document file: %w", readErr)
		return nil, err
	}

	d, err = docio.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("parse document %s: %w", id, err)
	}
	return d, nil
}

// Put stores a document under the given ID.
func (s *FileStore) Put(ctx context.Context, id string, d *doc.Document) (err error) {
	defer func() { observability.Store().OnSave(ctx, "file", id, err) }()

	if err = ValidateID(id); err != nil {
		return err
	}

	data, err := docio.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err = os.WriteFile(s.path(id), data, 0o600); err != nil {
		return fmt.Errorf("write document file: %w", err)
	}
	return nil
}

// Delete removes a document. Deleting a missing ID is not an error.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove document file: %w", err)
	}
	return nil
}

// List returns the IDs of all stored documents.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return ids, nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
