package harvester

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// SnapshotStore is where snapshots are persisted. Implementations must make
// EnsureDir safe to call concurrently for the same label and must never
// overwrite an existing snapshot.
type SnapshotStore interface {
	EnsureDir(label string) error
	Write(label, name string, data []byte) (string, error)
}

// FSStore writes snapshots below a root directory of an afero filesystem.
type FSStore struct {
	fs   afero.Fs
	root string
}

// NewFSStore returns a store rooted at root on fs.
func NewFSStore(fs afero.Fs, root string) *FSStore {
	return &FSStore{fs: fs, root: root}
}

// Dir returns the directory holding snapshots for label.
func (s *FSStore) Dir(label string) string {
	return filepath.Join(s.root, label)
}

// EnsureDir creates the label directory and any missing parents.
func (s *FSStore) EnsureDir(label string) error {
	if err := s.fs.MkdirAll(s.Dir(label), 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrFilesystem, s.Dir(label), err)
	}
	return nil
}

// Write creates name inside the label directory and returns its path. It fails
// if the file already exists.
func (s *FSStore) Write(label, name string, data []byte) (string, error) {
	path := filepath.Join(s.Dir(label), name)
	f, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: create %s: %v", ErrFilesystem, path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		s.fs.Remove(path)
		return "", fmt.Errorf("%w: write %s: %v", ErrFilesystem, path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: close %s: %v", ErrFilesystem, path, err)
	}
	return path, nil
}
