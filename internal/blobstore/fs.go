package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// FSStore implements Store on the local filesystem under a root directory.
type FSStore struct {
	root string
}

// NewFS creates a filesystem blob store rooted at dir.
func NewFS(dir string) (*FSStore, error) {
	if dir == "" {
		return nil, eris.New("blobstore: empty root dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "blobstore: create root %s", dir)
	}
	return &FSStore{root: dir}, nil
}

// path maps a blob key onto the filesystem, rejecting traversal outside root.
func (s *FSStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", eris.Errorf("blobstore: invalid key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

func (s *FSStore) GetMetadata(_ context.Context, key string) (*ObjectInfo, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if os.IsNotExist(err) {
		return nil, eris.Wrapf(ErrNotFound, "%s", key)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "blobstore: stat %s", key)
	}
	return &ObjectInfo{Key: key, Size: info.Size(), UpdatedAt: info.ModTime()}, nil
}

func (s *FSStore) Upload(_ context.Context, key string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return eris.Wrapf(err, "blobstore: create dir for %s", key)
	}
	return eris.Wrapf(os.WriteFile(p, data, 0o644), "blobstore: write %s", key)
}

func (s *FSStore) Download(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, eris.Wrapf(ErrNotFound, "%s", key)
	}
	return data, eris.Wrapf(err, "blobstore: read %s", key)
}
