package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/guzmanes/routeboard/internal/domain"
)

// FileStore is the default Store, keeping each key in its own file under a
// state directory. Writes go through a temp file and rename so a crash
// mid-write never leaves a half-written cache behind.
type FileStore struct {
	dir string
}

// NewFileStore creates the state directory if needed and returns a store
// rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache.NewFileStore: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// ReadRoutes returns the cached route list, or nil when no cache exists yet.
func (s *FileStore) ReadRoutes() ([]domain.Route, error) {
	data, err := os.ReadFile(s.path(routesKey))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache.FileStore.ReadRoutes: %w", err)
	}

	var routes []domain.Route
	if err := json.Unmarshal(data, &routes); err != nil {
		return nil, fmt.Errorf("cache.FileStore.ReadRoutes: decode: %w", err)
	}
	return routes, nil
}

// WriteRoutes replaces the cached route list wholesale.
func (s *FileStore) WriteRoutes(routes []domain.Route) error {
	data, err := json.Marshal(routes)
	if err != nil {
		return fmt.Errorf("cache.FileStore.WriteRoutes: encode: %w", err)
	}
	if err := s.writeAtomic(routesKey, data); err != nil {
		return fmt.Errorf("cache.FileStore.WriteRoutes: %w", err)
	}
	return nil
}

// ReadCurrentUser returns the stored display name, or "" when none is set.
func (s *FileStore) ReadCurrentUser() (string, error) {
	data, err := os.ReadFile(s.path(userKey))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("cache.FileStore.ReadCurrentUser: %w", err)
	}
	return string(data), nil
}

// WriteCurrentUser replaces the stored display name.
func (s *FileStore) WriteCurrentUser(name string) error {
	if err := s.writeAtomic(userKey, []byte(name)); err != nil {
		return fmt.Errorf("cache.FileStore.WriteCurrentUser: %w", err)
	}
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// writeAtomic writes data to a temp file in the same directory and renames
// it over the target. Rename within one directory is atomic on POSIX.
func (s *FileStore) writeAtomic(key string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path(key))
}

// compile-time check: FileStore must satisfy Store.
var _ Store = (*FileStore)(nil)
