package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// DiskStorage writes objects below Root and serves them under BaseURL.
type DiskStorage struct {
	Root    string
	BaseURL string

	dirs      map[string]bool
	dirsMutex sync.Mutex
}

// NewDiskStorage creates a DiskStorage rooted at root.
func NewDiskStorage(root, baseURL string) *DiskStorage {
	return &DiskStorage{Root: root, BaseURL: baseURL, dirs: map[string]bool{}}
}

func (s *DiskStorage) createDir(dir string) error {
	s.dirsMutex.Lock()
	defer s.dirsMutex.Unlock()

	if s.dirs[dir] {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	s.dirs[dir] = true
	return nil
}

func (s *DiskStorage) fullPath(name string) (string, error) {
	cleaned, err := cleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Root, filepath.FromSlash(cleaned)), nil
}

func (s *DiskStorage) Save(_ context.Context, name string, body io.Reader, _ string) error {
	fileName, err := s.fullPath(name)
	if err != nil {
		return err
	}
	if err := s.createDir(filepath.Dir(fileName)); err != nil {
		return err
	}
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, body); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Delete removes the object; deleting a missing object is not an error.
func (s *DiskStorage) Delete(_ context.Context, name string) error {
	fileName, err := s.fullPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(fileName); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *DiskStorage) URL(name string) string {
	return joinURL(s.BaseURL, name)
}
