package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps one JSON document per owner under a data directory. It is
// the closest server-side analogue of browser local storage and needs no
// database to run.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFile(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(owner string) string {
	// Owner ids come from tokens and headers; escape them before they touch
	// the filesystem.
	return filepath.Join(s.dir, url.PathEscape(owner)+".json")
}

func (s *FileStore) read(owner string) (map[string]string, error) {
	raw, err := os.ReadFile(s.path(owner))
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path(owner), err)
	}

	values := map[string]string{}
	if err := json.Unmarshal(raw, &values); err != nil {
		// Corrupt document: start over rather than wedge the owner.
		return map[string]string{}, nil
	}
	return values, nil
}

func (s *FileStore) write(owner string, values map[string]string) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path(owner), raw, 0644); err != nil {
		return fmt.Errorf("write %s: %w", s.path(owner), err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, owner, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read(owner)
	if err != nil {
		return "", false, err
	}
	value, ok := values[key]
	return value, ok, nil
}

func (s *FileStore) Set(_ context.Context, owner, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read(owner)
	if err != nil {
		return err
	}
	values[key] = value
	return s.write(owner, values)
}

func (s *FileStore) Delete(_ context.Context, owner, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read(owner)
	if err != nil {
		return err
	}
	delete(values, key)
	return s.write(owner, values)
}
