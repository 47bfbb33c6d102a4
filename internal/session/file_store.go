package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// fileStore keeps every profile in one JSON document:
// {"<profile>": {"access_token": "...", ...}}.
type fileStore struct {
	mu      sync.Mutex
	path    string
	profile string
}

func NewFileStore(path, profile string) Store {
	return &fileStore{path: path, profile: profile}
}

func (s *fileStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := doc[s.profile][key]
	return v, ok, nil
}

func (s *fileStore) SetMany(ctx context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	area := doc[s.profile]
	if area == nil {
		area = make(map[string]string)
		doc[s.profile] = area
	}
	for k, v := range values {
		area[k] = v
	}
	return s.save(doc)
}

func (s *fileStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	area := doc[s.profile]
	if area == nil {
		return nil
	}
	for _, k := range keys {
		delete(area, k)
	}
	if len(area) == 0 {
		delete(doc, s.profile)
	}
	return s.save(doc)
}

func (s *fileStore) load() (map[string]map[string]string, error) {
	doc := make(map[string]map[string]string)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("corrupt session file %s: %w", s.path, err)
	}
	return doc, nil
}

// save writes to a temp file in the same directory and renames it over the
// target, so readers see either the old or the new document.
func (s *fileStore) save(doc map[string]map[string]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
