package filekv

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/edutrack/core"
)

// Store persists all keys in a single JSON object file.
// Every Set/Delete rewrites the whole file (write to temp file, then rename).
type Store struct {
	mu   sync.Mutex
	path string
}

var _ core.KVStore = (*Store)(nil) // interface compliance check

// Open returns a Store backed by `path`; the file is created on first write.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("file store: empty path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "creating data directory")
		}
	}
	return &Store{path: path}, nil
}

func (s *Store) read() (map[string]string, error) {
	table := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return table, nil
		}
		return nil, errors.Wrapf(err, "reading %s", s.path)
	}
	if len(data) == 0 {
		return table, nil
	}
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", s.path)
	}
	return table, nil
}

func (s *Store) write(table map[string]string) error {
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding data file")
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrapf(err, "writing %s", tmp)
	}
	return errors.Wrapf(os.Rename(tmp, s.path), "replacing %s", s.path)
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.read()
	if err != nil {
		return "", err
	}
	if val, ok := table[key]; ok {
		return val, nil
	}
	return "", core.ErrKeyNotFound
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.read()
	if err != nil {
		return err
	}
	table[key] = value
	return s.write(table)
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := table[key]; !ok {
		return nil
	}
	delete(table, key)
	return s.write(table)
}
