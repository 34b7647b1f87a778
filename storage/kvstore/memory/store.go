package memorykv

import (
	"context"
	"sync"

	"github.com/trezcool/edutrack/core"
)

// Store keeps values in process memory; everything is lost when the process exits.
// It is the session store, and the persistent store in tests.
type Store struct {
	sync.RWMutex
	table map[string]string
}

var _ core.KVStore = (*Store)(nil) // interface compliance check

func Open() *Store {
	return &Store{table: make(map[string]string)}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.RLock()
	defer s.RUnlock()

	if val, ok := s.table[key]; ok {
		return val, nil
	}
	return "", core.ErrKeyNotFound
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.Lock()
	defer s.Unlock()
	s.table[key] = value
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.Lock()
	defer s.Unlock()
	delete(s.table, key)
	return nil
}
