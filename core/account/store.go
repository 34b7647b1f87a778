package account

import (
	"context"
	"errors"
	"sync"

	"github.com/trezcool/edutrack/core"
)

// StorageKey is where the accounts live in the persistent KVStore.
const StorageKey = "users"

var (
	// errors
	ErrUsernameExists       = errors.New("username already exists, please choose a different one")
	ErrParentUsernameExists = errors.New("parent username already exists, please choose a different one")
	ErrInvalidCredentials   = errors.New("invalid credentials")
)

type (
	// Store is the ordered sequence of accounts persisted at StorageKey.
	// Mutations always read the whole sequence from the backend, change it and write it back.
	Store struct {
		kv  core.KVStore
		log core.Logger

		mu       sync.RWMutex
		accounts []Account // mirror of the last read/write
		seed     *Account
	}

	Option func(*Store)
)

// WithDefaultTeacher makes the store initialize an absent sequence with this teacher account
// instead of an empty one.
func WithDefaultTeacher(username, password string) Option {
	return func(s *Store) {
		s.seed = &Account{Username: username, Password: password, Role: RoleTeacher}
	}
}

func NewStore(kv core.KVStore, log core.Logger, opts ...Option) *Store {
	s := &Store{kv: kv, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// load reads the sequence from the backend; an absent key is initialized and written back.
// callers must hold s.mu.
func (s *Store) load(ctx context.Context) ([]Account, error) {
	var accounts []Account
	found, err := core.LoadJSON(ctx, s.kv, StorageKey, &accounts)
	if err != nil {
		return nil, err
	}
	if !found {
		accounts = make([]Account, 0, 1)
		if s.seed != nil {
			accounts = append(accounts, *s.seed)
		}
		s.log.Debug("initializing accounts", map[string]interface{}{"count": len(accounts)})
		if err := s.save(ctx, accounts); err != nil {
			return nil, err
		}
	}
	s.accounts = accounts
	return accounts, nil
}

// callers must hold s.mu.
func (s *Store) save(ctx context.Context, accounts []Account) error {
	if err := core.SaveJSON(ctx, s.kv, StorageKey, accounts); err != nil {
		return err
	}
	s.accounts = accounts
	return nil
}

// Reload refreshes the in-memory sequence from the backend.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.load(ctx)
	return err
}

// All returns a copy of the sequence as of the last Reload or mutation.
func (s *Store) All() []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]Account, len(s.accounts))
	copy(accounts, s.accounts)
	return accounts
}

// Register creates a teacher account.
// It fails with ErrUsernameExists if any account, whatever its role, has the same username.
func (s *Store) Register(ctx context.Context, username, password string) (Account, error) {
	core.CleanStrings(&username, &password)

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.load(ctx)
	if err != nil {
		return Account{}, err
	}
	for _, acc := range accounts {
		if acc.Username == username {
			return Account{}, core.NewValidationError(ErrUsernameExists, core.FieldError{Field: "username", Error: ErrUsernameExists.Error()})
		}
	}

	acc := Account{Username: username, Password: password, Role: RoleTeacher}
	if err := s.save(ctx, append(accounts, acc)); err != nil {
		return Account{}, err
	}
	return acc, nil
}

// Authenticate returns the first account, in insertion order, matching all of
// username, password and role exactly, or ErrInvalidCredentials.
func (s *Store) Authenticate(ctx context.Context, username, password string, role Role) (Account, error) {
	core.CleanStrings(&username, &password)

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.load(ctx)
	if err != nil {
		return Account{}, err
	}
	for _, acc := range accounts {
		if acc.matches(username, password, role) {
			return acc, nil
		}
	}
	return Account{}, ErrInvalidCredentials
}

// ParentExists reports whether a parent account with `username` exists.
// Teacher accounts with the same username are ignored.
func (s *Store) ParentExists(ctx context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	return parentIndex(accounts, username) >= 0, nil
}

// CreateParent creates the parent account linked to a student.
// Only parent accounts count as duplicates (ErrParentUsernameExists).
func (s *Store) CreateParent(ctx context.Context, username, password string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.load(ctx)
	if err != nil {
		return Account{}, err
	}
	if parentIndex(accounts, username) >= 0 {
		return Account{}, core.NewValidationError(ErrParentUsernameExists, core.FieldError{Field: "parentUsername", Error: ErrParentUsernameExists.Error()})
	}

	acc := Account{Username: username, Password: password, Role: RoleParent}
	if err := s.save(ctx, append(accounts, acc)); err != nil {
		return Account{}, err
	}
	return acc, nil
}

// DeleteParentAccountFor removes every parent account named `parentUsername`
// and returns how many were removed. Nothing is written if none matched.
func (s *Store) DeleteParentAccountFor(ctx context.Context, parentUsername string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	kept := make([]Account, 0, len(accounts))
	for _, acc := range accounts {
		if acc.IsParent() && acc.Username == parentUsername {
			continue
		}
		kept = append(kept, acc)
	}

	removed := len(accounts) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.save(ctx, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

func parentIndex(accounts []Account, username string) int {
	for i, acc := range accounts {
		if acc.IsParent() && acc.Username == username {
			return i
		}
	}
	return -1
}
