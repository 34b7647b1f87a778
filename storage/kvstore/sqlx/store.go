package sqlxkv

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // registers the "postgres" driver
	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver
	"github.com/pkg/errors"

	"github.com/trezcool/edutrack/core"
)

var tableNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store keeps the keys as rows of a two-column table.
type Store struct {
	db    *sqlx.DB
	table string
}

var _ core.KVStore = (*Store)(nil) // interface compliance check

// Open connects with the configured driver (lib/pq "postgres", "pgx" or "sqlite3"),
// waits for the database and creates the table if needed.
func Open(ctx context.Context, conf core.DatabaseConfig) (*Store, error) {
	driver := conf.Driver
	if driver == "" {
		driver = "postgres"
	}
	switch driver {
	case "postgres", "pgx":
	case "sqlite3":
		if dir := filepath.Dir(conf.URL); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.Wrap(err, "creating data directory")
			}
		}
		if !strings.Contains(conf.URL, "?") {
			conf.URL += "?_journal_mode=WAL&_busy_timeout=5000"
		}
	default:
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}
	db, err := sqlx.Open(driver, conf.URL)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	s, err := New(ctx, db, conf.Table)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database and creates the table if needed.
func New(ctx context.Context, db *sqlx.DB, table string) (*Store, error) {
	if !tableNameRegex.MatchString(table) {
		return nil, errors.Errorf("invalid table name %q", table)
	}
	s := &Store{db: db, table: table}
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value TEXT NOT NULL)`, table)
	if _, err := db.ExecContext(ctx, q); err != nil {
		return nil, errors.Wrap(err, "creating kv table")
	}
	return s, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, db *sqlx.DB) error {
	var err error
	maxAttempts := 10
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "DB ping")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}
	return errors.Wrap(err, "DB ping timeout")
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var val string
	q := s.db.Rebind(fmt.Sprintf(`SELECT value FROM %s WHERE key = ?`, s.table))
	if err := s.db.GetContext(ctx, &val, q, key); err != nil {
		if err == sql.ErrNoRows {
			return "", core.ErrKeyNotFound
		}
		return "", errors.Wrapf(err, "selecting %s", key)
	}
	return val, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	q := s.db.Rebind(fmt.Sprintf(
		`INSERT INTO %s (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, s.table))
	_, err := s.db.ExecContext(ctx, q, key, value)
	return errors.Wrapf(err, "upserting %s", key)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	q := s.db.Rebind(fmt.Sprintf(`DELETE FROM %s WHERE key = ?`, s.table))
	_, err := s.db.ExecContext(ctx, q, key)
	return errors.Wrapf(err, "deleting %s", key)
}

func (s *Store) Close() error {
	return s.db.Close()
}
