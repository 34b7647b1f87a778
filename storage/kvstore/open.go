package kvstore

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/edutrack/core"
	"github.com/trezcool/edutrack/storage/kvstore/file"
	"github.com/trezcool/edutrack/storage/kvstore/memory"
	"github.com/trezcool/edutrack/storage/kvstore/redis"
	"github.com/trezcool/edutrack/storage/kvstore/sqlx"
)

// Open returns the persistent store selected by conf.Storage.Backend,
// and a func releasing its resources.
func Open(ctx context.Context, conf *core.Config) (core.KVStore, func() error, error) {
	noop := func() error { return nil }

	switch conf.Storage.Backend {
	case core.StorageMemory:
		return memorykv.Open(), noop, nil
	case core.StorageFile, "":
		kv, err := filekv.Open(conf.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		return kv, noop, nil
	case core.StorageRedis:
		kv, err := rediskv.Open(ctx, conf.Redis)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv.Close, nil
	case core.StoragePostgres:
		kv, err := sqlxkv.Open(ctx, conf.Database)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv.Close, nil
	case core.StorageSQLite:
		dbConf := conf.Database
		dbConf.Driver = "sqlite3"
		if dbConf.URL == "" {
			dbConf.URL = "edutrack.db"
		}
		kv, err := sqlxkv.Open(ctx, dbConf)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv.Close, nil
	default:
		return nil, nil, errors.Errorf("unknown storage backend %q", conf.Storage.Backend)
	}
}
