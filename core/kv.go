package core

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/pkg/errors"
)

// ErrKeyNotFound is returned by KVStore.Get when a key has no value.
var ErrKeyNotFound = stderrors.New("key not found")

// KVStore is the persistence backend of the stores: a flat string to string map,
// read and written one whole value at a time.
type KVStore interface {
	// Get returns ErrKeyNotFound if `key` is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete is a noop if `key` is absent.
	Delete(ctx context.Context, key string) error
}

// LoadJSON decodes the value stored at `key` into `v`.
// found is false (and `v` untouched) if the key is absent.
func LoadJSON(ctx context.Context, kv KVStore, key string, v interface{}) (found bool, err error) {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		if stderrors.Is(err, ErrKeyNotFound) {
			return false, nil
		}
		return false, errors.Wrapf(err, "reading %q", key)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return true, errors.Wrapf(err, "decoding %q", key)
	}
	return true, nil
}

// SaveJSON encodes `v` and stores it at `key`, replacing the previous value.
func SaveJSON(ctx context.Context, kv KVStore, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding %q", key)
	}
	if err := kv.Set(ctx, key, string(data)); err != nil {
		return errors.Wrapf(err, "writing %q", key)
	}
	return nil
}
