// Package preference holds display-only settings. They are not part of the records.
package preference

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	"github.com/trezcool/edutrack/core"
)

const DarkModeKey = "darkMode"

// DarkMode reports whether dark mode is on. Anything but "true" is off.
func DarkMode(ctx context.Context, kv core.KVStore) (bool, error) {
	val, err := kv.Get(ctx, DarkModeKey)
	if err != nil {
		if errors.Is(err, core.ErrKeyNotFound) {
			return false, nil
		}
		return false, errors.Wrap(err, "reading dark mode")
	}
	return val == "true", nil
}

// ToggleDarkMode flips the setting and returns the new value.
func ToggleDarkMode(ctx context.Context, kv core.KVStore) (bool, error) {
	on, err := DarkMode(ctx, kv)
	if err != nil {
		return false, err
	}
	on = !on
	if err := kv.Set(ctx, DarkModeKey, strconv.FormatBool(on)); err != nil {
		return false, errors.Wrap(err, "writing dark mode")
	}
	return on, nil
}
