// Package storage persists session state as JSON values under string keys.
// Backends only move bytes; encoding, validation and fallback to defaults
// live in LoadJSON and SaveJSON.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Keys under which session state is stored.
const (
	KeyDataset = "promptDiceData"
	KeyHistory = "promptHistory"
)

// ErrNotFound is returned by Get when a key has never been written.
var ErrNotFound = errors.New("key not found")

// KV is a durable key-value store scoped to one client.
type KV interface {
	// Get returns the raw value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value for key. Last write wins.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Driver string
	// Path is the state directory for the file driver and the database file
	// for the sqlite driver.
	Path string
	// RedisAddr and RedisPrefix configure the redis driver.
	RedisAddr   string
	RedisPrefix string
}

// Open returns the backend named by opts.Driver. On error the returned KV
// is a true nil.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile, "":
		fs, err := NewFileStore(opts.Path)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case DriverSQLite:
		db, err := OpenSQLite(opts.Path)
		if err != nil {
			return nil, err
		}
		return db, nil
	case DriverRedis:
		rs, err := OpenRedis(ctx, opts.RedisAddr, opts.RedisPrefix)
		if err != nil {
			return nil, err
		}
		return rs, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
