package storage

import (
	"context"
	"errors"
)

var (
	// ErrKeyNotFound is returned by Get for a missing key.
	ErrKeyNotFound = errors.New("key not found")
	// ErrClosed is returned by every call after Close.
	ErrClosed = errors.New("kv engine closed")
)

// Engine is an ordered key-value store. Implementations are safe for
// concurrent use.
type Engine interface {
	// Get returns ErrKeyNotFound when key is absent.
	Get(ctx context.Context, key []byte) ([]byte, error)
	// PutBatch writes all pairs or none.
	PutBatch(ctx context.Context, pairs []Pair) error
	Delete(ctx context.Context, key []byte) error
	// DeletePrefix removes every key under prefix and returns how many.
	DeletePrefix(ctx context.Context, prefix []byte) (int, error)
	// Scan visits keys under prefix in order until fn returns false.
	Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error
	Close() error
}

// Pair is one key and its value.
type Pair struct {
	Key   []byte
	Value []byte
}

// Options configures OpenBadger.
type Options struct {
	Dir      string
	InMemory bool // Dir is ignored when set

	SyncWrites       bool
	BlockCacheSize   int64
	ValueLogFileSize int64

	// GCDiscardRatio is passed to value log GC, which runs on Close after
	// any deletes.
	GCDiscardRatio float64
}

// DefaultOptions sizes Badger for run history, which stays small.
func DefaultOptions(dir string) Options {
	return Options{
		Dir:              dir,
		BlockCacheSize:   16 << 20,
		ValueLogFileSize: 64 << 20,
		GCDiscardRatio:   0.5,
	}
}
