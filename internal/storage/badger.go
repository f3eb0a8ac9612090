package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/badger/v3"

	"github.com/yndnr/wssviz/internal/telemetry/logger"
)

// Badger is an Engine backed by Badger v3.
type Badger struct {
	db    *badger.DB
	opts  Options
	log   logger.Logger
	dirty atomic.Bool // set by deletes; Close runs value log GC

	mu   sync.RWMutex // held for reading by every call, for writing by Close
	done bool
}

var _ Engine = (*Badger)(nil)

// OpenBadger opens or creates the database described by opts.
func OpenBadger(opts Options, log logger.Logger) (*Badger, error) {
	if opts.Dir == "" && !opts.InMemory {
		return nil, errors.New("badger: dir is required")
	}
	if log == nil {
		log = logger.Default()
	}

	bo := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		bo = badger.DefaultOptions("").WithInMemory(true)
	}
	bo = bo.WithLogger(badgerLog{log.With("component", "badger")}).
		WithSyncWrites(opts.SyncWrites)
	if opts.BlockCacheSize > 0 {
		bo = bo.WithBlockCacheSize(opts.BlockCacheSize)
	}
	if opts.ValueLogFileSize > 0 {
		bo = bo.WithValueLogFileSize(opts.ValueLogFileSize)
	}

	db, err := badger.Open(bo)
	if err != nil {
		return nil, fmt.Errorf("badger: open %s: %w", opts.Dir, err)
	}
	log.Debug("badger opened", "dir", opts.Dir, "in_memory", opts.InMemory)
	return &Badger{db: db, opts: opts, log: log}, nil
}

// use runs fn under the read lock unless the engine is closed.
func (b *Badger) use(fn func() error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.done {
		return ErrClosed
	}
	return fn()
}

func (b *Badger) Get(ctx context.Context, key []byte) ([]byte, error) {
	var value []byte
	err := b.use(func() error {
		return b.db.View(func(txn *badger.Txn) error {
			item, err := txn.Get(key)
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrKeyNotFound
			}
			if err != nil {
				return err
			}
			value, err = item.ValueCopy(nil)
			return err
		})
	})
	return value, err
}

// PutBatch writes pairs in one transaction so a run and its frames land
// together.
func (b *Badger) PutBatch(ctx context.Context, pairs []Pair) error {
	return b.use(func() error {
		return b.db.Update(func(txn *badger.Txn) error {
			for _, p := range pairs {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := txn.Set(p.Key, p.Value); err != nil {
					return fmt.Errorf("badger: set %s: %w", p.Key, err)
				}
			}
			return nil
		})
	})
}

func (b *Badger) Delete(ctx context.Context, key []byte) error {
	return b.use(func() error {
		b.dirty.Store(true)
		return b.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(key)
		})
	})
}

func (b *Badger) DeletePrefix(ctx context.Context, prefix []byte) (int, error) {
	var n int
	err := b.use(func() error {
		var keys [][]byte
		err := b.db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
			defer it.Close()
			for it.Rewind(); it.Valid(); it.Next() {
				keys = append(keys, it.Item().KeyCopy(nil))
			}
			return nil
		})
		if err != nil || len(keys) == 0 {
			return err
		}

		b.dirty.Store(true)
		wb := b.db.NewWriteBatch()
		defer wb.Cancel()
		for _, k := range keys {
			if err := wb.Delete(k); err != nil {
				return err
			}
		}
		if err := wb.Flush(); err != nil {
			return err
		}
		n = len(keys)
		return nil
	})
	if err == nil && n > 0 {
		b.log.Debug("deleted keys", "prefix", string(prefix), "count", n)
	}
	return n, err
}

func (b *Badger) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error {
	return b.use(func() error {
		return b.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Rewind(); it.Valid(); it.Next() {
				if err := ctx.Err(); err != nil {
					return err
				}
				value, err := it.Item().ValueCopy(nil)
				if err != nil {
					return err
				}
				if !fn(it.Item().KeyCopy(nil), value) {
					return nil
				}
			}
			return nil
		})
	})
}

// Close runs value log GC if anything was deleted, then closes the
// database. Later calls return nil.
func (b *Badger) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return nil
	}
	b.done = true

	if b.dirty.Load() && !b.opts.InMemory {
		b.collect()
	}
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("badger: close: %w", err)
	}
	return nil
}

// collect rewrites value log files until badger finds nothing to reclaim.
func (b *Badger) collect() {
	for rounds := 0; ; rounds++ {
		err := b.db.RunValueLogGC(b.opts.GCDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			b.log.Debug("value log gc done", "rewrites", rounds)
			return
		}
		if err != nil {
			b.log.Warn("value log gc failed", "error", err)
			return
		}
	}
}

// badgerLog routes badger's own logging; its info output is demoted to
// debug.
type badgerLog struct{ l logger.Logger }

func (b badgerLog) Errorf(f string, a ...any)   { b.l.Error(fmt.Sprintf(f, a...)) }
func (b badgerLog) Warningf(f string, a ...any) { b.l.Warn(fmt.Sprintf(f, a...)) }
func (b badgerLog) Infof(f string, a ...any)    { b.l.Debug(fmt.Sprintf(f, a...)) }
func (b badgerLog) Debugf(f string, a ...any)   { b.l.Debug(fmt.Sprintf(f, a...)) }
