package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/yndnr/wssviz/internal/core/domain"
	"github.com/yndnr/wssviz/internal/storage"
	"github.com/yndnr/wssviz/internal/telemetry/logger"
)

const runPrefix = "run/"

// ErrRunNotFound is returned by Get for an unknown run ID.
var ErrRunNotFound = domain.NewError("WSS-RUN-4040", "run not found")

// Store persists runs and their per-frame statistics.
type Store struct {
	kv storage.Engine
}

// NewStore wraps an open KV engine. The caller keeps ownership of kv.
func NewStore(kv storage.Engine) *Store {
	return &Store{kv: kv}
}

func runKey(id string) []byte {
	return []byte(runPrefix + id)
}

func frameKey(id string, idx int) []byte {
	return []byte(fmt.Sprintf("%s%s/frame/%06d", runPrefix, id, idx))
}

// Put stores run and its frames in one batch, replacing earlier frames.
func (s *Store) Put(ctx context.Context, run *domain.Run, frames []domain.FrameRecord) error {
	if !domain.IsValidRunID(run.ID) {
		return domain.ErrInvalidRunID.With(run.ID)
	}

	if _, err := s.kv.DeletePrefix(ctx, []byte(runPrefix+run.ID+"/")); err != nil {
		return fmt.Errorf("history: clear frames: %w", err)
	}

	pairs := make([]storage.Pair, 0, len(frames)+1)
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("history: marshal run: %w", err)
	}
	pairs = append(pairs, storage.Pair{Key: runKey(run.ID), Value: data})

	for _, f := range frames {
		data, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("history: marshal frame %d: %w", f.Index, err)
		}
		pairs = append(pairs, storage.Pair{Key: frameKey(run.ID, f.Index), Value: data})
	}

	if err := s.kv.PutBatch(ctx, pairs); err != nil {
		return fmt.Errorf("history: write run: %w", err)
	}
	return nil
}

// List returns every run, newest first. Frames are not loaded.
func (s *Store) List(ctx context.Context) ([]domain.Run, error) {
	var (
		runs   []domain.Run
		decErr error
	)
	err := s.kv.Scan(ctx, []byte(runPrefix), func(key, value []byte) bool {
		// skip frame records
		if strings.Contains(string(key[len(runPrefix):]), "/") {
			return true
		}
		var r domain.Run
		if err := json.Unmarshal(value, &r); err != nil {
			decErr = fmt.Errorf("history: decode %s: %w", key, err)
			return false
		}
		runs = append(runs, r)
		return true
	})
	if err != nil {
		return nil, err
	}
	if decErr != nil {
		return nil, decErr
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].ID > runs[j].ID
	})
	return runs, nil
}

// Get returns one run and its frames in frame order.
func (s *Store) Get(ctx context.Context, id string) (*domain.Run, []domain.FrameRecord, error) {
	data, err := s.kv.Get(ctx, runKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, nil, ErrRunNotFound.With(id)
		}
		return nil, nil, err
	}

	var run domain.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, nil, fmt.Errorf("history: decode run %s: %w", id, err)
	}

	var (
		frames []domain.FrameRecord
		decErr error
	)
	err = s.kv.Scan(ctx, []byte(runPrefix+id+"/frame/"), func(key, value []byte) bool {
		var f domain.FrameRecord
		if err := json.Unmarshal(value, &f); err != nil {
			decErr = fmt.Errorf("history: decode %s: %w", key, err)
			return false
		}
		frames = append(frames, f)
		return true
	})
	if err != nil {
		return nil, nil, err
	}
	if decErr != nil {
		return nil, nil, decErr
	}

	return &run, frames, nil
}

// Delete removes a run and its frames.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.kv.Get(ctx, runKey(id)); err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return ErrRunNotFound.With(id)
		}
		return err
	}
	if _, err := s.kv.DeletePrefix(ctx, []byte(runPrefix+id+"/")); err != nil {
		return err
	}
	return s.kv.Delete(ctx, runKey(id))
}

// Open opens the badger engine at dir and returns a store plus its closer.
func Open(dir string, log logger.Logger) (*Store, func() error, error) {
	db, err := storage.OpenBadger(storage.DefaultOptions(dir), log)
	if err != nil {
		return nil, nil, fmt.Errorf("history: %w", err)
	}
	return NewStore(db), db.Close, nil
}
