package cmap

import (
	"runtime"
	"sync"
)

// DefaultShardCount is the lower bound on the shard count New picks itself.
const DefaultShardCount = 16

// Map is a hash map split into independently locked shards.
type Map[K comparable, V any] struct {
	hash   func(K) uint64
	mask   uint64
	shards []shard[K, V]
}

type shard[K comparable, V any] struct {
	sync.RWMutex
	m map[K]V
}

// New returns a map that places keys by hash. shardCount must be a power
// of 2; any other value selects at least DefaultShardCount shards, four per
// CPU.
func New[K comparable, V any](hash func(K) uint64, shardCount int) *Map[K, V] {
	if shardCount <= 0 || shardCount&(shardCount-1) != 0 {
		shardCount = DefaultShardCount
		for shardCount < 4*runtime.GOMAXPROCS(0) {
			shardCount *= 2
		}
	}
	shards := make([]shard[K, V], shardCount)
	for i := range shards {
		shards[i].m = make(map[K]V)
	}
	return &Map[K, V]{hash: hash, mask: uint64(shardCount) - 1, shards: shards}
}

func (m *Map[K, V]) shardFor(key K) *shard[K, V] {
	return &m.shards[m.hash(key)&m.mask]
}

// Get returns the value stored under key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	s := m.shardFor(key)
	s.RLock()
	v, ok := s.m[key]
	s.RUnlock()
	return v, ok
}

// Set stores value under key.
func (m *Map[K, V]) Set(key K, value V) {
	s := m.shardFor(key)
	s.Lock()
	s.m[key] = value
	s.Unlock()
}

// Update stores fn(current, exists) under key and returns it. fn runs with
// the shard locked and must not use m.
func (m *Map[K, V]) Update(key K, fn func(value V, exists bool) V) V {
	s := m.shardFor(key)
	s.Lock()
	defer s.Unlock()
	cur, ok := s.m[key]
	next := fn(cur, ok)
	s.m[key] = next
	return next
}

// Count returns the number of keys.
func (m *Map[K, V]) Count() int {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.RLock()
		n += len(s.m)
		s.RUnlock()
	}
	return n
}

// Range calls fn for each entry until it returns false. Each shard is
// read-locked while it is visited, so fn must not use m.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	for i := range m.shards {
		if !m.shards[i].each(fn) {
			return
		}
	}
}

func (s *shard[K, V]) each(fn func(K, V) bool) bool {
	s.RLock()
	defer s.RUnlock()
	for k, v := range s.m {
		if !fn(k, v) {
			return false
		}
	}
	return true
}

// ShardCount returns the number of shards.
func (m *Map[K, V]) ShardCount() int {
	return len(m.shards)
}
