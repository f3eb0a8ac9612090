// Package cmap provides a concurrent-safe sharded map.
//
// Keys are spread over a power-of-two number of shards, each guarded by its
// own RWMutex, so writers on different shards never contend. The caller
// supplies the shard hash, which lets keys that already are hashes (such as
// page content digests) pick a shard without hashing twice.
//
// Usage:
//
//	m := cmap.New[digest, int](func(d digest) uint64 { return d.lo }, 0)
//	m.Update(d, func(n int, _ bool) int { return n + 1 })
//	m.Range(func(d digest, n int) bool { ...; return true })
//
// All operations are safe for concurrent use. Range holds one shard's read
// lock at a time and so sees a per-shard consistent view.
package cmap
