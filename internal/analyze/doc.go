// Package analyze computes content statistics over raw memory dumps.
//
// Dumps live under <raw_root>/<pid>/, one file per mapped region. Every
// file is split into 4 KiB pages; a trailing partial page is ignored.
//
// Files are hashed concurrently with murmur3; the per-content counts live in
// a sharded map keyed by the 128-bit digest.
package analyze
