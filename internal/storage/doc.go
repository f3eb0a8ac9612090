// Package storage provides the embedded key-value engine used by wssviz.
//
// Badger implements Engine over Badger v3 with a logger bridge, prefix
// scans and deletes, and value log GC on Close. The history subpackage
// encodes run records on top of it.
package storage
