// Package snapshot reads the working-set sampler's on-disk output.
//
// Layout:
//
//	<root>/<pid>/<timestamp>/<0xaddr>
//
// Each timestamp directory is one sample of the process. Its name is either
// Unix epoch seconds ("1550000000") or an RFC3339 time as written by the
// sampler ("2019-02-12T19:33:20+00:00"). Each file inside holds the packed
// page states of one mapped region, named by its start address in hex.
//
// Directories whose name is not a timestamp are ignored.
package snapshot
