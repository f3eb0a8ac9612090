// Package service provides the decode and render services for wssviz.
//
// This package contains:
//
//   - Decoder: snapshot bytes to page slots, colors and frame statistics
//   - Pipeline: the render run (stills, GIF, chart, metrics, history)
//   - Inspect: per-snapshot statistics without rendering
//
// Storage is reached through the SnapshotSource and RunRecorder
// interfaces so runs can be tested against temporary directories.
package service
