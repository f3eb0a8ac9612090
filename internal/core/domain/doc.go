// Package domain defines the core domain models for wssviz.
//
// Domain models are pure values without IO dependencies. This package contains:
//
//   - PageState, Encoding, Slot: the decoded page-state vocabulary
//   - Color, PixelBuffer: the reusable frame buffer
//   - Snapshot, FrameStats, Series: per-frame inputs and statistics
//   - Errors: coded Error plus the typed DecodeError and OverflowError
package domain
