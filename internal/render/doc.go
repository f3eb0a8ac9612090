// Package render turns decoded pixel buffers into images.
//
// This package contains:
//
//   - frame.go: PixelBuffer to image.RGBA64 / image.Gray16, with an optional
//     bottom margin strip for labels
//   - overlay.go: caption and elapsed-time labels (Go Bold via x/image/opentype)
//   - still.go: numbered per-frame PNG/JPEG files
//   - animation.go: animated GIF assembly with a fixed palette
//
// Every frame of a run shares the same dimensions; the animation delay is
// constant.
package render
