package render

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// StillFormat is the file format of per-frame images.
type StillFormat string

const (
	FormatPNG  StillFormat = "png"
	FormatJPEG StillFormat = "jpg"
)

// ParseStillFormat parses png, jpg or jpeg; empty means png.
func ParseStillFormat(s string) (StillFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("unknown image format %q (want png or jpg)", s)
	}
}

// jpegQuality is used for JPEG stills.
const jpegQuality = 90

// StillWriter writes one numbered image file per frame.
type StillWriter struct {
	dir    string
	format StillFormat
	digits int
}

// NewStillWriter creates the output directory and a writer for total frames.
// Frame numbers are zero-padded to at least three digits.
func NewStillWriter(dir string, format StillFormat, total int) (*StillWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	digits := len(fmt.Sprint(max(total-1, 0)))
	if digits < 3 {
		digits = 3
	}
	return &StillWriter{dir: dir, format: format, digits: digits}, nil
}

// Name returns the file name of frame idx, e.g. "007.png".
func (w *StillWriter) Name(idx int) string {
	return fmt.Sprintf("%0*d.%s", w.digits, idx, w.format)
}

// Write encodes img as frame idx and returns the written path.
func (w *StillWriter) Write(idx int, img image.Image) (string, error) {
	path := filepath.Join(w.dir, w.Name(idx))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := EncodeStill(f, img, w.format); err != nil {
		f.Close()
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// EncodeStill encodes img in the given format.
func EncodeStill(w io.Writer, img image.Image, format StillFormat) error {
	switch format {
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	default:
		return (&png.Encoder{CompressionLevel: png.BestSpeed}).Encode(w, img)
	}
}
