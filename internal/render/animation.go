package render

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"io"
	"os"

	"github.com/yndnr/wssviz/internal/core/domain"
)

// ErrFrameSize is returned when a frame does not match the first frame's size.
var ErrFrameSize = errors.New("render: frame size differs from first frame")

// ErrNoFrames is returned when encoding an empty animation.
var ErrNoFrames = errors.New("render: animation has no frames")

// Animation accumulates frames for an animated GIF.
type Animation struct {
	frames []*image.Paletted
	delay  int
	bounds image.Rectangle
}

// NewAnimation creates an animation with the standard frame delay.
func NewAnimation() *Animation {
	return &Animation{delay: domain.FrameDelay}
}

// Add quantizes img to the frame palette and appends it.
func (a *Animation) Add(img image.Image) error {
	b := img.Bounds()
	if len(a.frames) == 0 {
		a.bounds = b
	} else if b.Dx() != a.bounds.Dx() || b.Dy() != a.bounds.Dy() {
		return fmt.Errorf("%w: got %dx%d, want %dx%d",
			ErrFrameSize, b.Dx(), b.Dy(), a.bounds.Dx(), a.bounds.Dy())
	}

	p := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), FramePalette())
	draw.Draw(p, p.Rect, img, b.Min, draw.Src)
	a.frames = append(a.frames, p)
	return nil
}

// Len returns the number of frames.
func (a *Animation) Len() int {
	return len(a.frames)
}

// Delay returns the inter-frame delay in centiseconds.
func (a *Animation) Delay() int {
	return a.delay
}

// Encode writes the animation as a looping GIF.
func (a *Animation) Encode(w io.Writer) error {
	if len(a.frames) == 0 {
		return ErrNoFrames
	}

	delays := make([]int, len(a.frames))
	for i := range delays {
		delays[i] = a.delay
	}

	return gif.EncodeAll(w, &gif.GIF{
		Image:     a.frames,
		Delay:     delays,
		LoopCount: 0,
	})
}

// WriteFile encodes the animation to path.
func (a *Animation) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := a.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
