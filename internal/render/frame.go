package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/yndnr/wssviz/internal/core/domain"
)

// minMargin keeps labels readable on small frames.
const minMargin = 16

// Margin returns the height of the label strip for a frame of the given side:
// about 1/30 of the side, never less than minMargin.
func Margin(size int) int {
	m := (size + 29) / 30
	if m < minMargin {
		return minMargin
	}
	return m
}

// NewFrameImage copies buf into a new image with margin extra black rows at
// the bottom. Grayscale buffers produce *image.Gray16, others *image.RGBA64.
func NewFrameImage(buf *domain.PixelBuffer, margin int) draw.Image {
	rect := image.Rect(0, 0, buf.Size, buf.Size+margin)

	if buf.Grayscale {
		img := image.NewGray16(rect)
		for i, c := range buf.Pix {
			img.SetGray16(i%buf.Size, i/buf.Size, color.Gray16{Y: c.R})
		}
		return img
	}

	img := image.NewRGBA64(rect)
	draw.Draw(img, rect, image.Black, image.Point{}, draw.Src)
	for i, c := range buf.Pix {
		img.SetRGBA64(i%buf.Size, i/buf.Size, color.RGBA64{R: c.R, G: c.G, B: c.B, A: 0xFFFF})
	}
	return img
}
