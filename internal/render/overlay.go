package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// LabelColor is the fill of caption and elapsed-time labels.
var LabelColor = color.RGBA{R: 0xFF, A: 0xFF}

// Annotator draws the static caption and per-frame elapsed label into the
// margin strip of a frame.
type Annotator struct {
	face    font.Face
	margin  int
	padding int
	color   color.Color
}

// NewAnnotator creates an annotator sized for a margin strip of the given height.
func NewAnnotator(margin int) (*Annotator, error) {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse label font: %w", err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(margin) * 0.6,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create label face: %w", err)
	}

	return &Annotator{
		face:    face,
		margin:  margin,
		padding: max(margin/8, 1),
		color:   LabelColor,
	}, nil
}

// Margin returns the strip height the annotator was sized for. A nil
// Annotator draws nothing and needs no strip.
func (a *Annotator) Margin() int {
	if a == nil {
		return 0
	}
	return a.margin
}

// Draw writes caption at the bottom-left and elapsed at the bottom-right of img.
// Either label may be empty.
func (a *Annotator) Draw(img draw.Image, caption, elapsed string) {
	b := img.Bounds()
	baseline := b.Max.Y - a.padding - a.face.Metrics().Descent.Ceil()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(a.color),
		Face: a.face,
	}

	if caption != "" {
		d.Dot = fixed.P(b.Min.X+a.padding, baseline)
		d.DrawString(caption)
	}
	if elapsed != "" {
		w := d.MeasureString(elapsed).Ceil()
		d.Dot = fixed.P(b.Max.X-a.padding-w, baseline)
		d.DrawString(elapsed)
	}
}

// Close releases the font face.
func (a *Annotator) Close() error {
	return a.face.Close()
}
