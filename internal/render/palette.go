package render

import (
	"image/color"
	"sync"
)

var (
	paletteOnce sync.Once
	framePal    color.Palette
)

// FramePalette returns the fixed GIF palette: black, white, every slot color
// at half and boosted intensity, a red ramp for antialiased labels and a gray
// ramp for presence frames.
func FramePalette() color.Palette {
	paletteOnce.Do(func() {
		seen := make(map[color.RGBA]bool)
		add := func(c color.RGBA) {
			if !seen[c] && len(framePal) < 256 {
				seen[c] = true
				framePal = append(framePal, c)
			}
		}

		add(color.RGBA{A: 0xFF})
		add(color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
		for _, v := range []uint8{0x7F, 0xFF} {
			add(color.RGBA{R: v, A: 0xFF})
			add(color.RGBA{G: v, A: 0xFF})
			add(color.RGBA{B: v, A: 0xFF})
		}
		for i := 0; i < 64; i++ {
			v := uint8(i * 4)
			add(color.RGBA{R: v, A: 0xFF})
			add(color.RGBA{R: v, G: v, B: v, A: 0xFF})
		}
	})
	return framePal
}
