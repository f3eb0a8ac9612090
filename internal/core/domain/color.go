package domain

// Channel intensities used by the decoder. Values are 16-bit.
const (
	ChannelHalf    uint16 = 0x7FFF
	ChannelFull    uint16 = 0xFFFF
	ZeroPageBoost  uint16 = 0x8000
	ChannelUnlit   uint16 = 0
	channelMaxFull uint32 = 0xFFFF
)

// Color is a 16-bit RGB triple. Grayscale encodings only use R.
type Color struct {
	R, G, B uint16
}

// Predefined slot colors.
var (
	Black    = Color{}
	Green    = Color{G: ChannelHalf}
	Red      = Color{R: ChannelHalf}
	Blue     = Color{B: ChannelHalf}
	White    = Color{R: ChannelFull, G: ChannelFull, B: ChannelFull}
	GrayFull = Color{R: ChannelFull}
)

// Boost adds ZeroPageBoost to every lit channel, saturating at 0xFFFF.
// An unlit color stays black.
func (c Color) Boost() Color {
	return Color{
		R: boostChannel(c.R),
		G: boostChannel(c.G),
		B: boostChannel(c.B),
	}
}

func boostChannel(v uint16) uint16 {
	if v == ChannelUnlit {
		return v
	}
	sum := uint32(v) + uint32(ZeroPageBoost)
	if sum > channelMaxFull {
		return ChannelFull
	}
	return uint16(sum)
}

// PixelBuffer is the reusable frame buffer, one Color per slot in row-major order.
type PixelBuffer struct {
	Size      int
	Grayscale bool
	Pix       []Color
}

// NewPixelBuffer allocates a size x size buffer.
func NewPixelBuffer(size int, grayscale bool) *PixelBuffer {
	return &PixelBuffer{
		Size:      size,
		Grayscale: grayscale,
		Pix:       make([]Color, size*size),
	}
}

// Capacity returns the number of slots the buffer can hold.
func (b *PixelBuffer) Capacity() int {
	return len(b.Pix)
}

// Reset paints the whole buffer black.
func (b *PixelBuffer) Reset() {
	clear(b.Pix)
}

// Set stores c at linear index i. Out of range indexes are ignored.
func (b *PixelBuffer) Set(i int, c Color) {
	if i >= 0 && i < len(b.Pix) {
		b.Pix[i] = c
	}
}

// At returns the color at column x, row y.
func (b *PixelBuffer) At(x, y int) Color {
	return b.Pix[y*b.Size+x]
}
