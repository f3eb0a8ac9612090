package bitfield

// Count returns how many fields of the given width fit in one byte.
// Widths that do not divide 8 return 0.
func Count(width uint) int {
	if width == 0 || width > 8 || 8%width != 0 {
		return 0
	}
	return int(8 / width)
}

// Mask returns the in-place mask of field i.
func Mask(width, i uint) uint8 {
	if width >= 8 {
		return 0xFF
	}
	return uint8((1<<width)-1) << (width * i)
}

// Masked returns b with everything but field i cleared, left in place.
func Masked(b byte, width, i uint) uint8 {
	return b & Mask(width, i)
}

// Field returns field i shifted down to bit 0.
func Field(b byte, width, i uint) uint8 {
	if width >= 8 {
		return b
	}
	return Masked(b, width, i) >> (width * i)
}
