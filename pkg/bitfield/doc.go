// Package bitfield extracts fixed-width fields from packed bytes.
//
// Fields are numbered from the least significant end of the byte:
// field 0 of width 2 is bits 0-1, field 1 is bits 2-3, and so on.
//
// Usage:
//
//	m := bitfield.Mask(2, 1)      // 0x0C
//	v := bitfield.Field(b, 2, 1)  // (b & 0x0C) >> 2
package bitfield
