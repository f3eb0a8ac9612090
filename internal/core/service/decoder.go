package service

import (
	"fmt"
	"strings"

	"github.com/yndnr/wssviz/internal/core/domain"
	"github.com/yndnr/wssviz/pkg/bitfield"
)

// OverflowPolicy decides what happens when a snapshot holds more slots than
// the frame buffer.
type OverflowPolicy string

const (
	// OverflowFail rejects the snapshot with a *domain.OverflowError.
	OverflowFail OverflowPolicy = "error"
	// OverflowTruncate drops the slots that do not fit.
	OverflowTruncate OverflowPolicy = "truncate"
)

// ParseOverflowPolicy parses a policy name; empty means OverflowFail.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch OverflowPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", OverflowFail:
		return OverflowFail, nil
	case OverflowTruncate:
		return OverflowTruncate, nil
	default:
		return "", fmt.Errorf("unknown overflow policy %q (want error or truncate)", s)
	}
}

// DecoderOptions configures a Decoder.
type DecoderOptions struct {
	Encoding domain.Encoding
	// Swapped accepts activity value 0b01 as StateSwapped in the
	// activity-zero encoding instead of failing.
	Swapped  bool
	Overflow OverflowPolicy
}

// DecodeResult summarizes one decoded frame.
type DecodeResult struct {
	Stats domain.FrameStats
	// Dropped counts slots that did not fit the buffer (truncate policy only).
	Dropped int
}

// Decoder maps snapshot bytes to page slots.
//
// A Decoder holds no per-frame state and may be reused across frames.
type Decoder struct {
	enc      domain.Encoding
	width    uint
	perByte  int
	swapped  bool
	overflow OverflowPolicy
}

// NewDecoder creates a decoder for the given options.
func NewDecoder(opts DecoderOptions) (*Decoder, error) {
	if !opts.Encoding.Valid() {
		return nil, domain.ErrInvalidEncoding.With(opts.Encoding.String())
	}
	overflow := opts.Overflow
	if overflow == "" {
		overflow = OverflowFail
	}

	return &Decoder{
		enc:      opts.Encoding,
		width:    opts.Encoding.BitsPerSlot(),
		perByte:  opts.Encoding.SlotsPerByte(),
		swapped:  opts.Swapped,
		overflow: overflow,
	}, nil
}

// Encoding returns the decoder's encoding.
func (d *Decoder) Encoding() domain.Encoding {
	return d.enc
}

// SlotCount returns the number of slots n bytes decode to.
func (d *Decoder) SlotCount(n int) int {
	return n * d.perByte
}

// Slots calls fn for every slot of raw in byte-then-bit order.
// Iteration stops at the first decode error or error returned by fn.
func (d *Decoder) Slots(raw []byte, fn func(domain.Slot, domain.Color) error) error {
	idx := 0
	for off, b := range raw {
		for i := 0; i < d.perByte; i++ {
			slot, c, err := d.field(b, uint(i))
			if err != nil {
				err.Offset = off
				err.Slot = idx
				return err
			}
			slot.Index = idx
			if err := fn(slot, c); err != nil {
				return err
			}
			idx++
		}
	}
	return nil
}

// Decode clears buf and paints every slot of raw into it. Stats cover the
// painted slots only; slots past the buffer under OverflowTruncate are
// counted in Dropped.
//
// On a decode error the buffer holds the slots decoded so far and the error
// is a *domain.DecodeError.
func (d *Decoder) Decode(raw []byte, buf *domain.PixelBuffer) (DecodeResult, error) {
	var res DecodeResult

	slots := d.SlotCount(len(raw))
	capacity := buf.Capacity()
	if slots > capacity && d.overflow == OverflowFail {
		return res, &domain.OverflowError{Slots: slots, Capacity: capacity}
	}

	buf.Reset()
	err := d.Slots(raw, func(s domain.Slot, c domain.Color) error {
		if s.Index >= capacity {
			res.Dropped++
			return nil
		}
		res.Stats.Add(s)
		buf.Pix[s.Index] = c
		return nil
	})
	return res, err
}

// field decodes field i of b. The returned error has Offset and Slot unset.
func (d *Decoder) field(b byte, i uint) (domain.Slot, domain.Color, *domain.DecodeError) {
	switch d.enc {
	case domain.EncodingPresence:
		v := bitfield.Field(b, 1, i)
		if v != 0 {
			return domain.Slot{Value: v, State: domain.StatePresent}, domain.GrayFull, nil
		}
		return domain.Slot{Value: v, State: domain.StateAbsent}, domain.Black, nil

	case domain.EncodingActivity:
		mask := bitfield.Mask(2, i)
		m := b & mask
		v := bitfield.Field(b, 2, i)
		switch m {
		case 0:
			return domain.Slot{Value: v, State: domain.StateUnmapped}, domain.Black, nil
		case 0xAA & mask:
			return domain.Slot{Value: v, State: domain.StateMappedInactive}, domain.Green, nil
		case 0xFF & mask:
			return domain.Slot{Value: v, State: domain.StateActive}, domain.Red, nil
		}
		return domain.Slot{}, domain.Color{}, &domain.DecodeError{Encoding: d.enc, Value: v, Mask: mask}

	case domain.EncodingActivityZero:
		v := b & activityMask
		slot := domain.Slot{Value: v, Zero: b&zeroFlag != 0}
		var c domain.Color
		switch v {
		case activityUnmapped:
			slot.State, c = domain.StateUnmapped, domain.Black
		case activityIdle:
			slot.State, c = domain.StateMappedInactive, domain.Green
		case activityActive:
			slot.State, c = domain.StateActive, domain.Red
		case activitySwapped:
			if !d.swapped {
				return domain.Slot{}, domain.Color{}, &domain.DecodeError{Encoding: d.enc, Value: v, Mask: activityMask}
			}
			slot.State, c = domain.StateSwapped, domain.Blue
		}
		if slot.Zero {
			c = c.Boost()
		}
		return slot, c, nil
	}

	return domain.Slot{}, domain.Color{}, &domain.DecodeError{Encoding: d.enc, Value: b, Mask: 0xFF}
}

// Layout of one activity-zero byte. Bits 3-7 are reserved by the sampler.
const (
	activityMask     uint8 = 0x03
	zeroFlag         uint8 = 0x04
	activityUnmapped uint8 = 0b00
	activitySwapped  uint8 = 0b01
	activityIdle     uint8 = 0b10
	activityActive   uint8 = 0b11
)
