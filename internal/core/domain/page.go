// Package domain defines the core domain models for wssviz.
package domain

import (
	"fmt"
	"strings"
)

// PageState is the decoded state of a single page slot.
type PageState uint8

const (
	// StateUnmapped means no physical page backs the slot.
	StateUnmapped PageState = iota
	// StateMappedInactive means the page is resident but was idle during sampling.
	StateMappedInactive
	// StateActive means the page was referenced during sampling.
	StateActive
	// StateAbsent is the 0 value of the presence encoding.
	StateAbsent
	// StatePresent is the 1 value of the presence encoding.
	StatePresent
	// StateSwapped means the page was swapped out when sampled.
	StateSwapped
)

var pageStateNames = [...]string{
	StateUnmapped:       "unmapped",
	StateMappedInactive: "mapped-inactive",
	StateActive:         "active",
	StateAbsent:         "absent",
	StatePresent:        "present",
	StateSwapped:        "swapped",
}

// String returns the lowercase state name.
func (s PageState) String() string {
	if int(s) < len(pageStateNames) {
		return pageStateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// IsMapped reports whether a physical page backs the slot.
func (s PageState) IsMapped() bool {
	switch s {
	case StateMappedInactive, StateActive, StatePresent, StateSwapped:
		return true
	default:
		return false
	}
}

// AllPageStates lists every state in declaration order.
func AllPageStates() []PageState {
	return []PageState{
		StateUnmapped,
		StateMappedInactive,
		StateActive,
		StateAbsent,
		StatePresent,
		StateSwapped,
	}
}

// Encoding selects how snapshot bytes are split into page slots.
type Encoding uint8

const (
	// EncodingPresence packs eight 1-bit slots per byte (bit 0 first).
	EncodingPresence Encoding = iota + 1
	// EncodingActivity packs four 2-bit slots per byte (low pair first).
	EncodingActivity
	// EncodingActivityZero stores one page per byte: bits 0-1 activity, bit 2 zero flag.
	EncodingActivityZero
)

var encodingNames = map[Encoding]string{
	EncodingPresence:     "presence",
	EncodingActivity:     "activity",
	EncodingActivityZero: "activity-zero",
}

// ParseEncoding parses an encoding name as used in configuration files.
func ParseEncoding(s string) (Encoding, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for enc, n := range encodingNames {
		if n == name {
			return enc, nil
		}
	}
	return 0, fmt.Errorf("unknown encoding %q (want presence, activity or activity-zero)", s)
}

// String returns the configuration name of the encoding.
func (e Encoding) String() string {
	if n, ok := encodingNames[e]; ok {
		return n
	}
	return fmt.Sprintf("encoding(%d)", uint8(e))
}

// BitsPerSlot returns the width of one field.
func (e Encoding) BitsPerSlot() uint {
	switch e {
	case EncodingPresence:
		return 1
	case EncodingActivity:
		return 2
	case EncodingActivityZero:
		return 8
	default:
		return 0
	}
}

// SlotsPerByte returns how many page slots one byte expands to.
func (e Encoding) SlotsPerByte() int {
	if bits := e.BitsPerSlot(); bits > 0 {
		return int(8 / bits)
	}
	return 0
}

// Grayscale reports whether frames of this encoding use a single channel.
func (e Encoding) Grayscale() bool {
	return e == EncodingPresence
}

// Valid reports whether e is a known encoding.
func (e Encoding) Valid() bool {
	_, ok := encodingNames[e]
	return ok
}

// Slot is one decoded bit-field.
type Slot struct {
	Index int       `json:"index" yaml:"index"`
	Value uint8     `json:"value" yaml:"value"`
	State PageState `json:"state" yaml:"state"`
	Zero  bool      `json:"zero,omitempty" yaml:"zero,omitempty"`
}

// MarshalText implements encoding.TextMarshaler.
func (s PageState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// MarshalText implements encoding.TextMarshaler.
func (e Encoding) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Encoding) UnmarshalText(b []byte) error {
	enc, err := ParseEncoding(string(b))
	if err != nil {
		return err
	}
	*e = enc
	return nil
}
