package domain

import (
	"errors"
	"fmt"
)

// Error is a failure with a stable code of the form WSS-<AREA>-<NNNN>.
// Errors with the same code match under errors.Is whatever their detail.
type Error struct {
	Code    string
	Message string
	Detail  string
	Err     error
}

// NewError returns a sentinel error for code.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (e *Error) Error() string {
	msg := e.Code + " " + e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// With returns a copy of e carrying detail, usually the offending value.
func (e *Error) With(detail string) *Error {
	c := *e
	c.Detail = detail
	return &c
}

// Wrap returns a copy of e wrapping cause.
func (e *Error) Wrap(cause error) *Error {
	c := *e
	c.Err = cause
	return &c
}

// Code returns the code of the first *Error in err's chain, or "".
func Code(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

var (
	// ErrDecode is the code shared by every DecodeError.
	ErrDecode = NewError("WSS-DEC-4000", "byte value not in {0x00, masked-0xAA, masked-0xFF}")

	// ErrOverflow is the code shared by every OverflowError.
	ErrOverflow = NewError("WSS-DEC-4001", "snapshot does not fit the frame")

	// ErrInvalidEncoding indicates an unknown encoding reached the decoder.
	ErrInvalidEncoding = NewError("WSS-DEC-4002", "invalid encoding")

	// ErrNoFrames indicates every snapshot of a run was skipped.
	ErrNoFrames = NewError("WSS-RUN-4001", "no frames rendered")

	// ErrEmptyReference indicates the snapshot used for sizing holds no bytes.
	ErrEmptyReference = NewError("WSS-RUN-4002", "reference snapshot is empty")
)

// DecodeError reports a masked field value outside the encoding's state set.
type DecodeError struct {
	Encoding Encoding
	Offset   int   // byte offset in the snapshot
	Slot     int   // slot index within the frame
	Value    uint8 // masked field value, shifted down to bit 0
	Mask     uint8 // mask applied to the byte
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: encoding %s, byte %d, slot %d: value 0x%02x (mask 0x%02x)",
		ErrDecode.Error(), e.Encoding, e.Offset, e.Slot, e.Value, e.Mask)
}

// Is matches ErrDecode.
func (e *DecodeError) Is(target error) bool {
	return errors.Is(ErrDecode, target)
}

// OverflowError reports a snapshot that decodes to more slots than the frame holds.
type OverflowError struct {
	Slots    int
	Capacity int
}

// Error implements the error interface.
func (e *OverflowError) Error() string {
	return fmt.Sprintf("%s: %d slots, capacity %d", ErrOverflow.Error(), e.Slots, e.Capacity)
}

// Is matches ErrOverflow.
func (e *OverflowError) Is(target error) bool {
	return errors.Is(ErrOverflow, target)
}
