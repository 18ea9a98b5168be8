// Package bitio implements ordered, big-endian, MSB-first bit streams over
// byte buffers.
//
// Writer appends values bit by bit and pads the final byte with zero bits on
// the trailing side. Reader is the exact mirror; a stream written by Writer
// and read back field-for-field returns the original values.
//
// All errors wrap one of the package sentinels, so callers can classify with
// errors.Is:
//
//	v, err := r.ReadUint(12)
//	if errors.Is(err, bitio.ErrTruncated) {
//		// the buffer ran out mid-field
//	}
package bitio

import (
	"errors"
	"runtime"
)

var (
	// ErrRange is returned when a value doesn't fit the requested bit width,
	// or the width itself is outside the legal range.
	ErrRange = errors.New("out of range")

	// ErrTruncated is returned when a read needs more bits than remain.
	ErrTruncated = errors.New("truncated bit stream")
)

// NewError returns an Error wrapping err with message.
// The calling function's name is recorded for diagnostics.
func NewError(err error, message string) error {
	return Error{
		Err:     err,
		Message: message,
		Caller:  getCaller(1),
	}
}

// Error wraps a package sentinel with detail about the failing operation.
type Error struct {
	Err     error
	Message string
	Caller  string
}

// Error implements error.
func (e Error) Error() (str string) {
	if e.Caller != "" {
		str = e.Caller + ": "
	}
	str += e.Err.Error()
	if e.Message != "" {
		str += " (" + e.Message + ")"
	}
	return str
}

// Unwrap implements errors's Unwrap().
func (e Error) Unwrap() error {
	return e.Err
}

// getCaller returns the name of the calling function, skipping skip functions.
func getCaller(skip int) string {
	pcs := make([]uintptr, 1)
	n := runtime.Callers(2+skip, pcs)
	if n != 1 {
		return "unknown function"
	}

	frames := runtime.CallersFrames(pcs)
	frame, _ := frames.Next()
	return frame.Function
}
