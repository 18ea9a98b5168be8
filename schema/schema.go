// Package schema describes the shape of compact acoustic messages.
//
// A Message is an ordered list of Fields, each of which maps to a constant
// bit width derived from its bounds. Descriptors are built once per message
// type and are immutable afterwards; the same descriptor value is reused for
// every encode and decode call.
//
// Only field kinds that resolve to a constant bit width are accepted.
// Optional values, variable lengths and unbounded numerics are rejected at
// construction time with an *Error.
package schema

import "fmt"

// Error reports a message type whose field descriptors cannot be resolved
// to constant bit widths, or descriptor parameters that are inconsistent.
// It is fatal for that message type; there is nothing to retry.
type Error struct {
	Field   string // offending field, empty when the message itself is at fault
	Message string
}

// Error implements error.
func (e *Error) Error() string {
	if e.Field != "" {
		return "schema: field " + e.Field + ": " + e.Message
	}
	return "schema: " + e.Message
}

func newError(field, format string, args ...interface{}) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Must is a helper that panics if err is non-nil, for use in statically
// declared field tables where the bounds are known-good.
//
//	var status = schema.MustMessage(schema.New("Status",
//		schema.Must(schema.NewInt("vehicle_id", 0, 255)),
//		schema.Must(schema.NewBool("active")),
//	))
func Must(f Field, err error) Field {
	if err != nil {
		panic(err)
	}
	return f
}

// MustMessage is Must for message descriptors.
func MustMessage(m *Message, err error) *Message {
	if err != nil {
		panic(err)
	}
	return m
}
